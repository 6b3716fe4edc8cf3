package scoring

import (
	"fmt"
	"strings"

	"github.com/prepview/backend/session"
)

// CategoryScore is one scored dimension of a feedback record. Derived once,
// never mutated.
type CategoryScore struct {
	Name    string `json:"name"`
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// Feedback is the synthesized assessment of a finished session. TotalScore
// always equals the rounded mean of the category scores.
type Feedback struct {
	TotalScore          int
	CategoryScores      []CategoryScore
	Strengths           []string
	AreasForImprovement []string
	FinalAssessment     string
}

// Strength and improvement strings per category. Scores of 80 and above
// contribute a strength, below 70 an improvement; the 70-79 band
// contributes neither.
var (
	strengthByCategory = map[string]string{
		CategoryTechnical:      "Strong technical knowledge",
		CategoryCommunication:  "Excellent communication skills",
		CategoryProblemSolving: "Strong problem-solving abilities",
	}
	improvementByCategory = map[string]string{
		CategoryTechnical:      "Need to strengthen technical concepts",
		CategoryCommunication:  "Work on clear and concise communication",
		CategoryProblemSolving: "Practice more complex problem scenarios",
	}
)

// Synthesize computes the full feedback record for a transcript. It is pure:
// persistence and navigation happen in the submission pipeline, and a failed
// submission can safely recompute and resubmit.
func Synthesize(transcript []session.Message) Feedback {
	technical := TechnicalScore(transcript)
	communication := CommunicationScore(transcript)
	problemSolving := ProblemSolvingScore(transcript)
	total := TotalScore(technical, communication, problemSolving)

	categories := []CategoryScore{
		{Name: CategoryTechnical, Score: technical, Comment: CategoryComment(CategoryTechnical, technical)},
		{Name: CategoryCommunication, Score: communication, Comment: CategoryComment(CategoryCommunication, communication)},
		{Name: CategoryProblemSolving, Score: problemSolving, Comment: CategoryComment(CategoryProblemSolving, problemSolving)},
	}

	var strengths, improvements []string
	for _, cat := range categories {
		if cat.Score >= 80 {
			strengths = append(strengths, strengthByCategory[cat.Name])
		} else if cat.Score < 70 {
			improvements = append(improvements, improvementByCategory[cat.Name])
		}
	}

	return Feedback{
		TotalScore:          total,
		CategoryScores:      categories,
		Strengths:           strengths,
		AreasForImprovement: improvements,
		FinalAssessment:     FinalAssessment(total, strengths, improvements),
	}
}

// FinalAssessment concatenates the score-banded opening line with bulleted
// strengths and improvement sections, omitting a section when its list is
// empty.
func FinalAssessment(totalScore int, strengths, improvements []string) string {
	var b strings.Builder
	b.WriteString("Overall Assessment: ")

	switch {
	case totalScore >= 90:
		b.WriteString("Outstanding performance! ")
	case totalScore >= 80:
		b.WriteString("Very good performance! ")
	case totalScore >= 70:
		b.WriteString("Good performance with some areas to improve. ")
	default:
		b.WriteString("Performance needs improvement. ")
	}

	if len(strengths) > 0 {
		fmt.Fprintf(&b, "\n\nStrengths:\n%s", strings.Join(strengths, "\n"))
	}
	if len(improvements) > 0 {
		fmt.Fprintf(&b, "\n\nAreas for Improvement:\n%s", strings.Join(improvements, "\n"))
	}

	return b.String()
}
