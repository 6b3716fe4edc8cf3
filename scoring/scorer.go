// Package scoring derives category scores and feedback records from a
// finished interview transcript. The scores are deliberately simple keyword
// and length heuristics; they are stand-ins kept for behavioral parity, not
// a model.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/prepview/backend/session"
)

// Category names as they appear on persisted feedback.
const (
	CategoryTechnical      = "Technical Knowledge"
	CategoryCommunication  = "Communication"
	CategoryProblemSolving = "Problem Solving"
)

var technicalKeywords = []string{"algorithm", "complexity", "data structure", "api", "framework"}

var problemSolvingKeywords = []string{"approach", "solution", "step", "consider"}

// TechnicalScore counts user messages containing at least one technical
// keyword (case-insensitive substring match): 70 + 5 per message, capped
// at 100.
func TechnicalScore(transcript []session.Message) int {
	n := countUserMessagesContaining(transcript, technicalKeywords)
	return capScore(70 + 5*n)
}

// CommunicationScore is 70 plus half the average word count of user
// messages, capped at 100 and rounded. A transcript with no user messages
// scores the base 70.
func CommunicationScore(transcript []session.Message) int {
	var words, msgs int
	for _, msg := range transcript {
		if msg.Role != session.RoleUser {
			continue
		}
		words += len(strings.Split(msg.Content, " "))
		msgs++
	}
	if msgs == 0 {
		return 70
	}
	avg := float64(words) / float64(msgs)
	return int(math.Round(math.Min(70+avg/2, 100)))
}

// ProblemSolvingScore counts user messages containing at least one
// problem-solving indicator: 70 + 5 per message, capped at 100.
func ProblemSolvingScore(transcript []session.Message) int {
	n := countUserMessagesContaining(transcript, problemSolvingKeywords)
	return capScore(70 + 5*n)
}

// TotalScore is the rounded mean of the three category scores.
func TotalScore(technical, communication, problemSolving int) int {
	return int(math.Round(float64(technical+communication+problemSolving) / 3))
}

// CategoryComment renders the score-banded comment for a category.
func CategoryComment(category string, score int) string {
	lower := strings.ToLower(category)
	switch {
	case score >= 90:
		return fmt.Sprintf("Excellent %s skills demonstrated throughout the interview.", lower)
	case score >= 80:
		return fmt.Sprintf("Strong %s abilities shown.", lower)
	case score >= 70:
		return fmt.Sprintf("Good %s skills with room for improvement.", lower)
	default:
		return fmt.Sprintf("Needs improvement in %s aspects.", lower)
	}
}

func countUserMessagesContaining(transcript []session.Message, keywords []string) int {
	n := 0
	for _, msg := range transcript {
		if msg.Role != session.RoleUser {
			continue
		}
		content := strings.ToLower(msg.Content)
		for _, kw := range keywords {
			if strings.Contains(content, kw) {
				n++
				break
			}
		}
	}
	return n
}

func capScore(score int) int {
	if score > 100 {
		return 100
	}
	return score
}
