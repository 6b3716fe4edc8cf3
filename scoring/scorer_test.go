package scoring

import (
	"testing"

	"github.com/prepview/backend/session"
	"github.com/stretchr/testify/assert"
)

func user(content string) session.Message {
	return session.Message{Role: session.RoleUser, Content: content}
}

func assistant(content string) session.Message {
	return session.Message{Role: session.RoleAssistant, Content: content}
}

func TestTechnicalScore(t *testing.T) {
	tests := []struct {
		name       string
		transcript []session.Message
		want       int
	}{
		{
			name:       "empty transcript",
			transcript: nil,
			want:       70,
		},
		{
			name:       "no keyword matches",
			transcript: []session.Message{user("I like dogs")},
			want:       70,
		},
		{
			name: "one matching message",
			transcript: []session.Message{
				user("I picked a sorting algorithm"),
			},
			want: 75,
		},
		{
			name: "multiple keywords in one message count once",
			transcript: []session.Message{
				user("The algorithm has linear complexity and the data structure is a heap"),
			},
			want: 75,
		},
		{
			name: "assistant messages do not count",
			transcript: []session.Message{
				assistant("Which algorithm did you use?"),
				user("I used binary search"),
			},
			want: 70,
		},
		{
			name: "case-insensitive matching",
			transcript: []session.Message{
				user("I designed the API around a FRAMEWORK"),
			},
			want: 75,
		},
		{
			name:       "score capped at 100",
			transcript: repeat(user("algorithm"), 10),
			want:       100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TechnicalScore(tt.transcript))
		})
	}
}

func TestProblemSolvingScore(t *testing.T) {
	tests := []struct {
		name       string
		transcript []session.Message
		want       int
	}{
		{
			name:       "empty transcript",
			transcript: nil,
			want:       70,
		},
		{
			name: "matching message",
			transcript: []session.Message{
				user("My approach was to split the problem"),
			},
			want: 75,
		},
		{
			name: "substring match inside larger word",
			transcript: []session.Message{
				user("I considered edge cases"),
			},
			want: 75,
		},
		{
			name:       "score capped at 100",
			transcript: repeat(user("step by step solution"), 12),
			want:       100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProblemSolvingScore(tt.transcript))
		})
	}
}

func TestCommunicationScore(t *testing.T) {
	tests := []struct {
		name       string
		transcript []session.Message
		want       int
	}{
		{
			name:       "no user messages scores the base",
			transcript: []session.Message{assistant("Hello")},
			want:       70,
		},
		{
			name: "nine words averages to 74.5 rounded up",
			transcript: []session.Message{
				user("I used a binary search algorithm and considered edge"),
			},
			want: 75,
		},
		{
			name: "average across messages",
			transcript: []session.Message{
				user("one two three four"),
				user("one two three four five six"),
			},
			want: 73, // avg 5 words -> 72.5 rounds to 73
		},
		{
			name: "long answers capped at 100",
			transcript: []session.Message{
				user(longAnswer(80)),
			},
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CommunicationScore(tt.transcript))
		})
	}
}

func TestScoresAgreeOnRepresentativeAnswer(t *testing.T) {
	transcript := []session.Message{
		user("I used a binary search algorithm and considered edge cases"),
	}

	technical := TechnicalScore(transcript)
	problemSolving := ProblemSolvingScore(transcript)
	communication := CommunicationScore(transcript)

	assert.Equal(t, 75, technical)
	assert.Equal(t, 75, problemSolving)
	assert.Equal(t, 75, communication) // 10 words -> avg 10 -> 75
	assert.Equal(t, 75, TotalScore(technical, communication, problemSolving))
}

func TestTotalScoreRounding(t *testing.T) {
	assert.Equal(t, 75, TotalScore(75, 75, 75))
	assert.Equal(t, 74, TotalScore(70, 75, 76)) // 73.67 rounds to 74
	assert.Equal(t, 72, TotalScore(70, 70, 75)) // 71.67 rounds to 72
}

func TestCategoryComment(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{95, "Excellent technical knowledge skills demonstrated throughout the interview."},
		{90, "Excellent technical knowledge skills demonstrated throughout the interview."},
		{85, "Strong technical knowledge abilities shown."},
		{75, "Good technical knowledge skills with room for improvement."},
		{60, "Needs improvement in technical knowledge aspects."},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CategoryComment(CategoryTechnical, tt.score))
	}
}

func repeat(msg session.Message, n int) []session.Message {
	out := make([]session.Message, n)
	for i := range out {
		out[i] = msg
	}
	return out
}

func longAnswer(words int) string {
	parts := make([]string, words)
	for i := range parts {
		parts[i] = "word"
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += " " + p
	}
	return out
}
