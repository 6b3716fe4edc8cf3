package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuestionList(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{
			name:  "bare JSON array",
			input: `["What is a goroutine?", "Explain channels."]`,
			want:  []string{"What is a goroutine?", "Explain channels."},
		},
		{
			name:  "array inside markdown code fence",
			input: "```json\n[\"Q1\", \"Q2\"]\n```",
			want:  []string{"Q1", "Q2"},
		},
		{
			name:  "array with surrounding prose",
			input: "Here are your questions:\n[\"Q1\"]\nGood luck!",
			want:  []string{"Q1"},
		},
		{
			name:    "no array at all",
			input:   "I cannot help with that.",
			wantErr: true,
		},
		{
			name:    "empty array",
			input:   "[]",
			wantErr: true,
		},
		{
			name:    "malformed JSON",
			input:   `["Q1",]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseQuestionList(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
