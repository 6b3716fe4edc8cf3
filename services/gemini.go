package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	ModelName          = "gemini-2.5-flash"
	generationTimeout  = 30 * time.Second
	defaultQuestionAmt = 5
)

// GeminiService generates interview questions with the Gemini API.
type GeminiService struct {
	genaiClient *genai.Client
}

func NewGeminiService(apiKey string) *GeminiService {
	genaiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		slog.Error("Failed to create genai client", "error", err)
		return nil
	}

	return &GeminiService{
		genaiClient: genaiClient,
	}
}

// GenerateQuestionsParams describes the interview to prepare questions for.
type GenerateQuestionsParams struct {
	Role      string
	Level     string
	Type      string
	Techstack []string
	Amount    int
}

// GenerateQuestions asks the model for a JSON array of interview questions.
func (g *GeminiService) GenerateQuestions(ctx context.Context, p GenerateQuestionsParams) ([]string, error) {
	if g.genaiClient == nil {
		return nil, fmt.Errorf("genai client not initialized")
	}

	if p.Amount <= 0 {
		p.Amount = defaultQuestionAmt
	}

	ctx, cancel := context.WithTimeout(ctx, generationTimeout)
	defer cancel()

	prompt := fmt.Sprintf(`Prepare questions for a job interview.
The job role is %s.
The job experience level is %s.
The tech stack used in the job is: %s.
The focus between behavioural and technical questions should lean towards: %s.
The amount of questions required is: %d.
Please return only the questions, without any additional text.
The questions are going to be read by a voice assistant so do not use "/" or "*" or any other special characters which might break the voice assistant.
Return the questions formatted like this:
["Question 1", "Question 2", "Question 3"]`,
		p.Role, p.Level, strings.Join(p.Techstack, ", "), p.Type, p.Amount)

	result, err := g.genaiClient.Models.GenerateContent(
		ctx,
		ModelName,
		genai.Text(prompt),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate questions: %w", err)
	}

	questions, err := parseQuestionList(result.Text())
	if err != nil {
		return nil, fmt.Errorf("failed to parse generated questions: %w", err)
	}

	slog.Info("Generated interview questions", "role", p.Role, "level", p.Level, "count", len(questions))
	return questions, nil
}

// parseQuestionList extracts a JSON string array from model output, tolerating
// surrounding prose or markdown code fences.
func parseQuestionList(text string) ([]string, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var questions []string
	if err := json.Unmarshal([]byte(text[start:end+1]), &questions); err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("empty question list")
	}
	return questions, nil
}
