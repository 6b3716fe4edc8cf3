package repository

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/prepview/backend/models"
)

// Aggregates for the analytics surface. Category averages are computed in
// Go from the JSONB category scores rather than in SQL, so the shape of the
// stored scores stays an application concern.

type CategoryAverage struct {
	Name    string  `json:"name"`
	Average float64 `json:"average"`
}

type RecentScore struct {
	InterviewID string    `json:"interview_id"`
	TotalScore  int       `json:"total_score"`
	CreatedAt   time.Time `json:"created_at"`
}

type UserAnalytics struct {
	TotalInterviews     int64             `json:"total_interviews"`
	CompletedInterviews int64             `json:"completed_interviews"`
	AverageScore        float64           `json:"average_score"`
	CategoryAverages    []CategoryAverage `json:"category_averages"`
	RecentScores        []RecentScore     `json:"recent_scores"`
}

const analyticsWindow = 50

// GetUserAnalytics aggregates interview counts and score averages over the
// user's most recent completed feedback records.
func (r *GORMRepository) GetUserAnalytics(ctx context.Context, userID string) (*UserAnalytics, error) {
	analytics := &UserAnalytics{}

	if err := r.db.WithContext(ctx).
		Model(&models.Interview{}).
		Where("user_id = ?", userID).
		Count(&analytics.TotalInterviews).Error; err != nil {
		slog.Error("Failed to count interviews", "error", err, "user_id", userID)
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Interview{}).
		Where("user_id = ? AND status = ?", userID, models.InterviewStatusCompleted).
		Count(&analytics.CompletedInterviews).Error; err != nil {
		slog.Error("Failed to count completed interviews", "error", err, "user_id", userID)
		return nil, err
	}

	var feedbacks []models.Feedback
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.FeedbackStatusComplete).
		Order("created_at DESC").
		Limit(analyticsWindow).
		Find(&feedbacks).Error; err != nil {
		slog.Error("Failed to load feedback for analytics", "error", err, "user_id", userID)
		return nil, err
	}

	if len(feedbacks) == 0 {
		return analytics, nil
	}

	totalSum := 0
	categorySums := make(map[string]int)
	categoryCounts := make(map[string]int)
	var categoryOrder []string

	for i, fb := range feedbacks {
		totalSum += fb.TotalScore
		for _, cs := range fb.CategoryScores {
			if categoryCounts[cs.Name] == 0 {
				categoryOrder = append(categoryOrder, cs.Name)
			}
			categorySums[cs.Name] += cs.Score
			categoryCounts[cs.Name]++
		}
		if i < 10 {
			analytics.RecentScores = append(analytics.RecentScores, RecentScore{
				InterviewID: fb.InterviewID,
				TotalScore:  fb.TotalScore,
				CreatedAt:   fb.CreatedAt,
			})
		}
	}

	analytics.AverageScore = roundTo(float64(totalSum)/float64(len(feedbacks)), 1)
	for _, name := range categoryOrder {
		analytics.CategoryAverages = append(analytics.CategoryAverages, CategoryAverage{
			Name:    name,
			Average: roundTo(float64(categorySums[name])/float64(categoryCounts[name]), 1),
		})
	}

	return analytics, nil
}

func roundTo(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}
