package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prepview/backend/models"
	"github.com/prepview/backend/scoring"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Feedback operations. CreateFeedback and UpdateFeedback implement the
// scoring.FeedbackStore collaborator used by the post-session pipeline.

// CreateFeedback writes the initial feedback record for a finished session.
// When the pipeline pre-allocated a feedback id the write is an upsert keyed
// by that id; otherwise a fresh id is generated. Returns the feedback id.
func (r *GORMRepository) CreateFeedback(ctx context.Context, p scoring.CreateFeedbackParams) (string, error) {
	id := p.FeedbackID
	if id == "" {
		id = uuid.New().String()
	}

	transcript := make(models.Transcript, len(p.Transcript))
	for i, msg := range p.Transcript {
		transcript[i] = models.TranscriptTurn{Role: string(msg.Role), Content: msg.Content}
	}

	feedback := models.Feedback{
		ID:          id,
		InterviewID: p.InterviewID,
		UserID:      p.UserID,
		Transcript:  transcript,
		Status:      models.FeedbackStatusPending,
	}

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&feedback).Error; err != nil {
		slog.Error("Failed to create feedback", "error", err, "interview_id", p.InterviewID)
		return "", err
	}

	slog.Info("Feedback created", "feedback_id", id, "interview_id", p.InterviewID, "user_id", p.UserID)
	return id, nil
}

// UpdateFeedback applies the scored partial update to a feedback record.
// The write is rejected with ErrUnauthorized when userID does not own the
// record.
func (r *GORMRepository) UpdateFeedback(ctx context.Context, feedbackID, userID string, update scoring.FeedbackUpdate) error {
	feedback, err := r.getFeedback(ctx, feedbackID)
	if err != nil {
		return err
	}
	if feedback == nil {
		return ErrNotFound
	}
	if feedback.UserID != userID {
		return ErrUnauthorized
	}

	scores := make(models.CategoryScores, len(update.CategoryScores))
	for i, cs := range update.CategoryScores {
		scores[i] = models.CategoryScore{Name: cs.Name, Score: cs.Score, Comment: cs.Comment}
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Feedback{}).
		Where("id = ?", feedbackID).
		Updates(map[string]interface{}{
			"total_score":           update.TotalScore,
			"category_scores":       scores,
			"strengths":             models.StringSlice(update.Strengths),
			"areas_for_improvement": models.StringSlice(update.AreasForImprovement),
			"final_assessment":      update.FinalAssessment,
			"status":                models.FeedbackStatusComplete,
		}).Error; err != nil {
		slog.Error("Failed to update feedback", "error", err, "feedback_id", feedbackID)
		return err
	}

	slog.Info("Feedback updated with scores", "feedback_id", feedbackID, "total_score", update.TotalScore)
	return nil
}

func (r *GORMRepository) GetFeedbackByInterviewID(ctx context.Context, interviewID, userID string) (*models.Feedback, error) {
	var feedback models.Feedback
	if err := r.db.WithContext(ctx).
		Where("interview_id = ? AND user_id = ?", interviewID, userID).
		Order("created_at DESC").
		First(&feedback).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get feedback", "error", err, "interview_id", interviewID)
		return nil, err
	}
	return &feedback, nil
}

func (r *GORMRepository) getFeedback(ctx context.Context, id string) (*models.Feedback, error) {
	var feedback models.Feedback
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&feedback).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get feedback by ID", "error", err, "feedback_id", id)
		return nil, err
	}
	return &feedback, nil
}
