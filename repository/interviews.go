package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prepview/backend/models"
	"gorm.io/gorm"
)

// Interview operations

func (r *GORMRepository) CreateInterview(ctx context.Context, interview *models.Interview) error {
	if err := r.db.WithContext(ctx).Create(interview).Error; err != nil {
		slog.Error("Failed to create interview", "error", err, "user_id", interview.UserID)
		return err
	}
	slog.Info("Interview created", "interview_id", interview.ID, "user_id", interview.UserID, "role", interview.Role)
	return nil
}

func (r *GORMRepository) GetInterviewByID(ctx context.Context, id string) (*models.Interview, error) {
	var interview models.Interview
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&interview).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get interview", "error", err, "interview_id", id)
		return nil, err
	}
	return &interview, nil
}

func (r *GORMRepository) GetInterviewsByUserID(ctx context.Context, userID string) ([]models.Interview, error) {
	var interviews []models.Interview
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&interviews).Error; err != nil {
		slog.Error("Failed to get interviews", "error", err, "user_id", userID)
		return nil, err
	}
	return interviews, nil
}

// GetLatestInterviews lists recent finalized interviews created by other
// users, for the dashboard's "take an interview" surface.
func (r *GORMRepository) GetLatestInterviews(ctx context.Context, userID string, limit int) ([]models.Interview, error) {
	var interviews []models.Interview
	if err := r.db.WithContext(ctx).
		Where("user_id <> ? AND finalized = ?", userID, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&interviews).Error; err != nil {
		slog.Error("Failed to get latest interviews", "error", err)
		return nil, err
	}
	return interviews, nil
}

var validInterviewStatuses = map[string]bool{
	models.InterviewStatusAvailable:  true,
	models.InterviewStatusInProgress: true,
	models.InterviewStatusCompleted:  true,
}

// UpdateInterviewStatus transitions an interview's status after verifying
// the caller owns it. Implements the status-update collaborator consumed by
// the feedback pipeline.
func (r *GORMRepository) UpdateInterviewStatus(ctx context.Context, interviewID, userID, status string) error {
	if !validInterviewStatuses[status] {
		return fmt.Errorf("invalid interview status %q", status)
	}

	interview, err := r.GetInterviewByID(ctx, interviewID)
	if err != nil {
		return err
	}
	if interview == nil {
		return ErrNotFound
	}
	if interview.UserID != userID {
		return ErrUnauthorized
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Interview{}).
		Where("id = ?", interviewID).
		Update("status", status).Error; err != nil {
		slog.Error("Failed to update interview status", "error", err, "interview_id", interviewID)
		return err
	}

	slog.Info("Interview status updated", "interview_id", interviewID, "status", status)
	return nil
}
