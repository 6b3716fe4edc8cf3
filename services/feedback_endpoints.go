package services

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prepview/backend/repository"
	"github.com/prepview/backend/scoring"
)

type FeedbackEndpoints struct {
	repo *repository.GORMRepository
}

type UpdateFeedbackRequest struct {
	TotalScore          int                     `json:"total_score"`
	CategoryScores      []scoring.CategoryScore `json:"category_scores"`
	Strengths           []string                `json:"strengths"`
	AreasForImprovement []string                `json:"areas_for_improvement"`
	FinalAssessment     string                  `json:"final_assessment"`
}

func NewFeedbackEndpoints(repo *repository.GORMRepository) *FeedbackEndpoints {
	return &FeedbackEndpoints{
		repo: repo,
	}
}

func (e *FeedbackEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/feedback", func(r chi.Router) {
		r.Get("/interview/{interviewID}", e.GetByInterviewHandler)
		r.Patch("/{feedbackID}", e.PatchHandler)
	})
}

// GetByInterviewHandler returns the caller's feedback for one interview.
func (e *FeedbackEndpoints) GetByInterviewHandler(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	interviewID := chi.URLParam(r, "interviewID")
	feedback, err := e.repo.GetFeedbackByInterviewID(r.Context(), interviewID, user.ID)
	if err != nil {
		slog.Error("Failed to get feedback", "error", err, "interview_id", interviewID)
		http.Error(w, "Failed to get feedback", http.StatusInternalServerError)
		return
	}
	if feedback == nil {
		http.Error(w, "Feedback not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(feedback)
}

// PatchHandler applies a scored partial update to the caller's own feedback
// record.
func (e *FeedbackEndpoints) PatchHandler(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	var req UpdateFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	feedbackID := chi.URLParam(r, "feedbackID")
	err := e.repo.UpdateFeedback(r.Context(), feedbackID, user.ID, scoring.FeedbackUpdate{
		TotalScore:          req.TotalScore,
		CategoryScores:      req.CategoryScores,
		Strengths:           req.Strengths,
		AreasForImprovement: req.AreasForImprovement,
		FinalAssessment:     req.FinalAssessment,
	})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, "Feedback not found", http.StatusNotFound)
		return
	case errors.Is(err, repository.ErrUnauthorized):
		http.Error(w, "Not your feedback", http.StatusForbidden)
		return
	case err != nil:
		slog.Error("Failed to update feedback", "error", err, "feedback_id", feedbackID)
		http.Error(w, "Failed to update feedback", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"message": "Feedback updated"})
}
