package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prepview/backend/repository"
)

type AnalyticsEndpoints struct {
	repo *repository.GORMRepository
}

func NewAnalyticsEndpoints(repo *repository.GORMRepository) *AnalyticsEndpoints {
	return &AnalyticsEndpoints{
		repo: repo,
	}
}

func (e *AnalyticsEndpoints) RegisterRoutes(r chi.Router) {
	r.Get("/analytics", e.GetAnalyticsHandler)
}

// GetAnalyticsHandler returns the caller's interview counts and score
// aggregates.
func (e *AnalyticsEndpoints) GetAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	analytics, err := e.repo.GetUserAnalytics(r.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to compute analytics", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to compute analytics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(analytics)
}
