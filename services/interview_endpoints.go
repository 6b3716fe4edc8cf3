package services

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prepview/backend/models"
	"github.com/prepview/backend/repository"
)

type InterviewEndpoints struct {
	repo   *repository.GORMRepository
	gemini *GeminiService
}

type CreateInterviewRequest struct {
	Role      string   `json:"role"`
	Type      string   `json:"type"`
	Level     string   `json:"level"`
	Techstack []string `json:"techstack"`
	Questions []string `json:"questions"`
}

type GenerateInterviewRequest struct {
	Role      string   `json:"role"`
	Type      string   `json:"type"`
	Level     string   `json:"level"`
	Techstack []string `json:"techstack"`
	Amount    int      `json:"amount"`
}

type UpdateStatusRequest struct {
	InterviewID string `json:"interview_id"`
	Status      string `json:"status"`
}

func NewInterviewEndpoints(repo *repository.GORMRepository, gemini *GeminiService) *InterviewEndpoints {
	return &InterviewEndpoints{
		repo:   repo,
		gemini: gemini,
	}
}

func (e *InterviewEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/interviews", func(r chi.Router) {
		r.Post("/", e.CreateHandler)
		r.Post("/generate", e.GenerateHandler)
		r.Post("/status", e.UpdateStatusHandler)
		r.Get("/", e.ListHandler)
		r.Get("/latest", e.LatestHandler)
		r.Get("/{interviewID}", e.GetHandler)
	})
}

// CreateHandler stores an interview with caller-supplied questions.
func (e *InterviewEndpoints) CreateHandler(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	var req CreateInterviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Role == "" || req.Type == "" {
		http.Error(w, "role and type are required", http.StatusBadRequest)
		return
	}

	interview := &models.Interview{
		UserID:    user.ID,
		Role:      req.Role,
		Type:      req.Type,
		Level:     req.Level,
		Techstack: req.Techstack,
		Questions: req.Questions,
		Status:    models.InterviewStatusAvailable,
		Finalized: true,
	}

	if err := e.repo.CreateInterview(r.Context(), interview); err != nil {
		slog.Error("Failed to create interview", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to create interview", http.StatusInternalServerError)
		return
	}

	slog.Info("Interview created", "interview_id", interview.ID, "user_id", user.ID, "role", interview.Role)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(interview)
}

// GenerateHandler builds the question list with Gemini, then stores the interview.
func (e *InterviewEndpoints) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	var req GenerateInterviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Role == "" || req.Type == "" {
		http.Error(w, "role and type are required", http.StatusBadRequest)
		return
	}
	if e.gemini == nil {
		http.Error(w, "Question generation is not configured", http.StatusServiceUnavailable)
		return
	}

	questions, err := e.gemini.GenerateQuestions(r.Context(), GenerateQuestionsParams{
		Role:      req.Role,
		Level:     req.Level,
		Type:      req.Type,
		Techstack: req.Techstack,
		Amount:    req.Amount,
	})
	if err != nil {
		slog.Error("Failed to generate questions", "error", err, "user_id", user.ID, "role", req.Role)
		http.Error(w, "Failed to generate questions", http.StatusBadGateway)
		return
	}

	interview := &models.Interview{
		UserID:    user.ID,
		Role:      req.Role,
		Type:      req.Type,
		Level:     req.Level,
		Techstack: req.Techstack,
		Questions: questions,
		Status:    models.InterviewStatusAvailable,
		Finalized: true,
	}

	if err := e.repo.CreateInterview(r.Context(), interview); err != nil {
		slog.Error("Failed to store generated interview", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to create interview", http.StatusInternalServerError)
		return
	}

	slog.Info("Interview generated", "interview_id", interview.ID, "user_id", user.ID, "questions", len(questions))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(interview)
}

// ListHandler returns the caller's own interviews, newest first.
func (e *InterviewEndpoints) ListHandler(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	interviews, err := e.repo.GetInterviewsByUserID(r.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to list interviews", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to list interviews", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"interviews": interviews})
}

// LatestHandler returns recent finalized interviews created by other users.
func (e *InterviewEndpoints) LatestHandler(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	interviews, err := e.repo.GetLatestInterviews(r.Context(), user.ID, 20)
	if err != nil {
		slog.Error("Failed to fetch latest interviews", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to fetch latest interviews", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"interviews": interviews})
}

func (e *InterviewEndpoints) GetHandler(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	interviewID := chi.URLParam(r, "interviewID")
	interview, err := e.repo.GetInterviewByID(r.Context(), interviewID)
	if err != nil {
		slog.Error("Failed to get interview", "error", err, "interview_id", interviewID)
		http.Error(w, "Failed to get interview", http.StatusInternalServerError)
		return
	}
	if interview == nil {
		http.Error(w, "Interview not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(interview)
}

// UpdateStatusHandler moves an interview through available -> in_progress -> completed.
func (e *InterviewEndpoints) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	if user == nil {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.InterviewID == "" || req.Status == "" {
		http.Error(w, "interview_id and status are required", http.StatusBadRequest)
		return
	}

	err := e.repo.UpdateInterviewStatus(r.Context(), req.InterviewID, user.ID, req.Status)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, "Interview not found", http.StatusNotFound)
		return
	case errors.Is(err, repository.ErrUnauthorized):
		http.Error(w, "Not your interview", http.StatusForbidden)
		return
	case err != nil:
		slog.Error("Failed to update interview status", "error", err, "interview_id", req.InterviewID)
		http.Error(w, "Failed to update status", http.StatusInternalServerError)
		return
	}

	slog.Info("Interview status updated", "interview_id", req.InterviewID, "user_id", user.ID, "status", req.Status)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"message": "Status updated"})
}
