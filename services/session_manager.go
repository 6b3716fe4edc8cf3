package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/prepview/backend/models"
	"github.com/prepview/backend/repository"
	"github.com/prepview/backend/scoring"
	"github.com/prepview/backend/session"
	"github.com/prepview/backend/vapi"
	ws "github.com/prepview/backend/websocket"
)

// SessionManager owns the active interview sessions, one machine per
// websocket connection, keyed by the connection's session ID.
type SessionManager struct {
	repo *repository.GORMRepository
	cfg  *Config

	mu       sync.Mutex
	sessions map[string]*session.Machine
}

func NewSessionManager(repo *repository.GORMRepository, cfg *Config) *SessionManager {
	return &SessionManager{
		repo:     repo,
		cfg:      cfg,
		sessions: make(map[string]*session.Machine),
	}
}

// StartSession builds and registers a machine for the client, then issues the
// start action. A client gets one machine for its connection lifetime; a
// second start on the same connection is routed to the existing machine.
func (sm *SessionManager) StartSession(ctx context.Context, client *ws.Client, user *models.User, cmd ws.Command) error {
	sm.mu.Lock()
	if existing, ok := sm.sessions[client.SessionID]; ok {
		sm.mu.Unlock()
		existing.StartCall()
		return nil
	}
	sm.mu.Unlock()

	mode := session.ModeInterview
	if cmd.Mode == string(session.ModeGenerate) {
		mode = session.ModeGenerate
	}

	var questions []string
	ownsInterview := false
	if mode == session.ModeInterview {
		if cmd.InterviewID == "" {
			return fmt.Errorf("interview_id is required for interview mode")
		}
		interview, err := sm.repo.GetInterviewByID(ctx, cmd.InterviewID)
		if err != nil {
			return fmt.Errorf("failed to load interview: %w", err)
		}
		if interview == nil {
			return fmt.Errorf("interview not found")
		}
		questions = interview.Questions
		ownsInterview = interview.UserID == user.ID
	}

	sctx := session.Context{
		UserName:    user.FullName,
		UserID:      user.ID,
		InterviewID: cmd.InterviewID,
		FeedbackID:  uuid.New().String(),
		Mode:        mode,
		Questions:   questions,
	}

	var voice session.VoiceSession
	if sm.cfg.Voice.APIKey != "" {
		voice = vapi.NewClient(sm.cfg.Voice.APIKey, sm.cfg.Voice.URL)
	}

	// Interviews taken from another user's feed still get feedback, but the
	// status transition belongs to the owner.
	var statusUpdater scoring.StatusUpdater
	if ownsInterview {
		statusUpdater = sm.repo
	}

	nav := &clientNavigator{client: client}
	machine := session.NewMachine(sctx, session.MachineOptions{
		Voice: voice,
		Config: session.VoiceConfig{
			APIKey:      sm.cfg.Voice.APIKey,
			WorkflowID:  sm.cfg.Voice.WorkflowID,
			AssistantID: sm.cfg.Voice.AssistantID,
		},
		Prober: session.DeviceProber{Path: sm.cfg.Voice.AudioDevice},
		Finisher: &scoring.Pipeline{
			Store:      sm.repo,
			Interviews: statusUpdater,
			Nav:        nav,
		},
		Observer: &clientObserver{client: client},
	})

	sm.mu.Lock()
	sm.sessions[client.SessionID] = machine
	sm.mu.Unlock()

	go machine.Run()
	machine.StartCall()

	slog.Info("Session started",
		"session_id", client.SessionID, "user_id", user.ID,
		"interview_id", cmd.InterviewID, "mode", string(mode))
	return nil
}

// Get returns the machine registered for a connection, or nil.
func (sm *SessionManager) Get(sessionID string) *session.Machine {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.sessions[sessionID]
}

// ConcludeSession tears down and unregisters the machine for a connection.
// Safe to call for connections that never started a session.
func (sm *SessionManager) ConcludeSession(sessionID string) {
	sm.mu.Lock()
	machine, ok := sm.sessions[sessionID]
	if ok {
		delete(sm.sessions, sessionID)
	}
	sm.mu.Unlock()

	if !ok {
		return
	}
	machine.Close()
	slog.Info("Session concluded", "session_id", sessionID)
}

// ActiveSessions reports how many machines are currently registered.
func (sm *SessionManager) ActiveSessions() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.sessions)
}
