package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/prepview/backend/models"
	"github.com/prepview/backend/session"
	ws "github.com/prepview/backend/websocket"
)

// SessionHandler routes websocket command frames to the session manager and
// mirrors machine state back to the client.
type SessionHandler struct {
	manager *SessionManager
}

func NewSessionHandler(manager *SessionManager) *SessionHandler {
	return &SessionHandler{
		manager: manager,
	}
}

// HandleConnection wires a freshly registered client to the session layer.
func (h *SessionHandler) HandleConnection(client *ws.Client, user *models.User) {
	client.MessageHandler = func(c *ws.Client, raw []byte) {
		h.handleCommand(c, user, raw)
	}
	client.CloseHandler = func(c *ws.Client) {
		h.manager.ConcludeSession(c.SessionID)
	}
	slog.Info("Session connection established", "user_id", user.ID, "session_id", client.SessionID)
}

func (h *SessionHandler) handleCommand(client *ws.Client, user *models.User, raw []byte) {
	var cmd ws.Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		slog.Error("Failed to unmarshal command frame", "error", err, "session_id", client.SessionID)
		return
	}

	switch cmd.Type {
	case "start":
		if err := h.manager.StartSession(context.Background(), client, user, cmd); err != nil {
			slog.Error("Failed to start session", "error", err, "session_id", client.SessionID)
			client.SendFrame(ws.StateFrame{Type: "error", Error: err.Error()})
		}

	case "end":
		if machine := h.manager.Get(client.SessionID); machine != nil {
			machine.EndCall()
		}

	case "retry":
		if machine := h.manager.Get(client.SessionID); machine != nil {
			machine.Retry()
		}

	default:
		slog.Warn("Unknown command type", "type", cmd.Type, "session_id", client.SessionID)
	}
}

// clientObserver pushes machine state changes to the websocket client.
type clientObserver struct {
	client *ws.Client
}

func (o *clientObserver) StatusChanged(status session.CallStatus) {
	o.client.SendFrame(ws.StateFrame{Type: "status", Status: string(status)})
}

func (o *clientObserver) MessageAppended(msg session.Message) {
	o.client.SendFrame(ws.StateFrame{Type: "message", Role: string(msg.Role), Content: msg.Content})
}

func (o *clientObserver) SpeakingChanged(speaking bool) {
	o.client.SendFrame(ws.StateFrame{Type: "speaking", Speaking: &speaking})
}

func (o *clientObserver) ErrorChanged(message string) {
	o.client.SendFrame(ws.StateFrame{Type: "error", Error: message})
}

// clientNavigator tells the client where to route after the feedback
// pipeline runs.
type clientNavigator struct {
	client *ws.Client
}

func (n *clientNavigator) Navigate(path string) {
	n.client.SendFrame(ws.StateFrame{Type: "navigate", Path: path})
}
