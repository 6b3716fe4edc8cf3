// Package vapi is a client for the real-time voice interview provider. It
// speaks the provider's websocket frame protocol and exposes the six-event
// surface the session package consumes. Clients are constructed per session
// and injected, never shared module-wide.
package vapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/prepview/backend/session"
)

// DefaultURL is the provider's realtime endpoint; override per deployment
// through configuration.
const DefaultURL = "wss://realtime.vapi.ai/call"

const writeTimeout = 10 * time.Second

// frame is the provider's wire format, both directions.
type frame struct {
	Type           string            `json:"type"`
	Target         string            `json:"target,omitempty"`
	VariableValues map[string]string `json:"variableValues,omitempty"`
	Role           string            `json:"role,omitempty"`
	Transcript     string            `json:"transcript,omitempty"`
	TranscriptType string            `json:"transcriptType,omitempty"`
	Error          string            `json:"error,omitempty"`
}

// Client implements session.VoiceSession over a websocket connection.
type Client struct {
	apiKey string
	url    string
	dialer *websocket.Dialer

	mu        sync.Mutex
	conn      *websocket.Conn
	listeners map[int]func(session.VoiceEvent)
	nextID    int
}

// NewClient builds a client for one session. The zero url selects
// DefaultURL.
func NewClient(apiKey, url string) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		apiKey:    apiKey,
		url:       url,
		dialer:    &websocket.Dialer{HandshakeTimeout: 15 * time.Second},
		listeners: make(map[int]func(session.VoiceEvent)),
	}
}

// Start dials the provider and begins a call against the given workflow or
// assistant id. It fails when the API key or target id is missing, or when
// the handshake cannot complete; call lifecycle after a successful Start is
// reported through subscribed events.
func (c *Client) Start(targetID string, variableValues map[string]string) error {
	if c.apiKey == "" {
		return fmt.Errorf("vapi: missing API key")
	}
	if targetID == "" {
		return fmt.Errorf("vapi: missing target id")
	}

	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return fmt.Errorf("vapi: call already in progress")
	}
	c.mu.Unlock()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)

	conn, resp, err := c.dialer.Dial(c.url, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("vapi: dial failed with status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("vapi: dial failed: %w", err)
	}

	start := frame{Type: "start", Target: targetID, VariableValues: variableValues}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(start); err != nil {
		conn.Close()
		return fmt.Errorf("vapi: failed to send start frame: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	slog.Info("Voice call started", "target", targetID)
	go c.readLoop(conn)
	return nil
}

// Stop ends the call. Safe to call at any time, including before Start or
// twice; the read loop reports the resulting close as a call-end event.
func (c *Client) Stop() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return
	}

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(frame{Type: "stop"}); err != nil {
		slog.Debug("Failed to send stop frame", "error", err)
	}
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeTimeout))
	conn.Close()
}

// Subscribe registers a listener for normalized voice events. The returned
// function removes exactly that listener; unsubscription is symmetric so no
// listener leaks across session remounts.
func (c *Client) Subscribe(fn func(session.VoiceEvent)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Client) emit(ev session.VoiceEvent) {
	c.mu.Lock()
	fns := make([]func(session.VoiceEvent), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (c *Client) readLoop(conn *websocket.Conn) {
	defer conn.Close()

	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			c.mu.Lock()
			stopped := c.conn == nil
			c.conn = nil
			c.mu.Unlock()

			if stopped || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.emit(session.VoiceEvent{Type: session.VoiceCallEnd})
			} else {
				slog.Error("Voice connection error", "error", err)
				c.emit(session.VoiceEvent{Type: session.VoiceError, Err: err.Error()})
			}
			return
		}

		switch f.Type {
		case session.VoiceCallStart, session.VoiceCallEnd, session.VoiceSpeechStart, session.VoiceSpeechEnd:
			c.emit(session.VoiceEvent{Type: f.Type})
		case session.VoiceMessage:
			c.emit(session.VoiceEvent{
				Type:           f.Type,
				Role:           f.Role,
				Transcript:     f.Transcript,
				TranscriptType: f.TranscriptType,
			})
		case session.VoiceError:
			c.emit(session.VoiceEvent{Type: f.Type, Err: f.Error})
		default:
			slog.Debug("Ignoring unknown provider frame", "type", f.Type)
		}

		if f.Type == session.VoiceCallEnd {
			c.mu.Lock()
			c.conn = nil
			c.mu.Unlock()
			return
		}
	}
}
