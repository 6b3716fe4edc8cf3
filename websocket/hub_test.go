package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub) *Client {
	return &Client{
		Hub:       hub,
		Send:      make(chan []byte, 4),
		UserID:    "user-1",
		SessionID: "session-1",
	}
}

func waitForUnregister(t *testing.T, client *Client) {
	t.Helper()
	require.Eventually(t, func() bool {
		client.mu.Lock()
		defer client.mu.Unlock()
		return client.closed
	}, time.Second, 5*time.Millisecond)
}

func TestSendFrameQueuesMarshalledFrame(t *testing.T) {
	client := newTestClient(NewHub())

	client.SendFrame(StateFrame{Type: "status", Status: "ACTIVE"})

	select {
	case data := <-client.Send:
		assert.JSONEq(t, `{"type":"status","status":"ACTIVE"}`, string(data))
	default:
		t.Fatal("expected a queued frame")
	}
}

func TestSendFrameAfterUnregisterIsDropped(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient(hub)
	hub.register <- client
	hub.unregister <- client
	waitForUnregister(t, client)

	// The feedback pipeline outlives the connection and navigates the
	// client at the end. That must not crash the process.
	assert.NotPanics(t, func() {
		client.SendFrame(StateFrame{Type: "navigate", Path: "/interview/abc/feedback"})
	})
}

func TestCloseSendIsIdempotent(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient(hub)
	hub.register <- client
	hub.unregister <- client
	waitForUnregister(t, client)

	assert.NotPanics(t, func() { client.closeSend() })
}

func TestSendFrameDropsWhenBufferFull(t *testing.T) {
	client := newTestClient(NewHub())
	client.Send = make(chan []byte, 1)

	client.SendFrame(StateFrame{Type: "status", Status: "CONNECTING"})
	assert.NotPanics(t, func() {
		client.SendFrame(StateFrame{Type: "status", Status: "ACTIVE"})
	})
	assert.Len(t, client.Send, 1)
}
