package vapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepview/backend/session"
)

// testServer is a provider stand-in: it records the start frame and plays
// back a scripted frame sequence.
type testServer struct {
	t        *testing.T
	upgrader websocket.Upgrader
	script   []frame

	mu         sync.Mutex
	authHeader string
	started    []frame
}

func (s *testServer) handler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.authHeader = r.Header.Get("Authorization")
	s.mu.Unlock()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	var start frame
	if err := conn.ReadJSON(&start); err != nil {
		return
	}
	s.mu.Lock()
	s.started = append(s.started, start)
	s.mu.Unlock()

	for _, f := range s.script {
		if err := conn.WriteJSON(f); err != nil {
			return
		}
	}

	// Hold the connection open until the client closes it.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func newTestServer(t *testing.T, script []frame) (*testServer, string) {
	t.Helper()
	s := &testServer{t: t, script: script}
	srv := httptest.NewServer(http.HandlerFunc(s.handler))
	t.Cleanup(srv.Close)
	return s, "ws" + strings.TrimPrefix(srv.URL, "http")
}

type eventRecorder struct {
	mu     sync.Mutex
	events []session.VoiceEvent
}

func (r *eventRecorder) record(ev session.VoiceEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) all() []session.VoiceEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]session.VoiceEvent(nil), r.events...)
}

func (r *eventRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestStartRequiresAPIKeyAndTarget(t *testing.T) {
	c := NewClient("", "ws://unused")
	require.Error(t, c.Start("workflow", nil))

	c = NewClient("key", "ws://unused")
	require.Error(t, c.Start("", nil))
}

func TestStartSendsStartFrameWithBearerAuth(t *testing.T) {
	srv, url := newTestServer(t, nil)

	c := NewClient("secret-key", url)
	rec := &eventRecorder{}
	unsubscribe := c.Subscribe(rec.record)
	defer unsubscribe()
	defer c.Stop()

	require.NoError(t, c.Start("workflow-1", map[string]string{"username": "Ada"}))

	require.Eventually(t, func() bool {
		srv.mu.Lock()
		defer srv.mu.Unlock()
		return len(srv.started) == 1
	}, 2*time.Second, 5*time.Millisecond)

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Equal(t, "Bearer secret-key", srv.authHeader)
	assert.Equal(t, "start", srv.started[0].Type)
	assert.Equal(t, "workflow-1", srv.started[0].Target)
	assert.Equal(t, "Ada", srv.started[0].VariableValues["username"])
}

func TestClientEmitsNormalizedEvents(t *testing.T) {
	_, url := newTestServer(t, []frame{
		{Type: "call-start"},
		{Type: "speech-start"},
		{Type: "message", Role: "assistant", Transcript: "Explain hashing.", TranscriptType: "final"},
		{Type: "speech-end"},
		{Type: "error", Error: "provider hiccup"},
		{Type: "call-end"},
	})

	c := NewClient("key", url)
	rec := &eventRecorder{}
	defer c.Subscribe(rec.record)()

	require.NoError(t, c.Start("assistant-1", nil))

	require.Eventually(t, func() bool { return rec.count() >= 6 }, 2*time.Second, 5*time.Millisecond)

	events := rec.all()
	assert.Equal(t, session.VoiceCallStart, events[0].Type)
	assert.Equal(t, session.VoiceSpeechStart, events[1].Type)
	assert.Equal(t, session.VoiceMessage, events[2].Type)
	assert.Equal(t, "assistant", events[2].Role)
	assert.Equal(t, "Explain hashing.", events[2].Transcript)
	assert.Equal(t, "final", events[2].TranscriptType)
	assert.Equal(t, session.VoiceSpeechEnd, events[3].Type)
	assert.Equal(t, session.VoiceError, events[4].Type)
	assert.Equal(t, "provider hiccup", events[4].Err)
	assert.Equal(t, session.VoiceCallEnd, events[5].Type)
}

func TestStopReportsCallEnd(t *testing.T) {
	_, url := newTestServer(t, []frame{{Type: "call-start"}})

	c := NewClient("key", url)
	rec := &eventRecorder{}
	defer c.Subscribe(rec.record)()

	require.NoError(t, c.Start("assistant-1", nil))
	require.Eventually(t, func() bool { return rec.count() >= 1 }, 2*time.Second, 5*time.Millisecond)

	c.Stop()

	require.Eventually(t, func() bool {
		events := rec.all()
		return len(events) >= 2 && events[len(events)-1].Type == session.VoiceCallEnd
	}, 2*time.Second, 5*time.Millisecond)
}

func TestStopBeforeStartIsSafe(t *testing.T) {
	c := NewClient("key", "ws://unused")
	c.Stop()
	c.Stop()
}

func TestSecondStartWhileRunningFails(t *testing.T) {
	_, url := newTestServer(t, []frame{{Type: "call-start"}})

	c := NewClient("key", url)
	defer c.Stop()

	require.NoError(t, c.Start("assistant-1", nil))
	assert.Error(t, c.Start("assistant-1", nil))
}

func TestUnsubscribeRemovesOnlyThatListener(t *testing.T) {
	c := NewClient("key", "ws://unused")

	first := &eventRecorder{}
	second := &eventRecorder{}
	removeFirst := c.Subscribe(first.record)
	removeSecond := c.Subscribe(second.record)

	c.emit(session.VoiceEvent{Type: session.VoiceCallStart})
	assert.Equal(t, 1, first.count())
	assert.Equal(t, 1, second.count())

	removeFirst()
	c.emit(session.VoiceEvent{Type: session.VoiceSpeechStart})
	assert.Equal(t, 1, first.count())
	assert.Equal(t, 2, second.count())

	removeSecond()
	removeSecond() // double unsubscribe is a no-op
	c.emit(session.VoiceEvent{Type: session.VoiceSpeechEnd})
	assert.Equal(t, 2, second.count())
}

func TestFrameRoundTrip(t *testing.T) {
	f := frame{Type: "message", Role: "user", Transcript: "hi", TranscriptType: "partial"}
	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"message","role":"user","transcript":"hi","transcriptType":"partial"}`, string(data))
}
