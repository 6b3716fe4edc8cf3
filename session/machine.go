package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// VoiceConfig is the injected configuration gating live-vs-simulated calls.
// WorkflowID targets question-generation calls, AssistantID targets
// prepared-interview calls, APIKey authenticates against the voice provider.
type VoiceConfig struct {
	APIKey      string
	WorkflowID  string
	AssistantID string
}

// Observer receives state changes as the machine applies them, in the order
// they were applied. Implementations must not call back into the machine.
type Observer interface {
	StatusChanged(status CallStatus)
	MessageAppended(msg Message)
	SpeakingChanged(speaking bool)
	ErrorChanged(message string)
}

// Finisher runs the post-session pipeline once a session enters FINISHED.
// It receives a snapshot of the transcript; the machine retains no interest
// in it afterwards.
type Finisher interface {
	SessionFinished(sc Context, transcript []Message)
}

// User-facing error messages, matching the taxonomy of configuration,
// adapter and input-validation errors.
const (
	errNoQuestions     = "No questions provided for this interview."
	errMissingWorkflow = "Missing workflow ID configuration. Please check your environment settings."
	errStartFailed     = "Failed to start the interview. Please refresh the page and try again."
	errAdapterGeneric  = "There was an error connecting to the AI interviewer. Please try again."
)

// MachineOptions collects the machine's collaborators. Zero values get
// sensible defaults; a nil Voice forces the simulated path.
type MachineOptions struct {
	Voice    VoiceSession
	Config   VoiceConfig
	Prober   Prober
	Clock    Clock
	Finisher Finisher
	Observer Observer
}

// Machine owns the call status and transcript of one interview session and
// drives every transition from a single event loop, so interleaved adapter
// events are applied atomically and in delivery order.
type Machine struct {
	sctx Context
	cfg  VoiceConfig

	voice    VoiceSession
	prober   Prober
	sim      *Simulator
	finisher Finisher
	observer Observer

	events chan Event
	done   chan struct{}
	stop   sync.Once

	// Written only by the event loop; mu guards concurrent readers.
	mu         sync.RWMutex
	status     CallStatus
	transcript []Message
	speaking   bool
	errMsg     string

	// Loop-private state.
	gen        uint64
	adapter    *Adapter
	probed     bool
	capability Capability
}

// NewMachine builds a machine for one session. Call Run in its own goroutine
// and Close on teardown.
func NewMachine(sctx Context, opts MachineOptions) *Machine {
	if opts.Prober == nil {
		opts.Prober = DeviceProber{}
	}
	if opts.Clock == nil {
		opts.Clock = NewClock()
	}
	return &Machine{
		sctx:     sctx,
		cfg:      opts.Config,
		voice:    opts.Voice,
		prober:   opts.Prober,
		sim:      NewSimulator(opts.Clock),
		finisher: opts.Finisher,
		observer: opts.Observer,
		events:   make(chan Event, 256),
		done:     make(chan struct{}),
		status:   StatusInactive,
	}
}

// Run processes events until Close. All transitions happen here.
func (m *Machine) Run() {
	for {
		select {
		case <-m.done:
			return
		case ev := <-m.events:
			m.handle(ev)
		}
	}
}

// Close tears the session down: pending simulator timers are cancelled, the
// adapter is unsubscribed and the voice session stopped. Already-enqueued
// events are dropped by the generation guard, never applied late.
func (m *Machine) Close() {
	m.stop.Do(func() {
		close(m.done)
		m.sim.Cancel()
		if m.adapter != nil {
			m.adapter.Detach()
		}
		if m.voice != nil {
			m.voice.Stop()
		}
	})
}

// Post delivers an event to the machine. It blocks only if the event buffer
// is full and never blocks after Close.
func (m *Machine) Post(ev Event) {
	select {
	case m.events <- ev:
	case <-m.done:
	}
}

// StartCall is the user action initiating a call from INACTIVE or ERROR.
func (m *Machine) StartCall() { m.Post(Event{Kind: EventStartCall}) }

// EndCall is the user action ending a connecting or active call.
func (m *Machine) EndCall() { m.Post(Event{Kind: EventEndCall}) }

// Retry is the user action recovering from ERROR back to INACTIVE.
func (m *Machine) Retry() { m.Post(Event{Kind: EventRetry}) }

// Status returns the current call status.
func (m *Machine) Status() CallStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Transcript returns a copy of the messages appended so far.
func (m *Machine) Transcript() []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Message, len(m.transcript))
	copy(out, m.transcript)
	return out
}

// Speaking reports whether the interlocutor is currently speaking.
func (m *Machine) Speaking() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.speaking
}

// ErrorMessage returns the user-facing error message, empty outside ERROR.
func (m *Machine) ErrorMessage() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.errMsg
}

func (m *Machine) handle(ev Event) {
	switch ev.Kind {
	case EventStartCall, EventEndCall, EventRetry:
		// User actions are never stale.
	default:
		if ev.Gen != m.gen {
			slog.Debug("Dropping stale session event", "kind", ev.Kind.String(), "event_gen", ev.Gen, "current_gen", m.gen)
			return
		}
	}

	switch ev.Kind {
	case EventStartCall:
		m.handleStartCall()

	case EventCallStarted:
		if m.status == StatusConnecting {
			m.setStatus(StatusActive)
		}

	case EventSyntheticStarted:
		if m.status == StatusConnecting {
			m.setStatus(StatusActive)
			m.append(Message{Role: ev.Role, Content: ev.Text})
			m.setSpeaking(true)
		}

	case EventTranscript:
		if m.status == StatusActive {
			m.append(Message{Role: ev.Role, Content: ev.Text})
		}

	case EventSpeaking:
		if m.status == StatusConnecting || m.status == StatusActive {
			m.setSpeaking(ev.Speaking)
		}

	case EventError:
		if m.status == StatusConnecting || m.status == StatusActive {
			msg := ev.Text
			if msg == "" {
				msg = errAdapterGeneric
			}
			m.fail(msg)
		}

	case EventEndCall:
		if m.status == StatusConnecting || m.status == StatusActive {
			m.finish(true)
		}

	case EventCallEnded:
		if m.status == StatusConnecting || m.status == StatusActive {
			m.finish(false)
		}

	case EventRetry:
		if m.status == StatusError {
			m.gen++
			m.mu.Lock()
			m.transcript = nil
			m.mu.Unlock()
			m.setError("")
			m.setSpeaking(false)
			m.setStatus(StatusInactive)
		}

	default:
		slog.Warn("Unhandled session event", "kind", ev.Kind.String(), "status", string(m.status))
	}
}

func (m *Machine) handleStartCall() {
	if m.status != StatusInactive && m.status != StatusError {
		return
	}

	m.gen++
	m.setError("")
	m.setStatus(StatusConnecting)

	// The probe runs once per session; its transient audio handle is
	// released before any call or simulator starts.
	if !m.probed {
		m.capability = m.prober.Probe(context.Background())
		m.probed = true
	}

	if m.sctx.Mode == ModeInterview && len(m.sctx.Questions) == 0 {
		m.fail(errNoQuestions)
		return
	}

	if m.capability == CapabilityUnsupported {
		slog.Warn("Audio input unsupported, using simulated interview",
			"user_id", m.sctx.UserID, "interview_id", m.sctx.InterviewID)
		m.sim.Begin(m.sctx, m.gen, m.Post)
		return
	}

	if m.sctx.Mode == ModeGenerate && m.cfg.WorkflowID == "" {
		m.fail(errMissingWorkflow)
		return
	}

	if m.voice == nil || m.cfg.APIKey == "" || (m.sctx.Mode == ModeInterview && m.cfg.AssistantID == "") {
		// Degrade-gracefully policy: absent credentials fall back to the
		// simulator rather than surfacing a configuration error.
		slog.Warn("Voice provider not configured, using simulated interview",
			"user_id", m.sctx.UserID, "mode", string(m.sctx.Mode))
		m.sim.Begin(m.sctx, m.gen, m.Post)
		return
	}

	m.startLive()
}

func (m *Machine) startLive() {
	m.adapter = NewAdapter(m.voice, m.gen, m.Post)
	m.adapter.Attach()

	var target string
	var vars map[string]string
	if m.sctx.Mode == ModeGenerate {
		target = m.cfg.WorkflowID
		vars = map[string]string{
			"username": m.sctx.UserName,
			"userid":   m.sctx.UserID,
		}
	} else {
		target = m.cfg.AssistantID
		formatted := make([]string, len(m.sctx.Questions))
		for i, q := range m.sctx.Questions {
			formatted[i] = fmt.Sprintf("- %s", q)
		}
		vars = map[string]string{
			"questions": strings.Join(formatted, "\n"),
		}
	}

	gen := m.gen
	go func() {
		if err := m.voice.Start(target, vars); err != nil {
			slog.Error("Voice session start failed", "error", err, "target", target)
			m.Post(Event{Kind: EventError, Text: errStartFailed, Gen: gen})
		}
	}()
}

// fail moves the session to ERROR and tears the transports down.
func (m *Machine) fail(msg string) {
	m.teardown(false)
	m.setSpeaking(false)
	m.setError(msg)
	m.setStatus(StatusError)
}

// finish moves the session to FINISHED and hands the transcript snapshot to
// the finisher. stopVoice is true for a user-initiated end; a CallEnded from
// the provider means the call is already down.
func (m *Machine) finish(stopVoice bool) {
	m.teardown(stopVoice)
	m.setSpeaking(false)
	m.setStatus(StatusFinished)

	if m.finisher == nil {
		return
	}
	snapshot := m.Transcript()
	go m.finisher.SessionFinished(m.sctx, snapshot)
}

func (m *Machine) teardown(stopVoice bool) {
	m.gen++
	m.sim.Cancel()
	if m.adapter != nil {
		m.adapter.Detach()
		m.adapter = nil
	}
	if stopVoice && m.voice != nil {
		m.voice.Stop()
	}
}

func (m *Machine) setStatus(s CallStatus) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
	slog.Info("Session status changed", "status", string(s), "user_id", m.sctx.UserID, "interview_id", m.sctx.InterviewID)
	if m.observer != nil {
		m.observer.StatusChanged(s)
	}
}

func (m *Machine) append(msg Message) {
	m.mu.Lock()
	m.transcript = append(m.transcript, msg)
	m.mu.Unlock()
	if m.observer != nil {
		m.observer.MessageAppended(msg)
	}
}

func (m *Machine) setSpeaking(speaking bool) {
	m.mu.Lock()
	changed := m.speaking != speaking
	m.speaking = speaking
	m.mu.Unlock()
	if changed && m.observer != nil {
		m.observer.SpeakingChanged(speaking)
	}
}

func (m *Machine) setError(msg string) {
	m.mu.Lock()
	m.errMsg = msg
	m.mu.Unlock()
	if m.observer != nil {
		m.observer.ErrorChanged(msg)
	}
}
