package session

import (
	"fmt"
	"sync"
	"time"
)

const (
	// Delay before the synthetic opening message, mirroring real
	// connection latency.
	simOpeningDelay = 1 * time.Second
	// How long the simulated interviewer "speaks" after the opening.
	simSpeakingFor = 3 * time.Second
)

// Simulator produces the scripted fallback interaction used when live voice
// is unavailable or unconfigured: one synthetic assistant opening message
// after a fixed delay, speaking indicator on, then off again. That is the
// whole script; the session stays active until the user ends it.
type Simulator struct {
	clock Clock

	mu     sync.Mutex
	timers []Timer
}

func NewSimulator(clock Clock) *Simulator {
	return &Simulator{clock: clock}
}

// OpeningMessage returns the scripted first assistant message for a session.
func OpeningMessage(sc Context) string {
	if sc.Mode == ModeGenerate {
		return "Hello! I'm your AI interviewer. Let's start with generating questions."
	}
	first := "Tell me about yourself."
	if len(sc.Questions) > 0 {
		first = sc.Questions[0]
	}
	return fmt.Sprintf("Hello! I'm your AI interviewer. Let's start with the first question: %s", first)
}

// Begin schedules the scripted exchange. Events are tagged with gen so the
// machine ignores them after a retry or teardown.
func (s *Simulator) Begin(sc Context, gen uint64, post func(Event)) {
	opening := OpeningMessage(sc)

	s.schedule(simOpeningDelay, func() {
		post(Event{Kind: EventSyntheticStarted, Role: RoleAssistant, Text: opening, Gen: gen})
		s.schedule(simSpeakingFor, func() {
			post(Event{Kind: EventSpeaking, Speaking: false, Gen: gen})
		})
	})
}

// Cancel stops any pending timers. Events already delivered are dropped by
// the machine's generation guard.
func (s *Simulator) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}

func (s *Simulator) schedule(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers = append(s.timers, s.clock.AfterFunc(d, fn))
}
