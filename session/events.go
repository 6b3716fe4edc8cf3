package session

// EventKind enumerates everything the machine can react to: normalized
// voice-session events, simulator events, and user actions. Every
// (status, kind) pair has a defined outcome in the machine; pairs not
// listed in the transition switch are explicitly ignored.
type EventKind int

const (
	// Normalized voice-session events (see Adapter).
	EventCallStarted EventKind = iota
	EventCallEnded
	EventTranscript
	EventSpeaking
	EventError

	// Simulator events.
	EventSyntheticStarted

	// User actions.
	EventStartCall
	EventEndCall
	EventRetry
)

func (k EventKind) String() string {
	switch k {
	case EventCallStarted:
		return "call-started"
	case EventCallEnded:
		return "call-ended"
	case EventTranscript:
		return "transcript"
	case EventSpeaking:
		return "speaking"
	case EventError:
		return "error"
	case EventSyntheticStarted:
		return "synthetic-started"
	case EventStartCall:
		return "start-call"
	case EventEndCall:
		return "end-call"
	case EventRetry:
		return "retry"
	default:
		return "unknown"
	}
}

// Event is the single typed value consumed by the machine's event loop.
// Gen tags events produced by a particular adapter/simulator attachment;
// the machine drops events whose generation no longer matches, so a
// late delivery after teardown cannot cause a stale transition.
type Event struct {
	Kind     EventKind
	Role     Role
	Text     string
	Speaking bool
	Gen      uint64
}

// VoiceEvent is the raw event surface of a real-time voice session, before
// normalization. Type is one of call-start, call-end, message, speech-start,
// speech-end, error. Message events carry Role, Transcript and
// TranscriptType ("partial" or "final"); error events carry Err.
type VoiceEvent struct {
	Type           string
	Role           string
	Transcript     string
	TranscriptType string
	Err            string
}

const (
	VoiceCallStart   = "call-start"
	VoiceCallEnd     = "call-end"
	VoiceMessage     = "message"
	VoiceSpeechStart = "speech-start"
	VoiceSpeechEnd   = "speech-end"
	VoiceError       = "error"
)

// VoiceSession is the contract of the external real-time voice client. It
// is constructed per session and injected into the machine; implementations
// must deliver events to every subscribed listener until unsubscribed.
type VoiceSession interface {
	// Start begins a call against the given workflow or assistant id.
	// It fails when required identifiers or credentials are missing.
	Start(targetID string, variableValues map[string]string) error
	// Stop tears the call down. Safe to call at any time.
	Stop()
	// Subscribe registers a listener for raw voice events and returns the
	// function that removes exactly that listener.
	Subscribe(fn func(VoiceEvent)) (unsubscribe func())
}
