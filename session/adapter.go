package session

import "log/slog"

// Adapter subscribes to a VoiceSession's raw event surface and forwards the
// events, normalized into the machine's Event type, to a sink. Partial
// transcripts are discarded; only final transcripts become messages. The
// adapter makes no ordering assumptions beyond delivery order and leaves all
// status decisions to the machine.
type Adapter struct {
	voice       VoiceSession
	sink        func(Event)
	gen         uint64
	unsubscribe func()
}

// NewAdapter binds a voice session to an event sink. Events posted to the
// sink carry gen so the machine can discard deliveries that race teardown.
func NewAdapter(voice VoiceSession, gen uint64, sink func(Event)) *Adapter {
	return &Adapter{voice: voice, sink: sink, gen: gen}
}

// Attach subscribes to the voice session. Calling Attach twice without a
// Detach in between is a programming error and is ignored.
func (a *Adapter) Attach() {
	if a.unsubscribe != nil {
		return
	}
	a.unsubscribe = a.voice.Subscribe(a.handle)
	slog.Debug("Voice adapter attached", "generation", a.gen)
}

// Detach removes the subscription. Symmetric with Attach; safe to call more
// than once. Events already in flight are dropped by the machine's
// generation guard, not here.
func (a *Adapter) Detach() {
	if a.unsubscribe == nil {
		return
	}
	a.unsubscribe()
	a.unsubscribe = nil
	slog.Debug("Voice adapter detached", "generation", a.gen)
}

func (a *Adapter) handle(ev VoiceEvent) {
	switch ev.Type {
	case VoiceCallStart:
		a.sink(Event{Kind: EventCallStarted, Gen: a.gen})
	case VoiceCallEnd:
		a.sink(Event{Kind: EventCallEnded, Gen: a.gen})
	case VoiceMessage:
		if ev.TranscriptType != "final" {
			return
		}
		a.sink(Event{Kind: EventTranscript, Role: Role(ev.Role), Text: ev.Transcript, Gen: a.gen})
	case VoiceSpeechStart:
		a.sink(Event{Kind: EventSpeaking, Speaking: true, Gen: a.gen})
	case VoiceSpeechEnd:
		a.sink(Event{Kind: EventSpeaking, Speaking: false, Gen: a.gen})
	case VoiceError:
		a.sink(Event{Kind: EventError, Text: ev.Err, Gen: a.gen})
	default:
		slog.Warn("Unknown voice event type", "type", ev.Type)
	}
}
