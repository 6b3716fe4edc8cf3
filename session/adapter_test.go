package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapterNormalizesVoiceEvents(t *testing.T) {
	tests := []struct {
		name  string
		in    VoiceEvent
		want  Event
		drops bool
	}{
		{
			name: "call start",
			in:   VoiceEvent{Type: VoiceCallStart},
			want: Event{Kind: EventCallStarted, Gen: 3},
		},
		{
			name: "call end",
			in:   VoiceEvent{Type: VoiceCallEnd},
			want: Event{Kind: EventCallEnded, Gen: 3},
		},
		{
			name: "final transcript",
			in:   VoiceEvent{Type: VoiceMessage, Role: "user", Transcript: "hello", TranscriptType: "final"},
			want: Event{Kind: EventTranscript, Role: RoleUser, Text: "hello", Gen: 3},
		},
		{
			name:  "partial transcript dropped",
			in:    VoiceEvent{Type: VoiceMessage, Role: "user", Transcript: "hel", TranscriptType: "partial"},
			drops: true,
		},
		{
			name: "speech start",
			in:   VoiceEvent{Type: VoiceSpeechStart},
			want: Event{Kind: EventSpeaking, Speaking: true, Gen: 3},
		},
		{
			name: "speech end",
			in:   VoiceEvent{Type: VoiceSpeechEnd},
			want: Event{Kind: EventSpeaking, Speaking: false, Gen: 3},
		},
		{
			name: "error",
			in:   VoiceEvent{Type: VoiceError, Err: "boom"},
			want: Event{Kind: EventError, Text: "boom", Gen: 3},
		},
		{
			name:  "unknown type dropped",
			in:    VoiceEvent{Type: "volume-level"},
			drops: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			voice := newFakeVoice()
			var got []Event
			a := NewAdapter(voice, 3, func(ev Event) { got = append(got, ev) })
			a.Attach()
			defer a.Detach()

			voice.emit(tt.in)
			if tt.drops {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0])
		})
	}
}

func TestAdapterAttachDetachSymmetry(t *testing.T) {
	voice := newFakeVoice()
	var got []Event
	a := NewAdapter(voice, 1, func(ev Event) { got = append(got, ev) })

	a.Attach()
	a.Attach() // second attach is a no-op, not a second subscription
	voice.emit(VoiceEvent{Type: VoiceCallStart})
	require.Len(t, got, 1)

	a.Detach()
	a.Detach()
	voice.emit(VoiceEvent{Type: VoiceCallStart})
	assert.Len(t, got, 1, "detached adapter must not forward events")
}
