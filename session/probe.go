package session

import (
	"context"
	"log/slog"
	"os"
)

// Capability is the result of probing the environment for live audio input.
type Capability int

const (
	CapabilityUnsupported Capability = iota
	CapabilityReady
)

func (c Capability) String() string {
	if c == CapabilityReady {
		return "ready"
	}
	return "unsupported"
}

// Prober checks whether the runtime can provide live audio input. Probe runs
// once per session before any call attempt and never fails outward: any
// missing API, permission denial or absent hardware yields
// CapabilityUnsupported.
type Prober interface {
	Probe(ctx context.Context) Capability
}

// DeviceProber probes by acquiring and immediately releasing an audio
// capture handle at Path, so the microphone is not held when the session
// falls back to a simulated call.
type DeviceProber struct {
	Path string
}

const defaultAudioPath = "/dev/snd"

func (p DeviceProber) Probe(ctx context.Context) Capability {
	if err := ctx.Err(); err != nil {
		return CapabilityUnsupported
	}

	path := p.Path
	if path == "" {
		path = defaultAudioPath
	}

	f, err := os.Open(path)
	if err != nil {
		slog.Warn("Audio capture unavailable", "path", path, "error", err)
		return CapabilityUnsupported
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		slog.Warn("Audio capture probe failed", "path", path, "error", err)
		return CapabilityUnsupported
	}

	if info.IsDir() {
		entries, err := f.ReadDir(-1)
		if err != nil || len(entries) == 0 {
			slog.Warn("No audio capture devices found", "path", path)
			return CapabilityUnsupported
		}
	}

	slog.Info("Audio capture available", "path", path)
	return CapabilityReady
}

// StaticProber always reports a fixed capability. Used by deployments that
// disable live audio outright and by tests.
type StaticProber struct {
	Capability Capability
}

func (p StaticProber) Probe(ctx context.Context) Capability {
	return p.Capability
}
