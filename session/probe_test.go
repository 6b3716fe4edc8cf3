package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceProberMissingPath(t *testing.T) {
	p := DeviceProber{Path: filepath.Join(t.TempDir(), "nope")}
	assert.Equal(t, CapabilityUnsupported, p.Probe(context.Background()))
}

func TestDeviceProberEmptyDirectory(t *testing.T) {
	p := DeviceProber{Path: t.TempDir()}
	assert.Equal(t, CapabilityUnsupported, p.Probe(context.Background()))
}

func TestDeviceProberPopulatedDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pcmC0D0c"), nil, 0o644))

	p := DeviceProber{Path: dir}
	assert.Equal(t, CapabilityReady, p.Probe(context.Background()))
}

func TestDeviceProberCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := DeviceProber{Path: t.TempDir()}
	assert.Equal(t, CapabilityUnsupported, p.Probe(ctx))
}

func TestStaticProber(t *testing.T) {
	assert.Equal(t, CapabilityReady, StaticProber{Capability: CapabilityReady}.Probe(context.Background()))
	assert.Equal(t, CapabilityUnsupported, StaticProber{}.Probe(context.Background()))
}
