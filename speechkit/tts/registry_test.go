package tts

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	name      string
	available bool
	format    Format
	data      []byte
	err       error
}

var _ Engine = (*stubEngine)(nil)

func (s *stubEngine) Name() string      { return s.name }
func (s *stubEngine) Available() bool   { return s.available }
func (s *stubEngine) Format() Format    { return s.format }
func (s *stubEngine) Generate(ctx context.Context, text string, cfg Config) ([]byte, error) {
	return s.data, s.err
}

// stubFileEngine additionally writes straight to files.
type stubFileEngine struct {
	stubEngine
	toFile func(filename string) (string, error)
}

var _ FileSynthesizer = (*stubFileEngine)(nil)

func (s *stubFileEngine) GenerateToFile(ctx context.Context, text, filename string, cfg Config) (string, error) {
	return s.toFile(filename)
}

func okFactory(name string, format Format, data []byte) Factory {
	return func() (Engine, error) {
		return &stubEngine{name: name, available: true, format: format, data: data}, nil
	}
}

func TestRegistryLoad(t *testing.T) {
	registry := NewRegistry()
	registry.Register("ok", okFactory("ok", FormatWav, []byte("audio")))
	registry.Register("broken", func() (Engine, error) {
		return nil, errors.New("no binary on PATH")
	})

	t.Run("available engine", func(t *testing.T) {
		engine, ok := registry.Load("ok")
		require.True(t, ok)
		assert.Equal(t, "ok", engine.Name())
	})

	t.Run("failed probe", func(t *testing.T) {
		_, ok := registry.Load("broken")
		assert.False(t, ok)
	})

	t.Run("unknown name", func(t *testing.T) {
		// unknown and unavailable must be indistinguishable here
		_, ok := registry.Load("ghost")
		assert.False(t, ok)
	})
}

func TestRegistryAvailable(t *testing.T) {
	registry := NewRegistry()
	registry.Register("ok", okFactory("ok", FormatWav, []byte("audio")))
	registry.Register("self-reported", func() (Engine, error) {
		return &stubEngine{name: "self-reported", available: false}, nil
	})

	assert.True(t, registry.Available("ok"))
	assert.False(t, registry.Available("self-reported"))
	assert.False(t, registry.Available("ghost"))
}

func TestRegistryProbeOnce(t *testing.T) {
	calls := 0
	registry := NewRegistry()
	registry.Register("counted", func() (Engine, error) {
		calls++
		return &stubEngine{name: "counted", available: true}, nil
	})

	registry.Available("counted")
	registry.Load("counted")
	registry.Describe("counted")
	registry.Engines()

	assert.Equal(t, 1, calls)
}

func TestRegistryPanickingFactory(t *testing.T) {
	registry := NewRegistry()
	registry.Register("panicky", func() (Engine, error) {
		panic("probe exploded")
	})
	registry.Register("ok", okFactory("ok", FormatMp3, []byte("audio")))

	// the panic is contained and degrades to unavailable
	assert.False(t, registry.Available("panicky"))

	desc, ok := registry.Describe("panicky")
	require.True(t, ok)
	assert.Equal(t, AvailabilityUnavailable, desc.Availability)
	assert.Contains(t, desc.Reason(), "panicked")

	// other engines are unaffected
	assert.True(t, registry.Available("ok"))
}

func TestRegistryDescribe(t *testing.T) {
	registry := NewRegistry()
	registry.Register("broken", func() (Engine, error) {
		return nil, errors.New("piper not found, install from https://example.invalid")
	})

	desc, ok := registry.Describe("broken")
	require.True(t, ok)
	assert.Equal(t, AvailabilityUnavailable, desc.Availability)
	assert.Equal(t, "piper not found, install from https://example.invalid", desc.Reason())
	assert.Nil(t, desc.Engine())

	_, ok = registry.Describe("ghost")
	assert.False(t, ok)
}

func TestRegistryNames(t *testing.T) {
	registry := NewRegistry()
	registry.Register("ok", okFactory("ok", FormatWav, []byte("audio")))
	registry.Register("broken", func() (Engine, error) {
		return nil, errors.New("missing binary")
	})

	// Names keeps unavailable engines visible, so callers can pair it
	// with Describe to report why a backend cannot run.
	assert.Equal(t, []string{"ok", "broken"}, registry.Names())

	for _, name := range registry.Names() {
		_, ok := registry.Describe(name)
		assert.True(t, ok)
	}
}

func TestRegistryEngines(t *testing.T) {
	registry := NewRegistry()
	registry.Register("ok", okFactory("ok", FormatWav, []byte("audio")))
	registry.Register("broken", func() (Engine, error) {
		return nil, errors.New("nope")
	})

	engines := registry.Engines()
	require.Len(t, engines, 1)
	assert.Contains(t, engines, "ok")
}

func TestRegistryCapabilities(t *testing.T) {
	registry := NewRegistry()
	registry.Register("plain", okFactory("plain", FormatWav, []byte("audio")))
	registry.Register("file", func() (Engine, error) {
		e := &stubFileEngine{stubEngine: stubEngine{name: "file", available: true}}
		e.toFile = func(filename string) (string, error) { return filename, nil }
		return e, nil
	})

	plain, _ := registry.Describe("plain")
	assert.Equal(t, Capabilities{}, plain.Capabilities)

	file, _ := registry.Describe("file")
	assert.Equal(t, Capabilities{ToFile: true}, file.Capabilities)
}
