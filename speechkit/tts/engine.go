package tts

import (
	"context"
)

// Engine is the minimal contract every synthesis backend must satisfy.
// Backends differ wildly underneath (cloud APIs, local subprocesses, system
// commands); this interface is the only thing the rest of the system sees.
type Engine interface {
	// Name returns the backend identifier, e.g. "google", "edge", "piper".
	Name() string

	// Available reports whether the backend can run in this environment.
	// It must be cheap and must never panic; expensive dependency checks
	// belong in the registry factory.
	Available() bool

	// Generate synthesizes text into encoded audio bytes using the
	// resolved configuration. Backends read their own extension keys from
	// cfg and ignore anything they do not understand.
	Generate(ctx context.Context, text string, cfg Config) ([]byte, error)

	// Format returns the encoding this backend produces. It is fixed per
	// backend and is never sniffed from generated content.
	Format() Format
}

// FileSynthesizer is an optional capability for backends that can write
// their output straight to a file (e.g. piper's --output_file). Backends
// without it get a default adapter built from Generate.
type FileSynthesizer interface {
	// GenerateToFile synthesizes text directly into filename and returns
	// the path written.
	GenerateToFile(ctx context.Context, text, filename string, cfg Config) (string, error)
}

// ByteSynthesizer is an optional capability for backends with a dedicated
// byte-oriented path distinct from Generate.
type ByteSynthesizer interface {
	GenerateToBytes(ctx context.Context, text string, cfg Config) ([]byte, error)
}

// Capabilities records which optional interfaces a backend implements.
// It is computed once at discovery so dispatch is a branch on stored
// booleans, not repeated type assertions.
type Capabilities struct {
	ToFile  bool
	ToBytes bool
}

// DetectCapabilities inspects an engine for its optional interfaces.
func DetectCapabilities(e Engine) Capabilities {
	_, toFile := e.(FileSynthesizer)
	_, toBytes := e.(ByteSynthesizer)
	return Capabilities{ToFile: toFile, ToBytes: toBytes}
}

// Format identifies the audio encoding a backend produces.
type Format int

const (
	FormatUnknown Format = iota
	FormatWav
	FormatMp3
)

func (f Format) String() string {
	switch f {
	case FormatWav:
		return "wav"
	case FormatMp3:
		return "mp3"
	default:
		return "unknown"
	}
}

// Ext returns the file extension for the format, without the dot.
// Unknown formats fall back to "audio" so generated filenames stay usable.
func (f Format) Ext() string {
	switch f {
	case FormatWav:
		return "wav"
	case FormatMp3:
		return "mp3"
	default:
		return "audio"
	}
}
