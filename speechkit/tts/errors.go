package tts

import (
	"errors"
	"fmt"
)

var (
	// ErrLanguageRequired is returned by the resolver when no layer
	// provides a language.
	ErrLanguageRequired = errors.New("configuration requires a language")

	// ErrEmptyText is returned when the input text is empty after
	// trimming.
	ErrEmptyText = errors.New("text is empty")

	// ErrTextTooLong is returned when the input text exceeds MaxTextLen.
	ErrTextTooLong = errors.New("text too long")

	// ErrEngineUnavailable is returned when a backend is unknown, its
	// dependencies are missing, or it reports itself unavailable.
	ErrEngineUnavailable = errors.New("engine unavailable")
)

// EngineUnavailableError wraps ErrEngineUnavailable with the engine name
// and an actionable hint about what is missing.
type EngineUnavailableError struct {
	Engine string
	Hint   string
}

func (e *EngineUnavailableError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("engine %q unavailable", e.Engine)
	}
	return fmt.Sprintf("engine %q unavailable: %s", e.Engine, e.Hint)
}

func (e *EngineUnavailableError) Unwrap() error {
	return ErrEngineUnavailable
}

// SynthesisError wraps a backend-internal failure without swallowing the
// original cause.
type SynthesisError struct {
	Engine string
	Err    error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("engine %q: synthesis failed: %v", e.Engine, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}
