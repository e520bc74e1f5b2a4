package tts

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxTextLen is the longest input accepted by the driver, in runes.
const MaxTextLen = 5000

// Artifact is the immutable result of one synthesis call. Ownership passes
// to the caller (typically the output dispatcher); treat Data as read-only.
type Artifact struct {
	Data   []byte
	Format Format
}

// Driver is the single choke point turning (engine name, text, overrides)
// into an Artifact. It hides registry lookup and capability-adapter
// selection from callers.
type Driver struct {
	registry *Registry
	resolver *Resolver
	now      func() time.Time
}

// NewDriver creates a driver over the given registry and resolver.
func NewDriver(registry *Registry, resolver *Resolver) *Driver {
	return &Driver{
		registry: registry,
		resolver: resolver,
		now:      time.Now,
	}
}

// Synthesize resolves configuration, loads the engine, and produces one
// audio artifact. An unknown or unavailable engine fails with an
// EngineUnavailableError; backend failures come back as a SynthesisError
// carrying the original cause.
func (d *Driver) Synthesize(ctx context.Context, engineName, text string, overrides Config) (Artifact, error) {
	text, err := validateText(text)
	if err != nil {
		return Artifact{}, err
	}
	cfg, err := d.resolver.Resolve(overrides)
	if err != nil {
		return Artifact{}, err
	}

	desc, ok := d.registry.Describe(engineName)
	if !ok || desc.Availability != AvailabilityAvailable {
		return Artifact{}, d.unavailable(engineName)
	}
	engine := desc.Engine()
	// Callers check first, but the contract double-checks.
	if !engine.Available() {
		return Artifact{}, d.unavailable(engineName)
	}

	data, err := d.toBytes(ctx, engine, desc.Capabilities, text, cfg)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{Data: data, Format: engine.Format()}, nil
}

// SynthesizeToFile synthesizes text and writes the result to filename,
// using the backend's native file path when it has one. An empty filename
// is replaced by a timestamped name with the backend's declared extension.
// Returns the path written.
func (d *Driver) SynthesizeToFile(ctx context.Context, engineName, text, filename string, overrides Config) (string, error) {
	text, err := validateText(text)
	if err != nil {
		return "", err
	}
	cfg, err := d.resolver.Resolve(overrides)
	if err != nil {
		return "", err
	}

	desc, ok := d.registry.Describe(engineName)
	if !ok || desc.Availability != AvailabilityAvailable {
		return "", d.unavailable(engineName)
	}
	engine := desc.Engine()
	if !engine.Available() {
		return "", d.unavailable(engineName)
	}

	if filename == "" {
		filename = TimestampFilename(d.now(), engine.Format())
	}

	if desc.Capabilities.ToFile {
		path, err := engine.(FileSynthesizer).GenerateToFile(ctx, text, filename, cfg)
		if err != nil {
			return "", &SynthesisError{Engine: engine.Name(), Err: err}
		}
		return path, nil
	}

	// Default adapter: generate bytes, then a scoped write. The file
	// handle is released on every exit path, including synthesis failure
	// (which happens before the file is even created).
	data, err := d.toBytes(ctx, engine, desc.Capabilities, text, cfg)
	if err != nil {
		return "", err
	}
	if err := writeFile(filename, data); err != nil {
		return "", err
	}
	return filename, nil
}

// toBytes invokes the backend's byte capability, native or adapted. The
// branch runs on the capability record the registry stored at probe time,
// not on a fresh type assertion per call.
func (d *Driver) toBytes(ctx context.Context, engine Engine, caps Capabilities, text string, cfg Config) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if caps.ToBytes {
		data, err = engine.(ByteSynthesizer).GenerateToBytes(ctx, text, cfg)
	} else {
		data, err = engine.Generate(ctx, text, cfg)
	}
	if err != nil {
		return nil, &SynthesisError{Engine: engine.Name(), Err: err}
	}
	if len(data) == 0 {
		return nil, &SynthesisError{Engine: engine.Name(), Err: fmt.Errorf("no audio data produced")}
	}
	return data, nil
}

func (d *Driver) unavailable(name string) error {
	hint := fmt.Sprintf("not registered; known engines: %s", strings.Join(d.registry.Names(), ", "))
	if desc, ok := d.registry.Describe(name); ok {
		hint = desc.Reason()
	}
	return &EngineUnavailableError{Engine: name, Hint: hint}
}

// TimestampFilename builds the auto-generated output filename for callers
// that did not supply one.
func TimestampFilename(t time.Time, format Format) string {
	return fmt.Sprintf("%s.%s", t.Format("20060102_150405"), format.Ext())
}

func validateText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}
	if utf8.RuneCountInString(text) > MaxTextLen {
		return "", fmt.Errorf("%w: %d runes (max %d)", ErrTextTooLong, utf8.RuneCountInString(text), MaxTextLen)
	}
	return text, nil
}

func writeFile(filename string, data []byte) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create %s: %w", filename, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", filename, cerr)
		}
	}()
	if _, err = f.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}
