package tts

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/mitchellh/mapstructure"
)

var _ Engine = (*SayEngine)(nil)

type sayOptions struct {
	Voice string `mapstructure:"voice"`
}

// SayEngine uses the macOS say command as an offline fallback. It renders
// to AIFF and converts to WAV with afconvert, since say cannot emit WAV
// directly. Only available on darwin.
type SayEngine struct{}

// NewSayEngine verifies the platform and the say binary.
func NewSayEngine() (*SayEngine, error) {
	if runtime.GOOS != "darwin" {
		return nil, fmt.Errorf("say is only available on macOS")
	}
	if _, err := exec.LookPath("say"); err != nil {
		return nil, fmt.Errorf("say binary not found")
	}
	return &SayEngine{}, nil
}

// SayFactory adapts NewSayEngine's signature for the registry.
func SayFactory() (Engine, error) {
	return NewSayEngine()
}

func (s *SayEngine) Name() string {
	return "say"
}

func (s *SayEngine) Available() bool {
	return runtime.GOOS == "darwin"
}

func (s *SayEngine) Format() Format {
	return FormatWav
}

func (s *SayEngine) Generate(ctx context.Context, text string, cfg Config) ([]byte, error) {
	var opts sayOptions
	if err := mapstructure.WeakDecode(map[string]any(cfg), &opts); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}

	tmp, err := os.CreateTemp("", "speechkit-say-*.aiff")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	aiffPath := tmp.Name()
	tmp.Close()
	defer os.Remove(aiffPath)

	wavPath := aiffPath + ".wav"
	defer os.Remove(wavPath)

	args := []string{"-o", aiffPath}
	if opts.Voice != "" {
		args = append(args, "-v", opts.Voice)
	}
	if r, ok := cfg.Rate(); ok {
		args = append(args, "-r", fmt.Sprintf("%.0f", r))
	}
	args = append(args, text)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "say", args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("say: %w: %s", err, stderr.String())
	}

	stderr.Reset()
	convert := exec.CommandContext(ctx, "afconvert",
		"-f", "WAVE",
		"-d", "LEI16@22050",
		"-c", "1",
		aiffPath, wavPath,
	)
	convert.Stderr = &stderr
	if err := convert.Run(); err != nil {
		return nil, fmt.Errorf("afconvert: %w: %s", err, stderr.String())
	}

	data, err := os.ReadFile(wavPath)
	if err != nil {
		return nil, fmt.Errorf("read converted audio: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("say produced no audio")
	}
	return data, nil
}
