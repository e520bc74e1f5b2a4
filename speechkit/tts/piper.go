package tts

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
)

// EnvPiperModels points at the directory holding piper voice models
// (<voice>.onnx plus its .json). Read by the backend, not by the resolver.
const EnvPiperModels = "PIPER_MODELS_DIR"

var (
	_ Engine          = (*PiperEngine)(nil)
	_ FileSynthesizer = (*PiperEngine)(nil)
)

// piperVoices maps language codes to a default voice model name.
var piperVoices = map[string]string{
	"en": "en_US-lessac-medium",
	"de": "de_DE-thorsten-medium",
	"es": "es_ES-davefx-medium",
	"fr": "fr_FR-siwis-medium",
	"it": "it_IT-riccardo-medium",
	"ru": "ru_RU-ruslan-medium",
	"uk": "uk_UA-ukrainian_tts-medium",
	"zh": "zh_CN-huayan-medium",
}

type piperOptions struct {
	Model string `mapstructure:"model"`
}

// PiperEngine runs the piper CLI as a subprocess. Offline; produces WAV.
// First use of a language requires its voice model to be present in the
// models directory; generation fails with download guidance otherwise.
type PiperEngine struct {
	binary    string
	modelsDir string
}

// NewPiperEngine locates the piper binary and the models directory.
// Returns an error when the binary is not on PATH, which the registry
// turns into an unavailable marking.
func NewPiperEngine() (*PiperEngine, error) {
	binary, err := exec.LookPath("piper")
	if err != nil {
		return nil, fmt.Errorf("piper binary not found on PATH (install piper-tts)")
	}
	return &PiperEngine{binary: binary, modelsDir: piperModelsDir()}, nil
}

// PiperFactory adapts NewPiperEngine's signature for the registry.
func PiperFactory() (Engine, error) {
	return NewPiperEngine()
}

func piperModelsDir() string {
	if dir := os.Getenv(EnvPiperModels); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".piper", "voices")
	}
	return filepath.Join(home, ".local", "share", "piper", "voices")
}

func (p *PiperEngine) Name() string {
	return "piper"
}

func (p *PiperEngine) Available() bool {
	return p.binary != ""
}

func (p *PiperEngine) Format() Format {
	return FormatWav
}

func (p *PiperEngine) Generate(ctx context.Context, text string, cfg Config) ([]byte, error) {
	return p.run(ctx, text, cfg, "-")
}

// GenerateToFile is piper's native file capability; piper writes the WAV
// itself, so the adapter's generate-then-write path is skipped.
func (p *PiperEngine) GenerateToFile(ctx context.Context, text, filename string, cfg Config) (string, error) {
	if _, err := p.run(ctx, text, cfg, filename); err != nil {
		return "", err
	}
	return filename, nil
}

func (p *PiperEngine) run(ctx context.Context, text string, cfg Config, output string) ([]byte, error) {
	model, err := p.modelPath(cfg)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, p.binary, "--model", model, "--output_file", output)
	cmd.Stdin = bytes.NewReader([]byte(text))

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("piper: %w: %s", err, stderr.String())
		}
		return nil, fmt.Errorf("piper: %w", err)
	}

	if output != "-" {
		return nil, nil
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("piper produced no audio")
	}
	return stdout.Bytes(), nil
}

// modelPath resolves the voice model for the request: explicit "model"
// extension first, then the per-language default inside the models dir.
func (p *PiperEngine) modelPath(cfg Config) (string, error) {
	var opts piperOptions
	if err := mapstructure.WeakDecode(map[string]any(cfg), &opts); err != nil {
		return "", fmt.Errorf("decode options: %w", err)
	}
	if opts.Model != "" {
		return opts.Model, nil
	}

	voice, ok := piperVoices[cfg.Language()]
	if !ok {
		voice = piperVoices["en"]
	}
	path := filepath.Join(p.modelsDir, voice+".onnx")
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf(
			"voice model %s not found in %s: download it from https://huggingface.co/rhasspy/piper-voices or set %s",
			voice, p.modelsDir, EnvPiperModels,
		)
	}
	return path, nil
}
