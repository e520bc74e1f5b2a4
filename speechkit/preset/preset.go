// Package preset maps human-friendly preset names to synthesis settings,
// so callers can say "newsreader" instead of spelling out an engine,
// language, and voice every time.
package preset

import (
	"fmt"

	"github.com/makeitchaccha/speechkit/speechkit/tts"
)

type PresetID string

type Preset struct {
	Identifier   PresetID
	Engine       string
	Language     string
	Voice        string
	SpeakingRate float64
}

func (p Preset) validate() error {
	if p.Identifier == "" {
		return fmt.Errorf("preset identifier must not be empty")
	}
	if p.Engine == "" {
		return fmt.Errorf("preset engine must not be empty")
	}
	return nil
}

// Overrides converts the preset into call-site configuration overrides for
// the resolver. Zero values are omitted so layered resolution still works.
func (p Preset) Overrides() tts.Config {
	cfg := tts.Config{}
	if p.Language != "" {
		cfg[tts.KeyLanguage] = p.Language
	}
	if p.Voice != "" {
		cfg["voice"] = p.Voice
	}
	if p.SpeakingRate != 0 {
		cfg["speaking_rate"] = p.SpeakingRate
	}
	return cfg
}

type Registry struct {
	presets map[PresetID]Preset // identifier -> Preset
	lists   []Preset
}

func NewRegistry() *Registry {
	return &Registry{
		presets: make(map[PresetID]Preset),
	}
}

func (r *Registry) Register(preset Preset) error {
	if err := preset.validate(); err != nil {
		return err
	}
	if _, ok := r.presets[preset.Identifier]; ok {
		return fmt.Errorf("preset already registered: %s", preset.Identifier)
	}
	r.presets[preset.Identifier] = preset
	r.lists = append(r.lists, preset)

	return nil
}

func (r *Registry) Get(identifier PresetID) (Preset, bool) {
	preset, ok := r.presets[identifier]
	return preset, ok
}

func (r *Registry) List() []Preset {
	return r.lists
}
