package tts

import (
	"os"
	"strconv"
	"strings"
)

// Environment variables read by the resolver's middle layer. Backend-owned
// variables (model directories and the like) are not listed here; backends
// read those themselves and the resolver never shadows them.
const (
	EnvLanguage = "SPEECHKIT_LANGUAGE"
	EnvRate     = "SPEECHKIT_RATE"
	EnvVolume   = "SPEECHKIT_VOLUME"
	EnvSlow     = "SPEECHKIT_SLOW"
)

// Resolver merges compiled-in defaults, process environment, and call-site
// overrides into one Config. Precedence: overrides > environment >
// defaults. Resolution is pure apart from reading the environment and is
// safe to call repeatedly with different overrides.
type Resolver struct {
	defaults  Config
	lookupEnv func(string) (string, bool)
}

// NewResolver returns a resolver over the process environment.
func NewResolver() *Resolver {
	return &Resolver{
		defaults:  DefaultConfig(),
		lookupEnv: os.LookupEnv,
	}
}

// DefaultConfig returns the compiled-in option defaults.
func DefaultConfig() Config {
	return Config{
		KeyLanguage: "en",
		KeyRate:     float64(150),
		KeyVolume:   0.9,
		KeySlow:     false,
	}
}

// Resolve produces a validated Config. Unknown override keys are kept
// verbatim so backends can read their own extensions. A missing or empty
// language after the merge fails with ErrLanguageRequired.
func (r *Resolver) Resolve(overrides Config) (Config, error) {
	cfg := r.defaults.Clone()

	if v, ok := r.lookupEnv(EnvLanguage); ok && v != "" {
		cfg[KeyLanguage] = v
	}
	if v, ok := r.lookupEnv(EnvRate); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg[KeyRate] = f
		}
	}
	if v, ok := r.lookupEnv(EnvVolume); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg[KeyVolume] = f
		}
	}
	if v, ok := r.lookupEnv(EnvSlow); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg[KeySlow] = b
		}
	}

	for k, v := range overrides {
		cfg[k] = v
	}

	lang, _ := cfg[KeyLanguage].(string)
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return nil, ErrLanguageRequired
	}
	cfg[KeyLanguage] = strings.ToLower(lang)

	return cfg, nil
}
