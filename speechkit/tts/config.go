package tts

// Option names recognized by the resolver. Anything else in a Config is a
// backend extension and passes through untouched.
const (
	KeyLanguage = "language"
	KeyRate     = "rate"
	KeyVolume   = "volume"
	KeySlow     = "slow"
)

// Config carries synthesis options from the caller to a backend. The
// well-known keys have typed accessors; unknown keys are preserved so
// backends can read their own extensions (decode them with
// mitchellh/mapstructure, see the engine implementations).
type Config map[string]any

// Language returns the language code, or "" when unset.
func (c Config) Language() string {
	s, _ := c[KeyLanguage].(string)
	return s
}

// Rate returns the speaking rate. The unit is backend-defined; the
// compiled-in default is words per minute.
func (c Config) Rate() (float64, bool) {
	return c.float(KeyRate)
}

// Volume returns the volume in [0, 1].
func (c Config) Volume() (float64, bool) {
	return c.float(KeyVolume)
}

// Slow reports whether slow speech was requested.
func (c Config) Slow() bool {
	b, _ := c[KeySlow].(bool)
	return b
}

func (c Config) float(key string) (float64, bool) {
	switch v := c[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// Clone returns a shallow copy. Resolution never mutates its inputs.
func (c Config) Clone() Config {
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
