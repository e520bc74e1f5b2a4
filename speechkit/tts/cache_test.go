package tts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func cacheKeyFor(name string, text string, cfg Config) string {
	engine := NewCachedEngine(&stubEngine{name: name, available: true}, nil, 0, nil)
	return engine.generateKey(text, cfg)
}

func TestGenerateKey(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := cacheKeyFor("edge", "hello", Config{KeyLanguage: "en", "voice": "en-US-AriaNeural"})
		b := cacheKeyFor("edge", "hello", Config{KeyLanguage: "en", "voice": "en-US-AriaNeural"})
		assert.Equal(t, a, b)
	})

	t.Run("voice changes the key", func(t *testing.T) {
		a := cacheKeyFor("edge", "hello", Config{KeyLanguage: "en", "voice": "en-US-AriaNeural"})
		b := cacheKeyFor("edge", "hello", Config{KeyLanguage: "en", "voice": "en-GB-SoniaNeural"})
		assert.NotEqual(t, a, b)
	})

	t.Run("field boundaries are unambiguous", func(t *testing.T) {
		// Without framing these tuples would feed identical bytes to the
		// hash: ("ab","c") and ("a","bc") both concatenate to "abc".
		a := cacheKeyFor("ab", "hello", Config{KeyLanguage: "c"})
		b := cacheKeyFor("a", "hello", Config{KeyLanguage: "bc"})
		assert.NotEqual(t, a, b)

		c := cacheKeyFor("edge", "ahello", Config{KeyLanguage: "en"})
		d := cacheKeyFor("edgea", "hello", Config{KeyLanguage: "en"})
		assert.NotEqual(t, c, d)
	})
}
