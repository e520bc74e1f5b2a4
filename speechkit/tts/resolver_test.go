package tts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(env map[string]string) *Resolver {
	return &Resolver{
		defaults: DefaultConfig(),
		lookupEnv: func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		},
	}
}

func TestResolve(t *testing.T) {
	testcases := []struct {
		name      string
		env       map[string]string
		overrides Config
		want      Config
		wantErr   error
	}{
		{
			name: "defaults only",
			want: Config{
				KeyLanguage: "en",
				KeyRate:     float64(150),
				KeyVolume:   0.9,
				KeySlow:     false,
			},
		},
		{
			name: "environment over defaults",
			env: map[string]string{
				EnvLanguage: "ja",
				EnvRate:     "180",
				EnvSlow:     "true",
			},
			want: Config{
				KeyLanguage: "ja",
				KeyRate:     float64(180),
				KeyVolume:   0.9,
				KeySlow:     true,
			},
		},
		{
			name: "overrides over environment",
			env: map[string]string{
				EnvLanguage: "ja",
				EnvRate:     "180",
			},
			overrides: Config{
				KeyLanguage: "fr",
				KeyRate:     float64(120),
			},
			want: Config{
				KeyLanguage: "fr",
				KeyRate:     float64(120),
				KeyVolume:   0.9,
				KeySlow:     false,
			},
		},
		{
			name:      "language is lowercased",
			overrides: Config{KeyLanguage: "EN-us "},
			want: Config{
				KeyLanguage: "en-us",
				KeyRate:     float64(150),
				KeyVolume:   0.9,
				KeySlow:     false,
			},
		},
		{
			name:      "unknown keys pass through",
			overrides: Config{"voice": "en-US-Wavenet-A", "speaking_rate": 1.2},
			want: Config{
				KeyLanguage:     "en",
				KeyRate:         float64(150),
				KeyVolume:       0.9,
				KeySlow:         false,
				"voice":         "en-US-Wavenet-A",
				"speaking_rate": 1.2,
			},
		},
		{
			name: "malformed environment values are ignored",
			env: map[string]string{
				EnvRate: "fast",
				EnvSlow: "kinda",
			},
			want: Config{
				KeyLanguage: "en",
				KeyRate:     float64(150),
				KeyVolume:   0.9,
				KeySlow:     false,
			},
		},
		{
			name:      "missing language",
			overrides: Config{KeyLanguage: "  "},
			wantErr:   ErrLanguageRequired,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			resolver := newTestResolver(tc.env)
			got, err := resolver.Resolve(tc.overrides)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveDoesNotMutateInputs(t *testing.T) {
	resolver := newTestResolver(nil)
	overrides := Config{KeyLanguage: "JA"}

	_, err := resolver.Resolve(overrides)
	require.NoError(t, err)

	assert.Equal(t, "JA", overrides[KeyLanguage])
	assert.Equal(t, "en", resolver.defaults[KeyLanguage])
}
