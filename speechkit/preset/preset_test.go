package preset

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/makeitchaccha/speechkit/speechkit/tts"
)

func TestValidate(t *testing.T) {
	testcases := []struct {
		name    string
		preset  Preset
		wantErr bool
	}{
		{
			name: "valid preset",
			preset: Preset{
				Identifier: "test_preset",
				Engine:     "test_engine",
			},
			wantErr: false,
		},
		{
			name: "empty identifier",
			preset: Preset{
				Identifier: "",
				Engine:     "test_engine",
			},
			wantErr: true,
		},
		{
			name: "empty engine",
			preset: Preset{
				Identifier: "test_preset",
				Engine:     "",
			},
			wantErr: true,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.preset.validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("preset.validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestRegister(t *testing.T) {
	goodPreset := Preset{
		Identifier: "test_preset",
		Engine:     "test_engine",
	}

	badPreset := Preset{
		Identifier: "",
		Engine:     "test_engine",
	}

	testcases := []struct {
		name    string
		preset  Preset
		wantErr bool
	}{
		{
			name:    "register valid preset",
			preset:  goodPreset,
			wantErr: false,
		},
		{
			name:    "register invalid preset",
			preset:  badPreset,
			wantErr: true,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			registry := NewRegistry()
			err := registry.Register(tc.preset)
			if (err != nil) != tc.wantErr {
				t.Errorf("Registry.Register() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestGet(t *testing.T) {
	registry := NewRegistry()
	preset := Preset{
		Identifier: "test_preset",
		Engine:     "test_engine",
	}

	if err := registry.Register(preset); err != nil {
		t.Fatalf("Failed to register preset: %v", err)
	}

	retrieved, ok := registry.Get(preset.Identifier)
	if !ok {
		t.Fatalf("registry.Get() = _, false, want true for identifier %s", preset.Identifier)
	}

	if !cmp.Equal(retrieved, preset) {
		t.Errorf("registry.Get() = %v, _, want %v", retrieved, preset)
	}
}

func TestOverrides(t *testing.T) {
	preset := Preset{
		Identifier:   "test_preset",
		Engine:       "test_engine",
		Language:     "en-US",
		Voice:        "en-US-Wavenet-A",
		SpeakingRate: 1.2,
	}

	want := tts.Config{
		tts.KeyLanguage: "en-US",
		"voice":         "en-US-Wavenet-A",
		"speaking_rate": 1.2,
	}
	if diff := cmp.Diff(want, preset.Overrides()); diff != "" {
		t.Errorf("Overrides() mismatch (-want +got):\n%s", diff)
	}

	// zero values must not leak into the overrides
	sparse := Preset{Identifier: "sparse", Engine: "test_engine"}
	if got := sparse.Overrides(); len(got) != 0 {
		t.Errorf("Overrides() = %v, want empty config", got)
	}
}
