package speechkit

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// LoadConfig reads the TOML config at path and applies SPEECHKIT_* env-var
// overrides on top, so deployments can keep secrets out of the file.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if _, err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()
	return &cfg, nil
}

type Config struct {
	Log      LogConfig               `toml:"log"`
	TTS      TTSConfig               `toml:"tts"`
	Presets  map[string]PresetConfig `toml:"presets"`
	Database DatabaseConfig          `toml:"database"`
	Redis    RedisConfig             `toml:"redis"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type TTSConfig struct {
	DefaultEngine    string `toml:"default_engine"`
	FallbackPresetID string `toml:"fallback_preset"`
}

type PresetConfig struct {
	Engine       string  `toml:"engine"`
	Language     string  `toml:"language"`
	Voice        string  `toml:"voice"`
	SpeakingRate float64 `toml:"speaking_rate"`
}

type DatabaseConfig struct {
	Driver string `toml:"driver"`
	Dsn    string `toml:"dsn"`
}

type RedisConfig struct {
	Enabled bool   `toml:"enabled"`
	Url     string `toml:"url"`
	// TTL is given in nanoseconds (a bare integer in the TOML file).
	TTL time.Duration `toml:"ttl"`
}

func (c *Config) applyEnvOverrides() {
	if v, ok := os.LookupEnv("SPEECHKIT_LOG_LEVEL"); ok {
		var level slog.Level
		if err := level.UnmarshalText([]byte(v)); err == nil {
			c.Log.Level = level
		}
	}
	if v, ok := os.LookupEnv("SPEECHKIT_DATABASE_DRIVER"); ok {
		c.Database.Driver = v
	}
	if v, ok := os.LookupEnv("SPEECHKIT_DATABASE_DSN"); ok {
		c.Database.Dsn = v
	}
	if v, ok := os.LookupEnv("SPEECHKIT_REDIS_URL"); ok {
		c.Redis.Url = v
	}
}
