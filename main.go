package main

import (
	"context"
	"embed"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/makeitchaccha/speechkit/speechkit"
	"github.com/makeitchaccha/speechkit/speechkit/output"
	"github.com/makeitchaccha/speechkit/speechkit/preset"
	"github.com/makeitchaccha/speechkit/speechkit/tts"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

func main() {
	path := flag.String("config", "config.toml", "path to config")
	engineName := flag.String("engine", "", "engine to synthesize with")
	presetID := flag.String("preset", "", "preset to synthesize with")
	language := flag.String("lang", "", "language of the text")
	out := flag.String("out", "", "write audio to this file")
	toStdout := flag.Bool("stdout", false, "stream audio to stdout")
	play := flag.Bool("play", false, "play audio on the default device")
	list := flag.Bool("list", false, "list engines and exit")
	flag.Parse()

	cfg := loadConfig(*path)
	setupLogger(cfg.Log)
	slog.Debug("Starting speechkit", slog.String("version", Version), slog.String("commit", Commit))

	ctx := context.Background()

	redisCache := setupCache(ctx, cfg.Redis)

	registry := tts.NewRegistry()
	register := func(name string, f tts.Factory) {
		if redisCache != nil {
			f = cachedFactory(f, redisCache, cfg.Redis.TTL)
		}
		registry.Register(name, f)
	}
	register("google", tts.GoogleFactory(ctx))
	register("edge", func() (tts.Engine, error) { return tts.NewEdgeEngine(), nil })
	register("piper", tts.PiperFactory)
	register("say", tts.SayFactory)

	if *list {
		listEngines(registry)
		return
	}

	text, err := readText(flag.Args())
	if err != nil {
		slog.Error("Failed to read text", slog.Any("err", err))
		os.Exit(-1)
	}

	overrides := tts.Config{}
	if p, ok := selectPreset(ctx, cfg, *presetID); ok {
		overrides = p.Overrides()
		if *engineName == "" {
			*engineName = p.Engine
		}
	}
	if *language != "" {
		overrides[tts.KeyLanguage] = *language
	}
	if *engineName == "" {
		*engineName = cfg.TTS.DefaultEngine
	}
	if *engineName == "" {
		*engineName = "edge"
	}

	driver := tts.NewDriver(registry, tts.NewResolver())
	artifact, err := driver.Synthesize(ctx, *engineName, text, overrides)
	if err != nil {
		slog.Error("Synthesis failed", slog.String("engine", *engineName), slog.Any("err", err))
		os.Exit(-1)
	}

	var player output.Player
	if *play {
		devicePlayer, err := output.NewDevicePlayer()
		if err != nil {
			slog.Error("Failed to open playback device", slog.Any("err", err))
			os.Exit(-1)
		}
		defer devicePlayer.Close()
		player = devicePlayer
	}

	targets := buildTargets(*out, *toStdout, *play)
	dispatcher := output.NewDispatcher(player)
	results, err := dispatcher.Deliver(ctx, artifact, targets)
	if err != nil {
		slog.Error("Delivery failed", slog.Any("err", err))
		os.Exit(-1)
	}

	failed := false
	for _, res := range results {
		if !res.Ok() {
			failed = true
			slog.Error("Target failed", slog.String("kind", res.Kind.String()), slog.Any("err", res.Err))
			continue
		}
		if res.Path != "" {
			slog.Info("Audio saved", slog.String("path", res.Path))
		}
	}
	if failed {
		os.Exit(-1)
	}
}

// loadConfig reads the config file when present and falls back to built-in
// defaults otherwise, so the CLI works without any config at all.
func loadConfig(path string) *speechkit.Config {
	if _, err := os.Stat(path); err != nil {
		return &speechkit.Config{Log: speechkit.LogConfig{Level: slog.LevelInfo, Format: "text"}}
	}
	cfg, err := speechkit.LoadConfig(path)
	if err != nil {
		slog.Error("Failed to read config", slog.Any("err", err))
		os.Exit(-1)
	}
	return cfg
}

// readText takes the text from the remaining arguments, or from stdin when
// none are given.
func readText(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

// selectPreset resolves the preset to use: the explicit -preset flag wins,
// otherwise the persisted selection for the current user with the configured
// fallback. Returns false when presets are not in play at all.
func selectPreset(ctx context.Context, cfg *speechkit.Config, presetID string) (preset.Preset, bool) {
	if len(cfg.Presets) == 0 {
		if presetID != "" {
			slog.Error("No presets configured", slog.String("preset", presetID))
			os.Exit(-1)
		}
		return preset.Preset{}, false
	}

	registry := preset.NewRegistry()
	for id, p := range cfg.Presets {
		if err := registry.Register(preset.Preset{
			Identifier:   preset.PresetID(id),
			Engine:       p.Engine,
			Language:     p.Language,
			Voice:        p.Voice,
			SpeakingRate: p.SpeakingRate,
		}); err != nil {
			slog.Error("Failed to register preset", slog.String("preset", id), slog.Any("err", err))
			os.Exit(-1)
		}
	}

	if presetID != "" {
		p, ok := registry.Get(preset.PresetID(presetID))
		if !ok {
			known := lo.Map(registry.List(), func(p preset.Preset, _ int) string { return string(p.Identifier) })
			slog.Error("Unknown preset", slog.String("preset", presetID), slog.String("known", strings.Join(known, ", ")))
			os.Exit(-1)
		}
		return p, true
	}

	if cfg.TTS.FallbackPresetID == "" {
		return preset.Preset{}, false
	}

	resolver, err := preset.NewResolver(registry, setupRepository(cfg.Database), preset.PresetID(cfg.TTS.FallbackPresetID))
	if err != nil {
		slog.Error("Failed to create preset resolver", slog.Any("err", err))
		os.Exit(-1)
	}
	p, err := resolver.Resolve(ctx, os.Getenv("USER"))
	if err != nil {
		slog.Error("Failed to resolve preset", slog.Any("err", err))
		os.Exit(-1)
	}
	return p, true
}

// setupRepository opens the preset database and runs pending migrations.
// Without a configured driver the selections simply are not persisted.
func setupRepository(cfg speechkit.DatabaseConfig) preset.Repository {
	if cfg.Driver == "" {
		return &preset.MockRepository{}
	}

	db, err := sqlx.Open(cfg.Driver, cfg.Dsn)
	if err != nil {
		slog.Error("Failed to open database", slog.String("driver", cfg.Driver), slog.Any("err", err))
		os.Exit(-1)
	}

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect(gooseDialect(cfg.Driver)); err != nil {
		slog.Error("Failed to set migration dialect", slog.Any("err", err))
		os.Exit(-1)
	}
	if err := goose.Up(db.DB, "migrations"); err != nil {
		slog.Error("Failed to run migrations", slog.Any("err", err))
		os.Exit(-1)
	}
	return preset.NewRepository(db)
}

func gooseDialect(driver string) string {
	switch driver {
	case "sqlite":
		return "sqlite3"
	default:
		return driver
	}
}

// setupCache connects to Redis when enabled. Returns nil when caching is off
// so engines stay unwrapped.
func setupCache(ctx context.Context, cfg speechkit.RedisConfig) *cache.Cache {
	if !cfg.Enabled {
		return nil
	}

	slog.Info("Redis is enabled, setting up cache")
	options, err := redis.ParseURL(cfg.Url)
	if err != nil {
		slog.Error("Failed to parse Redis URL", slog.Any("err", err))
		os.Exit(-1)
	}
	redisClient := redis.NewClient(options)
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Error("Failed to connect to Redis", slog.Any("err", err))
		os.Exit(-1)
	}
	slog.Info("Connected to Redis")

	return cache.New(&cache.Options{
		Redis:      redisClient,
		LocalCache: cache.NewTinyLFU(5, time.Minute),
	})
}

// cachedFactory wraps a factory so the probed engine reads through the
// shared cache.
func cachedFactory(f tts.Factory, redisCache *cache.Cache, ttl time.Duration) tts.Factory {
	return func() (tts.Engine, error) {
		engine, err := f()
		if err != nil {
			return nil, err
		}
		return tts.NewCachedEngine(engine, redisCache, ttl, nil), nil
	}
}

// buildTargets maps the output flags to delivery targets. With no flags at
// all the audio is saved next to the invocation under a timestamped name.
func buildTargets(out string, toStdout, play bool) []output.Target {
	var targets []output.Target
	if out != "" {
		targets = append(targets, output.File{Path: out})
	}
	if toStdout {
		targets = append(targets, output.Stream{})
	}
	if play {
		targets = append(targets, output.Play{})
	}
	if len(targets) == 0 {
		targets = append(targets, output.File{})
	}
	return targets
}

func listEngines(registry *tts.Registry) {
	names := registry.Names()
	sort.Strings(names)

	for _, name := range names {
		desc, ok := registry.Describe(name)
		if !ok {
			continue
		}
		line := fmt.Sprintf("%-8s %s", name, desc.Availability)
		if desc.Availability == tts.AvailabilityUnavailable && desc.Reason() != "" {
			line += " (" + desc.Reason() + ")"
		}
		fmt.Println(line)
	}
}

func setupLogger(cfg speechkit.LogConfig) {
	opts := &slog.HandlerOptions{
		AddSource: cfg.AddSource,
		Level:     cfg.Level,
	}

	var sHandler slog.Handler
	switch cfg.Format {
	case "json":
		sHandler = slog.NewJSONHandler(os.Stderr, opts)
	case "text", "":
		sHandler = slog.NewTextHandler(os.Stderr, opts)
	default:
		slog.Error("Unknown log format", slog.String("format", cfg.Format))
		os.Exit(-1)
	}
	slog.SetDefault(slog.New(sHandler))
}
