package tts

import (
	"context"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/fnv"
	"log/slog"
	"time"

	"github.com/disgoorg/log"
	"github.com/go-redis/cache/v9"
)

var _ Engine = (*CachedEngine)(nil)

// CachedEngine wraps another Engine and caches generated audio in redis,
// keyed by a hash of the engine name, the resolved options, and the text.
// Online backends get the most out of this; offline ones are cheap enough
// that the wrap is usually skipped.
type CachedEngine struct {
	next       Engine
	redisCache *cache.Cache
	ttl        time.Duration
	hash       hash.Hash
}

// NewCachedEngine decorates next with a redis-backed cache. A nil hash
// selects fnv-64a.
func NewCachedEngine(next Engine, redisCache *cache.Cache, ttl time.Duration, h hash.Hash) *CachedEngine {
	if h == nil {
		h = fnv.New64a()
	}
	return &CachedEngine{
		next:       next,
		redisCache: redisCache,
		ttl:        ttl,
		hash:       h,
	}
}

func (c *CachedEngine) Name() string {
	return c.next.Name() + "-cached"
}

func (c *CachedEngine) Available() bool {
	return c.next.Available()
}

func (c *CachedEngine) Format() Format {
	return c.next.Format()
}

func (c *CachedEngine) Generate(ctx context.Context, text string, cfg Config) ([]byte, error) {
	key := c.generateKey(text, cfg)

	var audioData []byte
	err := c.redisCache.Get(ctx, key, &audioData)
	if err == nil {
		slog.Info("cache hit", "key", key, "engine", c.Name())
		return audioData, nil
	}

	audioData, err = c.next.Generate(ctx, text, cfg)
	if err != nil {
		return nil, err
	}

	// Store asynchronously; a failed cache write must not fail the request.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := c.redisCache.Set(&cache.Item{
			Ctx:   ctx,
			Key:   key,
			Value: audioData,
			TTL:   c.ttl,
		}); err != nil {
			log.Warn("failed to cache audio data", "error", err, "key", key)
		}
	}()

	return audioData, nil
}

// generateKey hashes the fields that change the generated audio. Backend
// extension keys that matter (voice, model) are included; delivery-only
// options are not. Each field is length-prefixed so adjacent fields cannot
// blur into the same byte sequence.
func (c *CachedEngine) generateKey(text string, cfg Config) string {
	c.hash.Reset()
	write := func(field string) {
		fmt.Fprintf(c.hash, "%d:", len(field))
		c.hash.Write([]byte(field))
	}
	write(c.next.Name())
	write(cfg.Language())
	if rate, ok := cfg.Rate(); ok {
		write(fmt.Sprintf("%g", rate))
	}
	write(fmt.Sprintf("%t", cfg.Slow()))
	for _, key := range []string{"voice", "model", "speaking_rate"} {
		if v, ok := cfg[key]; ok {
			write(fmt.Sprintf("%s=%v", key, v))
		}
	}
	write(text)
	return hex.EncodeToString(c.hash.Sum(nil))
}
