package ai

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
)

// replyCache wraps a TextGenerator and caches replies in Redis keyed by a
// hash of the prompt. Identical prompts (question repeats, clarification
// requests on the same question) skip the gateway entirely. Redis being
// down degrades to a direct gateway call, never to an error.
type replyCache struct {
	base domain.TextGenerator
	rdb  *redis.Client
	ttl  time.Duration
}

// NewReplyCache wraps base with a Redis-backed reply cache. If rdb is nil
// or ttl is not positive, base is returned unmodified.
func NewReplyCache(base domain.TextGenerator, rdb *redis.Client, ttl time.Duration) domain.TextGenerator {
	if base == nil || rdb == nil || ttl <= 0 {
		return base
	}
	return &replyCache{base: base, rdb: rdb, ttl: ttl}
}

func (c *replyCache) Generate(ctx domain.Context, prompt string) (string, error) {
	key := "genreply:" + keyFor(prompt)
	if v, err := c.rdb.Get(ctx, key).Result(); err == nil && v != "" {
		return v, nil
	}
	out, err := c.base.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if err := c.rdb.Set(ctx, key, out, c.ttl).Err(); err != nil {
		slog.Debug("reply cache store failed", slog.Any("error", err))
	}
	return out, nil
}

func keyFor(text string) string {
	s := strings.TrimSpace(text)
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}
