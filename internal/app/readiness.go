package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/ai-interview-coach/internal/config"
)

// BuildReadinessChecks returns the probe functions used by /readyz. The
// redis check is nil when caching is disabled so the probe list shrinks
// instead of reporting a vacuous failure.
func BuildReadinessChecks(cfg config.Config, pool *pgxpool.Pool, rdb *redis.Client) (dbCheck, redisCheck, tikaCheck func(context.Context) error) {
	dbCheck = func(ctx context.Context) error {
		return pool.Ping(ctx)
	}
	if rdb != nil {
		redisCheck = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}
	tikaCheck = func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.TikaURL+"/version", nil)
		if err != nil {
			return err
		}
		cli := &http.Client{Timeout: 2 * time.Second}
		resp, err := cli.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("tika status %d", resp.StatusCode)
		}
		return nil
	}
	return dbCheck, redisCheck, tikaCheck
}
