package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
)

// Pinger is anything with a liveness check (the Redis cache).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Probe checks the database and Redis.
func Probe(db *gorm.DB, redis Pinger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("db handle: %w", err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("db ping: %w", err)
		}
		if err := redis.Ping(ctx); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		return nil
	}
}

// WatchHealth re-runs probe every interval and mirrors the result into hr
// until ctx is done.
func WatchHealth(ctx context.Context, hr *HealthRegistrar, probe func(context.Context) error, interval time.Duration, log *slog.Logger) {
	check := func() {
		pctx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		err := probe(pctx)
		if err != nil {
			log.Warn("health probe failed", "err", err)
		}
		hr.Set(err == nil)
	}

	check()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			hr.Health.Shutdown()
			return
		case <-t.C:
			check()
		}
	}
}
