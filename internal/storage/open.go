// Package storage selects and assembles the configured AccountStore.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	redisad "goreview/internal/adapters/redis"
	"goreview/internal/domain"
	"goreview/internal/shared"
	"goreview/internal/storage/cached"
	mysqlrepo "goreview/internal/storage/mysql"
	"goreview/internal/storage/postgrest"
)

// Open builds the store named by cfg.StoreDriver, wrapped in the Redis
// read-through cache when REDIS_ADDR is set. release frees everything
// Open acquired.
func Open(ctx context.Context, cfg shared.Config) (store domain.AccountStore, release func(), err error) {
	var closers []func()
	release = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.StoreDriver {
	case "postgrest", "":
		store = postgrest.New(cfg.StoreURL, cfg.StoreKey, cfg.StoreTimeout)
		log.Info().Str("url", cfg.StoreURL).Msg("record store: postgrest")
	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, release, fmt.Errorf("sql.Open: %w", err)
		}
		pctx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
		defer cancel()
		if err := db.PingContext(pctx); err != nil {
			_ = db.Close()
			return nil, release, fmt.Errorf("db.Ping: %w", err)
		}
		closers = append(closers, func() { _ = db.Close() })
		store = mysqlrepo.New(db)
		log.Info().Msg("record store: mysql")
	default:
		return nil, release, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.RedisAddr == "" {
		return store, release, nil
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := cache.Ping(pctx); err != nil {
		// the store still works without it
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; record cache disabled")
		_ = cache.Close()
		return store, release, nil
	}
	closers = append(closers, func() { _ = cache.Close() })
	log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.RecordCacheTTL).Msg("record cache: redis")
	return cached.New(store, cache, int(cfg.RecordCacheTTL/time.Second)), release, nil
}
