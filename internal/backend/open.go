// Package backend builds the directory repository selected by configuration.
package backend

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	redisad "globalhub/internal/adapters/redis"
	"globalhub/internal/adapters/supabase"
	"globalhub/internal/app"
	"globalhub/internal/domain"
	"globalhub/internal/shared"
	mysqlrepo "globalhub/internal/storage/mysql"
	"globalhub/internal/storage/postgres"
)

// Open connects to cfg.Backend and, when a cache TTL is configured and Redis
// answers, wraps it in the reference-data cache. The returned func releases
// every connection Open made.
func Open(ctx context.Context, cfg shared.Config) (domain.DirectoryRepository, func(), error) {
	repo, closeRepo, err := open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.CacheTTL <= 0 {
		return repo, closeRepo, nil
	}

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, serving without cache")
		_ = cache.Close()
		return repo, closeRepo, nil
	}
	log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.CacheTTL).Msg("reference-data cache enabled")
	return app.NewCachedDirectory(repo, cache, cfg.CacheTTL), func() {
		_ = cache.Close()
		closeRepo()
	}, nil
}

func open(ctx context.Context, cfg shared.Config) (domain.DirectoryRepository, func(), error) {
	switch cfg.Backend {
	case shared.BackendSupabase:
		c, err := supabase.New(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseRPS)
		if err != nil {
			return nil, nil, fmt.Errorf("supabase client: %w", err)
		}
		return c, func() {}, nil

	case shared.BackendPostgres:
		pool, err := postgres.Open(ctx, cfg.PostgresDSN, 10, 5*time.Minute)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		return postgres.New(pool), pool.Close, nil

	case shared.BackendMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("sql.Open: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("mysql ping: %w", err)
		}
		return mysqlrepo.New(db), func() { _ = db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}
