package main

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"flex_reviews/internal/adapters/hostaway"
	"flex_reviews/internal/adapters/memcache"
	"flex_reviews/internal/adapters/observability"
	redisad "flex_reviews/internal/adapters/redis"
	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
	"flex_reviews/internal/shared"
	mysqlrepo "flex_reviews/internal/storage/mysql"
)

// One-shot sync of all configured review sources into the store.
// Meant for cron; the API's POST /api/reviews/sync does the same on demand.
func main() {
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.HostawayBase).
		Str("store", cfg.StoreDriver).
		Msg("syncer starting")

	if cfg.StoreDriver != "mysql" {
		log.Fatal().Msg("syncer needs STORE_DRIVER=mysql; an in-memory store would vanish on exit")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	if _, err := db.Exec(mysqlrepo.Schema); err != nil {
		log.Fatal().Err(err).Msg("schema apply failed")
	}
	log.Info().Msg("db ping ok")

	var cache domain.Cache
	switch cfg.CacheDriver {
	case "redis":
		cache = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	default:
		cache = memcache.New()
	}

	provider := hostaway.New(cfg.HostawayBase, cfg.HostawayKey, cfg.HostawayAccountID, cfg.GoogleKey, cfg.ProviderRPS)
	svc := app.NewReviewService(mysqlrepo.New(db), provider, cache)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	res, err := svc.SyncFromSources(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("sync failed")
	}
	observability.ObserveSync(res.Synced, len(res.Errors))

	ev := log.Info()
	if len(res.Errors) > 0 {
		ev = log.Warn().Strs("errors", res.Errors)
	}
	ev.Int("synced", res.Synced).Strs("sources", res.Sources).Msg("sync completed")
}
