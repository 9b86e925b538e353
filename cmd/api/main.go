package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "flex_reviews/internal/adapters/http_server"
	"flex_reviews/internal/adapters/hostaway"
	"flex_reviews/internal/adapters/memcache"
	"flex_reviews/internal/adapters/observability"
	redisad "flex_reviews/internal/adapters/redis"
	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
	"flex_reviews/internal/shared"
	"flex_reviews/internal/storage/memory"
	mysqlrepo "flex_reviews/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve(cfg.MetricsAddr)

	var store domain.ReviewStore
	switch cfg.StoreDriver {
	case "mysql":
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
		log.Info().Msg("database connection ok")
		store = mysqlrepo.New(db)
	default:
		log.Info().Msg("using in-memory review store")
		store = memory.New()
	}

	var cache domain.Cache
	switch cfg.CacheDriver {
	case "redis":
		cache = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	default:
		cache = memcache.New()
	}

	provider := hostaway.New(cfg.HostawayBase, cfg.HostawayKey, cfg.HostawayAccountID, cfg.GoogleKey, cfg.ProviderRPS)
	svc := app.NewReviewService(store, provider, cache)

	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{S: svc, Env: cfg.AppEnv})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
