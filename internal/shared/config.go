package shared

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	StoreDriver string // memory | mysql
	MySQLDSN    string

	CacheDriver string // memory | redis
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	HostawayBase      string
	HostawayKey       string
	HostawayAccountID string
	GoogleKey         string
	ProviderRPS       int
}

func Load() Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),

		StoreDriver: env("STORE_DRIVER", "memory"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/reviews?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),

		CacheDriver: env("CACHE_DRIVER", "memory"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisDB:     atoi("REDIS_DB", 0),
		RedisPass:   env("REDIS_PASSWORD", ""),

		HostawayBase:      env("HOSTAWAY_BASE_URL", "https://api.hostaway.com/v1"),
		HostawayKey:       env("HOSTAWAY_API_KEY", ""),
		HostawayAccountID: env("HOSTAWAY_ACCOUNT_ID", "61148"),
		GoogleKey:         env("GOOGLE_PLACES_API_KEY", ""),
		ProviderRPS:       atoi("PROVIDER_RPS", 5),
	}
	if c.HostawayKey == "" {
		log.Warn().Msg("HOSTAWAY_API_KEY is empty, provider runs in sample mode")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
