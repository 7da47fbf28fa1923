package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	HTTPTimeout time.Duration
	MetricsAddr string

	// record store
	StoreDriver  string // postgrest | mysql
	StoreURL     string
	StoreKey     string
	StoreTimeout time.Duration
	MySQLDSN     string

	// optional redis read-through in front of the store; empty addr disables it
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	RecordCacheTTL time.Duration

	// enrichment provider
	SerpBase         string
	SerpKey          string
	SerpLang         string
	PrimaryTimeout   time.Duration
	ReviewsTimeout   time.Duration
	ReviewsThreshold int

	FreshnessWindow time.Duration
	CoalesceMisses  bool

	WarmWorkers    int
	WarmAccountIDs []string
}

// Load reads the environment, after merging an optional .env file.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

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
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		HTTPTimeout: time.Duration(atoi("HTTP_TIMEOUT_SECONDS", 90)) * time.Second,
		MetricsAddr: env("METRICS_ADDR", ""),

		StoreDriver:  strings.ToLower(env("STORE_DRIVER", "postgrest")),
		StoreURL:     env("STORE_URL", "http://localhost:3000"),
		StoreKey:     env("STORE_KEY", ""),
		StoreTimeout: time.Duration(atoi("STORE_TIMEOUT_SECONDS", 10)) * time.Second,
		MySQLDSN:     env("MYSQL_DSN", "root:root@tcp(localhost:3306)/goreview?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),

		RedisAddr:      env("REDIS_ADDR", ""),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		RecordCacheTTL: time.Duration(atoi("RECORD_CACHE_TTL_SECONDS", 300)) * time.Second,

		SerpBase:         env("SERP_BASE_URL", "https://serpapi.com"),
		SerpKey:          env("SERP_API_KEY", ""),
		SerpLang:         env("SERP_LANG", "fr"),
		PrimaryTimeout:   time.Duration(atoi("SERP_PRIMARY_TIMEOUT_SECONDS", 30)) * time.Second,
		ReviewsTimeout:   time.Duration(atoi("SERP_REVIEWS_TIMEOUT_SECONDS", 30)) * time.Second,
		ReviewsThreshold: atoi("REVIEWS_THRESHOLD", 5),

		FreshnessWindow: time.Duration(atoi("FRESHNESS_WINDOW_HOURS", 24)) * time.Hour,
		CoalesceMisses:  envBool("COALESCE_MISSES", false),

		WarmWorkers:    atoi("WARM_WORKERS", 4),
		WarmAccountIDs: splitList(os.Getenv("WARM_ACCOUNT_IDS")),
	}
	if c.SerpKey == "" {
		log.Warn().Msg("SERP_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
