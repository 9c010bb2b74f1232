package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	MenuAPIBase string
	MenuAPIKey  string
	Workers     int
	Slugs       []string // slugs the ingestor refreshes
	CacheTTL    time.Duration
	SessionTTL  time.Duration
	ResolveWait time.Duration // how long a page render waits for a template load
}

func Load() Config {
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
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/qrmenu?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		MenuAPIBase: env("MENU_API_BASE_URL", "https://api.qr-menu.example/v1"),
		MenuAPIKey:  env("MENU_API_KEY", ""),
		Workers:     atoi("INGEST_WORKERS", 8),
		Slugs:       splitCSV(env("INGEST_SLUGS", "")),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		SessionTTL:  time.Duration(atoi("SESSION_TTL_SECONDS", 1800)) * time.Second,
		ResolveWait: time.Duration(atoi("RESOLVE_WAIT_MS", 3000)) * time.Millisecond,
	}
	if c.MenuAPIKey == "" {
		log.Warn().Msg("MENU_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
