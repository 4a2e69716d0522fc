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
	MetricsAddr string
	Store       string // memory | mysql
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	CacheTTL    time.Duration
	AMQPURL     string
	EventsQueue string
	GraphFile   string
	APIBaseURL  string
	ClientRPS   int
	SeedWorkers int
}

// Load reads the environment, after merging any .env files found in the
// working directory. Real environment variables win over .env values.
func Load(files ...string) Config {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			log.Warn().Err(err).Str("file", f).Msg("could not load env file")
		}
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),
		Store:       strings.ToLower(env("STORE", "memory")),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/bookingmx?parseTime=true&charset=utf8mb4&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", ""),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		AMQPURL:     env("AMQP_URL", ""),
		EventsQueue: env("EVENTS_QUEUE", "bookingmx.reservations"),
		GraphFile:   env("GRAPH_FILE", ""),
		APIBaseURL:  env("API_BASE_URL", "http://localhost:8080"),
		ClientRPS:   atoi("CLIENT_RPS", 5),
		SeedWorkers: atoi("SEED_WORKERS", 4),
	}
	if c.Store != "memory" && c.Store != "mysql" {
		log.Warn().Str("store", c.Store).Msg("unknown STORE, falling back to memory")
		c.Store = "memory"
	}
	if c.SeedWorkers <= 0 {
		c.SeedWorkers = 1
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
