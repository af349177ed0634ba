package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string `validate:"required"`
	MetricsAddr string

	SiteURL  string `validate:"required,url"`
	SiteName string `validate:"required"`

	Backend     string `validate:"oneof=supabase postgres mysql"`
	SupabaseURL string `validate:"required_if=Backend supabase"`
	SupabaseKey string `validate:"required_if=Backend supabase"`
	SupabaseRPS int    `validate:"gte=1"`
	PostgresDSN string `validate:"required_if=Backend postgres"`
	MySQLDSN    string `validate:"required_if=Backend mysql"`

	RedisAddr string
	RedisPass string
	RedisDB   int `validate:"gte=0"`
	// Zero disables the reference-data cache.
	CacheTTL time.Duration `validate:"gte=0"`

	SitemapWorkers int           `validate:"gte=1"`
	RequestTimeout time.Duration `validate:"gt=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads the environment, after merging an optional .env file, and validates the result.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),

		SiteURL:  strings.TrimRight(env("SITE_URL", "http://localhost:8080"), "/"),
		SiteName: env("SITE_NAME", "Global Hub"),

		Backend:     strings.ToLower(env("BACKEND", BackendSupabase)),
		SupabaseURL: env("SUPABASE_URL", ""),
		SupabaseKey: env("SUPABASE_KEY", ""),
		SupabaseRPS: atoi("SUPABASE_RPS", 10),
		PostgresDSN: env("POSTGRES_DSN", ""),
		MySQLDSN:    env("MYSQL_DSN", ""),

		RedisAddr: env("REDIS_ADDR", ""),
		RedisPass: env("REDIS_PASSWORD", ""),
		RedisDB:   atoi("REDIS_DB", 0),
		CacheTTL:  time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,

		SitemapWorkers: atoi("SITEMAP_WORKERS", 4),
		RequestTimeout: time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
	}
	if err := validate.Struct(c); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if c.CacheTTL > 0 && c.RedisAddr == "" {
		log.Warn().Msg("CACHE_TTL_SECONDS set but REDIS_ADDR is empty; cache disabled")
		c.CacheTTL = 0
	}
	return c, nil
}

func env(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
	}
	return def
}
