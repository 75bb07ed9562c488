package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	StoreSQLite   = "sqlite"
	StoreSupabase = "supabase"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds all application configuration.
// Values come from defaults, an optional TOML file and the environment, in
// that order of precedence (later wins).
type Config struct {
	// Server
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
	AppEnv   string `toml:"app_env"`

	// Storage
	StoreBackend       string `toml:"store_backend"`
	SQLitePath         string `toml:"sqlite_path"`
	SupabaseURL        string `toml:"supabase_url"`
	SupabaseAnonKey    string `toml:"supabase_anon_key"`
	SupabaseServiceKey string `toml:"supabase_service_role_key"`

	// HTTP client (PostgREST)
	HTTPTimeout time.Duration `toml:"http_timeout"`

	// Resilience
	MaxRetries     int           `toml:"max_retries"`
	InitialBackoff time.Duration `toml:"initial_backoff"`
	MaxConcurrency int           `toml:"max_concurrency"`

	// Cache
	CacheBackend  string        `toml:"cache_backend"`
	CacheTTL      time.Duration `toml:"cache_ttl"`
	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`

	// Events; empty URL disables publishing
	AMQPURL      string `toml:"amqp_url"`
	AMQPExchange string `toml:"amqp_exchange"`

	// Observability
	OTLPEndpoint string `toml:"otlp_endpoint"`

	// API tokens; empty secret leaves write routes open
	JWTSecret string        `toml:"jwt_secret"`
	JWTTTL    time.Duration `toml:"jwt_ttl"`

	// Dashboard rules
	UsageCategory        string  `toml:"usage_category"`
	LowBalanceThreshold  float64 `toml:"low_balance_threshold"`
	CommitmentWindowDays int     `toml:"commitment_window_days"`
	ForecastHistory      int     `toml:"forecast_history_months"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:     8080,
		LogLevel: "info",
		AppEnv:   "development",

		StoreBackend: StoreSQLite,
		SQLitePath:   "costdash.db",

		HTTPTimeout: 10 * time.Second,

		MaxRetries:     3,
		InitialBackoff: 100 * time.Millisecond,
		MaxConcurrency: 50,

		CacheBackend: CacheMemory,
		CacheTTL:     5 * time.Minute,
		RedisAddr:    "localhost:6379",

		AMQPExchange: "costdash.events",

		JWTTTL: 24 * time.Hour,

		UsageCategory:        "Usage",
		LowBalanceThreshold:  20,
		CommitmentWindowDays: 30,
		ForecastHistory:      12,
	}
}

// Load builds the configuration. path names an optional TOML file; when
// empty, COSTDASH_CONFIG is consulted. A missing .env file is not an error,
// a missing TOML file that was asked for is.
func Load(path string) (*Config, error) {
	if err := LoadDotEnv(os.Getenv("APP_ENV")); err != nil {
		return nil, err
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("COSTDASH_CONFIG")
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnvInt("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.AppEnv = getEnv("APP_ENV", c.AppEnv)

	c.StoreBackend = strings.ToLower(getEnv("STORE_BACKEND", c.StoreBackend))
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)
	c.SupabaseURL = getEnv("SUPABASE_URL", c.SupabaseURL)
	c.SupabaseAnonKey = getEnv("SUPABASE_ANON_KEY", c.SupabaseAnonKey)
	c.SupabaseServiceKey = getEnv("SUPABASE_SERVICE_ROLE_KEY", c.SupabaseServiceKey)

	c.HTTPTimeout = getEnvDuration("HTTP_TIMEOUT", c.HTTPTimeout)

	c.MaxRetries = getEnvInt("MAX_RETRIES", c.MaxRetries)
	c.InitialBackoff = getEnvDuration("INITIAL_BACKOFF", c.InitialBackoff)
	c.MaxConcurrency = getEnvInt("MAX_CONCURRENCY", c.MaxConcurrency)

	c.CacheBackend = strings.ToLower(getEnv("CACHE_BACKEND", c.CacheBackend))
	c.CacheTTL = getEnvDuration("CACHE_TTL", c.CacheTTL)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)

	c.AMQPURL = getEnv("AMQP_URL", c.AMQPURL)
	c.AMQPExchange = getEnv("AMQP_EXCHANGE", c.AMQPExchange)

	c.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTLPEndpoint)

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTTTL = getEnvDuration("JWT_TTL", c.JWTTTL)

	c.UsageCategory = getEnv("USAGE_CATEGORY", c.UsageCategory)
	c.LowBalanceThreshold = getEnvFloat("LOW_BALANCE_THRESHOLD", c.LowBalanceThreshold)
	c.CommitmentWindowDays = getEnvInt("COMMITMENT_WINDOW_DAYS", c.CommitmentWindowDays)
	c.ForecastHistory = getEnvInt("FORECAST_HISTORY_MONTHS", c.ForecastHistory)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Port > 0 && c.Port < 65536, "PORT must be between 1 and 65535, got %d", c.Port)

	switch c.StoreBackend {
	case StoreSQLite:
		check(c.SQLitePath != "", "SQLITE_PATH is required for the sqlite store")
	case StoreSupabase:
		check(c.SupabaseURL != "", "SUPABASE_URL is required for the supabase store")
		check(c.SupabaseServiceKey != "" || c.SupabaseAnonKey != "",
			"SUPABASE_SERVICE_ROLE_KEY or SUPABASE_ANON_KEY is required for the supabase store")
	default:
		check(false, "STORE_BACKEND must be %q or %q, got %q", StoreSQLite, StoreSupabase, c.StoreBackend)
	}

	switch c.CacheBackend {
	case CacheMemory:
	case CacheRedis:
		check(c.RedisAddr != "", "REDIS_ADDR is required for the redis cache")
	default:
		check(false, "CACHE_BACKEND must be %q or %q, got %q", CacheMemory, CacheRedis, c.CacheBackend)
	}

	check(c.CacheTTL > 0, "CACHE_TTL must be positive")
	check(c.MaxRetries >= 0, "MAX_RETRIES must not be negative")
	check(c.MaxConcurrency > 0, "MAX_CONCURRENCY must be positive")
	check(c.UsageCategory != "", "USAGE_CATEGORY must not be empty")
	check(c.LowBalanceThreshold > 0 && c.LowBalanceThreshold <= 100,
		"LOW_BALANCE_THRESHOLD must be in (0, 100], got %v", c.LowBalanceThreshold)
	check(c.CommitmentWindowDays > 0, "COMMITMENT_WINDOW_DAYS must be positive")
	check(c.ForecastHistory >= 2, "FORECAST_HISTORY_MONTHS must be at least 2")

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
