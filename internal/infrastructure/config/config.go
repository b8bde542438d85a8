package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
	OTPTTL    time.Duration `env:"OTP_TTL,   default=5m"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	Workers   int           `env:"DELIVERY_WORKERS, default=4"`

	Postgres  PostgresConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Feed      FeedConfig
	Sentry    SentryConfig
	RateLimit RateLimitConfig
}

type PostgresConfig struct {
	URL      string `env:"DATABASE_URL"`
	MaxConns int32  `env:"DB_MAX_CONNS, default=10"`
	MinConns int32  `env:"DB_MIN_CONNS, default=1"`
}

// MongoConfig is optional; an empty URI disables the audit trail.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=clinic_reservations"`
}

// RedisConfig is optional; an empty address disables the feed cache.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type FeedConfig struct {
	BaseURL  string        `env:"FEED_BASE_URL"`
	SlotsURL string        `env:"FEED_SLOTS_URL"`
	Timeout  time.Duration `env:"FEED_TIMEOUT,   default=5s"`
	CacheTTL time.Duration `env:"FEED_CACHE_TTL, default=30s"`
}

type SentryConfig struct {
	DSN        string  `env:"SENTRY_DSN"`
	SampleRate float64 `env:"SENTRY_TRACES_SAMPLE_RATE, default=0"`
}

type RateLimitConfig struct {
	AuthRPS   float64 `env:"AUTH_RATE_LIMIT_RPS,   default=5"`
	AuthBurst int     `env:"AUTH_RATE_LIMIT_BURST, default=10"`
}

// IsDevelopment reports whether pretty logging and relaxed checks apply.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings required to serve requests.
func (c *Config) Validate() error {
	var errs []error
	if c.Postgres.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if !c.IsDevelopment() && len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters outside development"))
	}
	if c.OTPTTL <= 0 {
		errs = append(errs, errors.New("OTP_TTL must be positive"))
	}
	if c.RateLimit.AuthRPS <= 0 || c.RateLimit.AuthBurst <= 0 {
		errs = append(errs, errors.New("auth rate limit must be positive"))
	}
	return errors.Join(errs...)
}
