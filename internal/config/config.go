// Package config provides application configuration management.
// Configuration is loaded from environment variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Event sink backends.
const (
	EventsNone  = "none"
	EventsRedis = "redis"
	EventsAMQP  = "amqp"
)

// Config holds all application configuration.
type Config struct {
	// Application settings
	AppEnv string `env:"APP_ENV" envDefault:"development"`
	Port   int    `env:"PORT" envDefault:"5000"`

	// Storage
	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"mongo"`
	DBUser         string `env:"DB_USER"`
	DBPass         string `env:"DB_PASS"`
	DBCluster      string `env:"DB_CLUSTER" envDefault:"cluster0.mongodb.net"`
	DBName         string `env:"DB_NAME" envDefault:"parcelDB"`

	// MongoURIOverride replaces the URI assembled from DB_USER/DB_PASS/DB_CLUSTER.
	MongoURIOverride string `env:"MONGO_URI"`
	DatabaseURL      string `env:"DATABASE_URL"`

	// Cache (Redis), optional
	RedisURL string        `env:"REDIS_URL"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"10m"`

	// Payment processor
	PaymentGatewayKey string `env:"PAYMENT_GATEWAY_KEY"`
	PaymentCurrency   string `env:"PAYMENT_CURRENCY" envDefault:"usd"`

	// Events
	EventsBackend string `env:"EVENTS_BACKEND" envDefault:"none"`
	AMQPURL       string `env:"AMQP_URL"`
	AMQPQueue     string `env:"AMQP_QUEUE" envDefault:"parcel_events"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting, active only with Redis
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     int  `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst   int  `env:"RATE_LIMIT_BURST" envDefault:"100"`

	// Comma-separated list of allowed origins; "*" allows any.
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MongoURI returns MONGO_URI when set, otherwise an Atlas SRV URI built from
// the DB_* variables with escaped credentials.
func (c *Config) MongoURI() string {
	if c.MongoURIOverride != "" {
		return c.MongoURIOverride
	}
	u := url.URL{
		Scheme:   "mongodb+srv",
		Host:     c.DBCluster,
		Path:     "/",
		RawQuery: "retryWrites=true&w=majority",
	}
	if c.DBUser != "" {
		u.User = url.UserPassword(c.DBUser, c.DBPass)
	}
	return u.String()
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks the combinations env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.DatabaseDriver {
	case DriverMongo:
		if c.MongoURIOverride == "" && (c.DBUser == "" || c.DBPass == "") {
			errs = append(errs, errors.New("mongo driver requires MONGO_URI or DB_USER and DB_PASS"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("postgres driver requires DATABASE_URL"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver))
	}

	switch c.EventsBackend {
	case EventsNone, "":
	case EventsRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("redis events backend requires REDIS_URL"))
		}
	case EventsAMQP:
		if c.AMQPURL == "" {
			errs = append(errs, errors.New("amqp events backend requires AMQP_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown EVENTS_BACKEND %q", c.EventsBackend))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %d", c.Port))
	}

	return errors.Join(errs...)
}

// Load reads an optional .env file, parses environment variables and validates the result.
// Variables already present in the environment win over .env entries.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
