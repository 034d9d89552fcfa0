package config

import (
	"fmt"
	"time"

	"github.com/utafrali/authd/internal/resourceid"
	pkgconfig "github.com/utafrali/authd/pkg/config"
)

// Config holds all configuration for the auth service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"AUTH_HTTP_PORT" envDefault:"8007"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"authd"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"authd_secret"`
	PostgresDB   string `env:"AUTH_DB_NAME" envDefault:"auth_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Tokens
	TokenLength          int           `env:"AUTH_TOKEN_LENGTH" envDefault:"200"`
	AccessTokenTTL       time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" envDefault:"5h"`
	RefreshTokenTTL      time.Duration `env:"AUTH_REFRESH_TOKEN_TTL" envDefault:"48h"`
	UseRefreshExpiration bool          `env:"AUTH_USE_REFRESH_EXPIRATION" envDefault:"true"`

	// Resource identifiers
	ResourcePattern string `env:"AUTH_RESOURCE_PATTERN" envDefault:"rid:(?P<client_id>\\w+):(?P<client_secret>\\w+)"`

	// Login rate limiting
	LoginRateLimit int `env:"AUTH_LOGIN_RATE_LIMIT" envDefault:"5"`
	LoginRateBurst int `env:"AUTH_LOGIN_RATE_BURST" envDefault:"10"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load auth config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}
	if cfg.TokenLength < 32 {
		return nil, fmt.Errorf("AUTH_TOKEN_LENGTH must be at least 32, got %d", cfg.TokenLength)
	}
	if cfg.AccessTokenTTL <= 0 {
		return nil, fmt.Errorf("AUTH_ACCESS_TOKEN_TTL must be positive, got %s", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL <= 0 {
		return nil, fmt.Errorf("AUTH_REFRESH_TOKEN_TTL must be positive, got %s", cfg.RefreshTokenTTL)
	}

	// Fail fast on an unusable pattern instead of erroring per request.
	if _, err := resourceid.NewCodec(cfg.ResourcePattern); err != nil {
		return nil, fmt.Errorf("AUTH_RESOURCE_PATTERN: %w", err)
	}

	return cfg, nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}
