package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/utafrali/productview/pkg/config"
)

// Catalog source kinds.
const (
	CatalogSourcePostgres = "postgres"
	CatalogSourceHTTP     = "http"
)

// Config holds all configuration for the productview service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"PRODUCTVIEW_HTTP_PORT" envDefault:"8021"`

	// Catalog
	CatalogSource         string `env:"CATALOG_SOURCE" envDefault:"postgres"`
	CatalogBaseURL        string `env:"CATALOG_BASE_URL" envDefault:"http://localhost:8001/api/v1"`
	CatalogTimeoutSeconds int    `env:"CATALOG_TIMEOUT_SECONDS" envDefault:"5"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"productview"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"productview_secret"`
	PostgresDB   string `env:"PRODUCTVIEW_DB_NAME" envDefault:"productview_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"20"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Redis view model cache
	RedisHost           string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort           int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword       string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB             int    `env:"REDIS_DB" envDefault:"0"`
	RedisTimeoutMs      int    `env:"REDIS_TIMEOUT_MS" envDefault:"100"`
	RedisPoolSize       int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	ViewCacheTTLSeconds int    `env:"VIEW_CACHE_TTL_SECONDS" envDefault:"300"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// HTTP layer
	CORSAllowedOrigins     []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	HTTPCacheMaxAgeSeconds int      `env:"HTTP_CACHE_MAX_AGE_SECONDS" envDefault:"60"`
	RateLimitRPS           float64  `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst         int      `env:"RATE_LIMIT_BURST" envDefault:"10"`

	// Upper bound on concurrent catalog reads for batch card requests.
	AssembleConcurrency int `env:"ASSEMBLE_CONCURRENCY" envDefault:"8"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load productview config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.CatalogSource {
	case CatalogSourcePostgres:
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required")
		}
		if c.PostgresPort < 1 || c.PostgresPort > 65535 {
			return fmt.Errorf("invalid POSTGRES_PORT: %d", c.PostgresPort)
		}
	case CatalogSourceHTTP:
		u, err := url.Parse(c.CatalogBaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("CATALOG_BASE_URL must be an absolute URL, got %q", c.CatalogBaseURL)
		}
		if c.CatalogTimeoutSeconds <= 0 {
			return fmt.Errorf("CATALOG_TIMEOUT_SECONDS must be > 0, got %d", c.CatalogTimeoutSeconds)
		}
	default:
		return fmt.Errorf("CATALOG_SOURCE must be one of %s, %s; got %q", CatalogSourcePostgres, CatalogSourceHTTP, c.CatalogSource)
	}
	if c.ViewCacheTTLSeconds < 0 {
		return fmt.Errorf("VIEW_CACHE_TTL_SECONDS must be >= 0, got %d", c.ViewCacheTTLSeconds)
	}
	if c.ViewCacheEnabled() && (c.RedisTimeoutMs <= 0 || c.RedisPoolSize <= 0) {
		return fmt.Errorf("REDIS_TIMEOUT_MS and REDIS_POOL_SIZE must be > 0 when the view cache is enabled")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be >= 0")
	}
	if c.AssembleConcurrency < 1 {
		return fmt.Errorf("ASSEMBLE_CONCURRENCY must be >= 1, got %d", c.AssembleConcurrency)
	}
	return nil
}

// ViewCacheEnabled reports whether assembled view models are cached.
func (c *Config) ViewCacheEnabled() bool {
	return c.ViewCacheTTLSeconds > 0
}

// ViewCacheTTL returns the view model cache TTL.
func (c *Config) ViewCacheTTL() time.Duration {
	return time.Duration(c.ViewCacheTTLSeconds) * time.Second
}

// CatalogTimeout returns the per-request timeout for the HTTP catalog.
func (c *Config) CatalogTimeout() time.Duration {
	return time.Duration(c.CatalogTimeoutSeconds) * time.Second
}
