package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	rediscache "github.com/utafrali/productview/internal/cache/redis"
	"github.com/utafrali/productview/internal/catalog"
	"github.com/utafrali/productview/internal/catalog/postgres"
	"github.com/utafrali/productview/internal/catalog/upstream"
	"github.com/utafrali/productview/internal/config"
	"github.com/utafrali/productview/internal/event"
	handler "github.com/utafrali/productview/internal/handler/http"
	"github.com/utafrali/productview/internal/service"
	"github.com/utafrali/productview/migrations"
	"github.com/utafrali/productview/pkg/database"
	"github.com/utafrali/productview/pkg/health"
	"github.com/utafrali/productview/pkg/httpclient"
	pkgkafka "github.com/utafrali/productview/pkg/kafka"
	"github.com/utafrali/productview/pkg/middleware"
	"github.com/utafrali/productview/pkg/tracing"
)

const serviceName = "productview"

// App wires together all dependencies and runs the productview service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{
		cfg:            cfg,
		logger:         logger,
		tracerShutdown: tracerShutdown,
	}
	healthHandler := health.NewHandler()

	source, err := a.catalogSource(ctx, healthHandler)
	if err != nil {
		return nil, err
	}

	// A nil interface keeps the service from touching the cache at all.
	var viewCache service.ViewCache
	if cfg.ViewCacheEnabled() {
		client, err := database.NewRedisClient(ctx, database.RedisConfig{
			Host:           cfg.RedisHost,
			Port:           cfg.RedisPort,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			CommandTimeout: time.Duration(cfg.RedisTimeoutMs) * time.Millisecond,
			PoolSize:       cfg.RedisPoolSize,
		})
		if err != nil {
			logger.Warn("redis unavailable, view cache disabled",
				slog.String("addr", fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort)),
				slog.String("error", err.Error()),
			)
		} else {
			a.redis = client
			vc := rediscache.NewViewCache(client, cfg.ViewCacheTTL())
			viewCache = vc
			healthHandler.RegisterNonCritical("redis", vc.Ping)
			logger.Info("view cache enabled", slog.Duration("ttl", cfg.ViewCacheTTL()))
		}
	}

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	if err := pingKafkaWithRetry(ctx, producer, logger); err != nil {
		logger.Warn("kafka producer ping failed after retries, continuing in degraded mode",
			slog.String("error", err.Error()),
		)
	} else {
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}
	a.producer = producer
	healthHandler.RegisterNonCritical("kafka", producer.Ping)

	svc := service.NewPresentationService(
		source,
		viewCache,
		event.NewProducer(producer, logger),
		logger,
		cfg.AssembleConcurrency,
	)

	router := handler.NewRouter(svc, healthHandler, handler.RouterConfig{
		ServiceName:    serviceName,
		CORS:           middleware.CORSConfig{AllowedOrigins: cfg.CORSAllowedOrigins},
		CacheMaxAgeSec: cfg.HTTPCacheMaxAgeSeconds,
		RateLimit: middleware.RateLimitConfig{
			RPS:   cfg.RateLimitRPS,
			Burst: cfg.RateLimitBurst,
		},
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// catalogSource builds the product source selected by CATALOG_SOURCE and
// registers its readiness check.
func (a *App) catalogSource(ctx context.Context, hh *health.Handler) (catalog.Source, error) {
	cfg := a.cfg

	switch cfg.CatalogSource {
	case config.CatalogSourceHTTP:
		clientCfg := httpclient.DefaultConfig()
		clientCfg.Timeout = cfg.CatalogTimeout()
		cb := httpclient.NewCircuitBreakerClient(
			httpclient.New(clientCfg),
			httpclient.DefaultCircuitBreakerConfig("catalog"),
			a.logger,
		)
		hh.Register("catalog", func(context.Context) error {
			if cb.State() == gobreaker.StateOpen {
				return httpclient.ErrCircuitOpen
			}
			return nil
		})
		a.logger.Info("using HTTP catalog", slog.String("base_url", cfg.CatalogBaseURL))
		return upstream.NewSource(cb, cfg.CatalogBaseURL), nil

	default:
		pool, err := database.NewPostgresPool(ctx, &database.PostgresConfig{
			Host:            cfg.PostgresHost,
			Port:            cfg.PostgresPort,
			User:            cfg.PostgresUser,
			Password:        cfg.PostgresPass,
			DBName:          cfg.PostgresDB,
			SSLMode:         cfg.PostgresSSL,
			MaxConns:        cfg.DBMaxConns,
			MinConns:        cfg.DBMinConns,
			MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
			MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
		}, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.logger.Info("connected to PostgreSQL",
			slog.String("host", cfg.PostgresHost),
			slog.Int("port", cfg.PostgresPort),
			slog.String("database", cfg.PostgresDB),
		)

		if err := database.RunMigrations(ctx, pool, migrations.FS, a.logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		a.logger.Info("database migrations completed")

		a.pool = pool
		hh.Register("postgres", pool.Ping)
		return postgres.NewSource(pool), nil
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown stops components in order: HTTP server, tracer, Kafka producer,
// Redis, PostgreSQL.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// Spans from drained requests are flushed here.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.pool != nil {
		a.pool.Close()
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// pingKafkaWithRetry pings the brokers up to 3 times with 1s/2s backoff
// and ±25% jitter.
func pingKafkaWithRetry(ctx context.Context, p pinger, logger *slog.Logger) error {
	return pingWithRetry(ctx, p, logger, time.Second)
}

func pingWithRetry(ctx context.Context, p pinger, logger *slog.Logger, baseWait time.Duration) error {
	const maxAttempts = 3

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		lastErr = p.Ping(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == maxAttempts-1 {
			break
		}

		base := baseWait << uint(attempt)
		jitter := time.Duration(float64(base) * 0.25 * (2*rand.Float64() - 1)) // #nosec G404 -- non-cryptographic jitter
		wait := base + jitter
		logger.Warn("kafka producer ping failed, retrying",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", maxAttempts),
			slog.Duration("backoff", wait),
			slog.String("error", lastErr.Error()),
		)
		select {
		case <-ctx.Done():
			return fmt.Errorf("kafka ping: context canceled during retry: %w", ctx.Err())
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("kafka producer ping failed after %d attempts: %w", maxAttempts, lastErr)
}
