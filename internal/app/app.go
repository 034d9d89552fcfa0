// Package app wires the auth service together and owns its lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/utafrali/authd/internal/auth"
	"github.com/utafrali/authd/internal/config"
	"github.com/utafrali/authd/internal/event"
	handler "github.com/utafrali/authd/internal/handler/http"
	"github.com/utafrali/authd/internal/repository/postgres"
	"github.com/utafrali/authd/internal/resourceid"
	"github.com/utafrali/authd/internal/service"
	"github.com/utafrali/authd/internal/token"
	"github.com/utafrali/authd/migrations"
	"github.com/utafrali/authd/pkg/database"
	"github.com/utafrali/authd/pkg/health"
	pkgkafka "github.com/utafrali/authd/pkg/kafka"
	"github.com/utafrali/authd/pkg/tracing"
)

// tokenPurgeInterval is how often expired access tokens are swept from the
// store.
const tokenPurgeInterval = time.Hour

// App wires together all dependencies and runs the auth service.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	pool            *pgxpool.Pool
	producer        *pkgkafka.Producer
	tokenService    *service.TokenService
	httpServer      *http.Server
	tracingShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Tracing.
	tracingCfg := tracing.DefaultConfig("auth-service")
	tracingCfg.Environment = cfg.Environment
	tracingCfg.OTLPEndpoint = cfg.OTELEndpoint
	tracingCfg.SampleRate = cfg.OTELSampleRate
	tracingCfg.Enabled = cfg.OTELEnabled
	tracingShutdown, err := tracing.InitTracer(ctx, tracingCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}

	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	// Database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Resource identifier codec. The pattern was validated at config load.
	codec, err := resourceid.NewCodec(cfg.ResourcePattern)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("resource pattern: %w", err)
	}

	// Build the dependency graph.
	appRepo := postgres.NewApplicationRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	accessRepo := postgres.NewAccessTokenRepository(pool)
	refreshRepo := postgres.NewRefreshTokenRepository(pool)

	eventProducer := event.NewProducer(producer, logger)
	generator := token.NewGenerator(cfg.TokenLength)

	applicationService := service.NewApplicationService(appRepo, codec, eventProducer, logger)
	tokenService := service.NewTokenService(
		userRepo, appRepo, accessRepo, refreshRepo,
		generator, eventProducer,
		service.TokenConfig{
			AccessTokenTTL:       cfg.AccessTokenTTL,
			RefreshTokenTTL:      cfg.RefreshTokenTTL,
			UseRefreshExpiration: cfg.UseRefreshExpiration,
		},
		logger,
	)
	userService := service.NewUserService(userRepo, logger)

	authorizer := auth.NewAuthorizer(applicationService, logger)
	authenticator := auth.NewAuthenticator(accessRepo, appRepo, userRepo, logger)

	// Health checks. Kafka is non-critical: the service still authorizes and
	// issues tokens when the broker is down.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	// HTTP router.
	router := handler.NewRouter(
		applicationService, tokenService, userService,
		authorizer, authenticator,
		healthHandler, logger,
		handler.RouterConfig{
			CORS: handler.CORSConfig{
				AllowedOrigins: cfg.CORSAllowedOrigins,
				Environment:    cfg.Environment,
			},
			LoginRateLimit: cfg.LoginRateLimit,
			LoginRateBurst: cfg.LoginRateBurst,
		},
	)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		pool:            pool,
		producer:        producer,
		tokenService:    tokenService,
		httpServer:      httpServer,
		tracingShutdown: tracingShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	go a.purgeExpiredTokens(ctx)

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// purgeExpiredTokens periodically removes access tokens past their expiration.
func (a *App) purgeExpiredTokens(ctx context.Context) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purgeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if _, err := a.tokenService.PurgeExpired(purgeCtx); err != nil {
				a.logger.Error("token purge failed", slog.String("error", err.Error()))
			}
			cancel()
		}
	}
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if err := a.tracingShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return nil
}
