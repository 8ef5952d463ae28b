// Package app wires together all dependencies and runs the wishlist service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ataraxii/wishlist/pkg/database"
	"github.com/ataraxii/wishlist/pkg/discovery"
	"github.com/ataraxii/wishlist/pkg/health"
	pkgkafka "github.com/ataraxii/wishlist/pkg/kafka"
	"github.com/ataraxii/wishlist/pkg/tracing"

	"github.com/ataraxii/wishlist/internal/wishlist/auth"
	"github.com/ataraxii/wishlist/internal/wishlist/config"
	"github.com/ataraxii/wishlist/internal/wishlist/event"
	handler "github.com/ataraxii/wishlist/internal/wishlist/handler/http"
	"github.com/ataraxii/wishlist/internal/wishlist/migrations"
	"github.com/ataraxii/wishlist/internal/wishlist/repository/postgres"
	"github.com/ataraxii/wishlist/internal/wishlist/service"
)

// App holds the running pieces of the wishlist service.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	pool            *pgxpool.Pool
	producer        *pkgkafka.Producer
	httpServer      *http.Server
	tracerShutdown  func(context.Context) error
	discoveryClient *discovery.Client
	instance        discovery.Instance
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "wishlist")

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	producer := pkgkafka.NewProducer(pkgkafka.ProducerConfig{Brokers: cfg.KafkaBrokers}, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	userRepo := postgres.NewUserRepository(pool)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(pool)
	wishlistRepo := postgres.NewWishlistRepository(pool)
	itemRepo := postgres.NewItemRepository(pool)
	eventProducer := event.NewProducer(producer)

	authService := service.NewAuthService(userRepo, refreshTokenRepo, jwtManager, eventProducer, logger)
	wishlistService := service.NewWishlistService(wishlistRepo, eventProducer, logger)
	itemService := service.NewItemService(itemRepo, wishlistRepo, eventProducer, logger)

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})

	router := handler.NewRouter(authService, wishlistService, itemService, healthHandler, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	app := &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}

	if cfg.DiscoveryEnabled {
		app.discoveryClient = discovery.NewClient(cfg.DiscoveryURL, logger)
		app.instance = discovery.Instance{
			ID:      uuid.New().String(),
			Service: "wishlist",
			Host:    cfg.AdvertiseHost,
			Port:    cfg.HTTPPort,
		}
	}

	return app, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if a.discoveryClient != nil {
		go a.discoveryClient.KeepAlive(ctx, a.instance, a.cfg.HeartbeatInterval)
	}

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown stops components in order: drain HTTP, flush tracer, close the
// Kafka producer, close the pool. The discovery lease is dropped by
// KeepAlive when the run context is cancelled.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
