// Package app wires together the API gateway.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ataraxii/wishlist/pkg/discovery"
	"github.com/ataraxii/wishlist/pkg/health"

	"github.com/ataraxii/wishlist/internal/gateway/config"
	"github.com/ataraxii/wishlist/internal/gateway/handler"
	"github.com/ataraxii/wishlist/internal/gateway/proxy"
)

// App holds the running pieces of the gateway.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	discoveryClient := discovery.NewClient(cfg.DiscoveryURL, logger)

	wishlistProxy, err := proxy.NewServiceProxy(
		"wishlist",
		discoveryClient,
		cfg.WishlistFallback,
		cfg.ResolveCacheTTL,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("build wishlist proxy: %w", err)
	}

	healthHandler := health.NewHandler()
	healthHandler.Register("discovery", func(ctx context.Context) error {
		_, err := discoveryClient.Resolve(ctx, "wishlist")
		if errors.Is(err, discovery.ErrNoInstances) {
			// An empty registry is not a gateway failure.
			return nil
		}
		return err
	})

	router := handler.NewRouter(cfg, wishlistProxy, healthHandler, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
	}, nil
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

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown drains in-flight HTTP requests.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		return err
	}

	a.logger.Info("application shutdown complete")
	return nil
}
