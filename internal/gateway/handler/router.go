// Package handler builds the gateway's HTTP routing.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ataraxii/wishlist/pkg/health"
	pkgmiddleware "github.com/ataraxii/wishlist/pkg/middleware"

	"github.com/ataraxii/wishlist/internal/gateway/config"
	gwmiddleware "github.com/ataraxii/wishlist/internal/gateway/middleware"
	"github.com/ataraxii/wishlist/internal/gateway/proxy"
)

// NewRouter creates a chi router with global middleware, health endpoints,
// and proxy routes to the wishlist backend.
func NewRouter(cfg *config.Config, wishlistProxy *proxy.ServiceProxy, healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack (applied in order).
	r.Use(gwmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
	r.Use(pkgmiddleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(pkgmiddleware.RequestLogging(logger))
	r.Use(pkgmiddleware.PrometheusMetrics("gateway"))

	// Health check endpoints (no auth required).
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// All API traffic goes to the wishlist service; the JWT middleware
	// gates the protected prefixes and forwards identity.
	r.Route("/api", func(r chi.Router) {
		r.Use(gwmiddleware.JWTAuth(cfg.JWTSecret, logger))

		r.Handle("/v1/auth/*", wishlistProxy)
		r.Handle("/v1/shared/*", wishlistProxy)
		r.Handle("/v1/wishlists", wishlistProxy)
		r.Handle("/v1/wishlists/*", wishlistProxy)
		r.Handle("/v1/items", wishlistProxy)
		r.Handle("/v1/items/*", wishlistProxy)
	})

	return r
}
