// Package http registers the wishlist service's HTTP routes.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ataraxii/wishlist/pkg/health"
	"github.com/ataraxii/wishlist/pkg/middleware"

	"github.com/ataraxii/wishlist/internal/wishlist/service"
)

// NewRouter creates a chi router with all wishlist service routes registered.
func NewRouter(
	authService *service.AuthService,
	wishlistService *service.WishlistService,
	itemService *service.ItemService,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("wishlist"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	authHandler := NewAuthHandler(authService, logger)
	wishlistHandler := NewWishlistHandler(wishlistService, logger)
	itemHandler := NewItemHandler(itemService, logger)

	// Auth endpoints (public)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.RefreshToken)
		r.Post("/logout", authHandler.Logout)
	})

	// Shared wishlist read path (public, no identity)
	r.Get("/api/v1/shared/wishlists/{wishlistId}", wishlistHandler.GetShared)

	// Token validator that bridges to the JWT manager.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := authService.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID:   claims.UserID,
			Username: claims.Username,
		}, nil
	}

	// Wishlist and item endpoints (auth required)
	r.Route("/api/v1/wishlists", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.Post("/", wishlistHandler.Create)
		r.Get("/", wishlistHandler.List)
		r.Get("/{wishlistId}", wishlistHandler.Get)
		r.Patch("/{wishlistId}", wishlistHandler.Update)
		r.Delete("/{wishlistId}", wishlistHandler.Delete)
		r.Patch("/share/{wishlistId}", wishlistHandler.Share)

		r.Post("/{wishlistId}/items", itemHandler.CreateInWishlist)
		r.Patch("/{wishlistId}/items/{itemId}", itemHandler.Update)
		r.Delete("/{wishlistId}/items/{itemId}", itemHandler.Delete)
	})

	// Standalone item creation (auth required, no wishlist link)
	r.Route("/api/v1/items", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.Post("/", itemHandler.Create)
	})

	return r
}
