// Package handler exposes the discovery server's registry API over HTTP.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ataraxii/wishlist/pkg/discovery"
	apperrors "github.com/ataraxii/wishlist/pkg/errors"
	"github.com/ataraxii/wishlist/pkg/health"
	"github.com/ataraxii/wishlist/pkg/httputil"
	"github.com/ataraxii/wishlist/pkg/middleware"

	"github.com/ataraxii/wishlist/internal/discovery/registry"
)

// RegistryHandler handles registry API requests.
type RegistryHandler struct {
	registry *registry.Registry
	logger   *slog.Logger
}

// NewRegistryHandler creates a new registry HTTP handler.
func NewRegistryHandler(reg *registry.Registry, logger *slog.Logger) *RegistryHandler {
	return &RegistryHandler{registry: reg, logger: logger}
}

// NewRouter creates a chi router with the registry routes registered.
func NewRouter(reg *registry.Registry, healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("discovery"))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	h := NewRegistryHandler(reg, logger)
	r.Route("/registry/services", func(r chi.Router) {
		r.Get("/", h.ListServices)
		r.Get("/{service}", h.ListInstances)
		r.Put("/{service}/{instanceId}", h.Register)
		r.Post("/{service}/{instanceId}/heartbeat", h.Heartbeat)
		r.Delete("/{service}/{instanceId}", h.Deregister)
	})

	return r
}

// registerRequest is the JSON body for instance registration.
type registerRequest struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Register handles PUT /registry/services/{service}/{instanceId}
func (h *RegistryHandler) Register(w http.ResponseWriter, r *http.Request) {
	service := chi.URLParam(r, "service")
	instanceID := chi.URLParam(r, "instanceId")

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}
	if req.Host == "" || req.Port < 1 || req.Port > 65535 {
		httputil.WriteError(w, r, apperrors.InvalidInput("host and a valid port are required"), h.logger)
		return
	}

	inst := discovery.Instance{
		ID:      instanceID,
		Service: service,
		Host:    req.Host,
		Port:    req.Port,
	}

	if err := h.registry.Register(r.Context(), inst); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: inst})
}

// Heartbeat handles POST /registry/services/{service}/{instanceId}/heartbeat
func (h *RegistryHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	service := chi.URLParam(r, "service")
	instanceID := chi.URLParam(r, "instanceId")

	if err := h.registry.Heartbeat(r.Context(), service, instanceID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Deregister handles DELETE /registry/services/{service}/{instanceId}
func (h *RegistryHandler) Deregister(w http.ResponseWriter, r *http.Request) {
	service := chi.URLParam(r, "service")
	instanceID := chi.URLParam(r, "instanceId")

	if err := h.registry.Deregister(r.Context(), service, instanceID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListInstances handles GET /registry/services/{service}
func (h *RegistryHandler) ListInstances(w http.ResponseWriter, r *http.Request) {
	service := chi.URLParam(r, "service")

	instances, err := h.registry.Instances(r.Context(), service)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: instances})
}

// ListServices handles GET /registry/services
func (h *RegistryHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.registry.Services(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: services})
}
