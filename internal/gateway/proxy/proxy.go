// Package proxy forwards gateway traffic to backend instances resolved
// through service discovery.
package proxy

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ataraxii/wishlist/pkg/discovery"
)

// Resolver looks up live instances of a service.
type Resolver interface {
	Resolve(ctx context.Context, service string) ([]discovery.Instance, error)
}

// ServiceProxy reverse-proxies requests to a named backend service. Instance
// lookups go through the discovery server and are cached briefly; requests
// round-robin across the cached instances. When discovery is unavailable the
// proxy falls back to a static URL.
type ServiceProxy struct {
	service     string
	resolver    Resolver
	fallbackURL *url.URL
	cacheTTL    time.Duration
	logger      *slog.Logger

	mu        sync.RWMutex
	instances []discovery.Instance
	fetchedAt time.Time

	next atomic.Uint64
}

// NewServiceProxy creates a proxy for the named service. fallback may be
// empty; then discovery is the only path to the backend.
func NewServiceProxy(service string, resolver Resolver, fallback string, cacheTTL time.Duration, logger *slog.Logger) (*ServiceProxy, error) {
	var fallbackURL *url.URL
	if fallback != "" {
		u, err := url.Parse(fallback)
		if err != nil {
			return nil, err
		}
		fallbackURL = u
	}

	return &ServiceProxy{
		service:     service,
		resolver:    resolver,
		fallbackURL: fallbackURL,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}, nil
}

// ServeHTTP proxies the request to one backend instance.
func (p *ServiceProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target := p.pickTarget(r.Context())
	if target == nil {
		p.logger.Error("no backend available",
			slog.String("service", p.service),
			slog.String("path", r.URL.Path),
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"code":"BAD_GATEWAY","message":"no backend available"}`))
		return
	}

	rp := httputil.NewSingleHostReverseProxy(target)
	rp.ErrorHandler = p.errorHandler
	rp.ServeHTTP(w, r)
}

// pickTarget returns the next backend URL in round-robin order, refreshing
// the instance cache when stale.
func (p *ServiceProxy) pickTarget(ctx context.Context) *url.URL {
	instances := p.cachedInstances(ctx)
	if len(instances) == 0 {
		return p.fallbackURL
	}

	inst := instances[p.next.Add(1)%uint64(len(instances))]
	u, err := url.Parse(inst.URL())
	if err != nil {
		p.logger.Warn("invalid instance URL",
			slog.String("service", p.service),
			slog.String("url", inst.URL()),
		)
		return p.fallbackURL
	}
	return u
}

func (p *ServiceProxy) cachedInstances(ctx context.Context) []discovery.Instance {
	p.mu.RLock()
	if time.Since(p.fetchedAt) < p.cacheTTL {
		instances := p.instances
		p.mu.RUnlock()
		return instances
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if time.Since(p.fetchedAt) < p.cacheTTL {
		return p.instances
	}

	instances, err := p.resolver.Resolve(ctx, p.service)
	if err != nil {
		p.logger.Warn("instance resolution failed",
			slog.String("service", p.service),
			slog.String("error", err.Error()),
		)
		// Keep serving the stale list rather than dropping traffic.
		p.fetchedAt = time.Now()
		return p.instances
	}

	p.instances = instances
	p.fetchedAt = time.Now()
	return p.instances
}

func (p *ServiceProxy) errorHandler(w http.ResponseWriter, r *http.Request, err error) {
	p.logger.Error("proxy error",
		slog.String("service", p.service),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	_, _ = w.Write([]byte(`{"code":"BAD_GATEWAY","message":"upstream service unavailable"}`))
}
