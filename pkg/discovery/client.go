package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ataraxii/wishlist/pkg/httpclient"
)

// Instance describes a single registered service instance.
type Instance struct {
	ID      string `json:"id"`
	Service string `json:"service"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
}

// URL returns the base HTTP URL of the instance.
func (i Instance) URL() string {
	return fmt.Sprintf("http://%s:%d", i.Host, i.Port)
}

// Client talks to the discovery server's registry API. Lookups go through a
// circuit breaker so a dead discovery server fails fast instead of stalling
// every proxied request.
type Client struct {
	baseURL string
	http    *httpclient.CircuitBreakerClient
	logger  *slog.Logger
}

// NewClient creates a discovery client for the given server base URL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	inner := httpclient.New(httpclient.DefaultConfig())
	return &Client{
		baseURL: baseURL,
		http:    httpclient.NewCircuitBreakerClient(inner, httpclient.DefaultCircuitBreakerConfig("discovery"), logger),
		logger:  logger,
	}
}

// Register registers or renews an instance lease.
func (c *Client) Register(ctx context.Context, inst Instance) error {
	body, err := json.Marshal(map[string]any{"host": inst.Host, "port": inst.Port})
	if err != nil {
		return fmt.Errorf("marshal registration: %w", err)
	}

	url := fmt.Sprintf("%s/registry/services/%s/%s", c.baseURL, inst.Service, inst.ID)
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("register instance: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("register instance: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Heartbeat renews an existing lease. Returns ErrLeaseExpired if the
// registry no longer knows the instance.
func (c *Client) Heartbeat(ctx context.Context, service, id string) error {
	url := fmt.Sprintf("%s/registry/services/%s/%s/heartbeat", c.baseURL, service, id)
	req, err := http.NewRequest(http.MethodPost, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("heartbeat: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrLeaseExpired
	default:
		return fmt.Errorf("heartbeat: unexpected status %d", resp.StatusCode)
	}
}

// Deregister removes an instance from the registry.
func (c *Client) Deregister(ctx context.Context, service, id string) error {
	url := fmt.Sprintf("%s/registry/services/%s/%s", c.baseURL, service, id)
	req, err := http.NewRequest(http.MethodDelete, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("deregister instance: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("deregister instance: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Resolve returns the live instances of a service.
func (c *Client) Resolve(ctx context.Context, service string) ([]Instance, error) {
	url := fmt.Sprintf("%s/registry/services/%s", c.baseURL, service)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoInstances
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("resolve %s: unexpected status %d", service, resp.StatusCode)
	}

	var body struct {
		Data []Instance `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode instances: %w", err)
	}
	if len(body.Data) == 0 {
		return nil, ErrNoInstances
	}
	return body.Data, nil
}

// KeepAlive registers the instance and then heartbeats at the given interval
// until the context is cancelled. An expired lease triggers re-registration.
// It deregisters on exit.
func (c *Client) KeepAlive(ctx context.Context, inst Instance, interval time.Duration) {
	if err := c.Register(ctx, inst); err != nil {
		c.logger.Warn("initial registration failed, will retry",
			slog.String("service", inst.Service),
			slog.String("error", err.Error()),
		)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := c.Deregister(shutdownCtx, inst.Service, inst.ID); err != nil {
				c.logger.Warn("deregistration failed",
					slog.String("service", inst.Service),
					slog.String("error", err.Error()),
				)
			}
			return
		case <-ticker.C:
			err := c.Heartbeat(ctx, inst.Service, inst.ID)
			if err == nil {
				continue
			}
			if errors.Is(err, ErrLeaseExpired) {
				if regErr := c.Register(ctx, inst); regErr != nil {
					c.logger.Warn("re-registration failed",
						slog.String("service", inst.Service),
						slog.String("error", regErr.Error()),
					)
				}
				continue
			}
			c.logger.Warn("heartbeat failed",
				slog.String("service", inst.Service),
				slog.String("error", err.Error()),
			)
		}
	}
}
