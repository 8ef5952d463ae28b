// Package registry implements the Redis-backed instance registry behind the
// discovery server. Each registration is a lease: a Redis key with a TTL
// that heartbeats extend. Instances that stop heartbeating age out on their
// own.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ataraxii/wishlist/pkg/discovery"
	apperrors "github.com/ataraxii/wishlist/pkg/errors"
)

const keyPrefix = "registry:"

// Registry stores service instance leases in Redis.
type Registry struct {
	client   *redis.Client
	leaseTTL time.Duration
	logger   *slog.Logger
}

// New creates a registry with the given lease TTL.
func New(client *redis.Client, leaseTTL time.Duration, logger *slog.Logger) *Registry {
	return &Registry{
		client:   client,
		leaseTTL: leaseTTL,
		logger:   logger,
	}
}

func instanceKey(service, id string) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, service, id)
}

// Register creates or renews an instance lease.
func (r *Registry) Register(ctx context.Context, inst discovery.Instance) error {
	data, err := json.Marshal(inst)
	if err != nil {
		return fmt.Errorf("marshal instance: %w", err)
	}

	if err := r.client.Set(ctx, instanceKey(inst.Service, inst.ID), data, r.leaseTTL).Err(); err != nil {
		return fmt.Errorf("store instance lease: %w", err)
	}

	r.logger.InfoContext(ctx, "instance registered",
		slog.String("service", inst.Service),
		slog.String("instance_id", inst.ID),
		slog.String("host", inst.Host),
		slog.Int("port", inst.Port),
	)

	return nil
}

// Heartbeat extends an existing lease. A lease that has already expired
// cannot be renewed; the instance must re-register.
func (r *Registry) Heartbeat(ctx context.Context, service, id string) error {
	ok, err := r.client.Expire(ctx, instanceKey(service, id), r.leaseTTL).Result()
	if err != nil {
		return fmt.Errorf("renew instance lease: %w", err)
	}
	if !ok {
		return apperrors.NotFound("instance", id)
	}
	return nil
}

// Deregister drops an instance lease. Unknown instances are ignored.
func (r *Registry) Deregister(ctx context.Context, service, id string) error {
	if err := r.client.Del(ctx, instanceKey(service, id)).Err(); err != nil {
		return fmt.Errorf("delete instance lease: %w", err)
	}

	r.logger.InfoContext(ctx, "instance deregistered",
		slog.String("service", service),
		slog.String("instance_id", id),
	)

	return nil
}

// Instances returns the live instances of a service.
func (r *Registry) Instances(ctx context.Context, service string) ([]discovery.Instance, error) {
	return r.scanInstances(ctx, keyPrefix+service+":*")
}

// Services returns all live instances grouped by service name.
func (r *Registry) Services(ctx context.Context) (map[string][]discovery.Instance, error) {
	instances, err := r.scanInstances(ctx, keyPrefix+"*")
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]discovery.Instance)
	for _, inst := range instances {
		grouped[inst.Service] = append(grouped[inst.Service], inst)
	}
	return grouped, nil
}

func (r *Registry) scanInstances(ctx context.Context, pattern string) ([]discovery.Instance, error) {
	instances := []discovery.Instance{}

	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		data, err := r.client.Get(ctx, iter.Val()).Result()
		if err != nil {
			// The lease may expire between SCAN and GET.
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("load instance lease: %w", err)
		}

		var inst discovery.Instance
		if err := json.Unmarshal([]byte(data), &inst); err != nil {
			r.logger.WarnContext(ctx, "skipping malformed instance lease",
				slog.String("key", iter.Val()),
				slog.String("error", err.Error()),
			)
			continue
		}
		instances = append(instances, inst)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan instance leases: %w", err)
	}

	return instances, nil
}
