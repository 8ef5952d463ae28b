package registry

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ataraxii/wishlist/pkg/discovery"
	apperrors "github.com/ataraxii/wishlist/pkg/errors"
)

func setupTestRegistry(t *testing.T) (*Registry, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(client, 30*time.Second, logger), mr
}

func sampleInstance() discovery.Instance {
	return discovery.Instance{
		ID:      "inst-1",
		Service: "wishlist",
		Host:    "10.0.0.5",
		Port:    8081,
	}
}

func TestRegistry_Register_SetsLease(t *testing.T) {
	reg, mr := setupTestRegistry(t)

	err := reg.Register(context.Background(), sampleInstance())
	require.NoError(t, err)

	key := "registry:wishlist:inst-1"
	assert.True(t, mr.Exists(key))
	ttl := mr.TTL(key)
	assert.Equal(t, 30*time.Second, ttl)

	var stored discovery.Instance
	data, err := mr.Get(key)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(data), &stored))
	assert.Equal(t, "10.0.0.5", stored.Host)
	assert.Equal(t, 8081, stored.Port)
}

func TestRegistry_Heartbeat_ExtendsLease(t *testing.T) {
	reg, mr := setupTestRegistry(t)

	require.NoError(t, reg.Register(context.Background(), sampleInstance()))

	// Let part of the lease elapse, then heartbeat.
	mr.FastForward(20 * time.Second)
	require.NoError(t, reg.Heartbeat(context.Background(), "wishlist", "inst-1"))

	assert.Equal(t, 30*time.Second, mr.TTL("registry:wishlist:inst-1"))
}

func TestRegistry_Heartbeat_ExpiredLease(t *testing.T) {
	reg, mr := setupTestRegistry(t)

	require.NoError(t, reg.Register(context.Background(), sampleInstance()))
	mr.FastForward(31 * time.Second)

	err := reg.Heartbeat(context.Background(), "wishlist", "inst-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "expected ErrNotFound, got: %v", err)
}

func TestRegistry_Deregister(t *testing.T) {
	reg, mr := setupTestRegistry(t)

	require.NoError(t, reg.Register(context.Background(), sampleInstance()))
	require.NoError(t, reg.Deregister(context.Background(), "wishlist", "inst-1"))

	assert.False(t, mr.Exists("registry:wishlist:inst-1"))
}

func TestRegistry_Deregister_Unknown(t *testing.T) {
	reg, _ := setupTestRegistry(t)

	// Deregistering an unknown instance is not an error.
	assert.NoError(t, reg.Deregister(context.Background(), "wishlist", "ghost"))
}

func TestRegistry_Instances(t *testing.T) {
	reg, _ := setupTestRegistry(t)

	i1 := sampleInstance()
	i2 := sampleInstance()
	i2.ID = "inst-2"
	i2.Port = 8082
	other := discovery.Instance{ID: "inst-3", Service: "billing", Host: "10.0.0.9", Port: 9000}

	require.NoError(t, reg.Register(context.Background(), i1))
	require.NoError(t, reg.Register(context.Background(), i2))
	require.NoError(t, reg.Register(context.Background(), other))

	instances, err := reg.Instances(context.Background(), "wishlist")
	require.NoError(t, err)
	assert.Len(t, instances, 2)
	for _, inst := range instances {
		assert.Equal(t, "wishlist", inst.Service)
	}
}

func TestRegistry_Instances_Empty(t *testing.T) {
	reg, _ := setupTestRegistry(t)

	instances, err := reg.Instances(context.Background(), "wishlist")
	require.NoError(t, err)
	assert.NotNil(t, instances, "should return empty slice, not nil")
	assert.Len(t, instances, 0)
}

func TestRegistry_Instances_ExpiredLeaseAgesOut(t *testing.T) {
	reg, mr := setupTestRegistry(t)

	require.NoError(t, reg.Register(context.Background(), sampleInstance()))
	mr.FastForward(31 * time.Second)

	instances, err := reg.Instances(context.Background(), "wishlist")
	require.NoError(t, err)
	assert.Len(t, instances, 0)
}

func TestRegistry_Instances_SkipsMalformedLease(t *testing.T) {
	reg, mr := setupTestRegistry(t)

	require.NoError(t, reg.Register(context.Background(), sampleInstance()))
	require.NoError(t, mr.Set("registry:wishlist:broken", "not-json"))

	instances, err := reg.Instances(context.Background(), "wishlist")
	require.NoError(t, err)
	assert.Len(t, instances, 1)
}

func TestRegistry_Services_GroupsByName(t *testing.T) {
	reg, _ := setupTestRegistry(t)

	require.NoError(t, reg.Register(context.Background(), sampleInstance()))
	require.NoError(t, reg.Register(context.Background(), discovery.Instance{
		ID: "inst-9", Service: "billing", Host: "10.0.0.9", Port: 9000,
	}))

	services, err := reg.Services(context.Background())
	require.NoError(t, err)
	assert.Len(t, services, 2)
	assert.Len(t, services["wishlist"], 1)
	assert.Len(t, services["billing"], 1)
}
