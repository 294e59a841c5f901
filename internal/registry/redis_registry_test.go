package registry

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"github.com/weiawesome/wes-io-live/watchparty/internal/config"
)

func newTestRegistry(t *testing.T) (*RedisRegistry, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	reg, err := NewRedisRegistry(config.RedisConfig{
		Address:           mr.Addr(),
		RegistryPrefix:    "watchparty:registry",
		AdvertiseAddress:  "10.0.0.7:4000",
		HeartbeatInterval: 10 * time.Millisecond,
		KeyTTL:            30 * time.Second,
	})
	require.NoError(t, err)
	return reg, mr
}

func TestRedisRegistry_RegisterLookupDeregister(t *testing.T) {
	reg, mr := newTestRegistry(t)
	defer reg.Close()
	ctx := context.Background()

	require.NoError(t, reg.Register(ctx, "lobby"))

	addr, err := reg.Lookup(ctx, "lobby")
	require.NoError(t, err)
	require.Equal(t, "10.0.0.7:4000", addr)
	require.Equal(t, 30*time.Second, mr.TTL("watchparty:registry:room:lobby"))

	require.NoError(t, reg.Deregister(ctx, "lobby"))
	_, err = reg.Lookup(ctx, "lobby")
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRedisRegistry_HeartbeatRefreshesTTL(t *testing.T) {
	reg, mr := newTestRegistry(t)
	defer reg.Close()
	ctx := context.Background()

	require.NoError(t, reg.Register(ctx, "lobby"))
	mr.FastForward(25 * time.Second)
	require.Equal(t, 5*time.Second, mr.TTL("watchparty:registry:room:lobby"))

	require.NoError(t, reg.StartHeartbeat(ctx))
	require.Eventually(t, func() bool {
		return mr.TTL("watchparty:registry:room:lobby") == 30*time.Second
	}, time.Second, 5*time.Millisecond)
}

func TestRedisRegistry_CloseRemovesKeys(t *testing.T) {
	reg, mr := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Register(ctx, "lobby"))
	require.NoError(t, reg.Register(ctx, "cinema"))
	require.NoError(t, reg.Close())

	require.False(t, mr.Exists("watchparty:registry:room:lobby"))
	require.False(t, mr.Exists("watchparty:registry:room:cinema"))
}

func TestNewRedisRegistry_Unreachable(t *testing.T) {
	_, err := NewRedisRegistry(config.RedisConfig{Address: "127.0.0.1:1"})
	require.Error(t, err)
}

func TestNopRegistry(t *testing.T) {
	var reg Registry = NopRegistry{}
	ctx := context.Background()

	require.NoError(t, reg.Register(ctx, "lobby"))
	_, err := reg.Lookup(ctx, "lobby")
	require.ErrorIs(t, err, ErrRoomNotFound)
	require.NoError(t, reg.Close())
}
