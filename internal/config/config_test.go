package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// clearEnv blanks the variables Load binds; viper treats empty values as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "ALLOWED_ORIGIN", "DEFAULT_MEDIA", "MAX_ROOMS", "ACCESS_SECRET_HASH",
		"REDIS_ENABLED", "REDIS_ADDRESS", "PUBSUB_DRIVER", "KAFKA_BROKERS",
		"GRPC_ENABLED", "GRPC_PORT", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 4000, cfg.Server.Port)
	require.Equal(t, "http://localhost:3000", cfg.WebSocket.AllowedOrigin)
	require.Equal(t, 30*time.Second, cfg.WebSocket.PingInterval)
	require.Equal(t, 60*time.Second, cfg.WebSocket.PongWait)
	require.Equal(t, int64(4096), cfg.WebSocket.MaxMessageSize)
	require.Equal(t, "dQw4w9WgXcQ", cfg.Playback.DefaultMedia)
	require.Equal(t, "lobby", cfg.Playback.DefaultRoom)
	require.Equal(t, 1024, cfg.Playback.MaxRooms)
	require.Empty(t, cfg.Access.SecretHash)
	require.False(t, cfg.Redis.Enabled)
	require.Equal(t, "none", cfg.PubSub.Driver)
	require.Equal(t, 256, cfg.PubSub.QueueSize)
	require.Equal(t, 3*time.Second, cfg.PubSub.Redis.ReadTimeout)
	require.False(t, cfg.GRPC.Enabled)
	require.Equal(t, "watchparty", cfg.Log.ServiceName)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "4100")
	t.Setenv("ALLOWED_ORIGIN", "*")
	t.Setenv("PUBSUB_DRIVER", "redis")
	t.Setenv("REDIS_ADDRESS", "redis:6379")
	t.Setenv("DEFAULT_MEDIA", "abc12345678")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 4100, cfg.Server.Port)
	require.Equal(t, "*", cfg.WebSocket.AllowedOrigin)
	require.Equal(t, "redis", cfg.PubSub.Driver)
	require.Equal(t, "redis:6379", cfg.PubSub.Redis.Address)
	require.Equal(t, "redis:6379", cfg.Redis.Address)
	require.Equal(t, "abc12345678", cfg.Playback.DefaultMedia)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"port out of range", "PORT", "70000"},
		{"default media is a url", "DEFAULT_MEDIA", "https://youtu.be/abc12345678"},
		{"unknown pubsub driver", "PUBSUB_DRIVER", "nats"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestValidate_PongWaitMustExceedPingInterval(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	cfg.WebSocket.PongWait = cfg.WebSocket.PingInterval
	require.Error(t, Validate(cfg))
}
