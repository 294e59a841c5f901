package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/weiawesome/wes-io-live/watchparty/internal/mediaref"
	pkgconfig "github.com/weiawesome/wes-io-live/watchparty/pkg/config"
	"github.com/weiawesome/wes-io-live/watchparty/pkg/log"
	"github.com/weiawesome/wes-io-live/watchparty/pkg/pubsub"
)

type Config struct {
	Server    ServerConfig
	WebSocket WebSocketConfig
	Playback  PlaybackConfig
	Access    AccessConfig
	Redis     RedisConfig
	PubSub    PubSubConfig `mapstructure:"pubsub"`
	GRPC      GRPCConfig
	Log       log.Config
}

type ServerConfig struct {
	Host string
	Port int `validate:"min=1,max=65535"`
}

type WebSocketConfig struct {
	PingInterval   time.Duration `mapstructure:"ping_interval" validate:"gt=0"`
	PongWait       time.Duration `mapstructure:"pong_wait" validate:"gtfield=PingInterval"`
	WriteWait      time.Duration `mapstructure:"write_wait" validate:"gt=0"`
	MaxMessageSize int64         `mapstructure:"max_message_size" validate:"gt=0"`
	SendBuffer     int           `mapstructure:"send_buffer" validate:"gt=0"`
	// AllowedOrigin is matched against the Origin header on upgrade.
	// "*" accepts any origin.
	AllowedOrigin string `mapstructure:"allowed_origin" validate:"required"`
}

type PlaybackConfig struct {
	DefaultMedia string `mapstructure:"default_media" validate:"mediaid"`
	DefaultRoom  string `mapstructure:"default_room" validate:"required,alphanum,max=64"`
	// MaxRooms caps how many rooms may exist at once. Zero disables the cap.
	MaxRooms int `mapstructure:"max_rooms" validate:"min=0"`
}

// AccessConfig configures the optional shared-secret gate. An empty
// SecretHash disables it.
type AccessConfig struct {
	SecretHash string `mapstructure:"secret_hash"`
}

type RedisConfig struct {
	Enabled           bool
	Address           string        `validate:"required_if=Enabled true"`
	Password          string
	DB                int
	RegistryPrefix    string        `mapstructure:"registry_prefix"`
	AdvertiseAddress  string        `mapstructure:"advertise_address"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	KeyTTL            time.Duration `mapstructure:"key_ttl"`
}

type PubSubConfig struct {
	pubsub.Config `mapstructure:",squash"`
	QueueSize     int `mapstructure:"queue_size" validate:"gt=0"`
}

type GRPCConfig struct {
	Enabled bool
	Host    string
	Port    int `validate:"min=1,max=65535"`
}

// Load reads ./config/config.yaml (if any), applies environment overrides and
// validates the result.
func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	setDefaults(v)

	// Override from environment
	v.BindEnv("server.port", "PORT")
	v.BindEnv("websocket.allowed_origin", "ALLOWED_ORIGIN")
	v.BindEnv("playback.default_media", "DEFAULT_MEDIA")
	v.BindEnv("playback.max_rooms", "MAX_ROOMS")
	v.BindEnv("access.secret_hash", "ACCESS_SECRET_HASH")
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.advertise_address", "ADVERTISE_ADDRESS")
	v.BindEnv("pubsub.driver", "PUBSUB_DRIVER")
	v.BindEnv("pubsub.redis.address", "REDIS_ADDRESS")
	v.BindEnv("pubsub.kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("grpc.enabled", "GRPC_ENABLED")
	v.BindEnv("grpc.port", "GRPC_PORT")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.WebSocket.PingInterval = parseDuration(v, "websocket.ping_interval", 30*time.Second)
	cfg.WebSocket.PongWait = parseDuration(v, "websocket.pong_wait", 60*time.Second)
	cfg.WebSocket.WriteWait = parseDuration(v, "websocket.write_wait", 10*time.Second)
	cfg.Redis.HeartbeatInterval = parseDuration(v, "redis.heartbeat_interval", 10*time.Second)
	cfg.Redis.KeyTTL = parseDuration(v, "redis.key_ttl", 30*time.Second)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	ps := pubsub.DefaultConfig()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 4000)
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("websocket.send_buffer", 256)
	v.SetDefault("websocket.allowed_origin", "http://localhost:3000")
	v.SetDefault("playback.default_media", "dQw4w9WgXcQ")
	v.SetDefault("playback.default_room", "lobby")
	v.SetDefault("playback.max_rooms", 1024)
	v.SetDefault("access.secret_hash", "")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.registry_prefix", "watchparty:registry")
	v.SetDefault("redis.advertise_address", "localhost:4000")
	v.SetDefault("redis.heartbeat_interval", "10s")
	v.SetDefault("redis.key_ttl", "30s")
	v.SetDefault("pubsub.driver", ps.Driver)
	v.SetDefault("pubsub.queue_size", 256)
	v.SetDefault("pubsub.redis.address", ps.Redis.Address)
	v.SetDefault("pubsub.redis.pool_size", ps.Redis.PoolSize)
	v.SetDefault("pubsub.redis.read_timeout", ps.Redis.ReadTimeout)
	v.SetDefault("pubsub.redis.write_timeout", ps.Redis.WriteTimeout)
	v.SetDefault("pubsub.kafka.brokers", ps.Kafka.Brokers)
	v.SetDefault("pubsub.kafka.partitions", ps.Kafka.Partitions)
	v.SetDefault("grpc.enabled", false)
	v.SetDefault("grpc.host", "0.0.0.0")
	v.SetDefault("grpc.port", 50060)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.service_name", "watchparty")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("mediaid", func(fl validator.FieldLevel) bool {
		return mediaref.IsMediaID(fl.Field().String())
	})
	return v
}

// Validate checks field constraints on a loaded configuration.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return defaultVal
	}
	return d
}
