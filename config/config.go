package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Routing    RoutingConfig    `yaml:"routing"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// RedisConfig holds the optional latest-position cache configuration.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// TelemetryConfig holds the AMQP telemetry channel configuration. The
// "vehicle/position" topic maps onto the routing key "vehicle.position"
// bound to a topic exchange.
type TelemetryConfig struct {
	Enabled          bool          `yaml:"enabled"`
	URL              string        `yaml:"url"`
	Exchange         string        `yaml:"exchange"`
	Queue            string        `yaml:"queue"`
	RoutingKey       string        `yaml:"routing_key"`
	BufferSize       int           `yaml:"buffer_size"`
	ReconnectSeconds int           `yaml:"reconnect_seconds"`
	Reconnect        time.Duration `yaml:"-"` // Ignored by YAML parser
}

// RoutingConfig points at the external OSRM-compatible routing service.
type RoutingConfig struct {
	BaseURL        string        `yaml:"base_url"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Timeout        time.Duration `yaml:"-"` // Ignored by YAML parser
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 20
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	if cfg.Telemetry.Exchange == "" {
		cfg.Telemetry.Exchange = "vehicle"
	}
	if cfg.Telemetry.Queue == "" {
		cfg.Telemetry.Queue = "fleet.position.ingest"
	}
	if cfg.Telemetry.RoutingKey == "" {
		cfg.Telemetry.RoutingKey = "vehicle.position"
	}
	if cfg.Telemetry.BufferSize <= 0 {
		cfg.Telemetry.BufferSize = 256
	}
	if cfg.Telemetry.ReconnectSeconds <= 0 {
		cfg.Telemetry.ReconnectSeconds = 5
	}
	cfg.Telemetry.Reconnect = time.Duration(cfg.Telemetry.ReconnectSeconds) * time.Second

	if cfg.Routing.TimeoutSeconds <= 0 {
		cfg.Routing.TimeoutSeconds = 10
	}
	cfg.Routing.Timeout = time.Duration(cfg.Routing.TimeoutSeconds) * time.Second

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}
