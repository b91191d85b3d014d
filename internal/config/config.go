package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Backend   BackendConfig   `yaml:"backend"`
	Sensor    SensorConfig    `yaml:"sensor"`
	Queue     QueueConfig     `yaml:"queue"`
	Buffer    BufferConfig    `yaml:"buffer"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	MCP       MCPConfig       `yaml:"mcp"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type BackendConfig struct {
	URL           string        `yaml:"url"`
	APIKey        string        `yaml:"api_key"`
	Timeout       time.Duration `yaml:"timeout"`
	ProbeTimeout  time.Duration `yaml:"probe_timeout"`
	ProbeCacheTTL time.Duration `yaml:"probe_cache_ttl"`
}

type SensorConfig struct {
	Model string `yaml:"model"`
}

type QueueConfig struct {
	Dir            string        `yaml:"dir"`
	MigrationsPath string        `yaml:"migrations_path"`
	SyncInterval   time.Duration `yaml:"sync_interval"`
}

type BufferConfig struct {
	MaxPoints int           `yaml:"max_points"`
	Window    time.Duration `yaml:"window"`
}

type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Topic    string `yaml:"topic"`
}

type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type MCPConfig struct {
	Enabled bool `yaml:"enabled"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix VITALSYNC_ and underscore-separated
// paths:
//
//	VITALSYNC_SERVER_HOST, VITALSYNC_SERVER_PORT,
//	VITALSYNC_BACKEND_URL, VITALSYNC_BACKEND_API_KEY,
//	VITALSYNC_SENSOR_MODEL, VITALSYNC_QUEUE_DIR,
//	VITALSYNC_MQTT_BROKER, VITALSYNC_MQTT_TOPIC,
//	VITALSYNC_REDIS_ADDR, VITALSYNC_AUTH_API_KEY
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VITALSYNC_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("VITALSYNC_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("VITALSYNC_BACKEND_URL"); v != "" {
		cfg.Backend.URL = v
	}
	if v := os.Getenv("VITALSYNC_BACKEND_API_KEY"); v != "" {
		cfg.Backend.APIKey = v
	}
	if v := os.Getenv("VITALSYNC_SENSOR_MODEL"); v != "" {
		cfg.Sensor.Model = v
	}
	if v := os.Getenv("VITALSYNC_QUEUE_DIR"); v != "" {
		cfg.Queue.Dir = v
	}
	if v := os.Getenv("VITALSYNC_MQTT_BROKER"); v != "" {
		cfg.MQTT.Broker = v
	}
	if v := os.Getenv("VITALSYNC_MQTT_TOPIC"); v != "" {
		cfg.MQTT.Topic = v
	}
	if v := os.Getenv("VITALSYNC_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("VITALSYNC_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = 30 * time.Second
	}
	if cfg.Backend.ProbeTimeout == 0 {
		cfg.Backend.ProbeTimeout = 3 * time.Second
	}
	if cfg.Backend.ProbeCacheTTL == 0 {
		cfg.Backend.ProbeCacheTTL = 10 * time.Second
	}
	if cfg.Sensor.Model == "" {
		cfg.Sensor.Model = "unknown"
	}
	if cfg.Queue.Dir == "" {
		cfg.Queue.Dir = "data"
	}
	if cfg.Queue.MigrationsPath == "" {
		cfg.Queue.MigrationsPath = "migrations"
	}
	if cfg.Queue.SyncInterval == 0 {
		cfg.Queue.SyncInterval = 30 * time.Second
	}
	if cfg.Buffer.MaxPoints == 0 {
		cfg.Buffer.MaxPoints = 1000
	}
	if cfg.Buffer.Window == 0 {
		cfg.Buffer.Window = 24 * time.Hour
	}
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "vitalsync-gateway"
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = time.Hour
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Backend.URL == "" {
		return fmt.Errorf("backend.url is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
	}
	if c.MQTT.Enabled && c.MQTT.Topic == "" {
		return fmt.Errorf("mqtt.topic is required when mqtt is enabled")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled")
	}
	return nil
}
