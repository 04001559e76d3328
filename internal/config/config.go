package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Channel  ChannelConfig  `yaml:"channel"`
	Database DatabaseConfig `yaml:"database"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Engine   EngineConfig   `yaml:"engine"`
	Relay    RelayConfig    `yaml:"relay"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port               int    `yaml:"port"`
	MetricsPort        int    `yaml:"metrics_port"`
	AdminToken         string `yaml:"admin_token"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
}

// ChannelConfig picks the synchronization backend. An empty URL runs the
// whole installation in-process on the memory channel; a NATS URL shares the
// record across machines.
type ChannelConfig struct {
	URL    string `yaml:"url"`
	Bucket string `yaml:"bucket"`
	Key    string `yaml:"key"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type CatalogConfig struct {
	Path string `yaml:"path"`
}

// EngineConfig carries the product-tuning constants. These were settled
// during rehearsals; override them here rather than editing code.
type EngineConfig struct {
	Sigma     float64 `yaml:"sigma"`
	VolumeMin float64 `yaml:"volume_min"`
	VolumeMax float64 `yaml:"volume_max"`
	MinPour   float64 `yaml:"min_pour"`
}

type RelayConfig struct {
	MinIntervalMs int `yaml:"min_interval_ms"`
	Buffer        int `yaml:"buffer"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) MinInterval() time.Duration {
	return time.Duration(c.Relay.MinIntervalMs) * time.Millisecond
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               8700,
			MetricsPort:        8701,
			RateLimitPerMinute: 1200,
		},
		Channel: ChannelConfig{
			Bucket: "XBAR_STATE",
			Key:    "installation.vector",
		},
		Engine: EngineConfig{
			Sigma:     12.0,
			VolumeMin: 60,
			VolumeMax: 150,
			MinPour:   1.0,
		},
		Relay: RelayConfig{
			MinIntervalMs: 100,
			Buffer:        8,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("XBAR_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("XBAR_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("XBAR_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("XBAR_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("XBAR_CHANNEL_URL"); v != "" {
		cfg.Channel.URL = v
	}
	if v := os.Getenv("XBAR_CHANNEL_BUCKET"); v != "" {
		cfg.Channel.Bucket = v
	}
	if v := os.Getenv("XBAR_CHANNEL_KEY"); v != "" {
		cfg.Channel.Key = v
	}
	if v := os.Getenv("XBAR_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("XBAR_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("XBAR_SIGMA"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Engine.Sigma = f
		}
	}
	if v := os.Getenv("XBAR_MIN_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Relay.MinIntervalMs = n
		}
	}
	if v := os.Getenv("XBAR_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
