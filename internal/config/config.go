package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Mode selects the storage backend at startup. There are no per-request
// demo-mode branches anywhere else in the codebase.
const (
	ModePostgres = "postgres"
	ModeMemory   = "memory"
)

// Config holds all configuration for the courier service.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Delivery DeliveryConfig `yaml:"delivery"`
	Render   RenderConfig   `yaml:"render"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GetHost returns the configured host, defaulting to localhost.
func (c ServerConfig) GetHost() string {
	if c.Host == "" {
		return "localhost"
	}
	return c.Host
}

// DatabaseConfig holds the document store settings.
type DatabaseConfig struct {
	// Mode is "postgres" or "memory". Memory mode needs no URL and is meant
	// for local demos and tests.
	Mode string `yaml:"mode"`
	URL  string `yaml:"url"`
}

// RedisConfig holds optional Redis settings for the catalog cache and send
// locks. An empty Addr disables both.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// DeliveryConfig holds the correspondence pacing constants.
type DeliveryConfig struct {
	// CooldownMinutes is the minimum interval between two letters from the
	// same sender to the same recipient address.
	CooldownMinutes int `yaml:"cooldown_minutes"`
	// DelayMinutes is the minimum interval between submission and visibility.
	// Delivery is ceremonial: time is part of the experience. Interactive
	// deployments use minutes, production pacing uses hours.
	DelayMinutes int `yaml:"delay_minutes"`
	// LockTTLSeconds bounds how long a send lock may be held.
	LockTTLSeconds int `yaml:"lock_ttl_seconds"`
}

// CooldownWindow returns the sender/recipient cooldown as a duration.
func (c DeliveryConfig) CooldownWindow() time.Duration {
	return time.Duration(c.CooldownMinutes) * time.Minute
}

// DeliveryDelay returns the baseline delivery delay as a duration.
func (c DeliveryConfig) DeliveryDelay() time.Duration {
	return time.Duration(c.DelayMinutes) * time.Minute
}

// LockTTL returns the send lock TTL as a duration.
func (c DeliveryConfig) LockTTL() time.Duration {
	return time.Duration(c.LockTTLSeconds) * time.Second
}

// RenderConfig controls the optional markdown-to-HTML letter rendering.
type RenderConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file and applies defaults. A missing
// file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Mode == "" {
		cfg.Database.Mode = ModeMemory
	}
	if cfg.Delivery.CooldownMinutes == 0 {
		cfg.Delivery.CooldownMinutes = 60
	}
	if cfg.Delivery.DelayMinutes == 0 {
		cfg.Delivery.DelayMinutes = 2
	}
	if cfg.Delivery.LockTTLSeconds == 0 {
		cfg.Delivery.LockTTLSeconds = 10
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads configuration from the YAML file, then applies .env and
// environment variable overrides.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
		cfg.Database.Mode = ModePostgres
	}
	if v := os.Getenv("COURIER_MODE"); v != "" {
		cfg.Database.Mode = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("COURIER_COOLDOWN_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Delivery.CooldownMinutes = n
		}
	}
	if v := os.Getenv("COURIER_DELAY_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Delivery.DelayMinutes = n
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Mode {
	case ModePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required in postgres mode")
		}
	case ModeMemory:
	default:
		return fmt.Errorf("database.mode must be %q or %q, got %q", ModePostgres, ModeMemory, c.Database.Mode)
	}
	if c.Delivery.CooldownMinutes < 0 {
		return fmt.Errorf("delivery.cooldown_minutes must not be negative")
	}
	if c.Delivery.DelayMinutes < 0 {
		return fmt.Errorf("delivery.delay_minutes must not be negative")
	}
	return nil
}
