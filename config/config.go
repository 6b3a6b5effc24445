// Package config loads server and client settings from defaults,
// an optional YAML file and the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the server settings.
type Config struct {
	Port            int
	StoreURL        string
	StoreBucket     string
	RedisAddr       string
	CacheTTL        time.Duration
	CachePrefix     string
	LogLevel        string
	ShutdownTimeout time.Duration
	DBDebug         bool
}

// CacheEnabled reports whether a Redis address was configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

// ClientConfig holds the terminal client settings.
type ClientConfig struct {
	APIURL  string
	Timeout time.Duration
}

func setServerDefaults(v *viper.Viper) {
	v.SetDefault("port", 3000)
	v.SetDefault("store_url", "sqlite://todolist.db")
	v.SetDefault("store_bucket", "tasks")
	v.SetDefault("redis_addr", "")
	v.SetDefault("cache_ttl", time.Minute)
	v.SetDefault("cache_prefix", "tasks:")
	v.SetDefault("log_level", "info")
	v.SetDefault("shutdown_timeout", 30*time.Second)
	v.SetDefault("db_debug", false)
}

func setClientDefaults(v *viper.Viper) {
	v.SetDefault("tasks_api_url", "http://localhost:3000")
	v.SetDefault("tasks_api_timeout", 10*time.Second)
}

// newViper returns a viper instance reading the environment and,
// when CONFIG_FILE is set, a YAML file. The environment wins.
func newViper(setDefaults func(*viper.Viper)) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	return v, nil
}

// Load reads the server configuration.
func Load() (*Config, error) {
	v, err := newViper(setServerDefaults)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:            v.GetInt("port"),
		StoreURL:        strings.TrimSpace(v.GetString("store_url")),
		StoreBucket:     v.GetString("store_bucket"),
		RedisAddr:       strings.TrimSpace(v.GetString("redis_addr")),
		CacheTTL:        v.GetDuration("cache_ttl"),
		CachePrefix:     v.GetString("cache_prefix"),
		LogLevel:        strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		DBDebug:         v.GetBool("db_debug"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the server configuration.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d: must be between 1 and 65535", c.Port)
	}
	if c.StoreURL == "" {
		return fmt.Errorf("STORE_URL is required")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("invalid CACHE_TTL %s: must be positive", c.CacheTTL)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid SHUTDOWN_TIMEOUT %s: must be positive", c.ShutdownTimeout)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q: must be debug, info, warn or error", c.LogLevel)
	}
	return nil
}

// LoadClient reads the client configuration.
func LoadClient() (*ClientConfig, error) {
	v, err := newViper(setClientDefaults)
	if err != nil {
		return nil, err
	}

	cfg := &ClientConfig{
		APIURL:  strings.TrimRight(strings.TrimSpace(v.GetString("tasks_api_url")), "/"),
		Timeout: v.GetDuration("tasks_api_timeout"),
	}
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("TASKS_API_URL is required")
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("invalid TASKS_API_TIMEOUT %s: must be positive", cfg.Timeout)
	}
	return cfg, nil
}
