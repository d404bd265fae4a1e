// Package config loads the server configuration from defaults, an optional
// file and POSTGRAPH_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anujdecoder/postgraph/mutate"
	"github.com/anujdecoder/postgraph/store"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes every environment variable, e.g. POSTGRAPH_HTTP_ADDR or
// POSTGRAPH_STORE_USERS_URL.
const EnvPrefix = "POSTGRAPH"

// Config holds application configuration values.
type Config struct {
	HTTPAddr       string `mapstructure:"http_addr"`
	MaxConnections int    `mapstructure:"max_connections"`
	Playground     bool   `mapstructure:"playground"`
	MetricsPath    string `mapstructure:"metrics_path"`
	LogLevel       string `mapstructure:"log_level"`
	LogFormat      string `mapstructure:"log_format"`
	Consistency    string `mapstructure:"consistency"`
	Store          Store  `mapstructure:"store"`
}

// Store locates the collections.
type Store struct {
	store.URLs         `mapstructure:",squash"`
	MaxConflictRetries int `mapstructure:"max_conflict_retries"`
}

// SetDefaults registers every key with its default. Keys must be known to v
// for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("max_connections", 1024)
	v.SetDefault("playground", true)
	v.SetDefault("metrics_path", "/metrics")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("consistency", mutate.Lenient.String())
	v.SetDefault("store.users_url", "mem://users/id")
	v.SetDefault("store.posts_url", "mem://posts/id")
	v.SetDefault("store.comments_url", "mem://comments/id")
	v.SetDefault("store.max_conflict_retries", 8)
}

// Load reads the configuration. file may be empty.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate reports the first invalid value.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return errors.New("http_addr is required")
	}
	if c.MaxConnections < 0 {
		return errors.New("max_connections must not be negative")
	}
	if c.MetricsPath != "" && !strings.HasPrefix(c.MetricsPath, "/") {
		return fmt.Errorf("metrics_path %q must start with /", c.MetricsPath)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("log_format %q must be json or console", c.LogFormat)
	}
	if _, err := mutate.ParsePolicy(c.Consistency); err != nil {
		return err
	}
	if c.Store.Users == "" || c.Store.Posts == "" || c.Store.Comments == "" {
		return errors.New("store.users_url, store.posts_url and store.comments_url are required")
	}
	if c.Store.MaxConflictRetries < 0 {
		return errors.New("store.max_conflict_retries must not be negative")
	}
	return nil
}

// Policy returns the parsed consistency policy. Call after Validate.
func (c *Config) Policy() mutate.Policy {
	p, _ := mutate.ParsePolicy(c.Consistency)
	return p
}
