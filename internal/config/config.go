// Package config loads server configuration. Values are layered: built-in
// defaults, then a YAML file, then the environment (optionally seeded from
// a .env file). Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete server configuration.
type Config struct {
	// DB is the SQLite database path.
	DB string `yaml:"db"`
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`
	// Admin names the admin account created on first run.
	Admin string `yaml:"admin"`
	// Log is an optional log file; empty logs to stdout/stderr only.
	Log    string       `yaml:"log"`
	Pickup PickupConfig `yaml:"pickup"`
	Redis  RedisConfig  `yaml:"redis"`
}

// PickupConfig configures pickup confirmation.
type PickupConfig struct {
	// RevealCode includes the picker's assigned code in a mismatch error.
	RevealCode bool `yaml:"reveal_code"`
}

// RedisConfig configures the shared item lock. With an empty Addr items are
// locked in-process.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
	LockWait time.Duration `yaml:"lock_wait"`
}

// Environment variables read by ApplyEnv.
const (
	EnvDB         = "MAGACIN_DB"
	EnvAddr       = "MAGACIN_ADDR"
	EnvAdmin      = "MAGACIN_ADMIN"
	EnvLog        = "MAGACIN_LOG"
	EnvRedisAddr  = "MAGACIN_REDIS_ADDR"
	EnvRevealCode = "MAGACIN_REVEAL_CODE"
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		DB:     "magacin.sqlite3",
		Addr:   ":8080",
		Admin:  "Admin",
		Pickup: PickupConfig{RevealCode: true},
		Redis: RedisConfig{
			LockTTL:  10 * time.Second,
			LockWait: 2 * time.Second,
		},
	}
}

// LoadFromFile reads a YAML file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Load builds a configuration from the YAML file at configPath (skipped
// when empty) and the environment, with envPath as a fallback .env file.
func Load(configPath, envPath string) (*Config, error) {
	cfg := DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = LoadFromFile(configPath); err != nil {
			return nil, err
		}
	}

	lookup, err := Lookup(envPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Lookup returns an environment lookup that prefers the process environment
// and falls back to the .env file at path. A missing file is not an error.
func Lookup(path string) (func(string) (string, bool), error) {
	var file map[string]string
	if path != "" {
		var err error
		file, err = godotenv.Read(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := file[key]
		return v, ok
	}, nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	fields := map[string]*string{
		EnvDB:        &c.DB,
		EnvAddr:      &c.Addr,
		EnvAdmin:     &c.Admin,
		EnvLog:       &c.Log,
		EnvRedisAddr: &c.Redis.Addr,
	}
	for key, field := range fields {
		if v, ok := lookup(key); ok && v != "" {
			*field = v
		}
	}

	if v, ok := lookup(EnvRevealCode); ok && v != "" {
		reveal, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRevealCode, err)
		}
		c.Pickup.RevealCode = reveal
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.DB == "" {
		return fmt.Errorf("db is required")
	}
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.Admin == "" {
		return fmt.Errorf("admin is required")
	}
	if c.Redis.Addr != "" {
		if c.Redis.LockTTL <= 0 {
			return fmt.Errorf("redis.lock_ttl must be positive")
		}
		if c.Redis.LockWait < 0 {
			return fmt.Errorf("redis.lock_wait must not be negative")
		}
	}
	return nil
}
