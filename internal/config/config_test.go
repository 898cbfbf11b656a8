package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "magacin.sqlite3", cfg.DB)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "Admin", cfg.Admin)
	assert.True(t, cfg.Pickup.RevealCode)
	assert.Empty(t, cfg.Redis.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "valid default config", modify: func(c *Config) {}},
		{name: "missing db", modify: func(c *Config) { c.DB = "" }, wantErr: true},
		{name: "missing addr", modify: func(c *Config) { c.Addr = "" }, wantErr: true},
		{name: "missing admin", modify: func(c *Config) { c.Admin = "" }, wantErr: true},
		{
			name:    "redis without ttl",
			modify:  func(c *Config) { c.Redis.Addr = "localhost:6379"; c.Redis.LockTTL = 0 },
			wantErr: true,
		},
		{
			name:   "ttl ignored without redis",
			modify: func(c *Config) { c.Redis.LockTTL = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "magacin.yaml")
	content := `
db: /var/lib/magacin/data.sqlite3
addr: 127.0.0.1:9000
pickup:
  reveal_code: false
redis:
  addr: redis:6379
  lock_ttl: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/magacin/data.sqlite3", cfg.DB)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, "Admin", cfg.Admin, "unset fields keep their defaults")
	assert.False(t, cfg.Pickup.RevealCode)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.Redis.LockTTL)
	assert.Equal(t, 2*time.Second, cfg.Redis.LockWait)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db: [unclosed"), 0644))
	_, err = LoadFromFile(path)
	assert.ErrorContains(t, err, "parsing config file")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvDB:         "env.sqlite3",
		EnvAddr:       "",
		EnvRedisAddr:  "cache:6379",
		EnvRevealCode: "false",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv(lookup))

	assert.Equal(t, "env.sqlite3", cfg.DB)
	assert.Equal(t, ":8080", cfg.Addr, "empty values do not override")
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.False(t, cfg.Pickup.RevealCode)

	env[EnvRevealCode] = "sometimes"
	assert.Error(t, cfg.ApplyEnv(lookup))
}

func TestLoadLayers(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "magacin.yaml")
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(configPath, []byte("db: file.sqlite3\naddr: :7000\n"), 0644))
	require.NoError(t, os.WriteFile(envPath, []byte("MAGACIN_ADDR=:7100\nMAGACIN_LOG=dotenv.log\n"), 0644))
	t.Setenv(EnvLog, "process.log")

	cfg, err := Load(configPath, envPath)
	require.NoError(t, err)

	assert.Equal(t, "file.sqlite3", cfg.DB)
	assert.Equal(t, ":7100", cfg.Addr)
	assert.Equal(t, "process.log", cfg.Log)
}

func TestLoadWithoutFiles(t *testing.T) {
	cfg, err := Load("", filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Addr, cfg.Addr)
}
