package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("no file gives defaults", func(t *testing.T) {
		cfg, used, err := Load(filepath.Join(dir, "missing.toml"))
		require.NoError(t, err)
		assert.Equal(t, "", used)
		assert.Equal(t, Default(), cfg)
		assert.Equal(t, 20*time.Second, cfg.CacheTTL())
		assert.Equal(t, 10, cfg.Feed.PageSize)
	})

	t.Run("file overrides only what it sets", func(t *testing.T) {
		path := writeFile(t, dir, "partial.toml", `
[server]
addr = ":9000"
base_path = "/blog"

[feed]
page_size = 5

[cache]
backend = "redis"
redis_addr = "cache:6379"
`)
		cfg, used, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, path, used)
		assert.Equal(t, ":9000", cfg.Server.Addr)
		assert.Equal(t, "/blog", cfg.Server.BasePath)
		assert.Equal(t, 5, cfg.Feed.PageSize)
		assert.Equal(t, "redis", cfg.Cache.Backend)
		assert.Equal(t, "cache:6379", cfg.Cache.RedisAddr)
		assert.Equal(t, 20, cfg.Cache.TTLSeconds)
		assert.Equal(t, "release", cfg.Server.Mode)
	})

	t.Run("first existing path wins", func(t *testing.T) {
		second := writeFile(t, dir, "second.toml", "[feed]\npage_size = 7\n")
		cfg, used, err := Load(filepath.Join(dir, "local.toml"), second)
		require.NoError(t, err)
		assert.Equal(t, second, used)
		assert.Equal(t, 7, cfg.Feed.PageSize)
	})

	t.Run("environment override", func(t *testing.T) {
		path := writeFile(t, dir, "env.toml", "[log]\nlevel = \"debug\"\n")
		t.Setenv(EnvPath, path)
		cfg, used, err := Load()
		require.NoError(t, err)
		assert.Equal(t, path, used)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("syntax error", func(t *testing.T) {
		path := writeFile(t, dir, "broken.toml", "[server\naddr = 1")
		_, _, err := Load(path)
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero page size", func(c *Config) { c.Feed.PageSize = 0 }},
		{"negative ttl", func(c *Config) { c.Cache.TTLSeconds = -1 }},
		{"unknown cache backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"unknown blob backend", func(c *Config) { c.Blob.Backend = "ftp" }},
		{"unknown mode", func(c *Config) { c.Server.Mode = "debug" }},
	}

	assert.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
