// Package config loads the TOML configuration. Every field has a default,
// so a missing file is not an error.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr                string `toml:"addr"`
	BasePath            string `toml:"base_path"`
	ReadTimeoutSeconds  int    `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `toml:"write_timeout_seconds"`
	// Mode is "dev" or "release".
	Mode string `toml:"mode"`
}

// StorageConfig locates the badger database.
type StorageConfig struct {
	Path     string `toml:"path"`
	InMemory bool   `toml:"in_memory"`
}

type FeedConfig struct {
	PageSize int `toml:"page_size"`
}

// CacheConfig selects the listing cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"` // memory | redis
	TTLSeconds    int    `toml:"ttl_seconds"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
}

// BlobConfig selects where uploaded images live.
type BlobConfig struct {
	Backend     string `toml:"backend"` // badger | s3
	S3Endpoint  string `toml:"s3_endpoint"`
	S3AccessKey string `toml:"s3_access_key"`
	S3SecretKey string `toml:"s3_secret_key"`
	S3Bucket    string `toml:"s3_bucket"`
	S3UseSSL    bool   `toml:"s3_use_ssl"`
}

type SessionConfig struct {
	// Key signs the session cookie. Left empty, a random key is generated
	// at startup and sessions do not survive a restart.
	Key    string `toml:"key"`
	Secure bool   `toml:"secure"`
	MaxAge int    `toml:"max_age"`
}

// LogConfig configures zap and lumberjack rotation.
type LogConfig struct {
	Path       string `toml:"path"`
	FileName   string `toml:"file_name"`
	Level      string `toml:"level"`
	MaxSize    int    `toml:"max_size"`
	MaxBackups int    `toml:"max_backups"`
	MaxAge     int    `toml:"max_age"`
}

// Config is the whole configuration file.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Feed    FeedConfig    `toml:"feed"`
	Cache   CacheConfig   `toml:"cache"`
	Blob    BlobConfig    `toml:"blob"`
	Session SessionConfig `toml:"session"`
	Log     LogConfig     `toml:"log"`
}

// SearchPaths are tried in order by Load when no explicit path is given.
var SearchPaths = []string{
	"configs/config_local.toml",
	"configs/config.toml",
}

// EnvPath names an environment variable that overrides SearchPaths.
const EnvPath = "YATUBE_CONFIG"

// Default returns the configuration used when no file sets a value.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:                ":8080",
			ReadTimeoutSeconds:  15,
			WriteTimeoutSeconds: 15,
			Mode:                "release",
		},
		Storage: StorageConfig{Path: "data"},
		Feed:    FeedConfig{PageSize: 10},
		Cache: CacheConfig{
			Backend:    "memory",
			TTLSeconds: 20,
			RedisAddr:  "localhost:6379",
		},
		Blob: BlobConfig{
			Backend:  "badger",
			S3Bucket: "yatube-media",
		},
		Session: SessionConfig{MaxAge: 14 * 24 * 3600},
		Log: LogConfig{
			Path:       "logs",
			FileName:   "yatube.log",
			Level:      "info",
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     30,
		},
	}
}

// Load reads the first existing file among paths (or $YATUBE_CONFIG, or
// SearchPaths) over the defaults. It returns the file used, "" if none.
func Load(paths ...string) (*Config, string, error) {
	cfg := Default()
	if len(paths) == 0 {
		if p := os.Getenv(EnvPath); p != "" {
			paths = []string{p}
		} else {
			paths = SearchPaths
		}
	}

	for _, path := range paths {
		_, err := toml.DecodeFile(path, cfg)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("config %s: %w", path, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, "", fmt.Errorf("config %s: %w", path, err)
		}
		return cfg, path, nil
	}
	return cfg, "", nil
}

// Validate rejects values the application cannot run with.
func (c *Config) Validate() error {
	if c.Feed.PageSize < 1 {
		return fmt.Errorf("feed.page_size must be positive, got %d", c.Feed.PageSize)
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache.ttl_seconds must not be negative")
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown cache.backend %q", c.Cache.Backend)
	}
	switch c.Blob.Backend {
	case "badger", "s3":
	default:
		return fmt.Errorf("unknown blob.backend %q", c.Blob.Backend)
	}
	switch c.Server.Mode {
	case "dev", "release":
	default:
		return fmt.Errorf("unknown server.mode %q", c.Server.Mode)
	}
	return nil
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeoutSeconds) * time.Second
}

func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.Server.WriteTimeoutSeconds) * time.Second
}
