// Package config loads depscout settings from a TOML file, falling
// back to sensible defaults when no file is present.
//
// The file is searched in order: the path given explicitly, then
// .depscout.toml in the working directory, then
// <user config dir>/depscout/config.toml.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/depscout/depscout/pkg/errors"
	"github.com/depscout/depscout/pkg/repo"
)

// Config holds all user-tunable settings.
type Config struct {
	// RepoRoot is the local repository root. Empty means the Maven
	// default (MAVEN_REPO_LOCAL or ~/.m2/repository).
	RepoRoot string `toml:"repo_root"`

	// SkipDirs extends the scanner's built-in skip list.
	SkipDirs []string `toml:"skip_dirs"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects and configures the descriptor cache backend.
type CacheConfig struct {
	// Backend is one of "file", "redis" or "none". Default: file.
	Backend string `toml:"backend"`
	// Dir overrides the file backend directory. Default:
	// <user cache dir>/depscout.
	Dir string `toml:"dir"`
	// RedisAddr is the host:port for the redis backend.
	RedisAddr string `toml:"redis_addr"`
	// RedisPassword authenticates the redis backend (optional).
	RedisPassword string `toml:"redis_password"`
	// TTLHours bounds entry lifetime. Default: 168 (one week).
	TTLHours int `toml:"ttl_hours"`
}

// ServerConfig configures the depscout serve command.
type ServerConfig struct {
	// Addr is the listen address. Default: 127.0.0.1:7171.
	Addr string `toml:"addr"`
}

// TTL returns the cache TTL as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// CacheDir returns the file cache directory, defaulting under the user
// cache dir.
func (c CacheConfig) CacheDir() string {
	if c.Dir != "" {
		return c.Dir
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return ".depscout-cache"
	}
	return filepath.Join(base, "depscout")
}

// Load reads configuration from path, or from the default search
// locations when path is empty. A missing file is not an error; the
// returned config then carries only defaults. A present but malformed
// file yields an INVALID_CONFIG error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	candidates := []string{path}
	if path == "" {
		candidates = []string{".depscout.toml"}
		if dir, err := os.UserConfigDir(); err == nil {
			candidates = append(candidates, filepath.Join(dir, "depscout", "config.toml"))
		}
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if _, err := os.Stat(candidate); err != nil {
			if path != "" {
				return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config file %s", candidate)
			}
			continue
		}
		if _, err := toml.DecodeFile(candidate, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", candidate)
		}
		break
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.RepoRoot == "" {
		c.RepoRoot = repo.DefaultRoot()
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "file"
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = 168
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:7171"
	}
}
