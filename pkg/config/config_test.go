package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/depscout/depscout/pkg/errors"
)

func TestLoad_Defaults(t *testing.T) {
	// No config file anywhere near this path.
	cfg, err := Load(filepath.Join(t.TempDir(), ".depscout.toml"))
	if cfg != nil || err == nil {
		t.Fatalf("explicit missing file = (%+v, %v), want error", cfg, err)
	}
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `repo_root = "/custom/repo"
skip_dirs = ["generated", "tmp"]

[cache]
backend = "redis"
redis_addr = "localhost:6379"
ttl_hours = 24

[server]
addr = "0.0.0.0:9000"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.RepoRoot != "/custom/repo" {
		t.Errorf("RepoRoot = %q", cfg.RepoRoot)
	}
	if len(cfg.SkipDirs) != 2 || cfg.SkipDirs[0] != "generated" {
		t.Errorf("SkipDirs = %v", cfg.SkipDirs)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Cache.TTL() != 24*time.Hour {
		t.Errorf("TTL = %v, want 24h", cfg.Cache.TTL())
	}
	if cfg.Server.Addr != "0.0.0.0:9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
}

func TestLoad_PartialFileGetsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`repo_root = "/custom/repo"`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("Cache.Backend = %q, want default file", cfg.Cache.Backend)
	}
	if cfg.Cache.TTLHours != 168 {
		t.Errorf("Cache.TTLHours = %d, want default 168", cfg.Cache.TTLHours)
	}
	if cfg.Server.Addr != "127.0.0.1:7171" {
		t.Errorf("Server.Addr = %q, want default", cfg.Server.Addr)
	}
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("repo_root = [broken"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestCacheDir_Override(t *testing.T) {
	c := CacheConfig{Dir: "/custom/cache"}
	if got := c.CacheDir(); got != "/custom/cache" {
		t.Errorf("CacheDir = %q, want override", got)
	}

	def := CacheConfig{}
	if got := def.CacheDir(); got == "" {
		t.Error("default CacheDir is empty")
	}
}
