package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Concurrency != 5 {
		t.Errorf("Concurrency = %d, want 5", cfg.Concurrency)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, "file")
	}
	if cfg.Cache.TTL() != 24*time.Hour {
		t.Errorf("Cache.TTL() = %v, want 24h", cfg.Cache.TTL())
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8080")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
concurrency = 10
shallow = true

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/0"
ttl_hours = 6

[registry]
url = "https://registry.example.test"

[report]
mongo_uri = "mongodb://localhost:27017"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Concurrency != 10 || !cfg.Shallow {
		t.Errorf("got concurrency=%d shallow=%v, want 10/true", cfg.Concurrency, cfg.Shallow)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.TTL() != 6*time.Hour {
		t.Errorf("cache = %+v, want redis with 6h TTL", cfg.Cache)
	}
	if cfg.Registry.URL != "https://registry.example.test" {
		t.Errorf("Registry.URL = %q", cfg.Registry.URL)
	}
	if cfg.Report.MongoURI != "mongodb://localhost:27017" {
		t.Errorf("Report.MongoURI = %q", cfg.Report.MongoURI)
	}
	// Untouched sections keep their defaults.
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want default", cfg.Server.Addr)
	}
}

func TestLoadRejectsBadConcurrency(t *testing.T) {
	path := writeConfig(t, "concurrency = -1\n")
	_, err := Load(path)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error code = %q, want %q", errors.GetCode(err), errors.ErrCodeInvalidConfig)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := writeConfig(t, "concurrency = [broken\n")
	_, err := Load(path)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error code = %q, want %q", errors.GetCode(err), errors.ErrCodeInvalidConfig)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error code = %q, want %q", errors.GetCode(err), errors.ErrCodeInvalidConfig)
	}
}
