// Package config loads analyser settings from an optional TOML file.
// Every field has a working default, so no config file is required.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/errors"
)

// Config is the full analyser configuration.
type Config struct {
	Concurrency     int                 `toml:"concurrency"`
	Shallow         bool                `toml:"shallow"`
	Cache           CacheConfig         `toml:"cache"`
	Registry        RegistryConfig      `toml:"registry"`
	Vulnerabilities VulnerabilityConfig `toml:"vulnerabilities"`
	Report          ReportConfig        `toml:"report"`
	Server          ServerConfig        `toml:"server"`
}

// CacheConfig selects and configures the HTTP response cache backend.
type CacheConfig struct {
	// Backend is one of "file", "memory", "redis", or "none".
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	TTLHours int    `toml:"ttl_hours"`
	RedisURL string `toml:"redis_url"`
}

// RegistryConfig overrides the metadata and graph endpoints.
type RegistryConfig struct {
	URL      string `toml:"url"`
	GraphURL string `toml:"graph_url"`
}

// VulnerabilityConfig overrides the vulnerability query endpoint.
type VulnerabilityConfig struct {
	URL string `toml:"url"`
}

// ReportConfig configures optional report persistence.
type ReportConfig struct {
	MongoURI string `toml:"mongo_uri"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Concurrency: 5,
		Cache: CacheConfig{
			Backend:  "file",
			TTLHours: 24,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads a TOML config file, layering it over the defaults. An
// empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "cannot read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "cannot parse config %s", path)
	}
	if cfg.Concurrency <= 0 {
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "concurrency must be positive, got %d", cfg.Concurrency)
	}
	return cfg, nil
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}
