// Package config carries the application configuration: the contact
// store endpoint, cache and sealing settings, and logging setup. A
// config file is optional; every section has a workable default so
// the CLI runs against a local store out of the box.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Defaults applied by New.
const (
	DefaultStoreURL       = "http://localhost:8080"
	DefaultStoreTimeout   = 30
	DefaultCacheTTL       = "1h"
	DefaultLogLevel       = "info"
	defaultConfigFileName = "config.yaml"
)

// DefaultNameDistance mirrors the duplicate detector's default fuzzy
// name threshold.
const DefaultNameDistance = 0.4

// StoreConfig configures the remote contact store client.
type StoreConfig struct {
	// BaseURL is the root of the store's REST API.
	BaseURL string `yaml:"base_url"`

	// MinVersion rejects servers whose advertised API version is
	// older. Empty skips the version gate.
	MinVersion string `yaml:"min_version"`

	// TimeoutSeconds bounds each HTTP request.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// PageSize overrides the client's batch page size. Zero keeps the
	// client default.
	PageSize int `yaml:"page_size"`
}

// CacheConfig configures the local snapshot cache and email index.
type CacheConfig struct {
	// Dir holds the cache files. Empty resolves to the cache
	// subdirectory of the config directory.
	Dir string `yaml:"dir"`

	// TTL is the snapshot lifetime, either a duration string or a
	// number of seconds.
	TTL string `yaml:"ttl"`
}

// SealConfig configures card sealing for imports.
type SealConfig struct {
	// Key is the base64-encoded sealing key.
	Key string `yaml:"key"`

	// KeyFile points at a file holding the base64-encoded key. Key
	// takes precedence when both are set.
	KeyFile string `yaml:"key_file"`
}

// MergeConfig configures duplicate detection.
type MergeConfig struct {
	// NameDistance is the normalized levenshtein distance below which
	// two names count as the same person, in (0, 1].
	NameDistance float64 `yaml:"name_distance"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Config is the root configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Cache   CacheConfig   `yaml:"cache"`
	Seal    SealConfig    `yaml:"seal"`
	Merge   MergeConfig   `yaml:"merge"`
	Logging LoggingConfig `yaml:"logging"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Store: StoreConfig{
			BaseURL:        DefaultStoreURL,
			TimeoutSeconds: DefaultStoreTimeout,
		},
		Cache: CacheConfig{
			TTL: DefaultCacheTTL,
		},
		Merge: MergeConfig{
			NameDistance: DefaultNameDistance,
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
	}
}

// ErrNoSealKey indicates neither an inline key nor a key file is
// configured.
var ErrNoSealKey = errors.New("no seal key configured")

// ResolveKey returns the base64-encoded sealing key, reading the key
// file when no inline key is set.
func (c *SealConfig) ResolveKey() (string, error) {
	if c.Key != "" {
		return strings.TrimSpace(c.Key), nil
	}
	if c.KeyFile == "" {
		return "", ErrNoSealKey
	}
	data, err := os.ReadFile(c.KeyFile)
	if err != nil {
		return "", fmt.Errorf("reading seal key file %s: %w", c.KeyFile, err)
	}
	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("seal key file %s is empty", c.KeyFile)
	}
	return key, nil
}
