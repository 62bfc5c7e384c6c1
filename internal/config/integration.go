package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// GlobalConfig holds the global configuration instance.
var GlobalConfig *Config        //nolint:gochecknoglobals // Singleton pattern for configuration
var globalConfigMu sync.RWMutex //nolint:gochecknoglobals // Protects globalConfigInit flag
var globalConfigInit bool       //nolint:gochecknoglobals // Tracks if global config has been initialized

// InitGlobalConfig initializes the global configuration.
func InitGlobalConfig() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()

	if globalConfigInit {
		return
	}

	GlobalConfig = New()
	globalConfigInit = true
}

// LoadGlobalConfig replaces the global configuration with defaults
// merged with the config file at path. An empty path falls back to
// the default config file when one exists, and to plain defaults when
// it does not.
func LoadGlobalConfig(path string) error {
	cfg := New()

	if path == "" {
		defaultPath, err := DefaultConfigFile()
		if err == nil {
			if _, statErr := os.Stat(defaultPath); statErr == nil {
				path = defaultPath
			}
		}
	}

	if path != "" {
		if err := ShallowMergeYAML(cfg, path); err != nil {
			return err
		}
	}

	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	GlobalConfig = cfg
	globalConfigInit = true
	return nil
}

// ResetGlobalConfigForTest resets the global config for testing purposes.
func ResetGlobalConfigForTest() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()

	GlobalConfig = nil
	globalConfigInit = false
}

// GetGlobalConfig returns the global configuration, initializing it if needed.
func GetGlobalConfig() *Config {
	InitGlobalConfig()
	return GlobalConfig
}

// GetLogLevel returns the configured log level.
func GetLogLevel() string {
	cfg := GetGlobalConfig()
	return cfg.Logging.Level
}

// GetLogFile returns the configured log file path.
func GetLogFile() string {
	cfg := GetGlobalConfig()
	return cfg.Logging.File
}

// GetStoreBaseURL returns the configured store endpoint.
func GetStoreBaseURL() string {
	cfg := GetGlobalConfig()
	return cfg.Store.BaseURL
}

// GetNameDistance returns the duplicate-detection name threshold,
// falling back to the default for unusable configured values.
func GetNameDistance() float64 {
	cfg := GetGlobalConfig()
	if cfg.Merge.NameDistance <= 0 || cfg.Merge.NameDistance > 1 {
		return DefaultNameDistance
	}
	return cfg.Merge.NameDistance
}

// GetConfigDir returns the path to the rolo configuration directory.
func GetConfigDir() (string, error) {
	if roloHome := os.Getenv("ROLO_HOME"); roloHome != "" {
		return roloHome, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".rolo"), nil
}

// DefaultConfigFile returns the path of the config file inside the
// configuration directory.
func DefaultConfigFile() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, defaultConfigFileName), nil
}

// GetCacheDir returns the cache directory: the configured one, or the
// cache subdirectory under the user's configuration directory.
func GetCacheDir() (string, error) {
	cfg := GetGlobalConfig()
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}

	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "cache"), nil
}

// EnsureConfigDir ensures the rolo configuration directory exists.
// It returns an error if the configuration directory path cannot be
// determined or if creating the directory (and any necessary parents)
// fails.
func EnsureConfigDir() error {
	dir, err := GetConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// EnsureLogDir ensures the directory for the configured log file
// exists. It reads the global configuration and, if a log file is
// configured, creates its parent directory with permission 0700. If
// no log file is configured, it does nothing.
func EnsureLogDir() error {
	cfg := GetGlobalConfig()
	if cfg.Logging.File == "" {
		return nil
	}
	logDir := filepath.Dir(cfg.Logging.File)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory %q: %w", logDir, err)
	}
	return nil
}

// EnsureSubDirs creates the standard directories under the user's
// config directory: the base directory, the cache directory, and the
// configured log directory.
func EnsureSubDirs() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	cacheDir, err := GetCacheDir()
	if err != nil {
		return fmt.Errorf("failed to get cache directory: %w", err)
	}
	if mkdirErr := os.MkdirAll(cacheDir, 0700); mkdirErr != nil {
		return fmt.Errorf("failed to create cache directory %q: %w", cacheDir, mkdirErr)
	}

	return EnsureLogDir()
}
