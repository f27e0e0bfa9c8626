package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config holds the resolved application settings. Resolution order for each
// field: command-line flag, LOCALCHAT_* environment variable, config file
// (~/.config/localchat/config.yaml), built-in default.
type Config struct {
	Endpoint string `yaml:"endpoint"`
	DataDir  string `yaml:"data_dir"`
}

// DatabasePath returns the sqlite file backing the durable state slot.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "state.db")
}

// defaultDataDir picks the per-OS application data directory.
func defaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library/Application Support/localchat"), nil
	default:
		return filepath.Join(home, ".local/share/localchat"), nil
	}
}

// loadConfigFile reads the optional yaml config file. A missing file is not
// an error.
func loadConfigFile() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}
	}
	path := filepath.Join(home, ".config/localchat/config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		LogWarn("Ignoring unreadable config file %s: %v", path, err)
		return Config{}
	}
	return cfg
}

// ResolveConfig combines flags, environment, config file and defaults. The
// data directory is created if it does not exist.
func ResolveConfig(flagEndpoint, flagDataDir string) (Config, error) {
	cfg := loadConfigFile()

	if v := os.Getenv("LOCALCHAT_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("LOCALCHAT_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if flagEndpoint != "" {
		cfg.Endpoint = flagEndpoint
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}

	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.DataDir == "" {
		dir, err := defaultDataDir()
		if err != nil {
			return Config{}, err
		}
		cfg.DataDir = dir
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return Config{}, fmt.Errorf("failed to create data directory: %w", err)
	}
	return cfg, nil
}
