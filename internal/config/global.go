package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/skp/config.yml.
type GlobalConfig struct {
	DataRoot  string `yaml:"data_root,omitempty"`
	OllamaURL string `yaml:"ollama_url,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "skp"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/skp/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.DataRoot != "" {
		cfg.DataRoot = ExpandPath(cfg.DataRoot)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// ErrDataRootNotExist is returned when the configured data_root has no .skillpath directory.
var ErrDataRootNotExist = errors.New("data_root has no .skillpath directory")

// ResolveRoot finds the data root to use. An explicit dir wins; otherwise
// the search walks up from the working directory and finally falls back to
// data_root from the global config.
func ResolveRoot(dir string) (string, error) {
	if dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", fmt.Errorf("resolving path: %w", err)
		}
		if !IsRepository(abs) {
			return "", fmt.Errorf("%w in %s", ErrNoRepository, abs)
		}
		return abs, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	if root, err := FindRepository(cwd); err == nil {
		return root, nil
	}

	global, err := LoadGlobalConfig()
	if err != nil {
		return "", err
	}
	if global.DataRoot == "" {
		return "", ErrNoRepository
	}
	if !IsRepository(global.DataRoot) {
		return "", fmt.Errorf("%w: %s", ErrDataRootNotExist, global.DataRoot)
	}
	return global.DataRoot, nil
}

// HelpfulConfigMessage returns a helpful message when no data directory is found.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No .skillpath directory found.

Run 'skp init' in your project, or create %s to set a default:
  mkdir -p %s
  echo 'data_root: /path/to/your/project' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
