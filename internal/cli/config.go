package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/verso/internal/store"
)

// DefaultConfigPath is consulted when --config is not given.
const DefaultConfigPath = ".verso.yml"

// StoreConfig selects and locates the storage backend.
type StoreConfig struct {
	Backend string `yaml:"backend"` // "file" | "sqlite" | "memory"
	Path    string `yaml:"path"`
}

// Config is the CLI configuration file.
type Config struct {
	Store           StoreConfig `yaml:"store"`
	Author          string      `yaml:"author"`
	DefaultStrategy string      `yaml:"default_strategy"`
}

// DefaultConfig returns the configuration used when no file exists:
// a filesystem store under .verso.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{Backend: "file", Path: ".verso"},
	}
}

// LoadConfig reads a YAML config file. A missing file at the default path
// yields defaults; a missing file at an explicit path is an error.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// OpenStore builds the configured storage backend. The returned closer is
// a no-op for backends without resources to release.
func OpenStore(cfg StoreConfig) (store.Store, func() error, error) {
	switch cfg.Backend {
	case "", "file":
		st, err := store.NewFile(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, func() error { return nil }, nil
	case "sqlite":
		st, err := store.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	case "memory":
		return store.NewMemory(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
