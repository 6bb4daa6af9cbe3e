package store

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/amterp/wallet/internal/config"
	"github.com/amterp/wallet/internal/model"
	"github.com/amterp/wallet/internal/version"
)

// FileGlobalStore implements GlobalStore using a TOML file.
type FileGlobalStore struct {
	path string
}

// NewGlobalStore creates a global store at the default config location.
func NewGlobalStore() *FileGlobalStore {
	return &FileGlobalStore{path: config.GlobalConfigPath()}
}

// NewGlobalStoreAt creates a global store for an explicit file path.
func NewGlobalStoreAt(path string) *FileGlobalStore {
	return &FileGlobalStore{path: path}
}

// Path returns the config file location.
func (s *FileGlobalStore) Path() string {
	return s.path
}

// Load reads the global config from disk.
// Returns an empty config if the file doesn't exist.
func (s *FileGlobalStore) Load() (*model.GlobalConfig, error) {
	if s.path == "" {
		return &model.GlobalConfig{}, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.GlobalConfig{}, nil
		}
		return nil, err
	}

	var cfg model.GlobalConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Strict version validation (only if file exists)
	if cfg.WalletSchema == "" {
		return nil, version.MissingGlobalSchema(s.path)
	}
	if cfg.WalletSchema != version.CurrentGlobalSchema() {
		return nil, version.InvalidGlobalSchema(s.path, cfg.WalletSchema)
	}

	return &cfg, nil
}

// Save writes the global config to disk, stamping the current schema.
// The file may hold a secret key, so it is written owner-only.
func (s *FileGlobalStore) Save(cfg *model.GlobalConfig) error {
	cfg.WalletSchema = version.CurrentGlobalSchema()

	if s.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Exists reports whether the config file is present.
func (s *FileGlobalStore) Exists() bool {
	if s.path == "" {
		return false
	}
	_, err := os.Stat(s.path)
	return err == nil
}
