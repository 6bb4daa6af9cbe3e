package config

import (
	"os"
	"path/filepath"
)

const (
	GlobalConfigDir = ".config/wallet"
	DefaultDataDir  = ".local/share/wallet"
	ConfigFileName  = "config.toml"
	KVDir           = "kv"
	SQLiteFileName  = "wallet.db"
	LogDir          = "log"
)

// Paths provides path resolution for wallet data files.
type Paths struct {
	dataDir string
}

// NewPaths creates a Paths rooted at dataDir. An empty dataDir falls back to
// ~/.local/share/wallet (or $XDG_DATA_HOME/wallet).
func NewPaths(dataDir string) *Paths {
	if dataDir == "" {
		dataDir = DefaultDataDirPath()
	}
	return &Paths{dataDir: dataDir}
}

// DataDir returns the root directory for wallet data.
func (p *Paths) DataDir() string {
	return p.dataDir
}

// KVDir returns the directory used by the file key-value backend.
func (p *Paths) KVDir() string {
	return filepath.Join(p.dataDir, KVDir)
}

// KeyPath returns the file path holding a single key for the file backend.
func (p *Paths) KeyPath(key string) string {
	return filepath.Join(p.KVDir(), key+".json")
}

// SQLitePath returns the database path for the sqlite backend.
func (p *Paths) SQLitePath() string {
	return filepath.Join(p.dataDir, SQLiteFileName)
}

// LogDir returns the directory for rotating log files.
func (p *Paths) LogDir() string {
	return filepath.Join(p.dataDir, LogDir)
}

// DefaultDataDirPath returns the default data directory.
func DefaultDataDirPath() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "wallet")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wallet"
	}
	return filepath.Join(home, DefaultDataDir)
}

// GlobalConfigPath returns the path to the global config file.
// WALLET_CONFIG overrides the default location.
func GlobalConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, GlobalConfigDir, ConfigFileName)
}
