package model

// Storage backends understood by the wallet.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// GlobalConfig represents the user's wallet configuration.
// Stored at ~/.config/wallet/config.toml
// Schema changes require a version bump (internal/version/version.go).
type GlobalConfig struct {
	WalletSchema string        `toml:"wallet_schema"`
	Storage      StorageConfig `toml:"storage"`
	Gateway      GatewayConfig `toml:"gateway"`
	Log          LogConfig     `toml:"log"`
}

// StorageConfig selects where the card list is persisted.
type StorageConfig struct {
	Backend string `toml:"backend,omitempty"`  // file, sqlite or memory
	DataDir string `toml:"data_dir,omitempty"` // Overrides the default data directory
}

// GatewayConfig holds the tokenization/charge endpoints and credentials.
// Keys are never compiled in; leave them empty here and use the
// WALLET_PUBLIC_KEY / WALLET_SECRET_KEY environment variables if the file
// is shared.
type GatewayConfig struct {
	VaultURL       string `toml:"vault_url,omitempty"`
	APIURL         string `toml:"api_url,omitempty"`
	PublicKey      string `toml:"public_key,omitempty"`
	SecretKey      string `toml:"secret_key,omitempty"`
	Currency       string `toml:"currency,omitempty"`
	TimeoutSeconds int    `toml:"timeout_seconds,omitempty"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `toml:"level,omitempty"`
	File  bool   `toml:"file,omitempty"` // Also write a rotating log file under the data dir
}

// HasCredentials reports whether both gateway keys are set.
func (g GatewayConfig) HasCredentials() bool {
	return g.PublicKey != "" && g.SecretKey != ""
}
