package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/amterp/wallet/internal/model"
)

// Environment variables that override config file values.
const (
	EnvConfigPath     = "WALLET_CONFIG"
	EnvPublicKey      = "WALLET_PUBLIC_KEY"
	EnvSecretKey      = "WALLET_SECRET_KEY"
	EnvVaultURL       = "WALLET_VAULT_URL"
	EnvAPIURL         = "WALLET_API_URL"
	EnvStorageBackend = "WALLET_STORAGE_BACKEND"
	EnvDataDir        = "WALLET_DATA_DIR"
	EnvLogLevel       = "WALLET_LOG_LEVEL"
	EnvTimeout        = "WALLET_GATEWAY_TIMEOUT"
)

// Defaults applied when neither the file nor the environment sets a value.
const (
	DefaultVaultURL       = "https://vault.omise.co"
	DefaultAPIURL         = "https://api.omise.co"
	DefaultCurrency       = "thb"
	DefaultTimeoutSeconds = 30
	DefaultBackend        = model.BackendFile
	DefaultLogLevel       = "warn"
)

// Resolve returns the effective configuration: file values, overridden by
// the environment, with defaults filling the gaps. cfg may be nil.
func Resolve(cfg *model.GlobalConfig) model.GlobalConfig {
	var out model.GlobalConfig
	if cfg != nil {
		out = *cfg
	}

	overlay(&out.Gateway.PublicKey, EnvPublicKey)
	overlay(&out.Gateway.SecretKey, EnvSecretKey)
	overlay(&out.Gateway.VaultURL, EnvVaultURL)
	overlay(&out.Gateway.APIURL, EnvAPIURL)
	overlay(&out.Storage.Backend, EnvStorageBackend)
	overlay(&out.Storage.DataDir, EnvDataDir)
	overlay(&out.Log.Level, EnvLogLevel)
	if v, ok := os.LookupEnv(EnvTimeout); ok {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			out.Gateway.TimeoutSeconds = secs
		}
	}

	setDefault(&out.Gateway.VaultURL, DefaultVaultURL)
	setDefault(&out.Gateway.APIURL, DefaultAPIURL)
	setDefault(&out.Gateway.Currency, DefaultCurrency)
	setDefault(&out.Storage.Backend, DefaultBackend)
	setDefault(&out.Log.Level, DefaultLogLevel)
	if out.Gateway.TimeoutSeconds <= 0 {
		out.Gateway.TimeoutSeconds = DefaultTimeoutSeconds
	}

	out.Gateway.VaultURL = strings.TrimRight(out.Gateway.VaultURL, "/")
	out.Gateway.APIURL = strings.TrimRight(out.Gateway.APIURL, "/")
	out.Storage.Backend = strings.ToLower(out.Storage.Backend)
	return out
}

func overlay(dst *string, env string) {
	if v, ok := os.LookupEnv(env); ok && v != "" {
		*dst = v
	}
}

func setDefault(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}
