package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amterp/wallet/internal/config"
	"github.com/amterp/wallet/internal/store"
	"github.com/amterp/wallet/internal/version"
)

func TestInitConfig_WritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet", config.ConfigFileName)
	gs := store.NewGlobalStoreAt(path)

	if err := initConfig(gs, false); err != nil {
		t.Fatalf("initConfig failed: %v", err)
	}

	cfg, err := gs.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.WalletSchema != version.CurrentGlobalSchema() {
		t.Errorf("WalletSchema = %q, want %q", cfg.WalletSchema, version.CurrentGlobalSchema())
	}
	if cfg.Gateway.VaultURL != config.DefaultVaultURL {
		t.Errorf("VaultURL = %q, want %q", cfg.Gateway.VaultURL, config.DefaultVaultURL)
	}
	if cfg.Gateway.PublicKey != "" || cfg.Gateway.SecretKey != "" {
		t.Error("init must not write gateway keys")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config perm = %o, want 600", perm)
	}
}

func TestInitConfig_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	if err := os.WriteFile(path, []byte("# mine\n"), 0600); err != nil {
		t.Fatal(err)
	}
	gs := store.NewGlobalStoreAt(path)

	err := initConfig(gs, false)
	if err == nil || !strings.Contains(err.Error(), "--force") {
		t.Fatalf("Expected error mentioning --force, got %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "# mine\n" {
		t.Error("Existing config was modified")
	}

	if err := initConfig(gs, true); err != nil {
		t.Fatalf("initConfig with force failed: %v", err)
	}
	if _, err := gs.Load(); err != nil {
		t.Errorf("Forced config should load: %v", err)
	}
}
