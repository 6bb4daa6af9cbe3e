package cli

import (
	"fmt"
	"os"

	"github.com/amterp/ra"

	"github.com/amterp/wallet/internal/config"
	"github.com/amterp/wallet/internal/model"
	"github.com/amterp/wallet/internal/store"
)

func registerInit(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("init")
	cmd.SetDescription("Write a default config file and create the data directory")

	ctx.InitForce, _ = ra.NewBool("force").
		SetShort("f").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Overwrite an existing config file").
		Register(cmd)

	ctx.InitUsed, _ = parent.RegisterCmd(cmd)
}

// DefaultGlobalConfig is the config written by init. Keys are left empty.
func DefaultGlobalConfig() *model.GlobalConfig {
	return &model.GlobalConfig{
		Storage: model.StorageConfig{Backend: config.DefaultBackend},
		Gateway: model.GatewayConfig{
			VaultURL:       config.DefaultVaultURL,
			APIURL:         config.DefaultAPIURL,
			Currency:       config.DefaultCurrency,
			TimeoutSeconds: config.DefaultTimeoutSeconds,
		},
		Log: model.LogConfig{Level: config.DefaultLogLevel},
	}
}

func runInit(force bool) {
	globalStore := store.NewGlobalStore()
	if err := initConfig(globalStore, force); err != nil {
		Fatal(err)
	}
	PrintSuccess("Wrote %s", globalStore.Path())

	cfg := config.Resolve(DefaultGlobalConfig())
	paths := config.NewPaths(cfg.Storage.DataDir)
	if err := os.MkdirAll(paths.KVDir(), 0700); err != nil {
		Fatal(fmt.Errorf("failed to create data directory: %w", err))
	}
	PrintSuccess("Data directory %s", paths.DataDir())

	if !cfg.Gateway.HasCredentials() {
		PrintInfo("Set %s and %s (or edit the config) before adding cards", config.EnvPublicKey, config.EnvSecretKey)
	}
}

// initConfig writes the default config unless one exists and force is false.
func initConfig(gs store.GlobalStore, force bool) error {
	if gs.Exists() && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", gs.Path())
	}
	return gs.Save(DefaultGlobalConfig())
}
