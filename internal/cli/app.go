package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/amterp/wallet/internal/config"
	"github.com/amterp/wallet/internal/gateway"
	"github.com/amterp/wallet/internal/logger"
	"github.com/amterp/wallet/internal/model"
	"github.com/amterp/wallet/internal/prompt"
	"github.com/amterp/wallet/internal/service"
	"github.com/amterp/wallet/internal/store"
	"github.com/amterp/wallet/internal/wallet"
)

// Env holds what every command needs before the card list is opened:
// resolved config, paths, logger and the key-value adapter.
type Env struct {
	GlobalStore store.GlobalStore
	Config      model.GlobalConfig
	Paths       *config.Paths
	Log         zerolog.Logger
	KV          store.KVStore
	closeKV     func() error
}

// App holds all the dependencies for the CLI.
type App struct {
	*Env
	Store       *wallet.Store
	Gateway     *gateway.Client
	CardService *service.CardService
	Prompter    prompt.Prompter
}

// NewEnv loads the global config, applies environment overrides and opens
// the configured storage backend.
func NewEnv() (*Env, error) {
	globalStore := store.NewGlobalStore()

	// Load global config with warnings (don't silently ignore errors)
	fileCfg, err := globalStore.Load()
	if err != nil {
		PrintWarning("failed to load global config: %v", err)
		fileCfg = nil
	}
	cfg := config.Resolve(fileCfg)
	paths := config.NewPaths(cfg.Storage.DataDir)

	opts := logger.Options{Level: cfg.Log.Level}
	if cfg.Log.File {
		opts.FileDir = paths.LogDir()
	}
	log := logger.New(opts)

	kv, closeKV, err := store.Open(cfg.Storage.Backend, paths)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("backend", cfg.Storage.Backend).Str("data_dir", paths.DataDir()).Msg("storage opened")

	return &Env{
		GlobalStore: globalStore,
		Config:      cfg,
		Paths:       paths,
		Log:         log,
		KV:          kv,
		closeKV:     closeKV,
	}, nil
}

// Close releases the storage backend.
func (e *Env) Close() {
	if err := e.closeKV(); err != nil {
		e.Log.Warn().Err(err).Msg("failed to close storage")
	}
}

// NewApp creates a new App with all dependencies wired up.
// If interactive is false, uses NoopPrompter that fails on prompts.
func NewApp(interactive bool) (*App, error) {
	env, err := NewEnv()
	if err != nil {
		return nil, err
	}

	s, err := wallet.Open(context.Background(), env.KV, env.Log)
	if err != nil {
		env.Close()
		return nil, err
	}

	gw, err := gateway.New(env.Config.Gateway, gateway.WithLogger(env.Log))
	if err != nil {
		env.Close()
		return nil, err
	}

	var prompter prompt.Prompter
	if interactive {
		prompter = prompt.NewHuhPrompter()
	} else {
		prompter = &prompt.NoopPrompter{}
	}

	return &App{
		Env:         env,
		Store:       s,
		Gateway:     gw,
		CardService: service.NewCardService(s, gw, env.Log),
		Prompter:    prompter,
	}, nil
}

// Fatal prints an error and exits.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
