package store

import (
	"context"

	"github.com/amterp/wallet/internal/model"
)

// KVStore is a string key-value adapter. The wallet keeps its whole card list
// under a single key, so implementations only need whole-value reads and writes.
type KVStore interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

// GlobalStore handles global config persistence.
type GlobalStore interface {
	Path() string
	Load() (*model.GlobalConfig, error)
	Save(config *model.GlobalConfig) error
	Exists() bool
}
