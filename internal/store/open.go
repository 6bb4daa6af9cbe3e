package store

import (
	"fmt"
	"os"

	"github.com/amterp/wallet/internal/config"
	walleterr "github.com/amterp/wallet/internal/errors"
	"github.com/amterp/wallet/internal/model"
)

// Open returns the KVStore selected by backend. The returned close func is
// never nil.
func Open(backend string, paths *config.Paths) (KVStore, func() error, error) {
	noop := func() error { return nil }

	switch backend {
	case model.BackendFile, "":
		return NewFileKVStore(paths), noop, nil
	case model.BackendSQLite:
		if err := os.MkdirAll(paths.DataDir(), 0755); err != nil {
			return nil, noop, fmt.Errorf("failed to create data directory: %w", err)
		}
		s, err := OpenSQLiteKVStore(paths.SQLitePath())
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case model.BackendMemory:
		return NewMemoryKVStore(), noop, nil
	default:
		return nil, noop, walleterr.InvalidField("storage.backend",
			fmt.Sprintf("unknown backend %q (expected %s, %s or %s)",
				backend, model.BackendFile, model.BackendSQLite, model.BackendMemory))
	}
}
