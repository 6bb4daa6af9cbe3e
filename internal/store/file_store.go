package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/amterp/wallet/internal/config"
	walleterr "github.com/amterp/wallet/internal/errors"
)

// FileKVStore implements KVStore with one file per key under the data
// directory's kv/ folder.
type FileKVStore struct {
	paths *config.Paths
}

// NewFileKVStore creates a file-backed key-value store.
func NewFileKVStore(paths *config.Paths) *FileKVStore {
	return &FileKVStore{paths: paths}
}

// Dir returns the directory holding the key files.
func (s *FileKVStore) Dir() string {
	return s.paths.KVDir()
}

// Get reads the value stored under key.
func (s *FileKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(s.paths.KeyPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read key file: %w", err)
	}
	return string(data), true, nil
}

// Set writes value under key. The write goes to a temp file in the same
// directory and is renamed into place, so readers never see a partial file.
func (s *FileKVStore) Set(ctx context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := s.paths.KVDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create kv directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write key file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write key file: %w", err)
	}
	if err := os.Rename(tmpName, s.paths.KeyPath(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace key file: %w", err)
	}
	return nil
}

func validateKey(key string) error {
	if key == "" {
		return walleterr.InvalidField("key", "must not be empty")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." || strings.HasPrefix(key, ".") {
		return walleterr.InvalidField("key", fmt.Sprintf("%q is not a valid key name", key))
	}
	return nil
}

// KeyFromPath maps a file under the kv directory back to its key.
// Returns false for temp files and anything that isn't a key file.
func KeyFromPath(path string) (string, bool) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
		return "", false
	}
	return strings.TrimSuffix(name, ".json"), true
}
