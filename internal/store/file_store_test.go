package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/amterp/wallet/internal/config"
	walleterr "github.com/amterp/wallet/internal/errors"
)

func setupTestFileStore(t *testing.T) (*FileKVStore, string) {
	t.Helper()
	dir := t.TempDir()
	return NewFileKVStore(config.NewPaths(dir)), dir
}

func TestFileKVStore_MissingKey(t *testing.T) {
	s, _ := setupTestFileStore(t)

	v, ok, err := s.Get(context.Background(), "cards")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok || v != "" {
		t.Errorf("Get on missing key = (%q, %v), want (\"\", false)", v, ok)
	}
}

func TestFileKVStore_SetAndGet(t *testing.T) {
	s, dir := setupTestFileStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "cards", `[{"id":"tokn_1"}]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	v, ok, err := s.Get(ctx, "cards")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || v != `[{"id":"tokn_1"}]` {
		t.Errorf("Get = (%q, %v)", v, ok)
	}

	// Value lands at kv/<key>.json
	if _, err := os.Stat(filepath.Join(dir, "kv", "cards.json")); err != nil {
		t.Errorf("expected key file on disk: %v", err)
	}
}

func TestFileKVStore_Overwrite(t *testing.T) {
	s, dir := setupTestFileStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "cards", "[1]"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "cards", "[]"); err != nil {
		t.Fatal(err)
	}

	v, _, _ := s.Get(ctx, "cards")
	if v != "[]" {
		t.Errorf("Get = %q, want []", v)
	}

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Join(dir, "kv"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("kv dir has %v, want only cards.json", names)
	}
}

func TestFileKVStore_RejectsBadKeys(t *testing.T) {
	s, _ := setupTestFileStore(t)
	ctx := context.Background()

	for _, key := range []string{"", "../escape", "a/b", `a\b`, ".hidden", ".."} {
		if err := s.Set(ctx, key, "x"); !walleterr.IsValidationError(err) {
			t.Errorf("Set(%q) error = %v, want validation error", key, err)
		}
		if _, _, err := s.Get(ctx, key); !walleterr.IsValidationError(err) {
			t.Errorf("Get(%q) error = %v, want validation error", key, err)
		}
	}
}

func TestFileKVStore_CancelledContext(t *testing.T) {
	s, _ := setupTestFileStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Set(ctx, "cards", "[]"); err == nil {
		t.Error("Set with cancelled context should fail")
	}
}

func TestKeyFromPath(t *testing.T) {
	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{"/data/kv/cards.json", "cards", true},
		{"/data/kv/.cards.123.tmp", "", false},
		{"/data/kv/notes.txt", "", false},
	}
	for _, tt := range tests {
		got, ok := KeyFromPath(tt.path)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("KeyFromPath(%q) = (%q, %v), want (%q, %v)", tt.path, got, ok, tt.want, tt.wantOK)
		}
	}
}
