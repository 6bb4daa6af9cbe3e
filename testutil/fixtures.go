package testutil

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/amterp/wallet/internal/config"
	"github.com/amterp/wallet/internal/model"
	"github.com/amterp/wallet/internal/store"
)

// ErrInjected is returned by FlakyKV when a failure is switched on.
var ErrInjected = errors.New("injected storage failure")

// TestCard returns a tokenized card with sensible test defaults.
func TestCard(id, holder string) model.Card {
	return model.Card{
		ID:          id,
		HolderName:  holder,
		Number:      "4242424242424242",
		ExpiryMonth: "12",
		ExpiryYear:  "30",
		CVC:         "123",
		CardColor:   model.CardColors[0],
	}
}

// NewTestPaths creates a Paths rooted in a fresh temp directory.
func NewTestPaths(t *testing.T) *config.Paths {
	t.Helper()
	return config.NewPaths(t.TempDir())
}

// FlakyKV wraps an in-memory store and can be told to fail reads or writes.
// It also records every value passed to Set.
type FlakyKV struct {
	inner *store.MemoryKVStore

	mu         sync.Mutex
	failReads  bool
	failWrites bool
	writes     []string
}

// NewFlakyKV returns a FlakyKV that behaves normally until told otherwise.
func NewFlakyKV() *FlakyKV {
	return &FlakyKV{inner: store.NewMemoryKVStore()}
}

// FailReads toggles read failures.
func (f *FlakyKV) FailReads(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failReads = fail
}

// FailWrites toggles write failures.
func (f *FlakyKV) FailWrites(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrites = fail
}

// Writes returns every value successfully written, in order.
func (f *FlakyKV) Writes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.writes))
	copy(out, f.writes)
	return out
}

// Seed writes value directly, bypassing failure injection and the write log.
func (f *FlakyKV) Seed(key, value string) {
	_ = f.inner.Set(context.Background(), key, value)
}

func (f *FlakyKV) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	fail := f.failReads
	f.mu.Unlock()
	if fail {
		return "", false, ErrInjected
	}
	return f.inner.Get(ctx, key)
}

func (f *FlakyKV) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return ErrInjected
	}
	if err := f.inner.Set(ctx, key, value); err != nil {
		return err
	}
	f.writes = append(f.writes, value)
	return nil
}
