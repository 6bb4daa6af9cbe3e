package api

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/amterp/wallet/internal/store"
	"github.com/amterp/wallet/internal/wallet"
)

// DebounceDelay coalesces bursts of events on the same key.
const DebounceDelay = 100 * time.Millisecond

// KeyChangeType indicates what type of change occurred.
type KeyChangeType string

const (
	KeyChangeWritten KeyChangeType = "written"
	KeyChangeDeleted KeyChangeType = "deleted"
	KeyChangeUnknown KeyChangeType = "unknown"
)

// KeyChange is a change to one key file made by any process.
type KeyChange struct {
	Type KeyChangeType `json:"type"`
	Key  string        `json:"key"`
}

// KeyWatcherSubscriber receives key change notifications.
type KeyWatcherSubscriber interface {
	OnKeyChange(change KeyChange)
}

// KeyWatcher watches the key-value directory of the file backend and
// notifies subscribers when a key file changes.
type KeyWatcher struct {
	watcher     *fsnotify.Watcher
	dir         string
	log         zerolog.Logger
	mu          sync.RWMutex
	subscribers []KeyWatcherSubscriber
	debounce    map[string]*time.Timer
	debounceMu  sync.Mutex
	stopCh      chan struct{}
	stopped     bool // Once stopped, cannot restart
	running     bool
}

// NewKeyWatcher creates a watcher for dir. The directory is created if needed
// so a fresh wallet can be watched before its first write.
func NewKeyWatcher(dir string, log zerolog.Logger) (*KeyWatcher, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &KeyWatcher{
		watcher:  watcher,
		dir:      dir,
		log:      log.With().Str("component", "watcher").Logger(),
		debounce: make(map[string]*time.Timer),
		stopCh:   make(chan struct{}),
	}, nil
}

// Subscribe adds a subscriber to receive key change notifications.
func (kw *KeyWatcher) Subscribe(sub KeyWatcherSubscriber) {
	kw.mu.Lock()
	defer kw.mu.Unlock()
	kw.subscribers = append(kw.subscribers, sub)
}

// Start begins watching the directory.
func (kw *KeyWatcher) Start() error {
	kw.mu.Lock()
	if kw.running {
		kw.mu.Unlock()
		return nil
	}
	if kw.stopped {
		kw.mu.Unlock()
		return fmt.Errorf("key watcher cannot be restarted after stop")
	}
	kw.running = true
	kw.mu.Unlock()

	if err := kw.watcher.Add(kw.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", kw.dir, err)
	}

	go kw.run()
	return nil
}

// Stop stops watching for changes.
func (kw *KeyWatcher) Stop() error {
	kw.mu.Lock()
	if kw.stopped {
		kw.mu.Unlock()
		return nil
	}
	wasRunning := kw.running
	kw.running = false
	kw.stopped = true
	kw.mu.Unlock()

	// Pending timers must not fire after stop
	kw.debounceMu.Lock()
	for key, timer := range kw.debounce {
		timer.Stop()
		delete(kw.debounce, key)
	}
	kw.debounceMu.Unlock()

	if wasRunning {
		close(kw.stopCh)
	}
	return kw.watcher.Close()
}

func (kw *KeyWatcher) run() {
	for {
		select {
		case event, ok := <-kw.watcher.Events:
			if !ok {
				return
			}
			kw.handleEvent(event)

		case err, ok := <-kw.watcher.Errors:
			if !ok {
				return
			}
			kw.log.Warn().Err(err).Msg("watch error")

		case <-kw.stopCh:
			return
		}
	}
}

func (kw *KeyWatcher) handleEvent(event fsnotify.Event) {
	change := kw.classifyChange(event)
	if change.Type == KeyChangeUnknown {
		return
	}

	kw.debounceMu.Lock()
	if timer, exists := kw.debounce[change.Key]; exists {
		timer.Stop()
	}
	kw.debounce[change.Key] = time.AfterFunc(DebounceDelay, func() {
		kw.debounceMu.Lock()
		delete(kw.debounce, change.Key)
		kw.debounceMu.Unlock()
		kw.emitChange(change)
	})
	kw.debounceMu.Unlock()
}

func (kw *KeyWatcher) emitChange(change KeyChange) {
	// Debounce timer may fire after Stop
	kw.mu.RLock()
	if kw.stopped {
		kw.mu.RUnlock()
		return
	}
	subs := make([]KeyWatcherSubscriber, len(kw.subscribers))
	copy(subs, kw.subscribers)
	kw.mu.RUnlock()

	kw.log.Debug().Str("key", change.Key).Str("type", string(change.Type)).Msg("key changed")
	for _, sub := range subs {
		sub.OnKeyChange(change)
	}
}

func (kw *KeyWatcher) classifyChange(event fsnotify.Event) KeyChange {
	if filepath.Dir(event.Name) != filepath.Clean(kw.dir) {
		return KeyChange{Type: KeyChangeUnknown}
	}
	key, ok := store.KeyFromPath(event.Name)
	if !ok {
		return KeyChange{Type: KeyChangeUnknown}
	}

	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		return KeyChange{Type: KeyChangeWritten, Key: key}
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		return KeyChange{Type: KeyChangeDeleted, Key: key}
	default:
		return KeyChange{Type: KeyChangeUnknown}
	}
}

// Reloader reloads the card store when its key changes on disk.
type Reloader struct {
	store   *wallet.Store
	log     zerolog.Logger
	timeout time.Duration
}

// NewReloader creates a subscriber that calls store.Load on cards changes.
func NewReloader(s *wallet.Store, log zerolog.Logger) *Reloader {
	return &Reloader{store: s, log: log, timeout: 5 * time.Second}
}

// OnKeyChange implements KeyWatcherSubscriber.
func (r *Reloader) OnKeyChange(change KeyChange) {
	if change.Key != wallet.CardsKey {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.store.Load(ctx); err != nil {
		r.log.Warn().Err(err).Msg("failed to reload cards")
	}
}
