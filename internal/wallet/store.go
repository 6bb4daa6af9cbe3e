// Package wallet holds the in-memory card list and keeps it in step with the
// persisted copy under a single key.
package wallet

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	walleterr "github.com/amterp/wallet/internal/errors"
	"github.com/amterp/wallet/internal/model"
	"github.com/amterp/wallet/internal/store"
)

// CardsKey is the storage key holding the JSON array of cards.
const CardsKey = "cards"

// Snapshot is an immutable view of the card list. Revision increases by one
// with every committed change.
type Snapshot struct {
	Cards    []model.Card
	Revision uint64
}

// Store owns the ordered card list. All mutations go through a single writer
// lock and are persisted in full before they become visible.
type Store struct {
	kv  store.KVStore
	log zerolog.Logger

	writeMu  sync.Mutex // serializes Load/Add/Remove
	notifyMu sync.Mutex // keeps subscriber delivery in revision order

	mu          sync.RWMutex
	cards       []model.Card
	revision    uint64
	lastPayload string

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// New creates an empty store backed by kv. Call Load to populate it.
func New(kv store.KVStore, log zerolog.Logger) *Store {
	return &Store{
		kv:    kv,
		log:   log.With().Str("component", "wallet").Logger(),
		cards: []model.Card{},
		subs:  make(map[int]func(Snapshot)),
	}
}

// Open creates a store and performs the initial load.
func Open(ctx context.Context, kv store.KVStore, log zerolog.Logger) (*Store, error) {
	s := New(kv, log)
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the in-memory list with the persisted one.
//
// A missing key leaves the current list alone. A payload that does not decode
// as a card array (including an empty one) is logged and ignored. A payload
// identical to the last committed one is a no-op, so reloading after our own
// write does not notify twice.
func (s *Store) Load(ctx context.Context) error {
	s.writeMu.Lock()

	raw, ok, err := s.kv.Get(ctx, CardsKey)
	if err != nil {
		s.writeMu.Unlock()
		return walleterr.ReadFailed(CardsKey, err)
	}
	if !ok {
		s.writeMu.Unlock()
		s.log.Debug().Msg("no persisted cards, keeping current list")
		return nil
	}

	s.mu.RLock()
	same := s.revision > 0 && raw == s.lastPayload
	s.mu.RUnlock()
	if same {
		s.writeMu.Unlock()
		return nil
	}

	cards, err := decodeCards(raw)
	if err != nil {
		s.writeMu.Unlock()
		s.log.Warn().Err(err).Str("key", CardsKey).Msg("ignoring malformed persisted cards")
		return nil
	}

	snap := s.commit(cards, raw)
	s.log.Debug().Int("count", len(cards)).Uint64("revision", snap.Revision).Msg("loaded cards")
	s.publish(snap)
	return nil
}

// Add appends card to the end of the list and persists the result.
// No uniqueness check is made on the id.
func (s *Store) Add(ctx context.Context, card model.Card) error {
	return s.mutate(ctx, func(cur []model.Card) []model.Card {
		return append(cur, card)
	})
}

// Remove drops every card whose id equals cardID and persists the result.
// Removing an id that isn't present still writes the unchanged list.
func (s *Store) Remove(ctx context.Context, cardID string) error {
	return s.mutate(ctx, func(cur []model.Card) []model.Card {
		kept := cur[:0]
		for _, c := range cur {
			if c.ID != cardID {
				kept = append(kept, c)
			}
		}
		return kept
	})
}

// Rewrite replaces the list with fn applied to a copy of the current one and
// persists the result. Used for repairs that must not race other writes.
func (s *Store) Rewrite(ctx context.Context, fn func([]model.Card) []model.Card) error {
	return s.mutate(ctx, fn)
}

// Cards returns a copy of the current list.
func (s *Store) Cards() []model.Card {
	return s.Snapshot().Cards
}

// Snapshot returns a copy of the current list with its revision.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Cards: model.CloneCards(s.cards), Revision: s.revision}
}

// Find returns the card with the given id.
func (s *Store) Find(cardID string) (model.Card, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.cards {
		if c.ID == cardID {
			return c, true
		}
	}
	return model.Card{}, false
}

// Subscribe registers fn to receive every new snapshot. fn runs on the
// goroutine that made the change, after the change is persisted, and must
// not call Load, Add or Remove itself.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) mutate(ctx context.Context, next func([]model.Card) []model.Card) error {
	s.writeMu.Lock()

	s.mu.RLock()
	cards := next(model.CloneCards(s.cards))
	s.mu.RUnlock()

	payload, err := encodeCards(cards)
	if err != nil {
		s.writeMu.Unlock()
		return walleterr.WriteFailed(CardsKey, err)
	}
	if err := s.kv.Set(ctx, CardsKey, payload); err != nil {
		s.writeMu.Unlock()
		s.log.Error().Err(err).Str("key", CardsKey).Msg("failed to persist cards")
		return walleterr.WriteFailed(CardsKey, err)
	}

	snap := s.commit(cards, payload)
	s.log.Debug().Int("count", len(cards)).Uint64("revision", snap.Revision).Msg("persisted cards")
	s.publish(snap)
	return nil
}

// commit installs cards as the current state. Caller holds writeMu and must
// follow with publish.
func (s *Store) commit(cards []model.Card, payload string) Snapshot {
	s.mu.Lock()
	s.cards = cards
	s.lastPayload = payload
	s.revision++
	snap := Snapshot{Cards: model.CloneCards(cards), Revision: s.revision}
	s.mu.Unlock()
	return snap
}

// publish releases writeMu and delivers snap. notifyMu is taken before
// writeMu is released so deliveries cannot overtake each other.
func (s *Store) publish(snap Snapshot) {
	s.notifyMu.Lock()
	s.writeMu.Unlock()
	defer s.notifyMu.Unlock()

	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(Snapshot{Cards: model.CloneCards(snap.Cards), Revision: snap.Revision})
	}
}

func decodeCards(raw string) ([]model.Card, error) {
	if strings.TrimSpace(raw) == "null" {
		return []model.Card{}, nil
	}
	var cards []model.Card
	if err := json.Unmarshal([]byte(raw), &cards); err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []model.Card{}
	}
	return cards, nil
}

func encodeCards(cards []model.Card) (string, error) {
	if cards == nil {
		cards = []model.Card{}
	}
	data, err := json.Marshal(cards)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
