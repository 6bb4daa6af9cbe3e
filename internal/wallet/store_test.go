package wallet

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	walleterr "github.com/amterp/wallet/internal/errors"
	"github.com/amterp/wallet/internal/logger"
	"github.com/amterp/wallet/internal/model"
	"github.com/amterp/wallet/testutil"
)

func newTestStore(t *testing.T) (*Store, *testutil.FlakyKV) {
	t.Helper()
	kv := testutil.NewFlakyKV()
	s, err := Open(context.Background(), kv, logger.Nop())
	require.NoError(t, err)
	return s, kv
}

func ids(cards []model.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

// missingKV accepts writes but always reports the key as absent.
type missingKV struct{}

func (missingKV) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (missingKV) Set(context.Context, string, string) error         { return nil }

func TestStore_StartsEmpty(t *testing.T) {
	s, kv := newTestStore(t)

	assert.Empty(t, s.Cards())
	assert.NotNil(t, s.Cards())
	assert.Empty(t, kv.Writes(), "opening must not write")
	assert.Equal(t, uint64(0), s.Snapshot().Revision)
}

func TestStore_AddPreservesCallOrder(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	want := []string{"tokn_1", "tokn_2", "tokn_3", "tokn_4", "tokn_5"}
	for _, id := range want {
		require.NoError(t, s.Add(ctx, testutil.TestCard(id, "JANE DOE")))
	}

	assert.Equal(t, want, ids(s.Cards()))
	assert.Len(t, kv.Writes(), len(want), "every add persists")
	assert.Equal(t, uint64(len(want)), s.Snapshot().Revision)
}

func TestStore_AddScenario(t *testing.T) {
	s, kv := newTestStore(t)

	card := model.Card{
		ID:          "tok_1",
		HolderName:  "JANE DOE",
		Number:      "4242424242424242",
		ExpiryMonth: "12",
		ExpiryYear:  "25",
		CVC:         "123",
		CardColor:   "#7EE8FA",
	}
	require.NoError(t, s.Add(context.Background(), card))

	require.Len(t, s.Cards(), 1)
	assert.Equal(t, card, s.Cards()[0])

	writes := kv.Writes()
	require.Len(t, writes, 1)
	assert.JSONEq(t,
		`[{"id":"tok_1","holderName":"JANE DOE","number":"4242424242424242","expiryMonth":"12","expiryYear":"25","cvc":"123","cardColor":"#7EE8FA"}]`,
		writes[0])
}

func TestStore_AddAllowsDuplicateIDs(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, testutil.TestCard("dup", "A")))
	require.NoError(t, s.Add(ctx, testutil.TestCard("dup", "B")))
	assert.Len(t, s.Cards(), 2)

	// Remove drops every match
	require.NoError(t, s.Remove(ctx, "dup"))
	assert.Empty(t, s.Cards())
}

func TestStore_RemoveScenario(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, testutil.TestCard("a", "A")))
	require.NoError(t, s.Add(ctx, testutil.TestCard("b", "B")))

	require.NoError(t, s.Remove(ctx, "a"))

	assert.Equal(t, []string{"b"}, ids(s.Cards()))
	writes := kv.Writes()
	assert.Equal(t, mustEncode(t, s.Cards()), writes[len(writes)-1])
}

func TestStore_RemoveNonexistentStillWrites(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, testutil.TestCard("only", "A")))
	before := s.Cards()

	require.NoError(t, s.Remove(ctx, "nonexistent"))

	assert.Equal(t, before, s.Cards())
	writes := kv.Writes()
	require.Len(t, writes, 2, "remove of an absent id still persists")
	assert.Equal(t, writes[0], writes[1])
}

func TestStore_RemoveIsIdempotent(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Add(ctx, testutil.TestCard(id, id)))
	}

	require.NoError(t, s.Remove(ctx, "b"))
	once := s.Cards()
	onceWrite := kv.Writes()[len(kv.Writes())-1]

	require.NoError(t, s.Remove(ctx, "b"))
	assert.Equal(t, once, s.Cards())
	assert.Equal(t, onceWrite, kv.Writes()[len(kv.Writes())-1])
}

func TestStore_EmptyListPersistsAsEmptyArray(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, testutil.TestCard("a", "A")))
	require.NoError(t, s.Remove(ctx, "a"))

	writes := kv.Writes()
	assert.Equal(t, "[]", writes[len(writes)-1])
}

func TestStore_LoadRoundTrip(t *testing.T) {
	kv := testutil.NewFlakyKV()
	want := []model.Card{
		testutil.TestCard("tokn_1", "JANE DOE"),
		testutil.TestCard("tokn_2", "JOHN ROE"),
	}
	kv.Seed(CardsKey, mustEncode(t, want))

	s, err := Open(context.Background(), kv, logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, want, s.Cards())
	assert.Equal(t, uint64(1), s.Snapshot().Revision)
}

func TestStore_LoadReadsForeignPayload(t *testing.T) {
	kv := testutil.NewFlakyKV()
	// Shape written by earlier releases, including whitespace and key order
	kv.Seed(CardsKey, `[
  {"cardColor":"#F4B266","cvc":"999","expiryYear":"27","expiryMonth":"01","number":"5555555555554444","holderName":"ANA","id":"tokn_x"}
]`)

	s, err := Open(context.Background(), kv, logger.Nop())
	require.NoError(t, err)

	require.Len(t, s.Cards(), 1)
	assert.Equal(t, "5555555555554444", s.Cards()[0].Number)
	assert.Equal(t, "#F4B266", s.Cards()[0].CardColor)
}

func TestStore_LoadMissingKeyKeepsState(t *testing.T) {
	s := New(missingKV{}, logger.Nop())
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, testutil.TestCard("a", "A")))
	before := s.Snapshot()

	require.NoError(t, s.Load(ctx))

	after := s.Snapshot()
	assert.Equal(t, before.Cards, after.Cards)
	assert.Equal(t, before.Revision, after.Revision)
}

func TestStore_LoadMalformedKeepsState(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, testutil.TestCard("a", "A")))
	before := s.Snapshot()

	for _, payload := range []string{`{not json`, `{"id":"a"}`, `[1,2,3]`, ``} {
		kv.Seed(CardsKey, payload)
		require.NoError(t, s.Load(ctx), "malformed payload %q", payload)
		assert.Equal(t, before, s.Snapshot(), "payload %q must not change state", payload)
	}
}

func TestStore_LoadEmptyPayloadWarnsOnFreshStore(t *testing.T) {
	kv := testutil.NewFlakyKV()
	kv.Seed(CardsKey, "")

	var buf bytes.Buffer
	s := New(kv, zerolog.New(&buf))
	require.NoError(t, s.Load(context.Background()))

	assert.Contains(t, buf.String(), "ignoring malformed persisted cards")
	assert.Empty(t, s.Cards())
	assert.Equal(t, uint64(0), s.Snapshot().Revision)
}

func TestStore_LoadNullIsEmpty(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, testutil.TestCard("a", "A")))
	kv.Seed(CardsKey, "null")

	require.NoError(t, s.Load(ctx))
	assert.Empty(t, s.Cards())
}

func TestStore_LoadReadError(t *testing.T) {
	kv := testutil.NewFlakyKV()
	kv.FailReads(true)

	_, err := Open(context.Background(), kv, logger.Nop())
	require.Error(t, err)
	assert.True(t, walleterr.IsPersistenceError(err))
	assert.ErrorIs(t, err, testutil.ErrInjected)
}

func TestStore_LoadSamePayloadIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, testutil.TestCard("a", "A")))

	var notified int
	unsub := s.Subscribe(func(Snapshot) { notified++ })
	defer unsub()

	require.NoError(t, s.Load(ctx))
	assert.Equal(t, 0, notified, "reloading our own write must not notify")
	assert.Equal(t, uint64(1), s.Snapshot().Revision)
}

func TestStore_Rewrite(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, testutil.TestCard("a", "A")))
	require.NoError(t, s.Add(ctx, testutil.TestCard("a", "A")))
	require.NoError(t, s.Add(ctx, testutil.TestCard("b", "B")))

	var got []Snapshot
	defer s.Subscribe(func(snap Snapshot) { got = append(got, snap) })()

	require.NoError(t, s.Rewrite(ctx, func(cur []model.Card) []model.Card {
		return cur[1:]
	}))
	assert.Equal(t, []string{"a", "b"}, ids(s.Cards()))
	require.Len(t, got, 1)
	assert.Equal(t, uint64(4), got[0].Revision)

	require.NoError(t, s.Add(ctx, testutil.TestCard("c", "C")))
	writes := kv.Writes()
	assert.Contains(t, writes[len(writes)-1], `"id":"b"`)
	assert.Equal(t, []string{"a", "b", "c"}, ids(s.Cards()), "later writes build on the rewritten list")
}

func TestStore_RewriteFailureLeavesMemoryUnchanged(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, testutil.TestCard("a", "A")))
	kv.FailWrites(true)

	err := s.Rewrite(ctx, func([]model.Card) []model.Card { return []model.Card{} })
	require.Error(t, err)
	assert.Equal(t, []string{"a"}, ids(s.Cards()))
}

func TestStore_FailedWriteLeavesMemoryUnchanged(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, testutil.TestCard("a", "A")))
	before := s.Snapshot()

	var notified int
	defer s.Subscribe(func(Snapshot) { notified++ })()

	kv.FailWrites(true)
	err := s.Add(ctx, testutil.TestCard("b", "B"))
	require.Error(t, err)
	assert.True(t, walleterr.IsPersistenceError(err))

	err = s.Remove(ctx, "a")
	require.Error(t, err)
	assert.True(t, walleterr.IsPersistenceError(err))

	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, 0, notified)

	// Recovery: the next successful write is based on the last persisted state
	kv.FailWrites(false)
	require.NoError(t, s.Add(ctx, testutil.TestCard("c", "C")))
	assert.Equal(t, []string{"a", "c"}, ids(s.Cards()))
}

func TestStore_ConcurrentAddsAllPresent(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Add(ctx, testutil.TestCard(fmt.Sprintf("tokn_%02d", i), "X")))
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.Cards(), n)
	assert.ElementsMatch(t, ids(s.Cards()), ids(decode(t, kv.Writes()[n-1])))
	assert.Equal(t, uint64(n), s.Snapshot().Revision)
}

func TestStore_SubscribeReceivesSnapshotsInOrder(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var mu sync.Mutex
	var revisions []uint64
	var lastLen int
	unsub := s.Subscribe(func(snap Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		revisions = append(revisions, snap.Revision)
		lastLen = len(snap.Cards)
	})

	require.NoError(t, s.Add(ctx, testutil.TestCard("a", "A")))
	require.NoError(t, s.Add(ctx, testutil.TestCard("b", "B")))
	require.NoError(t, s.Remove(ctx, "a"))

	mu.Lock()
	assert.Equal(t, []uint64{1, 2, 3}, revisions)
	assert.Equal(t, 1, lastLen)
	mu.Unlock()

	unsub()
	unsub() // safe to call twice
	require.NoError(t, s.Add(ctx, testutil.TestCard("c", "C")))

	mu.Lock()
	assert.Len(t, revisions, 3, "no delivery after unsubscribe")
	mu.Unlock()
}

func TestStore_ConcurrentSubscriberOrder(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var mu sync.Mutex
	var revisions []uint64
	defer s.Subscribe(func(snap Snapshot) {
		mu.Lock()
		revisions = append(revisions, snap.Revision)
		mu.Unlock()
	})()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Add(ctx, testutil.TestCard(fmt.Sprintf("c%d", i), "X"))
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, revisions, 20)
	for i, r := range revisions {
		assert.Equal(t, uint64(i+1), r)
	}
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Add(context.Background(), testutil.TestCard("a", "A")))

	cards := s.Cards()
	cards[0].HolderName = "MUTATED"

	assert.Equal(t, "A", s.Cards()[0].HolderName)
}

func TestStore_Find(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Add(context.Background(), testutil.TestCard("a", "A")))

	c, ok := s.Find("a")
	assert.True(t, ok)
	assert.Equal(t, "A", c.HolderName)

	_, ok = s.Find("missing")
	assert.False(t, ok)
}

func mustEncode(t *testing.T, cards []model.Card) string {
	t.Helper()
	s, err := encodeCards(cards)
	require.NoError(t, err)
	return s
}

func decode(t *testing.T, raw string) []model.Card {
	t.Helper()
	cards, err := decodeCards(raw)
	require.NoError(t, err)
	return cards
}
