package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	walleterr "github.com/amterp/wallet/internal/errors"
	"github.com/amterp/wallet/internal/gateway"
	"github.com/amterp/wallet/internal/logger"
	"github.com/amterp/wallet/internal/wallet"
	"github.com/amterp/wallet/testutil"
)

type serviceFixture struct {
	svc   *CardService
	store *wallet.Store
	kv    *testutil.FlakyKV
	fake  *testutil.FakeGateway
}

func setupCardService(t *testing.T) serviceFixture {
	t.Helper()
	fake := testutil.NewFakeGateway(t)
	gw, err := gateway.New(fake.Config(), gateway.WithHTTPClient(fake.Server.Client()))
	require.NoError(t, err)

	kv := testutil.NewFlakyKV()
	st, err := wallet.Open(context.Background(), kv, logger.Nop())
	require.NoError(t, err)

	return serviceFixture{
		svc:   NewCardService(st, gw, logger.Nop()),
		store: st,
		kv:    kv,
		fake:  fake,
	}
}

func validInput() AddCardInput {
	return AddCardInput{
		HolderName:  "jane doe",
		Number:      "4242 4242 4242 4242",
		ExpiryMonth: "12",
		ExpiryYear:  "30",
		CVC:         "123",
		CardColor:   "#7EE8FA",
	}
}

func TestCardService_Add(t *testing.T) {
	f := setupCardService(t)

	card, err := f.svc.Add(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "tokn_test_1", card.ID)
	assert.Equal(t, "JANE DOE", card.HolderName)
	assert.Equal(t, "4242424242424242", card.Number)
	assert.Equal(t, "#7EE8FA", card.CardColor)

	cards := f.store.Cards()
	require.Len(t, cards, 1)
	assert.Equal(t, *card, cards[0])

	reqs := f.fake.RequestsTo("/tokens")
	require.Len(t, reqs, 1)
	sent := reqs[0].Body["card"].(map[string]any)
	assert.Equal(t, "JANE DOE", sent["name"], "shaped values are sent")
}

func TestCardService_AddValidationSkipsNetwork(t *testing.T) {
	f := setupCardService(t)

	in := validInput()
	in.CVC = "abc" // shapes to empty
	_, err := f.svc.Add(context.Background(), in)

	require.Error(t, err)
	assert.True(t, walleterr.IsValidationError(err))
	assert.Equal(t, MsgCVCRequired, err.Error())
	assert.Empty(t, f.fake.Requests())
	assert.Empty(t, f.kv.Writes())
}

func TestCardService_AddGatewayRejectionLeavesStoreUntouched(t *testing.T) {
	f := setupCardService(t)
	f.fake.RejectTokens("number is invalid")

	_, err := f.svc.Add(context.Background(), validInput())

	require.Error(t, err)
	assert.True(t, walleterr.IsGatewayError(err))
	assert.Contains(t, err.Error(), "number is invalid")
	assert.Empty(t, f.store.Cards())
	assert.Empty(t, f.kv.Writes())
}

func TestCardService_AddMissingTokenID(t *testing.T) {
	f := setupCardService(t)
	f.fake.OmitTokenID(true)

	_, err := f.svc.Add(context.Background(), validInput())
	assert.True(t, walleterr.IsGatewayError(err))
	assert.Empty(t, f.store.Cards())
}

func TestCardService_AddPersistenceFailure(t *testing.T) {
	f := setupCardService(t)
	f.kv.FailWrites(true)

	_, err := f.svc.Add(context.Background(), validInput())
	assert.True(t, walleterr.IsPersistenceError(err))
	assert.Empty(t, f.store.Cards())
}

func TestCardService_RemoveByLastFour(t *testing.T) {
	f := setupCardService(t)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, validInput())
	require.NoError(t, err)
	other := validInput()
	other.Number = "5555555555554444"
	_, err = f.svc.Add(ctx, other)
	require.NoError(t, err)

	removed, err := f.svc.Remove(ctx, "4444")
	require.NoError(t, err)
	assert.Equal(t, "tokn_test_2", removed.ID)

	cards := f.svc.List()
	require.Len(t, cards, 1)
	assert.Equal(t, "tokn_test_1", cards[0].ID)
}

func TestCardService_RemoveResolvedUntokenizedCard(t *testing.T) {
	f := setupCardService(t)
	ctx := context.Background()

	f.kv.Seed(wallet.CardsKey, `[{"id":"","holderName":"NO TOKEN","number":"4000000000001111","expiryMonth":"12","expiryYear":"30","cvc":"123","cardColor":"#7EE8FA"}]`)
	require.NoError(t, f.store.Load(ctx))

	card, err := f.svc.Get("1111")
	require.NoError(t, err)
	assert.Equal(t, "", card.ID)

	require.NoError(t, f.svc.RemoveCard(ctx, *card))
	assert.Empty(t, f.svc.List())
}

func TestCardService_RemoveUnknown(t *testing.T) {
	f := setupCardService(t)

	_, err := f.svc.Remove(context.Background(), "tokn_nope")
	assert.True(t, walleterr.IsNotFound(err))
}

func TestCardService_Charge(t *testing.T) {
	f := setupCardService(t)
	ctx := context.Background()

	card, err := f.svc.Add(ctx, validInput())
	require.NoError(t, err)

	res, err := f.svc.Charge(ctx, card.ID)
	require.NoError(t, err)

	assert.Equal(t, PaymentSuccessful, res.Message)
	assert.Equal(t, "thb", res.Currency)
	assert.GreaterOrEqual(t, res.Amount, int64(MinChargeAmount))
	assert.Less(t, res.Amount, int64(MinChargeAmount+ChargeAmountSpread))

	// A fresh token is minted for the charge
	tokens := f.fake.RequestsTo("/tokens")
	require.Len(t, tokens, 2)
	charges := f.fake.RequestsTo("/charges")
	require.Len(t, charges, 1)
	assert.Equal(t, "tokn_test_2", charges[0].Body["card"])

	// Charging does not alter the stored card
	assert.Equal(t, []string{card.ID}, []string{f.svc.List()[0].ID})
}

func TestCardService_ChargeAmountRange(t *testing.T) {
	f := setupCardService(t)
	seen := map[int64]bool{}
	for i := 0; i < 500; i++ {
		a := f.svc.amount()
		require.GreaterOrEqual(t, a, int64(2000))
		require.LessOrEqual(t, a, int64(2009))
		seen[a] = true
	}
	assert.Greater(t, len(seen), 1, "amount should vary")
}

func TestCardService_ChargeDeclined(t *testing.T) {
	f := setupCardService(t)
	ctx := context.Background()

	card, err := f.svc.Add(ctx, validInput())
	require.NoError(t, err)
	f.fake.DeclineCharges(true)

	_, err = f.svc.Charge(ctx, card.ID)
	require.Error(t, err)
	assert.True(t, walleterr.IsGatewayError(err))
}

func TestCardService_ChargeTokenRejected(t *testing.T) {
	f := setupCardService(t)
	ctx := context.Background()

	card, err := f.svc.Add(ctx, validInput())
	require.NoError(t, err)
	f.fake.RejectTokens("card expired")

	_, err = f.svc.Charge(ctx, card.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "card expired")
	assert.Empty(t, f.fake.RequestsTo("/charges"))
}
