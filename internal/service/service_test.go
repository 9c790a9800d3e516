package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Shivanand-hulikatti/event-cashless/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorUnwraps(t *testing.T) {
	err := fmt.Errorf("create: %w", invalid("name is %s", "required"))
	assert.True(t, IsValidation(err))
	assert.EqualError(t, err, "create: name is required")
	assert.False(t, IsValidation(errors.New("boom")))
}

func TestMergeLineItems(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()

	got, err := mergeLineItems([]model.LineItem{
		{ProductID: p1, Quantity: 2},
		{ProductID: p2, Quantity: 1},
		{ProductID: p1, Quantity: 3, Name: "ignored"},
	})
	require.NoError(t, err)
	assert.Equal(t, []model.LineItem{
		{ProductID: p1, Quantity: 5},
		{ProductID: p2, Quantity: 1},
	}, got)

	for name, items := range map[string][]model.LineItem{
		"empty":         nil,
		"zero quantity": {{ProductID: p1, Quantity: 0}},
		"negative":      {{ProductID: p1, Quantity: -1}},
		"missing id":    {{Quantity: 1}},
		"too large":     {{ProductID: p1, Quantity: MaxQuantity + 1}},
		"merge overflow": {
			{ProductID: p1, Quantity: 1 << 30},
			{ProductID: p1, Quantity: 1 << 30},
		},
		"merge wraps": {
			{ProductID: p1, Quantity: 1 << 62},
			{ProductID: p1, Quantity: 1 << 62},
		},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := mergeLineItems(items)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestMergeLineItemsUpToMax(t *testing.T) {
	p := uuid.New()
	got, err := mergeLineItems([]model.LineItem{
		{ProductID: p, Quantity: MaxQuantity - 1},
		{ProductID: p, Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, MaxQuantity, got[0].Quantity)
}

func TestDiffBalances(t *testing.T) {
	w := uuid.New()
	a := model.CreditKey{WristbandID: w, ProductID: uuid.New()}
	b := model.CreditKey{WristbandID: w, ProductID: uuid.New()}
	c := model.CreditKey{WristbandID: w, ProductID: uuid.New()}

	assert.Empty(t, diffBalances(
		map[model.CreditKey]int{a: 1, b: 0},
		map[model.CreditKey]int{a: 1},
	))

	got := diffBalances(
		map[model.CreditKey]int{a: 4, b: 2},
		map[model.CreditKey]int{a: 3, b: 2, c: 1},
	)
	require.Len(t, got, 2)
	byKey := map[model.CreditKey]model.Discrepancy{}
	for _, d := range got {
		byKey[d.CreditKey] = d
	}
	assert.Equal(t, model.Discrepancy{CreditKey: a, Stored: 4, Replayed: 3}, byKey[a])
	assert.Equal(t, model.Discrepancy{CreditKey: c, Stored: 0, Replayed: 1}, byKey[c])
}

func TestValidationHappensBeforeStorage(t *testing.T) {
	ctx := context.Background()

	// nil repositories: any call past validation would panic.
	ledger := NewLedgerService(nil, nil, nil)
	for _, q := range []int{0, -3, MaxQuantity + 1, 1 << 40} {
		_, err := ledger.TopUp(ctx, model.TopUpRequest{WristbandID: uuid.New(), ProductID: uuid.New(), Quantity: q})
		assert.True(t, IsValidation(err), q)
	}
	_, err := ledger.TopUp(ctx, model.TopUpRequest{ProductID: uuid.New(), Quantity: 1})
	assert.True(t, IsValidation(err))
	_, err = ledger.Debit(ctx, model.DebitRequest{ProductID: uuid.New()})
	assert.True(t, IsValidation(err))

	orders := NewOrderService(nil)
	_, err = orders.CreateOrder(ctx, model.CreateOrderRequest{EventID: uuid.New()})
	assert.True(t, IsValidation(err))
	_, err = orders.Redeem(ctx, uuid.New(), model.RedeemOrderRequest{})
	assert.True(t, IsValidation(err))

	events := NewEventService(nil, nil, nil)
	_, err = events.CreateEvent(ctx, model.CreateEventRequest{Name: "Fest", Date: "04/07/2026"})
	assert.True(t, IsValidation(err))
	_, err = events.CreateEvent(ctx, model.CreateEventRequest{Name: "Fest", Date: "2026-07-04", AccentColor: "blue"})
	assert.True(t, IsValidation(err))
	for _, price := range []int64{-1, 0} {
		_, err = events.CreateProduct(ctx, model.CreateProductRequest{Name: "Beer", Price: price, EventID: uuid.New()})
		assert.True(t, IsValidation(err), price)
	}
	err = events.SetVisibility(ctx, uuid.New(), model.VisibilityRequest{})
	assert.True(t, IsValidation(err))

	wristbands := NewWristbandService(nil, nil, nil)
	_, err = wristbands.Register(ctx, "   ", uuid.New())
	assert.True(t, IsValidation(err))
	_, err = wristbands.SetSocial(ctx, uuid.New(), "not valid!")
	assert.True(t, IsValidation(err))
	err = wristbands.RedeemByCode(ctx, model.RedeemByCodeRequest{Code: "ABCDEF", EventID: uuid.New()})
	assert.True(t, IsValidation(err))
}
