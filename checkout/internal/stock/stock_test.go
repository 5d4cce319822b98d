package stock

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbasket/grocer/checkout/internal/backend"
	"github.com/greenbasket/grocer/checkout/internal/cart"
)

type fakeVerifier struct {
	verification backend.StockVerification
	err          error
	calls        int
	lastQueries  []backend.StockQuery
}

func (f *fakeVerifier) VerifyStock(
	c context.Context,
	items []backend.StockQuery,
) (backend.StockVerification, error) {
	f.calls++
	f.lastQueries = items
	return f.verification, f.err
}

func newItem(name string) cart.LineItem {
	hint := int64(100)
	return cart.LineItem{
		ProductID:      uuid.New(),
		Name:           name,
		SellingPrice:   decimal.NewFromInt(10),
		AvailableStock: &hint,
	}
}

func TestReconcileCapsQuantityToBackendAvailability(t *testing.T) {
	t.Parallel()

	store := cart.NewStore()
	milk := newItem("Whole Milk 2L")
	store.AddItem(milk, 5)

	verifier := &fakeVerifier{
		verification: backend.StockVerification{
			AllAvailable: false,
			Unavailable: []backend.UnavailableItem{
				{
					ProductID:         milk.ProductID,
					Name:              milk.Name,
					RequestedQuantity: 5,
					AvailableQuantity: 2,
					Reason:            "insufficient stock",
				},
			},
		},
	}

	report, err := Reconcile(context.Background(), verifier, store)
	require.NoError(t, err)

	assert.Equal(t, int64(2), store.ItemQuantity(milk.ProductID))
	require.Len(t, report.Reduced, 1)
	assert.Equal(t, "Whole Milk 2L", report.Reduced[0].Name)
	assert.Equal(t, int64(5), report.Reduced[0].OldQuantity)
	assert.Equal(t, int64(2), report.Reduced[0].NewQuantity)
	assert.Empty(t, report.Removed)
	assert.False(t, report.Clean())
}

func TestReconcileRemovesFullyUnavailableItem(t *testing.T) {
	t.Parallel()

	store := cart.NewStore()
	bread := newItem("Sourdough Loaf")
	apples := newItem("Braeburn Apples 6pk")
	store.AddItem(bread, 2)
	store.AddItem(apples, 3)

	verifier := &fakeVerifier{
		verification: backend.StockVerification{
			AllAvailable: false,
			Unavailable: []backend.UnavailableItem{
				{
					ProductID:         bread.ProductID,
					Name:              bread.Name,
					RequestedQuantity: 2,
					AvailableQuantity: 0,
					Reason:            "out of stock",
				},
			},
		},
	}

	report, err := Reconcile(context.Background(), verifier, store)
	require.NoError(t, err)

	assert.Equal(t, int64(0), store.ItemQuantity(bread.ProductID))
	assert.Equal(t, int64(3), store.ItemQuantity(apples.ProductID))
	require.Len(t, report.Removed, 1)
	assert.Equal(t, "Sourdough Loaf", report.Removed[0].Name)
	assert.Equal(t, "out of stock", report.Removed[0].Reason)
	assert.Empty(t, report.Reduced)
}

func TestReconcileBatchesWholeCartInOneCall(t *testing.T) {
	t.Parallel()

	store := cart.NewStore()
	first := newItem("Oat Milk 1L")
	second := newItem("Free Range Eggs 12pk")
	third := newItem("Cheddar 400g")
	store.AddItem(first, 1)
	store.AddItem(second, 2)
	store.AddItem(third, 4)

	verifier := &fakeVerifier{
		verification: backend.StockVerification{AllAvailable: true},
	}

	report, err := Reconcile(context.Background(), verifier, store)
	require.NoError(t, err)

	assert.Equal(t, 1, verifier.calls)
	assert.Len(t, verifier.lastQueries, 3)
	assert.True(t, report.Clean())
	assert.Equal(t, int64(1), store.ItemQuantity(first.ProductID))
	assert.Equal(t, int64(2), store.ItemQuantity(second.ProductID))
	assert.Equal(t, int64(4), store.ItemQuantity(third.ProductID))
}

func TestReconcileEmptyCartSkipsVerifier(t *testing.T) {
	t.Parallel()

	verifier := &fakeVerifier{}
	report, err := Reconcile(context.Background(), verifier, cart.NewStore())
	require.NoError(t, err)

	assert.Equal(t, 0, verifier.calls)
	assert.True(t, report.Clean())
}

func TestReconcilePropagatesVerifierError(t *testing.T) {
	t.Parallel()

	store := cart.NewStore()
	store.AddItem(newItem("Bananas 5pk"), 1)

	verifier := &fakeVerifier{err: errors.New("stock authority unreachable")}
	_, err := Reconcile(context.Background(), verifier, store)
	require.Error(t, err)
	assert.ErrorContains(t, err, "stock authority unreachable")

	// the cart is untouched when verification itself fails
	assert.Equal(t, 1, store.Len())
}

func TestReconcileIgnoresUnknownProductInResponse(t *testing.T) {
	t.Parallel()

	store := cart.NewStore()
	item := newItem("Greek Yogurt 500g")
	store.AddItem(item, 2)

	verifier := &fakeVerifier{
		verification: backend.StockVerification{
			AllAvailable: false,
			Unavailable: []backend.UnavailableItem{
				{
					ProductID:         uuid.New(),
					Name:              "Phantom Item",
					AvailableQuantity: 0,
					Reason:            "out of stock",
				},
			},
		},
	}

	report, err := Reconcile(context.Background(), verifier, store)
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.Equal(t, int64(2), store.ItemQuantity(item.ProductID))
}
