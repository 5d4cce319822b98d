package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/greenbasket/grocer/checkout/internal/promo"
)

func lineItem(id uuid.UUID, price int64) LineItem {
	return LineItem{
		ProductID:    id,
		Name:         "item-" + id.String()[:8],
		SellingPrice: decimal.NewFromInt(price),
		MRP:          decimal.NewFromInt(price),
	}
}

func TestAddItemAccumulatesQuantity(t *testing.T) {
	store := NewStore()
	productID := uuid.New()

	store.AddItem(lineItem(productID, 10), 2)
	store.AddItem(lineItem(productID, 10), 3)

	assert.EqualValues(t, 5, store.ItemQuantity(productID))
	assert.Equal(t, 1, store.Len())
}

func TestAddItemIgnoresNonPositiveQuantity(t *testing.T) {
	store := NewStore()
	productID := uuid.New()

	store.AddItem(lineItem(productID, 10), 0)
	store.AddItem(lineItem(productID, 10), -2)

	assert.EqualValues(t, 0, store.ItemQuantity(productID))
	assert.Equal(t, 0, store.Len())
}

func TestUpdateQuantityFloor(t *testing.T) {
	tests := []struct {
		name        string
		newQuantity int64
	}{
		{name: "given zero quantity should remove item", newQuantity: 0},
		{name: "given negative quantity should remove item", newQuantity: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore()
			productID := uuid.New()
			store.AddItem(lineItem(productID, 10), 3)

			store.UpdateQuantity(productID, tt.newQuantity)

			assert.EqualValues(t, 0, store.ItemQuantity(productID))
			assert.Equal(t, 0, store.Len())
		})
	}
}

func TestUpdateQuantitySetsDirectly(t *testing.T) {
	store := NewStore()
	productID := uuid.New()
	store.AddItem(lineItem(productID, 10), 3)

	store.UpdateQuantity(productID, 7)

	assert.EqualValues(t, 7, store.ItemQuantity(productID))
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	store := NewStore()
	kept := uuid.New()
	store.AddItem(lineItem(kept, 10), 1)

	assert.NotPanics(t, func() {
		store.RemoveItem(uuid.New())
		store.RemoveItem(uuid.New())
	})
	assert.Equal(t, 1, store.Len())
	assert.EqualValues(t, 1, store.ItemQuantity(kept))
}

func TestClearEmptiesCartAndPromo(t *testing.T) {
	store := NewStore()
	store.AddItem(lineItem(uuid.New(), 10), 2)
	store.SetPromo(promo.PromoCode{Code: "SAVE10", Status: promo.StatusActive})

	store.Clear()

	assert.Equal(t, 0, store.Len())
	assert.Nil(t, store.AppliedPromo())
}

func TestItemsPreserveInsertionOrder(t *testing.T) {
	store := NewStore()
	first, second, third := uuid.New(), uuid.New(), uuid.New()
	store.AddItem(lineItem(first, 1), 1)
	store.AddItem(lineItem(second, 2), 1)
	store.AddItem(lineItem(third, 3), 1)
	store.RemoveItem(second)

	items := store.Items()

	assert.Len(t, items, 2)
	assert.Equal(t, first, items[0].ProductID)
	assert.Equal(t, third, items[1].ProductID)
}

func TestSummaryRecomputesPromoFromCurrentSubtotal(t *testing.T) {
	store := NewStore()
	productID := uuid.New()
	store.AddItem(lineItem(productID, 50), 2)
	percentage := decimal.NewFromInt(10)
	store.SetPromo(promo.PromoCode{
		Code:          "SAVE10",
		Status:        promo.StatusActive,
		PercentageOff: &percentage,
	})

	summary := store.Summary(decimal.Zero)
	assert.Equal(t, "10.00", summary.Display.PromoDiscount)

	store.UpdateQuantity(productID, 1)
	summary = store.Summary(decimal.Zero)
	assert.Equal(t, "5.00", summary.Display.PromoDiscount)
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := NewStore()
	first, second := uuid.New(), uuid.New()
	store.AddItem(LineItem{ProductID: first, SellingPrice: decimal.NewFromInt(3), VATCategory: "B"}, 2)
	store.AddItem(lineItem(second, 4), 1)
	percentage := decimal.NewFromInt(5)
	store.SetPromo(promo.PromoCode{Code: "FIVER", Status: promo.StatusActive, PercentageOff: &percentage})

	restored := FromSnapshot(store.Snapshot())

	assert.EqualValues(t, 2, restored.ItemQuantity(first))
	assert.EqualValues(t, 1, restored.ItemQuantity(second))
	items := restored.Items()
	assert.Equal(t, first, items[0].ProductID)
	applied := restored.AppliedPromo()
	assert.NotNil(t, applied)
	assert.Equal(t, "FIVER", applied.Code)
}
