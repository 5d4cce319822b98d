package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbasket/grocer/checkout/internal/cart"
	inErrors "github.com/greenbasket/grocer/internal/errors"
)

func milkItem() cart.LineItem {
	return cart.LineItem{
		ProductID:    uuid.New(),
		Name:         "Whole Milk 2L",
		Unit:         "2L",
		MRP:          decimal.RequireFromString("12.00"),
		SellingPrice: decimal.RequireFromString("10.00"),
		VATCategory:  "B",
	}
}

func TestCartSurvivesServiceRestart(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	userID := uuid.New()
	item := milkItem()

	svc := newTestCartService(pool, redisClient)
	summary, err := svc.AddItem(c, userID, item, 3)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)

	// a fresh service over the same redis restores the snapshot
	restarted := newTestCartService(pool, redisClient)
	restored, err := restarted.GetCart(c, userID)
	require.NoError(t, err)
	require.Len(t, restored.Items, 1)
	assert.Equal(t, item.ProductID, restored.Items[0].ProductID)
	assert.Equal(t, int64(3), restored.Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("30.00").Equal(restored.Breakdown.Subtotal))
}

func TestApplyPromoFromOffersTable(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	userID := uuid.New()
	svc := newTestCartService(pool, redisClient)
	_, err := svc.AddItem(c, userID, milkItem(), 4)
	require.NoError(t, err)

	// 40.00 subtotal clears the 30.00 minimum for SAVE10
	summary, err := svc.ApplyPromo(c, userID, "SAVE10")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("4.00").Equal(summary.Breakdown.PromoDiscount))
	assert.True(t, decimal.RequireFromString("36.00").Equal(summary.Breakdown.DiscountedSubtotal))
}

func TestApplyPromoBelowMinimumKeepsExisting(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	userID := uuid.New()
	svc := newTestCartService(pool, redisClient)
	_, err := svc.AddItem(c, userID, milkItem(), 2)
	require.NoError(t, err)

	// 20.00 subtotal qualifies for FIVER but not SAVE10
	_, err = svc.ApplyPromo(c, userID, "FIVER")
	require.NoError(t, err)

	_, err = svc.ApplyPromo(c, userID, "SAVE10")
	require.ErrorIs(t, err, inErrors.ErrPromoMinimumOrder)

	summary, err := svc.GetCart(c, userID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("5.00").Equal(summary.Breakdown.PromoDiscount))
}

func TestApplyPromoExpired(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	userID := uuid.New()
	svc := newTestCartService(pool, redisClient)
	_, err := svc.AddItem(c, userID, milkItem(), 2)
	require.NoError(t, err)

	_, err = svc.ApplyPromo(c, userID, "BYGONE")
	assert.ErrorIs(t, err, inErrors.ErrPromoExpired)
}

func TestApplyPromoUnknownCode(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	userID := uuid.New()
	svc := newTestCartService(pool, redisClient)
	_, err := svc.AddItem(c, userID, milkItem(), 2)
	require.NoError(t, err)

	_, err = svc.ApplyPromo(c, userID, "NOSUCHCODE")
	assert.ErrorIs(t, err, inErrors.ErrPromoNotFound)
}

func TestClearCartDropsSnapshotState(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	userID := uuid.New()
	svc := newTestCartService(pool, redisClient)
	_, err := svc.AddItem(c, userID, milkItem(), 2)
	require.NoError(t, err)
	require.NoError(t, svc.ClearCart(c, userID))

	restarted := newTestCartService(pool, redisClient)
	summary, err := restarted.GetCart(c, userID)
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
	assert.True(t, summary.Breakdown.Subtotal.IsZero())
}
