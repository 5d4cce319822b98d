package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbasket/grocer/address/pkg/request"
	inErrors "github.com/greenbasket/grocer/internal/errors"
)

func homeAddress() request.Address {
	return request.Address{
		Line1:    "12 Chapel Market",
		PostTown: "London",
		Pincode:  "N1 9EZ",
	}
}

func officeAddress() request.Address {
	return request.Address{
		Line1:    "4 Finsbury Square",
		PostTown: "London",
		Pincode:  "EC1 2AB",
		Landmark: "opposite the park gate",
	}
}

func TestFirstAddressBecomesDefault(t *testing.T) {
	c := context.Background()
	pool, pgContainer, svc := setup(t)(c)
	defer teardown(t)(pool, pgContainer)

	first, err := svc.InsertAddress(c, homeAddress(), seededUserID)
	require.NoError(t, err)
	assert.True(t, first.IsDefault)

	second, err := svc.InsertAddress(c, officeAddress(), seededUserID)
	require.NoError(t, err)
	assert.False(t, second.IsDefault)
}

func TestSetDefaultFlipsExactlyOne(t *testing.T) {
	c := context.Background()
	pool, pgContainer, svc := setup(t)(c)
	defer teardown(t)(pool, pgContainer)

	_, err := svc.InsertAddress(c, homeAddress(), seededUserID)
	require.NoError(t, err)
	second, err := svc.InsertAddress(c, officeAddress(), seededUserID)
	require.NoError(t, err)

	promoted, err := svc.SetDefaultAddress(c, second.ID, seededUserID)
	require.NoError(t, err)
	assert.True(t, promoted.IsDefault)

	addresses, err := svc.FindAddresses(c, seededUserID)
	require.NoError(t, err)
	require.Len(t, addresses, 2)

	defaults := 0
	for _, a := range addresses {
		if a.IsDefault {
			defaults++
			assert.Equal(t, second.ID, a.ID)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestDeleteDefaultPromotesOldestRemaining(t *testing.T) {
	c := context.Background()
	pool, pgContainer, svc := setup(t)(c)
	defer teardown(t)(pool, pgContainer)

	first, err := svc.InsertAddress(c, homeAddress(), seededUserID)
	require.NoError(t, err)
	second, err := svc.InsertAddress(c, officeAddress(), seededUserID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAddress(c, first.ID, seededUserID))

	addresses, err := svc.FindAddresses(c, seededUserID)
	require.NoError(t, err)
	require.Len(t, addresses, 1)
	assert.Equal(t, second.ID, addresses[0].ID)
	assert.True(t, addresses[0].IsDefault)
}

func TestUpdateAddressKeepsDefaultFlag(t *testing.T) {
	c := context.Background()
	pool, pgContainer, svc := setup(t)(c)
	defer teardown(t)(pool, pgContainer)

	first, err := svc.InsertAddress(c, homeAddress(), seededUserID)
	require.NoError(t, err)

	changed := homeAddress()
	changed.Line2 = "Flat 3"
	updated, err := svc.UpdateAddress(c, first.ID, changed, seededUserID)
	require.NoError(t, err)
	assert.Equal(t, "Flat 3", updated.Line2)
	assert.True(t, updated.IsDefault)
}

func TestAddressOfAnotherUserIsInvisible(t *testing.T) {
	c := context.Background()
	pool, pgContainer, svc := setup(t)(c)
	defer teardown(t)(pool, pgContainer)

	first, err := svc.InsertAddress(c, homeAddress(), seededUserID)
	require.NoError(t, err)

	otherUser := uuid.New()
	_, err = svc.SetDefaultAddress(c, first.ID, otherUser)
	assert.ErrorIs(t, err, inErrors.ErrAddressNotFound)

	err = svc.DeleteAddress(c, first.ID, otherUser)
	assert.ErrorIs(t, err, inErrors.ErrAddressNotFound)
}

func TestDeliveryQuoteByOutwardCode(t *testing.T) {
	c := context.Background()
	pool, pgContainer, svc := setup(t)(c)
	defer teardown(t)(pool, pgContainer)

	a, err := svc.InsertAddress(c, homeAddress(), seededUserID)
	require.NoError(t, err)

	quote, err := svc.FindDeliveryQuote(c, a.ID, seededUserID)
	require.NoError(t, err)
	assert.Equal(t, "inner", quote.Zone)
	assert.True(t, decimal.RequireFromString("2.99").Equal(quote.Fee))
}

func TestDeliveryQuoteOutsideEveryZone(t *testing.T) {
	c := context.Background()
	pool, pgContainer, svc := setup(t)(c)
	defer teardown(t)(pool, pgContainer)

	remote := request.Address{
		Line1:    "1 Harbour View",
		PostTown: "Aberdeen",
		Pincode:  "AB10 1AA",
	}
	a, err := svc.InsertAddress(c, remote, seededUserID)
	require.NoError(t, err)

	_, err = svc.FindDeliveryQuote(c, a.ID, seededUserID)
	assert.ErrorIs(t, err, inErrors.ErrNotServiceable)
}

func TestDeliveryQuoteUnknownAddress(t *testing.T) {
	c := context.Background()
	pool, pgContainer, svc := setup(t)(c)
	defer teardown(t)(pool, pgContainer)

	_, err := svc.FindDeliveryQuote(c, uuid.New(), seededUserID)
	assert.ErrorIs(t, err, inErrors.ErrAddressNotFound)
}
