package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateVAT(t *testing.T) {
	tests := []struct {
		name              string
		lines             []Line
		expectedSubtotal  string
		expectedVATAmount string
	}{
		{
			name:              "given no lines should return zero subtotal and vat",
			lines:             nil,
			expectedSubtotal:  "0.00",
			expectedVATAmount: "0.00",
		},
		{
			name: "given mixed vat categories only category B lines contribute vat",
			lines: []Line{
				{UnitPrice: decimal.NewFromInt(10), Quantity: 2, VATCategory: "B"},
				{UnitPrice: decimal.NewFromInt(5), Quantity: 3, VATCategory: ""},
			},
			expectedSubtotal:  "35.00",
			expectedVATAmount: "4.00",
		},
		{
			name: "given unknown vat category should be exempt",
			lines: []Line{
				{UnitPrice: decimal.NewFromInt(10), Quantity: 1, VATCategory: "A"},
				{UnitPrice: decimal.NewFromInt(10), Quantity: 1, VATCategory: "Z"},
			},
			expectedSubtotal:  "20.00",
			expectedVATAmount: "0.00",
		},
		{
			name: "given only liable lines vat is twenty percent of subtotal",
			lines: []Line{
				{UnitPrice: decimal.NewFromFloat(2.50), Quantity: 4, VATCategory: "B"},
			},
			expectedSubtotal:  "10.00",
			expectedVATAmount: "2.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breakdown := Calculate(tt.lines, nil, decimal.Zero)
			assert.Equal(t, tt.expectedSubtotal, breakdown.Subtotal.StringFixed(2))
			assert.Equal(t, tt.expectedVATAmount, breakdown.VATAmount.StringFixed(2))
		})
	}
}

func TestCalculateGrandTotalComposition(t *testing.T) {
	lines := []Line{
		{UnitPrice: decimal.NewFromInt(100), Quantity: 1},
	}
	discount := &Discount{Kind: DiscountPercentage, Value: decimal.NewFromInt(10)}
	deliveryFee := decimal.NewFromInt(5)

	breakdown := Calculate(lines, discount, deliveryFee)

	assert.Equal(t, "100.00", breakdown.Subtotal.StringFixed(2))
	assert.Equal(t, "10.00", breakdown.PromoDiscount.StringFixed(2))
	assert.Equal(t, "90.00", breakdown.DiscountedSubtotal.StringFixed(2))
	assert.Equal(t, "95.00", breakdown.GrandTotal.StringFixed(2))

	expected := breakdown.Subtotal.
		Sub(breakdown.PromoDiscount).
		Add(breakdown.DeliveryFee).
		Add(breakdown.VATAmount)
	assert.True(t, breakdown.GrandTotal.Equal(expected), "grand total should compose from its parts")
}

func TestCalculateGrandTotalWithVATAndDelivery(t *testing.T) {
	lines := []Line{
		{UnitPrice: decimal.NewFromInt(40), Quantity: 1, VATCategory: "B"},
		{UnitPrice: decimal.NewFromInt(60), Quantity: 1},
	}
	discount := &Discount{Kind: DiscountPercentage, Value: decimal.NewFromInt(10)}
	deliveryFee := decimal.NewFromInt(5)

	breakdown := Calculate(lines, discount, deliveryFee)

	// subtotal=100, promo=10, vat=8, delivery=5 -> 90+5+8
	assert.Equal(t, "103.00", breakdown.GrandTotal.StringFixed(2))
}

func TestCalculateFixedDiscountClampedToSubtotal(t *testing.T) {
	lines := []Line{
		{UnitPrice: decimal.NewFromInt(8), Quantity: 1},
	}
	discount := &Discount{Kind: DiscountFixed, Value: decimal.NewFromInt(20)}

	breakdown := Calculate(lines, discount, decimal.Zero)

	assert.Equal(t, "8.00", breakdown.PromoDiscount.StringFixed(2))
	assert.Equal(t, "0.00", breakdown.DiscountedSubtotal.StringFixed(2))
	assert.False(t, breakdown.GrandTotal.IsNegative(), "grand total must never go negative")
}

func TestCalculateRoundsOnlyAtDisplay(t *testing.T) {
	// three lines at 0.10 each with a 33% discount exercise intermediate
	// precision; the exact decimal survives until Display.
	lines := []Line{
		{UnitPrice: decimal.NewFromFloat(0.10), Quantity: 3},
	}
	discount := &Discount{Kind: DiscountPercentage, Value: decimal.NewFromInt(33)}

	breakdown := Calculate(lines, discount, decimal.Zero)

	assert.Equal(t, "0.099", breakdown.PromoDiscount.String())
	assert.Equal(t, "0.10", breakdown.PromoDiscount.StringFixed(2))
	assert.Equal(t, "0.201", breakdown.DiscountedSubtotal.String())
	assert.Equal(t, "0.20", breakdown.Display().DiscountedSubtotal)
}

func TestCalculateTotalItems(t *testing.T) {
	lines := []Line{
		{UnitPrice: decimal.NewFromInt(1), Quantity: 2},
		{UnitPrice: decimal.NewFromInt(1), Quantity: 5},
	}
	breakdown := Calculate(lines, nil, decimal.Zero)
	assert.EqualValues(t, 7, breakdown.TotalItems)
}
