package pricing

import (
	"github.com/shopspring/decimal"
)

// VATCategoryLiable is the only category tag that makes a line contribute
// VAT; every other value (including empty) is exempt.
const VATCategoryLiable = "B"

var vatRate = decimal.NewFromFloat(0.20)

type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

// Discount is the pricing-relevant part of an applied promo code.
type Discount struct {
	Kind  DiscountKind
	Value decimal.Decimal
}

// Line is one cart line as the calculator sees it: the charged unit price,
// the quantity, and the VAT tag. Display fields are none of its business.
type Line struct {
	UnitPrice   decimal.Decimal
	Quantity    int64
	VATCategory string
}

// Breakdown carries every aggregate the checkout needs. All values are exact
// decimals; rounding happens only when formatting for display.
type Breakdown struct {
	Subtotal           decimal.Decimal
	VATAmount          decimal.Decimal
	PromoDiscount      decimal.Decimal
	DiscountedSubtotal decimal.Decimal
	DeliveryFee        decimal.Decimal
	GrandTotal         decimal.Decimal
	TotalItems         int64
}

// Calculate aggregates the lines into a Breakdown.
//
// VAT is a fixed 20% of the line totals whose category is VATCategoryLiable.
// A fixed-amount discount larger than the subtotal is clamped so the
// discounted subtotal never goes negative.
func Calculate(lines []Line, discount *Discount, deliveryFee decimal.Decimal) Breakdown {
	subtotal := decimal.Zero
	vatAmount := decimal.Zero
	var totalItems int64

	for _, line := range lines {
		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(line.Quantity))
		subtotal = subtotal.Add(lineTotal)
		totalItems += line.Quantity
		if line.VATCategory == VATCategoryLiable {
			vatAmount = vatAmount.Add(lineTotal.Mul(vatRate))
		}
	}

	promoDiscount := decimal.Zero
	if discount != nil {
		switch discount.Kind {
		case DiscountPercentage:
			promoDiscount = subtotal.Mul(discount.Value).Div(decimal.NewFromInt(100))
		case DiscountFixed:
			promoDiscount = discount.Value
		}
		if promoDiscount.GreaterThan(subtotal) {
			promoDiscount = subtotal
		}
		if promoDiscount.IsNegative() {
			promoDiscount = decimal.Zero
		}
	}

	discountedSubtotal := subtotal.Sub(promoDiscount)
	grandTotal := discountedSubtotal.Add(deliveryFee).Add(vatAmount)

	return Breakdown{
		Subtotal:           subtotal,
		VATAmount:          vatAmount,
		PromoDiscount:      promoDiscount,
		DiscountedSubtotal: discountedSubtotal,
		DeliveryFee:        deliveryFee,
		GrandTotal:         grandTotal,
		TotalItems:         totalItems,
	}
}

// Display is the two-decimal presentation of a Breakdown. This is the only
// place rounding happens.
type Display struct {
	Subtotal           string `json:"subtotal"`
	VATAmount          string `json:"vatAmount"`
	PromoDiscount      string `json:"promoDiscount"`
	DiscountedSubtotal string `json:"discountedSubtotal"`
	DeliveryFee        string `json:"deliveryFee"`
	GrandTotal         string `json:"grandTotal"`
}

func (b Breakdown) Display() Display {
	return Display{
		Subtotal:           b.Subtotal.StringFixed(2),
		VATAmount:          b.VATAmount.StringFixed(2),
		PromoDiscount:      b.PromoDiscount.StringFixed(2),
		DiscountedSubtotal: b.DiscountedSubtotal.StringFixed(2),
		DeliveryFee:        b.DeliveryFee.StringFixed(2),
		GrandTotal:         b.GrandTotal.StringFixed(2),
	}
}
