package promo

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greenbasket/grocer/checkout/internal/pricing"
	inErrors "github.com/greenbasket/grocer/internal/errors"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
)

// PromoCode is an offer code. Exactly one of PercentageOff or FixedAmountOff
// is set; which one decides the discount kind.
type PromoCode struct {
	ID             uuid.UUID        `json:"id"`
	Code           string           `json:"code"`
	Status         Status           `json:"status"`
	MinimumOrder   decimal.Decimal  `json:"minimumOrder"`
	PercentageOff  *decimal.Decimal `json:"percentageOff,omitempty"`
	FixedAmountOff *decimal.Decimal `json:"fixedAmountOff,omitempty"`
}

// Validate checks the promo against the current subtotal. A non-nil error
// means the promo must not be applied; the applied-promo state of the caller
// stays untouched.
func (p PromoCode) Validate(subtotal decimal.Decimal) error {
	if p.Status != StatusActive {
		return inErrors.ErrPromoExpired
	}
	if subtotal.LessThan(p.MinimumOrder) {
		return inErrors.ErrPromoMinimumOrder
	}
	return nil
}

// Discount maps the promo onto the calculator's discount input.
func (p PromoCode) Discount() *pricing.Discount {
	if p.PercentageOff != nil {
		return &pricing.Discount{Kind: pricing.DiscountPercentage, Value: *p.PercentageOff}
	}
	if p.FixedAmountOff != nil {
		return &pricing.Discount{Kind: pricing.DiscountFixed, Value: *p.FixedAmountOff}
	}
	return nil
}
