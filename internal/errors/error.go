package errors

import (
	"errors"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrEmptyAuth         = errors.New("missing authorization")
	ErrEmptySubject      = errors.New("missing subject")
	ErrTokenInvalid      = errors.New("invalid token")
	ErrUserNotFound      = errors.New("user not found")
	ErrPasswordMismatch  = errors.New("password mismatch")
	ErrAddressNotFound   = errors.New("address not found")
	ErrNotServiceable    = errors.New("address is not serviceable")
	ErrCartEmpty         = errors.New("cart is empty")
	ErrNoAddress         = errors.New("no delivery address on file")
	ErrPromoNotFound     = errors.New("promo code not found")
	ErrPromoExpired      = errors.New("promo code is expired")
	ErrPromoMinimumOrder = errors.New("cart subtotal is below the promo minimum order")
	ErrCheckoutInFlight  = errors.New("a checkout attempt is already in progress")
	ErrMalformedResponse = errors.New("malformed backend response")
	ErrStockChanged      = errors.New("cart changed during stock verification")
	ErrOrderRejected     = errors.New("order was rejected by the backend")
)

func HandleError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.AddEvent(err.Error())
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
