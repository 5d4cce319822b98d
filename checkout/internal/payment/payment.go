package payment

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Method is how the customer pays for the order.
type Method string

const (
	MethodOnline         Method = "online"
	MethodCashOnDelivery Method = "cod"
)

// Outcome is what the payment sheet reported back.
type Outcome string

const (
	// OutcomeCompleted means the customer authorized the payment.
	OutcomeCompleted Outcome = "completed"
	// OutcomeCanceled means the customer dismissed the sheet. Not an
	// error; the checkout attempt stops quietly.
	OutcomeCanceled Outcome = "canceled"
	// OutcomeFailed means the payment provider rejected the attempt.
	OutcomeFailed Outcome = "failed"
)

// Result carries the sheet outcome plus the provider's failure detail when
// the outcome is failed.
type Result struct {
	Outcome Outcome
	Reason  string
}

// Sheet presents a payment authorization flow to the customer and blocks
// until it resolves. Implementations wrap the provider SDK; tests use
// fakes.
type Sheet interface {
	Present(c context.Context, clientSecret string, amount decimal.Decimal) (Result, error)
}

// ConfirmFunc runs a hosted confirmation for a payment intent and returns
// the provider's status string plus an optional failure reason.
type ConfirmFunc func(c context.Context, clientSecret string, amount decimal.Decimal) (status, reason string, err error)

// HostedSheet resolves payment through the provider's hosted confirmation
// page instead of an embedded widget.
type HostedSheet struct {
	confirm ConfirmFunc
}

func NewHostedSheet(confirm ConfirmFunc) HostedSheet {
	return HostedSheet{confirm: confirm}
}

func (s HostedSheet) Present(
	c context.Context,
	clientSecret string,
	amount decimal.Decimal,
) (Result, error) {
	status, reason, err := s.confirm(c, clientSecret, amount)
	if err != nil {
		return Result{}, err
	}
	switch Outcome(status) {
	case OutcomeCompleted:
		return Result{Outcome: OutcomeCompleted}, nil
	case OutcomeCanceled:
		return Result{Outcome: OutcomeCanceled}, nil
	case OutcomeFailed:
		return Result{Outcome: OutcomeFailed, Reason: reason}, nil
	default:
		return Result{}, fmt.Errorf("unknown payment status=%s", status)
	}
}
