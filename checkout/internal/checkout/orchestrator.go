package checkout

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/greenbasket/grocer/checkout/internal/backend"
	"github.com/greenbasket/grocer/checkout/internal/cart"
	"github.com/greenbasket/grocer/checkout/internal/payment"
	"github.com/greenbasket/grocer/checkout/internal/stock"
	inErrors "github.com/greenbasket/grocer/internal/errors"
	"github.com/greenbasket/grocer/internal/log"
)

// Stage identifies where in the checkout pipeline an attempt is. Stages are
// strictly ordered; an attempt either walks them forward or stops.
type Stage string

const (
	StageIdle          Stage = "idle"
	StagePreconditions Stage = "preconditions"
	StageDeliveryQuote Stage = "delivery_quote"
	StageStockVerify   Stage = "stock_verify"
	StagePayment       Stage = "payment"
	StageOrderCreate   Stage = "order_create"
	StageDone          Stage = "done"
)

// Backend is the slice of the collaborator client the orchestrator drives.
type Backend interface {
	stock.Verifier
	ListAddresses(c context.Context) ([]backend.Address, error)
	GetDeliveryCharge(c context.Context, addressID uuid.UUID) (*backend.DeliveryQuote, error)
	CreatePaymentIntent(c context.Context, req backend.PaymentIntentRequest) (backend.PaymentIntent, error)
	CreateOrder(c context.Context, req backend.CreateOrderRequest) (backend.OrderResult, error)
	ConfirmPaymentAndCreateOrder(c context.Context, req backend.CreateOrderRequest) (backend.OrderResult, error)
}

// Request is one checkout attempt's inputs.
type Request struct {
	AddressID uuid.UUID
	Method    payment.Method
}

// Result is the terminal state of one attempt.
//
// Exactly one of the terminal shapes holds: OrderID set on success,
// Canceled true when the customer dismissed the payment sheet, or
// StockReport non-clean when reconciliation changed the cart and the
// attempt stopped for review. Summary always reflects the cart as the
// attempt left it.
type Result struct {
	OrderID      uuid.UUID    `json:"orderId,omitempty"`
	Canceled     bool         `json:"canceled,omitempty"`
	StockReport  stock.Report `json:"stockReport"`
	PromoDropped bool         `json:"promoDropped,omitempty"`
	Summary      cart.Summary `json:"summary"`
}

// Orchestrator runs checkout attempts for a single user's cart. At most one
// attempt may be in flight at a time.
type Orchestrator struct {
	backend  Backend
	sheet    payment.Sheet
	currency string
	inFlight atomic.Bool
}

func NewOrchestrator(b Backend, sheet payment.Sheet, currency string) *Orchestrator {
	return &Orchestrator{backend: b, sheet: sheet, currency: currency}
}

// Checkout walks one attempt through the pipeline. The cart is cleared only
// when the order lands; every other exit leaves the cart as the stock
// reconciliation left it.
func (o *Orchestrator) Checkout(
	c context.Context,
	store *cart.Store,
	req Request,
) (Result, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return Result{}, inErrors.ErrCheckoutInFlight
	}
	defer o.inFlight.Store(false)

	attemptID := uuid.New()
	idempotencyKey := uuid.New()
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Checkout").
		Str(log.KeyAttemptID, attemptID.String()).
		Str(log.KeyIdempotencyKey, idempotencyKey.String()).
		Str(log.KeyAddressID, req.AddressID.String()).
		Str(log.KeyPaymentMethod, string(req.Method)).
		Logger()
	c = logger.WithContext(c)

	logger = logger.With().Str(log.KeyStage, string(StagePreconditions)).Logger()
	logger.Info().Msg("checking checkout preconditions")
	if store.Len() == 0 {
		return Result{}, inErrors.ErrCartEmpty
	}
	if req.AddressID == uuid.Nil {
		return Result{}, inErrors.ErrNoAddress
	}
	addresses, err := o.backend.ListAddresses(c)
	if err != nil {
		err = fmt.Errorf("failed listing addresses with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return Result{}, err
	}
	if len(addresses) == 0 {
		return Result{}, inErrors.ErrNoAddress
	}

	logger = logger.With().Str(log.KeyStage, string(StageDeliveryQuote)).Logger()
	logger.Info().Msg("resolving delivery quote")
	quote, err := o.backend.GetDeliveryCharge(c, req.AddressID)
	if err != nil {
		err = fmt.Errorf("failed resolving delivery quote with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return Result{}, err
	}
	if quote == nil {
		logger.Info().Msg("address is outside every delivery zone")
		return Result{}, inErrors.ErrNotServiceable
	}
	logger.Info().
		Str(log.KeyDeliveryZone, quote.Zone).
		Str(log.KeyDeliveryFee, quote.Fee.String()).
		Msg("resolved delivery quote")

	logger = logger.With().Str(log.KeyStage, string(StageStockVerify)).Logger()
	logger.Info().Msg("reconciling cart against stock")
	report, err := stock.Reconcile(c, o.backend, store)
	if err != nil {
		return Result{}, err
	}
	promoDropped := revalidatePromo(store)
	summary := store.Summary(quote.Fee)
	if !report.Clean() {
		// The report is kept even when reconciliation removed every line;
		// the customer still sees what disappeared and why.
		logger.Info().
			Any(log.KeyStockChanges, report).
			Msg("stock reconciliation changed the cart, stopping for review")
		return Result{StockReport: report, PromoDropped: promoDropped, Summary: summary},
			inErrors.ErrStockChanged
	}

	orderReq := backend.CreateOrderRequest{
		AddressID:      req.AddressID,
		LineItems:      orderLines(summary.Items),
		PaymentMethod:  string(req.Method),
		IdempotencyKey: idempotencyKey,
	}
	if applied := store.AppliedPromo(); applied != nil {
		promoID := applied.ID
		orderReq.PromoID = &promoID
	}

	var placed backend.OrderResult
	if req.Method == payment.MethodOnline {
		logger = logger.With().Str(log.KeyStage, string(StagePayment)).Logger()
		logger.Info().Msg("creating payment intent")
		intent, err := o.backend.CreatePaymentIntent(c, backend.PaymentIntentRequest{
			Amount:         summary.Breakdown.GrandTotal,
			Currency:       o.currency,
			IdempotencyKey: idempotencyKey,
			Metadata:       map[string]string{"attemptId": attemptID.String()},
		})
		if err != nil {
			err = fmt.Errorf("failed creating payment intent with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return Result{}, err
		}
		logger = logger.With().Str(log.KeyPaymentIntentID, intent.PaymentIntentID).Logger()

		logger.Info().Msg("presenting payment sheet")
		sheetResult, err := o.sheet.Present(c, intent.ClientSecret, summary.Breakdown.GrandTotal)
		if err != nil {
			err = fmt.Errorf("failed presenting payment sheet with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return Result{}, err
		}
		switch sheetResult.Outcome {
		case payment.OutcomeCanceled:
			logger.Info().Msg("customer dismissed the payment sheet")
			return Result{Canceled: true, StockReport: report, Summary: summary}, nil
		case payment.OutcomeFailed:
			err := fmt.Errorf("payment failed: %s", sheetResult.Reason)
			logger.Error().Err(err).Msg(err.Error())
			return Result{}, err
		}

		logger = logger.With().Str(log.KeyStage, string(StageOrderCreate)).Logger()
		logger.Info().Msg("confirming payment and creating order")
		orderReq.PaymentIntentID = intent.PaymentIntentID
		placed, err = o.backend.ConfirmPaymentAndCreateOrder(c, orderReq)
		if err != nil {
			err = fmt.Errorf("failed creating order after payment capture with error=%w", err)
			logger.Error().
				Err(err).
				Bool(log.KeyPaymentOrphaned, true).
				Msg(err.Error())
			return Result{}, err
		}
	} else {
		logger = logger.With().Str(log.KeyStage, string(StageOrderCreate)).Logger()
		logger.Info().Msg("creating order")
		placed, err = o.backend.CreateOrder(c, orderReq)
		if err != nil {
			err = fmt.Errorf("failed creating order with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return Result{}, err
		}
	}

	store.Clear()
	logger = logger.With().Str(log.KeyStage, string(StageDone)).Logger()
	logger.Info().Str(log.KeyOrderID, placed.OrderID.String()).Msg("checkout completed")
	return Result{OrderID: placed.OrderID, StockReport: report, Summary: summary}, nil
}

// revalidatePromo drops an applied promo that the post-reconciliation
// subtotal no longer qualifies for. Returns true when a promo was dropped.
func revalidatePromo(store *cart.Store) bool {
	applied := store.AppliedPromo()
	if applied == nil {
		return false
	}
	subtotal := store.Summary(decimal.Zero).Breakdown.Subtotal
	if err := applied.Validate(subtotal); err != nil {
		store.ClearPromo()
		return true
	}
	return false
}

func orderLines(items []cart.LineItem) []backend.OrderLine {
	lines := make([]backend.OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, backend.OrderLine{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.SellingPrice,
			Quantity:  item.Quantity,
		})
	}
	return lines
}
