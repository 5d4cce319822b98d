package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/greenbasket/grocer/internal/config"
	inErrors "github.com/greenbasket/grocer/internal/errors"
	inHttp "github.com/greenbasket/grocer/internal/http"
	"github.com/greenbasket/grocer/internal/log"
	"github.com/greenbasket/grocer/internal/token"
)

// Client talks to the remote collaborators: the address service, the stock
// authority, the payment provider, and the order backend. Every response
// must arrive in the uniform envelope; anything else is treated as a
// malformed response, never coerced.
type Client struct {
	httpClient *http.Client
	cfg        config.Backend
}

func NewClient(cfg config.Backend) *Client {
	return &Client{
		httpClient: otelhttp.DefaultClient,
		cfg:        cfg,
	}
}

// envelope mirrors the backend contract. Success is a pointer so a missing
// key is distinguishable from false.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func (c *Client) do(
	ctx context.Context,
	method, url string,
	body interface{},
) (*envelope, int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()

	logger := zerolog.Ctx(ctx).
		With().
		Str(log.KeyTag, "BackendClient do").
		Str(log.KeyRequestMethod, method).
		Str(log.KeyRequestURI, url).
		Logger()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed marshaling request body with error=%w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed creating request with error=%w", err)
	}
	req.Header.Set(inHttp.KeyHeaderContentType, inHttp.ValueHeaderApplicationJson)
	if requestID := log.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set(inHttp.KeyHeaderRequestID, requestID)
	}
	if jwtToken := token.FromContext(ctx); jwtToken != nil {
		req.Header.Set(
			inHttp.KeyHeaderAuthorization,
			inHttp.ValueHeaderBearerPrefix+jwtToken.Raw,
		)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed calling backend with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, 0, err
	}
	defer resp.Body.Close()

	env := envelope{}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		err = fmt.Errorf("%w: %s", inErrors.ErrMalformedResponse, err.Error())
		logger.Error().Err(err).Msg(err.Error())
		return nil, resp.StatusCode, err
	}
	if env.Success == nil {
		err = fmt.Errorf("%w: missing success key", inErrors.ErrMalformedResponse)
		logger.Error().Err(err).Msg(err.Error())
		return nil, resp.StatusCode, err
	}
	return &env, resp.StatusCode, nil
}

// backendMessage prefers the envelope's error over its message over a
// generic fallback.
func backendMessage(env *envelope) string {
	if env.Error != "" {
		return env.Error
	}
	if env.Message != "" {
		return env.Message
	}
	return "backend rejected the request"
}

type StockQuery struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int64     `json:"quantity"`
}

type UnavailableItem struct {
	ProductID         uuid.UUID `json:"productId"`
	Name              string    `json:"name"`
	RequestedQuantity int64     `json:"requestedQuantity"`
	AvailableQuantity int64     `json:"availableQuantity"`
	Reason            string    `json:"reason"`
}

type StockVerification struct {
	AllAvailable bool              `json:"allAvailable"`
	Unavailable  []UnavailableItem `json:"unavailable"`
}

// VerifyStock cross-checks the requested quantities against the stock
// authority in one batched call.
func (c *Client) VerifyStock(
	ctx context.Context,
	items []StockQuery,
) (StockVerification, error) {
	env, _, err := c.do(
		ctx,
		http.MethodPost,
		c.cfg.StockURL+"/stock/verify",
		map[string]interface{}{"items": items},
	)
	if err != nil {
		return StockVerification{}, err
	}
	if !*env.Success {
		return StockVerification{}, fmt.Errorf(
			"failed verifying stock: %s", backendMessage(env),
		)
	}
	result := StockVerification{}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return StockVerification{}, fmt.Errorf(
			"%w: %s", inErrors.ErrMalformedResponse, err.Error(),
		)
	}
	return result, nil
}

type DeliveryQuote struct {
	Fee  decimal.Decimal `json:"fee"`
	Zone string          `json:"zone"`
}

// GetDeliveryCharge resolves the delivery quote for an address. A nil quote
// with a nil error means the address is not serviceable; that is a hard
// checkout gate, not a transport failure.
func (c *Client) GetDeliveryCharge(
	ctx context.Context,
	addressID uuid.UUID,
) (*DeliveryQuote, error) {
	url := fmt.Sprintf("%s/addresses/%s/delivery-quote", c.cfg.AddressURL, addressID)
	env, statusCode, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if !*env.Success {
		if statusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed getting delivery charge: %s", backendMessage(env))
	}
	quote := DeliveryQuote{}
	if err := json.Unmarshal(env.Data, &quote); err != nil {
		return nil, fmt.Errorf("%w: %s", inErrors.ErrMalformedResponse, err.Error())
	}
	return &quote, nil
}

type Address struct {
	ID        uuid.UUID `json:"id"`
	Line1     string    `json:"line_1"`
	Line2     string    `json:"line_2,omitempty"`
	Line3     string    `json:"line_3,omitempty"`
	PostTown  string    `json:"post_town"`
	Pincode   string    `json:"pincode"`
	County    string    `json:"county,omitempty"`
	Landmark  string    `json:"landmark,omitempty"`
	IsDefault bool      `json:"isDefault"`
}

// ListAddresses fetches the authenticated user's delivery addresses from the
// address service.
func (c *Client) ListAddresses(ctx context.Context) ([]Address, error) {
	env, _, err := c.do(ctx, http.MethodGet, c.cfg.AddressURL+"/addresses", nil)
	if err != nil {
		return nil, err
	}
	if !*env.Success {
		return nil, fmt.Errorf("failed listing addresses: %s", backendMessage(env))
	}
	addresses := []Address{}
	if err := json.Unmarshal(env.Data, &addresses); err != nil {
		return nil, fmt.Errorf("%w: %s", inErrors.ErrMalformedResponse, err.Error())
	}
	return addresses, nil
}

type PaymentIntentRequest struct {
	Amount         decimal.Decimal   `json:"amount"`
	Currency       string            `json:"currency"`
	IdempotencyKey uuid.UUID         `json:"idempotencyKey"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

type PaymentIntent struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

func (c *Client) CreatePaymentIntent(
	ctx context.Context,
	req PaymentIntentRequest,
) (PaymentIntent, error) {
	env, _, err := c.do(
		ctx,
		http.MethodPost,
		c.cfg.PaymentURL+"/payment-intents",
		req,
	)
	if err != nil {
		return PaymentIntent{}, err
	}
	if !*env.Success {
		return PaymentIntent{}, fmt.Errorf(
			"failed creating payment intent: %s", backendMessage(env),
		)
	}
	intent := PaymentIntent{}
	if err := json.Unmarshal(env.Data, &intent); err != nil {
		return PaymentIntent{}, fmt.Errorf(
			"%w: %s", inErrors.ErrMalformedResponse, err.Error(),
		)
	}
	return intent, nil
}

// HostedPaymentResult is the provider's verdict on a hosted confirmation.
// Status is one of completed, canceled or failed.
type HostedPaymentResult struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// ConfirmHostedPayment drives the provider's hosted confirmation flow for a
// previously created intent and reports how it ended.
func (c *Client) ConfirmHostedPayment(
	ctx context.Context,
	clientSecret string,
	amount decimal.Decimal,
) (HostedPaymentResult, error) {
	env, _, err := c.do(
		ctx,
		http.MethodPost,
		c.cfg.PaymentURL+"/payment-intents/confirm",
		map[string]interface{}{"clientSecret": clientSecret, "amount": amount},
	)
	if err != nil {
		return HostedPaymentResult{}, err
	}
	if !*env.Success {
		return HostedPaymentResult{}, fmt.Errorf(
			"failed confirming hosted payment: %s", backendMessage(env),
		)
	}
	result := HostedPaymentResult{}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return HostedPaymentResult{}, fmt.Errorf(
			"%w: %s", inErrors.ErrMalformedResponse, err.Error(),
		)
	}
	return result, nil
}

type OrderLine struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int64           `json:"quantity"`
}

type CreateOrderRequest struct {
	AddressID       uuid.UUID  `json:"addressId"`
	LineItems       []OrderLine `json:"lineItems"`
	PromoID         *uuid.UUID `json:"promoId,omitempty"`
	PaymentMethod   string     `json:"paymentMethod"`
	PaymentIntentID string     `json:"paymentIntentId,omitempty"`
	IdempotencyKey  uuid.UUID  `json:"idempotencyKey"`
}

type OrderResult struct {
	OrderID uuid.UUID `json:"orderId"`
}

// CreateOrder places the order on the non-online payment path.
func (c *Client) CreateOrder(
	ctx context.Context,
	req CreateOrderRequest,
) (OrderResult, error) {
	return c.placeOrder(ctx, c.cfg.OrderURL+"/orders", req)
}

// ConfirmPaymentAndCreateOrder places the order carrying a confirmed payment
// reference.
func (c *Client) ConfirmPaymentAndCreateOrder(
	ctx context.Context,
	req CreateOrderRequest,
) (OrderResult, error) {
	return c.placeOrder(ctx, c.cfg.OrderURL+"/orders/confirm-payment", req)
}

func (c *Client) placeOrder(
	ctx context.Context,
	url string,
	req CreateOrderRequest,
) (OrderResult, error) {
	env, _, err := c.do(ctx, http.MethodPost, url, req)
	if err != nil {
		return OrderResult{}, err
	}
	if !*env.Success {
		return OrderResult{}, fmt.Errorf(
			"%w: %s", inErrors.ErrOrderRejected, backendMessage(env),
		)
	}
	result := OrderResult{}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return OrderResult{}, fmt.Errorf(
			"%w: %s", inErrors.ErrMalformedResponse, err.Error(),
		)
	}
	return result, nil
}
