package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbasket/grocer/internal/config"
	inErrors "github.com/greenbasket/grocer/internal/errors"
	inHttp "github.com/greenbasket/grocer/internal/http"
	"github.com/greenbasket/grocer/internal/log"
)

func testClient(serverURL string) *Client {
	return NewClient(config.Backend{
		AddressURL:  serverURL,
		StockURL:    serverURL,
		OrderURL:    serverURL,
		PaymentURL:  serverURL,
		CallTimeout: 5 * time.Second,
		Currency:    "GBP",
	})
}

func TestVerifyStockDecodesVerification(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	var gotBody map[string]interface{}
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/stock/verify", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"allAvailable": false,
					"unavailable": []map[string]interface{}{
						{
							"productId":         productID,
							"name":              "Whole Milk 2L",
							"requestedQuantity": 5,
							"availableQuantity": 2,
							"reason":            "insufficient stock",
						},
					},
				},
			})
		}),
	)
	defer server.Close()

	verification, err := testClient(server.URL).VerifyStock(
		context.Background(),
		[]StockQuery{{ProductID: productID, Quantity: 5}},
	)
	require.NoError(t, err)
	assert.False(t, verification.AllAvailable)
	require.Len(t, verification.Unavailable, 1)
	assert.Equal(t, productID, verification.Unavailable[0].ProductID)
	assert.Equal(t, int64(2), verification.Unavailable[0].AvailableQuantity)
	assert.Len(t, gotBody["items"], 1)
}

func TestMissingSuccessKeyIsMalformed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]interface{}{"allAvailable": true},
			})
		}),
	)
	defer server.Close()

	_, err := testClient(server.URL).VerifyStock(
		context.Background(),
		[]StockQuery{{ProductID: uuid.New(), Quantity: 1}},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, inErrors.ErrMalformedResponse)
}

func TestNonBooleanSuccessIsMalformed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success": "yes", "data": {}}`))
		}),
	)
	defer server.Close()

	_, err := testClient(server.URL).VerifyStock(
		context.Background(),
		[]StockQuery{{ProductID: uuid.New(), Quantity: 1}},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, inErrors.ErrMalformedResponse)
}

func TestNonJSONBodyIsMalformed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("<html>502 Bad Gateway</html>"))
		}),
	)
	defer server.Close()

	_, err := testClient(server.URL).GetDeliveryCharge(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, inErrors.ErrMalformedResponse)
}

func TestGetDeliveryChargeNotServiceable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"error":   "no delivery zone covers this pincode",
			})
		}),
	)
	defer server.Close()

	quote, err := testClient(server.URL).GetDeliveryCharge(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, quote)
}

func TestGetDeliveryChargeDecodesQuote(t *testing.T) {
	t.Parallel()

	addressID := uuid.New()
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/addresses/"+addressID.String()+"/delivery-quote", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data":    map[string]interface{}{"fee": "4.99", "zone": "inner"},
			})
		}),
	)
	defer server.Close()

	quote, err := testClient(server.URL).GetDeliveryCharge(context.Background(), addressID)
	require.NoError(t, err)
	require.NotNil(t, quote)
	assert.True(t, decimal.NewFromFloat(4.99).Equal(quote.Fee))
	assert.Equal(t, "inner", quote.Zone)
}

func TestPlaceOrderRejectionCarriesBackendError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"error":   "item pricing changed",
			})
		}),
	)
	defer server.Close()

	_, err := testClient(server.URL).CreateOrder(context.Background(), CreateOrderRequest{
		AddressID:      uuid.New(),
		IdempotencyKey: uuid.New(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, inErrors.ErrOrderRejected)
	assert.ErrorContains(t, err, "item pricing changed")
}

func TestRequestIDHeaderIsForwarded(t *testing.T) {
	t.Parallel()

	var gotRequestID string
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotRequestID = r.Header.Get(inHttp.KeyHeaderRequestID)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data":    []interface{}{},
			})
		}),
	)
	defer server.Close()

	requestID := uuid.NewString()
	c := log.AttachRequestIDToContext(context.Background(), requestID)
	_, err := testClient(server.URL).ListAddresses(c)
	require.NoError(t, err)
	assert.Equal(t, requestID, gotRequestID)
}

func TestCreatePaymentIntentSendsAmountAndKey(t *testing.T) {
	t.Parallel()

	idempotencyKey := uuid.New()
	var gotBody map[string]interface{}
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/payment-intents", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"clientSecret":    "pi_secret_123",
					"paymentIntentId": "pi_123",
				},
			})
		}),
	)
	defer server.Close()

	intent, err := testClient(server.URL).CreatePaymentIntent(
		context.Background(),
		PaymentIntentRequest{
			Amount:         decimal.RequireFromString("103.00"),
			Currency:       "GBP",
			IdempotencyKey: idempotencyKey,
		},
	)
	require.NoError(t, err)
	assert.Equal(t, "pi_123", intent.PaymentIntentID)
	assert.Equal(t, "pi_secret_123", intent.ClientSecret)
	assert.Equal(t, "103", gotBody["amount"])
	assert.Equal(t, idempotencyKey.String(), gotBody["idempotencyKey"])
}
