package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/greenbasket/grocer/checkout/internal/checkout"
	"github.com/greenbasket/grocer/checkout/internal/otel"
	"github.com/greenbasket/grocer/checkout/internal/payment"
	"github.com/greenbasket/grocer/checkout/internal/service"
	"github.com/greenbasket/grocer/checkout/pkg/request"
	inErrors "github.com/greenbasket/grocer/internal/errors"
	inHttp "github.com/greenbasket/grocer/internal/http"
	"github.com/greenbasket/grocer/internal/log"
	"github.com/greenbasket/grocer/internal/token"
)

type CheckoutController struct {
	service *service.CartService
}

func AttachCheckoutController(router *mux.Router, svc *service.CartService) {
	controller := CheckoutController{service: svc}
	router.HandleFunc("/checkout", controller.Checkout).Methods(http.MethodPost)
}

func (t CheckoutController) Checkout(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController Checkout").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.Checkout{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating requestbody").Logger()
	logger.Info().Msg("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("validated request body")

	userID, err := token.UserIDFromContext(c)
	if err != nil {
		err = fmt.Errorf("failed getting userId from jwtToken with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusUnauthorized,
			"message":    err.Error(),
		})
		return
	}

	logger = logger.With().
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyAddressID, reqBody.AddressID.String()).
		Str(log.KeyPaymentMethod, reqBody.PaymentMethod).
		Str(log.KeyProcess, "running checkout").
		Logger()
	logger.Info().Msg("running checkout")
	c = logger.WithContext(c)
	result, err := t.service.Checkout(c, userID, checkout.Request{
		AddressID: reqBody.AddressID,
		Method:    payment.Method(reqBody.PaymentMethod),
	})
	if err != nil {
		// a stock change is not a failure envelope only; the body also
		// carries the reconciliation report the customer must review
		if errors.Is(err, inErrors.ErrStockChanged) {
			logger.Info().
				Any(log.KeyStockChanges, result.StockReport).
				Msg("checkout stopped, cart changed during stock verification")
			inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
				"status":     "failed",
				"statusCode": http.StatusConflict,
				"message":    err.Error(),
				"data":       map[string]interface{}{"checkout": result},
			})
			return
		}
		err = fmt.Errorf("failed running checkout with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeFor(err),
			"message":    err.Error(),
		})
		return
	}
	if result.Canceled {
		logger.Info().Msg("checkout canceled at the payment sheet")
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "success",
			"statusCode": http.StatusOK,
			"message":    "checkout canceled",
			"data":       map[string]interface{}{"checkout": result},
		})
		return
	}
	logger.Info().Str(log.KeyOrderID, result.OrderID.String()).Msg("checkout completed")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    "order placed",
		"data":       map[string]interface{}{"checkout": result},
	})
}
