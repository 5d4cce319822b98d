package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/greenbasket/grocer/address/internal/otel"
	"github.com/greenbasket/grocer/address/internal/service"
	"github.com/greenbasket/grocer/address/pkg/request"
	inErrors "github.com/greenbasket/grocer/internal/errors"
	inHttp "github.com/greenbasket/grocer/internal/http"
	"github.com/greenbasket/grocer/internal/log"
	"github.com/greenbasket/grocer/internal/token"
)

type AddressController struct {
	service *service.AddressService
}

func AttachAddressController(router *mux.Router, svc *service.AddressService) {
	controller := AddressController{service: svc}

	addresses := router.PathPrefix("/addresses").Subrouter()
	addresses.HandleFunc("", controller.InsertAddress).Methods(http.MethodPost)
	addresses.HandleFunc("", controller.FindAddresses).Methods(http.MethodGet)
	addresses.HandleFunc("/{addressId}", controller.UpdateAddress).Methods(http.MethodPut)
	addresses.HandleFunc("/{addressId}", controller.DeleteAddress).Methods(http.MethodDelete)
	addresses.HandleFunc("/{addressId}/default", controller.SetDefaultAddress).
		Methods(http.MethodPut)
	addresses.HandleFunc("/{addressId}/delivery-quote", controller.FindDeliveryQuote).
		Methods(http.MethodGet)
}

// writeFailed emits the failure envelope. The success flag is part of the
// wire contract with the checkout service and must always be present.
func writeFailed(w http.ResponseWriter, r *http.Request, statusCode int, err error) {
	inHttp.WriteJsonResponse(r.Context(), w, map[string]string{}, map[string]interface{}{
		"success":    false,
		"status":     "failed",
		"statusCode": statusCode,
		"message":    err.Error(),
		"error":      err.Error(),
	})
}

func writeSuccess(w http.ResponseWriter, r *http.Request, statusCode int, message string, data interface{}) {
	inHttp.WriteJsonResponse(r.Context(), w, map[string]string{}, map[string]interface{}{
		"success":    true,
		"status":     "success",
		"statusCode": statusCode,
		"message":    message,
		"data":       data,
	})
}

func statusCodeFor(err error) int {
	switch {
	case errors.Is(err, inErrors.ErrAddressNotFound),
		errors.Is(err, inErrors.ErrNotServiceable):
		return http.StatusNotFound
	case errors.Is(err, inErrors.ErrEmptyAuth),
		errors.Is(err, inErrors.ErrTokenInvalid):
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}

func (t AddressController) InsertAddress(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AddressController InsertAddress")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AddressController InsertAddress").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.Address{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r, http.StatusBadRequest, err)
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
		writeFailed(w, r, http.StatusBadRequest, err)
		return
	}
	logger.Info().Msg("validated request body")

	userID, err := token.UserIDFromContext(c)
	if err != nil {
		err = fmt.Errorf("failed getting userId from jwtToken with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r, http.StatusUnauthorized, err)
		return
	}

	c = logger.WithContext(c)
	address, err := t.service.InsertAddress(c, reqBody, userID)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r, statusCodeFor(err), err)
		return
	}

	writeSuccess(w, r, http.StatusCreated, "address created", address)
}

func (t AddressController) FindAddresses(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AddressController FindAddresses")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AddressController FindAddresses").
		Logger()

	userID, err := token.UserIDFromContext(c)
	if err != nil {
		err = fmt.Errorf("failed getting userId from jwtToken with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r, http.StatusUnauthorized, err)
		return
	}

	c = logger.WithContext(c)
	addresses, err := t.service.FindAddresses(c, userID)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r, statusCodeFor(err), err)
		return
	}

	writeSuccess(w, r, http.StatusOK, "addresses found", addresses)
}

func (t AddressController) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AddressController UpdateAddress")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AddressController UpdateAddress").
		Logger()

	addressID, err := uuid.Parse(mux.Vars(r)["addressId"])
	if err != nil {
		err = fmt.Errorf("failed parsing addressId with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r, http.StatusBadRequest, err)
		return
	}

	reqBody := request.Address{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r, http.StatusBadRequest, err)
		return
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r, http.StatusBadRequest, err)
		return
	}

	userID, err := token.UserIDFromContext(c)
	if err != nil {
		err = fmt.Errorf("failed getting userId from jwtToken with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r, http.StatusUnauthorized, err)
		return
	}

	c = logger.WithContext(c)
	address, err := t.service.UpdateAddress(c, addressID, reqBody, userID)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r, statusCodeFor(err), err)
		return
	}

	writeSuccess(w, r, http.StatusOK, "address updated", address)
}

func (t AddressController) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AddressController DeleteAddress")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AddressController DeleteAddress").
		Logger()

	addressID, err := uuid.Parse(mux.Vars(r)["addressId"])
	if err != nil {
		err = fmt.Errorf("failed parsing addressId with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r, http.StatusBadRequest, err)
		return
	}

	userID, err := token.UserIDFromContext(c)
	if err != nil {
		err = fmt.Errorf("failed getting userId from jwtToken with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r, http.StatusUnauthorized, err)
		return
	}

	c = logger.WithContext(c)
	if err := t.service.DeleteAddress(c, addressID, userID); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r, statusCodeFor(err), err)
		return
	}

	writeSuccess(w, r, http.StatusOK, "address deleted", nil)
}

func (t AddressController) SetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AddressController SetDefaultAddress")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AddressController SetDefaultAddress").
		Logger()

	addressID, err := uuid.Parse(mux.Vars(r)["addressId"])
	if err != nil {
		err = fmt.Errorf("failed parsing addressId with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r, http.StatusBadRequest, err)
		return
	}

	userID, err := token.UserIDFromContext(c)
	if err != nil {
		err = fmt.Errorf("failed getting userId from jwtToken with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r, http.StatusUnauthorized, err)
		return
	}

	c = logger.WithContext(c)
	address, err := t.service.SetDefaultAddress(c, addressID, userID)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r, statusCodeFor(err), err)
		return
	}

	writeSuccess(w, r, http.StatusOK, "default address set", address)
}

func (t AddressController) FindDeliveryQuote(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AddressController FindDeliveryQuote")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AddressController FindDeliveryQuote").
		Logger()

	addressID, err := uuid.Parse(mux.Vars(r)["addressId"])
	if err != nil {
		err = fmt.Errorf("failed parsing addressId with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r, http.StatusBadRequest, err)
		return
	}

	userID, err := token.UserIDFromContext(c)
	if err != nil {
		err = fmt.Errorf("failed getting userId from jwtToken with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r, http.StatusUnauthorized, err)
		return
	}

	c = logger.WithContext(c)
	quote, err := t.service.FindDeliveryQuote(c, addressID, userID)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r, statusCodeFor(err), err)
		return
	}

	writeSuccess(w, r, http.StatusOK, "delivery quote found", quote)
}
