package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/greenbasket/grocer/address/internal/otel"
	"github.com/greenbasket/grocer/address/internal/repository"
	"github.com/greenbasket/grocer/address/pkg/request"
	"github.com/greenbasket/grocer/address/pkg/response"
	inErrors "github.com/greenbasket/grocer/internal/errors"
	"github.com/greenbasket/grocer/internal/log"
)

type AddressService struct {
	addresses *repository.AddressRepository
}

func NewAddressService(addresses *repository.AddressRepository) AddressService {
	return AddressService{addresses: addresses}
}

func toResponse(a repository.Address) response.Address {
	return response.Address{
		ID:        a.ID,
		Line1:     a.Line1,
		Line2:     a.Line2,
		Line3:     a.Line3,
		PostTown:  a.PostTown,
		Pincode:   a.Pincode,
		County:    a.County,
		Landmark:  a.Landmark,
		IsDefault: a.IsDefault,
	}
}

func (s AddressService) InsertAddress(
	c context.Context,
	param request.Address,
	userID uuid.UUID,
) (response.Address, error) {
	c, span := otel.Tracer.Start(c, "AddressService InsertAddress")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AddressService InsertAddress").
		Str(log.KeyUserID, userID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "inserting address").Logger()
	logger.Info().Msg("inserting address")
	inserted, err := s.addresses.Insert(c, repository.Address{
		UserID:   userID,
		Line1:    param.Line1,
		Line2:    param.Line2,
		Line3:    param.Line3,
		PostTown: param.PostTown,
		Pincode:  param.Pincode,
		County:   param.County,
		Landmark: param.Landmark,
	})
	if err != nil {
		err = fmt.Errorf("failed inserting address with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Address{}, err
	}
	logger.Info().Str(log.KeyAddressID, inserted.ID.String()).Msg("inserted address")
	return toResponse(inserted), nil
}

func (s AddressService) FindAddresses(
	c context.Context,
	userID uuid.UUID,
) ([]response.Address, error) {
	c, span := otel.Tracer.Start(c, "AddressService FindAddresses")
	defer span.End()

	addresses, err := s.addresses.FindByUserID(c, userID)
	if err != nil {
		inErrors.HandleError(err, span)
		return nil, err
	}
	out := make([]response.Address, 0, len(addresses))
	for _, a := range addresses {
		out = append(out, toResponse(a))
	}
	return out, nil
}

func (s AddressService) UpdateAddress(
	c context.Context,
	id uuid.UUID,
	param request.Address,
	userID uuid.UUID,
) (response.Address, error) {
	c, span := otel.Tracer.Start(c, "AddressService UpdateAddress")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AddressService UpdateAddress").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyAddressID, id.String()).
		Logger()

	logger.Info().Msg("updating address")
	updated, err := s.addresses.Update(c, repository.Address{
		ID:       id,
		UserID:   userID,
		Line1:    param.Line1,
		Line2:    param.Line2,
		Line3:    param.Line3,
		PostTown: param.PostTown,
		Pincode:  param.Pincode,
		County:   param.County,
		Landmark: param.Landmark,
	})
	if err != nil {
		err = fmt.Errorf("failed updating address with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Address{}, err
	}
	logger.Info().Msg("updated address")
	return toResponse(updated), nil
}

func (s AddressService) DeleteAddress(c context.Context, id, userID uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "AddressService DeleteAddress")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AddressService DeleteAddress").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyAddressID, id.String()).
		Logger()

	logger.Info().Msg("deleting address")
	if err := s.addresses.Delete(c, id, userID); err != nil {
		err = fmt.Errorf("failed deleting address with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted address")
	return nil
}

func (s AddressService) SetDefaultAddress(
	c context.Context,
	id, userID uuid.UUID,
) (response.Address, error) {
	c, span := otel.Tracer.Start(c, "AddressService SetDefaultAddress")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AddressService SetDefaultAddress").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyAddressID, id.String()).
		Logger()

	logger.Info().Msg("setting default address")
	a, err := s.addresses.SetDefault(c, id, userID)
	if err != nil {
		err = fmt.Errorf("failed setting default address with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Address{}, err
	}
	logger.Info().Msg("set default address")
	return toResponse(a), nil
}

func (s AddressService) FindDeliveryQuote(
	c context.Context,
	addressID, userID uuid.UUID,
) (response.DeliveryQuote, error) {
	c, span := otel.Tracer.Start(c, "AddressService FindDeliveryQuote")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AddressService FindDeliveryQuote").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyAddressID, addressID.String()).
		Logger()

	logger.Info().Msg("finding delivery zone")
	zone, err := s.addresses.FindDeliveryZone(c, addressID, userID)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msgf("failed finding delivery zone with error=%s", err.Error())
		return response.DeliveryQuote{}, err
	}
	logger.Info().
		Str(log.KeyDeliveryZone, zone.Zone).
		Str(log.KeyDeliveryFee, zone.DeliveryFee.String()).
		Msg("found delivery zone")
	return response.DeliveryQuote{Fee: zone.DeliveryFee, Zone: zone.Zone}, nil
}
