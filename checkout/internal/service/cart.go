package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/greenbasket/grocer/checkout/internal/cache"
	"github.com/greenbasket/grocer/checkout/internal/cart"
	"github.com/greenbasket/grocer/checkout/internal/checkout"
	"github.com/greenbasket/grocer/checkout/internal/otel"
	"github.com/greenbasket/grocer/checkout/internal/promo"
	inErrors "github.com/greenbasket/grocer/internal/errors"
	"github.com/greenbasket/grocer/internal/log"
)

// CartService owns the per-user session carts. The in-memory store is the
// source of truth while the service runs; every mutation is snapshotted to
// redis so a restart restores the cart. Snapshot failures are logged and
// swallowed, never surfaced to the customer.
type CartService struct {
	registry       *Registry
	promos         *promo.Repository
	cache          *redis.Client
	snapshotExpiry time.Duration
}

func NewCartService(
	registry *Registry,
	promos *promo.Repository,
	cacheClient *redis.Client,
	snapshotExpiry time.Duration,
) CartService {
	return CartService{
		registry:       registry,
		promos:         promos,
		cache:          cacheClient,
		snapshotExpiry: snapshotExpiry,
	}
}

func (s CartService) GetCart(c context.Context, userID uuid.UUID) (cart.Summary, error) {
	c, span := otel.Tracer.Start(c, "CartService GetCart")
	defer span.End()

	store, err := s.storeFor(c, userID)
	if err != nil {
		return cart.Summary{}, err
	}
	return store.Summary(decimal.Zero), nil
}

func (s CartService) AddItem(
	c context.Context,
	userID uuid.UUID,
	item cart.LineItem,
	quantity int64,
) (cart.Summary, error) {
	c, span := otel.Tracer.Start(c, "CartService AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddItem").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProductID, item.ProductID.String()).
		Logger()

	store, err := s.storeFor(c, userID)
	if err != nil {
		return cart.Summary{}, err
	}

	logger.Info().Msgf("adding productId=%s quantity=%d to cart", item.ProductID, quantity)
	store.AddItem(item, quantity)
	s.persist(c, userID, store)
	logger.Info().Msgf("added productId=%s to cart", item.ProductID)
	return store.Summary(decimal.Zero), nil
}

func (s CartService) UpdateQuantity(
	c context.Context,
	userID, productID uuid.UUID,
	quantity int64,
) (cart.Summary, error) {
	c, span := otel.Tracer.Start(c, "CartService UpdateQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService UpdateQuantity").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProductID, productID.String()).
		Logger()

	store, err := s.storeFor(c, userID)
	if err != nil {
		return cart.Summary{}, err
	}

	logger.Info().Msgf("updating productId=%s to quantity=%d", productID, quantity)
	store.UpdateQuantity(productID, quantity)
	s.persist(c, userID, store)
	return store.Summary(decimal.Zero), nil
}

func (s CartService) RemoveItem(
	c context.Context,
	userID, productID uuid.UUID,
) (cart.Summary, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	store, err := s.storeFor(c, userID)
	if err != nil {
		return cart.Summary{}, err
	}
	store.RemoveItem(productID)
	s.persist(c, userID, store)
	return store.Summary(decimal.Zero), nil
}

func (s CartService) ClearCart(c context.Context, userID uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "CartService ClearCart")
	defer span.End()

	store, err := s.storeFor(c, userID)
	if err != nil {
		return err
	}
	store.Clear()
	s.persist(c, userID, store)
	return nil
}

// ApplyPromo looks the code up, validates it against the current subtotal,
// and applies it. A failed validation leaves any previously applied promo
// untouched.
func (s CartService) ApplyPromo(
	c context.Context,
	userID uuid.UUID,
	code string,
) (cart.Summary, error) {
	c, span := otel.Tracer.Start(c, "CartService ApplyPromo")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService ApplyPromo").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyPromoCode, code).
		Logger()

	store, err := s.storeFor(c, userID)
	if err != nil {
		return cart.Summary{}, err
	}

	logger = logger.With().
		Str(log.KeyProcess, fmt.Sprintf("finding promo code=%s", code)).
		Logger()
	logger.Info().Msgf("finding promo code=%s", code)
	promoCode, err := s.promos.FindByCode(c, code)
	if err != nil {
		err = fmt.Errorf("failed finding promo code=%s with error=%w", code, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return cart.Summary{}, err
	}

	subtotal := store.Summary(decimal.Zero).Breakdown.Subtotal
	if err := promoCode.Validate(subtotal); err != nil {
		inErrors.HandleError(err, span)
		logger.Info().Err(err).Msgf("promo code=%s is not applicable", code)
		return cart.Summary{}, err
	}

	store.SetPromo(promoCode)
	s.persist(c, userID, store)
	logger.Info().Msgf("applied promo code=%s", code)
	return store.Summary(decimal.Zero), nil
}

func (s CartService) RemovePromo(c context.Context, userID uuid.UUID) (cart.Summary, error) {
	c, span := otel.Tracer.Start(c, "CartService RemovePromo")
	defer span.End()

	store, err := s.storeFor(c, userID)
	if err != nil {
		return cart.Summary{}, err
	}
	store.ClearPromo()
	s.persist(c, userID, store)
	return store.Summary(decimal.Zero), nil
}

func (s CartService) ListPromos(c context.Context) ([]promo.PromoCode, error) {
	c, span := otel.Tracer.Start(c, "CartService ListPromos")
	defer span.End()
	return s.promos.ListActive(c)
}

// Checkout runs one attempt on the user's cart and persists whatever state
// the attempt left behind.
func (s CartService) Checkout(
	c context.Context,
	userID uuid.UUID,
	req checkout.Request,
) (checkout.Result, error) {
	c, span := otel.Tracer.Start(c, "CartService Checkout")
	defer span.End()

	store, err := s.storeFor(c, userID)
	if err != nil {
		return checkout.Result{}, err
	}

	result, err := s.registry.orchestratorFor(userID).Checkout(c, store, req)
	s.persist(c, userID, store)
	if err != nil {
		inErrors.HandleError(err, span)
		return result, err
	}
	return result, nil
}

// storeFor returns the user's live cart, rebuilding it from the redis
// snapshot after a restart.
func (s CartService) storeFor(c context.Context, userID uuid.UUID) (*cart.Store, error) {
	store, _ := s.registry.storeFor(userID, func() *cart.Store {
		return s.loadSnapshot(c, userID)
	})
	return store, nil
}

func (s CartService) loadSnapshot(c context.Context, userID uuid.UUID) *cart.Store {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService loadSnapshot").
		Str(log.KeyUserID, userID.String()).
		Logger()

	cacheKey := fmt.Sprintf(cache.KeyCartByUserID, userID.String())
	payload, err := s.cache.Get(c, cacheKey).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Error().Err(err).Str(log.KeyCacheKey, cacheKey).
				Msgf("failed loading cart snapshot with error=%s", err.Error())
		}
		return cart.NewStore()
	}

	snapshot := cart.Snapshot{}
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		logger.Error().Err(err).Str(log.KeyCacheKey, cacheKey).
			Msgf("failed decoding cart snapshot with error=%s", err.Error())
		return cart.NewStore()
	}
	logger.Info().Str(log.KeyCacheKey, cacheKey).Msg("restored cart from snapshot")
	return cart.FromSnapshot(snapshot)
}

// persist writes the cart snapshot through to redis. Failures are logged and
// dropped; the in-memory cart stays authoritative.
func (s CartService) persist(c context.Context, userID uuid.UUID, store *cart.Store) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService persist").
		Str(log.KeyUserID, userID.String()).
		Logger()

	payload, err := json.Marshal(store.Snapshot())
	if err != nil {
		logger.Error().Err(err).
			Msgf("failed encoding cart snapshot with error=%s", err.Error())
		return
	}
	cacheKey := fmt.Sprintf(cache.KeyCartByUserID, userID.String())
	if err := s.cache.Set(c, cacheKey, payload, s.snapshotExpiry).Err(); err != nil {
		logger.Error().Err(err).Str(log.KeyCacheKey, cacheKey).
			Msgf("failed persisting cart snapshot with error=%s", err.Error())
	}
}
