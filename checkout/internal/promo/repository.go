package promo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	inErrors "github.com/greenbasket/grocer/internal/errors"
	"github.com/greenbasket/grocer/internal/log"
)

// Repository looks up offer codes. The checkout service owns the offers
// table; there is no remote call involved.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const findByCodeQuery = `
select id, code, status, minimum_order, percentage_off, fixed_amount_off
from offers
where code = $1`

func (r *Repository) FindByCode(c context.Context, code string) (PromoCode, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PromoRepository FindByCode").
		Str(log.KeyPromoCode, code).
		Logger()

	row := r.pool.QueryRow(c, findByCodeQuery, code)
	promo := PromoCode{}
	err := row.Scan(
		&promo.ID,
		&promo.Code,
		&promo.Status,
		&promo.MinimumOrder,
		&promo.PercentageOff,
		&promo.FixedAmountOff,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Info().Msg("promo code not found")
			return PromoCode{}, inErrors.ErrPromoNotFound
		}
		err = fmt.Errorf("failed finding promo code=%s with error=%w", code, err)
		logger.Error().Err(err).Msg(err.Error())
		return PromoCode{}, err
	}
	return promo, nil
}

const listActiveQuery = `
select id, code, status, minimum_order, percentage_off, fixed_amount_off
from offers
where status = 'active'
order by code`

func (r *Repository) ListActive(c context.Context) ([]PromoCode, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PromoRepository ListActive").
		Logger()

	rows, err := r.pool.Query(c, listActiveQuery)
	if err != nil {
		err = fmt.Errorf("failed listing active promo codes with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	defer rows.Close()

	promos := []PromoCode{}
	for rows.Next() {
		promo := PromoCode{}
		err = rows.Scan(
			&promo.ID,
			&promo.Code,
			&promo.Status,
			&promo.MinimumOrder,
			&promo.PercentageOff,
			&promo.FixedAmountOff,
		)
		if err != nil {
			err = fmt.Errorf("failed scanning promo code with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		promos = append(promos, promo)
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("failed iterating promo codes with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	return promos, nil
}
