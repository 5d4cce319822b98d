package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	inErrors "github.com/greenbasket/grocer/internal/errors"
)

type Address struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Line1     string    `json:"line_1"`
	Line2     string    `json:"line_2,omitempty"`
	Line3     string    `json:"line_3,omitempty"`
	PostTown  string    `json:"post_town"`
	Pincode   string    `json:"pincode"`
	County    string    `json:"county,omitempty"`
	Landmark  string    `json:"landmark,omitempty"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type DeliveryZone struct {
	Zone        string          `json:"zone"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
}

type AddressRepository struct {
	pool *pgxpool.Pool
}

func NewAddressRepository(pool *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{pool: pool}
}

const addressColumns = `id, user_id, line_1, line_2, line_3, post_town, pincode, county, landmark, is_default, created_at, updated_at`

func scanAddress(row pgx.Row) (Address, error) {
	a := Address{}
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Line1,
		&a.Line2,
		&a.Line3,
		&a.PostTown,
		&a.Pincode,
		&a.County,
		&a.Landmark,
		&a.IsDefault,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

// Insert stores a new address. The first address a user saves becomes the
// default automatically.
func (r *AddressRepository) Insert(c context.Context, a Address) (Address, error) {
	query := `
		insert into addresses (user_id, line_1, line_2, line_3, post_town, pincode, county, landmark, is_default)
		values ($1, $2, $3, $4, $5, $6, $7, $8,
			not exists (select 1 from addresses where user_id = $1))
		returning ` + addressColumns
	inserted, err := scanAddress(r.pool.QueryRow(
		c,
		query,
		a.UserID,
		a.Line1,
		a.Line2,
		a.Line3,
		a.PostTown,
		a.Pincode,
		a.County,
		a.Landmark,
	))
	if err != nil {
		return Address{}, fmt.Errorf("failed inserting address with error=%w", err)
	}
	return inserted, nil
}

func (r *AddressRepository) FindByUserID(c context.Context, userID uuid.UUID) ([]Address, error) {
	query := `select ` + addressColumns + `
		from addresses
		where user_id = $1
		order by is_default desc, created_at asc`
	rows, err := r.pool.Query(c, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed finding addresses with error=%w", err)
	}
	defer rows.Close()

	addresses := []Address{}
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed scanning address with error=%w", err)
		}
		addresses = append(addresses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading addresses with error=%w", err)
	}
	return addresses, nil
}

func (r *AddressRepository) FindByID(c context.Context, id, userID uuid.UUID) (Address, error) {
	query := `select ` + addressColumns + ` from addresses where id = $1 and user_id = $2`
	a, err := scanAddress(r.pool.QueryRow(c, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Address{}, inErrors.ErrAddressNotFound
		}
		return Address{}, fmt.Errorf("failed finding address with error=%w", err)
	}
	return a, nil
}

func (r *AddressRepository) Update(c context.Context, a Address) (Address, error) {
	query := `
		update addresses
		set line_1 = $3, line_2 = $4, line_3 = $5, post_town = $6, pincode = $7,
			county = $8, landmark = $9, updated_at = now()
		where id = $1 and user_id = $2
		returning ` + addressColumns
	updated, err := scanAddress(r.pool.QueryRow(
		c,
		query,
		a.ID,
		a.UserID,
		a.Line1,
		a.Line2,
		a.Line3,
		a.PostTown,
		a.Pincode,
		a.County,
		a.Landmark,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Address{}, inErrors.ErrAddressNotFound
		}
		return Address{}, fmt.Errorf("failed updating address with error=%w", err)
	}
	return updated, nil
}

// Delete removes the address. When the deleted address was the default, the
// oldest remaining address is promoted so the user never silently loses
// their default.
func (r *AddressRepository) Delete(c context.Context, id, userID uuid.UUID) error {
	tx, err := r.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed beginning transaction with error=%w", err)
	}
	defer func() {
		_ = tx.Rollback(c)
	}()

	var wasDefault bool
	err = tx.QueryRow(
		c,
		`delete from addresses where id = $1 and user_id = $2 returning is_default`,
		id,
		userID,
	).Scan(&wasDefault)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return inErrors.ErrAddressNotFound
		}
		return fmt.Errorf("failed deleting address with error=%w", err)
	}

	if wasDefault {
		_, err = tx.Exec(c, `
			update addresses
			set is_default = true, updated_at = now()
			where id = (
				select id from addresses
				where user_id = $1
				order by created_at asc
				limit 1
			)`, userID)
		if err != nil {
			return fmt.Errorf("failed promoting replacement default address with error=%w", err)
		}
	}

	if err := tx.Commit(c); err != nil {
		return fmt.Errorf("failed committing transaction with error=%w", err)
	}
	return nil
}

// SetDefault flips the default flag to the given address in one
// transaction, so there is never a moment with two defaults or none.
func (r *AddressRepository) SetDefault(c context.Context, id, userID uuid.UUID) (Address, error) {
	tx, err := r.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		return Address{}, fmt.Errorf("failed beginning transaction with error=%w", err)
	}
	defer func() {
		_ = tx.Rollback(c)
	}()

	_, err = tx.Exec(
		c,
		`update addresses set is_default = false, updated_at = now()
		 where user_id = $1 and is_default`,
		userID,
	)
	if err != nil {
		return Address{}, fmt.Errorf("failed clearing default address with error=%w", err)
	}

	query := `
		update addresses
		set is_default = true, updated_at = now()
		where id = $1 and user_id = $2
		returning ` + addressColumns
	a, err := scanAddress(tx.QueryRow(c, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Address{}, inErrors.ErrAddressNotFound
		}
		return Address{}, fmt.Errorf("failed setting default address with error=%w", err)
	}

	if err := tx.Commit(c); err != nil {
		return Address{}, fmt.Errorf("failed committing transaction with error=%w", err)
	}
	return a, nil
}

// FindDeliveryZone resolves the delivery zone for an address by the outward
// part of its postcode. A missing address maps to ErrAddressNotFound; an
// address outside every zone maps to ErrNotServiceable.
func (r *AddressRepository) FindDeliveryZone(
	c context.Context,
	addressID, userID uuid.UUID,
) (DeliveryZone, error) {
	query := `
		select z.zone, z.delivery_fee
		from addresses a
		left join delivery_zones z
			on z.outward_code = split_part(upper(a.pincode), ' ', 1)
		where a.id = $1 and a.user_id = $2`
	var zoneName *string
	var fee *decimal.Decimal
	err := r.pool.QueryRow(c, query, addressID, userID).Scan(&zoneName, &fee)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DeliveryZone{}, inErrors.ErrAddressNotFound
		}
		return DeliveryZone{}, fmt.Errorf("failed finding delivery zone with error=%w", err)
	}
	if zoneName == nil || fee == nil {
		return DeliveryZone{}, inErrors.ErrNotServiceable
	}
	return DeliveryZone{Zone: *zoneName, DeliveryFee: *fee}, nil
}
