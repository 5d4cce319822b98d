package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	inErrors "github.com/greenbasket/grocer/internal/errors"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Insert(c context.Context, name, email, hashedPassword string) (User, error) {
	query := `
		insert into users (name, email, password)
		values ($1, $2, $3)
		returning id, name, email, password, created_at, updated_at`
	u := User{}
	err := r.pool.QueryRow(c, query, name, email, hashedPassword).
		Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return User{}, fmt.Errorf("failed inserting user with error=%w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(c context.Context, email string) (User, error) {
	query := `select id, name, email, password, created_at, updated_at from users where email = $1`
	u := User{}
	err := r.pool.QueryRow(c, query, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, inErrors.ErrUserNotFound
		}
		return User{}, fmt.Errorf("failed finding user by email with error=%w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByID(c context.Context, id uuid.UUID) (User, error) {
	query := `select id, name, email, password, created_at, updated_at from users where id = $1`
	u := User{}
	err := r.pool.QueryRow(c, query, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, inErrors.ErrUserNotFound
		}
		return User{}, fmt.Errorf("failed finding user by id with error=%w", err)
	}
	return u, nil
}
