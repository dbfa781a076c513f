package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"healthmate/internal/domain"
)

// ErrDuplicateEmail se devuelve cuando el email viola la restriccion unica.
var ErrDuplicateEmail = errors.New("duplicate email")

const uniqueViolation = "23505"

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
	obs  Observer
}

func NewPgUserRepository(pool *pgxpool.Pool, obs Observer) *PgUserRepository {
	return &PgUserRepository{pool: pool, obs: observerOrNop(obs)}
}

// Create inserta el usuario en una sola sentencia; la unicidad del email la
// resuelve la restriccion users_email_uniq.
func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	return r.obs.ObserveDB("users.create", func() error {
		_, err := r.pool.Exec(ctx, query,
			user.ID,
			user.Name,
			user.Email,
			user.PasswordHash,
			user.CreatedAt,
		)
		return mapUserInsertErr(err)
	})
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `
		SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE id = $1
	`
	var u domain.User
	err := r.obs.ObserveDB("users.get_by_id", func() error {
		return r.pool.QueryRow(ctx, query, id).Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.PasswordHash,
			&u.CreatedAt,
		)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}
	return u, err
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `
		SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`
	var u domain.User
	err := r.obs.ObserveDB("users.get_by_email", func() error {
		return r.pool.QueryRow(ctx, query, email).Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.PasswordHash,
			&u.CreatedAt,
		)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}
	return u, err
}

func mapUserInsertErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateEmail
	}
	return err
}
