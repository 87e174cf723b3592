package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"lifesync-engine/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	FindByResetToken(ctx context.Context, tokenHash string) (domain.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`
	return WithRetry(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, AuthTimeout)
		defer cancel()
		_, err := r.pool.Exec(ctx, query, user.ID, user.Email, user.PasswordHash, user.CreatedAt)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDuplicateEmail
		}
		return err
	})
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `
		SELECT id, email, password_hash, email_verified_at, created_at
		FROM users
		WHERE id = $1
	`
	return r.getOne(ctx, query, id)
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `
		SELECT id, email, password_hash, email_verified_at, created_at
		FROM users
		WHERE email = $1
	`
	return r.getOne(ctx, query, email)
}

func (r *PgUserRepository) getOne(ctx context.Context, query, arg string) (domain.User, error) {
	var u domain.User
	err := WithRetry(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, AuthTimeout)
		defer cancel()
		return r.pool.QueryRow(ctx, query, arg).Scan(
			&u.ID, &u.Email, &u.PasswordHash, &u.EmailVerifiedAt, &u.CreatedAt,
		)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, err
}

// SetResetToken guarda el hash del token de reseteo con su vencimiento.
func (r *PgUserRepository) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	const query = `UPDATE users SET reset_token_hash = $2, reset_expires_at = $3 WHERE id = $1`
	return WithRetry(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, AuthTimeout)
		defer cancel()
		_, err := r.pool.Exec(ctx, query, userID, tokenHash, expiresAt)
		return err
	})
}

// FindByResetToken busca un usuario con un token de reseteo vigente.
func (r *PgUserRepository) FindByResetToken(ctx context.Context, tokenHash string) (domain.User, error) {
	const query = `
		SELECT id, email, password_hash, email_verified_at, created_at
		FROM users
		WHERE reset_token_hash = $1 AND reset_expires_at > now()
	`
	u, err := r.getOne(ctx, query, tokenHash)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, domain.ErrInvalidToken
	}
	return u, err
}

// UpdatePassword rota el hash y limpia cualquier token de reseteo vigente.
func (r *PgUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	const query = `
		UPDATE users
		SET password_hash = $2, reset_token_hash = NULL, reset_expires_at = NULL
		WHERE id = $1
	`
	return WithRetry(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, AuthTimeout)
		defer cancel()
		_, err := r.pool.Exec(ctx, query, userID, passwordHash)
		return err
	})
}
