package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lifesync-engine/internal/domain"
)

type ProfileRepository interface {
	Upsert(ctx context.Context, userID, email, currentAssessmentID string) error
	GetByUserID(ctx context.Context, userID string) (domain.Profile, error)
}

type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

// Upsert crea el perfil si no existe y siempre apunta current_assessment_id
// al assessment mas reciente.
func (r *PgProfileRepository) Upsert(ctx context.Context, userID, email, currentAssessmentID string) error {
	const query = `
		INSERT INTO profiles (user_id, profile_id, email, current_assessment_id, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			current_assessment_id = EXCLUDED.current_assessment_id,
			updated_at = EXCLUDED.updated_at
	`
	return WithRetry(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
		defer cancel()
		_, err := r.pool.Exec(ctx, query,
			userID, uuid.NewString(), email, nullIfEmpty(currentAssessmentID), time.Now().UTC())
		return err
	})
}

func (r *PgProfileRepository) GetByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	const query = `
		SELECT user_id, profile_id, email, COALESCE(current_assessment_id::text, ''), updated_at
		FROM profiles
		WHERE user_id = $1
	`
	var p domain.Profile
	err := WithRetry(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
		defer cancel()
		return r.pool.QueryRow(ctx, query, userID).Scan(
			&p.UserID, &p.ProfileID, &p.Email, &p.CurrentAssessmentID, &p.UpdatedAt,
		)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	return p, err
}
