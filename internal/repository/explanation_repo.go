package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lifesync-engine/internal/cache"
	"lifesync-engine/internal/domain"
)

// Cache de explicaciones, el mas longevo de los tres: una explicacion solo
// cambia cuando se regenera.
const (
	explanationCacheSize = 100
	explanationCacheTTL  = time.Hour
)

type ExplanationRepository interface {
	Save(ctx context.Context, userID, assessmentID string, e *domain.Explanation) error
	Get(ctx context.Context, userID, assessmentID string) (*domain.Explanation, error)
}

type PgExplanationRepository struct {
	pool         *pgxpool.Pool
	explanations *cache.Cache
}

func NewPgExplanationRepository(pool *pgxpool.Pool) *PgExplanationRepository {
	return &PgExplanationRepository{
		pool:         pool,
		explanations: cache.New(explanationCacheSize, explanationCacheTTL),
	}
}

// Save upsertea la explicacion: regenerar reemplaza la anterior.
func (r *PgExplanationRepository) Save(ctx context.Context, userID, assessmentID string, e *domain.Explanation) error {
	const query = `
		INSERT INTO llm_explanations (assessment_id, user_id, content, model_name, tokens_used, generation_time_ms, is_fallback, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (assessment_id) DO UPDATE SET
			content = EXCLUDED.content,
			model_name = EXCLUDED.model_name,
			tokens_used = EXCLUDED.tokens_used,
			generation_time_ms = EXCLUDED.generation_time_ms,
			is_fallback = EXCLUDED.is_fallback,
			updated_at = now()
	`
	content, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal explanation: %w", err)
	}

	err = WithRetry(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
		defer cancel()
		_, err := r.pool.Exec(ctx, query,
			assessmentID, userID, content, nullIfEmpty(e.ModelName), e.TokensUsed, e.GenerationTimeMS, e.IsFallback)
		return err
	})
	if err != nil {
		return err
	}

	r.explanations.InvalidateContaining(assessmentID)
	return nil
}

// Get devuelve la explicacion persistida, cacheada por assessment.
func (r *PgExplanationRepository) Get(ctx context.Context, userID, assessmentID string) (*domain.Explanation, error) {
	key := cache.Key("explanation", userID, assessmentID)
	v, err := r.explanations.GetOrFill(key, func() (any, error) {
		return r.fetch(ctx, userID, assessmentID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Explanation), nil
}

func (r *PgExplanationRepository) fetch(ctx context.Context, userID, assessmentID string) (*domain.Explanation, error) {
	const query = `
		SELECT content FROM llm_explanations
		WHERE assessment_id = $1 AND user_id = $2
	`
	var content []byte
	err := WithRetry(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
		defer cancel()
		return r.pool.QueryRow(ctx, query, assessmentID, userID).Scan(&content)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var e domain.Explanation
	if err := json.Unmarshal(content, &e); err != nil {
		return nil, fmt.Errorf("unmarshal explanation: %w", err)
	}
	return &e, nil
}

// CacheStats expone los contadores del cache para /metrics.
func (r *PgExplanationRepository) CacheStats() cache.Stats {
	return r.explanations.Stats()
}
