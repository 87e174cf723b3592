package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"lifesync-engine/internal/cache"
	"lifesync-engine/internal/domain"
)

// Tamanos y TTL de los caches de lectura.
const (
	assessmentCacheSize = 500
	assessmentCacheTTL  = 5 * time.Minute
	historyCacheSize    = 200
	historyCacheTTL     = time.Minute
)

// Limites de paginacion del historial.
const (
	minPageSize = 1
	maxPageSize = 100
)

type AssessmentRepository interface {
	Create(ctx context.Context, a *domain.Assessment) error
	SaveResponses(ctx context.Context, assessmentID string, responses map[string]int) error
	SaveScores(ctx context.Context, a *domain.Assessment) error
	SaveTelemetry(ctx context.Context, assessmentID string, meta domain.ScoringMetadata)
	MarkNeedsRetake(ctx context.Context, assessmentID, reason string) error
	Get(ctx context.Context, userID, assessmentID string) (*domain.Assessment, error)
	GetFull(ctx context.Context, userID, assessmentID string) (*domain.Assessment, error)
	History(ctx context.Context, userID string, page, pageSize int) (*domain.HistoryPage, error)
}

type PgAssessmentRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger

	assessments *cache.Cache
	history     *cache.Cache
}

func NewPgAssessmentRepository(pool *pgxpool.Pool, logger *zap.Logger) *PgAssessmentRepository {
	return &PgAssessmentRepository{
		pool:        pool,
		logger:      logger,
		assessments: cache.New(assessmentCacheSize, assessmentCacheTTL),
		history:     cache.New(historyCacheSize, historyCacheTTL),
	}
}

// Create inserta la fila base del assessment. El id y created_at los pone
// el servidor, nunca el cliente.
func (r *PgAssessmentRepository) Create(ctx context.Context, a *domain.Assessment) error {
	const query = `
		INSERT INTO personality_assessments
			(id, user_id, quiz_type, mbti_code, persona_id, confidence, scoring_version, metadata, needs_retake, needs_retake_reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	meta, err := json.Marshal(a.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	return WithRetry(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
		defer cancel()
		_, err := r.pool.Exec(ctx, query,
			a.ID, a.UserID, a.QuizType, nullIfEmpty(a.MBTICode), a.PersonaID,
			a.Confidence, a.ScoringVersion, meta, a.NeedsRetake, nullIfEmpty(a.NeedsRetakeReason), a.CreatedAt,
		)
		return err
	})
}

// SaveResponses persiste las respuestas crudas en batch.
func (r *PgAssessmentRepository) SaveResponses(ctx context.Context, assessmentID string, responses map[string]int) error {
	return WithRetry(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
		defer cancel()

		batch := &pgx.Batch{}
		for qid, value := range responses {
			batch.Queue(
				`INSERT INTO personality_responses (assessment_id, question_id, value) VALUES ($1, $2, $3)
				 ON CONFLICT (assessment_id, question_id) DO UPDATE SET value = EXCLUDED.value`,
				assessmentID, qid, value,
			)
		}
		return r.pool.SendBatch(ctx, batch).Close()
	})
}

// SaveScores guarda los scores derivados e invalida toda entrada cacheada
// del usuario.
func (r *PgAssessmentRepository) SaveScores(ctx context.Context, a *domain.Assessment) error {
	const query = `
		INSERT INTO personality_scores (assessment_id, trait_scores, facet_scores, trait_confidence, facet_confidence)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (assessment_id) DO UPDATE SET
			trait_scores = EXCLUDED.trait_scores,
			facet_scores = EXCLUDED.facet_scores,
			trait_confidence = EXCLUDED.trait_confidence,
			facet_confidence = EXCLUDED.facet_confidence
	`
	traits, err := json.Marshal(a.TraitScores)
	if err != nil {
		return fmt.Errorf("marshal trait scores: %w", err)
	}
	facets, err := json.Marshal(a.FacetScores)
	if err != nil {
		return fmt.Errorf("marshal facet scores: %w", err)
	}
	traitConf, err := json.Marshal(a.TraitConfidence)
	if err != nil {
		return fmt.Errorf("marshal trait confidence: %w", err)
	}
	facetConf, err := json.Marshal(a.FacetConfidence)
	if err != nil {
		return fmt.Errorf("marshal facet confidence: %w", err)
	}

	err = WithRetry(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
		defer cancel()
		_, err := r.pool.Exec(ctx, query, a.ID, traits, facets, traitConf, facetConf)
		return err
	})
	if err != nil {
		return err
	}

	r.assessments.InvalidateContaining(a.UserID)
	r.history.InvalidateContaining(a.UserID)
	return nil
}

// SaveTelemetry registra los hashes de paridad. Best-effort: un fallo se
// loguea y no afecta el guardado del assessment.
func (r *PgAssessmentRepository) SaveTelemetry(ctx context.Context, assessmentID string, meta domain.ScoringMetadata) {
	const query = `
		INSERT INTO parity_telemetry (assessment_id, engine_version, scoring_version, input_hash, output_hash, platform)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()
	_, err := r.pool.Exec(ctx, query,
		assessmentID, meta.EngineVersion, meta.ScoringVersion, meta.InputHash, meta.OutputHash, nullIfEmpty(meta.Platform))
	if err != nil {
		r.logger.Warn("parity telemetry write failed",
			zap.String("assessment_id", assessmentID), zap.Error(err))
	}
}

// MarkNeedsRetake marca el assessment una unica vez; la marca no se borra.
func (r *PgAssessmentRepository) MarkNeedsRetake(ctx context.Context, assessmentID, reason string) error {
	const query = `
		UPDATE personality_assessments
		SET needs_retake = TRUE, needs_retake_reason = $2
		WHERE id = $1 AND needs_retake = FALSE
	`
	return WithRetry(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
		defer cancel()
		_, err := r.pool.Exec(ctx, query, assessmentID, reason)
		return err
	})
}

// Get devuelve la proyeccion liviana del assessment, cacheada.
func (r *PgAssessmentRepository) Get(ctx context.Context, userID, assessmentID string) (*domain.Assessment, error) {
	key := cache.Key("assessment", userID, assessmentID)
	v, err := r.assessments.GetOrFill(key, func() (any, error) {
		return r.fetch(ctx, userID, assessmentID, false)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Assessment), nil
}

// GetFull incluye las respuestas crudas; no se cachea porque solo lo usa
// la generacion de explicaciones.
func (r *PgAssessmentRepository) GetFull(ctx context.Context, userID, assessmentID string) (*domain.Assessment, error) {
	return r.fetch(ctx, userID, assessmentID, true)
}

func (r *PgAssessmentRepository) fetch(ctx context.Context, userID, assessmentID string, withResponses bool) (*domain.Assessment, error) {
	const query = `
		SELECT a.id, a.user_id, a.quiz_type, COALESCE(a.mbti_code, ''), COALESCE(a.persona_id, ''),
		       COALESCE(a.confidence, 0), COALESCE(a.scoring_version, ''), a.metadata,
		       a.needs_retake, COALESCE(a.needs_retake_reason, ''), a.created_at,
		       s.trait_scores, s.facet_scores, s.trait_confidence, s.facet_confidence
		FROM personality_assessments a
		LEFT JOIN personality_scores s ON s.assessment_id = a.id
		WHERE a.id = $1 AND a.user_id = $2
	`
	var a domain.Assessment
	err := WithRetry(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
		defer cancel()

		var meta, traits, facets, traitConf, facetConf []byte
		row := r.pool.QueryRow(ctx, query, assessmentID, userID)
		if err := row.Scan(
			&a.ID, &a.UserID, &a.QuizType, &a.MBTICode, &a.PersonaID,
			&a.Confidence, &a.ScoringVersion, &meta,
			&a.NeedsRetake, &a.NeedsRetakeReason, &a.CreatedAt,
			&traits, &facets, &traitConf, &facetConf,
		); err != nil {
			return err
		}
		if err := json.Unmarshal(meta, &a.Metadata); err != nil {
			return fmt.Errorf("unmarshal metadata: %w", err)
		}
		if err := unmarshalInto(traits, &a.TraitScores); err != nil {
			return err
		}
		if err := unmarshalInto(facets, &a.FacetScores); err != nil {
			return err
		}
		if err := unmarshalInto(traitConf, &a.TraitConfidence); err != nil {
			return err
		}
		return unmarshalInto(facetConf, &a.FacetConfidence)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAssessmentNotFound
	}
	if err != nil {
		return nil, err
	}

	if withResponses {
		if err := r.loadResponses(ctx, &a); err != nil {
			return nil, err
		}
	}
	return &a, nil
}

func (r *PgAssessmentRepository) loadResponses(ctx context.Context, a *domain.Assessment) error {
	const query = `SELECT question_id, value FROM personality_responses WHERE assessment_id = $1`
	return WithRetry(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
		defer cancel()

		rows, err := r.pool.Query(ctx, query, a.ID)
		if err != nil {
			return err
		}
		defer rows.Close()

		a.RawResponses = make(map[string]int)
		for rows.Next() {
			var qid string
			var value int
			if err := rows.Scan(&qid, &value); err != nil {
				return err
			}
			a.RawResponses[qid] = value
		}
		return rows.Err()
	})
}

// History devuelve el historial paginado mas nuevo primero. page y
// pageSize fuera de rango se ajustan en silencio.
func (r *PgAssessmentRepository) History(ctx context.Context, userID string, page, pageSize int) (*domain.HistoryPage, error) {
	page, pageSize = clampPage(page, pageSize)

	key := cache.Key("history", userID, fmt.Sprint(page), fmt.Sprint(pageSize))
	v, err := r.history.GetOrFill(key, func() (any, error) {
		return r.fetchHistory(ctx, userID, page, pageSize)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.HistoryPage), nil
}

func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < minPageSize {
		pageSize = minPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func (r *PgAssessmentRepository) fetchHistory(ctx context.Context, userID string, page, pageSize int) (*domain.HistoryPage, error) {
	const listQuery = `
		SELECT id, created_at, quiz_type, COALESCE(mbti_code, ''), COALESCE(persona_id, ''), COALESCE(confidence, 0), needs_retake
		FROM personality_assessments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	const countQuery = `SELECT COUNT(*) FROM personality_assessments WHERE user_id = $1`

	result := &domain.HistoryPage{Data: []domain.AssessmentSummary{}, Page: page, PageSize: pageSize}
	err := WithRetry(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
		defer cancel()

		if err := r.pool.QueryRow(ctx, countQuery, userID).Scan(&result.Total); err != nil {
			return err
		}
		rows, err := r.pool.Query(ctx, listQuery, userID, pageSize, (page-1)*pageSize)
		if err != nil {
			return err
		}
		defer rows.Close()

		result.Data = result.Data[:0]
		for rows.Next() {
			var s domain.AssessmentSummary
			if err := rows.Scan(&s.ID, &s.CreatedAt, &s.QuizType, &s.MBTICode, &s.PersonaID, &s.Confidence, &s.NeedsRetake); err != nil {
				return err
			}
			result.Data = append(result.Data, s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CacheStats expone los contadores de ambos caches para /metrics.
func (r *PgAssessmentRepository) CacheStats() map[string]cache.Stats {
	return map[string]cache.Stats{
		"assessment": r.assessments.Stats(),
		"history":    r.history.Stats(),
	}
}

func unmarshalInto(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("unmarshal scores: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
