package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"lifesync-engine/internal/domain"
	"lifesync-engine/internal/persona"
	"lifesync-engine/internal/questionbank"
	"lifesync-engine/internal/repository"
	"lifesync-engine/internal/scorer"
	"lifesync-engine/internal/validators"
)

// ValidationError transporta el reporte completo para que el handler lo
// devuelva como cuerpo del 400.
type ValidationError struct {
	Report domain.ValidationReport
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("responses failed validation: missing traits %v", e.Report.MissingTraits)
}

// AssessmentService coordina el flujo de puntuar y persistir assessments.
type AssessmentService struct {
	logger      *zap.Logger
	bank        *questionbank.Bank
	scorer      *scorer.Scorer
	personas    *persona.Registry
	assessments repository.AssessmentRepository
	profiles    repository.ProfileRepository
}

func NewAssessmentService(
	logger *zap.Logger,
	bank *questionbank.Bank,
	sc *scorer.Scorer,
	personas *persona.Registry,
	assessments repository.AssessmentRepository,
	profiles repository.ProfileRepository,
) *AssessmentService {
	return &AssessmentService{
		logger:      logger,
		bank:        bank,
		scorer:      sc,
		personas:    personas,
		assessments: assessments,
		profiles:    profiles,
	}
}

// SubmitInput es un envio de respuestas ya autenticado.
type SubmitInput struct {
	UserID   string
	Email    string
	QuizType string
	Answers  map[string]int
	Platform string
}

// Submit valida, puntua y persiste un assessment. El orden de escritura es
// fijo: fila base, respuestas crudas, scores; el perfil se actualiza al
// final y la telemetria nunca bloquea.
func (s *AssessmentService) Submit(ctx context.Context, input SubmitInput) (*domain.Assessment, error) {
	clean, problems, err := validators.Answers(input.Answers)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if len(problems) > 0 {
		s.logger.Debug("answers sanitized", zap.Int("dropped", len(problems)))
	}

	report := scorer.Validate(s.bank, clean)
	if !report.IsValid {
		return nil, &ValidationError{Report: report}
	}

	result := s.scorer.Score(clean)
	result.Metadata.Platform = input.Platform

	assessment := s.buildAssessment(input, clean, result)

	if err := s.assessments.Create(ctx, assessment); err != nil {
		return nil, fmt.Errorf("creating assessment: %w", err)
	}
	if err := s.assessments.SaveResponses(ctx, assessment.ID, clean); err != nil {
		return nil, fmt.Errorf("saving responses: %w", err)
	}
	if err := s.assessments.SaveScores(ctx, assessment); err != nil {
		return nil, fmt.Errorf("saving scores: %w", err)
	}

	if err := s.profiles.Upsert(ctx, input.UserID, input.Email, assessment.ID); err != nil {
		s.logger.Warn("profile update failed",
			zap.String("user_id", input.UserID), zap.Error(err))
	}
	s.assessments.SaveTelemetry(ctx, assessment.ID, result.Metadata)

	s.logger.Info("assessment scored",
		zap.String("assessment_id", assessment.ID),
		zap.String("user_id", input.UserID),
		zap.String("mbti", result.MBTIProxy),
		zap.Float64("confidence", result.Confidence),
		zap.Bool("complete", result.HasCompleteProfile))
	return assessment, nil
}

func (s *AssessmentService) buildAssessment(input SubmitInput, clean map[string]int, result domain.ScoringResult) *domain.Assessment {
	quizType := input.QuizType
	if quizType == "" {
		quizType = result.Metadata.QuizType
	}

	traitScores := make(map[string]*float64, len(domain.TraitCodes))
	for _, code := range domain.TraitCodes {
		traitScores[code] = result.Traits[domain.TraitNames[code]]
	}

	a := &domain.Assessment{
		UserID:          input.UserID,
		QuizType:        quizType,
		RawResponses:    clean,
		TraitScores:     traitScores,
		FacetScores:     result.Facets,
		TraitConfidence: result.TraitConfidence,
		FacetConfidence: result.FacetConfidence,
		MBTICode:        result.PersonalityCode,
		PersonaID:       result.PersonaID,
		Confidence:      result.Confidence,
		ScoringVersion:  result.Metadata.ScoringVersion,
		Metadata:        result.Metadata,
	}
	if result.HasCompleteProfile {
		// El centroide confirma la asignacion por tag MBTI y aporta la
		// confianza del mapeo a la respuesta canonica.
		match := s.personas.Match(result.Ocean)
		a.Metadata.PersonaConfidence = match.Confidence
	} else {
		a.NeedsRetake = true
		a.NeedsRetakeReason = fmt.Sprintf("incomplete profile: only %d of %d traits have data",
			len(result.TraitsWithData), len(domain.TraitCodes))
	}
	return a
}

// SyncItem es un assessment capturado offline.
type SyncItem struct {
	ClientRef string         `json:"client_ref"`
	QuizType  string         `json:"quiz_type"`
	Answers   map[string]int `json:"answers"`
}

// SyncItemResult reporta el destino de cada item del batch.
type SyncItemResult struct {
	ClientRef    string `json:"client_ref"`
	Status       string `json:"status"`
	AssessmentID string `json:"assessment_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Sync procesa un batch capturado offline. Cada item se resuelve de forma
// independiente: uno invalido no voltea a los demas.
func (s *AssessmentService) Sync(ctx context.Context, userID, email string, items []SyncItem) []SyncItemResult {
	results := make([]SyncItemResult, 0, len(items))
	for _, item := range items {
		res := SyncItemResult{ClientRef: item.ClientRef}
		a, err := s.Submit(ctx, SubmitInput{
			UserID:   userID,
			Email:    email,
			QuizType: item.QuizType,
			Answers:  item.Answers,
			Platform: "sync",
		})
		if err != nil {
			res.Status = "failed"
			res.Error = err.Error()
		} else {
			res.Status = "created"
			res.AssessmentID = a.ID
		}
		results = append(results, res)
	}
	return results
}

// Get devuelve la proyeccion liviana del assessment del usuario.
func (s *AssessmentService) Get(ctx context.Context, userID, assessmentID string) (*domain.Assessment, error) {
	return s.assessments.Get(ctx, userID, assessmentID)
}

// History devuelve el historial paginado.
func (s *AssessmentService) History(ctx context.Context, userID string, page, pageSize int) (*domain.HistoryPage, error) {
	return s.assessments.History(ctx, userID, page, pageSize)
}

// Profile devuelve el perfil del usuario con su assessment vigente.
func (s *AssessmentService) Profile(ctx context.Context, userID string) (*domain.Profile, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.CurrentAssessmentID != "" {
		current, err := s.assessments.Get(ctx, userID, p.CurrentAssessmentID)
		if err == nil {
			p.CurrentAssessment = current
		}
	}
	return &p, nil
}

// Questions expone el catalogo, completo o el subset balanceado.
func (s *AssessmentService) Questions(limit int) []domain.Question {
	return s.bank.Questions(limit)
}
