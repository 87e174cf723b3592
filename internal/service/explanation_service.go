package service

import (
	"context"

	"go.uber.org/zap"

	"lifesync-engine/internal/domain"
	"lifesync-engine/internal/llm"
	"lifesync-engine/internal/persona"
	"lifesync-engine/internal/quota"
	"lifesync-engine/internal/repository"
)

// ExplanationService orquesta la generacion de explicaciones: cuota,
// tono, persona, cadena de proveedores y persistencia.
type ExplanationService struct {
	logger       *zap.Logger
	assessments  repository.AssessmentRepository
	explanations repository.ExplanationRepository
	personas     *persona.Registry
	router       *llm.Router
	quota        *quota.Tracker
}

func NewExplanationService(
	logger *zap.Logger,
	assessments repository.AssessmentRepository,
	explanations repository.ExplanationRepository,
	personas *persona.Registry,
	router *llm.Router,
	tracker *quota.Tracker,
) *ExplanationService {
	return &ExplanationService{
		logger:       logger,
		assessments:  assessments,
		explanations: explanations,
		personas:     personas,
		router:       router,
		quota:        tracker,
	}
}

// Generate produce y persiste la explicacion de un assessment. La cuota se
// verifica antes de tocar un proveedor y solo se consume con generaciones
// reales; los fallbacks estaticos son gratis.
func (s *ExplanationService) Generate(ctx context.Context, userID, assessmentID string) (*domain.Explanation, error) {
	if err := s.quota.Check(userID); err != nil {
		return nil, err
	}

	assessment, err := s.assessments.GetFull(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}

	ocean := make(map[string]float64, len(domain.TraitCodes))
	traitsWithData := make([]string, 0, len(domain.TraitCodes))
	for _, code := range domain.TraitCodes {
		if v := assessment.TraitScores[code]; v != nil {
			ocean[code] = *v
			traitsWithData = append(traitsWithData, code)
		}
	}
	tone := llm.Tone(ocean, traitsWithData)
	p := s.personas.Resolve(assessment.PersonaID)

	explanation := s.router.Explain(ctx, assessment, p, tone)

	if err := s.explanations.Save(ctx, userID, assessmentID, explanation); err != nil {
		s.logger.Warn("explanation persist failed",
			zap.String("assessment_id", assessmentID), zap.Error(err))
	}
	if !explanation.IsFallback {
		s.quota.Record(userID)
	}
	return explanation, nil
}

// Get devuelve la ultima explicacion persistida del assessment.
func (s *ExplanationService) Get(ctx context.Context, userID, assessmentID string) (*domain.Explanation, error) {
	return s.explanations.Get(ctx, userID, assessmentID)
}

// QuotaStats expone las ventanas de cuota del usuario.
func (s *ExplanationService) QuotaStats(userID string) quota.Stats {
	return s.quota.Stats(userID)
}
