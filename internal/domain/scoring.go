package domain

// TopFacet es una entrada del ranking de facetas mejor puntuadas.
type TopFacet struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// ScoringMetadata acompaña cada resultado de scoring.
type ScoringMetadata struct {
	QuizType       string  `json:"quiz_type"`
	EngineVersion  string  `json:"engine_version"`
	ScoringVersion string  `json:"scoring_version"`
	Timestamp      float64 `json:"timestamp"`
	Platform       string  `json:"platform,omitempty"`
	IsFallback     bool    `json:"is_fallback"`
	InputHash      string  `json:"input_hash,omitempty"`
	OutputHash     string  `json:"output_hash,omitempty"`

	// Confianza del mapeo OCEAN→persona por proximidad de centroide.
	PersonaConfidence float64 `json:"persona_confidence,omitempty"`
}

// ScoringResult es la salida completa del scorer. Los scores nulos indican
// dimension ausente (datos insuficientes), nunca se imputa 0.5.
type ScoringResult struct {
	Ocean map[string]float64 `json:"ocean"`

	PersonaID string  `json:"persona_id"`
	MBTIProxy string  `json:"mbti_proxy,omitempty"`
	Confidence float64 `json:"confidence"`
	Metadata   ScoringMetadata `json:"metadata"`

	Traits          map[string]*float64 `json:"traits"`
	TraitConfidence map[string]float64  `json:"trait_confidence"`
	Facets          map[string]*float64 `json:"facets"`
	FacetConfidence map[string]float64  `json:"facet_confidence"`

	NeuroticismLevel   string     `json:"neuroticism_level,omitempty"`
	PersonalityCode    string     `json:"personality_code,omitempty"`
	TopFacets          []TopFacet `json:"top_facets"`
	ResponsesCount     int        `json:"responses_count"`
	Coverage           float64    `json:"coverage"`
	HasCompleteProfile bool       `json:"has_complete_profile"`
	TraitsWithData     []string   `json:"traits_with_data"`
}

// ValidationWarning describe un problema detectado en un set de respuestas.
type ValidationWarning struct {
	Severity  string `json:"severity"`
	Type      string `json:"type"`
	Trait     string `json:"trait,omitempty"`
	TraitName string `json:"trait_name,omitempty"`
	Message   string `json:"message"`
	Count     int    `json:"count"`
	Required  int    `json:"required,omitempty"`
}

// ValidationReport es el resultado de validar el balance de un set de respuestas.
type ValidationReport struct {
	IsValid        bool                `json:"is_valid"`
	Warnings       []ValidationWarning `json:"warnings"`
	Coverage       map[string]int      `json:"coverage"`
	MissingTraits  []string            `json:"missing_traits"`
	TotalResponses int                 `json:"total_responses"`
	ValidResponses int                 `json:"valid_responses"`
}
