package domain

import "time"

// Assessment es el registro persistido de una evaluacion. Inmutable despues
// del scoring salvo por la Explanation opcional y el flag needs_retake.
type Assessment struct {
	ID              string              `json:"id"`
	CreatedAt       time.Time           `json:"created_at"`
	UserID          string              `json:"user_id,omitempty"`
	QuizType        string              `json:"quiz_type"`
	RawResponses    map[string]int      `json:"raw_responses,omitempty"`
	TraitScores     map[string]*float64 `json:"trait_scores"`
	TraitConfidence map[string]float64  `json:"trait_confidence,omitempty"`
	FacetScores     map[string]*float64 `json:"facet_scores"`
	FacetConfidence map[string]float64  `json:"facet_confidence,omitempty"`
	MBTICode        string              `json:"mbti_code,omitempty"`
	PersonaID       string              `json:"persona_id"`
	Confidence      float64             `json:"confidence"`
	ScoringVersion  string              `json:"scoring_version"`
	Metadata        ScoringMetadata     `json:"metadata"`

	NeedsRetake       bool   `json:"needs_retake"`
	NeedsRetakeReason string `json:"needs_retake_reason,omitempty"`
}

// AssessmentSummary es la proyeccion minima usada por el historial.
type AssessmentSummary struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	QuizType    string    `json:"quiz_type"`
	MBTICode    string    `json:"mbti_code,omitempty"`
	PersonaID   string    `json:"persona_id"`
	Confidence  float64   `json:"confidence"`
	NeedsRetake bool      `json:"needs_retake"`
}

// HistoryPage es una pagina de historial con el total sin paginar.
type HistoryPage struct {
	Data     []AssessmentSummary `json:"data"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
	Total    int                 `json:"total"`
}

// Profile apunta a la evaluacion vigente de un usuario.
type Profile struct {
	UserID              string     `json:"user_id"`
	ProfileID           string     `json:"profile_id,omitempty"`
	Email               string     `json:"email,omitempty"`
	CurrentAssessmentID string     `json:"current_assessment_id,omitempty"`
	UpdatedAt           time.Time  `json:"updated_at"`
	CurrentAssessment   *Assessment `json:"current_assessment,omitempty"`
}
