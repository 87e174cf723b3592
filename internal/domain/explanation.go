package domain

// ToneProfile guia el tono del prompt segun los traits del usuario.
type ToneProfile struct {
	Style     string   `json:"style"`
	Strengths []string `json:"strengths"`
	Cautions  []string `json:"cautions"`
}

// Explanation es el DTO normalizado de una explicacion generada por LLM.
// Acepta el formato nuevo (persona) y el legado (summary/challenges); los
// campos legados se computan, nunca se adivinan.
type Explanation struct {
	PersonaTitle string   `json:"persona_title"`
	VibeSummary  string   `json:"vibe_summary"`
	Strengths    []string `json:"strengths"`
	GrowthEdges  []string `json:"growth_edges"`
	HowYouShowUp string   `json:"how_you_show_up"`
	Tagline      string   `json:"tagline"`

	// Alias legados: summary = vibe_summary + how_you_show_up,
	// challenges = growth_edges.
	Summary        string   `json:"summary"`
	Challenges     []string `json:"challenges"`
	Steps          []string `json:"steps"`
	ConfidenceNote string   `json:"confidence_note,omitempty"`

	ModelName        string       `json:"model_name,omitempty"`
	TokensUsed       *int         `json:"tokens_used,omitempty"`
	GenerationTimeMS int64        `json:"generation_time_ms"`
	Error            string       `json:"error,omitempty"`
	RawResponse      string       `json:"raw_response,omitempty"`
	IsFallback       bool         `json:"is_fallback"`
	ToneProfile      *ToneProfile `json:"tone_profile,omitempty"`
	Persona          *Persona     `json:"persona,omitempty"`
}
