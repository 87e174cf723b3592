package domain

// Persona es un arquetipo del catalogo estatico, clave por codigo MBTI.
type Persona struct {
	Tag         string    `json:"tag"`
	Title       string    `json:"title"`
	Tagline     string    `json:"tagline"`
	Strengths   []string  `json:"strengths"`
	Growth      []string  `json:"growth"`
	Descriptor  string    `json:"descriptor"`
	Centroid    []float64 `json:"centroid,omitempty"`
}

// PersonaMatch es el resultado de mapear un vector OCEAN al catalogo.
type PersonaMatch struct {
	Persona    Persona `json:"persona"`
	Confidence float64 `json:"confidence"`
}
