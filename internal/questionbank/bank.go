package questionbank

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"lifesync-engine/internal/domain"
)

//go:embed data/questions_180.json
var rawBank []byte

// Bank es el catalogo inmutable de preguntas con sus pesos maximos
// precalculados por trait y faceta.
type Bank struct {
	questions map[string]domain.Question
	ordered   []domain.Question
	facets    map[string]string
	traits    map[string]string
	quiz30    []string
	scaleMin  int
	scaleMax  int

	maxTraitWeight map[string]float64
	maxFacetWeight map[string]float64
}

type bankFile struct {
	Scale struct {
		Min int `json:"min"`
		Max int `json:"max"`
	} `json:"scale"`
	Traits    map[string]string `json:"traits"`
	Facets    map[string]string `json:"facets"`
	Quiz30    []string          `json:"quiz30"`
	Questions []domain.Question `json:"questions"`
}

// Load parsea el catalogo embebido y valida sus invariantes.
func Load() (*Bank, error) {
	var file bankFile
	if err := json.Unmarshal(rawBank, &file); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}

	b := &Bank{
		questions:      make(map[string]domain.Question, len(file.Questions)),
		ordered:        file.Questions,
		facets:         file.Facets,
		traits:         file.Traits,
		quiz30:         file.Quiz30,
		scaleMin:       file.Scale.Min,
		scaleMax:       file.Scale.Max,
		maxTraitWeight: make(map[string]float64),
		maxFacetWeight: make(map[string]float64),
	}

	traitCount := make(map[string]int)
	for _, q := range file.Questions {
		if q.Weight <= 0 {
			return nil, fmt.Errorf("question %s: weight must be positive", q.ID)
		}
		if _, dup := b.questions[q.ID]; dup {
			return nil, fmt.Errorf("question %s: duplicate id", q.ID)
		}
		if _, ok := file.Traits[q.Trait]; !ok {
			return nil, fmt.Errorf("question %s: unknown trait %q", q.ID, q.Trait)
		}
		b.questions[q.ID] = q
		traitCount[q.Trait]++
		b.maxTraitWeight[q.Trait] += q.Weight
		b.maxFacetWeight[q.Facet] += q.Weight
	}

	for _, trait := range domain.TraitCodes {
		if traitCount[trait] < 3 {
			return nil, fmt.Errorf("trait %s: needs at least 3 questions, has %d", trait, traitCount[trait])
		}
	}

	return b, nil
}

// Get devuelve la pregunta por id.
func (b *Bank) Get(id string) (domain.Question, bool) {
	q, ok := b.questions[id]
	return q, ok
}

// Len es el total de preguntas del catalogo.
func (b *Bank) Len() int { return len(b.ordered) }

// Scale devuelve los limites de la escala Likert.
func (b *Bank) Scale() (min, max int) { return b.scaleMin, b.scaleMax }

// FacetName traduce una clave de faceta a su nombre legible.
func (b *Bank) FacetName(key string) string {
	if name, ok := b.facets[key]; ok {
		return name
	}
	return key
}

// FacetKeys devuelve todas las claves de faceta del catalogo.
func (b *Bank) FacetKeys() []string {
	keys := make([]string, 0, len(b.facets))
	for k := range b.facets {
		keys = append(keys, k)
	}
	return keys
}

// MaxTraitWeight es la suma de pesos de todas las preguntas de un trait.
func (b *Bank) MaxTraitWeight(trait string) float64 { return b.maxTraitWeight[trait] }

// MaxFacetWeight es la suma de pesos de todas las preguntas de una faceta.
func (b *Bank) MaxFacetWeight(facet string) float64 { return b.maxFacetWeight[facet] }

// Questions devuelve los primeros limit items en orden de catalogo.
// Con limit 30 devuelve el subconjunto balanceado (6 por trait); con
// limit <= 0 devuelve el catalogo completo.
func (b *Bank) Questions(limit int) []domain.Question {
	if limit == 30 && len(b.quiz30) == 30 {
		out := make([]domain.Question, 0, 30)
		for _, id := range b.quiz30 {
			if q, ok := b.questions[id]; ok {
				out = append(out, q)
			}
		}
		if len(out) == 30 {
			return out
		}
	}
	if limit <= 0 || limit > len(b.ordered) {
		limit = len(b.ordered)
	}
	out := make([]domain.Question, limit)
	copy(out, b.ordered[:limit])
	return out
}
