// Package persona mapea perfiles OCEAN a arquetipos de personalidad.
package persona

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"

	"lifesync-engine/internal/domain"
)

//go:embed data/personas.json
var personasJSON []byte

// centroidDims es la dimension fija de los centroides [O, C, E, A, N].
const centroidDims = 5

// Registry es el catalogo inmutable de personas. Se carga una vez al
// arrancar y es seguro para lectura concurrente.
type Registry struct {
	personas map[string]domain.Persona
	ordered  []domain.Persona
	unknown  domain.Persona
}

type registryFile struct {
	Unknown  domain.Persona   `json:"unknown"`
	Personas []domain.Persona `json:"personas"`
}

// Load parsea el catalogo embebido y valida sus invariantes.
func Load() (*Registry, error) {
	var file registryFile
	if err := json.Unmarshal(personasJSON, &file); err != nil {
		return nil, fmt.Errorf("persona: parsing catalog: %w", err)
	}
	if len(file.Personas) == 0 {
		return nil, fmt.Errorf("persona: catalog is empty")
	}
	if file.Unknown.Tag == "" {
		return nil, fmt.Errorf("persona: catalog lacks the unknown fallback")
	}

	r := &Registry{
		personas: make(map[string]domain.Persona, len(file.Personas)),
		ordered:  file.Personas,
		unknown:  file.Unknown,
	}
	for _, p := range file.Personas {
		if p.Tag == "" || p.Title == "" {
			return nil, fmt.Errorf("persona: entry without tag or title")
		}
		if len(p.Centroid) != centroidDims {
			return nil, fmt.Errorf("persona %s: centroid has %d dims, want %d", p.Tag, len(p.Centroid), centroidDims)
		}
		key := strings.ToLower(p.Tag)
		if _, dup := r.personas[key]; dup {
			return nil, fmt.Errorf("persona: duplicate tag %s", p.Tag)
		}
		r.personas[key] = p
	}
	return r, nil
}

// Get busca una persona por tag MBTI, case-insensitive.
func (r *Registry) Get(tag string) (domain.Persona, bool) {
	p, ok := r.personas[strings.ToLower(tag)]
	return p, ok
}

// Unknown devuelve la persona de fallback para perfiles incompletos.
func (r *Registry) Unknown() domain.Persona {
	return r.unknown
}

// All devuelve las personas en orden de catalogo.
func (r *Registry) All() []domain.Persona {
	return r.ordered
}

// Resolve elige la persona para un resultado: por tag MBTI si el perfil
// esta completo, fallback a unknown en cualquier otro caso.
func (r *Registry) Resolve(personaID string) domain.Persona {
	if p, ok := r.Get(personaID); ok {
		return p
	}
	return r.unknown
}

// Match busca la persona cuyo centroide queda mas cerca del perfil OCEAN y
// reporta la confianza de la asignacion. Acepta scores en 0..1 o 0..100.
func (r *Registry) Match(ocean map[string]float64) domain.PersonaMatch {
	vector := make([]float64, centroidDims)
	for i, trait := range domain.TraitCodes {
		vector[i] = normalizeScore(ocean[trait])
	}

	best := r.unknown
	bestDist := -1.0
	for _, p := range r.ordered {
		dist, err := stats.EuclideanDistance(vector, p.Centroid)
		if err != nil {
			continue
		}
		if bestDist < 0 || dist < bestDist || (dist == bestDist && p.Tag < best.Tag) {
			best = p
			bestDist = dist
		}
	}
	if bestDist < 0 {
		return domain.PersonaMatch{Persona: r.unknown, Confidence: 0}
	}

	// distancia maxima posible entre dos puntos del hipercubo unitario
	maxDist, _ := stats.EuclideanDistance(make([]float64, centroidDims), ones(centroidDims))
	confidence := 1.0 - bestDist/maxDist
	if confidence < 0 {
		confidence = 0
	}
	rounded, _ := stats.Round(confidence, 3)
	return domain.PersonaMatch{Persona: best, Confidence: rounded}
}

// normalizeScore lleva un score a la escala 0..1 sin importar si vino en
// porcentaje.
func normalizeScore(v float64) float64 {
	if v > 1.0 {
		v = v / 100.0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}
