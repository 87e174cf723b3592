package scorer

import (
	"time"

	"github.com/montanaflynn/stats"

	"lifesync-engine/internal/domain"
	"lifesync-engine/internal/questionbank"
)

const (
	// ScoringVersion identifica la version del calculo. Cambiarla invalida
	// comparaciones entre ejecuciones.
	ScoringVersion = "v2.1.0"
	EngineVersion  = "2.0.0"

	// MinQuestionsPerTrait es el minimo de items respondidos (en peso
	// nominal) para que un trait tenga score en vez de quedar ausente.
	MinQuestionsPerTrait = 3
)

// nominalWeight es el peso por defecto de un item del catalogo.
const nominalWeight = 1.0

// Scorer es una funcion pura y versionada de respuestas a resultado.
type Scorer struct {
	bank *questionbank.Bank
}

func New(bank *questionbank.Bank) *Scorer {
	return &Scorer{bank: bank}
}

// Score puntua un set de respuestas. Nunca falla: los items desconocidos o
// fuera de rango se descartan y los traits sin datos suficientes quedan
// ausentes (nil), jamas imputados a 0.5.
func (s *Scorer) Score(responses map[string]int) domain.ScoringResult {
	scaleMin, scaleMax := s.bank.Scale()
	span := float64(scaleMax - scaleMin)

	traitSums := make(map[string]float64)
	traitWeights := make(map[string]float64)
	facetSums := make(map[string]float64)
	facetWeights := make(map[string]float64)

	for qid, value := range responses {
		q, ok := s.bank.Get(qid)
		if !ok {
			continue
		}
		if value < scaleMin || value > scaleMax {
			continue
		}

		scaled := (float64(value) - float64(scaleMin)) / span
		if q.Reverse {
			scaled = 1.0 - scaled
		}

		traitSums[q.Trait] += scaled * q.Weight
		traitWeights[q.Trait] += q.Weight
		facetSums[q.Facet] += scaled * q.Weight
		facetWeights[q.Facet] += q.Weight
	}

	traitScores := make(map[string]*float64, len(domain.TraitCodes))
	traitConfidence := make(map[string]float64, len(domain.TraitCodes))
	traitsWithData := make([]string, 0, len(domain.TraitCodes))

	for _, trait := range domain.TraitCodes {
		denom := traitWeights[trait]
		if denom >= MinQuestionsPerTrait*nominalWeight {
			score := round3(traitSums[trait] / denom)
			traitScores[trait] = &score
			traitConfidence[trait] = round3(denom / s.bank.MaxTraitWeight(trait))
			traitsWithData = append(traitsWithData, trait)
		} else {
			traitScores[trait] = nil
			traitConfidence[trait] = 0.0
		}
	}

	facetScores := make(map[string]*float64)
	facetConfidence := make(map[string]float64)
	for _, facet := range s.bank.FacetKeys() {
		denom := facetWeights[facet]
		if denom > 0 {
			score := round3(facetSums[facet] / denom)
			facetScores[facet] = &score
			facetConfidence[facet] = round3(denom / s.bank.MaxFacetWeight(facet))
		} else {
			facetScores[facet] = nil
			facetConfidence[facet] = 0.0
		}
	}

	complete := len(traitsWithData) == len(domain.TraitCodes)

	mbti := ""
	nLevel := ""
	personalityCode := ""
	if complete {
		mbti = deriveMBTI(traitScores)
		if n := traitScores["N"]; n != nil {
			nLevel = neuroticismLevel(*n)
			personalityCode = mbti + "-" + nLevel[:1]
		}
	}

	personaID := "unknown"
	if mbti != "" {
		personaID = lower(mbti)
	}

	result := domain.ScoringResult{
		Ocean:              oceanMap(traitScores),
		PersonaID:          personaID,
		MBTIProxy:          mbti,
		Confidence:         globalConfidence(traitConfidence),
		Traits:             longNamed(traitScores),
		TraitConfidence:    longNamedConfidence(traitConfidence),
		Facets:             s.namedFacets(facetScores),
		FacetConfidence:    s.namedFacetConfidence(facetConfidence),
		NeuroticismLevel:   nLevel,
		PersonalityCode:    personalityCode,
		TopFacets:          s.topFacets(facetScores, 5),
		ResponsesCount:     len(responses),
		Coverage:           round1(float64(len(responses)) / float64(s.bank.Len()) * 100),
		HasCompleteProfile: complete,
		TraitsWithData:     traitsWithData,
		Metadata: domain.ScoringMetadata{
			QuizType:       quizTypeFor(len(responses)),
			EngineVersion:  EngineVersion,
			ScoringVersion: ScoringVersion,
			Timestamp:      float64(time.Now().UTC().Unix()),
		},
	}
	result.Metadata.InputHash = hashResponses(responses)
	result.Metadata.OutputHash = hashResult(result)
	return result
}

// quizTypeFor clasifica el tipo de quiz por cantidad de respuestas.
func quizTypeFor(n int) string {
	if n >= 60 {
		return "full180"
	}
	return "quick"
}

// globalConfidence es la media de las confianzas de trait no nulas.
func globalConfidence(conf map[string]float64) float64 {
	values := make([]float64, 0, len(conf))
	for _, v := range conf {
		if v > 0 {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return 0.0
	}
	mean, err := stats.Mean(values)
	if err != nil {
		return 0.0
	}
	return round2(mean)
}

// oceanMap produce el bloque canonico ocean con ausentes en 0.0.
func oceanMap(traits map[string]*float64) map[string]float64 {
	out := make(map[string]float64, len(domain.TraitCodes))
	for _, trait := range domain.TraitCodes {
		if v := traits[trait]; v != nil {
			out[trait] = *v
		} else {
			out[trait] = 0.0
		}
	}
	return out
}

func longNamed(traits map[string]*float64) map[string]*float64 {
	out := make(map[string]*float64, len(traits))
	for code, v := range traits {
		out[domain.TraitNames[code]] = v
	}
	return out
}

func longNamedConfidence(conf map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(conf))
	for code, v := range conf {
		out[domain.TraitNames[code]] = v
	}
	return out
}

func (s *Scorer) namedFacets(facets map[string]*float64) map[string]*float64 {
	out := make(map[string]*float64, len(facets))
	for key, v := range facets {
		out[s.bank.FacetName(key)] = v
	}
	return out
}

func (s *Scorer) namedFacetConfidence(conf map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(conf))
	for key, v := range conf {
		out[s.bank.FacetName(key)] = v
	}
	return out
}

// topFacets devuelve las n facetas con mayor score, solo entre las que
// tienen datos. Orden estable por nombre ante empates para determinismo.
func (s *Scorer) topFacets(facets map[string]*float64, n int) []domain.TopFacet {
	valid := make([]domain.TopFacet, 0, len(facets))
	for key, v := range facets {
		if v != nil {
			valid = append(valid, domain.TopFacet{Name: s.bank.FacetName(key), Score: *v})
		}
	}
	sortTopFacets(valid)
	if len(valid) > n {
		valid = valid[:n]
	}
	return valid
}

func sortTopFacets(fs []domain.TopFacet) {
	// insertion sort: listas chicas (<=30) y criterio compuesto
	for i := 1; i < len(fs); i++ {
		for j := i; j > 0; j-- {
			a, b := fs[j-1], fs[j]
			if b.Score > a.Score || (b.Score == a.Score && b.Name < a.Name) {
				fs[j-1], fs[j] = b, a
			} else {
				break
			}
		}
	}
}

func round1(v float64) float64 { r, _ := stats.Round(v, 1); return r }
func round2(v float64) float64 { r, _ := stats.Round(v, 2); return r }
func round3(v float64) float64 { r, _ := stats.Round(v, 3); return r }

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
