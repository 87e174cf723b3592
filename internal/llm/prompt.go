package llm

import (
	"fmt"
	"sort"
	"strings"

	"lifesync-engine/internal/domain"
)

// lowConfidenceCutoff marca cuando la explicacion debe aclarar que el
// perfil tiene pocos datos.
const lowConfidenceCutoff = 0.5

const systemPrompt = `You are a warm, insightful personality coach. You write short, vivid,
second-person explanations of Big Five assessment results.

Respond with a single JSON object and nothing else. Use exactly these keys:
"persona_title", "vibe_summary", "strengths" (array of 3 strings),
"growth_edges" (array of 3 strings), "how_you_show_up", "tagline",
"summary", "challenges" (array of strings), "steps" (array of strings),
"confidence_note".

Never mention raw scores, percentages, MBTI, or the words "test" or
"assessment". Never diagnose. Keep every field encouraging and specific.`

// SystemPrompt devuelve la instruccion fija del generador de explicaciones.
func SystemPrompt() string { return systemPrompt }

// BuildPrompt arma el prompt de usuario con el perfil puntuado, la persona
// asignada y el tono derivado.
func BuildPrompt(assessment *domain.Assessment, persona domain.Persona, tone *domain.ToneProfile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Persona: %s (%s)\n", persona.Title, persona.Tag)
	if persona.Tagline != "" {
		fmt.Fprintf(&b, "Persona tagline: %s\n", persona.Tagline)
	}
	if persona.Descriptor != "" {
		fmt.Fprintf(&b, "Persona descriptor: %s\n", persona.Descriptor)
	}

	b.WriteString("\nTrait profile (0 = very low, 1 = very high):\n")
	for _, code := range domain.TraitCodes {
		name := domain.TraitNames[code]
		score := assessment.TraitScores[code]
		if score == nil {
			fmt.Fprintf(&b, "- %s: no data\n", name)
			continue
		}
		fmt.Fprintf(&b, "- %s: %.2f (%s)\n", name, *score, band(*score))
	}

	if len(assessment.FacetScores) > 0 {
		b.WriteString("\nStrongest facets:\n")
		for _, f := range topFacetLines(assessment.FacetScores, 5) {
			b.WriteString(f)
		}
	}

	if tone != nil {
		fmt.Fprintf(&b, "\nWriting tone: %s\n", tone.Style)
		for _, c := range tone.Cautions {
			fmt.Fprintf(&b, "Tone caution: %s\n", c)
		}
	}

	if assessment.Confidence < lowConfidenceCutoff {
		b.WriteString("\nNote: this profile is based on limited data. The confidence_note field must gently say the picture will sharpen with more answers.\n")
	}

	b.WriteString("\nWrite the JSON object now.")
	return b.String()
}

func topFacetLines(facets map[string]*float64, n int) []string {
	type kv struct {
		name  string
		score float64
	}
	valid := make([]kv, 0, len(facets))
	for name, v := range facets {
		if v != nil {
			valid = append(valid, kv{name, *v})
		}
	}
	sort.Slice(valid, func(i, j int) bool {
		if valid[i].score != valid[j].score {
			return valid[i].score > valid[j].score
		}
		return valid[i].name < valid[j].name
	})
	if len(valid) > n {
		valid = valid[:n]
	}
	lines := make([]string, len(valid))
	for i, f := range valid {
		lines[i] = fmt.Sprintf("- %s: %.2f\n", f.name, f.score)
	}
	return lines
}
