package llm

import (
	"strings"

	"lifesync-engine/internal/domain"
)

// Bandas de score para adaptar el tono del texto generado.
const (
	toneLow  = 0.35
	toneHigh = 0.65
)

// Tone deriva un perfil de tono a partir de los cinco traits para que la
// explicacion le hable al usuario en su propio registro. Devuelve nil si
// no hay ningun trait con datos; el prompt sale sin bloque de tono.
func Tone(ocean map[string]float64, traitsWithData []string) *domain.ToneProfile {
	if len(traitsWithData) == 0 {
		return nil
	}
	present := make(map[string]bool, len(traitsWithData))
	for _, t := range traitsWithData {
		present[t] = true
	}

	var styles, strengths, cautions []string

	if present["E"] {
		switch band(ocean["E"]) {
		case "high":
			styles = append(styles, "energetic and expressive")
			strengths = append(strengths, "Speaks up and brings people along")
		case "low":
			styles = append(styles, "calm and reflective")
			strengths = append(strengths, "Listens deeply before responding")
			cautions = append(cautions, "Avoid pushing for big social leaps")
		default:
			styles = append(styles, "balanced between action and reflection")
		}
	}
	if present["O"] {
		switch band(ocean["O"]) {
		case "high":
			styles = append(styles, "curious and idea-driven")
			strengths = append(strengths, "Embraces novel framings")
		case "low":
			styles = append(styles, "practical and concrete")
			cautions = append(cautions, "Keep advice grounded, skip abstractions")
		}
	}
	if present["C"] {
		switch band(ocean["C"]) {
		case "high":
			strengths = append(strengths, "Follows through on structured plans")
		case "low":
			cautions = append(cautions, "Prefer small flexible steps over rigid schedules")
		}
	}
	if present["A"] {
		switch band(ocean["A"]) {
		case "high":
			styles = append(styles, "warm and collaborative")
		case "low":
			styles = append(styles, "direct and candid")
		}
	}
	if present["N"] {
		switch band(ocean["N"]) {
		case "high":
			styles = append(styles, "gentle and reassuring")
			cautions = append(cautions, "Frame growth areas with care, avoid alarmist language")
		case "low":
			strengths = append(strengths, "Stays steady under pressure")
		}
	}

	style := strings.Join(styles, ", ")
	if style == "" {
		style = "neutral and supportive"
	}
	return &domain.ToneProfile{Style: style, Strengths: strengths, Cautions: cautions}
}

func band(v float64) string {
	switch {
	case v >= toneHigh:
		return "high"
	case v < toneLow:
		return "low"
	default:
		return "mid"
	}
}
