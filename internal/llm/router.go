package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"lifesync-engine/internal/domain"
)

// Router recorre la cadena de proveedores, cada uno protegido por su
// propio circuit breaker, y degrada a una explicacion estatica cuando
// ninguno responde. Nunca devuelve error al caller.
type Router struct {
	providers []Provider
	breakers  map[string]*Breaker
	logger    *zap.Logger
}

func NewRouter(logger *zap.Logger, providers ...Provider) *Router {
	breakers := make(map[string]*Breaker, len(providers))
	for _, p := range providers {
		breakers[p.Name()] = NewBreaker(DefaultBreakerThreshold, DefaultBreakerRecovery)
	}
	return &Router{providers: providers, breakers: breakers, logger: logger}
}

// Explain genera la explicacion del assessment. El orden de intento es el
// orden de registro de proveedores; un breaker abierto saltea al
// siguiente. Si todo falla, FallbackExplanation.
func (r *Router) Explain(ctx context.Context, assessment *domain.Assessment, persona domain.Persona, tone *domain.ToneProfile) *domain.Explanation {
	prompt := BuildPrompt(assessment, persona, tone)
	req := Request{
		System:      SystemPrompt(),
		Prompt:      prompt,
		MaxTokens:   1024,
		Temperature: 0.7,
	}

	for _, p := range r.providers {
		breaker := r.breakers[p.Name()]
		if err := breaker.Allow(); err != nil {
			r.logger.Warn("provider skipped by breaker",
				zap.String("provider", p.Name()), zap.Error(err))
			continue
		}

		start := time.Now()
		resp, err := p.Generate(ctx, req)
		elapsed := time.Since(start)
		if err != nil {
			breaker.RecordFailure()
			r.logger.Error("provider failed",
				zap.String("provider", p.Name()),
				zap.Duration("elapsed", elapsed), zap.Error(err))
			continue
		}
		breaker.RecordSuccess()

		explanation := r.parse(resp, persona, tone)
		explanation.GenerationTimeMS = elapsed.Milliseconds()
		r.logger.Info("explanation generated",
			zap.String("provider", p.Name()),
			zap.String("model", resp.Model),
			zap.Bool("is_fallback", explanation.IsFallback),
			zap.Duration("elapsed", elapsed))
		return explanation
	}

	r.logger.Warn("all providers unavailable, using static fallback",
		zap.String("persona", persona.Tag))
	return FallbackExplanation(persona, tone, ErrAllProvidersFailed.Error())
}

// parse convierte la salida cruda en Explanation. Un JSON irreparable
// degrada al fallback estatico conservando un eco del texto.
func (r *Router) parse(resp *Response, persona domain.Persona, tone *domain.ToneProfile) *domain.Explanation {
	obj, ok := SafeParse(resp.Text)
	if !ok {
		e := FallbackExplanation(persona, tone, fmt.Sprintf("%v", obj["error"]))
		e.RawResponse = fmt.Sprintf("%v", obj["raw_response"])
		e.ModelName = resp.Model
		e.TokensUsed = resp.TokensUsed
		return e
	}

	e := &domain.Explanation{
		PersonaTitle:   str(obj, "persona_title", persona.Title),
		VibeSummary:    str(obj, "vibe_summary", ""),
		Strengths:      strs(obj, "strengths"),
		GrowthEdges:    strs(obj, "growth_edges"),
		HowYouShowUp:   str(obj, "how_you_show_up", ""),
		Tagline:        str(obj, "tagline", persona.Tagline),
		Steps:          strs(obj, "steps"),
		ConfidenceNote: str(obj, "confidence_note", ""),
		ModelName:      resp.Model,
		TokensUsed:     resp.TokensUsed,
		ToneProfile:    tone,
		Persona:        &persona,
	}
	normalize(e, obj)
	return e
}

// normalize completa el puente entre el formato nuevo y el legado. Primero
// rellena los campos nuevos desde los legados si el modelo respondio con el
// formato viejo; despues computa summary y challenges a partir de los campos
// nuevos, ignorando lo que el modelo haya puesto ahi.
func normalize(e *domain.Explanation, obj map[string]any) {
	if e.VibeSummary == "" {
		e.VibeSummary = str(obj, "summary", "")
	}
	if len(e.GrowthEdges) == 0 {
		e.GrowthEdges = strs(obj, "challenges")
	}

	e.Summary = e.VibeSummary
	if e.HowYouShowUp != "" {
		if e.Summary != "" {
			e.Summary += "\n\n"
		}
		e.Summary += e.HowYouShowUp
	}
	e.Challenges = e.GrowthEdges
}

// FallbackExplanation arma una explicacion generica a partir de los datos
// de la persona cuando no hay LLM disponible. Siempre marca is_fallback.
func FallbackExplanation(persona domain.Persona, tone *domain.ToneProfile, reason string) *domain.Explanation {
	return &domain.Explanation{
		PersonaTitle: persona.Title,
		VibeSummary:  persona.Descriptor,
		Strengths:    persona.Strengths,
		GrowthEdges:  persona.Growth,
		Tagline:      persona.Tagline,
		Summary:      persona.Descriptor,
		Challenges:   persona.Growth,
		Steps:        []string{"Revisit your results as you learn more about yourself."},
		ConfidenceNote: "This summary was prepared from your persona profile while our " +
			"writing assistant was unavailable.",
		Error:       reason,
		IsFallback:  true,
		ToneProfile: tone,
		Persona:     &persona,
	}
}

// BreakerStates expone el estado de cada breaker para metricas.
func (r *Router) BreakerStates() map[string]string {
	states := make(map[string]string, len(r.breakers))
	for name, b := range r.breakers {
		states[name] = b.State().String()
	}
	return states
}

func str(obj map[string]any, key, fallback string) string {
	if v, ok := obj[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func strs(obj map[string]any, key string) []string {
	raw, ok := obj[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
