// Package llm integra los proveedores de generacion de texto y las piezas
// que los protegen: reintentos, circuit breaker y parsing tolerante.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Request es un pedido de generacion neutral al proveedor.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// Response es la salida cruda de un proveedor.
type Response struct {
	Text       string
	Model      string
	TokensUsed *int
}

// Provider genera texto. Las implementaciones devuelven *ProviderError
// cuando el fallo viene del proveedor y no del caller.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Response, error)
}

// ErrAllProvidersFailed indica que ningun proveedor de la cadena pudo
// responder; el caller pasa al fallback estatico.
var ErrAllProvidersFailed = errors.New("all llm providers failed")

// ProviderError clasifica un fallo de proveedor para decidir reintentos.
type ProviderError struct {
	Provider  string
	Status    int
	Retriable bool
	Err       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsRateLimited distingue 429 y agotamiento de cuota: reintentables pero
// con esperas mas largas.
func (e *ProviderError) IsRateLimited() bool {
	if e.Status == 429 {
		return true
	}
	msg := strings.ToLower(e.Err.Error())
	return strings.Contains(msg, "rate limit") || strings.Contains(msg, "quota") || strings.Contains(msg, "resource exhausted")
}

// retriableMessage detecta fallos transitorios por el texto del error.
func retriableMessage(msg string) bool {
	msg = strings.ToLower(msg)
	for _, s := range []string{
		"timeout", "deadline", "connection", "temporarily unavailable",
		"overloaded", "internal error", "rate limit", "quota", "resource exhausted",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// permanentMessage detecta fallos de configuracion que no mejoran con
// reintentos.
func permanentMessage(msg string) bool {
	msg = strings.ToLower(msg)
	for _, s := range []string{"api key", "unauthorized", "invalid_api_key", "permission denied", "not found"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
