// Package ratelimit limita la tasa de requests por cliente y endpoint con
// ventanas fijas multiples (por ejemplo 3/minuto y 10/hora a la vez).
package ratelimit

import (
	"context"
	"time"
)

// Window define un limite sobre un periodo. Ambas ventanas de una regla
// deben pasar para que el request avance.
type Window struct {
	Limit int
	Per   time.Duration
}

// Result informa el veredicto y, si fue denegado, cuanto esperar.
type Result struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter decide si un request identificado por key puede pasar. Las
// implementaciones consumen el cupo solo cuando permiten el request.
type Limiter interface {
	Allow(ctx context.Context, key string, windows []Window) (Result, error)
}

// Key namespacea el contador por endpoint y cliente, para que el consumo
// en una ruta no afecte a las demas.
func Key(endpoint, clientIP string) string {
	return endpoint + ":" + clientIP
}
