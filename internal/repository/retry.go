package repository

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Politica de reintentos de base de datos.
const (
	retryAttempts  = 3
	retryBaseDelay = time.Second
)

// Timeouts por tipo de operacion. Se sobreescriben desde main con los
// valores de DATABASE_QUERY_TIMEOUT y DATABASE_AUTH_TIMEOUT.
var (
	QueryTimeout = 30 * time.Second
	AuthTimeout  = 10 * time.Second
)

// ConfigureTimeouts fija el presupuesto por operacion. Los valores no
// positivos dejan el default vigente.
func ConfigureTimeouts(query, auth time.Duration) {
	if query > 0 {
		QueryTimeout = query
	}
	if auth > 0 {
		AuthTimeout = auth
	}
}

// transientCodes son clases de SQLSTATE que suelen resolverse reintentando.
var transientCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"53300": true, // too_many_connections
	"57P03": true, // cannot_connect_now
	"08000": true, // connection_exception
	"08003": true, // connection_does_not_exist
	"08006": true, // connection_failure
}

// permanentFragments identifican errores que reintentar no va a arreglar.
var permanentFragments = []string{
	"syntax error",
	"does not exist",
	"violates",
	"constraint",
	"permission denied",
	"invalid input",
}

// transientFragments cubren drivers o proxies que no exponen SQLSTATE.
var transientFragments = []string{
	"connection",
	"timeout",
	"temporarily unavailable",
	"rate limit",
	"deadlock",
}

// IsTransient clasifica un error de base: primero por SQLSTATE, despues
// por el texto del mensaje. Ante la duda no se reintenta.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return transientCodes[pgErr.Code]
	}

	msg := strings.ToLower(err.Error())
	for _, frag := range permanentFragments {
		if strings.Contains(msg, frag) {
			return false
		}
	}
	for _, frag := range transientFragments {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}

// WithRetry ejecuta fn con hasta retryAttempts intentos sobre errores
// transitorios, con backoff exponencial 1s, 2s, 4s mas jitter. Los errores
// permanentes y la cancelacion del contexto cortan de inmediato.
func WithRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	delay := retryBaseDelay
	var err error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		err = fn(ctx)
		if err == nil || !IsTransient(err) {
			return err
		}
		if attempt == retryAttempts {
			break
		}
		jitter := time.Duration(rand.Int63n(int64(delay) / 4))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay + jitter):
		}
		delay *= 2
	}
	return err
}
