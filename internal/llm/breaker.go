package llm

import (
	"fmt"
	"sync"
	"time"
)

// BreakerState es el estado del circuit breaker de un proveedor.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Valores por defecto del breaker de proveedores.
const (
	DefaultBreakerThreshold = 3
	DefaultBreakerRecovery  = 60 * time.Second
)

// Breaker corta las llamadas a un proveedor tras una racha de fallos y
// deja pasar una sonda cuando vence el periodo de recuperacion.
type Breaker struct {
	mu          sync.Mutex
	threshold   int
	recovery    time.Duration
	failures    int
	lastFailure time.Time
	state       BreakerState

	now func() time.Time
}

func NewBreaker(threshold int, recovery time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = DefaultBreakerThreshold
	}
	if recovery <= 0 {
		recovery = DefaultBreakerRecovery
	}
	return &Breaker{threshold: threshold, recovery: recovery, state: BreakerClosed, now: time.Now}
}

// Allow decide si un request puede intentar el proveedor. En estado open
// devuelve error hasta que venza el periodo de recuperacion; entonces pasa
// a half-open y deja pasar una sola sonda.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		return nil
	case BreakerOpen:
		if b.now().Sub(b.lastFailure) >= b.recovery {
			b.state = BreakerHalfOpen
			return nil
		}
		return fmt.Errorf("circuit open: %d consecutive failures, last %s ago",
			b.failures, b.now().Sub(b.lastFailure).Round(time.Second))
	case BreakerHalfOpen:
		return fmt.Errorf("circuit half-open: probe already in flight")
	}
	return nil
}

// RecordSuccess cierra el circuito y resetea la racha.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.state = BreakerClosed
}

// RecordFailure suma a la racha; al llegar al umbral (o si fallo la sonda
// half-open) abre el circuito.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.lastFailure = b.now()
	if b.state == BreakerHalfOpen || b.failures >= b.threshold {
		b.state = BreakerOpen
	}
}

// State devuelve el estado actual, resolviendo la transicion open ->
// half-open por tiempo.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == BreakerOpen && b.now().Sub(b.lastFailure) >= b.recovery {
		return BreakerHalfOpen
	}
	return b.state
}
