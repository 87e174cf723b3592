// Package quota lleva el consumo de generaciones LLM por usuario con
// ventanas deslizantes en memoria.
package quota

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrQuotaExceeded indica que el usuario agoto alguna de sus ventanas.
var ErrQuotaExceeded = errors.New("generation quota exceeded")

// Limites por defecto de generacion de explicaciones.
const (
	DefaultPerDay  = 10
	DefaultPerHour = 2
)

// Tracker registra timestamps de uso por usuario. Las marcas viejas se
// purgan en cada acceso, asi la memoria queda acotada por los limites.
type Tracker struct {
	mu      sync.Mutex
	perDay  int
	perHour int
	usage   map[string][]time.Time

	now func() time.Time
}

func NewTracker(perDay, perHour int) *Tracker {
	return &Tracker{
		perDay:  perDay,
		perHour: perHour,
		usage:   make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Check verifica ambas ventanas sin consumir cupo. El error nombra la
// ventana agotada y cuando se libera.
func (t *Tracker) Check(userID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	marks := t.pruneLocked(userID, now)

	if t.perDay > 0 && len(marks) >= t.perDay {
		retry := marks[0].Add(24 * time.Hour).Sub(now)
		return fmt.Errorf("%w: daily limit of %d reached, retry in %s", ErrQuotaExceeded, t.perDay, retry.Round(time.Minute))
	}
	if t.perHour > 0 {
		hourAgo := now.Add(-time.Hour)
		inHour := 0
		oldest := time.Time{}
		for _, m := range marks {
			if m.After(hourAgo) {
				if oldest.IsZero() {
					oldest = m
				}
				inHour++
			}
		}
		if inHour >= t.perHour {
			retry := oldest.Add(time.Hour).Sub(now)
			return fmt.Errorf("%w: hourly limit of %d reached, retry in %s", ErrQuotaExceeded, t.perHour, retry.Round(time.Minute))
		}
	}
	return nil
}

// Record consume una unidad de cupo. Se llama solo tras una generacion
// real, nunca por fallbacks estaticos.
func (t *Tracker) Record(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	t.usage[userID] = append(t.pruneLocked(userID, now), now)
}

// Stats resume el estado de las ventanas de un usuario.
type Stats struct {
	UsedToday     int `json:"used_today"`
	UsedThisHour  int `json:"used_this_hour"`
	RemainingDay  int `json:"remaining_day"`
	RemainingHour int `json:"remaining_hour"`
}

func (t *Tracker) Stats(userID string) Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	marks := t.pruneLocked(userID, now)
	hourAgo := now.Add(-time.Hour)
	inHour := 0
	for _, m := range marks {
		if m.After(hourAgo) {
			inHour++
		}
	}
	s := Stats{UsedToday: len(marks), UsedThisHour: inHour}
	s.RemainingDay = clampZero(t.perDay - s.UsedToday)
	s.RemainingHour = clampZero(t.perHour - s.UsedThisHour)
	return s
}

// Reset borra el historial de un usuario. Pensado para tests y soporte.
func (t *Tracker) Reset(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.usage, userID)
}

// pruneLocked descarta marcas mayores a 24h y devuelve la lista vigente.
func (t *Tracker) pruneLocked(userID string, now time.Time) []time.Time {
	dayAgo := now.Add(-24 * time.Hour)
	marks := t.usage[userID]
	kept := marks[:0]
	for _, m := range marks {
		if m.After(dayAgo) {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		delete(t.usage, userID)
		return nil
	}
	t.usage[userID] = kept
	return kept
}

func clampZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
