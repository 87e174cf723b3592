package ratelimit

import (
	"context"
	"sync"
	"time"
)

// counter es una ventana fija en curso para una key.
type counter struct {
	windowStart time.Time
	count       int
	lastAccess  time.Time
}

// MemoryLimiter implementa Limiter con contadores de ventana fija en
// memoria. Una goroutine de fondo desaloja keys inactivas para acotar la
// memoria; llamar Close para detenerla.
type MemoryLimiter struct {
	mu       sync.Mutex
	counters map[string]*counter

	stopOnce sync.Once
	done     chan struct{}

	now func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	m := &MemoryLimiter{
		counters: make(map[string]*counter),
		done:     make(chan struct{}),
		now:      time.Now,
	}
	go m.cleanup()
	return m
}

// Allow evalua todas las ventanas de la regla. Consume cupo en todas solo
// si todas permiten; un rechazo no gasta el cupo de las demas.
func (m *MemoryLimiter) Allow(_ context.Context, key string, windows []Window) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	pending := make([]*counter, 0, len(windows))
	for _, w := range windows {
		c := m.counterLocked(key, w, now)
		if c.count >= w.Limit {
			retry := c.windowStart.Add(w.Per).Sub(now)
			if retry < 0 {
				retry = 0
			}
			return Result{Allowed: false, RetryAfter: retry}, nil
		}
		pending = append(pending, c)
	}
	for _, c := range pending {
		c.count++
	}
	return Result{Allowed: true}, nil
}

// counterLocked busca o rota el contador de la key para la ventana dada.
func (m *MemoryLimiter) counterLocked(key string, w Window, now time.Time) *counter {
	ck := key + "|" + w.Per.String()
	c, ok := m.counters[ck]
	if !ok || now.Sub(c.windowStart) >= w.Per {
		c = &counter{windowStart: now}
		m.counters[ck] = c
	}
	c.lastAccess = now
	return c
}

func (m *MemoryLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			cutoff := m.now().Add(-2 * time.Hour)
			m.mu.Lock()
			for k, c := range m.counters {
				if c.lastAccess.Before(cutoff) {
					delete(m.counters, k)
				}
			}
			m.mu.Unlock()
		}
	}
}

// Close detiene la goroutine de limpieza. Idempotente.
func (m *MemoryLimiter) Close() {
	m.stopOnce.Do(func() { close(m.done) })
}
