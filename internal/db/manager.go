package db

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"lifesync-engine/internal/config"
)

// ErrNotInitialized se devuelve al pedir el pool antes de Initialize.
var ErrNotInitialized = errors.New("db: connection manager not initialized")

// Manager mantiene un unico pool compartido por todo el proceso.
// Initialize es idempotente y segura ante llamadas concurrentes.
type Manager struct {
	mu   sync.RWMutex
	pool *pgxpool.Pool
}

var defaultManager = &Manager{}

// DefaultManager devuelve la instancia de proceso.
func DefaultManager() *Manager { return defaultManager }

// Initialize crea el pool si todavia no existe. Llamadas posteriores
// devuelven nil sin tocar el pool vigente.
func (m *Manager) Initialize(ctx context.Context, cfg *config.Config) error {
	m.mu.RLock()
	if m.pool != nil {
		m.mu.RUnlock()
		return nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pool != nil {
		return nil
	}
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return err
	}
	m.pool = pool
	return nil
}

// Pool devuelve el pool compartido o ErrNotInitialized.
func (m *Manager) Pool() (*pgxpool.Pool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.pool == nil {
		return nil, ErrNotInitialized
	}
	return m.pool, nil
}

// Close cierra el pool. Idempotente.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pool != nil {
		m.pool.Close()
		m.pool = nil
	}
}

// Reset descarta el pool sin cerrarlo. Solo para tests que inyectan un
// pool falso.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pool = nil
}
