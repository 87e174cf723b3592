// Package metrics acumula contadores de proceso para la pagina /metrics.
package metrics

import (
	"sync"
	"time"
)

// Collector es seguro para uso concurrente desde el middleware HTTP.
type Collector struct {
	mu           sync.Mutex
	startedAt    time.Time
	requestCount uint64
	errorCount   uint64
	totalLatency time.Duration
}

func NewCollector() *Collector {
	return &Collector{startedAt: time.Now()}
}

// Observe registra un request terminado.
func (c *Collector) Observe(status int, latency time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requestCount++
	c.totalLatency += latency
	if status >= 500 {
		c.errorCount++
	}
}

// Snapshot es el estado publicado en /metrics.
type Snapshot struct {
	UptimeSeconds float64 `json:"uptime_seconds"`
	RequestCount  uint64  `json:"request_count"`
	ErrorCount    uint64  `json:"error_count"`
	AvgLatencyMS  float64 `json:"avg_latency_ms"`
}

func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		UptimeSeconds: time.Since(c.startedAt).Seconds(),
		RequestCount:  c.requestCount,
		ErrorCount:    c.errorCount,
	}
	if c.requestCount > 0 {
		s.AvgLatencyMS = float64(c.totalLatency.Milliseconds()) / float64(c.requestCount)
	}
	return s
}
