package statsdproxy

import (
	"sync"
	"time"
)

// Sink wraps a Stage chain in a single mutex so that independent producer
// goroutines can submit metrics through one pipeline without the core
// needing to know about concurrency at all. The lock is held for the
// duration of one Poll+Submit pair. Upstream's buffering means a given
// Submit call usually just copies bytes into memory; when the pair does
// make an Upstream flush, the socket send happens while the lock is held.
type Sink struct {
	mu    sync.Mutex
	chain Stage
}

// NewSink wraps chain (typically the head of a built middleware chain,
// ending in an Upstream or a test double) for concurrent library use.
func NewSink(chain Stage) *Sink {
	return &Sink{chain: chain}
}

// Submit polls the chain for time-based state, then submits m, all under
// the sink's lock.
func (s *Sink) Submit(m *Metric) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chain.Poll(now())
	s.chain.Submit(m)
}

// Poll lets a caller drive idle ticks explicitly (e.g. from a ticker
// goroutine) instead of relying on Submit traffic alone.
func (s *Sink) Poll(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chain.Poll(t)
}

// Close flushes and joins the underlying chain.
func (s *Sink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chain.Join()
}
