package engine

import (
	"sync"
	"time"

	"github.com/verte-zerg/orbitype/internal/model"
)

// Guard serializes access to a Session shared between a keystroke handler and
// tickers on other goroutines. Sinks run after the lock is released.
type Guard struct {
	mu      sync.RWMutex
	session *Session
	aborted bool
}

// NewGuard wraps s.
func NewGuard(s *Session) *Guard {
	return &Guard{session: s}
}

// Apply evaluates ev unless the session was aborted.
func (g *Guard) Apply(ev model.KeystrokeEvent) Outcome {
	g.mu.Lock()
	if g.aborted {
		g.mu.Unlock()
		return Outcome{}
	}
	out := g.session.apply(ev)
	g.mu.Unlock()
	g.session.emit(out)
	return out
}

// Snapshot copies the session counters.
func (g *Guard) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session.Snapshot()
}

// Metrics recomputes live metrics at now.
func (g *Guard) Metrics(now time.Time) model.Metrics {
	return LiveMetrics(g.Snapshot(), now)
}

// KeyStats copies the per-key counters.
func (g *Guard) KeyStats() map[rune]model.KeyCounter {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session.KeyStats()
}

// Abort discards the session. No summary is emitted afterwards.
func (g *Guard) Abort() {
	g.mu.Lock()
	g.aborted = true
	g.mu.Unlock()
}

// Done reports whether tickers should stop.
func (g *Guard) Done() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.aborted || g.session.complete
}
