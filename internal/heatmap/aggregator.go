package heatmap

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/verte-zerg/orbitype/internal/model"
)

// Store persists the durable aggregate.
type Store interface {
	MergeKeyStats(ctx context.Context, delta map[rune]model.KeyCounter) error
	LoadKeyStats(ctx context.Context) ([]model.KeyStat, error)
}

// Aggregator keeps an in-memory heatmap in step with a Store.
type Aggregator struct {
	mu     sync.RWMutex
	store  Store
	heat   *Heatmap
	logger *zap.Logger
}

// NewAggregator creates an aggregator. A nil store keeps stats in memory only.
func NewAggregator(store Store, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{store: store, heat: New(), logger: logger}
}

// Load replaces the in-memory aggregate with what the store holds.
func (a *Aggregator) Load(ctx context.Context) error {
	if a.store == nil {
		return nil
	}
	stats, err := a.store.LoadKeyStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to load key stats: %w", err)
	}
	heat := FromStats(stats)
	a.mu.Lock()
	a.heat = heat
	a.mu.Unlock()
	return nil
}

// Complete merges a finished session's delta. The in-memory aggregate is
// always updated; a persistence failure is logged and returned as a warning.
func (a *Aggregator) Complete(ctx context.Context, delta map[rune]model.KeyCounter) error {
	a.mu.Lock()
	a.heat.Merge(delta)
	a.mu.Unlock()
	if a.store == nil || len(delta) == 0 {
		return nil
	}
	if err := a.store.MergeKeyStats(ctx, delta); err != nil {
		a.logger.Warn("key stats not persisted", zap.Int("keys", len(delta)), zap.Error(err))
		return fmt.Errorf("failed to persist key stats: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the in-memory heatmap.
func (a *Aggregator) Snapshot() *Heatmap {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return FromStats(a.heat.Stats())
}
