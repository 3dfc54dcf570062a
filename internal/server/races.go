package server

import (
	"context"
	"sync"

	"github.com/verte-zerg/orbitype/internal/race"
)

// RaceStore persists race records.
type RaceStore interface {
	SaveRace(ctx context.Context, r race.Race) error
	GetRace(ctx context.Context, id string) (race.Race, error)
}

// MemoryRaceStore keeps races in process memory.
type MemoryRaceStore struct {
	mu    sync.RWMutex
	races map[string]race.Race
}

// NewMemoryRaceStore creates an empty store.
func NewMemoryRaceStore() *MemoryRaceStore {
	return &MemoryRaceStore{races: make(map[string]race.Race)}
}

// SaveRace stores or replaces a race.
func (m *MemoryRaceStore) SaveRace(_ context.Context, r race.Race) error {
	m.mu.Lock()
	m.races[r.ID] = r
	m.mu.Unlock()
	return nil
}

// GetRace returns race.ErrRaceNotFound for unknown ids.
func (m *MemoryRaceStore) GetRace(_ context.Context, id string) (race.Race, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.races[id]
	if !ok {
		return race.Race{}, race.ErrRaceNotFound
	}
	return r, nil
}
