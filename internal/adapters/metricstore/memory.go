package metricstore

import (
	"context"
	"sync"

	"github.com/padelhq/matchrank/internal/domain/model"
)

// Memory is an in-process Store for tests and local development.
type Memory struct {
	mu   sync.RWMutex
	rows map[string]model.PlayerMetrics
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{rows: make(map[string]model.PlayerMetrics)}
}

// Name identifies the store.
func (m *Memory) Name() string { return "memory" }

// Put stores metrics for a player.
func (m *Memory) Put(id string, metrics model.PlayerMetrics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[id] = metrics
}

// InsertPlayer stores the metrics-bearing fields of a full profile. It
// mirrors the Postgres writer so seeding can target either store.
func (m *Memory) InsertPlayer(_ context.Context, p model.Player) error {
	m.Put(p.ID, model.PlayerMetrics{
		AcceptanceRate: p.AcceptanceRate,
		LastActiveDays: p.LastActiveDays,
		Location:       p.Location,
		Availability:   p.Availability,
	})
	return nil
}

// BatchGet returns metrics for the known subset of ids.
func (m *Memory) BatchGet(_ context.Context, ids []string) (map[string]model.PlayerMetrics, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]model.PlayerMetrics, len(ids))
	for _, id := range ids {
		if metrics, ok := m.rows[id]; ok {
			out[id] = metrics
		}
	}
	return out, nil
}
