package vectorindex

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/padelhq/matchrank/internal/domain/model"
)

// Memory is an in-process Index for tests, local development and seeding
// dry runs. Cosine similarity, thread safe, nothing survives a restart.
type Memory struct {
	mu      sync.RWMutex
	vectors map[string][]float64
	meta    map[string]Metadata
}

// NewMemory creates an empty in-memory index.
func NewMemory() *Memory {
	return &Memory{
		vectors: make(map[string][]float64),
		meta:    make(map[string]Metadata),
	}
}

// Name identifies the index.
func (m *Memory) Name() string { return "memory" }

// Query scans all stored vectors, applies the filter, and returns the topK
// most similar entries in descending order.
func (m *Memory) Query(_ context.Context, vector []float64, filter Filter, topK int) ([]Match, error) {
	if topK <= 0 {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]Match, 0, len(m.vectors))
	for id, stored := range m.vectors {
		meta := m.meta[id]
		if !matchesFilter(meta, filter) {
			continue
		}
		matches = append(matches, Match{
			ID:         id,
			Similarity: cosineSimilarity(vector, stored),
			Metadata:   meta,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Upsert stores or replaces a vector after validating its metadata.
func (m *Memory) Upsert(_ context.Context, id string, vector []float64, meta Metadata) error {
	if err := meta.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]float64, len(vector))
	copy(stored, vector)
	m.vectors[id] = stored
	m.meta[id] = meta
	return nil
}

// Delete removes a vector; deleting an unknown id is a no-op.
func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vectors, id)
	delete(m.meta, id)
	return nil
}

// Count returns the number of stored vectors.
func (m *Memory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vectors)
}

func matchesFilter(meta Metadata, f Filter) bool {
	if len(f.Categories) > 0 && !containsCategory(f.Categories, meta.Category) {
		return false
	}
	if f.Gender != "" && meta.Gender != f.Gender {
		return false
	}
	return true
}

func containsCategory(cats []model.Category, c model.Category) bool {
	for _, have := range cats {
		if have == c {
			return true
		}
	}
	return false
}

// cosineSimilarity maps the cosine of the angle between a and b into [0, 1].
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return (cos + 1) / 2
}
