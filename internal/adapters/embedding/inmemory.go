package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand"
)

// InMemory is a deterministic stand-in provider for tests and local
// development. It derives each vector from a hash of the text, so equal
// texts always embed identically and similar texts do not cluster — good
// enough to exercise the pipeline without network access.
type InMemory struct {
	dimension int
}

// NewInMemory creates an in-memory provider with the standard dimension.
func NewInMemory() *InMemory {
	return &InMemory{dimension: Dimension}
}

// NewInMemoryWithDimension creates an in-memory provider with a custom
// dimension, useful for keeping test fixtures small.
func NewInMemoryWithDimension(dim int) *InMemory {
	return &InMemory{dimension: dim}
}

// Name identifies the provider.
func (m *InMemory) Name() string { return "inmemory" }

// Dimension returns the vector dimension.
func (m *InMemory) Dimension() int { return m.dimension }

// Embed returns a unit-norm vector seeded by the text digest.
func (m *InMemory) Embed(_ context.Context, text string) ([]float64, error) {
	sum := sha256.Sum256([]byte(text))
	seed := int64(binary.BigEndian.Uint64(sum[:8])) //nolint:gosec // deterministic seed, not security sensitive
	rng := rand.New(rand.NewSource(seed))           //nolint:gosec // deterministic vectors for testing

	vec := make([]float64, m.dimension)
	var norm float64
	for i := range vec {
		vec[i] = rng.NormFloat64()
		norm += vec[i] * vec[i]
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		norm = 1
	}
	for i := range vec {
		vec[i] /= norm
	}
	return vec, nil
}

// EmbedBatch embeds every text independently.
func (m *InMemory) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}
