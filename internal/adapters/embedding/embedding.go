// Package embedding defines the embedding-provider contract and its
// implementations.
package embedding

import (
	"context"
	"errors"
)

// Dimension of the embedding space used across the system.
const Dimension = 1536

// Sentinel kinds for provider failures. Authentication, rate-limit and
// transient errors must stay distinguishable for the caller.
var (
	ErrAuth        = errors.New("embedding provider authentication failed")
	ErrRateLimited = errors.New("embedding provider rate limited")
	ErrUnavailable = errors.New("embedding provider unavailable")
	ErrDimension   = errors.New("unexpected embedding dimension")
)

// Provider produces fixed-dimension embedding vectors for texts.
type Provider interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float64, error)

	// EmbedBatch returns one vector per input text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)

	// Dimension returns the vector dimension this provider produces.
	Dimension() int

	// Name identifies the provider for logs and health reporting.
	Name() string
}
