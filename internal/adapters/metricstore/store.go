// Package metricstore provides batched access to the relational player
// metrics backing the scoring signals that do not live in the vector index.
package metricstore

import (
	"context"
	"errors"

	"github.com/padelhq/matchrank/internal/domain/model"
)

// ErrUnavailable marks a wholesale store outage. Individual missing rows
// are not errors; they are simply absent from the returned map and the
// caller substitutes the neutral default.
var ErrUnavailable = errors.New("metrics store unavailable")

// Store is the relational metrics collaborator. Lookups are batch-only:
// one round trip per pipeline invocation, never one query per candidate.
type Store interface {
	// BatchGet returns metrics for the given player ids in a single query.
	// Ids without a row are absent from the result.
	BatchGet(ctx context.Context, ids []string) (map[string]model.PlayerMetrics, error)

	// Name identifies the store for logs and health reporting.
	Name() string
}
