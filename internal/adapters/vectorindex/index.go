// Package vectorindex defines the vector index contract used for candidate
// retrieval, plus its implementations.
package vectorindex

import (
	"context"
	"errors"
	"fmt"

	"github.com/padelhq/matchrank/internal/domain/model"
)

// Sentinel kinds for index failures.
var (
	ErrUnavailable = errors.New("vector index unavailable")
	ErrBadMetadata = errors.New("invalid vector metadata")
)

// Metadata is the strongly-typed view of what the index stores next to each
// vector. It is validated once at the retrieval boundary instead of being
// poked at downstream.
type Metadata struct {
	Name      string           `json:"name"`
	Elo       int              `json:"elo"`
	Age       int              `json:"age"`
	Gender    model.Gender     `json:"gender"`
	Category  model.Category   `json:"category"`
	Zone      string           `json:"zone"`
	Positions []model.Position `json:"positions"`
}

// Validate checks the invariants the rest of the pipeline relies on.
func (m Metadata) Validate() error {
	switch {
	case m.Elo <= 0:
		return fmt.Errorf("%w: elo must be positive, got %d", ErrBadMetadata, m.Elo)
	case !m.Gender.Valid():
		return fmt.Errorf("%w: unknown gender %q", ErrBadMetadata, m.Gender)
	case !m.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", ErrBadMetadata, m.Category)
	}
	for _, p := range m.Positions {
		if !p.Valid() {
			return fmt.Errorf("%w: unknown position %q", ErrBadMetadata, p)
		}
	}
	return nil
}

// Match is one retrieval hit: a player id, its similarity to the query in
// [0, 1], and the stored metadata snapshot.
type Match struct {
	ID         string
	Similarity float64
	Metadata   Metadata
}

// Filter carries the coarse categorical predicates pushed into the index.
// Numeric ranges (ELO, age) are deliberately absent: range predicates
// degrade index performance, so they are evaluated downstream.
type Filter struct {
	Categories []model.Category
	Gender     model.Gender // empty means no gender predicate
}

// Empty reports whether the filter carries no predicates.
func (f Filter) Empty() bool {
	return len(f.Categories) == 0 && f.Gender == ""
}

// Index is the vector store consumed by retrieval. Upsert and Delete exist
// for maintenance flows such as seeding.
type Index interface {
	// Query returns up to topK matches ordered by descending similarity.
	Query(ctx context.Context, vector []float64, filter Filter, topK int) ([]Match, error)

	// Upsert stores or replaces a vector with its metadata.
	Upsert(ctx context.Context, id string, vector []float64, meta Metadata) error

	// Delete removes a vector.
	Delete(ctx context.Context, id string) error

	// Name identifies the index for logs and health reporting.
	Name() string
}
