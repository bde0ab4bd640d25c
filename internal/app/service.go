// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/padelhq/matchrank/internal/adapters/embedding"
	"github.com/padelhq/matchrank/internal/adapters/metricstore"
	"github.com/padelhq/matchrank/internal/adapters/vectorindex"
	"github.com/padelhq/matchrank/internal/domain/matching"
	"github.com/padelhq/matchrank/internal/domain/model"
	"github.com/padelhq/matchrank/internal/domain/scoring"
	"github.com/padelhq/matchrank/pkg/logger"
	"github.com/padelhq/matchrank/pkg/metrics"
)

// Default retrieval breadth before filtering.
const defaultTopK = 50

// Service wires the candidate pipeline: encode the request, retrieve
// nearest neighbours, filter, enrich, score and assemble.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	provider embedding.Provider
	index    vectorindex.Index
	store    metricstore.Store
	engine   *scoring.Engine

	// Configuration
	topK         int
	resultLimit  int
	scoreWorkers int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEmbeddingProvider sets the embedding provider.
func WithEmbeddingProvider(p embedding.Provider) Option {
	return func(s *Service) {
		if p != nil {
			s.provider = p
		}
	}
}

// WithVectorIndex sets the vector index used for retrieval.
func WithVectorIndex(idx vectorindex.Index) Option {
	return func(s *Service) {
		if idx != nil {
			s.index = idx
		}
	}
}

// WithMetricStore sets the relational player metrics store.
func WithMetricStore(st metricstore.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithScoringEngine sets a custom scoring engine.
func WithScoringEngine(e *scoring.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithTopK sets how many neighbours are pulled from the index.
func WithTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithResultLimit caps the ranked list returned to callers.
func WithResultLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.resultLimit = limit
		}
	}
}

// WithScoreWorkers bounds the goroutines scoring candidates in parallel.
func WithScoreWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.scoreWorkers = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		topK:         defaultTopK,
		resultLimit:  matching.DefaultResultLimit,
		scoreWorkers: runtime.NumCPU(),
		engine:       scoring.NewEngine(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service, falling back to in-process collaborators
// for anything not injected.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting matchrank service...")

	if s.provider == nil {
		s.provider = embedding.NewInMemory()
		s.logger.Warn(ctx, "no embedding provider configured, using in-memory encoder")
	}
	if s.index == nil {
		s.index = vectorindex.NewMemory()
		s.logger.Warn(ctx, "no vector index configured, using in-memory index")
	}
	if s.store == nil {
		s.store = metricstore.NewMemory()
		s.logger.Warn(ctx, "no metrics store configured, using in-memory store")
	}

	s.started = true
	s.logger.Info(ctx, "matchrank service started",
		logger.String("provider", s.provider.Name()),
		logger.String("index", s.index.Name()),
		logger.String("store", s.store.Name()),
		logger.Int("topK", s.topK),
		logger.Int("resultLimit", s.resultLimit),
		logger.Int("scoreWorkers", s.scoreWorkers),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping matchrank service...")

	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "matchrank service stopped")
}

// FindCandidates runs the full pipeline for one match request and returns
// the ranked candidate list.
func (s *Service) FindCandidates(ctx context.Context, req model.MatchRequest) ([]model.Candidate, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	metrics.RecordSearch()
	total := time.Now()

	vec, err := s.encode(ctx, req)
	if err != nil {
		return nil, err
	}

	pool, err := s.retrieve(ctx, vec, req)
	if err != nil {
		return nil, err
	}

	pool = matching.HardFilter(pool, req)
	if len(pool) == 0 {
		metrics.RecordNoCandidates()
		return nil, fmt.Errorf("%w: match %s", matching.ErrNoCandidates, req.MatchID)
	}

	if err := s.enrich(ctx, pool); err != nil {
		return nil, err
	}

	s.score(ctx, pool, req)

	candidates, err := matching.Assemble(pool, req, s.resultLimit)
	if err != nil {
		metrics.RecordNoCandidates()
		return nil, err
	}

	metrics.RecordPipelineDuration(millisSince(total))
	metrics.RecordCandidatesReturned(len(candidates))
	s.logger.Debug(ctx, "pipeline completed",
		logger.String("matchID", req.MatchID),
		logger.Int("candidates", len(candidates)),
	)
	return candidates, nil
}

// encode turns the request into its canonical text and embeds it.
func (s *Service) encode(ctx context.Context, req model.MatchRequest) ([]float64, error) {
	start := time.Now()
	vec, err := s.provider.Embed(ctx, matching.Describe(req))
	if err != nil {
		metrics.RecordErrorLatency("embedding", "encode_failed", millisSince(start))
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	metrics.RecordStageDuration(metrics.StageEncode, millisSince(start))
	return vec, nil
}

// retrieve queries the index and materializes the working pool. Category
// and gender predicates are pushed into the index; numeric ranges are
// evaluated by the hard filter afterwards.
func (s *Service) retrieve(ctx context.Context, vec []float64, req model.MatchRequest) ([]matching.ScoredPlayer, error) {
	start := time.Now()

	filter := vectorindex.Filter{Categories: req.Categories}
	switch req.GenderPreference {
	case model.PreferMale:
		filter.Gender = model.GenderMale
	case model.PreferFemale:
		filter.Gender = model.GenderFemale
	case model.PreferMixed:
		// no gender predicate
	}

	matches, err := s.index.Query(ctx, vec, filter, s.topK)
	if err != nil {
		metrics.RecordErrorLatency("vectorindex", "query_failed", millisSince(start))
		return nil, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}
	metrics.RecordStageDuration(metrics.StageRetrieve, millisSince(start))

	pool := make([]matching.ScoredPlayer, 0, len(matches))
	for _, m := range matches {
		pool = append(pool, matching.ScoredPlayer{
			Player: model.Player{
				ID:        m.ID,
				Name:      m.Metadata.Name,
				Elo:       m.Metadata.Elo,
				Age:       m.Metadata.Age,
				Gender:    m.Metadata.Gender,
				Category:  m.Metadata.Category,
				Positions: m.Metadata.Positions,
				Location:  model.Location{Zone: m.Metadata.Zone},
			},
			Similarity: m.Similarity,
		})
	}
	return pool, nil
}

// enrich loads behavioral metrics for the pool in one batch. Players
// missing from the store get the neutral defaults; a wholesale outage
// aborts the pipeline.
func (s *Service) enrich(ctx context.Context, pool []matching.ScoredPlayer) error {
	start := time.Now()

	ids := make([]string, len(pool))
	for i := range pool {
		ids[i] = pool[i].Player.ID
	}

	rows, err := s.store.BatchGet(ctx, ids)
	if err != nil {
		metrics.RecordErrorLatency("metricstore", "batch_get_failed", millisSince(start))
		return fmt.Errorf("%w: %w", ErrDatabase, err)
	}
	metrics.RecordStageDuration(metrics.StageEnrich, millisSince(start))

	for i := range pool {
		row, ok := rows[pool[i].Player.ID]
		if !ok {
			row = model.DefaultPlayerMetrics()
		}
		pool[i].Player.AcceptanceRate = row.AcceptanceRate
		pool[i].Player.LastActiveDays = row.LastActiveDays
		pool[i].Player.Availability = row.Availability
		pool[i].Player.Location.Lat = row.Location.Lat
		pool[i].Player.Location.Lon = row.Location.Lon
		if row.Location.Zone != "" {
			pool[i].Player.Location.Zone = row.Location.Zone
		}
	}
	return nil
}

// score computes the composite for every pool entry. Scoring is pure, so
// entries are scored in parallel with a bounded group.
func (s *Service) score(ctx context.Context, pool []matching.ScoredPlayer, req model.MatchRequest) {
	start := time.Now()

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(s.scoreWorkers)
	for i := range pool {
		i := i
		g.Go(func() error {
			pool[i].Result = s.engine.Score(pool[i].Player, req, pool[i].Similarity)
			return nil
		})
	}
	_ = g.Wait()

	metrics.RecordStageDuration(metrics.StageScore, millisSince(start))
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"topK":         s.topK,
		"resultLimit":  s.resultLimit,
		"scoreWorkers": s.scoreWorkers,
	}

	if s.started {
		stats["provider"] = s.provider.Name()
		stats["index"] = s.index.Name()
		stats["store"] = s.store.Name()
		if counter, ok := s.index.(interface{ Count() int }); ok {
			stats["indexedPlayers"] = counter.Count()
		}
	}

	return stats
}

func millisSince(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
