package seed

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/padelhq/matchrank/internal/adapters/embedding"
	"github.com/padelhq/matchrank/internal/adapters/vectorindex"
	"github.com/padelhq/matchrank/internal/domain/matching"
	"github.com/padelhq/matchrank/internal/domain/model"
	"github.com/padelhq/matchrank/pkg/logger"
)

// Writer persists the relational player rows alongside the index vectors.
type Writer interface {
	InsertPlayer(ctx context.Context, p model.Player) error
}

// Run generates players and loads them into the vector index and the
// metrics store, batch by batch.
func Run(ctx context.Context, config *Config, provider embedding.Provider, index vectorindex.Index, writer Writer) (*Stats, error) {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting player seeding",
		logger.Int("players", config.NumPlayers),
		logger.Int("batchSize", config.BatchSize),
		logger.Int("workers", config.Workers),
		logger.String("provider", provider.Name()),
		logger.String("index", index.Name()))

	gen := NewGenerator(config.Seed)

	for start := 0; start < config.NumPlayers; start += config.BatchSize {
		end := start + config.BatchSize
		if end > config.NumPlayers {
			end = config.NumPlayers
		}

		batch := make([]model.Player, 0, end-start)
		for i := start; i < end; i++ {
			batch = append(batch, gen.Player())
		}
		stats.PlayersGenerated += len(batch)

		if err := loadBatch(ctx, config, batch, provider, index, writer, stats); err != nil {
			return stats, fmt.Errorf("batch %d-%d failed: %w", start, end, err)
		}
		stats.Batches++

		logger.Get().Info(ctx, "batch completed",
			logger.Int("from", start),
			logger.Int("to", end))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	logger.Get().Info(ctx, "seeding completed",
		logger.Int("generated", stats.PlayersGenerated),
		logger.Int("indexed", stats.PlayersIndexed),
		logger.Int("stored", stats.PlayersStored),
		logger.String("duration", stats.Duration.String()))
	return stats, nil
}

// loadBatch embeds one batch of descriptions in a single provider call,
// then upserts vectors and rows concurrently.
func loadBatch(ctx context.Context, config *Config, batch []model.Player, provider embedding.Provider, index vectorindex.Index, writer Writer, stats *Stats) error {
	descriptions := make([]string, len(batch))
	for i, p := range batch {
		descriptions[i] = matching.DescribePlayer(p)
	}

	vectors, err := provider.EmbedBatch(ctx, descriptions)
	if err != nil {
		return fmt.Errorf("embedding batch failed: %w", err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embedding batch returned %d vectors for %d players", len(vectors), len(batch))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Workers)
	for i := range batch {
		i := i
		g.Go(func() error {
			p := batch[i]
			if err := index.Upsert(ctx, p.ID, vectors[i], vectorindex.Metadata{
				Name:      p.Name,
				Elo:       p.Elo,
				Age:       p.Age,
				Gender:    p.Gender,
				Category:  p.Category,
				Zone:      p.Location.Zone,
				Positions: p.Positions,
			}); err != nil {
				return fmt.Errorf("upsert %s: %w", p.ID, err)
			}
			if err := writer.InsertPlayer(ctx, p); err != nil {
				return fmt.Errorf("insert %s: %w", p.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	stats.PlayersIndexed += len(batch)
	stats.PlayersStored += len(batch)
	return nil
}
