package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/padelhq/matchrank/internal/adapters/embedding"
	"github.com/padelhq/matchrank/internal/adapters/metricstore"
	"github.com/padelhq/matchrank/internal/adapters/vectorindex"
	"github.com/padelhq/matchrank/internal/config"
	"github.com/padelhq/matchrank/internal/seed"
)

// Default configuration constants.
const (
	defaultNumPlayers  = 1000
	defaultBatchSize   = 100
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultSeedTimeout = 30 * time.Minute
)

func main() {
	var (
		numPlayers = flag.Int("players", defaultNumPlayers, "Number of players to generate")
		batchSize  = flag.Int("batch", defaultBatchSize, "Players per embedding batch")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent upsert workers")
		rngSeed    = flag.Int64("seed", 0, "RNG seed for reproducible runs (default: time-based)")
		logFile    = flag.String("log", "", "Log file for seeder output (default: seed_log_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seed.ShowHelp()
		return
	}

	// Setup logging
	if err := seed.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultSeedTimeout)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("Failed to load config: " + err.Error() + "\n")
		return
	}

	// Collaborators: real ones when configured, in-memory otherwise so a
	// dry run works without credentials.
	var provider embedding.Provider = embedding.NewInMemory()
	if cfg.OpenAIAPIKey != "" {
		opts := []embedding.OpenAIOption{embedding.WithModel(cfg.OpenAIModel)}
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, embedding.WithBaseURL(cfg.OpenAIBaseURL))
		}
		provider = embedding.NewOpenAI(cfg.OpenAIAPIKey, opts...)
	}

	var index vectorindex.Index = vectorindex.NewMemory()
	if cfg.PineconeAPIKey != "" && cfg.PineconeBaseURL != "" {
		index = vectorindex.NewPinecone(cfg.PineconeBaseURL, cfg.PineconeAPIKey,
			vectorindex.WithNamespace(cfg.PineconeNamespace))
	}

	var writer seed.Writer = metricstore.NewMemory()
	if cfg.DatabaseURL != "" {
		store, err := metricstore.Connect(cfg.DatabaseURL)
		if err != nil {
			os.Stderr.WriteString("Failed to connect to database: " + err.Error() + "\n")
			return
		}
		defer func() { _ = store.Close() }()
		if err := store.Migrate(ctx); err != nil {
			os.Stderr.WriteString("Failed to migrate database: " + err.Error() + "\n")
			return
		}
		writer = store
	}

	seedConfig := &seed.Config{
		NumPlayers: *numPlayers,
		BatchSize:  *batchSize,
		Workers:    *workers,
		Seed:       *rngSeed,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	if _, err := seed.Run(ctx, seedConfig, provider, index, writer); err != nil {
		os.Stderr.WriteString("Seeding failed: " + err.Error() + "\n")
		return
	}
}
