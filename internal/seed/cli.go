package seed

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/padelhq/matchrank/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "seed_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the seeding tool.
func ShowHelp() {
	os.Stdout.WriteString(`Matchrank Player Seeder
=======================

Generates synthetic player profiles and loads them into the vector index
and the player metrics store.

Usage:
  go run cmd/seed-players/main.go [options]

Options:
  -players int
        Number of players to generate (default 1000)
  -batch int
        Players per embedding batch (default 100)
  -workers int
        Number of concurrent upsert workers (default CPU cores * 2)
  -seed int
        RNG seed for reproducible runs (default: time-based)
  -log string
        Log file for seeder output (default: seed_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Seed with default settings (in-memory collaborators unless configured)
  go run cmd/seed-players/main.go

  # Seed 5000 players against real collaborators
  MATCHRANK_OPENAI_API_KEY=sk-... \
  MATCHRANK_PINECONE_API_KEY=... MATCHRANK_PINECONE_BASE_URL=https://... \
  MATCHRANK_DATABASE_URL=postgres://... \
  go run cmd/seed-players/main.go -players 5000 -workers 16
`)
}
