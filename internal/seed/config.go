package seed

import "time"

// Config holds configuration for the player seeder
type Config struct {
	NumPlayers int    // Number of players to generate
	BatchSize  int    // Players per embedding batch
	Workers    int    // Number of concurrent upsert workers
	Seed       int64  // RNG seed, 0 means time-based
	LogFile    string // Log file for seeder output
	Verbose    bool   // Enable verbose logging
}

// Stats holds seeding statistics
type Stats struct {
	PlayersGenerated int
	PlayersIndexed   int
	PlayersStored    int
	Batches          int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
