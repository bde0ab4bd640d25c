// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load(ctx) to layer
//   file and environment overrides on top.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// TopK sets how many nearest neighbours are pulled from the vector
	// index before filtering.
	TopK int `koanf:"top_k"`

	// ResultLimit caps how many ranked candidates a search returns.
	ResultLimit int `koanf:"result_limit"`

	// ScoreWorkers bounds the goroutines scoring candidates in parallel.
	ScoreWorkers int `koanf:"score_workers"`

	// OpenAIAPIKey authenticates against the embeddings API. When empty
	// the service falls back to a deterministic in-process encoder.
	OpenAIAPIKey string `koanf:"openai_api_key"`

	// OpenAIBaseURL overrides the embeddings API endpoint.
	OpenAIBaseURL string `koanf:"openai_base_url"`

	// OpenAIModel selects the embedding model.
	OpenAIModel string `koanf:"openai_model"`

	// OpenAITimeoutSeconds bounds each embeddings API request.
	OpenAITimeoutSeconds int `koanf:"openai_timeout_seconds"`

	// PineconeAPIKey authenticates against the vector index. When empty
	// the service runs on an in-memory index.
	PineconeAPIKey string `koanf:"pinecone_api_key"`

	// PineconeBaseURL is the index host, e.g. https://players-xxxx.svc.pinecone.io.
	PineconeBaseURL string `koanf:"pinecone_base_url"`

	// PineconeNamespace scopes index operations.
	PineconeNamespace string `koanf:"pinecone_namespace"`

	// DatabaseURL is the Postgres DSN for player metrics. When empty the
	// service runs on an in-memory store.
	DatabaseURL string `koanf:"database_url"`

	// RedisAddr enables the embedding cache when set, e.g. "localhost:6379".
	RedisAddr string `koanf:"redis_addr"`

	// EmbeddingCacheTTLHours bounds how long cached embeddings live.
	EmbeddingCacheTTLHours int `koanf:"embedding_cache_ttl_hours"`
}

// New creates a Config with defaults.
func New() *Config {
	c := &Config{
		LogLevel:               "info",
		Addr:                   ":9080",
		TopK:                   50,
		ResultLimit:            20,
		ScoreWorkers:           runtime.NumCPU(),
		OpenAIModel:            "text-embedding-3-small",
		OpenAITimeoutSeconds:   30,
		PineconeNamespace:      "players",
		EmbeddingCacheTTLHours: 24,
	}
	return c
}
