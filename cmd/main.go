package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/padelhq/matchrank/internal/adapters/embedding"
	"github.com/padelhq/matchrank/internal/adapters/http/api"
	"github.com/padelhq/matchrank/internal/adapters/http/swagger"
	"github.com/padelhq/matchrank/internal/adapters/metricstore"
	"github.com/padelhq/matchrank/internal/adapters/vectorindex"
	app "github.com/padelhq/matchrank/internal/app"
	"github.com/padelhq/matchrank/internal/config"
	"github.com/padelhq/matchrank/pkg/logger"
	"github.com/padelhq/matchrank/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			logger.Error(err)
		}
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Build pipeline collaborators from configuration. Anything left nil
	// falls back to an in-process implementation inside the service.
	opts := []app.Option{
		app.WithLogger(loggerInstance),
		app.WithTopK(cfg.TopK),
		app.WithResultLimit(cfg.ResultLimit),
		app.WithScoreWorkers(cfg.ScoreWorkers),
	}
	if provider := buildProvider(ctx, cfg, loggerInstance); provider != nil {
		opts = append(opts, app.WithEmbeddingProvider(provider))
	}
	if cfg.PineconeAPIKey != "" && cfg.PineconeBaseURL != "" {
		opts = append(opts, app.WithVectorIndex(vectorindex.NewPinecone(
			cfg.PineconeBaseURL, cfg.PineconeAPIKey,
			vectorindex.WithNamespace(cfg.PineconeNamespace),
		)))
	}
	if cfg.DatabaseURL != "" {
		store, err := metricstore.Connect(cfg.DatabaseURL)
		if err != nil {
			os.Stderr.WriteString("failed to connect to database: " + err.Error() + "\n")
			return
		}
		if err := store.Migrate(ctx); err != nil {
			os.Stderr.WriteString("failed to migrate database: " + err.Error() + "\n")
			return
		}
		opts = append(opts, app.WithMetricStore(store))
	}

	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()

	// Register API docs under /api-docs
	swagger.Register(ctx, mux)

	// Register business API routes with the service dependency.
	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// buildProvider assembles the embedding provider: OpenAI when a key is
// configured, optionally wrapped with the Redis read-through cache.
func buildProvider(ctx context.Context, cfg *config.Config, log logger.Logger) embedding.Provider {
	if cfg.OpenAIAPIKey == "" {
		return nil
	}

	openaiOpts := []embedding.OpenAIOption{
		embedding.WithModel(cfg.OpenAIModel),
		embedding.WithTimeout(time.Duration(cfg.OpenAITimeoutSeconds) * time.Second),
	}
	if cfg.OpenAIBaseURL != "" {
		openaiOpts = append(openaiOpts, embedding.WithBaseURL(cfg.OpenAIBaseURL))
	}
	var provider embedding.Provider = embedding.NewOpenAI(cfg.OpenAIAPIKey, openaiOpts...)

	if cfg.RedisAddr == "" {
		return provider
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn(ctx, "redis unreachable, embedding cache disabled",
			logger.String("addr", cfg.RedisAddr), logger.Error(err))
		return provider
	}
	return embedding.NewCache(provider, client,
		embedding.WithTTL(time.Duration(cfg.EmbeddingCacheTTLHours)*time.Hour),
		embedding.WithCacheLogger(log),
	)
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval) // Update every 10 seconds
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	// Update memory usage
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	// Update goroutine count
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	// Update GC pause time
	if m.NumGC > 0 {
		// Calculate average GC pause time
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
