package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dailytarot/tarotpipe/internal/adapters/id"
	"github.com/dailytarot/tarotpipe/internal/adapters/postgres"
	"github.com/dailytarot/tarotpipe/internal/adapters/tracking"
	"github.com/dailytarot/tarotpipe/internal/config"
	"github.com/dailytarot/tarotpipe/internal/evaluate"
	"github.com/dailytarot/tarotpipe/internal/llm"
	"github.com/dailytarot/tarotpipe/internal/optimizer"
	"github.com/dailytarot/tarotpipe/internal/pipeline"
	"github.com/dailytarot/tarotpipe/internal/ports"
)

// Version information (set via ldflags)
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// Shared global variables
var (
	cfg       *config.Config
	llmClient *llm.Client
)

// initDB initializes a database connection pool for CLI commands
func initDB(ctx context.Context) (*pgxpool.Pool, error) {
	if cfg.Database.PostgresURL == "" {
		return nil, fmt.Errorf("PostgreSQL connection required. Set TAROT_POSTGRES_URL")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Force UTC timezone to prevent timezone-related issues with TIMESTAMP columns
	poolConfig.ConnConfig.RuntimeParams["timezone"] = "UTC"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return pool, nil
}

// newPipelineService wires the pipeline service with postgres repositories
// and the configured optimizer and tracker.
func newPipelineService(pool *pgxpool.Pool) *pipeline.Service {
	idGen := id.New()
	logger := slog.Default()

	var tracker ports.ExperimentTracker
	if cfg.IsTrackingConfigured() {
		tracker = tracking.NewMLflowTracker(cfg.Tracking.URL, cfg.Tracking.Experiment, logger)
	} else {
		tracker = tracking.NewNoopTracker()
	}

	gepa := optimizer.NewGEPA(llmClient, evaluate.NewScorer(), optimizer.Options{
		MaxGenerations: cfg.Optimizer.MaxGenerations,
		PopulationSize: cfg.Optimizer.PopulationSize,
		BatchSize:      cfg.Optimizer.BatchSize,
		Concurrency:    cfg.Optimizer.Concurrency,
	}, logger)

	return pipeline.NewService(pipeline.Config{
		Readings:  postgres.NewReadingRepository(pool),
		Feedback:  postgres.NewFeedbackRepository(pool),
		Datasets:  postgres.NewDatasetRepository(pool, idGen),
		Versions:  postgres.NewPromptVersionRepository(pool),
		Evals:     postgres.NewEvaluationRunRepository(pool),
		Optimizer: gepa,
		Tracker:   tracker,
		IDs:       idGen,
		Tx:        postgres.NewTransactionManager(pool),
		Workspace: cfg.Workspace.PromptDir,
		Logger:    logger,
	})
}

// maskSecret masks a secret string for display
func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "(set)"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// boolStatus returns a status string for a boolean
func boolStatus(b bool) string {
	if b {
		return "configured"
	}
	return "not configured"
}
