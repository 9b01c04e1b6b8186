package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/dailytarot/tarotpipe/internal/adapters/tracing"
)

// nightlyCmd runs the full workflow: dataset build, optimize, evaluate,
// record.
func nightlyCmd() *cobra.Command {
	var limit int
	var includeUnrated bool
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "nightly",
		Short: "Full nightly workflow: dataset build -> optimize -> evaluate -> record",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			shutdown, err := tracing.InitTracer("tarotpipe")
			if err != nil {
				return fmt.Errorf("failed to init tracer: %w", err)
			}
			defer func() {
				if err := shutdown(ctx); err != nil {
					slog.Warn("tracer shutdown failed", "error", err)
				}
			}()

			if metricsAddr != "" {
				go serveMetrics(metricsAddr)
			}

			pool, err := initDB(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := newPipelineService(pool)
			if err := svc.Nightly(ctx, limit, includeUnrated); err != nil {
				return err
			}

			fmt.Println("Nightly workflow complete.")
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 2000, "Max readings for the dataset build")
	cmd.Flags().BoolVar(&includeUnrated, "include-unrated", true, "Include readings without feedback")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address while the run lasts (e.g. :9090)")
	return cmd
}

// serveMetrics exposes /metrics for the duration of the run.
func serveMetrics(addr string) {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.Handler())

	slog.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Warn("metrics server stopped", "error", err)
	}
}
