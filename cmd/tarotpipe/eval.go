package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// evalCmd groups evaluation operations
func evalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluation workflow",
	}
	cmd.AddCommand(evalDatasetCmd(), evalListCmd())
	return cmd
}

// evalDatasetCmd evaluates a stored dataset and records a run
func evalDatasetCmd() *cobra.Command {
	var promptVersion string

	cmd := &cobra.Command{
		Use:   "dataset <name>",
		Short: "Evaluate aggregate metrics on a dataset and record the run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			pool, err := initDB(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := newPipelineService(pool)
			run, err := svc.Evaluate(ctx, args[0], promptVersion)
			if err != nil {
				return fmt.Errorf("evaluation failed: %w", err)
			}

			fmt.Printf("Recorded evaluation %s for dataset '%s'.\n", run.ID, args[0])

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "METRIC\tVALUE")
			for _, m := range run.Metrics {
				fmt.Fprintf(w, "%s\t%.3f\n", m.Name, m.Value)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&promptVersion, "version", "", "Prompt version id the run scores")
	_ = cmd.MarkFlagRequired("version")
	return cmd
}

// evalListCmd lists evaluation history for a prompt version
func evalListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list <prompt-version>",
		Short: "List evaluation runs for a prompt version, most recent first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			pool, err := initDB(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := newPipelineService(pool)
			runs, err := svc.EvaluationHistory(ctx, args[0], limit)
			if err != nil {
				return fmt.Errorf("failed to list evaluation runs: %w", err)
			}

			if len(runs) == 0 {
				fmt.Println("No evaluation runs found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATASET\tCOMPOSITE\tVIOLATIONS\tCREATED")
			for _, run := range runs {
				composite := 0.0
				if m := run.Metric("composite"); m != nil {
					composite = m.Value
				}
				fmt.Fprintf(w, "%s\t%s\t%.3f\t%d\t%s\n",
					run.ID, run.Dataset, composite, len(run.GuardrailViolations),
					run.CreatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Max runs to list")
	return cmd
}
