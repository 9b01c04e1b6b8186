package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// versionsCmd groups prompt version operations
func versionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "Prompt version ledger",
	}
	cmd.AddCommand(versionsListCmd(), versionsShowCmd())
	return cmd
}

// versionsListCmd lists recent prompt versions
func versionsListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List prompt versions, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			pool, err := initDB(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := newPipelineService(pool)
			ids, err := svc.ListVersions(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list versions: %w", err)
			}

			if len(ids) == 0 {
				fmt.Println("No prompt versions found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tOPTIMIZER\tCREATED")
			for _, id := range ids {
				version, err := svc.GetVersion(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					version.ID, version.Status, version.Optimizer,
					version.CreatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Max versions to list")
	return cmd
}

// versionsShowCmd shows one prompt version with its evaluation history
func versionsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a prompt version and its evaluation history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			pool, err := initDB(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := newPipelineService(pool)
			version, err := svc.GetVersion(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("ID:        %s\n", version.ID)
			fmt.Printf("Status:    %s\n", version.Status)
			fmt.Printf("Optimizer: %s\n", version.Optimizer)
			fmt.Printf("Created:   %s\n", version.CreatedAt.Format("2006-01-02 15:04:05"))

			runs, err := svc.EvaluationHistory(ctx, version.ID, 10)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				return nil
			}

			fmt.Println()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "EVALUATION\tDATASET\tCOMPOSITE\tCREATED")
			for _, run := range runs {
				composite := 0.0
				if m := run.Metric("composite"); m != nil {
					composite = m.Value
				}
				fmt.Fprintf(w, "%s\t%s\t%.3f\t%s\n",
					run.ID, run.Dataset, composite,
					run.CreatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
	return cmd
}
