package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// datasetCmd groups dataset operations
func datasetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Training dataset operations",
	}
	cmd.AddCommand(datasetBuildCmd(), datasetListCmd())
	return cmd
}

// datasetBuildCmd merges readings and feedback into a named dataset
func datasetBuildCmd() *cobra.Command {
	var limit int
	var includeUnrated bool

	cmd := &cobra.Command{
		Use:   "build <name>",
		Short: "Build a dataset by merging readings and feedback",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			pool, err := initDB(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := newPipelineService(pool)
			count, err := svc.BuildDataset(ctx, args[0], limit, includeUnrated)
			if err != nil {
				return fmt.Errorf("failed to build dataset: %w", err)
			}

			fmt.Printf("Persisted %d examples to dataset '%s'.\n", count, args[0])
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 2000, "Max readings to fetch")
	cmd.Flags().BoolVar(&includeUnrated, "include-unrated", true, "Include readings without feedback")
	return cmd
}

// datasetListCmd lists stored dataset names
func datasetListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored datasets, most recently touched first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			pool, err := initDB(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := newPipelineService(pool)
			names, err := svc.ListDatasets(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list datasets: %w", err)
			}

			if len(names) == 0 {
				fmt.Println("No datasets found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATASET")
			for _, name := range names {
				fmt.Fprintln(w, name)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Max datasets to list")
	return cmd
}
