package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// optimizeCmd groups prompt optimization operations
func optimizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Prompt optimization",
	}
	cmd.AddCommand(optimizeRunCmd())
	return cmd
}

// optimizeRunCmd runs the optimizer against a stored dataset
func optimizeRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <dataset>",
		Short: "Run the prompt optimizer over a stored dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			pool, err := initDB(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := newPipelineService(pool)
			version, candidate, err := svc.Optimize(ctx, args[0])
			if err != nil {
				return fmt.Errorf("optimization failed: %w", err)
			}

			fmt.Printf("Optimizer complete. Prompt stored at %s\n", candidate.ArtifactPath)
			fmt.Printf("Candidate version: %s (optimizer %s)\n", version.ID, version.Optimizer)
			if candidate.Loss != nil {
				fmt.Printf("Loss: %.4f\n", *candidate.Loss)
			}
			return nil
		},
	}
	return cmd
}
