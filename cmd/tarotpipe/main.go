package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dailytarot/tarotpipe/internal/config"
	"github.com/dailytarot/tarotpipe/internal/llm"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tarotpipe",
		Short: "Tarot reading tuning pipeline CLI",
		Long: `tarotpipe turns recorded tarot readings and user feedback into
training datasets, optimizes the reading prompt against them, and tracks
prompt versions and evaluation runs over time.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			llmClient = llm.NewClient(
				cfg.LLM.URL,
				cfg.LLM.APIKey,
				cfg.LLM.Model,
				cfg.LLM.MaxTokens,
				cfg.LLM.Temperature,
			)

			return nil
		},
	}

	rootCmd.AddCommand(
		datasetCmd(),
		optimizeCmd(),
		evalCmd(),
		versionsCmd(),
		nightlyCmd(),
		configCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// configCmd shows current configuration
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Current configuration:")
			fmt.Println()

			fmt.Println("LLM:")
			fmt.Printf("  URL:         %s\n", cfg.LLM.URL)
			fmt.Printf("  Model:       %s\n", cfg.LLM.Model)
			fmt.Printf("  Max Tokens:  %d\n", cfg.LLM.MaxTokens)
			fmt.Printf("  Temperature: %.2f\n", cfg.LLM.Temperature)
			fmt.Printf("  API Key:     %s\n", maskSecret(cfg.LLM.APIKey))
			fmt.Println()

			fmt.Println("Database:")
			fmt.Printf("  Postgres URL: %s\n", maskSecret(cfg.Database.PostgresURL))
			fmt.Println()

			fmt.Println("Optimizer:")
			fmt.Printf("  Generations: %d\n", cfg.Optimizer.MaxGenerations)
			fmt.Printf("  Population:  %d\n", cfg.Optimizer.PopulationSize)
			fmt.Printf("  Batch Size:  %d\n", cfg.Optimizer.BatchSize)
			fmt.Printf("  Concurrency: %d\n", cfg.Optimizer.Concurrency)
			fmt.Println()

			fmt.Println("Tracking (MLflow):")
			fmt.Printf("  URL:        %s\n", cfg.Tracking.URL)
			fmt.Printf("  Experiment: %s\n", cfg.Tracking.Experiment)
			fmt.Printf("  Status:     %s\n", boolStatus(cfg.IsTrackingConfigured()))
			fmt.Println()

			fmt.Println("Workspace:")
			fmt.Printf("  Prompt Dir: %s\n", cfg.Workspace.PromptDir)

			return nil
		},
	}
}

// versionCmd shows version information
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tarotpipe %s (commit %s, built %s)\n", version, commit, buildDate)
		},
	}
}
