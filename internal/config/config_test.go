package config

import (
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LLM.URL == "" {
		t.Error("LLM URL should not be empty")
	}
	if cfg.LLM.Model == "" {
		t.Error("LLM Model should not be empty")
	}
	if cfg.LLM.MaxTokens <= 0 {
		t.Error("LLM MaxTokens should be positive")
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		t.Error("LLM Temperature should be between 0 and 2")
	}

	if cfg.Database.PostgresURL == "" {
		t.Error("PostgresURL should not be empty")
	}

	if cfg.Optimizer.MaxGenerations <= 0 {
		t.Error("Optimizer MaxGenerations should be positive")
	}
	if cfg.Optimizer.PopulationSize < 2 {
		t.Error("Optimizer PopulationSize should be at least 2")
	}

	if cfg.Tracking.Experiment == "" {
		t.Error("Tracking Experiment should not be empty")
	}
	if cfg.IsTrackingConfigured() {
		t.Error("tracking should be disabled by default")
	}

	if cfg.Workspace.PromptDir == "" {
		t.Error("Workspace PromptDir should not be empty")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TAROT_LLM_MODEL", "openai/gpt-oss-120b")
	t.Setenv("TAROT_LLM_MAX_TOKENS", "1200")
	t.Setenv("TAROT_LLM_TEMPERATURE", "0.3")
	t.Setenv("TAROT_POSTGRES_URL", "postgres://other:pw@db:5432/tarot")
	t.Setenv("TAROT_MLFLOW_URL", "http://mlflow:5000")
	t.Setenv("TAROT_PROMPT_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LLM.Model != "openai/gpt-oss-120b" {
		t.Errorf("expected model override, got %s", cfg.LLM.Model)
	}
	if cfg.LLM.MaxTokens != 1200 {
		t.Errorf("expected max tokens 1200, got %d", cfg.LLM.MaxTokens)
	}
	if cfg.LLM.Temperature != 0.3 {
		t.Errorf("expected temperature 0.3, got %f", cfg.LLM.Temperature)
	}
	if cfg.Database.PostgresURL != "postgres://other:pw@db:5432/tarot" {
		t.Errorf("expected postgres override, got %s", cfg.Database.PostgresURL)
	}
	if !cfg.IsTrackingConfigured() {
		t.Error("expected tracking to be configured")
	}
}

func TestEnvInt_InvalidValueIgnored(t *testing.T) {
	target := 42
	t.Setenv("TEST_INT", "not-a-number")
	envInt("TEST_INT", &target)
	if target != 42 {
		t.Errorf("expected 42, got %d", target)
	}
}

func TestValidate_Errors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.Temperature = 3.0
	cfg.LLM.URL = "not-a-url"
	cfg.Database.PostgresURL = ""
	cfg.Optimizer.MaxGenerations = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"temperature", "valid URL", "PostgreSQL", "max_generations"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %q, got: %v", want, err)
		}
	}
}
