package optimizer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/XiaoConstantine/dspy-go/pkg/core"
	"github.com/XiaoConstantine/dspy-go/pkg/modules"
	"github.com/XiaoConstantine/dspy-go/pkg/optimizers"

	"github.com/dailytarot/tarotpipe/internal/adapters/metrics"
	"github.com/dailytarot/tarotpipe/internal/domain"
	"github.com/dailytarot/tarotpipe/internal/domain/models"
	"github.com/dailytarot/tarotpipe/internal/evaluate"
	"github.com/dailytarot/tarotpipe/internal/llm"
)

const optimizerName = "gepa"

// Options tune the evolutionary search.
type Options struct {
	MaxGenerations int
	PopulationSize int
	BatchSize      int
	Concurrency    int
}

// DefaultOptions returns search settings sized for a nightly batch run.
func DefaultOptions() Options {
	return Options{
		MaxGenerations: 10,
		PopulationSize: 20,
		BatchSize:      8,
		Concurrency:    3,
	}
}

// GEPA implements ports.Optimizer using reflective evolutionary prompt
// search. Fitness is the same composite rubric the evaluation ledger
// records, so optimizer progress and recorded scores are comparable.
type GEPA struct {
	client  *llm.Client
	scorer  *evaluate.Scorer
	options Options
	logger  *slog.Logger
}

// NewGEPA creates a GEPA optimizer backed by the given LLM client.
func NewGEPA(client *llm.Client, scorer *evaluate.Scorer, options Options, logger *slog.Logger) *GEPA {
	if logger == nil {
		logger = slog.Default()
	}
	return &GEPA{
		client:  client,
		scorer:  scorer,
		options: options,
		logger:  logger,
	}
}

// ProduceCandidate runs the evolutionary search over the dataset and writes
// the winning instruction to outDir/prompt.txt.
func (g *GEPA) ProduceCandidate(ctx context.Context, examples []models.TrainingExample, outDir string) (*models.PromptCandidate, error) {
	if len(examples) == 0 {
		return nil, domain.NewDomainError(domain.ErrDatasetEmpty, "optimizer needs a non-empty dataset")
	}

	adapter := NewClientAdapter(g.client)
	core.SetDefaultLLM(adapter)
	core.GlobalConfig.TeacherLLM = adapter

	predict := modules.NewPredict(ReadingSignature())
	program := core.NewProgram(
		map[string]core.Module{"reading": predict},
		func(ctx context.Context, inputs map[string]interface{}) (map[string]interface{}, error) {
			return predict.Process(ctx, inputs)
		},
	)

	dataset := NewDatasetAdapter(examples)
	coreMetric := NewMetricAdapter(g.scorer).ToCoreMetric()

	gepaConfig := &optimizers.GEPAConfig{
		MaxGenerations:       g.options.MaxGenerations,
		PopulationSize:       g.options.PopulationSize,
		MutationRate:         0.3,
		CrossoverRate:        0.7,
		ElitismRate:          0.1,
		ReflectionFreq:       2,
		ReflectionDepth:      3,
		SelfCritiqueTemp:     0.7,
		TournamentSize:       3,
		SelectionStrategy:    "adaptive_pareto",
		ConvergenceThreshold: 0.01,
		StagnationLimit:      3,
		EvaluationBatchSize:  g.options.BatchSize,
		ConcurrencyLevel:     g.options.Concurrency,
		Temperature:          0.8,
		MaxTokens:            500,
	}
	if gepaConfig.MaxGenerations < 1 {
		gepaConfig.MaxGenerations = 1
	}

	gepaOptimizer, err := optimizers.NewGEPA(gepaConfig)
	if err != nil {
		metrics.OptimizerRunsTotal.WithLabelValues(optimizerName, "error").Inc()
		return nil, domain.NewDomainError(domain.ErrOptimizerFailed, fmt.Sprintf("failed to create optimizer: %v", err))
	}

	g.logger.Info("starting prompt optimization",
		"optimizer", optimizerName,
		"examples", len(examples),
		"generations", gepaConfig.MaxGenerations,
		"population", gepaConfig.PopulationSize)

	start := time.Now()
	_, err = gepaOptimizer.Compile(ctx, program, dataset, coreMetric)
	metrics.OptimizerRunDuration.WithLabelValues(optimizerName).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.OptimizerRunsTotal.WithLabelValues(optimizerName, "error").Inc()
		return nil, domain.NewDomainError(domain.ErrOptimizerFailed, fmt.Sprintf("optimization failed: %v", err))
	}

	state := gepaOptimizer.GetOptimizationState()
	if state == nil || state.BestCandidate == nil || state.BestCandidate.Instruction == "" {
		metrics.OptimizerRunsTotal.WithLabelValues(optimizerName, "error").Inc()
		return nil, domain.NewDomainError(domain.ErrOptimizerFailed, "optimization produced no candidate")
	}

	artifactPath := filepath.Join(outDir, "prompt.txt")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact dir: %w", err)
	}
	if err := os.WriteFile(artifactPath, []byte(state.BestCandidate.Instruction), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write prompt artifact: %w", err)
	}

	loss := 1.0 - state.BestCandidate.Fitness
	metrics.OptimizerRunsTotal.WithLabelValues(optimizerName, "ok").Inc()
	g.logger.Info("prompt optimization finished",
		"optimizer", optimizerName,
		"fitness", state.BestCandidate.Fitness,
		"artifact", artifactPath,
		"duration", time.Since(start))

	return &models.PromptCandidate{
		ArtifactPath: artifactPath,
		Optimizer:    optimizerName,
		Loss:         &loss,
	}, nil
}
