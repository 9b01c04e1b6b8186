package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dailytarot/tarotpipe/internal/adapters/metrics"
	"github.com/dailytarot/tarotpipe/internal/dataset"
	"github.com/dailytarot/tarotpipe/internal/domain/models"
	"github.com/dailytarot/tarotpipe/internal/evaluate"
	"github.com/dailytarot/tarotpipe/internal/ports"
)

// Service orchestrates the nightly workflow: build a dataset from recorded
// readings and feedback, run the prompt optimizer over it, evaluate the
// dataset with the composite rubric, and record the outcome in the ledger.
// Steps run sequentially; a failure leaves rows committed by earlier steps
// in place.
type Service struct {
	builder   *dataset.Builder
	datasets  ports.DatasetStore
	versions  ports.PromptVersionRepository
	evals     ports.EvaluationRunRepository
	optimizer ports.Optimizer
	tracker   ports.ExperimentTracker
	ids       ports.IDGenerator
	tx        ports.TransactionManager
	scorer    *evaluate.Scorer
	workspace string
	logger    *slog.Logger
}

// Config carries the service collaborators.
type Config struct {
	Readings  ports.ReadingSource
	Feedback  ports.FeedbackSource
	Datasets  ports.DatasetStore
	Versions  ports.PromptVersionRepository
	Evals     ports.EvaluationRunRepository
	Optimizer ports.Optimizer
	Tracker   ports.ExperimentTracker
	IDs       ports.IDGenerator
	Tx        ports.TransactionManager
	Workspace string
	Logger    *slog.Logger
}

// NewService creates the pipeline service.
func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		builder:   dataset.NewBuilder(cfg.Readings, cfg.Feedback, logger),
		datasets:  cfg.Datasets,
		versions:  cfg.Versions,
		evals:     cfg.Evals,
		optimizer: cfg.Optimizer,
		tracker:   cfg.Tracker,
		ids:       cfg.IDs,
		tx:        cfg.Tx,
		scorer:    evaluate.NewScorer(),
		workspace: cfg.Workspace,
		logger:    logger,
	}
}

// BuildDataset merges readings and feedback into training examples and
// persists them under the given dataset name.
func (s *Service) BuildDataset(ctx context.Context, name string, limit int, includeNegative bool) (int, error) {
	examples, err := s.builder.Build(ctx, limit, includeNegative)
	if err != nil {
		return 0, err
	}

	// Examples are inserted row by row; a transaction keeps a partially
	// written dataset from becoming visible.
	start := time.Now()
	if err := s.inTx(ctx, func(ctx context.Context) error {
		return s.datasets.Append(ctx, name, examples)
	}); err != nil {
		return 0, fmt.Errorf("failed to persist dataset %s: %w", name, err)
	}
	metrics.DatasetAppendDuration.Observe(time.Since(start).Seconds())

	for _, ex := range examples {
		outcome := "unrated"
		if ex.FeedbackThumb != nil {
			if *ex.FeedbackThumb == models.ThumbUp {
				outcome = "up"
			} else {
				outcome = "down"
			}
		}
		metrics.ExamplesSynthesizedTotal.WithLabelValues(outcome).Inc()
	}

	s.logger.Info("dataset persisted", "dataset", name, "examples", len(examples))
	return len(examples), nil
}

// ListDatasets returns stored dataset names, most-recently-touched first.
func (s *Service) ListDatasets(ctx context.Context, limit int) ([]string, error) {
	return s.datasets.ListNames(ctx, limit)
}

// Optimize loads a stored dataset, runs the optimizer over it, and records
// the resulting candidate version in the ledger.
func (s *Service) Optimize(ctx context.Context, datasetName string) (*models.PromptVersion, *models.PromptCandidate, error) {
	examples, err := s.datasets.Get(ctx, datasetName)
	if err != nil {
		return nil, nil, err
	}

	outDir := filepath.Join(s.workspace, datasetName)
	candidate, err := s.optimizer.ProduceCandidate(ctx, examples, outDir)
	if err != nil {
		return nil, nil, err
	}

	versionID := s.ids.GeneratePromptVersionID()
	if err := s.versions.Upsert(ctx, versionID, candidate.Optimizer, models.VersionStatusCandidate); err != nil {
		return nil, nil, err
	}

	version, err := s.versions.GetByID(ctx, versionID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("candidate version recorded",
		"prompt_version", versionID,
		"optimizer", candidate.Optimizer,
		"artifact", candidate.ArtifactPath)
	return version, candidate, nil
}

// Evaluate scores a stored dataset with the composite rubric and appends an
// evaluation run for the given prompt version.
func (s *Service) Evaluate(ctx context.Context, datasetName, promptVersionID string) (*models.EvaluationRun, error) {
	examples, err := s.datasets.Get(ctx, datasetName)
	if err != nil {
		return nil, err
	}

	results := s.scorer.Results(examples)
	run := models.NewEvaluationRun(s.ids.GenerateEvaluationRunID(), promptVersionID, datasetName, results, nil)

	if err := s.evals.Record(ctx, run); err != nil {
		return nil, err
	}
	metrics.EvaluationsTotal.Inc()

	if composite := run.Metric(evaluate.DimensionComposite); composite != nil {
		metrics.CompositeScore.WithLabelValues(promptVersionID, datasetName).Set(composite.Value)
		s.logger.Info("evaluation recorded",
			"evaluation", run.ID,
			"prompt_version", promptVersionID,
			"dataset", datasetName,
			"composite", composite.Value)
	}
	return run, nil
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.WithTransaction(ctx, fn)
}

// EvaluationHistory returns recorded runs for a prompt version, most recent
// first.
func (s *Service) EvaluationHistory(ctx context.Context, promptVersionID string, limit int) ([]*models.EvaluationRun, error) {
	return s.evals.ListByVersion(ctx, promptVersionID, limit)
}

// ListVersions returns recent prompt version ids.
func (s *Service) ListVersions(ctx context.Context, limit int) ([]string, error) {
	return s.versions.ListRecent(ctx, limit)
}

// GetVersion returns one prompt version by id.
func (s *Service) GetVersion(ctx context.Context, id string) (*models.PromptVersion, error) {
	return s.versions.GetByID(ctx, id)
}

// Nightly runs the full workflow against a freshly built dataset named
// nightly-<timestamp>.
func (s *Service) Nightly(ctx context.Context, limit int, includeNegative bool) error {
	tracer := otel.Tracer("tarotpipe/pipeline")
	ctx, span := tracer.Start(ctx, "nightly")
	defer span.End()

	datasetName := "nightly-" + time.Now().UTC().Format("20060102-150405")
	span.SetAttributes(attribute.String("dataset", datasetName))

	count, err := s.BuildDataset(ctx, datasetName, limit, includeNegative)
	if err != nil {
		return fmt.Errorf("nightly dataset build failed: %w", err)
	}

	version, candidate, err := s.Optimize(ctx, datasetName)
	if err != nil {
		return fmt.Errorf("nightly optimization failed: %w", err)
	}

	run, err := s.Evaluate(ctx, datasetName, version.ID)
	if err != nil {
		return fmt.Errorf("nightly evaluation failed: %w", err)
	}

	s.track(ctx, datasetName, count, version, candidate, run)
	s.logger.Info("nightly workflow complete", "dataset", datasetName, "prompt_version", version.ID)
	return nil
}

// track logs the run to the experiment tracker. Tracking is best-effort and
// never fails the pipeline.
func (s *Service) track(ctx context.Context, datasetName string, examples int, version *models.PromptVersion, candidate *models.PromptCandidate, run *models.EvaluationRun) {
	if s.tracker == nil {
		return
	}

	runID := s.tracker.StartRun(ctx, datasetName, map[string]string{
		"prompt_version": version.ID,
		"optimizer":      version.Optimizer,
	})

	params := map[string]string{
		"dataset":  datasetName,
		"examples": strconv.Itoa(examples),
	}
	if candidate.Loss != nil {
		params["loss"] = strconv.FormatFloat(*candidate.Loss, 'f', -1, 64)
	}
	s.tracker.LogParams(ctx, runID, params)

	values := make(map[string]float64, len(run.Metrics))
	for _, m := range run.Metrics {
		values[m.Name] = m.Value
	}
	s.tracker.LogMetrics(ctx, runID, values)
	s.tracker.LogArtifact(ctx, runID, candidate.ArtifactPath)
	s.tracker.EndRun(ctx, runID)
}
