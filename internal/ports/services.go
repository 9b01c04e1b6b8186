package ports

import (
	"context"

	"github.com/dailytarot/tarotpipe/internal/domain/models"
)

// Optimizer consumes a training dataset and produces a candidate prompt
// artifact in outDir. The optimization algorithm itself is opaque to the
// core: a failure is fatal to that run's candidate production but must not
// corrupt rows persisted before the call.
type Optimizer interface {
	ProduceCandidate(ctx context.Context, examples []models.TrainingExample, outDir string) (*models.PromptCandidate, error)
}

// ExperimentTracker is an observability side channel. Implementations must
// treat every call as best-effort: a tracking failure is logged by the
// adapter and never surfaced to the pipeline.
type ExperimentTracker interface {
	StartRun(ctx context.Context, name string, tags map[string]string) string
	LogParams(ctx context.Context, runID string, params map[string]string)
	LogMetrics(ctx context.Context, runID string, metrics map[string]float64)
	LogArtifact(ctx context.Context, runID string, localPath string)
	EndRun(ctx context.Context, runID string)
}
