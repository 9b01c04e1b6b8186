package ports

import (
	"context"

	"github.com/dailytarot/tarotpipe/internal/domain/models"
)

// ReadingSource fetches recorded readings, most-recent-first by created_at.
// Readings are read-only to this pipeline.
type ReadingSource interface {
	Fetch(ctx context.Context, limit int) ([]models.Reading, error)
}

// FeedbackSource fetches recorded feedback rows, most-recent-first by
// created_at.
type FeedbackSource interface {
	Fetch(ctx context.Context, limit int) ([]models.Feedback, error)
}

// DatasetStore persists named training datasets. Each row holds its own
// serialized copy of an example; appending to an existing name grows it.
type DatasetStore interface {
	// Get returns the stored examples for a dataset name, or
	// domain.ErrDatasetNotFound when no rows exist under that name.
	Get(ctx context.Context, name string) ([]models.TrainingExample, error)
	Append(ctx context.Context, name string, examples []models.TrainingExample) error
	ListNames(ctx context.Context, limit int) ([]string, error)
}

// PromptVersionRepository is the prompt-version half of the ledger.
type PromptVersionRepository interface {
	// Upsert inserts the version or, when the id already exists, overwrites
	// status and optimizer while preserving created_at and row identity.
	Upsert(ctx context.Context, id, optimizer, status string) error
	GetByID(ctx context.Context, id string) (*models.PromptVersion, error)
	// ListRecent returns version ids most-recent-first by created_at.
	ListRecent(ctx context.Context, limit int) ([]string, error)
}

// EvaluationRunRepository is the append-only evaluation half of the ledger.
// There is no update or delete: corrections are new rows.
type EvaluationRunRepository interface {
	Record(ctx context.Context, run *models.EvaluationRun) error
	GetByID(ctx context.Context, id string) (*models.EvaluationRun, error)
	ListByVersion(ctx context.Context, promptVersionID string, limit int) ([]*models.EvaluationRun, error)
}

// TransactionManager runs a function within a database transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// IDGenerator generates unique IDs for pipeline entities
type IDGenerator interface {
	GenerateDatasetRowID() string
	GeneratePromptVersionID() string
	GenerateEvaluationRunID() string
}
