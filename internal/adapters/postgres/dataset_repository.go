package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dailytarot/tarotpipe/internal/domain"
	"github.com/dailytarot/tarotpipe/internal/domain/models"
	"github.com/dailytarot/tarotpipe/internal/ports"
)

// DatasetRepository implements ports.DatasetStore over the
// training_datasets table. Each row stores its own serialized copy of one
// training example under a dataset name.
type DatasetRepository struct {
	BaseRepository
	idGenerator ports.IDGenerator
}

// NewDatasetRepository creates a new dataset repository
func NewDatasetRepository(pool *pgxpool.Pool, idGenerator ports.IDGenerator) *DatasetRepository {
	return &DatasetRepository{
		BaseRepository: NewBaseRepository(pool),
		idGenerator:    idGenerator,
	}
}

// Get returns the stored examples for a dataset name in insertion order, or
// domain.ErrDatasetNotFound when no rows exist under that name.
func (r *DatasetRepository) Get(ctx context.Context, name string) ([]models.TrainingExample, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT payload
		FROM training_datasets
		WHERE dataset = $1
		ORDER BY created_at ASC`

	rows, err := r.conn(ctx).Query(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query dataset %s: %w", name, err)
	}
	defer rows.Close()

	examples := make([]models.TrainingExample, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan dataset row: %w", err)
		}

		var example models.TrainingExample
		if err := json.Unmarshal(payload, &example); err != nil {
			return nil, fmt.Errorf("failed to decode example in dataset %s: %w", name, err)
		}
		examples = append(examples, example)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(examples) == 0 {
		return nil, domain.NewDomainError(domain.ErrDatasetNotFound, "dataset "+name)
	}
	return examples, nil
}

// Append stores serialized copies of the examples under the dataset name.
func (r *DatasetRepository) Append(ctx context.Context, name string, examples []models.TrainingExample) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO training_datasets (id, dataset, payload, created_at)
		VALUES ($1, $2, $3, NOW())`

	for _, example := range examples {
		payload, err := json.Marshal(example)
		if err != nil {
			return fmt.Errorf("failed to encode example: %w", err)
		}
		if _, err := r.conn(ctx).Exec(ctx, query, r.idGenerator.GenerateDatasetRowID(), name, payload); err != nil {
			return fmt.Errorf("failed to append to dataset %s: %w", name, err)
		}
	}
	return nil
}

// ListNames returns distinct dataset names, most-recently-touched first.
func (r *DatasetRepository) ListNames(ctx context.Context, limit int) ([]string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT dataset
		FROM training_datasets
		GROUP BY dataset
		ORDER BY MAX(created_at) DESC
		LIMIT $1`

	rows, err := r.conn(ctx).Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0, limit)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan dataset name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
