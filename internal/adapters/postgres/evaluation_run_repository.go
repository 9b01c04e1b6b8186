package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dailytarot/tarotpipe/internal/domain"
	"github.com/dailytarot/tarotpipe/internal/domain/models"
)

// EvaluationRunRepository implements ports.EvaluationRunRepository over the
// evaluation_runs table. The table is an append-only log: there is no update
// or delete statement in this repository.
type EvaluationRunRepository struct {
	BaseRepository
}

// NewEvaluationRunRepository creates a new evaluation run repository
func NewEvaluationRunRepository(pool *pgxpool.Pool) *EvaluationRunRepository {
	return &EvaluationRunRepository{BaseRepository: NewBaseRepository(pool)}
}

// Record appends an evaluation run. Runs are immutable once written;
// corrections are recorded as new rows.
func (r *EvaluationRunRepository) Record(ctx context.Context, run *models.EvaluationRun) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := run.Validate(); err != nil {
		return err
	}

	metrics, err := json.Marshal(run.Metrics)
	if err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}
	violations, err := json.Marshal(run.GuardrailViolations)
	if err != nil {
		return fmt.Errorf("failed to encode guardrail violations: %w", err)
	}

	query := `
		INSERT INTO evaluation_runs (id, prompt_version_id, dataset, metrics, guardrail_violations, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.conn(ctx).Exec(ctx, query,
		run.ID,
		run.PromptVersionID,
		run.Dataset,
		metrics,
		violations,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record evaluation run %s: %w", run.ID, err)
	}
	return nil
}

// GetByID retrieves an evaluation run by id.
func (r *EvaluationRunRepository) GetByID(ctx context.Context, id string) (*models.EvaluationRun, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, prompt_version_id, dataset, metrics, guardrail_violations, created_at
		FROM evaluation_runs
		WHERE id = $1`

	run, err := scanEvaluationRun(r.conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if checkNoRows(err) {
			return nil, domain.NewDomainError(domain.ErrEvaluationNotFound, "evaluation run "+id)
		}
		return nil, fmt.Errorf("failed to get evaluation run %s: %w", id, err)
	}
	return run, nil
}

// ListByVersion returns the evaluation history for a prompt version,
// most-recent-first.
func (r *EvaluationRunRepository) ListByVersion(ctx context.Context, promptVersionID string, limit int) ([]*models.EvaluationRun, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, prompt_version_id, dataset, metrics, guardrail_violations, created_at
		FROM evaluation_runs
		WHERE prompt_version_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.conn(ctx).Query(ctx, query, promptVersionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluation runs for %s: %w", promptVersionID, err)
	}
	defer rows.Close()

	runs := make([]*models.EvaluationRun, 0, limit)
	for rows.Next() {
		run, err := scanEvaluationRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evaluation run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanEvaluationRun(row pgx.Row) (*models.EvaluationRun, error) {
	var run models.EvaluationRun
	var metrics, violations []byte

	err := row.Scan(
		&run.ID,
		&run.PromptVersionID,
		&run.Dataset,
		&metrics,
		&violations,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(metrics, &run.Metrics); err != nil {
		return nil, fmt.Errorf("failed to decode metrics: %w", err)
	}
	if err := json.Unmarshal(violations, &run.GuardrailViolations); err != nil {
		return nil, fmt.Errorf("failed to decode guardrail violations: %w", err)
	}
	return &run, nil
}
