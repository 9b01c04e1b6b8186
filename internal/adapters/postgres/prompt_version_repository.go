package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dailytarot/tarotpipe/internal/domain"
	"github.com/dailytarot/tarotpipe/internal/domain/models"
)

// PromptVersionRepository implements ports.PromptVersionRepository over the
// prompt_versions table.
type PromptVersionRepository struct {
	BaseRepository
}

// NewPromptVersionRepository creates a new prompt version repository
func NewPromptVersionRepository(pool *pgxpool.Pool) *PromptVersionRepository {
	return &PromptVersionRepository{BaseRepository: NewBaseRepository(pool)}
}

// Upsert inserts a prompt version or, when the id already exists, overwrites
// status and optimizer while preserving created_at and row identity.
func (r *PromptVersionRepository) Upsert(ctx context.Context, id, optimizer, status string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if id == "" {
		return domain.NewDomainError(domain.ErrInvalidID, "prompt version id is empty")
	}
	if !models.ValidVersionStatus(status) {
		return domain.NewDomainError(domain.ErrInvalidVersionStatus, "status "+status)
	}

	query := `
		INSERT INTO prompt_versions (id, status, optimizer, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, optimizer = EXCLUDED.optimizer`

	if _, err := r.conn(ctx).Exec(ctx, query, id, status, optimizer); err != nil {
		return fmt.Errorf("failed to upsert prompt version %s: %w", id, err)
	}
	return nil
}

// GetByID retrieves a prompt version by id.
func (r *PromptVersionRepository) GetByID(ctx context.Context, id string) (*models.PromptVersion, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, status, optimizer, created_at
		FROM prompt_versions
		WHERE id = $1`

	var version models.PromptVersion
	err := r.conn(ctx).QueryRow(ctx, query, id).Scan(
		&version.ID,
		&version.Status,
		&version.Optimizer,
		&version.CreatedAt,
	)
	if err != nil {
		if checkNoRows(err) {
			return nil, domain.NewDomainError(domain.ErrPromptVersionNotFound, "prompt version "+id)
		}
		return nil, fmt.Errorf("failed to get prompt version %s: %w", id, err)
	}
	return &version, nil
}

// ListRecent returns prompt version ids, most-recent-first by created_at.
func (r *PromptVersionRepository) ListRecent(ctx context.Context, limit int) ([]string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id
		FROM prompt_versions
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.conn(ctx).Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list prompt versions: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0, limit)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan prompt version id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
