package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dailytarot/tarotpipe/internal/domain/models"
)

// FeedbackRepository implements ports.FeedbackSource over the feedback
// table. Read-only to this pipeline.
type FeedbackRepository struct {
	BaseRepository
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(pool *pgxpool.Pool) *FeedbackRepository {
	return &FeedbackRepository{BaseRepository: NewBaseRepository(pool)}
}

// Fetch returns up to limit feedback rows, most-recent-first by created_at.
func (r *FeedbackRepository) Fetch(ctx context.Context, limit int) ([]models.Feedback, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT reading_id, user_id, thumb, rationale, created_at
		FROM feedback
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.conn(ctx).Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	feedback := make([]models.Feedback, 0, limit)
	for rows.Next() {
		var fb models.Feedback
		var rationale sql.NullString

		err := rows.Scan(&fb.ReadingID, &fb.UserID, &fb.Thumb, &rationale, &fb.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		fb.Rationale = getStringPtr(rationale)

		feedback = append(feedback, fb)
	}

	return feedback, rows.Err()
}
