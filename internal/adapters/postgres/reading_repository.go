package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dailytarot/tarotpipe/internal/domain/models"
)

// ReadingRepository implements ports.ReadingSource over the readings table.
// The table is owned by the serving system; this pipeline only reads it.
type ReadingRepository struct {
	BaseRepository
}

// NewReadingRepository creates a new reading repository
func NewReadingRepository(pool *pgxpool.Pool) *ReadingRepository {
	return &ReadingRepository{BaseRepository: NewBaseRepository(pool)}
}

// Fetch returns up to limit readings, most-recent-first by created_at.
func (r *ReadingRepository) Fetch(ctx context.Context, limit int) ([]models.Reading, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, user_id, iso_date, spread_type, integrity_tag, intent,
		       cards, prompt_version, overview, card_breakdowns, synthesis,
		       actionable_reflection, tone, model_name, created_at
		FROM readings
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.conn(ctx).Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	readings := make([]models.Reading, 0, limit)
	for rows.Next() {
		var reading models.Reading
		var intent sql.NullString
		var cards, breakdowns []byte

		err := rows.Scan(
			&reading.ID,
			&reading.UserID,
			&reading.ISODate,
			&reading.SpreadType,
			&reading.IntegrityTag,
			&intent,
			&cards,
			&reading.PromptVersion,
			&reading.Overview,
			&breakdowns,
			&reading.Synthesis,
			&reading.ActionableReflection,
			&reading.Tone,
			&reading.ModelName,
			&reading.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}

		if err := json.Unmarshal(cards, &reading.Cards); err != nil {
			return nil, fmt.Errorf("failed to decode cards for reading %s: %w", reading.ID, err)
		}
		if err := json.Unmarshal(breakdowns, &reading.CardBreakdowns); err != nil {
			return nil, fmt.Errorf("failed to decode breakdowns for reading %s: %w", reading.ID, err)
		}
		reading.Intent = getStringPtr(intent)

		readings = append(readings, reading)
	}

	return readings, rows.Err()
}
