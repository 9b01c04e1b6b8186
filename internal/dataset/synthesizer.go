// Package dataset merges the reading and feedback event streams into
// deduplicated training examples.
package dataset

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dailytarot/tarotpipe/internal/domain/models"
	"github.com/dailytarot/tarotpipe/internal/ports"
)

// Synthesize merges readings and feedback into training examples.
//
// The winning feedback per reading is the row with the maximum created_at,
// resolved in a single left-to-right scan with a strict comparison: on an
// exact timestamp tie the first-encountered row is kept. Ties are not
// expected in practice; the scan-order tie-break is documented behavior, not
// an error path.
//
// Output order matches the input reading order. Readings without feedback
// are skipped when includeNegative is false, otherwise emitted with absent
// feedback fields. Feedback referencing an unknown reading id is silently
// unused.
func Synthesize(readings []models.Reading, feedback []models.Feedback, includeNegative bool) []models.TrainingExample {
	latest := make(map[string]models.Feedback, len(feedback))
	for _, fb := range feedback {
		existing, ok := latest[fb.ReadingID]
		if !ok || fb.CreatedAt.After(existing.CreatedAt) {
			latest[fb.ReadingID] = fb
		}
	}

	examples := make([]models.TrainingExample, 0, len(readings))
	for _, reading := range readings {
		fb, ok := latest[reading.ID]
		if !ok {
			if !includeNegative {
				continue
			}
			examples = append(examples, models.NewTrainingExample(reading, nil))
			continue
		}
		examples = append(examples, models.NewTrainingExample(reading, &fb))
	}
	return examples
}

// Builder fetches both streams and synthesizes a dataset in one step.
type Builder struct {
	readings ports.ReadingSource
	feedback ports.FeedbackSource
	logger   *slog.Logger
}

// NewBuilder creates a dataset builder over the two event sources.
func NewBuilder(readings ports.ReadingSource, feedback ports.FeedbackSource, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{readings: readings, feedback: feedback, logger: logger}
}

// Build fetches up to limit rows from each source and synthesizes training
// examples. The limit bounds the upstream fetches, not the synthesis itself.
func (b *Builder) Build(ctx context.Context, limit int, includeNegative bool) ([]models.TrainingExample, error) {
	readings, err := b.readings.Fetch(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch readings: %w", err)
	}

	feedback, err := b.feedback.Fetch(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feedback: %w", err)
	}

	examples := Synthesize(readings, feedback, includeNegative)
	b.logger.Info("synthesized training examples",
		"readings", len(readings),
		"feedback", len(feedback),
		"examples", len(examples),
		"include_negative", includeNegative)

	return examples, nil
}
