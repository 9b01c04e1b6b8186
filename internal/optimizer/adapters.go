package optimizer

import (
	"encoding/json"
	"strings"

	"github.com/XiaoConstantine/dspy-go/pkg/core"

	"github.com/dailytarot/tarotpipe/internal/domain/models"
	"github.com/dailytarot/tarotpipe/internal/evaluate"
)

// DatasetAdapter exposes a slice of training examples as a dspy-go dataset.
type DatasetAdapter struct {
	examples []models.TrainingExample
	index    int
}

// NewDatasetAdapter creates a new dataset adapter
func NewDatasetAdapter(examples []models.TrainingExample) *DatasetAdapter {
	return &DatasetAdapter{
		examples: examples,
		index:    0,
	}
}

// Next returns the next example in the dataset
func (d *DatasetAdapter) Next() (core.Example, bool) {
	if d.index >= len(d.examples) {
		return core.Example{}, false
	}
	ex := d.examples[d.index]
	d.index++

	return core.Example{
		Inputs:  exampleInputs(ex),
		Outputs: exampleOutputs(ex),
	}, true
}

// Reset resets the dataset iterator
func (d *DatasetAdapter) Reset() {
	d.index = 0
}

func exampleInputs(ex models.TrainingExample) map[string]interface{} {
	intent := ""
	if ex.Intent != nil {
		intent = *ex.Intent
	}
	return map[string]interface{}{
		"intent":      intent,
		"spread_type": ex.SpreadType,
		"cards":       formatCards(ex.Cards),
	}
}

func exampleOutputs(ex models.TrainingExample) map[string]interface{} {
	return map[string]interface{}{
		"overview":              ex.Overview,
		"card_breakdowns":       formatBreakdowns(ex.CardBreakdowns),
		"synthesis":             ex.Synthesis,
		"actionable_reflection": ex.ActionableReflection,
	}
}

func formatCards(cards []models.CardDraw) string {
	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		parts = append(parts, c.CardID+" ("+c.Orientation+", "+c.Position+")")
	}
	return strings.Join(parts, "; ")
}

func formatBreakdowns(breakdowns []models.CardBreakdown) string {
	parts := make([]string, 0, len(breakdowns))
	for _, b := range breakdowns {
		parts = append(parts, b.CardID+": "+b.Summary)
	}
	return strings.Join(parts, "\n")
}

// MetricAdapter scores candidate outputs with the composite rubric so the
// optimizer's fitness matches the evaluation the ledger records.
type MetricAdapter struct {
	scorer *evaluate.Scorer
}

// NewMetricAdapter creates a new metric adapter
func NewMetricAdapter(scorer *evaluate.Scorer) *MetricAdapter {
	return &MetricAdapter{scorer: scorer}
}

// ToCoreMetric converts to the dspy-go core.Metric function type. The
// expected map carries the spread structure; the actual map carries the
// candidate narrative. Both are folded into one example for scoring.
func (m *MetricAdapter) ToCoreMetric() core.Metric {
	return func(expected, actual map[string]interface{}) float64 {
		ex := models.TrainingExample{
			SpreadType:           stringField(expected, "spread_type"),
			Cards:                parseCards(stringField(expected, "cards")),
			Overview:             stringField(actual, "overview"),
			CardBreakdowns:       parseBreakdowns(stringField(actual, "card_breakdowns")),
			Synthesis:            stringField(actual, "synthesis"),
			ActionableReflection: stringField(actual, "actionable_reflection"),
		}
		return m.scorer.Score(ex)
	}
}

func stringField(m map[string]interface{}, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case json.RawMessage:
		return string(v)
	default:
		return ""
	}
}

// parseCards inverts formatCards.
func parseCards(s string) []models.CardDraw {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	cards := make([]models.CardDraw, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id := part
		orientation := models.OrientationUpright
		position := ""
		if open := strings.Index(part, "("); open > 0 {
			id = strings.TrimSpace(part[:open])
			meta := strings.TrimSuffix(part[open+1:], ")")
			fields := strings.SplitN(meta, ",", 2)
			orientation = strings.TrimSpace(fields[0])
			if len(fields) == 2 {
				position = strings.TrimSpace(fields[1])
			}
		}
		cards = append(cards, models.CardDraw{CardID: id, Orientation: orientation, Position: position})
	}
	return cards
}

// parseBreakdowns inverts formatBreakdowns.
func parseBreakdowns(s string) []models.CardBreakdown {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	breakdowns := make([]models.CardBreakdown, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		id, summary, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		breakdowns = append(breakdowns, models.CardBreakdown{
			CardID:  strings.TrimSpace(id),
			Summary: strings.TrimSpace(summary),
		})
	}
	return breakdowns
}
