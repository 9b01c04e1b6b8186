package models

import (
	"time"

	"github.com/dailytarot/tarotpipe/internal/domain"
)

// MetricResult is one scored quality dimension. Value is in [0,1] for every
// metric in the suite; Threshold is an optional guardrail bound.
type MetricResult struct {
	Name      string   `json:"name"`
	Value     float64  `json:"value"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// EvaluationRun is an immutable record of metric results computed against a
// dataset for a given prompt version. Runs are append-only: corrections are
// represented as new rows, never as updates.
type EvaluationRun struct {
	ID                  string         `json:"id"`
	PromptVersionID     string         `json:"prompt_version_id"`
	Dataset             string         `json:"dataset"`
	Metrics             []MetricResult `json:"metrics"`
	GuardrailViolations []string       `json:"guardrail_violations"`
	CreatedAt           time.Time      `json:"created_at"`
}

// NewEvaluationRun creates an evaluation run record for a prompt version.
func NewEvaluationRun(id, promptVersionID, dataset string, metrics []MetricResult, violations []string) *EvaluationRun {
	if violations == nil {
		violations = []string{}
	}
	return &EvaluationRun{
		ID:                  id,
		PromptVersionID:     promptVersionID,
		Dataset:             dataset,
		Metrics:             metrics,
		GuardrailViolations: violations,
		CreatedAt:           time.Now().UTC(),
	}
}

// Validate checks the evaluation run payload.
func (r *EvaluationRun) Validate() error {
	if r.ID == "" {
		return domain.NewDomainError(domain.ErrInvalidID, "evaluation run id is empty")
	}
	if r.PromptVersionID == "" {
		return domain.NewDomainError(domain.ErrInvalidID, "evaluation run prompt version id is empty")
	}
	if r.Dataset == "" {
		return domain.NewDomainError(domain.ErrEmptyContent, "evaluation run dataset name is empty")
	}
	return nil
}

// Metric returns the named metric result, or nil when absent.
func (r *EvaluationRun) Metric(name string) *MetricResult {
	for i := range r.Metrics {
		if r.Metrics[i].Name == name {
			return &r.Metrics[i]
		}
	}
	return nil
}
