package postgres

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"

	"github.com/dailytarot/tarotpipe/internal/domain"
	"github.com/dailytarot/tarotpipe/internal/domain/models"
)

func TestEvaluationRunRepository_Record(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	repo := &EvaluationRunRepository{
		BaseRepository: BaseRepository{pool: nil},
	}

	run := models.NewEvaluationRun("ev_1", "pv_1", "nightly-2026-08-30", []models.MetricResult{
		{Name: "composite", Value: 0.82},
		{Name: "card_coverage", Value: 1.0},
	}, nil)

	mock.ExpectExec("INSERT INTO evaluation_runs").
		WithArgs(run.ID, run.PromptVersionID, run.Dataset, pgxmock.AnyArg(), pgxmock.AnyArg(), run.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	ctx := setupMockContext(mock)
	err = repo.Record(ctx, run)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestEvaluationRunRepository_Record_MissingVersion(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	repo := &EvaluationRunRepository{
		BaseRepository: BaseRepository{pool: nil},
	}

	run := models.NewEvaluationRun("ev_1", "", "nightly-2026-08-30", nil, nil)

	ctx := setupMockContext(mock)
	err = repo.Record(ctx, run)
	if !errors.Is(err, domain.ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestEvaluationRunRepository_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	repo := &EvaluationRunRepository{
		BaseRepository: BaseRepository{pool: nil},
	}

	now := time.Now()
	metrics, _ := json.Marshal([]models.MetricResult{{Name: "composite", Value: 0.75}})
	violations, _ := json.Marshal([]string{"disclaimer"})

	rows := pgxmock.NewRows([]string{
		"id", "prompt_version_id", "dataset", "metrics", "guardrail_violations", "created_at",
	}).AddRow("ev_1", "pv_1", "nightly-2026-08-30", metrics, violations, now)

	mock.ExpectQuery("SELECT (.+) FROM evaluation_runs").
		WithArgs("ev_1").
		WillReturnRows(rows)

	ctx := setupMockContext(mock)
	run, err := repo.GetByID(ctx, "ev_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if run.PromptVersionID != "pv_1" {
		t.Errorf("expected prompt version pv_1, got %s", run.PromptVersionID)
	}
	composite := run.Metric("composite")
	if composite == nil || composite.Value != 0.75 {
		t.Errorf("expected composite 0.75, got %+v", composite)
	}
	if len(run.GuardrailViolations) != 1 || run.GuardrailViolations[0] != "disclaimer" {
		t.Errorf("unexpected guardrail violations: %v", run.GuardrailViolations)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestEvaluationRunRepository_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	repo := &EvaluationRunRepository{
		BaseRepository: BaseRepository{pool: nil},
	}

	mock.ExpectQuery("SELECT (.+) FROM evaluation_runs").
		WithArgs("ev_missing").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "prompt_version_id", "dataset", "metrics", "guardrail_violations", "created_at",
		}))

	ctx := setupMockContext(mock)
	_, err = repo.GetByID(ctx, "ev_missing")
	if !errors.Is(err, domain.ErrEvaluationNotFound) {
		t.Errorf("expected ErrEvaluationNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestEvaluationRunRepository_ListByVersion(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	repo := &EvaluationRunRepository{
		BaseRepository: BaseRepository{pool: nil},
	}

	now := time.Now()
	metrics, _ := json.Marshal([]models.MetricResult{{Name: "composite", Value: 0.8}})
	violations, _ := json.Marshal([]string{})

	rows := pgxmock.NewRows([]string{
		"id", "prompt_version_id", "dataset", "metrics", "guardrail_violations", "created_at",
	}).
		AddRow("ev_2", "pv_1", "nightly-2026-08-30", metrics, violations, now).
		AddRow("ev_1", "pv_1", "nightly-2026-08-29", metrics, violations, now.Add(-24*time.Hour))

	mock.ExpectQuery("SELECT (.+) FROM evaluation_runs").
		WithArgs("pv_1", 20).
		WillReturnRows(rows)

	ctx := setupMockContext(mock)
	runs, err := repo.ListByVersion(ctx, "pv_1", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "ev_2" {
		t.Errorf("expected ev_2 first, got %s", runs[0].ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
