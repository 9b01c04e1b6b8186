package postgres

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/pashagolub/pgxmock/v4"

	"github.com/dailytarot/tarotpipe/internal/domain"
	"github.com/dailytarot/tarotpipe/internal/domain/models"
)

// sequenceIDGenerator hands out deterministic ids for assertions.
type sequenceIDGenerator struct {
	n int
}

func (g *sequenceIDGenerator) GenerateDatasetRowID() string {
	g.n++
	return fmt.Sprintf("ds_%d", g.n)
}

func (g *sequenceIDGenerator) GeneratePromptVersionID() string { return "pv_test" }
func (g *sequenceIDGenerator) GenerateEvaluationRunID() string { return "ev_test" }

func testExample(overview string) models.TrainingExample {
	return models.TrainingExample{
		SpreadType: models.SpreadSingle,
		Cards: []models.CardDraw{
			{CardID: "major-00", Orientation: models.OrientationUpright, Position: "focus"},
		},
		CardBreakdowns: []models.CardBreakdown{
			{CardID: "major-00", Orientation: models.OrientationUpright, Summary: "A leap."},
		},
		Overview:             overview,
		Synthesis:            "Trust the start.",
		ActionableReflection: "What would you begin today?",
		PromptVersion:        "pv_1",
	}
}

func TestDatasetRepository_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	repo := &DatasetRepository{
		BaseRepository: BaseRepository{pool: nil},
		idGenerator:    &sequenceIDGenerator{},
	}

	first, _ := json.Marshal(testExample("The Fool opens the day."))
	second, _ := json.Marshal(testExample("A fresh step."))

	rows := pgxmock.NewRows([]string{"payload"}).
		AddRow(first).
		AddRow(second)

	mock.ExpectQuery("SELECT (.+) FROM training_datasets").
		WithArgs("nightly-2026-08-30").
		WillReturnRows(rows)

	ctx := setupMockContext(mock)
	examples, err := repo.Get(ctx, "nightly-2026-08-30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(examples) != 2 {
		t.Fatalf("expected 2 examples, got %d", len(examples))
	}
	if examples[0].Overview != "The Fool opens the day." {
		t.Errorf("unexpected first overview: %s", examples[0].Overview)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDatasetRepository_Get_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	repo := &DatasetRepository{
		BaseRepository: BaseRepository{pool: nil},
		idGenerator:    &sequenceIDGenerator{},
	}

	mock.ExpectQuery("SELECT (.+) FROM training_datasets").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"payload"}))

	ctx := setupMockContext(mock)
	_, err = repo.Get(ctx, "missing")
	if !errors.Is(err, domain.ErrDatasetNotFound) {
		t.Errorf("expected ErrDatasetNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDatasetRepository_Append(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	repo := &DatasetRepository{
		BaseRepository: BaseRepository{pool: nil},
		idGenerator:    &sequenceIDGenerator{},
	}

	examples := []models.TrainingExample{
		testExample("First reading."),
		testExample("Second reading."),
	}

	mock.ExpectExec("INSERT INTO training_datasets").
		WithArgs("ds_1", "nightly-2026-08-30", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO training_datasets").
		WithArgs("ds_2", "nightly-2026-08-30", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	ctx := setupMockContext(mock)
	err = repo.Append(ctx, "nightly-2026-08-30", examples)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDatasetRepository_ListNames(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	repo := &DatasetRepository{
		BaseRepository: BaseRepository{pool: nil},
		idGenerator:    &sequenceIDGenerator{},
	}

	rows := pgxmock.NewRows([]string{"dataset"}).
		AddRow("nightly-2026-08-30").
		AddRow("nightly-2026-08-29")

	mock.ExpectQuery("SELECT (.+) FROM training_datasets").
		WithArgs(50).
		WillReturnRows(rows)

	ctx := setupMockContext(mock)
	names, err := repo.ListNames(ctx, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(names) != 2 {
		t.Fatalf("expected 2 names, got %d", len(names))
	}
	if names[0] != "nightly-2026-08-30" {
		t.Errorf("expected most recent dataset first, got %s", names[0])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
