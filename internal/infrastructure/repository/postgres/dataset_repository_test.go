package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mlucchetti/rfdrelax/internal/core/domain"
)

func TestLoadDatasetConvertsCellTypes(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer func() { _ = db.Close() }()
	repo := &DatasetRepository{db: db, table: "housing"}

	mock.ExpectQuery(`SELECT \* FROM "housing"`).WillReturnRows(
		sqlmock.NewRows([]string{"age", "city", "score"}).
			AddRow(int64(28), "Roma", 1.5).
			AddRow(int64(31), "Rome", nil),
	)

	dataset, err := repo.LoadDataset(context.Background())
	if err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}
	if dataset.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", dataset.Len())
	}
	ages, err := dataset.Column("age")
	if err != nil {
		t.Fatalf("Column() error = %v", err)
	}
	if ages[0] != domain.Number(28) {
		t.Fatalf("expected Number(28), got %#v", ages[0])
	}
	scores, _ := dataset.Column("score")
	if scores[0] != domain.Decimal(1.5) {
		t.Fatalf("expected Decimal(1.5), got %#v", scores[0])
	}
	if scores[1] != (domain.Null{}) {
		t.Fatalf("expected Null for the NULL cell, got %#v", scores[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLoadDatasetTextCellsFromBytes(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer func() { _ = db.Close() }()
	repo := &DatasetRepository{db: db, table: "housing"}

	mock.ExpectQuery(`SELECT \* FROM "housing"`).WillReturnRows(
		sqlmock.NewRows([]string{"city"}).AddRow([]byte("Turin")),
	)

	dataset, err := repo.LoadDataset(context.Background())
	if err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}
	cities, _ := dataset.Column("city")
	if cities[0] != domain.Text("Turin") {
		t.Fatalf("expected Text(Turin), got %#v", cities[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
