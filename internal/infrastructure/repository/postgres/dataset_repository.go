package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mlucchetti/rfdrelax/internal/core/domain"
	"github.com/mlucchetti/rfdrelax/internal/infrastructure/resilience"
)

// DatasetRepository reads the search-space table. Every column becomes a
// dataset attribute; cell types follow the database values.
type DatasetRepository struct {
	db       *sql.DB
	table    string
	executor *resilience.Executor
}

func NewDatasetRepository(db *sql.DB, table string) *DatasetRepository {
	return NewDatasetRepositoryWithOptions(db, table, Options{})
}

func NewDatasetRepositoryWithOptions(db *sql.DB, table string, options Options) *DatasetRepository {
	return &DatasetRepository{db: db, table: table, executor: options.ResilienceExecutor}
}

func (r *DatasetRepository) LoadDataset(ctx context.Context) (domain.Dataset, error) {
	var dataset domain.Dataset
	call := func(ctx context.Context) error {
		loaded, err := r.loadDataset(ctx)
		if err != nil {
			return err
		}
		dataset = loaded
		return nil
	}

	var err error
	if r.executor != nil {
		err = r.executor.Execute(ctx, "postgres.load_dataset", call, classifyPostgresError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return domain.Dataset{}, wrapTemporaryIfNeeded("load dataset", err)
	}
	return dataset, nil
}

func (r *DatasetRepository) loadDataset(ctx context.Context) (domain.Dataset, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %s`, quoteIdentifier(r.table)))
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("query dataset table %s: %w", r.table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("dataset columns: %w", err)
	}
	cols := make(map[string][]domain.Value, len(columns))
	for _, name := range columns {
		cols[name] = make([]domain.Value, 0)
	}

	for rows.Next() {
		cells := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range cells {
			targets[i] = &cells[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return domain.Dataset{}, fmt.Errorf("scan dataset row: %w", err)
		}
		for i, name := range columns {
			cols[name] = append(cols[name], domain.ValueOf(cells[i]))
		}
	}
	if err := rows.Err(); err != nil {
		return domain.Dataset{}, fmt.Errorf("iterate dataset rows: %w", err)
	}
	return domain.NewDataset(columns, cols)
}
