package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mlucchetti/rfdrelax/internal/core/domain"
	"github.com/mlucchetti/rfdrelax/internal/infrastructure/resilience"
	"github.com/mlucchetti/rfdrelax/internal/infrastructure/tabular"
)

// CatalogRepository reads the dependency catalog from a table written by
// the discovery pipeline: one RHS column, one numeric threshold column per
// dataset attribute, NULL meaning no bound.
type CatalogRepository struct {
	db       *sql.DB
	table    string
	executor *resilience.Executor
}

func NewCatalogRepository(db *sql.DB, table string) *CatalogRepository {
	return NewCatalogRepositoryWithOptions(db, table, Options{})
}

func NewCatalogRepositoryWithOptions(db *sql.DB, table string, options Options) *CatalogRepository {
	return &CatalogRepository{db: db, table: table, executor: options.ResilienceExecutor}
}

func (r *CatalogRepository) LoadCatalog(ctx context.Context) (domain.Catalog, error) {
	var catalog domain.Catalog
	call := func(ctx context.Context) error {
		loaded, err := r.loadCatalog(ctx)
		if err != nil {
			return err
		}
		catalog = loaded
		return nil
	}

	var err error
	if r.executor != nil {
		err = r.executor.Execute(ctx, "postgres.load_catalog", call, classifyPostgresError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return domain.Catalog{}, wrapTemporaryIfNeeded("load catalog", err)
	}
	return catalog, nil
}

func (r *CatalogRepository) loadCatalog(ctx context.Context) (domain.Catalog, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %s`, quoteIdentifier(r.table)))
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("query catalog table %s: %w", r.table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("catalog columns: %w", err)
	}
	rhsIdx := -1
	attrs := make([]string, 0, len(columns))
	for i, name := range columns {
		if name == tabular.RHSColumn {
			rhsIdx = i
			continue
		}
		attrs = append(attrs, name)
	}
	if rhsIdx == -1 {
		return domain.Catalog{}, domain.WrapError(domain.ErrSchemaMismatch, "load catalog",
			fmt.Errorf("table %s has no %s column", r.table, tabular.RHSColumn))
	}

	rfds := make([]domain.RFD, 0)
	for rows.Next() {
		var rhs sql.NullString
		bounds := make([]sql.NullFloat64, len(columns)-1)
		targets := make([]any, len(columns))
		boundIdx := 0
		for i := range columns {
			if i == rhsIdx {
				targets[i] = &rhs
				continue
			}
			targets[i] = &bounds[boundIdx]
			boundIdx++
		}
		if err := rows.Scan(targets...); err != nil {
			return domain.Catalog{}, fmt.Errorf("scan catalog row: %w", err)
		}
		if !rhs.Valid || rhs.String == "" {
			return domain.Catalog{}, domain.WrapError(domain.ErrInvalidInput, "load catalog",
				fmt.Errorf("catalog row has no %s value", tabular.RHSColumn))
		}
		thresholds := make(map[string]float64)
		for i, bound := range bounds {
			if bound.Valid {
				thresholds[attrs[i]] = bound.Float64
			}
		}
		rfd, err := domain.NewRFD(rhs.String, attrs, thresholds)
		if err != nil {
			return domain.Catalog{}, fmt.Errorf("catalog row %d: %w", len(rfds)+1, err)
		}
		rfds = append(rfds, rfd)
	}
	if err := rows.Err(); err != nil {
		return domain.Catalog{}, fmt.Errorf("iterate catalog rows: %w", err)
	}
	return domain.NewCatalog(attrs, rfds)
}
