package ports

import (
	"context"

	"github.com/mlucchetti/rfdrelax/internal/core/domain"
)

// CatalogSource loads the discovered dependency catalog.
type CatalogSource interface {
	LoadCatalog(ctx context.Context) (domain.Catalog, error)
}

// DatasetSource loads the search-space table.
type DatasetSource interface {
	LoadDataset(ctx context.Context) (domain.Dataset, error)
}

// RelaxJobRepository persists relaxation jobs and their results.
type RelaxJobRepository interface {
	Create(ctx context.Context, job *domain.RelaxJob) error
	GetByID(ctx context.Context, id string) (*domain.RelaxJob, error)
	UpdateStatus(ctx context.Context, id string, status domain.RelaxJobStatus, errMessage string) error
	SaveResult(ctx context.Context, id string, result *domain.RelaxResult) error
}

// JobQueue publishes/consumes relaxation job events.
type JobQueue interface {
	PublishRelaxRequested(ctx context.Context, jobID string) error
	SubscribeRelaxRequested(ctx context.Context, handler func(context.Context, string) error) error
}
