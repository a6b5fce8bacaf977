package ports

import (
	"context"

	"github.com/mlucchetti/rfdrelax/internal/core/domain"
)

// QueryRelaxer is the inbound contract for synchronous query relaxation.
type QueryRelaxer interface {
	Relax(ctx context.Context, query domain.Query, opts domain.RelaxOptions) (*domain.RelaxResult, error)
}

// CandidateLister is the inbound read model for the filtered, ranked
// dependency view of a query.
type CandidateLister interface {
	Candidates(ctx context.Context, query domain.Query) ([]domain.RFD, error)
}

// RelaxJobService is the inbound contract for asynchronous relaxation jobs.
type RelaxJobService interface {
	Submit(ctx context.Context, query domain.Query, opts domain.RelaxOptions) (*domain.RelaxJob, error)
	GetByID(ctx context.Context, id string) (*domain.RelaxJob, error)
}

// RelaxJobRunner is the inbound contract for executing one queued job.
type RelaxJobRunner interface {
	RunByID(ctx context.Context, jobID string) error
}
