package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mlucchetti/rfdrelax/internal/core/domain"
	"github.com/mlucchetti/rfdrelax/internal/core/ports"
)

type RelaxJobUseCase struct {
	relaxer ports.QueryRelaxer
	jobs    ports.RelaxJobRepository
	queue   ports.JobQueue
}

func NewRelaxJobUseCase(
	relaxer ports.QueryRelaxer,
	jobs ports.RelaxJobRepository,
	queue ports.JobQueue,
) *RelaxJobUseCase {
	return &RelaxJobUseCase{
		relaxer: relaxer,
		jobs:    jobs,
		queue:   queue,
	}
}

// Submit persists a pending job and publishes it for asynchronous
// execution.
func (uc *RelaxJobUseCase) Submit(ctx context.Context, query domain.Query, opts domain.RelaxOptions) (*domain.RelaxJob, error) {
	if query.Len() == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "submit relax job", fmt.Errorf("query has no conditions"))
	}
	now := time.Now().UTC()
	job := &domain.RelaxJob{
		ID:        uuid.NewString(),
		Query:     query,
		Options:   opts,
		Status:    domain.JobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create relax job: %w", err)
	}

	if err := uc.queue.PublishRelaxRequested(ctx, job.ID); err != nil {
		return nil, fmt.Errorf("publish relax job event: %w", err)
	}

	return job, nil
}

func (uc *RelaxJobUseCase) GetByID(ctx context.Context, id string) (*domain.RelaxJob, error) {
	if id == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "get relax job", fmt.Errorf("empty job id"))
	}
	job, err := uc.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch relax job by id: %w", err)
	}
	return job, nil
}

// RunByID executes one queued job to completion. Jobs already done are
// skipped so queue redeliveries stay harmless.
func (uc *RelaxJobUseCase) RunByID(ctx context.Context, jobID string) error {
	job, err := uc.jobs.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("fetch relax job by id: %w", err)
	}
	if job.Status == domain.JobStatusDone {
		return nil
	}

	if err := uc.jobs.UpdateStatus(ctx, jobID, domain.JobStatusRunning, ""); err != nil {
		return fmt.Errorf("set status=running: %w", err)
	}

	result, err := uc.relaxer.Relax(ctx, job.Query, job.Options)
	if err != nil {
		if failErr := uc.jobs.UpdateStatus(ctx, jobID, domain.JobStatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.jobs.SaveResult(ctx, jobID, result); err != nil {
		if failErr := uc.jobs.UpdateStatus(ctx, jobID, domain.JobStatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return fmt.Errorf("save relax result: %w", err)
	}

	return nil
}
