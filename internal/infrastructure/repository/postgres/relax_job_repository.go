package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mlucchetti/rfdrelax/internal/core/domain"
)

type RelaxJobRepository struct {
	db *sql.DB
}

func NewRelaxJobRepository(db *sql.DB) *RelaxJobRepository {
	return &RelaxJobRepository{db: db}
}

func (r *RelaxJobRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082501)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS relax_jobs (
	id TEXT PRIMARY KEY,
	query JSONB NOT NULL,
	options JSONB NOT NULL DEFAULT '{}'::jsonb,
	status TEXT NOT NULL,
	result JSONB,
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_relax_jobs_status ON relax_jobs(status);
CREATE INDEX IF NOT EXISTS idx_relax_jobs_created_at ON relax_jobs(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *RelaxJobRepository) Create(ctx context.Context, job *domain.RelaxJob) error {
	queryJSON, err := json.Marshal(job.Query)
	if err != nil {
		return fmt.Errorf("marshal job query: %w", err)
	}
	optionsJSON, err := json.Marshal(job.Options)
	if err != nil {
		return fmt.Errorf("marshal job options: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO relax_jobs (id, query, options, status, error_message, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, job.ID, queryJSON, optionsJSON, string(job.Status), job.Error, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert relax job: %w", err)
	}
	return nil
}

func (r *RelaxJobRepository) GetByID(ctx context.Context, id string) (*domain.RelaxJob, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, query, options, status, result, error_message, created_at, updated_at
FROM relax_jobs
WHERE id = $1
`, id)

	var job domain.RelaxJob
	var queryRaw, optionsRaw, resultRaw []byte
	var status string

	err := row.Scan(&job.ID, &queryRaw, &optionsRaw, &status, &resultRaw, &job.Error, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrJobNotFound, "get relax job", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan relax job: %w", err)
	}

	if err := json.Unmarshal(queryRaw, &job.Query); err != nil {
		return nil, fmt.Errorf("unmarshal job query: %w", err)
	}
	if err := json.Unmarshal(optionsRaw, &job.Options); err != nil {
		return nil, fmt.Errorf("unmarshal job options: %w", err)
	}
	if len(resultRaw) > 0 {
		var result domain.RelaxResult
		if err := json.Unmarshal(resultRaw, &result); err != nil {
			return nil, fmt.Errorf("unmarshal job result: %w", err)
		}
		job.Result = &result
	}
	job.Status = domain.RelaxJobStatus(status)
	return &job, nil
}

func (r *RelaxJobRepository) UpdateStatus(ctx context.Context, id string, status domain.RelaxJobStatus, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE relax_jobs
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update relax job status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update relax job rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrJobNotFound, "update relax job status", fmt.Errorf("id=%s", id))
	}
	return nil
}

func (r *RelaxJobRepository) SaveResult(ctx context.Context, id string, relaxResult *domain.RelaxResult) error {
	resultJSON, err := json.Marshal(relaxResult)
	if err != nil {
		return fmt.Errorf("marshal relax result: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE relax_jobs
SET status = $2, result = $3, error_message = '', updated_at = $4
WHERE id = $1
`, id, string(domain.JobStatusDone), resultJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save relax result: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("save relax result rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrJobNotFound, "save relax result", fmt.Errorf("id=%s", id))
	}
	return nil
}
