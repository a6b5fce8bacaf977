package domain

import "time"

// RelaxJobStatus is the lifecycle state of a queued relaxation request.
type RelaxJobStatus string

const (
	JobStatusPending RelaxJobStatus = "pending"
	JobStatusRunning RelaxJobStatus = "running"
	JobStatusDone    RelaxJobStatus = "done"
	JobStatusFailed  RelaxJobStatus = "failed"
)

// RelaxJob is one asynchronous relaxation request. The result is set only
// once the job reaches JobStatusDone; Error carries the failure reason for
// JobStatusFailed.
type RelaxJob struct {
	ID        string         `json:"id"`
	Query     Query          `json:"query"`
	Options   RelaxOptions   `json:"options"`
	Status    RelaxJobStatus `json:"status"`
	Result    *RelaxResult   `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
