// Package remote talks to the authoritative service that owns job and
// candidate state. The core only needs the minimal request/response
// shapes for reconciliation; transport details stay in this package.
package remote

import (
	"context"

	"github.com/hireloop/hireloop/internal/domain/model"
)

// ReorderRequest asks the authority to move a job on the board.
type ReorderRequest struct {
	JobID     string `json:"job_id"`
	FromOrder int    `json:"from_order"`
	ToOrder   int    `json:"to_order"`
}

// UpdateJobRequest asks the authority to edit a job's descriptive fields.
// Ordering is never changed through this request.
type UpdateJobRequest struct {
	JobID    string   `json:"job_id"`
	Title    string   `json:"title"`
	Location string   `json:"location"`
	Tags     []string `json:"tags"`
}

// StageRequest asks the authority to move a candidate to a new stage.
type StageRequest struct {
	CandidateID string      `json:"candidate_id"`
	Stage       model.Stage `json:"stage"`
}

// Authority is the remote service the coordinator reconciles against.
// Calls are idempotent-safe to retry manually after a failure; errors are
// classified into the mutation taxonomy (NotFound, Validation, Conflict,
// Network) so callers can branch with errors.Is.
type Authority interface {
	// ReorderJob returns the authoritative job, including its
	// server-confirmed order.
	ReorderJob(ctx context.Context, req ReorderRequest) (model.Job, error)

	// UpdateJob returns the authoritative job after a field edit.
	UpdateJob(ctx context.Context, req UpdateJobRequest) (model.Job, error)

	// UpdateStage returns the authoritative candidate, including the
	// stage value actually persisted.
	UpdateStage(ctx context.Context, req StageRequest) (model.Candidate, error)

	// FetchJob re-reads a job so a caller can refresh its committed
	// baseline after a conflict before retrying.
	FetchJob(ctx context.Context, id string) (model.Job, error)

	// FetchCandidate re-reads a candidate after a conflict.
	FetchCandidate(ctx context.Context, id string) (model.Candidate, error)
}
