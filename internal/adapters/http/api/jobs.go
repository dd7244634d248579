// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/hireloop/hireloop/internal/domain/model"
)

// JobDependencies defines the interface for board operations.
type JobDependencies interface {
	CreateJob(ctx context.Context, title, location string, tags []string, atOrder int) (model.Job, error)
	UpdateJob(ctx context.Context, id, title, location string, tags []string) (model.Job, error)
	ReorderJob(ctx context.Context, id string, toOrder int) (model.Job, error)
	ArchiveJob(ctx context.Context, id string) (model.Job, error)
	RestoreJob(ctx context.Context, id string) (model.Job, error)
	RefreshJob(ctx context.Context, id string) (model.Job, error)
	Board(ctx context.Context) []model.Job
	Jobs(ctx context.Context) []model.Job
	Job(ctx context.Context, id string) (model.Job, error)
}

// JobsHandler handles board and job requests.
type JobsHandler struct {
	deps JobDependencies
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(deps JobDependencies) *JobsHandler {
	return &JobsHandler{deps: deps}
}

type createJobRequest struct {
	Title    string   `json:"title"`
	Location string   `json:"location"`
	Tags     []string `json:"tags"`
	Order    int      `json:"order"`
}

type reorderRequest struct {
	ToOrder int `json:"to_order"`
}

// HandleGetBoard handles GET /board requests. The response is the active
// jobs in dense 1..N order, speculative states included.
func (h *JobsHandler) HandleGetBoard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Board(r.Context()))
}

// HandleListJobs handles GET /jobs requests, archived jobs included.
func (h *JobsHandler) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Jobs(r.Context()))
}

// HandleGetJob handles GET /jobs/{id} requests.
func (h *JobsHandler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.deps.Job(r.Context(), r.PathValue("id"))
	if err != nil {
		writeTaxonomyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// HandleCreateJob handles POST /jobs requests.
func (h *JobsHandler) HandleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	job, err := h.deps.CreateJob(r.Context(), req.Title, req.Location, req.Tags, req.Order)
	if err != nil {
		writeTaxonomyError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

// HandleUpdateJob handles PATCH /jobs/{id} requests. The edit is
// optimistic; ordering is never changed through this route.
func (h *JobsHandler) HandleUpdateJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	job, err := h.deps.UpdateJob(r.Context(), r.PathValue("id"), req.Title, req.Location, req.Tags)
	if err != nil {
		writeTaxonomyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// HandleReorderJob handles POST /jobs/{id}/reorder requests. The move is
// optimistic; a non-2xx status means the board was restored to its
// pre-move state.
func (h *JobsHandler) HandleReorderJob(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	job, err := h.deps.ReorderJob(r.Context(), r.PathValue("id"), req.ToOrder)
	if err != nil {
		writeTaxonomyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// HandleArchiveJob handles POST /jobs/{id}/archive requests.
func (h *JobsHandler) HandleArchiveJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.deps.ArchiveJob(r.Context(), r.PathValue("id"))
	if err != nil {
		writeTaxonomyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// HandleRestoreJob handles POST /jobs/{id}/restore requests.
func (h *JobsHandler) HandleRestoreJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.deps.RestoreJob(r.Context(), r.PathValue("id"))
	if err != nil {
		writeTaxonomyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// HandleRefreshJob handles POST /jobs/{id}/refresh requests. Refetches the
// authoritative record, replacing the committed baseline.
func (h *JobsHandler) HandleRefreshJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.deps.RefreshJob(r.Context(), r.PathValue("id"))
	if err != nil {
		writeTaxonomyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}
