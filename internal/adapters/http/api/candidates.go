// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/hireloop/hireloop/internal/domain/model"
	"github.com/hireloop/hireloop/internal/domain/stage"
)

// CandidateDependencies defines the interface for pipeline operations.
type CandidateDependencies interface {
	CreateCandidate(ctx context.Context, name, email, jobID string) (model.Candidate, error)
	AdvanceCandidate(ctx context.Context, id string, to model.Stage) (model.Candidate, stage.Decision, error)
	AddNote(ctx context.Context, id, text string) (model.HistoryEntry, error)
	RefreshCandidate(ctx context.Context, id string) (model.Candidate, error)
	Candidates(ctx context.Context) []model.Candidate
	Candidate(ctx context.Context, id string) (model.Candidate, error)
	History(ctx context.Context, id string) []model.HistoryEntry
}

// CandidatesHandler handles candidate pipeline requests.
type CandidatesHandler struct {
	deps CandidateDependencies
}

// NewCandidatesHandler creates a new candidates handler.
func NewCandidatesHandler(deps CandidateDependencies) *CandidatesHandler {
	return &CandidatesHandler{deps: deps}
}

type createCandidateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	JobID string `json:"job_id"`
}

type stageChangeRequest struct {
	Stage string `json:"stage"`
}

// stageChangeResponse carries the committed candidate plus any advisory
// the stage machine attached, e.g. "skip" for a multi-stage jump.
type stageChangeResponse struct {
	Candidate model.Candidate `json:"candidate"`
	NoOp      bool            `json:"no_op,omitempty"`
	Advisory  string          `json:"advisory,omitempty"`
}

type noteRequest struct {
	Text string `json:"text"`
}

// HandleListCandidates handles GET /candidates requests.
func (h *CandidatesHandler) HandleListCandidates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Candidates(r.Context()))
}

// HandleGetCandidate handles GET /candidates/{id} requests.
func (h *CandidatesHandler) HandleGetCandidate(w http.ResponseWriter, r *http.Request) {
	cand, err := h.deps.Candidate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeTaxonomyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cand)
}

// HandleCreateCandidate handles POST /candidates requests. New candidates
// always start at applied.
func (h *CandidatesHandler) HandleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	var req createCandidateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	cand, err := h.deps.CreateCandidate(r.Context(), req.Name, req.Email, req.JobID)
	if err != nil {
		writeTaxonomyError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cand)
}

// HandleStageChange handles POST /candidates/{id}/stage requests. A 422
// means the transition was rejected by the stage machine; 409 means the
// authority rejected it and the local stage was rolled back.
func (h *CandidatesHandler) HandleStageChange(w http.ResponseWriter, r *http.Request) {
	var req stageChangeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(req.Stage) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	cand, decision, err := h.deps.AdvanceCandidate(r.Context(), r.PathValue("id"), model.Stage(req.Stage))
	if err != nil {
		writeTaxonomyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stageChangeResponse{
		Candidate: cand,
		NoOp:      decision.NoOp,
		Advisory:  decision.Advisory,
	})
}

// HandleAddNote handles POST /candidates/{id}/notes requests. Notes are
// accepted at any stage, terminal ones included.
func (h *CandidatesHandler) HandleAddNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	entry, err := h.deps.AddNote(r.Context(), r.PathValue("id"), req.Text)
	if err != nil {
		writeTaxonomyError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// HandleGetHistory handles GET /candidates/{id}/history requests. Entries
// come back in timestamp order with append order as the tiebreak.
func (h *CandidatesHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.deps.Candidate(r.Context(), id); err != nil {
		writeTaxonomyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.History(r.Context(), id))
}

// HandleRefreshCandidate handles POST /candidates/{id}/refresh requests.
func (h *CandidatesHandler) HandleRefreshCandidate(w http.ResponseWriter, r *http.Request) {
	cand, err := h.deps.RefreshCandidate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeTaxonomyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cand)
}
