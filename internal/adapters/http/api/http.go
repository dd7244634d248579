// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hireloop/hireloop/internal/domain/mutation"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	JobDependencies
	CandidateDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	jobsHandler       *JobsHandler
	candidatesHandler *CandidatesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		jobsHandler:       NewJobsHandler(deps),
		candidatesHandler: NewCandidatesHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /board", MetricsMiddleware(s.jobsHandler.HandleGetBoard, "board"))
	mux.HandleFunc("GET /jobs", MetricsMiddleware(s.jobsHandler.HandleListJobs, "jobs"))
	mux.HandleFunc("GET /jobs/{id}", MetricsMiddleware(s.jobsHandler.HandleGetJob, "job"))
	mux.HandleFunc("POST /jobs", MetricsMiddleware(s.jobsHandler.HandleCreateJob, "jobs"))
	mux.HandleFunc("PATCH /jobs/{id}", MetricsMiddleware(s.jobsHandler.HandleUpdateJob, "job_update"))
	mux.HandleFunc("POST /jobs/{id}/reorder", MetricsMiddleware(s.jobsHandler.HandleReorderJob, "job_reorder"))
	mux.HandleFunc("POST /jobs/{id}/archive", MetricsMiddleware(s.jobsHandler.HandleArchiveJob, "job_archive"))
	mux.HandleFunc("POST /jobs/{id}/restore", MetricsMiddleware(s.jobsHandler.HandleRestoreJob, "job_restore"))
	mux.HandleFunc("POST /jobs/{id}/refresh", MetricsMiddleware(s.jobsHandler.HandleRefreshJob, "job_refresh"))

	mux.HandleFunc("GET /candidates", MetricsMiddleware(s.candidatesHandler.HandleListCandidates, "candidates"))
	mux.HandleFunc("GET /candidates/{id}", MetricsMiddleware(s.candidatesHandler.HandleGetCandidate, "candidate"))
	mux.HandleFunc("POST /candidates", MetricsMiddleware(s.candidatesHandler.HandleCreateCandidate, "candidates"))
	mux.HandleFunc("POST /candidates/{id}/stage", MetricsMiddleware(s.candidatesHandler.HandleStageChange, "candidate_stage"))
	mux.HandleFunc("POST /candidates/{id}/notes", MetricsMiddleware(s.candidatesHandler.HandleAddNote, "candidate_notes"))
	mux.HandleFunc("GET /candidates/{id}/history", MetricsMiddleware(s.candidatesHandler.HandleGetHistory, "candidate_history"))
	mux.HandleFunc("POST /candidates/{id}/refresh", MetricsMiddleware(s.candidatesHandler.HandleRefreshCandidate, "candidate_refresh"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeTaxonomyError maps a mutation taxonomy error onto its HTTP shape.
// Busy is 429 so clients retry after the in-flight mutation settles;
// Conflict is 409 and signals refetch-then-retry.
func writeTaxonomyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mutation.ErrBusy):
		writeError(w, http.StatusTooManyRequests, "busy", err)
	case errors.Is(err, mutation.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, mutation.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "validation", err)
	case errors.Is(err, mutation.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, mutation.ErrNetwork):
		writeError(w, http.StatusBadGateway, "upstream_unreachable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return ErrBadRequest
	}
	return nil
}
