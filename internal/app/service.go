// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hireloop/hireloop/internal/adapters/journal"
	"github.com/hireloop/hireloop/internal/adapters/remote"
	"github.com/hireloop/hireloop/internal/adapters/repository"
	"github.com/hireloop/hireloop/internal/domain/board"
	"github.com/hireloop/hireloop/internal/domain/history"
	"github.com/hireloop/hireloop/internal/domain/model"
	"github.com/hireloop/hireloop/internal/domain/mutation"
	"github.com/hireloop/hireloop/internal/domain/pipeline"
	"github.com/hireloop/hireloop/internal/domain/rank"
	"github.com/hireloop/hireloop/internal/domain/stage"
	"github.com/hireloop/hireloop/pkg/logger"
	"github.com/hireloop/hireloop/pkg/metrics"
)

// Document key prefixes in the store.
const (
	jobKeyPrefix       = "job/"
	candidateKeyPrefix = "cand/"
	historyKeyPrefix   = "hist/"
)

// Service wires the board, pipeline, history and coordinator together.
// Callers receive a handle from New; there is no package-level instance.
type Service struct {
	board      *board.Store
	candidates *pipeline.Store
	history    *history.Log
	coord      *mutation.Coordinator
	authority  remote.Authority
	docs       repository.DocStore
	journal    *journal.Journal

	// Configuration
	subscriberBuffer int
	journalCapacity  int
	clock            func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a Service with default configuration. Start must be
// called before use.
func New(opts ...Option) *Service {
	s := &Service{
		subscriberBuffer: 64,
		journalCapacity:  4096,
		clock:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the service components and loads persisted state.
func (s *Service) Start(ctx context.Context) error {
	if s.started {
		return nil
	}
	if s.authority == nil {
		return ErrNoAuthority
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.docs == nil {
		s.docs = repository.NewMemStore()
	}

	s.board = board.New(board.WithSubscriberBuffer(s.subscriberBuffer))
	s.candidates = pipeline.New()
	s.journal = journal.New(s.docs, journal.WithCapacity(s.journalCapacity), journal.WithLogger(s.logger))
	s.history = history.New(history.WithClock(s.clock), history.WithSink(&journalSink{journal: s.journal}))
	s.coord = mutation.New(mutation.WithLogger(s.logger))

	if err := s.load(ctx); err != nil {
		return fmt.Errorf("load persisted state: %w", err)
	}
	s.journal.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "pipeline service started",
		logger.Int("jobs", s.board.Count(ctx)),
		logger.Int("candidates", s.candidates.Count(ctx)),
	)
	return nil
}

// Stop drains the journal and closes the document store.
func (s *Service) Stop() {
	if !s.started {
		return
	}
	ctx := context.Background()
	if err := s.journal.Close(); err != nil {
		s.logger.Error(ctx, "journal close failed", logger.Error(err))
	}
	if err := s.docs.Close(); err != nil {
		s.logger.Error(ctx, "document store close failed", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "pipeline service stopped")
}

// CreateJob adds a job to the board. With atOrder <= 0 the job appends at
// the bottom; otherwise it is inserted at the clamped target order and
// the rest of the board renumbers around it.
func (s *Service) CreateJob(ctx context.Context, title, location string, tags []string, atOrder int) (model.Job, error) {
	now := s.clock()
	job := model.Job{
		ID:        uuid.NewString(),
		Title:     title,
		Location:  location,
		Tags:      tags,
		Order:     s.board.ActiveCount(ctx) + 1,
		Status:    model.JobActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.board.Commit(ctx, job)

	changed := []model.Job{job}
	if atOrder > 0 && atOrder < job.Order {
		after, err := rank.Reorder(s.board.Active(ctx), job.ID, atOrder)
		if err != nil {
			return model.Job{}, err
		}
		s.board.Commit(ctx, after...)
		changed = after
		for _, j := range after {
			if j.ID == job.ID {
				job = j
			}
		}
	}
	s.persistJobs(ctx, changed)
	metrics.UpdateBoardSize(s.board.ActiveCount(ctx))
	return job, nil
}

// ReorderJob optimistically moves a job to toOrder and reconciles with
// the authority. Moving a job onto its current order is a silent no-op
// that never reaches the remote.
func (s *Service) ReorderJob(ctx context.Context, id string, toOrder int) (model.Job, error) {
	job, err := s.board.Get(ctx, id)
	if err != nil {
		return model.Job{}, fmt.Errorf("job %q: %w", id, mutation.ErrNotFound)
	}
	if !job.Active() {
		return model.Job{}, fmt.Errorf("job %q is archived: %w", id, mutation.ErrValidation)
	}

	// Clamping, the no-op decision and the request orders are all derived
	// inside Apply, under the per-id guard, so they cannot be computed from
	// a state another mutation changes before the speculative publish.
	var (
		fromOrder int
		target    int
		noOp      bool
		snapshot  model.Job
		displaced map[string]int
	)

	result, err := s.coord.Mutate(ctx, id, mutation.Mutation{
		Apply: func(ctx context.Context) (mutation.Restore, error) {
			// Latest committed collection snapshot at the moment the
			// mutation starts.
			before := s.board.Active(ctx)
			moved := -1
			for i := range before {
				if before[i].ID == id {
					moved = i
				}
			}
			if moved < 0 {
				return nil, fmt.Errorf("job %q: %w", id, mutation.ErrNotFound)
			}
			snapshot = before[moved]
			fromOrder = snapshot.Order
			target = rank.Clamp(toOrder, len(before))
			if target == fromOrder {
				noOp = true
				return func(context.Context) {}, nil
			}

			after, err := rank.Reorder(before, id, target)
			if err != nil {
				return nil, fmt.Errorf("reorder: %w", mutation.ErrNotFound)
			}
			// Only the jobs the move displaced are published, and only
			// their pre-move orders are remembered for rollback.
			prev := make(map[string]int, len(before))
			for _, j := range before {
				prev[j.ID] = j.Order
			}
			displaced = make(map[string]int)
			changed := make([]model.Job, 0, len(after))
			for _, j := range after {
				if prev[j.ID] != j.Order {
					displaced[j.ID] = prev[j.ID]
					changed = append(changed, j)
				}
			}
			s.board.Publish(ctx, changed...)
			return func(ctx context.Context) {
				// Merge the pre-move orders onto each job's current record
				// so state committed independently by mutations on other
				// ids survives the rollback.
				restored := make([]model.Job, 0, len(displaced))
				for jid, ord := range displaced {
					j, err := s.board.Get(ctx, jid)
					if err != nil {
						continue
					}
					j.Order = ord
					restored = append(restored, j)
				}
				s.board.Restore(ctx, restored...)
			}, nil
		},
		Call: func(ctx context.Context) (any, error) {
			if noOp {
				return snapshot, nil
			}
			return s.authority.ReorderJob(ctx, remote.ReorderRequest{
				JobID:     id,
				FromOrder: fromOrder,
				ToOrder:   target,
			})
		},
		Reconcile: func(ctx context.Context, result any) error {
			if noOp {
				return nil
			}
			authoritative, ok := result.(model.Job)
			if !ok {
				return fmt.Errorf("unexpected reorder result %T", result)
			}
			// Server wins for the moved job; the displaced neighbors'
			// speculative orders are promoted on top of their current
			// records.
			committed := make([]model.Job, 0, len(displaced))
			for jid := range displaced {
				if jid == id {
					continue
				}
				j, err := s.board.Get(ctx, jid)
				if err != nil {
					continue
				}
				committed = append(committed, j)
			}
			committed = append(committed, authoritative)
			s.board.Commit(ctx, committed...)
			s.persistJobs(ctx, committed)
			return nil
		},
	})
	if err != nil {
		return model.Job{}, err
	}
	return result.(model.Job), nil
}

// UpdateJob optimistically edits a job's descriptive fields and reconciles
// with the authority. Ordering is untouched; a failed call restores the
// exact previous record.
func (s *Service) UpdateJob(ctx context.Context, id, title, location string, tags []string) (model.Job, error) {
	if _, err := s.board.Get(ctx, id); err != nil {
		return model.Job{}, fmt.Errorf("job %q: %w", id, mutation.ErrNotFound)
	}

	result, err := s.coord.Mutate(ctx, id, mutation.Mutation{
		Apply: func(ctx context.Context) (mutation.Restore, error) {
			snapshot, err := s.board.Get(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("job %q: %w", id, mutation.ErrNotFound)
			}
			speculative := snapshot.Clone()
			speculative.Title = title
			speculative.Location = location
			speculative.Tags = tags
			speculative.UpdatedAt = s.clock()
			s.board.Publish(ctx, speculative)
			return func(ctx context.Context) {
				s.board.Restore(ctx, snapshot)
			}, nil
		},
		Call: func(ctx context.Context) (any, error) {
			return s.authority.UpdateJob(ctx, remote.UpdateJobRequest{
				JobID:    id,
				Title:    title,
				Location: location,
				Tags:     tags,
			})
		},
		Reconcile: func(ctx context.Context, result any) error {
			authoritative, ok := result.(model.Job)
			if !ok {
				return fmt.Errorf("unexpected update result %T", result)
			}
			s.board.Commit(ctx, authoritative)
			s.persistJobs(ctx, []model.Job{authoritative})
			return nil
		},
	})
	if err != nil {
		return model.Job{}, err
	}
	return result.(model.Job), nil
}

// ArchiveJob flags a job archived and renumbers the remaining board so
// the committed ordering stays dense. Archival is local; the job keeps
// its identity and may be restored later.
func (s *Service) ArchiveJob(ctx context.Context, id string) (model.Job, error) {
	job, err := s.board.Get(ctx, id)
	if err != nil {
		return model.Job{}, fmt.Errorf("job %q: %w", id, mutation.ErrNotFound)
	}
	if !job.Active() {
		return job, nil
	}

	rest := make([]model.Job, 0)
	for _, j := range s.board.Active(ctx) {
		if j.ID != id {
			rest = append(rest, j)
		}
	}
	renumbered := rank.Renumber(rest)

	job.Status = model.JobArchived
	job.UpdatedAt = s.clock()
	changed := append(renumbered, job)
	s.board.Commit(ctx, changed...)
	s.persistJobs(ctx, changed)
	metrics.UpdateBoardSize(s.board.ActiveCount(ctx))
	return job, nil
}

// RestoreJob brings an archived job back at the bottom of the board.
func (s *Service) RestoreJob(ctx context.Context, id string) (model.Job, error) {
	job, err := s.board.Get(ctx, id)
	if err != nil {
		return model.Job{}, fmt.Errorf("job %q: %w", id, mutation.ErrNotFound)
	}
	if job.Active() {
		return job, nil
	}

	job.Status = model.JobActive
	job.Order = s.board.ActiveCount(ctx) + 1
	job.UpdatedAt = s.clock()
	s.board.Commit(ctx, job)
	s.persistJobs(ctx, []model.Job{job})
	metrics.UpdateBoardSize(s.board.ActiveCount(ctx))
	return job, nil
}

// CreateCandidate registers a candidate at the applied stage with the
// conventional initial history entry.
func (s *Service) CreateCandidate(ctx context.Context, name, email, jobID string) (model.Candidate, error) {
	now := s.clock()
	cand := model.Candidate{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		JobID:     jobID,
		Stage:     model.StageApplied,
		AppliedAt: now,
		UpdatedAt: now,
	}
	s.candidates.Commit(ctx, cand)
	s.persistCandidate(ctx, cand)
	if _, err := s.history.AppendStageChange(ctx, cand.ID, model.StageApplied); err != nil {
		s.logger.Warn(ctx, "initial history write-through failed", logger.String("candidateID", cand.ID), logger.Error(err))
	}
	metrics.RecordHistoryAppend(string(model.EntryStageChange))
	metrics.UpdateCandidateCount(s.candidates.Count(ctx))
	return cand, nil
}

// AdvanceCandidate validates and optimistically applies a stage change.
// The returned decision carries any non-blocking advisory (e.g. a stage
// skip) for the caller to surface. Same-stage requests are silent no-ops.
// A history entry is appended only after the mutation commits.
func (s *Service) AdvanceCandidate(ctx context.Context, id string, to model.Stage) (model.Candidate, stage.Decision, error) {
	cand, err := s.candidates.Get(ctx, id)
	if err != nil {
		return model.Candidate{}, stage.Decision{}, fmt.Errorf("candidate %q: %w", id, mutation.ErrNotFound)
	}

	decision := stage.Validate(cand.Stage, to)
	if decision.NoOp {
		return cand, decision, nil
	}
	if !decision.Valid {
		return cand, decision, fmt.Errorf("stage %s -> %s: %w", cand.Stage, to, mutation.ErrValidation)
	}

	result, err := s.coord.Mutate(ctx, id, mutation.Mutation{
		Apply: func(ctx context.Context) (mutation.Restore, error) {
			snapshot, err := s.candidates.Get(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("candidate %q: %w", id, mutation.ErrNotFound)
			}
			speculative := snapshot
			speculative.Stage = to
			speculative.UpdatedAt = s.clock()
			s.candidates.Publish(ctx, speculative)
			return func(ctx context.Context) {
				s.candidates.Restore(ctx, snapshot)
			}, nil
		},
		Call: func(ctx context.Context) (any, error) {
			return s.authority.UpdateStage(ctx, remote.StageRequest{CandidateID: id, Stage: to})
		},
		Reconcile: func(ctx context.Context, result any) error {
			authoritative, ok := result.(model.Candidate)
			if !ok {
				return fmt.Errorf("unexpected stage result %T", result)
			}
			s.candidates.Commit(ctx, authoritative)
			s.persistCandidate(ctx, authoritative)
			return nil
		},
	})
	if err != nil {
		return model.Candidate{}, decision, err
	}

	committed := result.(model.Candidate)
	if _, err := s.history.AppendStageChange(ctx, id, committed.Stage); err != nil {
		s.logger.Warn(ctx, "history write-through failed", logger.String("candidateID", id), logger.Error(err))
	}
	metrics.RecordHistoryAppend(string(model.EntryStageChange))
	return committed, decision, nil
}

// AddNote appends a free-text note to a candidate's history. Notes are
// accepted unconditionally and never touch the stage machine.
func (s *Service) AddNote(ctx context.Context, id, text string) (model.HistoryEntry, error) {
	if _, err := s.candidates.Get(ctx, id); err != nil {
		return model.HistoryEntry{}, fmt.Errorf("candidate %q: %w", id, mutation.ErrNotFound)
	}
	entry, err := s.history.AppendNote(ctx, id, text)
	if err != nil {
		s.logger.Warn(ctx, "note write-through failed", logger.String("candidateID", id), logger.Error(err))
	}
	metrics.RecordHistoryAppend(string(model.EntryNote))
	return entry, nil
}

// RefreshJob refetches a job from the authority and installs it as the
// committed baseline. This is the refetch half of refetch-then-retry
// after a conflict.
func (s *Service) RefreshJob(ctx context.Context, id string) (model.Job, error) {
	job, err := s.authority.FetchJob(ctx, id)
	if err != nil {
		return model.Job{}, err
	}
	s.board.Commit(ctx, job)
	s.persistJobs(ctx, []model.Job{job})
	return job, nil
}

// RefreshCandidate refetches a candidate from the authority.
func (s *Service) RefreshCandidate(ctx context.Context, id string) (model.Candidate, error) {
	cand, err := s.authority.FetchCandidate(ctx, id)
	if err != nil {
		return model.Candidate{}, err
	}
	s.candidates.Commit(ctx, cand)
	s.persistCandidate(ctx, cand)
	return cand, nil
}

// Board returns the active jobs in board order.
func (s *Service) Board(ctx context.Context) []model.Job {
	return s.board.Active(ctx)
}

// Jobs returns every job, archived included.
func (s *Service) Jobs(ctx context.Context) []model.Job {
	return s.board.All(ctx)
}

// Job returns one job.
func (s *Service) Job(ctx context.Context, id string) (model.Job, error) {
	job, err := s.board.Get(ctx, id)
	if err != nil {
		return model.Job{}, fmt.Errorf("job %q: %w", id, mutation.ErrNotFound)
	}
	return job, nil
}

// Candidates returns every tracked candidate.
func (s *Service) Candidates(ctx context.Context) []model.Candidate {
	return s.candidates.All(ctx)
}

// Candidate returns one candidate.
func (s *Service) Candidate(ctx context.Context, id string) (model.Candidate, error) {
	cand, err := s.candidates.Get(ctx, id)
	if err != nil {
		return model.Candidate{}, fmt.Errorf("candidate %q: %w", id, mutation.ErrNotFound)
	}
	return cand, nil
}

// History returns a candidate's pipeline history in timestamp order.
func (s *Service) History(ctx context.Context, id string) []model.HistoryEntry {
	return s.history.Read(ctx, id)
}

// SubscribeBoard registers a change feed over the board store.
func (s *Service) SubscribeBoard(ctx context.Context) (<-chan board.Change, func()) {
	return s.board.Subscribe(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	ctx := context.Background()
	stats := map[string]interface{}{
		"started": s.started,
	}
	if s.started {
		stats["boardSize"] = s.board.ActiveCount(ctx)
		stats["totalJobs"] = s.board.Count(ctx)
		stats["candidates"] = s.candidates.Count(ctx)
		stats["mutationsInFlight"] = s.coord.InFlight()
		stats["journalQueue"] = s.journal.Len()

		metrics.UpdateBoardSize(s.board.ActiveCount(ctx))
		metrics.UpdateCandidateCount(s.candidates.Count(ctx))
		metrics.UpdateJournalQueueSize(s.journal.Len())
	}
	return stats
}

// persistJobs queues job documents for background write-through.
func (s *Service) persistJobs(ctx context.Context, jobs []model.Job) {
	for _, j := range jobs {
		payload, err := json.Marshal(j)
		if err != nil {
			s.logger.Error(ctx, "encode job failed", logger.String("jobID", j.ID), logger.Error(err))
			continue
		}
		s.journal.Enqueue(ctx, journal.Record{Key: jobKeyPrefix + j.ID, Value: payload})
	}
}

// persistCandidate queues a candidate document for background write-through.
func (s *Service) persistCandidate(ctx context.Context, c model.Candidate) {
	payload, err := json.Marshal(c)
	if err != nil {
		s.logger.Error(ctx, "encode candidate failed", logger.String("candidateID", c.ID), logger.Error(err))
		return
	}
	s.journal.Enqueue(ctx, journal.Record{Key: candidateKeyPrefix + c.ID, Value: payload})
}

// load seeds the stores from the document store at startup.
func (s *Service) load(ctx context.Context) error {
	jobs, err := s.docs.List(ctx, jobKeyPrefix)
	if err != nil {
		return err
	}
	for key, payload := range jobs {
		var j model.Job
		if err := json.Unmarshal(payload, &j); err != nil {
			s.logger.Warn(ctx, "skipping bad job document", logger.String("key", key), logger.Error(err))
			continue
		}
		s.board.Commit(ctx, j)
	}

	cands, err := s.docs.List(ctx, candidateKeyPrefix)
	if err != nil {
		return err
	}
	for key, payload := range cands {
		var c model.Candidate
		if err := json.Unmarshal(payload, &c); err != nil {
			s.logger.Warn(ctx, "skipping bad candidate document", logger.String("key", key), logger.Error(err))
			continue
		}
		s.candidates.Commit(ctx, c)
	}

	entries, err := s.docs.List(ctx, historyKeyPrefix)
	if err != nil {
		return err
	}
	byCandidate := make(map[string][]model.HistoryEntry)
	for key, payload := range entries {
		candidateID := historyOwner(key)
		if candidateID == "" {
			continue
		}
		var e model.HistoryEntry
		if err := json.Unmarshal(payload, &e); err != nil {
			s.logger.Warn(ctx, "skipping bad history document", logger.String("key", key), logger.Error(err))
			continue
		}
		byCandidate[candidateID] = append(byCandidate[candidateID], e)
	}
	for candidateID, list := range byCandidate {
		sort.Slice(list, func(i, j int) bool { return list[i].Seq < list[j].Seq })
		s.history.Seed(ctx, candidateID, list)
	}
	return nil
}

// historyOwner extracts the candidate id from a "hist/<id>/<seq>" key.
func historyOwner(key string) string {
	rest := strings.TrimPrefix(key, historyKeyPrefix)
	idx := strings.IndexByte(rest, '/')
	if idx <= 0 {
		return ""
	}
	return rest[:idx]
}

// journalSink adapts the journal to the history write-through interface.
type journalSink struct {
	journal *journal.Journal
}

func (s *journalSink) Append(ctx context.Context, entityID string, e model.HistoryEntry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}
	key := fmt.Sprintf("%s%s/%012d", historyKeyPrefix, entityID, e.Seq)
	if !s.journal.Enqueue(ctx, journal.Record{Key: key, Value: payload}) {
		return ErrJournalFull
	}
	return nil
}
