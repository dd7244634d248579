// Package board holds the job table behind the hiring board.
//
// The store keeps one visible view per job: the committed baseline, or a
// published speculative state while a mutation is in flight. Only the
// coordinator's apply/commit/restore closures write; any number of
// readers may observe the transient speculative window. Consumers that
// need cross-component refresh subscribe explicitly; there is no ambient
// event bus and no package-level singleton.
package board

import (
	"context"
	"sort"
	"sync"

	"github.com/hireloop/hireloop/internal/domain/model"
)

// ChangeKind labels a board change notification.
type ChangeKind string

// Change kinds.
const (
	ChangePublished  ChangeKind = "published"
	ChangeCommitted  ChangeKind = "committed"
	ChangeRolledBack ChangeKind = "rolled_back"
)

// Change notifies subscribers that a set of jobs changed.
type Change struct {
	Kind   ChangeKind
	JobIDs []string
}

// Store is the job table. Constructor-injected wherever it is needed.
type Store struct {
	mu      sync.RWMutex
	jobs    map[string]model.Job
	rev     map[string]uint64
	subs    map[uint64]*subscriber
	nextSub uint64
	buffer  int
}

// New constructs an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		jobs:   make(map[string]model.Job),
		rev:    make(map[string]uint64),
		subs:   make(map[uint64]*subscriber),
		buffer: defaultSubscriberBuffer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the visible state of one job.
func (s *Store) Get(ctx context.Context, id string) (model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return model.Job{}, ErrNotFound
	}
	return j.Clone(), nil
}

// All returns every job, active and archived, sorted by order.
func (s *Store) All(ctx context.Context) []model.Job {
	s.mu.RLock()
	out := make([]model.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j.Clone())
	}
	s.mu.RUnlock()
	sortByOrder(out)
	return out
}

// Active returns the jobs participating in the dense 1..N ordering,
// sorted by order. This is the collection snapshot reorders start from.
func (s *Store) Active(ctx context.Context) []model.Job {
	s.mu.RLock()
	out := make([]model.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if j.Active() {
			out = append(out, j.Clone())
		}
	}
	s.mu.RUnlock()
	sortByOrder(out)
	return out
}

// Count returns the number of jobs tracked, active and archived.
func (s *Store) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// ActiveCount returns the number of jobs in the board ordering.
func (s *Store) ActiveCount(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, j := range s.jobs {
		if j.Active() {
			n++
		}
	}
	return n
}

// Revision returns the per-entity write counter for id. Zero means the
// job has never been written.
func (s *Store) Revision(ctx context.Context, id string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev[id]
}

// Publish makes speculative states visible before the remote call
// resolves. Readers between here and the matching Commit or Restore see
// the transient optimistic view.
func (s *Store) Publish(ctx context.Context, jobs ...model.Job) {
	s.write(jobs, ChangePublished)
}

// Commit installs jobs as the new committed baseline.
func (s *Store) Commit(ctx context.Context, jobs ...model.Job) {
	s.write(jobs, ChangeCommitted)
}

// Restore reinstates snapshot states verbatim after a failed mutation.
func (s *Store) Restore(ctx context.Context, jobs ...model.Job) {
	s.write(jobs, ChangeRolledBack)
}

func (s *Store) write(jobs []model.Job, kind ChangeKind) {
	if len(jobs) == 0 {
		return
	}
	ids := make([]string, 0, len(jobs))
	s.mu.Lock()
	for _, j := range jobs {
		s.jobs[j.ID] = j.Clone()
		s.rev[j.ID]++
		ids = append(ids, j.ID)
	}
	subs := make([]*subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	change := Change{Kind: kind, JobIDs: ids}
	for _, sub := range subs {
		sub.send(change)
	}
}

// subscriber owns its channel lifecycle. send and close are serialized on
// the subscriber's own mutex, so a cancel racing an in-flight write can
// never close the channel between the snapshot and the send.
type subscriber struct {
	mu     sync.Mutex
	ch     chan Change
	closed bool
}

func (sub *subscriber) send(c Change) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	// Never block a write on a slow subscriber.
	select {
	case sub.ch <- c:
	default:
	}
}

func (sub *subscriber) close() {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if !sub.closed {
		sub.closed = true
		close(sub.ch)
	}
}

// Subscribe registers a change feed. The returned cancel func must be
// called when the consumer goes away; it closes the channel.
func (s *Store) Subscribe(ctx context.Context) (<-chan Change, func()) {
	sub := &subscriber{ch: make(chan Change, s.buffer)}
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs[id] = sub
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
		sub.close()
	}
	return sub.ch, cancel
}

func sortByOrder(jobs []model.Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].Order != jobs[j].Order {
			return jobs[i].Order < jobs[j].Order
		}
		return jobs[i].ID < jobs[j].ID
	})
}
