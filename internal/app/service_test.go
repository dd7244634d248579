package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	service "github.com/hireloop/hireloop/internal/app"

	"github.com/hireloop/hireloop/internal/adapters/remote"
	"github.com/hireloop/hireloop/internal/adapters/repository"
	"github.com/hireloop/hireloop/internal/domain/board"
	"github.com/hireloop/hireloop/internal/domain/model"
	"github.com/hireloop/hireloop/internal/domain/mutation"
	"github.com/hireloop/hireloop/internal/domain/stage"
	"github.com/hireloop/hireloop/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeAuthority confirms every mutation unless failWith is set. A nil
// block channel makes calls resolve immediately.
type fakeAuthority struct {
	mu        sync.Mutex
	failWith  error
	block     chan struct{}
	reorders  []remote.ReorderRequest
	stages    []remote.StageRequest
	jobOrders map[string]int
}

// orderFor is the authority-side order for a job, for calls that do not
// carry one. Defaults to 1.
func (a *fakeAuthority) orderFor(id string) int {
	if n, ok := a.jobOrders[id]; ok {
		return n
	}
	return 1
}

func (a *fakeAuthority) ReorderJob(ctx context.Context, req remote.ReorderRequest) (model.Job, error) {
	a.mu.Lock()
	a.reorders = append(a.reorders, req)
	fail, block := a.failWith, a.block
	a.mu.Unlock()
	if block != nil {
		<-block
	}
	if fail != nil {
		return model.Job{}, fail
	}
	return model.Job{ID: req.JobID, Order: req.ToOrder, Status: model.JobActive, Title: "confirmed"}, nil
}

func (a *fakeAuthority) UpdateJob(ctx context.Context, req remote.UpdateJobRequest) (model.Job, error) {
	a.mu.Lock()
	fail := a.failWith
	a.mu.Unlock()
	if fail != nil {
		return model.Job{}, fail
	}
	return model.Job{ID: req.JobID, Title: req.Title, Location: req.Location, Tags: req.Tags, Order: a.orderFor(req.JobID), Status: model.JobActive}, nil
}

func (a *fakeAuthority) UpdateStage(ctx context.Context, req remote.StageRequest) (model.Candidate, error) {
	a.mu.Lock()
	a.stages = append(a.stages, req)
	fail, block := a.failWith, a.block
	a.mu.Unlock()
	if block != nil {
		<-block
	}
	if fail != nil {
		return model.Candidate{}, fail
	}
	return model.Candidate{ID: req.CandidateID, Stage: req.Stage, Name: "confirmed"}, nil
}

func (a *fakeAuthority) FetchJob(ctx context.Context, id string) (model.Job, error) {
	return model.Job{ID: id, Order: 1, Status: model.JobActive, Title: "fetched"}, nil
}

func (a *fakeAuthority) FetchCandidate(ctx context.Context, id string) (model.Candidate, error) {
	return model.Candidate{ID: id, Stage: model.StageScreen, Name: "fetched"}, nil
}

func (a *fakeAuthority) setFailure(err error) {
	a.mu.Lock()
	a.failWith = err
	a.mu.Unlock()
}

// waitForReorders spins until the authority has seen n reorder calls.
func waitForReorders(a *fakeAuthority, n int) {
	for {
		a.mu.Lock()
		seen := len(a.reorders)
		a.mu.Unlock()
		if seen >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
}

// keepOpen shields a shared store from Service.Stop.
type keepOpen struct {
	repository.DocStore
}

func (k *keepOpen) Close() error { return nil }

func newService(t *testing.T, authority remote.Authority, opts ...service.Option) *service.Service {
	t.Helper()
	if err := logger.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}
	svc := service.New(append([]service.Option{service.WithAuthority(authority)}, opts...)...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("service start: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func seedBoard(ctx context.Context, t *testing.T, svc *service.Service, n int) []model.Job {
	t.Helper()
	jobs := make([]model.Job, 0, n)
	for i := 1; i <= n; i++ {
		j, err := svc.CreateJob(ctx, fmt.Sprintf("Role %d", i), "", nil, 0)
		if err != nil {
			t.Fatalf("seed job %d: %v", i, err)
		}
		jobs = append(jobs, j)
	}
	return jobs
}

func boardOrders(ctx context.Context, svc *service.Service) map[string]int {
	out := make(map[string]int)
	for _, j := range svc.Board(ctx) {
		out[j.ID] = j.Order
	}
	return out
}

func TestReorderJobCommit(t *testing.T) {
	Convey("Given five jobs ranked 1-5", t, func() {
		ctx := context.Background()
		authority := &fakeAuthority{}
		svc := newService(t, authority)
		jobs := seedBoard(ctx, t, svc, 5)

		Convey("When the job at order 3 is moved to order 1", func() {
			moved, err := svc.ReorderJob(ctx, jobs[2].ID, 1)
			So(err, ShouldBeNil)

			Convey("Then the board renumbers densely around it", func() {
				So(moved.Order, ShouldEqual, 1)
				got := boardOrders(ctx, svc)
				So(got[jobs[0].ID], ShouldEqual, 2)
				So(got[jobs[1].ID], ShouldEqual, 3)
				So(got[jobs[3].ID], ShouldEqual, 4)
				So(got[jobs[4].ID], ShouldEqual, 5)
			})

			Convey("And the authority saw the move with both orders", func() {
				So(authority.reorders, ShouldHaveLength, 1)
				So(authority.reorders[0].FromOrder, ShouldEqual, 3)
				So(authority.reorders[0].ToOrder, ShouldEqual, 1)
			})

			Convey("And the authoritative job became the committed baseline", func() {
				j, err := svc.Job(ctx, jobs[2].ID)
				So(err, ShouldBeNil)
				So(j.Title, ShouldEqual, "confirmed")
			})
		})

		Convey("When a job is moved onto its current order", func() {
			_, err := svc.ReorderJob(ctx, jobs[1].ID, 2)

			Convey("Then it is a silent no-op that never reaches the authority", func() {
				So(err, ShouldBeNil)
				So(authority.reorders, ShouldBeEmpty)
			})
		})

		Convey("When the target order is out of range", func() {
			moved, err := svc.ReorderJob(ctx, jobs[0].ID, 99)

			Convey("Then it clamps to the bottom of the board", func() {
				So(err, ShouldBeNil)
				So(moved.Order, ShouldEqual, 5)
			})
		})

		Convey("When the job does not exist", func() {
			_, err := svc.ReorderJob(ctx, "ghost", 1)
			So(err, ShouldWrap, mutation.ErrNotFound)
		})
	})
}

func TestReorderJobRollback(t *testing.T) {
	Convey("Given five jobs and an authority that reports a conflict", t, func() {
		ctx := context.Background()
		authority := &fakeAuthority{}
		svc := newService(t, authority)
		jobs := seedBoard(ctx, t, svc, 5)
		authority.setFailure(fmt.Errorf("board diverged: %w", mutation.ErrConflict))

		before := svc.Board(ctx)

		Convey("When a reorder is attempted", func() {
			_, err := svc.ReorderJob(ctx, jobs[2].ID, 1)

			Convey("Then the error surfaces as a conflict", func() {
				So(err, ShouldWrap, mutation.ErrConflict)
			})

			Convey("And the board is exactly its pre-mutation state", func() {
				So(svc.Board(ctx), ShouldResemble, before)
			})

			Convey("And refreshing the job installs the authority's view", func() {
				refreshed, err := svc.RefreshJob(ctx, jobs[2].ID)
				So(err, ShouldBeNil)
				So(refreshed.Title, ShouldEqual, "fetched")
			})
		})
	})
}

func TestReorderJobBusy(t *testing.T) {
	Convey("Given a reorder blocked inside its remote call", t, func() {
		ctx := context.Background()
		authority := &fakeAuthority{block: make(chan struct{})}
		svc := newService(t, authority)
		jobs := seedBoard(ctx, t, svc, 3)

		done := make(chan error, 1)
		go func() {
			_, err := svc.ReorderJob(ctx, jobs[0].ID, 3)
			done <- err
		}()
		waitForReorders(authority, 1)

		Convey("When a second reorder targets the same job", func() {
			_, err := svc.ReorderJob(ctx, jobs[0].ID, 2)

			Convey("Then it is rejected with Busy rather than queued", func() {
				So(err, ShouldWrap, mutation.ErrBusy)
			})
		})

		Convey("When a same-order request races the in-flight move", func() {
			_, err := svc.ReorderJob(ctx, jobs[0].ID, 1)

			Convey("Then the no-op decision waits its turn behind the guard", func() {
				So(err, ShouldWrap, mutation.ErrBusy)
			})
		})

		close(authority.block)
		So(<-done, ShouldBeNil)
	})
}

func TestRollbackPreservesIndependentCommits(t *testing.T) {
	Convey("Given a reorder blocked inside its remote call", t, func() {
		ctx := context.Background()
		authority := &fakeAuthority{block: make(chan struct{}), jobOrders: map[string]int{}}
		svc := newService(t, authority)
		jobs := seedBoard(ctx, t, svc, 3)
		authority.jobOrders[jobs[1].ID] = 2

		done := make(chan error, 1)
		go func() {
			_, err := svc.ReorderJob(ctx, jobs[0].ID, 3)
			done <- err
		}()
		waitForReorders(authority, 1)

		Convey("When another job commits an edit and the reorder then fails", func() {
			updated, err := svc.UpdateJob(ctx, jobs[1].ID, "Staff Engineer", "Berlin", nil)
			So(err, ShouldBeNil)
			So(updated.Title, ShouldEqual, "Staff Engineer")

			authority.setFailure(fmt.Errorf("board diverged: %w", mutation.ErrConflict))
			close(authority.block)
			So(<-done, ShouldWrap, mutation.ErrConflict)

			Convey("Then the rollback restores orders without clobbering the edit", func() {
				edited, err := svc.Job(ctx, jobs[1].ID)
				So(err, ShouldBeNil)
				So(edited.Title, ShouldEqual, "Staff Engineer")
				So(edited.Order, ShouldEqual, 2)

				moved, err := svc.Job(ctx, jobs[0].ID)
				So(err, ShouldBeNil)
				So(moved.Order, ShouldEqual, 1)

				got := boardOrders(ctx, svc)
				So(got[jobs[2].ID], ShouldEqual, 3)
			})
		})
	})
}

func TestCandidateLifecycle(t *testing.T) {
	Convey("Given a freshly applied candidate", t, func() {
		ctx := context.Background()
		authority := &fakeAuthority{}
		svc := newService(t, authority)
		cand, err := svc.CreateCandidate(ctx, "Ada", "ada@example.com", "")
		So(err, ShouldBeNil)
		So(cand.Stage, ShouldEqual, model.StageApplied)

		Convey("Then creation seeds one history entry", func() {
			entries := svc.History(ctx, cand.ID)
			So(entries, ShouldHaveLength, 1)
			So(entries[0].Stage, ShouldEqual, model.StageApplied)
		})

		Convey("When the candidate advances to screen", func() {
			updated, decision, err := svc.AdvanceCandidate(ctx, cand.ID, model.StageScreen)

			Convey("Then the committed stage is the authority's", func() {
				So(err, ShouldBeNil)
				So(decision.Advisory, ShouldBeEmpty)
				So(updated.Stage, ShouldEqual, model.StageScreen)
			})

			Convey("And a stage change lands in the history", func() {
				entries := svc.History(ctx, cand.ID)
				So(entries, ShouldHaveLength, 2)
				So(entries[1].Stage, ShouldEqual, model.StageScreen)
			})
		})

		Convey("When the candidate jumps straight to offer", func() {
			_, decision, err := svc.AdvanceCandidate(ctx, cand.ID, model.StageOffer)

			Convey("Then it succeeds with the skip advisory", func() {
				So(err, ShouldBeNil)
				So(decision.Advisory, ShouldEqual, stage.AdvisorySkip)
			})
		})

		Convey("When the same stage is requested again", func() {
			_, decision, err := svc.AdvanceCandidate(ctx, cand.ID, model.StageApplied)

			Convey("Then it is a silent no-op with no history entry", func() {
				So(err, ShouldBeNil)
				So(decision.NoOp, ShouldBeTrue)
				So(svc.History(ctx, cand.ID), ShouldHaveLength, 1)
				So(authority.stages, ShouldBeEmpty)
			})
		})

		Convey("When a backward move is requested after advancing", func() {
			_, _, err := svc.AdvanceCandidate(ctx, cand.ID, model.StageTech)
			So(err, ShouldBeNil)
			_, _, err = svc.AdvanceCandidate(ctx, cand.ID, model.StageScreen)

			Convey("Then it is rejected and the stage stands", func() {
				So(err, ShouldWrap, mutation.ErrValidation)
				got, _ := svc.Candidate(ctx, cand.ID)
				So(got.Stage, ShouldEqual, model.StageTech)
				So(svc.History(ctx, cand.ID), ShouldHaveLength, 2)
			})
		})

		Convey("When the candidate is rejected at applied", func() {
			_, _, err := svc.AdvanceCandidate(ctx, cand.ID, model.StageRejected)
			So(err, ShouldBeNil)

			Convey("Then rejected absorbs every later transition", func() {
				_, _, err := svc.AdvanceCandidate(ctx, cand.ID, model.StageHired)
				So(err, ShouldWrap, mutation.ErrValidation)
			})
		})

		Convey("When the remote stage update fails", func() {
			authority.setFailure(fmt.Errorf("offline: %w", mutation.ErrNetwork))
			_, _, err := svc.AdvanceCandidate(ctx, cand.ID, model.StageScreen)

			Convey("Then the stage rolls back and no history entry appears", func() {
				So(err, ShouldWrap, mutation.ErrNetwork)
				got, _ := svc.Candidate(ctx, cand.ID)
				So(got.Stage, ShouldEqual, model.StageApplied)
				So(svc.History(ctx, cand.ID), ShouldHaveLength, 1)
			})
		})
	})
}

func TestHiredIsAbsorbing(t *testing.T) {
	Convey("Given a candidate walked to hired", t, func() {
		ctx := context.Background()
		authority := &fakeAuthority{}
		svc := newService(t, authority)
		cand, _ := svc.CreateCandidate(ctx, "Grace", "", "")
		for _, st := range []model.Stage{model.StageScreen, model.StageTech, model.StageOffer, model.StageHired} {
			_, _, err := svc.AdvanceCandidate(ctx, cand.ID, st)
			So(err, ShouldBeNil)
		}

		Convey("When a rejection is attempted", func() {
			_, _, err := svc.AdvanceCandidate(ctx, cand.ID, model.StageRejected)

			Convey("Then hired stands", func() {
				So(err, ShouldWrap, mutation.ErrValidation)
				got, _ := svc.Candidate(ctx, cand.ID)
				So(got.Stage, ShouldEqual, model.StageHired)
			})
		})
	})
}

func TestNotes(t *testing.T) {
	Convey("Given a rejected candidate", t, func() {
		ctx := context.Background()
		authority := &fakeAuthority{}
		svc := newService(t, authority)
		cand, _ := svc.CreateCandidate(ctx, "Lin", "", "")
		_, _, err := svc.AdvanceCandidate(ctx, cand.ID, model.StageRejected)
		So(err, ShouldBeNil)

		Convey("When a note is added", func() {
			entry, err := svc.AddNote(ctx, cand.ID, "reapply next cycle")

			Convey("Then it is accepted regardless of the stage machine", func() {
				So(err, ShouldBeNil)
				So(entry.Kind, ShouldEqual, model.EntryNote)
				entries := svc.History(ctx, cand.ID)
				So(entries[len(entries)-1].Text, ShouldEqual, "reapply next cycle")
			})
		})

		Convey("When a note targets an unknown candidate", func() {
			_, err := svc.AddNote(ctx, "ghost", "hello")
			So(err, ShouldWrap, mutation.ErrNotFound)
		})
	})
}

func TestUpdateJob(t *testing.T) {
	Convey("Given one job on the board", t, func() {
		ctx := context.Background()
		authority := &fakeAuthority{}
		svc := newService(t, authority)
		jobs := seedBoard(ctx, t, svc, 1)

		Convey("When its fields are edited", func() {
			updated, err := svc.UpdateJob(ctx, jobs[0].ID, "Staff Engineer", "Berlin", []string{"go"})

			Convey("Then the authoritative record is committed", func() {
				So(err, ShouldBeNil)
				So(updated.Title, ShouldEqual, "Staff Engineer")
				So(updated.Location, ShouldEqual, "Berlin")
				So(updated.Order, ShouldEqual, 1)
			})
		})

		Convey("When the authority rejects the edit", func() {
			authority.setFailure(fmt.Errorf("title taken: %w", mutation.ErrValidation))
			_, err := svc.UpdateJob(ctx, jobs[0].ID, "Staff Engineer", "", nil)

			Convey("Then the previous record is restored exactly", func() {
				So(err, ShouldWrap, mutation.ErrValidation)
				got, _ := svc.Job(ctx, jobs[0].ID)
				So(got.Title, ShouldEqual, jobs[0].Title)
			})
		})

		Convey("When the job does not exist", func() {
			_, err := svc.UpdateJob(ctx, "ghost", "X", "", nil)
			So(err, ShouldWrap, mutation.ErrNotFound)
		})
	})
}

func TestArchiveRenumbers(t *testing.T) {
	Convey("Given four active jobs", t, func() {
		ctx := context.Background()
		svc := newService(t, &fakeAuthority{})
		jobs := seedBoard(ctx, t, svc, 4)

		Convey("When the job at order 2 is archived", func() {
			archived, err := svc.ArchiveJob(ctx, jobs[1].ID)
			So(err, ShouldBeNil)
			So(archived.Status, ShouldEqual, model.JobArchived)

			Convey("Then the remaining board is dense again", func() {
				got := boardOrders(ctx, svc)
				So(got, ShouldNotContainKey, jobs[1].ID)
				So(got[jobs[0].ID], ShouldEqual, 1)
				So(got[jobs[2].ID], ShouldEqual, 2)
				So(got[jobs[3].ID], ShouldEqual, 3)
			})

			Convey("And restoring appends it at the bottom", func() {
				restored, err := svc.RestoreJob(ctx, jobs[1].ID)
				So(err, ShouldBeNil)
				So(restored.Order, ShouldEqual, 4)
				So(restored.Status, ShouldEqual, model.JobActive)
			})
		})
	})
}

func TestCreateJobAtOrder(t *testing.T) {
	Convey("Given three active jobs", t, func() {
		ctx := context.Background()
		svc := newService(t, &fakeAuthority{})
		jobs := seedBoard(ctx, t, svc, 3)

		Convey("When a job is created at order 2", func() {
			created, err := svc.CreateJob(ctx, "Inserted", "", nil, 2)
			So(err, ShouldBeNil)

			Convey("Then it lands at 2 and the tail shifts down", func() {
				So(created.Order, ShouldEqual, 2)
				got := boardOrders(ctx, svc)
				So(got[jobs[0].ID], ShouldEqual, 1)
				So(got[jobs[1].ID], ShouldEqual, 3)
				So(got[jobs[2].ID], ShouldEqual, 4)
			})
		})
	})
}

func TestPersistenceRoundTrip(t *testing.T) {
	Convey("Given a service over a shared document store", t, func() {
		ctx := context.Background()
		docs := repository.NewMemStore()
		authority := &fakeAuthority{}

		// The store outlives the first service; stopping it must only
		// drain the journal, not close the shared backend.
		svc := newService(t, authority, service.WithDocStore(&keepOpen{docs}))
		jobs := seedBoard(ctx, t, svc, 2)
		cand, _ := svc.CreateCandidate(ctx, "Mara", "", jobs[0].ID)
		_, _, err := svc.AdvanceCandidate(ctx, cand.ID, model.StageScreen)
		So(err, ShouldBeNil)
		svc.Stop()

		Convey("When a fresh service starts on the same store", func() {
			reborn := service.New(service.WithAuthority(authority), service.WithDocStore(docs))
			So(reborn.Start(ctx), ShouldBeNil)

			Convey("Then jobs, candidates and history come back", func() {
				So(reborn.Board(ctx), ShouldHaveLength, 2)
				got, err := reborn.Candidate(ctx, cand.ID)
				So(err, ShouldBeNil)
				So(got.Stage, ShouldEqual, model.StageScreen)
				So(reborn.History(ctx, cand.ID), ShouldHaveLength, 2)
			})
		})
	})
}

func TestBoardSubscription(t *testing.T) {
	Convey("Given a subscriber on the board feed", t, func() {
		ctx := context.Background()
		svc := newService(t, &fakeAuthority{})
		jobs := seedBoard(ctx, t, svc, 3)

		ch, cancel := svc.SubscribeBoard(ctx)
		defer cancel()

		Convey("When a reorder commits", func() {
			_, err := svc.ReorderJob(ctx, jobs[0].ID, 3)
			So(err, ShouldBeNil)

			Convey("Then the feed carries the speculative publish then the commit", func() {
				first := <-ch
				So(first.Kind, ShouldEqual, board.ChangePublished)
				second := <-ch
				So(second.Kind, ShouldEqual, board.ChangeCommitted)
			})
		})
	})
}
