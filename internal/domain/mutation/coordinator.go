// Package mutation orchestrates optimistic apply/commit/rollback against
// the remote authority.
//
// The protocol for one entity id:
//  1. Reject with ErrBusy if a mutation is already in flight for the id.
//  2. Apply publishes the speculative state computed from the committed
//     baseline and hands back a restore closure over the snapshot.
//  3. Call invokes the remote authority.
//  4. On success, Reconcile merges the authoritative result over the
//     speculative state (server wins) and commits it as the new baseline.
//  5. On any failure after Apply, the restore closure reinstates the
//     baseline exactly and the classified error propagates to the caller.
//
// Readers of the entity store may observe the speculative state between
// steps 2 and 4/5; that window is the point of the exercise.
package mutation

import (
	"context"
	"fmt"

	"github.com/hireloop/hireloop/pkg/logger"
	"github.com/hireloop/hireloop/pkg/metrics"
)

// Restore reinstates the committed baseline captured before Apply ran.
type Restore func(ctx context.Context)

// Mutation bundles the three steps of one optimistic mutation. The store
// closures own the snapshot; the coordinator never inspects entity state.
type Mutation struct {
	// Apply snapshots the committed baseline, publishes the speculative
	// state, and returns the rollback closure. If Apply fails nothing may
	// have been published and no rollback happens.
	Apply func(ctx context.Context) (Restore, error)

	// Call invokes the remote authority and returns its result.
	Call func(ctx context.Context) (any, error)

	// Reconcile merges the authoritative result into the speculative
	// state and commits it as the new baseline.
	Reconcile func(ctx context.Context, result any) error
}

// Coordinator serializes mutations per entity id and runs the protocol.
// Mutations against distinct ids proceed fully independently.
type Coordinator struct {
	inflight *inflight
	logger   logger.Logger
}

// Option applies a configuration option to the Coordinator.
type Option func(*Coordinator)

// WithLogger sets a custom logger for the coordinator.
func WithLogger(l logger.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// New constructs a Coordinator.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{inflight: newInflight()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mutate runs one optimistic mutation for entityID and returns the
// authoritative result on commit. Any error after the speculative apply
// means the entity was rolled back to its pre-mutation state.
func (c *Coordinator) Mutate(ctx context.Context, entityID string, m Mutation) (any, error) {
	if !c.inflight.acquire(entityID) {
		metrics.RecordMutationBusy()
		return nil, fmt.Errorf("entity %q: %w", entityID, ErrBusy)
	}
	defer c.inflight.release(entityID)
	metrics.RecordMutationStarted()

	restore, err := m.Apply(ctx)
	if err != nil {
		return nil, err
	}

	result, err := m.Call(ctx)
	if err != nil {
		restore(ctx)
		metrics.RecordMutationRolledBack()
		c.debug(ctx, "mutation rolled back", entityID, err)
		return nil, err
	}

	if err := m.Reconcile(ctx, result); err != nil {
		restore(ctx)
		metrics.RecordMutationRolledBack()
		c.debug(ctx, "reconcile failed, rolled back", entityID, err)
		return nil, err
	}

	metrics.RecordMutationCommitted()
	return result, nil
}

// InFlight returns the number of mutations currently in flight.
func (c *Coordinator) InFlight() int {
	return c.inflight.len()
}

func (c *Coordinator) debug(ctx context.Context, msg, entityID string, err error) {
	if c.logger == nil {
		return
	}
	c.logger.Debug(ctx, msg, logger.String("entityID", entityID), logger.Error(err))
}
