// Package rank implements the dense-ordering move used by the hiring board.
//
// The board keeps active jobs at orders 1..N with no gaps or duplicates.
// Reorder computes the renumbered board after a single move without
// mutating its input, so callers can keep the original slice as the
// rollback snapshot for an optimistic mutation.
package rank

import (
	"fmt"

	"github.com/hireloop/hireloop/internal/domain/model"
)

// Clamp bounds a requested target order into [1, n].
func Clamp(toOrder, n int) int {
	if toOrder < 1 {
		return 1
	}
	if toOrder > n {
		return n
	}
	return toOrder
}

// Reorder moves the job with the given id to toOrder and renumbers every
// job in between by one position. toOrder is clamped into [1, len(jobs)].
// The input is never mutated; the result is a fresh slice of copies in the
// same positional layout. Moving a job onto its current order returns
// copies with no order changes.
//
// Postcondition: the order values over the result are exactly 1..N, each
// appearing once, and the relative order of untouched jobs is preserved.
func Reorder(jobs []model.Job, id string, toOrder int) ([]model.Job, error) {
	fromOrder := 0
	for i := range jobs {
		if jobs[i].ID == id {
			fromOrder = jobs[i].Order
			break
		}
	}
	if fromOrder == 0 {
		return nil, fmt.Errorf("job %q: %w", id, ErrNotFound)
	}

	toOrder = Clamp(toOrder, len(jobs))

	out := make([]model.Job, len(jobs))
	for i := range jobs {
		out[i] = jobs[i].Clone()
	}
	if toOrder == fromOrder {
		return out, nil
	}

	for i := range out {
		switch {
		case out[i].ID == id:
			out[i].Order = toOrder
		case toOrder > fromOrder && out[i].Order > fromOrder && out[i].Order <= toOrder:
			// Moving down the board: everyone in (from, to] shifts up by one.
			out[i].Order--
		case toOrder < fromOrder && out[i].Order >= toOrder && out[i].Order < fromOrder:
			// Moving up the board: everyone in [to, from) shifts down by one.
			out[i].Order++
		}
	}
	return out, nil
}

// Renumber assigns a fresh dense 1..N ordering to jobs sorted by their
// current order, closing any gap left by an archived job. Input order
// ties are broken by slice position. The input is not mutated.
func Renumber(jobs []model.Job) []model.Job {
	out := make([]model.Job, len(jobs))
	for i := range jobs {
		out[i] = jobs[i].Clone()
	}
	// Insertion sort by current order; board sizes are small.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Order > out[j].Order; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	for i := range out {
		out[i].Order = i + 1
	}
	return out
}
