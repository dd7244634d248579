// Package stage encodes the hiring-pipeline transition rules.
//
// This table is the single source of truth for stage changes. The UI
// surfaces that used to each carry their own copy of these rules all go
// through Validate now.
package stage

import "github.com/hireloop/hireloop/internal/domain/model"

// AdvisorySkip marks a forward transition that jumps over at least one
// intermediate stage. It is a warning for the caller to surface, not an
// error; the transition still proceeds.
const AdvisorySkip = "skip"

// Decision is the outcome of validating a requested transition.
type Decision struct {
	// Valid reports whether the transition may reach the remote authority.
	Valid bool
	// NoOp is set when from == to. Callers treat this as a silent no-op,
	// never as an error, and must not mutate anything.
	NoOp bool
	// Advisory carries a non-blocking warning such as AdvisorySkip.
	Advisory string
}

// pathIndex orders the non-terminal path applied < screen < tech < offer < hired.
// Rejected is deliberately absent: it sits outside the ordering.
var pathIndex = map[model.Stage]int{
	model.StageApplied: 0,
	model.StageScreen:  1,
	model.StageTech:    2,
	model.StageOffer:   3,
	model.StageHired:   4,
}

// Known reports whether s is one of the six pipeline stages.
func Known(s model.Stage) bool {
	if s == model.StageRejected {
		return true
	}
	_, ok := pathIndex[s]
	return ok
}

// Validate decides whether a candidate may move from one stage to another.
//
// Rules:
//   - from == to is a silent no-op, not an error.
//   - rejected and hired are absorbing: nothing leaves them.
//   - any non-hired stage may move to rejected.
//   - on the active path, only forward movement is allowed; jumping more
//     than one stage ahead is allowed with an AdvisorySkip warning.
func Validate(from, to model.Stage) Decision {
	if !Known(from) || !Known(to) {
		return Decision{}
	}
	if from == to {
		return Decision{NoOp: true}
	}
	if from == model.StageRejected || from == model.StageHired {
		return Decision{}
	}
	if to == model.StageRejected {
		return Decision{Valid: true}
	}
	fi, ti := pathIndex[from], pathIndex[to]
	if ti <= fi {
		return Decision{}
	}
	d := Decision{Valid: true}
	if ti > fi+1 {
		d.Advisory = AdvisorySkip
	}
	return d
}
