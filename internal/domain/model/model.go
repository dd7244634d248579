// Package model contains domain models passed between layers.
package model

import "time"

// JobStatus marks whether a job still participates in the board ordering.
type JobStatus string

// Job statuses.
const (
	JobActive   JobStatus = "active"
	JobArchived JobStatus = "archived"
)

// Job is a ranked posting on the hiring board.
// Active jobs carry a dense 1..N board order; archived jobs keep their
// last order value but are excluded from the dense-ordering invariant.
type Job struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Location  string    `json:"location,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Order     int       `json:"order"`
	Status    JobStatus `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy safe to hand to callers or keep as a snapshot.
func (j Job) Clone() Job {
	out := j
	if j.Tags != nil {
		out.Tags = make([]string, len(j.Tags))
		copy(out.Tags, j.Tags)
	}
	return out
}

// Active reports whether the job participates in the board ordering.
func (j Job) Active() bool {
	return j.Status == JobActive
}

// Stage is a candidate's position in the hiring pipeline state machine.
type Stage string

// Pipeline stages. Applied..Hired form the active path in order;
// Hired and Rejected are absorbing.
const (
	StageApplied  Stage = "applied"
	StageScreen   Stage = "screen"
	StageTech     Stage = "tech"
	StageOffer    Stage = "offer"
	StageHired    Stage = "hired"
	StageRejected Stage = "rejected"
)

// Stages lists every pipeline stage in canonical order.
func Stages() []Stage {
	return []Stage{StageApplied, StageScreen, StageTech, StageOffer, StageHired, StageRejected}
}

// Candidate is a tracked applicant. Stage changes and notes live in the
// pipeline history log keyed by the candidate id.
type Candidate struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	JobID     string    `json:"job_id,omitempty"`
	Stage     Stage     `json:"stage"`
	AppliedAt time.Time `json:"applied_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a copy safe to hand to callers or keep as a snapshot.
func (c Candidate) Clone() Candidate {
	return c
}

// EntryKind discriminates pipeline history entries.
type EntryKind string

// History entry kinds.
const (
	EntryStageChange EntryKind = "stage_change"
	EntryNote        EntryKind = "note"
)

// HistoryEntry is one immutable record in a candidate's pipeline history.
// Seq is the append order, used to break timestamp ties on reads.
type HistoryEntry struct {
	Kind  EntryKind `json:"kind"`
	Stage Stage     `json:"stage,omitempty"`
	Text  string    `json:"text,omitempty"`
	At    time.Time `json:"at"`
	Seq   uint64    `json:"seq"`
}
