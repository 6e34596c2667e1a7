// Package release tracks the lifecycle of "should this vault's contents now be
// disclosed". The transition table is data, so the implementation and the
// exhaustive edge tests derive from the same source.
package release

import (
	"time"

	id "heirloom/pkg/domain"
)

// Status is the closed set of release states.
type Status string

const (
	// StatusPending: created, evaluation not yet started.
	StatusPending Status = "pending"
	// StatusInProgress: the rule-set condition fired or an authorized party
	// started evaluation.
	StatusInProgress Status = "in_progress"
	// StatusApproved: the required approval quorum is satisfied.
	StatusApproved Status = "approved"
	// StatusReleased: final confirmation recorded. Terminal; the only status
	// that ever grants beneficiary access.
	StatusReleased Status = "released"
	// StatusCancelled: cancelled by owner or administrator. Terminal.
	StatusCancelled Status = "cancelled"
)

// transitions is the full edge set of the state machine. Anything not listed
// is an invalid transition.
var transitions = map[Status]map[Status]bool{
	StatusPending:    {StatusInProgress: true, StatusCancelled: true},
	StatusInProgress: {StatusApproved: true, StatusCancelled: true},
	StatusApproved:   {StatusReleased: true},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusApproved, StatusReleased, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition may leave s.
func (s Status) Terminal() bool {
	return s == StatusReleased || s == StatusCancelled
}

// CanTransition reports whether the edge from -> to is in the table.
func CanTransition(from, to Status) bool {
	return transitions[from][to]
}

// Statuses returns every known status, for exhaustive table tests.
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusApproved, StatusReleased, StatusCancelled}
}

// Release is one tracked release event for a vault.
type Release struct {
	ID          id.ReleaseID
	VaultID     id.VaultID
	Status      Status
	TriggeredAt time.Time
	UpdatedAt   time.Time
}

// FullyReleased is the single completion authority the access engine consults.
// True iff status is released; timestamps alone are never sufficient.
func (r *Release) FullyReleased() bool {
	return r.Status == StatusReleased
}
