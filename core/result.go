package core

import (
	"time"

	"github.com/google/uuid"
)

// FailedBid pairs a lost bid with the human-readable reason it lost.
type FailedBid struct {
	Bid    *PickupBid
	Reason string
}

// FailedDrop pairs a refused drop request with its reason.
type FailedDrop struct {
	Drop   *DropRequest
	Reason string
}

// RemovedGame records a roster game leaving a roster and why.
type RemovedGame struct {
	Game   *RosterGame
	Reason string
}

// LeagueAction is one audit-trail entry describing a settled action.
type LeagueAction struct {
	PublisherID uuid.UUID
	League      LeagueYearKey
	Timestamp   time.Time
	ActionType  string
	Description string
}

// Result accumulates the outcome of a settlement run. It forms a monoid:
// EmptyResult is the identity and Combine is associative, so the engine can
// fold any number of phase results in any grouping. Publisher snapshots
// merge last-write-wins per publisher id because phases apply in sequence.
type Result struct {
	SuccessBids  []*PickupBid
	FailedBids   []FailedBid
	SuccessDrops []*DropRequest
	FailedDrops  []FailedDrop

	AddedGames   []*RosterGame
	RemovedGames []RemovedGame

	Publishers map[uuid.UUID]*Publisher
	Actions    []LeagueAction
}

// EmptyResult returns the identity result carrying the given publisher
// snapshots unmodified.
func EmptyResult(publishers []*Publisher) *Result {
	r := &Result{Publishers: make(map[uuid.UUID]*Publisher, len(publishers))}
	for _, p := range publishers {
		r.Publishers[p.ID] = p
	}
	return r
}

// Combine merges two partial results into a new one. Set-valued fields
// union by concatenation; publisher snapshots take the later value.
func (r *Result) Combine(o *Result) *Result {
	merged := &Result{
		SuccessBids:  concat(r.SuccessBids, o.SuccessBids),
		FailedBids:   concat(r.FailedBids, o.FailedBids),
		SuccessDrops: concat(r.SuccessDrops, o.SuccessDrops),
		FailedDrops:  concat(r.FailedDrops, o.FailedDrops),
		AddedGames:   concat(r.AddedGames, o.AddedGames),
		RemovedGames: concat(r.RemovedGames, o.RemovedGames),
		Actions:      concat(r.Actions, o.Actions),
		Publishers:   make(map[uuid.UUID]*Publisher, len(r.Publishers)+len(o.Publishers)),
	}
	for id, p := range r.Publishers {
		merged.Publishers[id] = p
	}
	for id, p := range o.Publishers {
		merged.Publishers[id] = p
	}
	return merged
}

func concat[T any](a, b []T) []T {
	out := make([]T, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}
