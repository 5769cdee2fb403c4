package core

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Engine settles pending drop requests and pickup bids in one batch run.
// It is a pure computation: it performs no I/O, works on its own copies of
// the publisher snapshots, and leaves persistence of the returned result to
// the caller.
type Engine struct {
	Claims           ClaimChecker
	ConditionalDrops ConditionalDropChecker
	Projections      ProjectionSource
	Averages         SystemWideValues
}

// RunInput is the full pending state for one settlement run.
type RunInput struct {
	Bids       map[LeagueYearKey][]*PickupBid
	Drops      map[LeagueYearKey][]*DropRequest
	Publishers []*Publisher
	Now        time.Time
}

// ProcessActions runs the settlement batch: the drop phase once across all
// league years, then bid passes against the updated snapshots until no bid
// is left pending or a pass resolves nothing. Each pass can free budget and
// roster space that lets a still-pending bid resolve, so passes repeat, but
// never more times than there are bids.
func (e *Engine) ProcessActions(in RunInput) *Result {
	totalBids := 0
	for _, bids := range in.Bids {
		totalBids += len(bids)
	}
	totalDrops := 0
	for _, drops := range in.Drops {
		totalDrops += len(drops)
	}
	if totalBids == 0 && totalDrops == 0 {
		return EmptyResult(in.Publishers)
	}

	working := make(map[uuid.UUID]*Publisher, len(in.Publishers))
	for _, p := range in.Publishers {
		working[p.ID] = p.Clone()
	}
	leagues := make(map[LeagueYearKey]*LeagueYear)
	for _, p := range in.Publishers {
		leagues[p.League.Key] = p.League
	}

	result := resolveDrops(in.Drops, working, in.Now)
	if totalBids == 0 {
		return result
	}

	remaining := in.Bids
	for iteration := 0; iteration < totalBids && countBids(remaining) > 0; iteration++ {
		var processed processedBidSet
		for _, key := range sortedLeagueKeys(remaining) {
			bids := remaining[key]
			if len(bids) == 0 {
				continue
			}
			processed = processed.append(e.settleLeagueYear(leagues[key], bids, working, in.Now))
		}

		result = result.Combine(e.applyBids(processed, working, in.Now))

		next := withoutProcessed(remaining, processed.ids())
		if countBids(next) == countBids(remaining) {
			break
		}
		remaining = next
	}

	return result
}

func countBids(bids map[LeagueYearKey][]*PickupBid) int {
	total := 0
	for _, group := range bids {
		total += len(group)
	}
	return total
}

func withoutProcessed(bids map[LeagueYearKey][]*PickupBid, processed map[uuid.UUID]bool) map[LeagueYearKey][]*PickupBid {
	out := make(map[LeagueYearKey][]*PickupBid, len(bids))
	for key, group := range bids {
		kept := make([]*PickupBid, 0, len(group))
		for _, bid := range group {
			if !processed[bid.ID] {
				kept = append(kept, bid)
			}
		}
		if len(kept) > 0 {
			out[key] = kept
		}
	}
	return out
}

func sortedLeagueKeys[T any](m map[LeagueYearKey]T) []LeagueYearKey {
	keys := make([]LeagueYearKey, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].LeagueID != keys[j].LeagueID {
			return keys[i].LeagueID.String() < keys[j].LeagueID.String()
		}
		return keys[i].Year < keys[j].Year
	})
	return keys
}
