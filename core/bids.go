package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// processedBidSet holds the bids a settlement pass resolved terminally:
// winners and failures. Bids in neither set stay pending for the next pass.
type processedBidSet struct {
	winning []*PickupBid
	failed  []FailedBid
}

func (s processedBidSet) append(o processedBidSet) processedBidSet {
	return processedBidSet{
		winning: concat(s.winning, o.winning),
		failed:  concat(s.failed, o.failed),
	}
}

func (s processedBidSet) ids() map[uuid.UUID]bool {
	out := make(map[uuid.UUID]bool, len(s.winning)+len(s.failed))
	for _, b := range s.winning {
		out[b.ID] = true
	}
	for _, f := range s.failed {
		out[f.Bid.ID] = true
	}
	return out
}

// settleLeagueYear classifies one league year's active bids against the
// working publisher snapshots.
//
// Processing flow:
//  1. Validate each bid independently: conditional-drop verdict (cached on
//     the bid), claim eligibility with allowIfFull, funds, minimum bid.
//  2. Select the single winnable bid per contested game: highest amount,
//     then lowest projected remaining points, then earliest bid, then
//     highest draft position.
//  3. Select each publisher's single winning bid by lowest priority.
//  4. Fail remaining valid bids on taken games as outbid; everything else
//     stays pending.
func (e *Engine) settleLeagueYear(league *LeagueYear, bids []*PickupBid, working map[uuid.UUID]*Publisher, now time.Time) processedBidSet {
	leaguePublishers := publishersInLeague(working, league.Key)

	var noSpace, terminal []*PickupBid
	var terminalReasons []string
	var invalid []*PickupBid
	var invalidReasons []string
	excluded := make(map[uuid.UUID]bool)

	for _, bid := range bids {
		publisher := working[bid.PublisherID]

		hasValidConditionalDrop := false
		if bid.ConditionalDrop != nil {
			verdict := e.ConditionalDrops.CanConditionallyDrop(bid, league, publisher, otherPublishers(leaguePublishers, publisher.ID))
			bid.DropVerdict = &verdict
			hasValidConditionalDrop = verdict.Ok
		}

		allowIfFull := hasValidConditionalDrop
		claim := e.Claims.CanClaim(publisher, bid.Game, allowIfFull, leaguePublishers)

		if !publisher.HasRemainingSlot() && !hasValidConditionalDrop {
			noSpace = append(noSpace, bid)
			excluded[bid.ID] = true
			continue
		}
		if !claim.Ok {
			invalid = append(invalid, bid)
			invalidReasons = append(invalidReasons, strings.Join(claim.Errors, " AND "))
			excluded[bid.ID] = true
			continue
		}

		// Below-minimum takes precedence when a bid fails both money rules,
		// so an undersized bid reports the same reason regardless of budget.
		switch {
		case bid.Amount < league.Options.MinimumBidAmount:
			terminal = append(terminal, bid)
			terminalReasons = append(terminalReasons, "Bid is below the minimum bid amount.")
			excluded[bid.ID] = true
		case bid.Amount > publisher.Budget:
			terminal = append(terminal, bid)
			terminalReasons = append(terminalReasons, "Not enough budget.")
			excluded[bid.ID] = true
		}
	}

	valid := make([]*PickupBid, 0, len(bids))
	for _, bid := range bids {
		if !excluded[bid.ID] {
			valid = append(valid, bid)
		}
	}

	winnable := e.winnableBids(valid, league, working, now)
	winning := winningBids(winnable)

	takenGames := make(map[uuid.UUID]bool, len(winning))
	winningIDs := make(map[uuid.UUID]bool, len(winning))
	for _, bid := range winning {
		takenGames[bid.Game.ID] = true
		winningIDs[bid.ID] = true
	}

	set := processedBidSet{winning: winning}
	for _, bid := range valid {
		if !winningIDs[bid.ID] && takenGames[bid.Game.ID] {
			set.failed = append(set.failed, FailedBid{Bid: bid, Reason: "Publisher was outbid."})
		}
	}
	for i, bid := range invalid {
		set.failed = append(set.failed, FailedBid{Bid: bid, Reason: "Game is no longer eligible: " + invalidReasons[i]})
	}
	for i, bid := range terminal {
		set.failed = append(set.failed, FailedBid{Bid: bid, Reason: terminalReasons[i]})
	}
	for _, bid := range noSpace {
		reason := "No roster spots available."
		if bid.ConditionalDrop != nil && bid.DropVerdict != nil && !bid.DropVerdict.Ok {
			reason = fmt.Sprintf("No roster spots available. Attempted to conditionally drop game: %s but failed because: %s",
				bid.ConditionalDrop.GameName, bid.DropVerdict.Reason)
		}
		set.failed = append(set.failed, FailedBid{Bid: bid, Reason: reason})
	}

	return set
}

// winnableBids picks the single best bid per contested game among the valid
// bids whose amount fits the bidder's current budget.
func (e *Engine) winnableBids(valid []*PickupBid, league *LeagueYear, working map[uuid.UUID]*Publisher, now time.Time) []*PickupBid {
	groups := make(map[uuid.UUID][]*PickupBid)
	var gameOrder []uuid.UUID
	for _, bid := range valid {
		if bid.Amount > working[bid.PublisherID].Budget {
			continue
		}
		if _, seen := groups[bid.Game.ID]; !seen {
			gameOrder = append(gameOrder, bid.Game.ID)
		}
		groups[bid.Game.ID] = append(groups[bid.Game.ID], bid)
	}

	projections := make(map[uuid.UUID]decimal.Decimal)
	projectionFor := func(publisherID uuid.UUID) decimal.Decimal {
		if p, ok := projections[publisherID]; ok {
			return p
		}
		p := e.Projections.ProjectedPoints(working[publisherID], league, e.Averages, now)
		projections[publisherID] = p
		return p
	}

	winnable := make([]*PickupBid, 0, len(groups))
	for _, gameID := range gameOrder {
		group := groups[gameID]
		best := group[0]
		for _, bid := range group[1:] {
			if bidBeats(bid, best, projectionFor, working) {
				best = bid
			}
		}
		winnable = append(winnable, best)
	}
	return winnable
}

// bidBeats reports whether a ranks ahead of b for the same game: highest
// amount, then lowest projected points (the competitive-balance rule), then
// earliest submission, then highest draft position.
func bidBeats(a, b *PickupBid, projectionFor func(uuid.UUID) decimal.Decimal, working map[uuid.UUID]*Publisher) bool {
	if a.Amount != b.Amount {
		return a.Amount > b.Amount
	}
	projA, projB := projectionFor(a.PublisherID), projectionFor(b.PublisherID)
	if !projA.Equal(projB) {
		return projA.LessThan(projB)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return working[a.PublisherID].DraftPosition > working[b.PublisherID].DraftPosition
}

// winningBids keeps each publisher's lowest-priority winnable bid: one win
// per publisher per pass.
func winningBids(winnable []*PickupBid) []*PickupBid {
	bestByPublisher := make(map[uuid.UUID]*PickupBid)
	var publisherOrder []uuid.UUID
	for _, bid := range winnable {
		current, ok := bestByPublisher[bid.PublisherID]
		if !ok {
			publisherOrder = append(publisherOrder, bid.PublisherID)
			bestByPublisher[bid.PublisherID] = bid
			continue
		}
		if bid.Priority < current.Priority {
			bestByPublisher[bid.PublisherID] = bid
		}
	}

	winning := make([]*PickupBid, 0, len(bestByPublisher))
	for _, id := range publisherOrder {
		winning = append(winning, bestByPublisher[id])
	}
	return winning
}

// applyBids applies a pass's winners to the working snapshots and renders
// every terminal outcome into a partial result. A win and its validated
// conditional drop land in the same update.
func (e *Engine) applyBids(set processedBidSet, working map[uuid.UUID]*Publisher, now time.Time) *Result {
	result := &Result{Publishers: make(map[uuid.UUID]*Publisher, len(working))}
	for id, p := range working {
		result.Publishers[id] = p
	}

	for _, bid := range set.winning {
		publisher := working[bid.PublisherID]
		newGame := &RosterGame{
			ID:          uuid.New(),
			PublisherID: publisher.ID,
			GameName:    bid.Game.Name,
			Game:        bid.Game,
			AcquiredAt:  now,
		}
		publisher.Acquire(newGame, bid.Amount)
		bid.Outcome = BidWon

		result.SuccessBids = append(result.SuccessBids, bid)
		result.AddedGames = append(result.AddedGames, newGame)
		result.Actions = append(result.Actions, LeagueAction{
			PublisherID: publisher.ID,
			League:      bid.League,
			Timestamp:   now,
			ActionType:  "pickup",
			Description: fmt.Sprintf("%s acquired %s with a bid of $%d", publisher.Name, bid.Game.Name, bid.Amount),
		})

		if bid.ConditionalDrop == nil || bid.DropVerdict == nil || !bid.DropVerdict.Ok {
			continue
		}
		dropped := publisher.RosterGameByID(bid.ConditionalDrop.ID)
		if dropped == nil {
			panic(fmt.Sprintf("applyBids: conditional drop %s validated but missing from roster", bid.ConditionalDrop.ID))
		}
		publisher.Drop(dropped)
		result.RemovedGames = append(result.RemovedGames, RemovedGame{Game: dropped, Reason: "conditional drop"})
		result.Actions = append(result.Actions, LeagueAction{
			PublisherID: publisher.ID,
			League:      bid.League,
			Timestamp:   now,
			ActionType:  "conditional drop",
			Description: fmt.Sprintf("%s dropped %s to make room for %s", publisher.Name, dropped.GameName, bid.Game.Name),
		})
	}

	for _, failed := range set.failed {
		failed.Bid.Outcome = BidLost
		failed.Bid.FailureReason = failed.Reason
		publisher := working[failed.Bid.PublisherID]
		result.FailedBids = append(result.FailedBids, failed)
		result.Actions = append(result.Actions, LeagueAction{
			PublisherID: publisher.ID,
			League:      failed.Bid.League,
			Timestamp:   now,
			ActionType:  "pickup failed",
			Description: fmt.Sprintf("%s's bid of $%d on %s failed: %s", publisher.Name, failed.Bid.Amount, failed.Bid.Game.Name, failed.Reason),
		})
	}

	return result
}

// NormalizePriorities re-densifies each publisher's pending bid priorities
// to a contiguous 1..N sequence, preserving their relative order and using
// submission time to settle duplicate ranks.
func NormalizePriorities(bids []*PickupBid) {
	byPublisher := make(map[uuid.UUID][]*PickupBid)
	for _, bid := range bids {
		byPublisher[bid.PublisherID] = append(byPublisher[bid.PublisherID], bid)
	}
	for _, group := range byPublisher {
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Priority != group[j].Priority {
				return group[i].Priority < group[j].Priority
			}
			return group[i].CreatedAt.Before(group[j].CreatedAt)
		})
		for i, bid := range group {
			bid.Priority = i + 1
		}
	}
}

func publishersInLeague(working map[uuid.UUID]*Publisher, key LeagueYearKey) []*Publisher {
	var out []*Publisher
	for _, p := range working {
		if p.League.Key == key {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DraftPosition < out[j].DraftPosition })
	return out
}

func otherPublishers(leaguePublishers []*Publisher, except uuid.UUID) []*Publisher {
	out := make([]*Publisher, 0, len(leaguePublishers))
	for _, p := range leaguePublishers {
		if p.ID != except {
			out = append(out, p)
		}
	}
	return out
}
