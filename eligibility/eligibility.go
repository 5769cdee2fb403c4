// Package eligibility provides the standard claim and conditional-drop
// rules. The settlement engine only sees them through the core interfaces,
// so leagues with custom rule sets can swap in their own implementations.
package eligibility

import (
	"fmt"

	"github.com/openleague/waiverwire/core"
)

// ClaimChecker implements the standard claim rules: the game must exist in
// the catalog, must not already be taken in the league, must not carry a
// banned tag or have already released, and the bidder needs an open slot
// unless a valid conditional drop allows a full roster.
type ClaimChecker struct{}

func (ClaimChecker) CanClaim(publisher *core.Publisher, game *core.Game, allowIfFull bool, leaguePublishers []*core.Publisher) core.ClaimVerdict {
	var errs []string

	if game == nil {
		return core.ClaimVerdict{Errors: []string{"only catalog games can be claimed by bid"}}
	}

	if game.Released {
		errs = append(errs, fmt.Sprintf("%s has already been released", game.Name))
	}
	for _, tag := range game.Tags {
		for _, banned := range publisher.League.Options.BannedTags {
			if tag == banned {
				errs = append(errs, fmt.Sprintf("%s has the banned tag %q", game.Name, tag))
			}
		}
	}

	for _, other := range leaguePublishers {
		if other.RosterGameFor(game.ID) != nil {
			if other.ID == publisher.ID {
				errs = append(errs, fmt.Sprintf("%s is already on the roster", game.Name))
			} else {
				errs = append(errs, fmt.Sprintf("%s is already taken by %s", game.Name, other.Name))
			}
		}
	}

	if !allowIfFull && !publisher.HasRemainingSlot() {
		errs = append(errs, "no roster spots available")
	}

	return core.ClaimVerdict{Ok: len(errs) == 0, Errors: errs}
}

// DropChecker implements the standard conditional-drop rules: the named
// game must still be on the roster, counter-picks cannot be dropped, a
// league can let another publisher's counter-pick block the drop, and the
// publisher's drop allowances must cover the release category.
type DropChecker struct{}

func (DropChecker) CanConditionallyDrop(bid *core.PickupBid, league *core.LeagueYear, publisher *core.Publisher, otherPublishers []*core.Publisher) core.Verdict {
	if bid.ConditionalDrop == nil {
		return core.Reject("no conditional drop was named")
	}

	held := publisher.RosterGameByID(bid.ConditionalDrop.ID)
	if held == nil {
		return core.Reject(fmt.Sprintf("%s is no longer on the roster", bid.ConditionalDrop.GameName))
	}
	if held.CounterPick {
		return core.Reject("counter picks cannot be dropped")
	}

	if league.Options.CounterPicksBlockDrops && held.Game != nil {
		for _, other := range otherPublishers {
			if other.HoldsCounterPickOn(held.Game.ID) {
				return core.Reject(fmt.Sprintf("%s's counter pick blocks dropping %s", other.Name, held.GameName))
			}
		}
	}

	return publisher.CanDrop(held.WillRelease())
}
