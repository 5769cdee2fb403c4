package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnlimitedDrops marks a drop allowance with no cap.
const UnlimitedDrops = -1

// LeagueYearKey identifies one season of one league.
type LeagueYearKey struct {
	LeagueID uuid.UUID
	Year     int
}

// LeagueYear is one season's instance of a league, carrying the read-only
// options that constrain every publisher in it.
type LeagueYear struct {
	Key        LeagueYearKey
	LeagueName string
	Finished   bool
	Options    LeagueOptions
}

// LeagueOptions is the per-season configuration relevant to settlement.
// Drop allowances use UnlimitedDrops (-1) for no cap.
type LeagueOptions struct {
	StandardSlots    int
	CounterPickSlots int
	MinimumBidAmount int

	FreeDroppableGames           int
	WillNotReleaseDroppableGames int
	WillReleaseDroppableGames    int

	CounterPicksBlockDrops bool
	BannedTags             []string
}

// Game is a catalog entry that publishers compete over.
type Game struct {
	ID              uuid.UUID
	Name            string
	Tags            []string
	WillRelease     bool
	Released        bool
	ProjectedPoints decimal.Decimal
}

// RosterGame is a game held by a publisher, occupying one roster slot.
// Game may be nil for an unlinked placeholder claimed by name only.
type RosterGame struct {
	ID          uuid.UUID
	PublisherID uuid.UUID
	GameName    string
	Game        *Game
	AcquiredAt  time.Time
	CounterPick bool
}

// WillRelease reports whether the held game is still expected to release.
// Unlinked placeholders are treated as "will not release".
func (rg *RosterGame) WillRelease() bool {
	return rg.Game != nil && rg.Game.WillRelease
}

// ProjectedPoints returns the projection for the held game, zero when the
// slot holds an unlinked placeholder.
func (rg *RosterGame) ProjectedPoints() decimal.Decimal {
	if rg.Game == nil {
		return decimal.Zero
	}
	return rg.Game.ProjectedPoints
}

// BidOutcome is the settlement state of a pickup bid.
type BidOutcome int

const (
	BidPending BidOutcome = iota
	BidWon
	BidLost
)

// PickupBid is a sealed offer to acquire a game, optionally paired with a
// conditional drop that executes only if the bid wins.
type PickupBid struct {
	ID          uuid.UUID
	PublisherID uuid.UUID
	League      LeagueYearKey
	Game        *Game
	Amount      int
	Priority    int
	CreatedAt   time.Time

	// ConditionalDrop names a roster game the publisher releases only on a
	// win. Its eligibility verdict is computed during settlement and cached
	// in DropVerdict.
	ConditionalDrop *RosterGame
	DropVerdict     *Verdict

	Outcome       BidOutcome
	FailureReason string
}

// DropOutcome is the settlement state of a drop request.
type DropOutcome int

const (
	DropPending DropOutcome = iota
	DropSucceeded
	DropFailed
)

// DropRequest is a voluntary request to release an owned game.
type DropRequest struct {
	ID          uuid.UUID
	PublisherID uuid.UUID
	League      LeagueYearKey
	Game        *Game
	CreatedAt   time.Time

	Outcome       DropOutcome
	FailureReason string
}

// SystemWideValues are the cross-league scoring averages used to project
// points for empty roster slots.
type SystemWideValues struct {
	AverageStandardGamePoints decimal.Decimal
	AverageCounterPickPoints  decimal.Decimal
}

// Verdict is a business-rule outcome: allowed, or refused with a reason.
// Refusals are ordinary values, never errors.
type Verdict struct {
	Ok     bool
	Reason string
}

// Approve returns a passing verdict.
func Approve() Verdict { return Verdict{Ok: true} }

// Reject returns a failing verdict with the given reason.
func Reject(reason string) Verdict { return Verdict{Reason: reason} }

// ClaimVerdict is the outcome of a claim-eligibility check. A claim may be
// refused for several reasons at once.
type ClaimVerdict struct {
	Ok     bool
	Errors []string
}

// ClaimChecker decides whether a game may be claimed into a publisher's
// roster. Implementations must be pure functions of the given state.
// allowIfFull suppresses the roster-space rule for bids backed by a valid
// conditional drop.
type ClaimChecker interface {
	CanClaim(publisher *Publisher, game *Game, allowIfFull bool, leaguePublishers []*Publisher) ClaimVerdict
}

// ConditionalDropChecker decides whether a bid's conditional drop could be
// applied, given the rest of the league's state.
type ConditionalDropChecker interface {
	CanConditionallyDrop(bid *PickupBid, league *LeagueYear, publisher *Publisher, otherPublishers []*Publisher) Verdict
}

// ProjectionSource computes a publisher's projected remaining-season points,
// used only as an auction tie-break.
type ProjectionSource interface {
	ProjectedPoints(publisher *Publisher, league *LeagueYear, averages SystemWideValues, asOf time.Time) decimal.Decimal
}
