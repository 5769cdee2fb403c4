package eligibility

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"

	"github.com/openleague/waiverwire/core"
)

var testTime = time.Date(2026, time.August, 29, 20, 0, 0, 0, time.UTC)

func testLeague(opts core.LeagueOptions) *core.LeagueYear {
	return &core.LeagueYear{
		Key:        core.LeagueYearKey{LeagueID: uuid.New(), Year: 2026},
		LeagueName: "Test League",
		Options:    opts,
	}
}

func defaultOptions() core.LeagueOptions {
	return core.LeagueOptions{
		StandardSlots:                12,
		CounterPickSlots:             3,
		MinimumBidAmount:             0,
		FreeDroppableGames:           core.UnlimitedDrops,
		WillNotReleaseDroppableGames: core.UnlimitedDrops,
		WillReleaseDroppableGames:    core.UnlimitedDrops,
	}
}

func testPublisher(league *core.LeagueYear, name string) *core.Publisher {
	return &core.Publisher{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Name:   name,
		League: league,
		Budget: 100,
	}
}

func testGame(name string, tags ...string) *core.Game {
	return &core.Game{
		ID:              uuid.New(),
		Name:            name,
		Tags:            tags,
		WillRelease:     true,
		ProjectedPoints: decimal.NewFromInt(10),
	}
}

func addToRoster(p *core.Publisher, game *core.Game, counterPick bool) *core.RosterGame {
	rg := &core.RosterGame{
		ID:          uuid.New(),
		PublisherID: p.ID,
		GameName:    game.Name,
		Game:        game,
		AcquiredAt:  testTime,
		CounterPick: counterPick,
	}
	p.Roster = append(p.Roster, rg)
	return rg
}

func TestCanClaim_OpenGameIsClaimable(t *testing.T) {
	league := testLeague(defaultOptions())
	p := testPublisher(league, "Alpha")

	verdict := ClaimChecker{}.CanClaim(p, testGame("Wanted"), false, []*core.Publisher{p})
	check.True(t, verdict.Ok)
	check.Equal(t, 0, len(verdict.Errors))
}

func TestCanClaim_NilGameRejected(t *testing.T) {
	league := testLeague(defaultOptions())
	p := testPublisher(league, "Alpha")

	verdict := ClaimChecker{}.CanClaim(p, nil, false, []*core.Publisher{p})
	check.False(t, verdict.Ok)
	check.Equal(t, []string{"only catalog games can be claimed by bid"}, verdict.Errors)
}

func TestCanClaim_ReleasedGameRejected(t *testing.T) {
	league := testLeague(defaultOptions())
	p := testPublisher(league, "Alpha")
	game := testGame("Out Already")
	game.Released = true

	verdict := ClaimChecker{}.CanClaim(p, game, false, []*core.Publisher{p})
	check.False(t, verdict.Ok)
	check.Equal(t, []string{"Out Already has already been released"}, verdict.Errors)
}

func TestCanClaim_BannedTagRejected(t *testing.T) {
	opts := defaultOptions()
	opts.BannedTags = []string{"YearlyInstallment"}
	league := testLeague(opts)
	p := testPublisher(league, "Alpha")

	verdict := ClaimChecker{}.CanClaim(p, testGame("Annual Sequel", "YearlyInstallment"), false, []*core.Publisher{p})
	check.False(t, verdict.Ok)
	check.Equal(t, []string{`Annual Sequel has the banned tag "YearlyInstallment"`}, verdict.Errors)
}

func TestCanClaim_GameTakenByRival(t *testing.T) {
	league := testLeague(defaultOptions())
	p := testPublisher(league, "Alpha")
	rival := testPublisher(league, "Beta")
	game := testGame("Contested")
	addToRoster(rival, game, false)

	verdict := ClaimChecker{}.CanClaim(p, game, false, []*core.Publisher{p, rival})
	check.False(t, verdict.Ok)
	check.Equal(t, []string{"Contested is already taken by Beta"}, verdict.Errors)
}

func TestCanClaim_GameAlreadyOwned(t *testing.T) {
	league := testLeague(defaultOptions())
	p := testPublisher(league, "Alpha")
	game := testGame("Mine")
	addToRoster(p, game, false)

	verdict := ClaimChecker{}.CanClaim(p, game, false, []*core.Publisher{p})
	check.False(t, verdict.Ok)
	check.Equal(t, []string{"Mine is already on the roster"}, verdict.Errors)
}

func TestCanClaim_RivalCounterPickDoesNotBlock(t *testing.T) {
	league := testLeague(defaultOptions())
	p := testPublisher(league, "Alpha")
	rival := testPublisher(league, "Beta")
	game := testGame("Countered")
	addToRoster(rival, game, true)

	verdict := ClaimChecker{}.CanClaim(p, game, false, []*core.Publisher{p, rival})
	check.True(t, verdict.Ok)
}

func TestCanClaim_FullRosterNeedsAllowIfFull(t *testing.T) {
	opts := defaultOptions()
	opts.StandardSlots = 1
	league := testLeague(opts)
	p := testPublisher(league, "Alpha")
	addToRoster(p, testGame("Only One"), false)

	blocked := ClaimChecker{}.CanClaim(p, testGame("One More"), false, []*core.Publisher{p})
	check.False(t, blocked.Ok)
	check.Equal(t, []string{"no roster spots available"}, blocked.Errors)

	allowed := ClaimChecker{}.CanClaim(p, testGame("One More"), true, []*core.Publisher{p})
	check.True(t, allowed.Ok)
}

func TestCanClaim_CollectsEveryError(t *testing.T) {
	opts := defaultOptions()
	opts.BannedTags = []string{"Port"}
	league := testLeague(opts)
	p := testPublisher(league, "Alpha")
	rival := testPublisher(league, "Beta")
	game := testGame("Trouble", "Port")
	game.Released = true
	addToRoster(rival, game, false)

	verdict := ClaimChecker{}.CanClaim(p, game, false, []*core.Publisher{p, rival})
	check.False(t, verdict.Ok)
	check.Equal(t, 3, len(verdict.Errors))
}

func dropBid(p *core.Publisher, held *core.RosterGame) *core.PickupBid {
	return &core.PickupBid{
		ID:              uuid.New(),
		PublisherID:     p.ID,
		League:          p.League.Key,
		Game:            testGame("Wanted"),
		Amount:          10,
		Priority:        1,
		CreatedAt:       testTime,
		ConditionalDrop: held,
	}
}

func TestCanConditionallyDrop_HeldGameApproved(t *testing.T) {
	league := testLeague(defaultOptions())
	p := testPublisher(league, "Alpha")
	held := addToRoster(p, testGame("Cut Me"), false)

	verdict := DropChecker{}.CanConditionallyDrop(dropBid(p, held), league, p, nil)
	check.True(t, verdict.Ok)
}

func TestCanConditionallyDrop_NoneNamed(t *testing.T) {
	league := testLeague(defaultOptions())
	p := testPublisher(league, "Alpha")
	bid := dropBid(p, nil)

	verdict := DropChecker{}.CanConditionallyDrop(bid, league, p, nil)
	check.False(t, verdict.Ok)
	check.Equal(t, "no conditional drop was named", verdict.Reason)
}

func TestCanConditionallyDrop_GameLeftRoster(t *testing.T) {
	league := testLeague(defaultOptions())
	p := testPublisher(league, "Alpha")
	gone := &core.RosterGame{ID: uuid.New(), PublisherID: p.ID, GameName: "Long Gone"}

	verdict := DropChecker{}.CanConditionallyDrop(dropBid(p, gone), league, p, nil)
	check.False(t, verdict.Ok)
	check.Equal(t, "Long Gone is no longer on the roster", verdict.Reason)
}

func TestCanConditionallyDrop_CounterPickRefused(t *testing.T) {
	league := testLeague(defaultOptions())
	p := testPublisher(league, "Alpha")
	held := addToRoster(p, testGame("Counter"), true)

	verdict := DropChecker{}.CanConditionallyDrop(dropBid(p, held), league, p, nil)
	check.False(t, verdict.Ok)
	check.Equal(t, "counter picks cannot be dropped", verdict.Reason)
}

func TestCanConditionallyDrop_RivalCounterPickBlocks(t *testing.T) {
	opts := defaultOptions()
	opts.CounterPicksBlockDrops = true
	league := testLeague(opts)
	p := testPublisher(league, "Alpha")
	rival := testPublisher(league, "Beta")
	game := testGame("Protected")
	held := addToRoster(p, game, false)
	addToRoster(rival, game, true)

	verdict := DropChecker{}.CanConditionallyDrop(dropBid(p, held), league, p, []*core.Publisher{rival})
	check.False(t, verdict.Ok)
	check.Equal(t, "Beta's counter pick blocks dropping Protected", verdict.Reason)

	league.Options.CounterPicksBlockDrops = false
	again := DropChecker{}.CanConditionallyDrop(dropBid(p, held), league, p, []*core.Publisher{rival})
	check.True(t, again.Ok)
}

func TestCanConditionallyDrop_QuotaExhausted(t *testing.T) {
	opts := defaultOptions()
	opts.WillReleaseDroppableGames = 0
	opts.FreeDroppableGames = 0
	league := testLeague(opts)
	p := testPublisher(league, "Alpha")
	held := addToRoster(p, testGame("Cut Me"), false)

	verdict := DropChecker{}.CanConditionallyDrop(dropBid(p, held), league, p, nil)
	check.False(t, verdict.Ok)
	check.Equal(t, "publisher cannot drop any more 'will release' games", verdict.Reason)
}
