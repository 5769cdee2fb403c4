package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var testTime = time.Date(2026, 8, 29, 20, 0, 0, 0, time.UTC)

func testLeague(opts LeagueOptions) *LeagueYear {
	return &LeagueYear{
		Key:        LeagueYearKey{LeagueID: uuid.New(), Year: 2026},
		LeagueName: "Test League",
		Options:    opts,
	}
}

func defaultOptions() LeagueOptions {
	return LeagueOptions{
		StandardSlots:                12,
		CounterPickSlots:             3,
		MinimumBidAmount:             0,
		FreeDroppableGames:           UnlimitedDrops,
		WillNotReleaseDroppableGames: UnlimitedDrops,
		WillReleaseDroppableGames:    UnlimitedDrops,
	}
}

func testPublisher(league *LeagueYear, name string, budget, draftPosition int) *Publisher {
	return &Publisher{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		Name:          name,
		League:        league,
		DraftPosition: draftPosition,
		Budget:        budget,
	}
}

func testGame(name string, projection float64) *Game {
	return &Game{
		ID:              uuid.New(),
		Name:            name,
		WillRelease:     true,
		ProjectedPoints: decimal.NewFromFloat(projection),
	}
}

func addToRoster(p *Publisher, game *Game, counterPick bool) *RosterGame {
	rg := &RosterGame{
		ID:          uuid.New(),
		PublisherID: p.ID,
		GameName:    game.Name,
		Game:        game,
		AcquiredAt:  testTime.Add(-24 * time.Hour),
		CounterPick: counterPick,
	}
	p.Roster = append(p.Roster, rg)
	return rg
}

func fillRoster(p *Publisher) {
	for p.AvailableSlots(false) > 0 {
		addToRoster(p, testGame("Filler", 5), false)
	}
}

func testBid(p *Publisher, game *Game, amount, priority int) *PickupBid {
	return &PickupBid{
		ID:          uuid.New(),
		PublisherID: p.ID,
		League:      p.League.Key,
		Game:        game,
		Amount:      amount,
		Priority:    priority,
		CreatedAt:   testTime.Add(-time.Hour),
	}
}

func testDrop(p *Publisher, game *Game) *DropRequest {
	return &DropRequest{
		ID:          uuid.New(),
		PublisherID: p.ID,
		League:      p.League.Key,
		Game:        game,
		CreatedAt:   testTime.Add(-time.Hour),
	}
}

// stubClaims approves claims unless the game has configured errors or the
// roster is full without allowIfFull.
type stubClaims struct {
	errs map[uuid.UUID][]string
}

func (s stubClaims) CanClaim(publisher *Publisher, game *Game, allowIfFull bool, leaguePublishers []*Publisher) ClaimVerdict {
	if errs := s.errs[game.ID]; len(errs) > 0 {
		return ClaimVerdict{Errors: errs}
	}
	if !allowIfFull && !publisher.HasRemainingSlot() {
		return ClaimVerdict{Errors: []string{"no roster spots available"}}
	}
	return ClaimVerdict{Ok: true}
}

// stubConditionalDrops rejects configured roster games and otherwise defers
// to the aggregate's allowances.
type stubConditionalDrops struct {
	reject map[uuid.UUID]string
}

func (s stubConditionalDrops) CanConditionallyDrop(bid *PickupBid, league *LeagueYear, publisher *Publisher, otherPublishers []*Publisher) Verdict {
	if reason, ok := s.reject[bid.ConditionalDrop.ID]; ok {
		return Reject(reason)
	}
	held := publisher.RosterGameByID(bid.ConditionalDrop.ID)
	if held == nil {
		return Reject("game is no longer on the roster")
	}
	return publisher.CanDrop(held.WillRelease())
}

func testEngine() *Engine {
	return &Engine{
		Claims:           stubClaims{},
		ConditionalDrops: stubConditionalDrops{},
		Projections:      StandardProjection{},
		Averages:         SystemWideValues{},
	}
}
