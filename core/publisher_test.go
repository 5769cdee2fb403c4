package core

import (
	"testing"

	"github.com/peterldowns/testy/check"
)

func TestCanDrop_WillReleaseUnderCap(t *testing.T) {
	opts := defaultOptions()
	opts.WillReleaseDroppableGames = 2
	opts.FreeDroppableGames = 0
	p := testPublisher(testLeague(opts), "Pub", 100, 1)
	p.WillReleaseGamesDropped = 1

	check.True(t, p.CanDrop(true).Ok)
}

func TestCanDrop_FallsBackToFreeAllowance(t *testing.T) {
	opts := defaultOptions()
	opts.WillReleaseDroppableGames = 0
	opts.FreeDroppableGames = 1
	p := testPublisher(testLeague(opts), "Pub", 100, 1)

	check.True(t, p.CanDrop(true).Ok)

	p.FreeGamesDropped = 1
	verdict := p.CanDrop(true)
	check.False(t, verdict.Ok)
	check.Equal(t, "publisher cannot drop any more 'will release' games", verdict.Reason)
}

func TestCanDrop_WillNotReleaseExhausted(t *testing.T) {
	opts := defaultOptions()
	opts.WillNotReleaseDroppableGames = 0
	opts.FreeDroppableGames = 1
	p := testPublisher(testLeague(opts), "Pub", 100, 1)
	p.FreeGamesDropped = 1

	verdict := p.CanDrop(false)
	check.False(t, verdict.Ok)
	check.Equal(t, "publisher cannot drop any more 'will not release' games", verdict.Reason)
}

func TestCanDrop_UnlimitedAllowance(t *testing.T) {
	p := testPublisher(testLeague(defaultOptions()), "Pub", 100, 1)
	p.WillReleaseGamesDropped = 99
	check.True(t, p.CanDrop(true).Ok)
}

func TestDrop_ChargesCategoryCounterFirst(t *testing.T) {
	opts := defaultOptions()
	opts.WillReleaseDroppableGames = 1
	opts.FreeDroppableGames = 1
	p := testPublisher(testLeague(opts), "Pub", 100, 1)
	rg := addToRoster(p, testGame("Game A", 10), false)

	p.Drop(rg)

	check.Equal(t, 1, p.WillReleaseGamesDropped)
	check.Equal(t, 0, p.FreeGamesDropped)
	check.Equal(t, 0, len(p.Roster))
}

func TestDrop_ChargesFreeCounterWhenCategoryExhausted(t *testing.T) {
	opts := defaultOptions()
	opts.WillReleaseDroppableGames = 0
	opts.FreeDroppableGames = 1
	p := testPublisher(testLeague(opts), "Pub", 100, 1)
	rg := addToRoster(p, testGame("Game A", 10), false)

	p.Drop(rg)

	check.Equal(t, 0, p.WillReleaseGamesDropped)
	check.Equal(t, 1, p.FreeGamesDropped)
}

func TestDrop_PanicsWithoutAllowance(t *testing.T) {
	opts := defaultOptions()
	opts.WillReleaseDroppableGames = 0
	opts.FreeDroppableGames = 0
	p := testPublisher(testLeague(opts), "Pub", 100, 1)
	rg := addToRoster(p, testGame("Game A", 10), false)

	defer func() {
		check.True(t, recover() != nil)
	}()
	p.Drop(rg)
}

func TestAcquire_DebitsBudget(t *testing.T) {
	p := testPublisher(testLeague(defaultOptions()), "Pub", 100, 1)
	game := testGame("Game A", 10)
	rg := &RosterGame{ID: game.ID, PublisherID: p.ID, GameName: game.Name, Game: game}

	p.Acquire(rg, 35)

	check.Equal(t, 65, p.Budget)
	check.Equal(t, 1, len(p.Roster))
}

func TestAcquire_PanicsOnOverdraft(t *testing.T) {
	p := testPublisher(testLeague(defaultOptions()), "Pub", 10, 1)
	game := testGame("Game A", 10)
	rg := &RosterGame{ID: game.ID, PublisherID: p.ID, GameName: game.Name, Game: game}

	defer func() {
		check.True(t, recover() != nil)
	}()
	p.Acquire(rg, 11)
}

func TestAvailableSlots(t *testing.T) {
	opts := defaultOptions()
	opts.StandardSlots = 3
	opts.CounterPickSlots = 1
	p := testPublisher(testLeague(opts), "Pub", 100, 1)
	addToRoster(p, testGame("Game A", 10), false)
	addToRoster(p, testGame("Game B", 10), true)

	check.Equal(t, 2, p.AvailableSlots(false))
	check.Equal(t, 0, p.AvailableSlots(true))
	check.True(t, p.HasRemainingSlot())
}

func TestAvailableSlots_FinishedSeason(t *testing.T) {
	league := testLeague(defaultOptions())
	league.Finished = true
	p := testPublisher(league, "Pub", 100, 1)

	check.Equal(t, 0, p.AvailableSlots(false))
	check.False(t, p.HasRemainingSlot())
}

func TestClone_IsIndependent(t *testing.T) {
	p := testPublisher(testLeague(defaultOptions()), "Pub", 100, 1)
	rg := addToRoster(p, testGame("Game A", 10), false)

	clone := p.Clone()
	clone.Budget = 50
	clone.Drop(clone.RosterGameByID(rg.ID))

	check.Equal(t, 100, p.Budget)
	check.Equal(t, 1, len(p.Roster))
	check.Equal(t, 0, len(clone.Roster))
}
