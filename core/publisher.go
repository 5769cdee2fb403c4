package core

import (
	"fmt"

	"github.com/google/uuid"
)

// Publisher is one competitor's state within a league year. The settlement
// engine mutates it exclusively through CanDrop/Drop and Acquire; resolvers
// never touch roster or budget fields directly.
type Publisher struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Name          string
	League        *LeagueYear
	DraftPosition int
	Roster        []*RosterGame
	Budget        int

	FreeGamesDropped           int
	WillNotReleaseGamesDropped int
	WillReleaseGamesDropped    int

	AutoDraft bool
}

// Clone returns a deep copy of the publisher for use as a working snapshot.
// The league year is shared; it is read-only during a run.
func (p *Publisher) Clone() *Publisher {
	c := *p
	c.Roster = make([]*RosterGame, len(p.Roster))
	for i, rg := range p.Roster {
		copied := *rg
		c.Roster[i] = &copied
	}
	return &c
}

// AvailableSlots returns how many standard or counter-pick slots are open.
// A finished season has no open slots.
func (p *Publisher) AvailableSlots(counterPick bool) int {
	if p.League.Finished {
		return 0
	}
	total := p.League.Options.StandardSlots
	if counterPick {
		total = p.League.Options.CounterPickSlots
	}
	held := 0
	for _, rg := range p.Roster {
		if rg.CounterPick == counterPick {
			held++
		}
	}
	return total - held
}

// HasRemainingSlot reports whether a standard roster slot is open.
func (p *Publisher) HasRemainingSlot() bool {
	return p.AvailableSlots(false) > 0
}

// RosterGameFor returns the non-counter-pick roster game linked to the given
// catalog game, or nil if the publisher does not hold it.
func (p *Publisher) RosterGameFor(gameID uuid.UUID) *RosterGame {
	for _, rg := range p.Roster {
		if !rg.CounterPick && rg.Game != nil && rg.Game.ID == gameID {
			return rg
		}
	}
	return nil
}

// RosterGameByID returns the roster game with the given id, or nil.
func (p *Publisher) RosterGameByID(id uuid.UUID) *RosterGame {
	for _, rg := range p.Roster {
		if rg.ID == id {
			return rg
		}
	}
	return nil
}

// HoldsCounterPickOn reports whether the publisher counter-picked the given
// catalog game.
func (p *Publisher) HoldsCounterPickOn(gameID uuid.UUID) bool {
	for _, rg := range p.Roster {
		if rg.CounterPick && rg.Game != nil && rg.Game.ID == gameID {
			return true
		}
	}
	return false
}

// CanDrop reports whether the publisher may drop a game with the given
// release expectation. The category allowance is consulted first, then the
// free allowance.
func (p *Publisher) CanDrop(willRelease bool) Verdict {
	opts := p.League.Options
	if willRelease {
		if opts.WillReleaseDroppableGames == UnlimitedDrops || opts.WillReleaseDroppableGames > p.WillReleaseGamesDropped {
			return Approve()
		}
		if opts.FreeDroppableGames == UnlimitedDrops || opts.FreeDroppableGames > p.FreeGamesDropped {
			return Approve()
		}
		return Reject("publisher cannot drop any more 'will release' games")
	}

	if opts.WillNotReleaseDroppableGames == UnlimitedDrops || opts.WillNotReleaseDroppableGames > p.WillNotReleaseGamesDropped {
		return Approve()
	}
	if opts.FreeDroppableGames == UnlimitedDrops || opts.FreeDroppableGames > p.FreeGamesDropped {
		return Approve()
	}
	return Reject("publisher cannot drop any more 'will not release' games")
}

// Drop removes the given roster game and charges the allowance that made the
// drop eligible, category counter before free counter. Callers must have a
// passing CanDrop first; calling Drop without one is a programmer error and
// panics rather than corrupt state.
func (p *Publisher) Drop(rg *RosterGame) {
	opts := p.League.Options
	if rg.WillRelease() {
		switch {
		case opts.WillReleaseDroppableGames == UnlimitedDrops || opts.WillReleaseDroppableGames > p.WillReleaseGamesDropped:
			p.WillReleaseGamesDropped++
		case opts.FreeDroppableGames == UnlimitedDrops || opts.FreeDroppableGames > p.FreeGamesDropped:
			p.FreeGamesDropped++
		default:
			panic(fmt.Sprintf("Publisher.Drop: %s has no 'will release' drops left", p.ID))
		}
		p.removeRosterGame(rg.ID)
		return
	}

	switch {
	case opts.WillNotReleaseDroppableGames == UnlimitedDrops || opts.WillNotReleaseDroppableGames > p.WillNotReleaseGamesDropped:
		p.WillNotReleaseGamesDropped++
	case opts.FreeDroppableGames == UnlimitedDrops || opts.FreeDroppableGames > p.FreeGamesDropped:
		p.FreeGamesDropped++
	default:
		panic(fmt.Sprintf("Publisher.Drop: %s has no 'will not release' drops left", p.ID))
	}
	p.removeRosterGame(rg.ID)
}

// Acquire appends a roster game and debits the bid amount. Funds and space
// are the caller's responsibility to validate; overdrawing the budget is a
// programmer error and panics.
func (p *Publisher) Acquire(rg *RosterGame, amount int) {
	if amount > p.Budget {
		panic(fmt.Sprintf("Publisher.Acquire: %s cannot afford %d with budget %d", p.ID, amount, p.Budget))
	}
	p.Roster = append(p.Roster, rg)
	p.Budget -= amount
}

func (p *Publisher) removeRosterGame(id uuid.UUID) {
	kept := p.Roster[:0]
	for _, rg := range p.Roster {
		if rg.ID != id {
			kept = append(kept, rg)
		}
	}
	p.Roster = kept
}
