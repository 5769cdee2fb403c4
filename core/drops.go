package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// resolveDrops settles every pending drop request against the working
// publisher snapshots. Drop requests are mutually independent: each touches
// only its own publisher, so evaluation order does not matter.
func resolveDrops(drops map[LeagueYearKey][]*DropRequest, working map[uuid.UUID]*Publisher, now time.Time) *Result {
	result := &Result{Publishers: make(map[uuid.UUID]*Publisher, len(working))}
	for id, p := range working {
		result.Publishers[id] = p
	}

	for _, key := range sortedLeagueKeys(drops) {
		for _, req := range drops[key] {
			publisher := working[req.PublisherID]
			rg := publisher.RosterGameFor(req.Game.ID)
			if rg == nil {
				failDrop(result, req, publisher, now, fmt.Sprintf("%s is not on the roster", req.Game.Name))
				continue
			}

			verdict := publisher.CanDrop(rg.WillRelease())
			if !verdict.Ok {
				failDrop(result, req, publisher, now, verdict.Reason)
				continue
			}

			publisher.Drop(rg)
			req.Outcome = DropSucceeded
			result.SuccessDrops = append(result.SuccessDrops, req)
			result.RemovedGames = append(result.RemovedGames, RemovedGame{Game: rg, Reason: "dropped"})
			result.Actions = append(result.Actions, LeagueAction{
				PublisherID: publisher.ID,
				League:      req.League,
				Timestamp:   now,
				ActionType:  "drop",
				Description: fmt.Sprintf("%s dropped %s", publisher.Name, req.Game.Name),
			})
		}
	}

	return result
}

func failDrop(result *Result, req *DropRequest, publisher *Publisher, now time.Time, reason string) {
	req.Outcome = DropFailed
	req.FailureReason = reason
	result.FailedDrops = append(result.FailedDrops, FailedDrop{Drop: req, Reason: reason})
	result.Actions = append(result.Actions, LeagueAction{
		PublisherID: publisher.ID,
		League:      req.League,
		Timestamp:   now,
		ActionType:  "drop failed",
		Description: fmt.Sprintf("%s could not drop %s: %s", publisher.Name, req.Game.Name, reason),
	})
}
