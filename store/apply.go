package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/openleague/waiverwire/core"
)

// ApplyResult writes a settlement result in one transaction: publisher
// budgets and drop counters, roster additions and removals, bid and drop
// outcomes, the audit trail, and the run record with its hash. stillPending
// are the bids the run left unresolved; their priorities are re-densified
// to 1..N per publisher before being written back.
//
// The caller must guarantee at most one settlement run is in flight; the
// store takes no cross-process lock beyond the transaction itself.
func (s *Store) ApplyResult(result *core.Result, stillPending []*core.PickupBid, ranAt time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin apply: %w", err)
	}
	defer tx.Rollback()

	for id, publisher := range result.Publishers {
		if _, err := tx.Exec(`UPDATE publishers SET budget = ?,
			free_games_dropped = ?, will_not_release_games_dropped = ?, will_release_games_dropped = ?
			WHERE id = ?`,
			publisher.Budget, publisher.FreeGamesDropped, publisher.WillNotReleaseGamesDropped,
			publisher.WillReleaseGamesDropped, id.String()); err != nil {
			return fmt.Errorf("update publisher %s: %w", id, err)
		}
	}

	for _, removed := range result.RemovedGames {
		if _, err := tx.Exec(`DELETE FROM roster_games WHERE id = ?`, removed.Game.ID.String()); err != nil {
			return fmt.Errorf("remove roster game %s: %w", removed.Game.ID, err)
		}
	}
	for _, added := range result.AddedGames {
		var gameID any
		if added.Game != nil {
			gameID = added.Game.ID.String()
		}
		if _, err := tx.Exec(`INSERT INTO roster_games (id, publisher_id, game_id, game_name, acquired_at, counter_pick)
			VALUES (?, ?, ?, ?, ?, ?)`,
			added.ID.String(), added.PublisherID.String(), gameID, added.GameName,
			added.AcquiredAt.Unix(), added.CounterPick); err != nil {
			return fmt.Errorf("insert roster game %s: %w", added.ID, err)
		}
	}

	for _, bid := range result.SuccessBids {
		if _, err := tx.Exec(`UPDATE pickup_bids SET outcome = 'won' WHERE id = ?`, bid.ID.String()); err != nil {
			return fmt.Errorf("mark bid %s won: %w", bid.ID, err)
		}
	}
	for _, failed := range result.FailedBids {
		if _, err := tx.Exec(`UPDATE pickup_bids SET outcome = 'lost', failure_reason = ? WHERE id = ?`,
			failed.Reason, failed.Bid.ID.String()); err != nil {
			return fmt.Errorf("mark bid %s lost: %w", failed.Bid.ID, err)
		}
	}
	for _, drop := range result.SuccessDrops {
		if _, err := tx.Exec(`UPDATE drop_requests SET outcome = 'succeeded' WHERE id = ?`, drop.ID.String()); err != nil {
			return fmt.Errorf("mark drop %s succeeded: %w", drop.ID, err)
		}
	}
	for _, failed := range result.FailedDrops {
		if _, err := tx.Exec(`UPDATE drop_requests SET outcome = 'failed', failure_reason = ? WHERE id = ?`,
			failed.Reason, failed.Drop.ID.String()); err != nil {
			return fmt.Errorf("mark drop %s failed: %w", failed.Drop.ID, err)
		}
	}

	for _, action := range result.Actions {
		if _, err := tx.Exec(`INSERT INTO league_actions (publisher_id, league_id, year, timestamp, action_type, description)
			VALUES (?, ?, ?, ?, ?, ?)`,
			action.PublisherID.String(), action.League.LeagueID.String(), action.League.Year,
			action.Timestamp.Unix(), action.ActionType, action.Description); err != nil {
			return fmt.Errorf("insert league action: %w", err)
		}
	}

	core.NormalizePriorities(stillPending)
	for _, bid := range stillPending {
		if _, err := tx.Exec(`UPDATE pickup_bids SET priority = ? WHERE id = ?`, bid.Priority, bid.ID.String()); err != nil {
			return fmt.Errorf("renumber bid %s: %w", bid.ID, err)
		}
	}

	runHash := core.ComputeRunHash(result)
	if _, err := tx.Exec(`INSERT INTO settlement_runs (ran_at, run_hash, success_bids, failed_bids, success_drops, failed_drops)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ranAt.Unix(), runHash,
		len(result.SuccessBids), len(result.FailedBids),
		len(result.SuccessDrops), len(result.FailedDrops)); err != nil {
		return fmt.Errorf("insert run record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit apply: %w", err)
	}
	log.Printf("[INFO] settlement applied: %d bids won, %d bids failed, %d drops, hash %s",
		len(result.SuccessBids), len(result.FailedBids), len(result.SuccessDrops), runHash)
	return nil
}

// LastRunHash returns the hash of the most recent settlement run, or empty
// when no run has been recorded.
func (s *Store) LastRunHash() (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT run_hash FROM settlement_runs ORDER BY id DESC LIMIT 1`).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("load last run hash: %w", err)
	}
	return hash, nil
}
