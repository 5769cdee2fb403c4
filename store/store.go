// Package store is the persistence boundary for settlement runs: it loads
// the pending actions and publisher state a run needs, and applies a
// settlement result as a single transaction.
package store

import (
	"database/sql"
	"fmt"
	"log"

	_ "modernc.org/sqlite"
)

// Store wraps the league database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so the web side can read while a settlement run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS league_years (
			league_id                        TEXT NOT NULL,
			year                             INTEGER NOT NULL,
			league_name                      TEXT NOT NULL,
			finished                         INTEGER NOT NULL DEFAULT 0,
			standard_slots                   INTEGER NOT NULL,
			counter_pick_slots               INTEGER NOT NULL,
			minimum_bid                      INTEGER NOT NULL,
			free_droppable_games             INTEGER NOT NULL,
			will_not_release_droppable_games INTEGER NOT NULL,
			will_release_droppable_games     INTEGER NOT NULL,
			counter_picks_block_drops        INTEGER NOT NULL DEFAULT 0,
			banned_tags                      TEXT NOT NULL DEFAULT '[]',
			PRIMARY KEY (league_id, year)
		)`,

		`CREATE TABLE IF NOT EXISTS games (
			id               TEXT PRIMARY KEY,
			name             TEXT NOT NULL,
			tags             TEXT NOT NULL DEFAULT '[]',
			will_release     INTEGER NOT NULL DEFAULT 1,
			released         INTEGER NOT NULL DEFAULT 0,
			projected_points TEXT NOT NULL DEFAULT '0'
		)`,

		`CREATE TABLE IF NOT EXISTS publishers (
			id                             TEXT PRIMARY KEY,
			user_id                        TEXT NOT NULL,
			league_id                      TEXT NOT NULL,
			year                           INTEGER NOT NULL,
			name                           TEXT NOT NULL,
			draft_position                 INTEGER NOT NULL,
			budget                         INTEGER NOT NULL,
			free_games_dropped             INTEGER NOT NULL DEFAULT 0,
			will_not_release_games_dropped INTEGER NOT NULL DEFAULT 0,
			will_release_games_dropped     INTEGER NOT NULL DEFAULT 0,
			auto_draft                     INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_publishers_league ON publishers(league_id, year)`,

		`CREATE TABLE IF NOT EXISTS roster_games (
			id           TEXT PRIMARY KEY,
			publisher_id TEXT NOT NULL REFERENCES publishers(id),
			game_id      TEXT REFERENCES games(id),
			game_name    TEXT NOT NULL,
			acquired_at  INTEGER NOT NULL,
			counter_pick INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_roster_publisher ON roster_games(publisher_id)`,

		`CREATE TABLE IF NOT EXISTS pickup_bids (
			id                  TEXT PRIMARY KEY,
			publisher_id        TEXT NOT NULL REFERENCES publishers(id),
			game_id             TEXT NOT NULL REFERENCES games(id),
			amount              INTEGER NOT NULL,
			priority            INTEGER NOT NULL,
			created_at          INTEGER NOT NULL,
			conditional_drop_id TEXT,
			outcome             TEXT NOT NULL DEFAULT 'pending',
			failure_reason      TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bids_outcome ON pickup_bids(outcome)`,

		`CREATE TABLE IF NOT EXISTS drop_requests (
			id             TEXT PRIMARY KEY,
			publisher_id   TEXT NOT NULL REFERENCES publishers(id),
			game_id        TEXT NOT NULL REFERENCES games(id),
			created_at     INTEGER NOT NULL,
			outcome        TEXT NOT NULL DEFAULT 'pending',
			failure_reason TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_drops_outcome ON drop_requests(outcome)`,

		`CREATE TABLE IF NOT EXISTS league_actions (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			publisher_id TEXT NOT NULL,
			league_id    TEXT NOT NULL,
			year         INTEGER NOT NULL,
			timestamp    INTEGER NOT NULL,
			action_type  TEXT NOT NULL,
			description  TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_actions_league ON league_actions(league_id, year)`,

		`CREATE TABLE IF NOT EXISTS settlement_runs (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			ran_at        INTEGER NOT NULL,
			run_hash      TEXT NOT NULL,
			success_bids  INTEGER NOT NULL,
			failed_bids   INTEGER NOT NULL,
			success_drops INTEGER NOT NULL,
			failed_drops  INTEGER NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %.40q: %w", stmt, err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	log.Println("[INFO] closing league store")
	return s.db.Close()
}
