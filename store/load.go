package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openleague/waiverwire/core"
)

// LoadRunInput assembles the full pending state for one settlement run:
// every league year, its publishers with rosters, and all pending bids and
// drop requests. Now is stamped on the input by the caller's clock.
func (s *Store) LoadRunInput(now time.Time) (core.RunInput, error) {
	in := core.RunInput{
		Bids:  make(map[core.LeagueYearKey][]*core.PickupBid),
		Drops: make(map[core.LeagueYearKey][]*core.DropRequest),
		Now:   now,
	}

	games, err := s.loadGames()
	if err != nil {
		return in, err
	}
	leagues, err := s.loadLeagueYears()
	if err != nil {
		return in, err
	}
	publishers, err := s.loadPublishers(leagues, games)
	if err != nil {
		return in, err
	}
	for _, p := range publishers {
		in.Publishers = append(in.Publishers, p)
	}

	if err := s.loadPendingBids(&in, publishers, games); err != nil {
		return in, err
	}
	if err := s.loadPendingDrops(&in, publishers, games); err != nil {
		return in, err
	}
	return in, nil
}

func (s *Store) loadGames() (map[uuid.UUID]*core.Game, error) {
	rows, err := s.db.Query(`SELECT id, name, tags, will_release, released, projected_points FROM games`)
	if err != nil {
		return nil, fmt.Errorf("load games: %w", err)
	}
	defer rows.Close()

	games := make(map[uuid.UUID]*core.Game)
	for rows.Next() {
		var (
			id, name, tagsJSON, points string
			willRelease, released      bool
		)
		if err := rows.Scan(&id, &name, &tagsJSON, &willRelease, &released, &points); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		game := &core.Game{Name: name, WillRelease: willRelease, Released: released}
		if game.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse game id %q: %w", id, err)
		}
		if err := json.Unmarshal([]byte(tagsJSON), &game.Tags); err != nil {
			return nil, fmt.Errorf("parse tags for game %s: %w", id, err)
		}
		if game.ProjectedPoints, err = decimal.NewFromString(points); err != nil {
			return nil, fmt.Errorf("parse projection for game %s: %w", id, err)
		}
		games[game.ID] = game
	}
	return games, rows.Err()
}

func (s *Store) loadLeagueYears() (map[core.LeagueYearKey]*core.LeagueYear, error) {
	rows, err := s.db.Query(`SELECT league_id, year, league_name, finished,
		standard_slots, counter_pick_slots, minimum_bid,
		free_droppable_games, will_not_release_droppable_games, will_release_droppable_games,
		counter_picks_block_drops, banned_tags
		FROM league_years`)
	if err != nil {
		return nil, fmt.Errorf("load league years: %w", err)
	}
	defer rows.Close()

	leagues := make(map[core.LeagueYearKey]*core.LeagueYear)
	for rows.Next() {
		var (
			league   core.LeagueYear
			leagueID string
			tagsJSON string
		)
		if err := rows.Scan(&leagueID, &league.Key.Year, &league.LeagueName, &league.Finished,
			&league.Options.StandardSlots, &league.Options.CounterPickSlots, &league.Options.MinimumBidAmount,
			&league.Options.FreeDroppableGames, &league.Options.WillNotReleaseDroppableGames, &league.Options.WillReleaseDroppableGames,
			&league.Options.CounterPicksBlockDrops, &tagsJSON); err != nil {
			return nil, fmt.Errorf("scan league year: %w", err)
		}
		if league.Key.LeagueID, err = uuid.Parse(leagueID); err != nil {
			return nil, fmt.Errorf("parse league id %q: %w", leagueID, err)
		}
		if err := json.Unmarshal([]byte(tagsJSON), &league.Options.BannedTags); err != nil {
			return nil, fmt.Errorf("parse banned tags for league %s: %w", leagueID, err)
		}
		stored := league
		leagues[league.Key] = &stored
	}
	return leagues, rows.Err()
}

func (s *Store) loadPublishers(leagues map[core.LeagueYearKey]*core.LeagueYear, games map[uuid.UUID]*core.Game) (map[uuid.UUID]*core.Publisher, error) {
	rows, err := s.db.Query(`SELECT id, user_id, league_id, year, name, draft_position, budget,
		free_games_dropped, will_not_release_games_dropped, will_release_games_dropped, auto_draft
		FROM publishers`)
	if err != nil {
		return nil, fmt.Errorf("load publishers: %w", err)
	}
	defer rows.Close()

	publishers := make(map[uuid.UUID]*core.Publisher)
	for rows.Next() {
		var (
			p                    core.Publisher
			id, userID, leagueID string
			year                 int
		)
		if err := rows.Scan(&id, &userID, &leagueID, &year, &p.Name, &p.DraftPosition, &p.Budget,
			&p.FreeGamesDropped, &p.WillNotReleaseGamesDropped, &p.WillReleaseGamesDropped, &p.AutoDraft); err != nil {
			return nil, fmt.Errorf("scan publisher: %w", err)
		}
		if p.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse publisher id %q: %w", id, err)
		}
		if p.UserID, err = uuid.Parse(userID); err != nil {
			return nil, fmt.Errorf("parse user id %q: %w", userID, err)
		}
		key := core.LeagueYearKey{Year: year}
		if key.LeagueID, err = uuid.Parse(leagueID); err != nil {
			return nil, fmt.Errorf("parse league id %q: %w", leagueID, err)
		}
		league, ok := leagues[key]
		if !ok {
			return nil, fmt.Errorf("publisher %s references unknown league year %s/%d", id, leagueID, year)
		}
		p.League = league
		stored := p
		publishers[p.ID] = &stored
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return publishers, s.loadRosters(publishers, games)
}

func (s *Store) loadRosters(publishers map[uuid.UUID]*core.Publisher, games map[uuid.UUID]*core.Game) error {
	rows, err := s.db.Query(`SELECT id, publisher_id, game_id, game_name, acquired_at, counter_pick
		FROM roster_games ORDER BY acquired_at, id`)
	if err != nil {
		return fmt.Errorf("load rosters: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, publisherID, gameName string
			gameID                    sql.NullString
			acquiredAt                int64
			counterPick               bool
		)
		if err := rows.Scan(&id, &publisherID, &gameID, &gameName, &acquiredAt, &counterPick); err != nil {
			return fmt.Errorf("scan roster game: %w", err)
		}

		entry := &core.RosterGame{
			GameName:    gameName,
			AcquiredAt:  time.Unix(acquiredAt, 0).UTC(),
			CounterPick: counterPick,
		}
		if entry.ID, err = uuid.Parse(id); err != nil {
			return fmt.Errorf("parse roster game id %q: %w", id, err)
		}
		if entry.PublisherID, err = uuid.Parse(publisherID); err != nil {
			return fmt.Errorf("parse roster publisher id %q: %w", publisherID, err)
		}
		if gameID.Valid {
			gid, err := uuid.Parse(gameID.String)
			if err != nil {
				return fmt.Errorf("parse roster game ref %q: %w", gameID.String, err)
			}
			entry.Game = games[gid]
		}

		publisher, ok := publishers[entry.PublisherID]
		if !ok {
			return fmt.Errorf("roster game %s references unknown publisher %s", id, publisherID)
		}
		publisher.Roster = append(publisher.Roster, entry)
	}
	return rows.Err()
}

func (s *Store) loadPendingBids(in *core.RunInput, publishers map[uuid.UUID]*core.Publisher, games map[uuid.UUID]*core.Game) error {
	rows, err := s.db.Query(`SELECT id, publisher_id, game_id, amount, priority, created_at, conditional_drop_id
		FROM pickup_bids WHERE outcome = 'pending' ORDER BY created_at, id`)
	if err != nil {
		return fmt.Errorf("load pending bids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			bid                     core.PickupBid
			id, publisherID, gameID string
			conditionalDropID       sql.NullString
			createdAt               int64
		)
		if err := rows.Scan(&id, &publisherID, &gameID, &bid.Amount, &bid.Priority, &createdAt, &conditionalDropID); err != nil {
			return fmt.Errorf("scan bid: %w", err)
		}
		if bid.ID, err = uuid.Parse(id); err != nil {
			return fmt.Errorf("parse bid id %q: %w", id, err)
		}
		if bid.PublisherID, err = uuid.Parse(publisherID); err != nil {
			return fmt.Errorf("parse bid publisher id %q: %w", publisherID, err)
		}
		gid, err := uuid.Parse(gameID)
		if err != nil {
			return fmt.Errorf("parse bid game id %q: %w", gameID, err)
		}
		bid.CreatedAt = time.Unix(createdAt, 0).UTC()

		publisher, ok := publishers[bid.PublisherID]
		if !ok {
			return fmt.Errorf("bid %s references unknown publisher %s", id, publisherID)
		}
		bid.League = publisher.League.Key
		bid.Game = games[gid]
		if bid.Game == nil {
			return fmt.Errorf("bid %s references unknown game %s", id, gameID)
		}
		if conditionalDropID.Valid {
			dropID, err := uuid.Parse(conditionalDropID.String)
			if err != nil {
				return fmt.Errorf("parse conditional drop id %q: %w", conditionalDropID.String, err)
			}
			bid.ConditionalDrop = publisher.RosterGameByID(dropID)
		}

		stored := bid
		in.Bids[bid.League] = append(in.Bids[bid.League], &stored)
	}
	return rows.Err()
}

func (s *Store) loadPendingDrops(in *core.RunInput, publishers map[uuid.UUID]*core.Publisher, games map[uuid.UUID]*core.Game) error {
	rows, err := s.db.Query(`SELECT id, publisher_id, game_id, created_at
		FROM drop_requests WHERE outcome = 'pending' ORDER BY created_at, id`)
	if err != nil {
		return fmt.Errorf("load pending drops: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			req                     core.DropRequest
			id, publisherID, gameID string
			createdAt               int64
		)
		if err := rows.Scan(&id, &publisherID, &gameID, &createdAt); err != nil {
			return fmt.Errorf("scan drop request: %w", err)
		}
		if req.ID, err = uuid.Parse(id); err != nil {
			return fmt.Errorf("parse drop id %q: %w", id, err)
		}
		if req.PublisherID, err = uuid.Parse(publisherID); err != nil {
			return fmt.Errorf("parse drop publisher id %q: %w", publisherID, err)
		}
		gid, err := uuid.Parse(gameID)
		if err != nil {
			return fmt.Errorf("parse drop game id %q: %w", gameID, err)
		}
		req.CreatedAt = time.Unix(createdAt, 0).UTC()

		publisher, ok := publishers[req.PublisherID]
		if !ok {
			return fmt.Errorf("drop request %s references unknown publisher %s", id, publisherID)
		}
		req.League = publisher.League.Key
		req.Game = games[gid]
		if req.Game == nil {
			return fmt.Errorf("drop request %s references unknown game %s", id, gameID)
		}

		stored := req
		in.Drops[req.League] = append(in.Drops[req.League], &stored)
	}
	return rows.Err()
}
