package back

import (
	"astroduel/internal/util"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

// MatchSlotCount is the maximum number of players in a Match.
const MatchSlotCount = 4

// A MatchSlot is one player position in a Match, empty slots are not Valid.
type MatchSlot struct {
	Player string
	Rank   int
	Valid  bool
}

// A Match is an immutable record of a finished game.
// Free-for-all matches have 2 to 4 independently ranked players, lower rank
// is better and equal ranks are draws.
// Team matches have all 4 slots filled, slots 1-2 are a team ranked by the
// first slot rank, slots 3-4 the other team ranked by the second slot rank.
type Match struct {
	ID        int64
	Map       string
	CreatedAt util.TimeAsTimestamp
	Teams     bool
	Slots     [MatchSlotCount]MatchSlot
}

// matchRow is the Match table layout.
type matchRow struct {
	ID        int64
	Map       string
	CreatedAt util.TimeAsTimestamp
	Teams     bool

	Player1, Player2, Player3, Player4 null.String
	Rank1, Rank2, Rank3, Rank4         null.Int
}

type matchRowSlot struct {
	player *null.String
	rank   *null.Int
}

func (r *matchRow) slots() [MatchSlotCount]matchRowSlot {
	return [MatchSlotCount]matchRowSlot{
		{&r.Player1, &r.Rank1},
		{&r.Player2, &r.Rank2},
		{&r.Player3, &r.Rank3},
		{&r.Player4, &r.Rank4},
	}
}

func (r matchRow) match() Match {
	ret := Match{
		ID:        r.ID,
		Map:       r.Map,
		CreatedAt: r.CreatedAt,
		Teams:     r.Teams,
	}

	for k, v := range r.slots() {
		if !v.player.Valid {
			continue
		}

		ret.Slots[k] = MatchSlot{
			Player: v.player.String,
			Rank:   int(v.rank.Int64),
			Valid:  true,
		}
	}

	return ret
}

func (m Match) row() matchRow {
	ret := matchRow{
		ID:        m.ID,
		Map:       m.Map,
		CreatedAt: m.CreatedAt,
		Teams:     m.Teams,
	}

	for k, v := range ret.slots() {
		slot := m.Slots[k]
		if !slot.Valid {
			continue
		}

		*v.player = null.StringFrom(slot.Player)
		// Only the first two ranks carry meaning for team matches.
		if !m.Teams || k < 2 {
			*v.rank = null.IntFrom(int64(slot.Rank))
		}
	}

	return ret
}

// NewMatch validates a submission and returns the Match to insert.
// players and ranks are aligned by slot, an empty player name is an empty
// slot.
func NewMatch(mapName string, teams bool, players []string, ranks []int) (Match, error) {
	mapName = strings.TrimSpace(mapName)
	if mapName == "" {
		return Match{}, fmt.Errorf("%w: no map given", ErrInvalidInput)
	}
	if len(players) != len(ranks) {
		return Match{}, fmt.Errorf(
			"%w: got %d players but %d ranks",
			ErrInvalidInput, len(players), len(ranks),
		)
	}
	if len(players) > MatchSlotCount {
		return Match{}, fmt.Errorf(
			"%w: at most %d players can play a match",
			ErrInvalidInput, MatchSlotCount,
		)
	}

	ret := Match{
		Map:       mapName,
		CreatedAt: util.NewTimeAsTimestamp(time.Now()),
		Teams:     teams,
	}

	seen := make(map[string]struct{}, len(players))
	for k := range players {
		name := strings.TrimSpace(players[k])
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			return Match{}, fmt.Errorf("%w: `%s` is in the match twice", ErrInvalidInput, name)
		}
		seen[name] = struct{}{}

		ret.Slots[k] = MatchSlot{Player: name, Rank: ranks[k], Valid: true}
	}

	if teams {
		if len(seen) != MatchSlotCount {
			return Match{}, fmt.Errorf("%w: a team match needs exactly 4 players", ErrInvalidInput)
		}
	} else if len(seen) < 2 {
		return Match{}, fmt.Errorf("%w: a match needs at least 2 players", ErrInvalidInput)
	}

	return ret, nil
}

// Players returns the names in the populated slots, in slot order.
func (m Match) Players() []string {
	ret := make([]string, 0, MatchSlotCount)
	for _, v := range m.Slots {
		if v.Valid {
			ret = append(ret, v.Player)
		}
	}

	return ret
}

func (m *Match) insert(tx *sqlx.Tx) error {
	row := m.row()
	query, args, err := squirrel.Insert("Match").SetMap(squirrel.Eq{
		"Map":       row.Map,
		"CreatedAt": row.CreatedAt,
		"Teams":     row.Teams,
		"Player1":   row.Player1,
		"Player2":   row.Player2,
		"Player3":   row.Player3,
		"Player4":   row.Player4,
		"Rank1":     row.Rank1,
		"Rank2":     row.Rank2,
		"Rank3":     row.Rank3,
		"Rank4":     row.Rank4,
	}).ToSql()
	if err != nil {
		return err
	}

	res, err := tx.Exec(query, args...)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = id

	return nil
}

func getMatchByID(tx *sqlx.Tx, id int64) (Match, error) {
	var row matchRow
	query := `SELECT * FROM Match WHERE ID = ? LIMIT 1`
	if err := tx.Get(&row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Match{}, fmt.Errorf("match #%d: %w", id, ErrNotFound)
		}
		return Match{}, err
	}

	return row.match(), nil
}

// getMatches returns matches in creation order, the order they must be
// replayed in.
func getMatches(tx *sqlx.Tx) ([]Match, error) {
	var rows []matchRow
	if err := tx.Select(&rows, `SELECT * FROM Match ORDER BY ID ASC`); err != nil {
		return nil, err
	}

	ret := make([]Match, 0, len(rows))
	for k := range rows {
		ret = append(ret, rows[k].match())
	}

	return ret, nil
}

// deleteMatch returns false if there was no match to delete.
func deleteMatch(tx *sqlx.Tx, id int64) (bool, error) {
	res, err := tx.Exec(`DELETE FROM Match WHERE ID = ?`, id)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// AddMatch records a match and applies it to the current ratings.
func (b *Back) AddMatch(mapName string, teams bool, players []string, ranks []int) (Match, error) {
	match, err := NewMatch(mapName, teams, players, ranks)
	if err != nil {
		return Match{}, err
	}

	if err := b.mutate(func(tx *sqlx.Tx) error {
		if err := match.insert(tx); err != nil {
			return fmt.Errorf("unable to insert match: %w", err)
		}

		return b.applyMatch(tx, match)
	}); err != nil {
		return Match{}, err
	}

	return match, nil
}

// RemoveMatch deletes a match and replays the whole history without it, it
// does nothing if the match does not exist.
func (b *Back) RemoveMatch(id int64) error {
	return b.mutate(func(tx *sqlx.Tx) error {
		deleted, err := deleteMatch(tx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return nil
		}

		return b.recalculateAll(tx)
	})
}

// GetMatch returns ErrNotFound if there is no match with that ID.
func (b *Back) GetMatch(id int64) (match Match, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		match, err = getMatchByID(tx, id)
		return err
	}); err != nil {
		return Match{}, err
	}

	return match, nil
}

// ListMatches returns every match in creation order.
func (b *Back) ListMatches() (matches []Match, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		matches, err = getMatches(tx)
		return err
	}); err != nil {
		return nil, err
	}

	return matches, nil
}
