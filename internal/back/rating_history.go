package back

import (
	"astroduel/internal/trueskill"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// A RatingHistoryEntry is a player rating right after a match was applied.
type RatingHistoryEntry struct {
	MatchID    int64
	PlayerName string
	Rating     float64
	Deviation  float64
}

func insertRatingHistory(tx *sqlx.Tx, matchID int64, name string, r trueskill.Rating) error {
	query, args, err := squirrel.Insert("RatingHistory").SetMap(squirrel.Eq{
		"MatchID":    matchID,
		"PlayerName": name,
		"Rating":     r.Mu,
		"Deviation":  r.Sigma,
	}).ToSql()
	if err != nil {
		return err
	}

	_, err = tx.Exec(query, args...)
	return err
}

func deleteRatingHistory(tx *sqlx.Tx) error {
	_, err := tx.Exec(`DELETE FROM RatingHistory`)
	return err
}

func deletePlayerRatingHistory(tx *sqlx.Tx, name string) error {
	_, err := tx.Exec(`DELETE FROM RatingHistory WHERE PlayerName = ?`, name)
	return err
}

func getPlayerRatingHistory(tx *sqlx.Tx, name string) ([]RatingHistoryEntry, error) {
	var ret []RatingHistoryEntry
	query := `SELECT * FROM RatingHistory WHERE PlayerName = ? ORDER BY MatchID ASC`
	if err := tx.Select(&ret, query, name); err != nil {
		return nil, err
	}

	return ret, nil
}

// GetPlayerHistory returns the rating of a player after each of their rated
// matches, oldest first.
func (b *Back) GetPlayerHistory(name string) (history []RatingHistoryEntry, _ error) {
	name, err := normalizePlayerName(name)
	if err != nil {
		return nil, err
	}

	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		if _, err := getPlayerByName(tx, name); err != nil {
			return err
		}

		history, err = getPlayerRatingHistory(tx, name)
		return err
	}); err != nil {
		return nil, err
	}

	return history, nil
}
