package back

import (
	"astroduel/internal/trueskill"
	"astroduel/internal/util"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// MaxPlayerNameLength is the maximum number of bytes in a player name.
const MaxPlayerNameLength = 64

// A Player is a competitor identified by a unique name. Rating and Deviation
// are the μ and σ of their TrueSkill estimate and are only ever written by
// match application and replays.
type Player struct {
	Name      string
	CreatedAt util.TimeAsTimestamp
	Rating    float64
	Deviation float64
}

func NewPlayer(name string, rating trueskill.Rating) Player {
	return Player{
		Name:      name,
		CreatedAt: util.NewTimeAsTimestamp(time.Now()),
		Rating:    rating.Mu,
		Deviation: rating.Sigma,
	}
}

func (p Player) TrueSkill() trueskill.Rating {
	return trueskill.Rating{Mu: p.Rating, Sigma: p.Deviation}
}

func (p *Player) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Player").SetMap(squirrel.Eq{
		"Name":      p.Name,
		"CreatedAt": p.CreatedAt,
		"Rating":    p.Rating,
		"Deviation": p.Deviation,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func (p *Player) setRating(tx *sqlx.Tx, r trueskill.Rating) error {
	query, args, err := squirrel.Update("Player").SetMap(squirrel.Eq{
		"Rating":    r.Mu,
		"Deviation": r.Sigma,
	}).Where("Player.Name = ?", p.Name).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	p.Rating, p.Deviation = r.Mu, r.Sigma

	return nil
}

func getPlayerByName(tx *sqlx.Tx, name string) (Player, error) {
	var ret Player
	query := `SELECT * FROM Player WHERE Player.Name = ? LIMIT 1`
	if err := tx.Get(&ret, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Player{}, fmt.Errorf("player `%s`: %w", name, ErrNotFound)
		}
		return Player{}, err
	}

	return ret, nil
}

func getPlayers(tx *sqlx.Tx, orderBy ...string) ([]Player, error) {
	query, args, err := squirrel.Select("*").From("Player").OrderBy(orderBy...).ToSql()
	if err != nil {
		return nil, err
	}

	var ret []Player
	if err := tx.Select(&ret, query, args...); err != nil {
		return nil, err
	}

	return ret, nil
}

// resetPlayerRatings puts every player back to the initial rating.
func resetPlayerRatings(tx *sqlx.Tx, r trueskill.Rating) error {
	query, args, err := squirrel.Update("Player").SetMap(squirrel.Eq{
		"Rating":    r.Mu,
		"Deviation": r.Sigma,
	}).ToSql()
	if err != nil {
		return err
	}

	_, err = tx.Exec(query, args...)
	return err
}

func normalizePlayerName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty player name", ErrInvalidInput)
	}
	if len(name) > MaxPlayerNameLength {
		return "", fmt.Errorf(
			"%w: player name must be at most %d characters",
			ErrInvalidInput, MaxPlayerNameLength,
		)
	}

	return name, nil
}

// AddPlayer registers a new player with the default rating, it does nothing
// if the name is already taken.
func (b *Back) AddPlayer(name string) error {
	name, err := normalizePlayerName(name)
	if err != nil {
		return err
	}

	return b.mutate(func(tx *sqlx.Tx) error {
		if _, err := getPlayerByName(tx, name); err == nil {
			return nil
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}

		player := NewPlayer(name, b.env.NewRating())
		return player.insert(tx)
	})
}

// RemovePlayer deletes a player and its rating history, it does nothing if
// the player does not exist. Matches referencing the player are kept.
func (b *Back) RemovePlayer(name string) error {
	name, err := normalizePlayerName(name)
	if err != nil {
		return err
	}

	return b.mutate(func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`DELETE FROM Player WHERE Player.Name = ?`, name); err != nil {
			return err
		}

		return deletePlayerRatingHistory(tx, name)
	})
}

// GetPlayer returns ErrNotFound if there is no player with that name.
func (b *Back) GetPlayer(name string) (player Player, _ error) {
	name, err := normalizePlayerName(name)
	if err != nil {
		return Player{}, err
	}

	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		player, err = getPlayerByName(tx, name)
		return err
	}); err != nil {
		return Player{}, err
	}

	return player, nil
}

// ListPlayers returns the name of every player in registration order.
func (b *Back) ListPlayers() ([]string, error) {
	var players []Player
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		players, err = getPlayers(tx, "CreatedAt ASC", "rowid ASC")
		return err
	}); err != nil {
		return nil, err
	}

	ret := make([]string, 0, len(players))
	for k := range players {
		ret = append(ret, players[k].Name)
	}

	return ret, nil
}

// ListPlayersRanked returns every player, best rating first.
func (b *Back) ListPlayersRanked() (players []Player, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		players, err = getPlayers(tx, "Rating DESC", "Name ASC")
		return err
	}); err != nil {
		return nil, err
	}

	return players, nil
}
