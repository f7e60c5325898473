package back

import (
	"astroduel/internal/trueskill"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
)

// resolveMatch loads the players of a match and arranges their current
// ratings in the groups and ranks expected by trueskill.Env.Rate.
// Free-for-all slots whose player was removed are skipped, a team match with
// a missing player cannot be rated at all. ErrDanglingReference is returned
// when there is not enough left to rate.
func resolveMatch(tx *sqlx.Tx, match Match) ([][]Player, []int, error) {
	var players [MatchSlotCount]*Player
	for k, slot := range match.Slots {
		if !slot.Valid {
			continue
		}

		player, err := getPlayerByName(tx, slot.Player)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				log.Printf("warning: match #%d: skipping removed player `%s`", match.ID, slot.Player)
				continue
			}
			return nil, nil, err
		}
		players[k] = &player
	}

	if match.Teams {
		for k := range players {
			if players[k] == nil {
				return nil, nil, fmt.Errorf("team match #%d: %w", match.ID, ErrDanglingReference)
			}
		}

		return [][]Player{
				{*players[0], *players[1]},
				{*players[2], *players[3]},
			},
			[]int{match.Slots[0].Rank, match.Slots[1].Rank},
			nil
	}

	groups := make([][]Player, 0, MatchSlotCount)
	ranks := make([]int, 0, MatchSlotCount)
	for k := range players {
		if players[k] == nil {
			continue
		}

		groups = append(groups, []Player{*players[k]})
		ranks = append(ranks, match.Slots[k].Rank)
	}

	if len(groups) < 2 {
		return nil, nil, fmt.Errorf("match #%d: %w", match.ID, ErrDanglingReference)
	}

	return groups, ranks, nil
}

// applyMatch updates the ratings of the match players from their current
// ratings and records the outcome in RatingHistory.
func (b *Back) applyMatch(tx *sqlx.Tx, match Match) error {
	players, ranks, err := resolveMatch(tx, match)
	if err != nil {
		if errors.Is(err, ErrDanglingReference) {
			log.Printf("warning: not rating match: %s", err)
			return nil
		}
		return err
	}

	groups := make([][]trueskill.Rating, len(players))
	for k := range players {
		groups[k] = make([]trueskill.Rating, len(players[k]))
		for j := range players[k] {
			groups[k][j] = players[k][j].TrueSkill()
		}
	}

	rated, err := b.env.Rate(groups, ranks)
	if err != nil {
		return fmt.Errorf("unable to rate match #%d: %w", match.ID, err)
	}

	for k := range players {
		for j := range players[k] {
			if err := players[k][j].setRating(tx, rated[k][j]); err != nil {
				return fmt.Errorf("unable to update rating: %w", err)
			}

			if err := insertRatingHistory(tx, match.ID, players[k][j].Name, rated[k][j]); err != nil {
				return fmt.Errorf("unable to insert rating history: %w", err)
			}
		}
	}

	return nil
}

// recalculateAll resets every player to the initial rating and replays every
// match in creation order.
func (b *Back) recalculateAll(tx *sqlx.Tx) error {
	start := time.Now()

	if err := resetPlayerRatings(tx, b.env.NewRating()); err != nil {
		return fmt.Errorf("unable to reset ratings: %w", err)
	}

	if err := deleteRatingHistory(tx); err != nil {
		return fmt.Errorf("unable to prune rating history: %w", err)
	}

	matches, err := getMatches(tx)
	if err != nil {
		return fmt.Errorf("unable to fetch matches: %w", err)
	}

	for k := range matches {
		if err := b.applyMatch(tx, matches[k]); err != nil {
			return err
		}
	}

	log.Printf("info: replayed %d matches in %s", len(matches), time.Since(start))

	return nil
}

// RecalculateAllRatings rebuilds every rating from the full match history.
func (b *Back) RecalculateAllRatings() error {
	return b.mutate(b.recalculateAll)
}
