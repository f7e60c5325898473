package back

import "log"

// Maps is the list of arenas known to the front-ends. The Back itself stores
// any map name it is given.
var Maps = []string{ // nolint:gochecknoglobals
	"Old Mines", "Highrise", "Frontier", "Dark Lab",
	"Echo City", "Flare Watch", "Sunken Temple", "Gas Rigs",
}

type fixtureMatch struct {
	mapName string
	teams   bool
	players []string
	ranks   []int
}

// LoadFixtures creates a few players and matches for quick testing during
// development.
func (b *Back) LoadFixtures() error {
	players := []string{"Ash", "Blaze", "Comet", "Dusk", "Ember", "Flint"}
	matches := []fixtureMatch{
		{"Old Mines", false, []string{"Ash", "Blaze"}, []int{1, 2}},
		{"Highrise", false, []string{"Comet", "Dusk", "Ember"}, []int{2, 1, 3}},
		{"Frontier", false, []string{"Ash", "Comet", "Ember", "Flint"}, []int{1, 2, 2, 4}},
		{"Dark Lab", true, []string{"Ash", "Dusk", "Blaze", "Flint"}, []int{2, 1, 0, 0}},
		{"Gas Rigs", true, []string{"Comet", "Ember", "Ash", "Blaze"}, []int{1, 1, 0, 0}},
	}

	for _, v := range players {
		if err := b.AddPlayer(v); err != nil {
			return err
		}
	}

	for _, v := range matches {
		if _, err := b.AddMatch(v.mapName, v.teams, v.players, v.ranks); err != nil {
			return err
		}
	}

	log.Printf("info: loaded %d players and %d matches", len(players), len(matches))

	return nil
}
