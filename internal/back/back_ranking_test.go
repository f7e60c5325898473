package back // nolint:testpackage

import (
	"astroduel/internal/trueskill"
	"math"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
)

func TestAddAndRemoveMatchScenario(t *testing.T) {
	back := createTestBack(t)
	addPlayers(t, back, "A", "B")

	match, err := back.AddMatch("Old Mines", false, []string{"A", "B"}, []int{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if match.ID != 1 {
		t.Errorf("expected first match to have ID 1, got %d", match.ID)
	}

	a, b := mustGetPlayer(t, back, "A"), mustGetPlayer(t, back, "B")
	if !(a.Rating > 100.0 && 100.0 > b.Rating) {
		t.Errorf("expected A > 100 > B, got A=%f B=%f", a.Rating, b.Rating)
	}
	if a.Deviation >= trueskill.DefaultSigma || b.Deviation >= trueskill.DefaultSigma {
		t.Errorf("expected deviations to shrink, got A=%f B=%f", a.Deviation, b.Deviation)
	}

	if err := back.RemoveMatch(1); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"A", "B"} {
		p := mustGetPlayer(t, back, name)
		if p.Rating != 100.0 || p.Deviation != 25.0/3.0 {
			t.Errorf("%s: expected reset to 100±8.33, got %f±%f", name, p.Rating, p.Deviation)
		}
	}
}

func TestDrawKeepsEqualPlayersEqual(t *testing.T) {
	back := createTestBack(t)
	addPlayers(t, back, "A", "B")

	if _, err := back.AddMatch("Echo City", false, []string{"A", "B"}, []int{1, 1}); err != nil {
		t.Fatal(err)
	}

	a, b := mustGetPlayer(t, back, "A"), mustGetPlayer(t, back, "B")
	if math.Abs(a.Rating-b.Rating) > epsilon {
		t.Errorf("expected equal ratings after a draw, got %f and %f", a.Rating, b.Rating)
	}
	if a.Deviation >= trueskill.DefaultSigma {
		t.Errorf("expected deviation to shrink after a draw, got %f", a.Deviation)
	}
}

func TestTeamMatch(t *testing.T) {
	back := createTestBack(t)
	addPlayers(t, back, "A", "B", "C", "D")

	if _, err := back.AddMatch("Flare Watch", true, []string{"A", "B", "C", "D"}, []int{2, 1, 0, 0}); err != nil {
		t.Fatal(err)
	}

	r := ratingsByName(t, back)
	if !(r["C"].Rating > 100 && r["D"].Rating > 100 && r["A"].Rating < 100 && r["B"].Rating < 100) {
		t.Errorf("expected team C+D to win: %+v", r)
	}
	if math.Abs(r["A"].Rating-r["B"].Rating) > epsilon {
		t.Errorf("teammates with equal priors should move together: %+v", r)
	}
}

func sampleHistory() []fixtureMatch {
	return []fixtureMatch{
		{"Old Mines", false, []string{"A", "B"}, []int{1, 2}},
		{"Highrise", false, []string{"B", "C", "D"}, []int{1, 3, 2}},
		{"Frontier", true, []string{"A", "C", "B", "D"}, []int{1, 2, 0, 0}},
		{"Dark Lab", false, []string{"A", "B", "C", "D"}, []int{4, 1, 1, 3}},
		{"Sunken Temple", false, []string{"D", "A"}, []int{1, 2}},
	}
}

func playHistory(t *testing.T, back *Back, history []fixtureMatch) []Match {
	t.Helper()
	ret := make([]Match, 0, len(history))
	for _, v := range history {
		match, err := back.AddMatch(v.mapName, v.teams, v.players, v.ranks)
		if err != nil {
			t.Fatal(err)
		}
		ret = append(ret, match)
	}

	return ret
}

func TestRecalculateIsDeterministic(t *testing.T) {
	back := createTestBack(t)
	addPlayers(t, back, "A", "B", "C", "D")
	playHistory(t, back, sampleHistory())

	incremental := ratingsByName(t, back)

	if err := back.RecalculateAllRatings(); err != nil {
		t.Fatal(err)
	}
	first := ratingsByName(t, back)

	if err := back.RecalculateAllRatings(); err != nil {
		t.Fatal(err)
	}
	second := ratingsByName(t, back)

	assertSameRatings(t, first, second)
	assertSameRatings(t, incremental, first)
}

func TestRemoveMatchEqualsHistoryWithoutIt(t *testing.T) {
	history := sampleHistory()

	for k := range history {
		edited := createTestBack(t)
		addPlayers(t, edited, "A", "B", "C", "D")
		matches := playHistory(t, edited, history)
		if err := edited.RemoveMatch(matches[k].ID); err != nil {
			t.Fatal(err)
		}

		pruned := make([]fixtureMatch, 0, len(history)-1)
		pruned = append(pruned, history[:k]...)
		pruned = append(pruned, history[k+1:]...)

		clean := createTestBack(t)
		addPlayers(t, clean, "A", "B", "C", "D")
		playHistory(t, clean, pruned)

		assertSameRatings(t, ratingsByName(t, clean), ratingsByName(t, edited))
	}
}

func TestReplaySkipsRemovedPlayers(t *testing.T) {
	back := createTestBack(t)
	addPlayers(t, back, "A", "B", "C", "D")
	playHistory(t, back, []fixtureMatch{
		{"Old Mines", false, []string{"A", "B", "C"}, []int{1, 2, 3}},
		{"Gas Rigs", true, []string{"A", "B", "C", "D"}, []int{1, 2, 0, 0}},
	})

	if err := back.RemovePlayer("C"); err != nil {
		t.Fatal(err)
	}
	if err := back.RecalculateAllRatings(); err != nil {
		t.Fatal(err)
	}

	// Only the free-for-all survives, as a 1v1 between A and B.
	clean := createTestBack(t)
	addPlayers(t, clean, "A", "B", "D")
	playHistory(t, clean, []fixtureMatch{
		{"Old Mines", false, []string{"A", "B"}, []int{1, 2}},
	})

	assertSameRatings(t, ratingsByName(t, clean), ratingsByName(t, back))

	d := mustGetPlayer(t, back, "D")
	if d.Rating != trueskill.DefaultMu || d.Deviation != trueskill.DefaultSigma {
		t.Errorf("D only played a skipped team match, got %f±%f", d.Rating, d.Deviation)
	}
}

func TestUnregisteredPlayersAreNotRated(t *testing.T) {
	back := createTestBack(t)
	addPlayers(t, back, "A")

	if _, err := back.AddMatch("Highrise", false, []string{"A", "ghost"}, []int{1, 2}); err != nil {
		t.Fatal(err)
	}

	a := mustGetPlayer(t, back, "A")
	if a.Rating != trueskill.DefaultMu {
		t.Errorf("a match against an unregistered player should not be rated, got %f", a.Rating)
	}
	if n := countRows(t, back, "Match"); n != 1 {
		t.Errorf("expected the match to be recorded anyway, got %d rows", n)
	}
}

func TestPlayerHistory(t *testing.T) {
	back := createTestBack(t)
	addPlayers(t, back, "A", "B", "C", "D")
	matches := playHistory(t, back, sampleHistory())

	history, err := back.GetPlayerHistory("A")
	if err != nil {
		t.Fatal(err)
	}
	// A plays in matches 1, 3, 4, and 5.
	if len(history) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(history))
	}
	last := history[len(history)-1]
	a := mustGetPlayer(t, back, "A")
	if last.MatchID != matches[4].ID || last.Rating != a.Rating || last.Deviation != a.Deviation {
		t.Errorf("last history entry does not match current rating: %+v vs %+v", last, a)
	}

	if err := back.RemoveMatch(matches[0].ID); err != nil {
		t.Fatal(err)
	}
	history, err = back.GetPlayerHistory("A")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 3 || history[0].MatchID != matches[2].ID {
		t.Errorf("history was not rebuilt: %+v", history)
	}

	if _, err := back.GetPlayerHistory("nobody"); err == nil {
		t.Error("expected an error for an unknown player")
	}
}

func TestConcurrentWritesAreSerialized(t *testing.T) {
	back := createTestBack(t)
	addPlayers(t, back, "A", "B", "C", "D")

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := back.AddMatch("Echo City", false, []string{"A", "B", "C"}, []int{i % 3, (i + 1) % 3, (i + 2) % 3})
			errs <- err
		}(i)
		go func() {
			defer wg.Done()
			errs <- back.RecalculateAllRatings()
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}

	// Whatever the interleaving, ratings must match a replay of the
	// recorded history.
	before := ratingsByName(t, back)
	if err := back.RecalculateAllRatings(); err != nil {
		t.Fatal(err)
	}
	assertSameRatings(t, before, ratingsByName(t, back))

	if n := countRows(t, back, "Match"); n != 8 {
		t.Errorf("expected 8 matches, got %d", n)
	}
}

func TestFailedMatchApplicationLeavesStateUntouched(t *testing.T) {
	tests := []struct {
		name      string
		breakBack func(t *testing.T, back *Back)
	}{
		{"history conflict after first update", func(t *testing.T, back *Back) {
			// Match #2 will collide on B's history row, after A was updated.
			if err := back.transaction(func(tx *sqlx.Tx) error {
				_, err := tx.Exec(
					`INSERT INTO RatingHistory (MatchID, PlayerName, Rating, Deviation) VALUES (2, 'B', 1, 1)`,
				)
				return err
			}); err != nil {
				t.Fatal(err)
			}
		}},
		{"unusable rating parameters", func(t *testing.T, back *Back) {
			back.env = trueskill.NewEnv(100, 25.0/3.0, 1)
		}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			back := createTestBack(t)
			addPlayers(t, back, "A", "B")
			if _, err := back.AddMatch("Old Mines", false, []string{"A", "B"}, []int{1, 2}); err != nil {
				t.Fatal(err)
			}

			test.breakBack(t, back)

			before := ratingsByName(t, back)
			matches := countRows(t, back, "Match")
			history := countRows(t, back, "RatingHistory")

			if _, err := back.AddMatch("Highrise", false, []string{"A", "B"}, []int{2, 1}); err == nil {
				t.Fatal("expected the match application to fail")
			}

			assertSameRatings(t, before, ratingsByName(t, back))
			if n := countRows(t, back, "Match"); n != matches {
				t.Errorf("expected %d matches, got %d", matches, n)
			}
			if n := countRows(t, back, "RatingHistory"); n != history {
				t.Errorf("expected %d history rows, got %d", history, n)
			}
		})
	}
}
