package bot // nolint:testpackage

import (
	"astroduel/internal/back"
	"astroduel/internal/util"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input   string
		command string
		args    []string
	}{
		{"", "", nil},
		{"!help", "!help", nil},
		{"  !player   Ash ", "!player", []string{"Ash"}},
		{`!ffa old-mines "Big Ash" 1 Blaze 2`, "!ffa", []string{"old-mines", "Big Ash", "1", "Blaze", "2"}},
		{`!register ""`, "!register", []string{""}},
	}

	for _, v := range tests {
		command, args := parseCommand(v.input)
		if command != v.command || !reflect.DeepEqual(args, v.args) {
			t.Errorf("%q: expected %q %#v, got %q %#v", v.input, v.command, v.args, command, args)
		}
	}
}

func TestResolveMap(t *testing.T) {
	for _, v := range []string{"Old Mines", "old-mines", "OLD mines"} {
		name, err := resolveMap(v)
		if err != nil {
			t.Fatal(err)
		}
		if name != "Old Mines" {
			t.Errorf("%q: expected Old Mines, got %q", v, name)
		}
	}

	if _, err := resolveMap("Nowhere"); !errors.Is(err, util.ErrPublic("")) {
		t.Errorf("expected a public error, got %v", err)
	}
}

func TestParseFFAArgs(t *testing.T) {
	mapName, players, ranks, err := parseFFAArgs([]string{"highrise", "Ash", "2", "Blaze", "1", "Comet", "2"})
	if err != nil {
		t.Fatal(err)
	}
	if mapName != "Highrise" ||
		!reflect.DeepEqual(players, []string{"Ash", "Blaze", "Comet"}) ||
		!reflect.DeepEqual(ranks, []int{2, 1, 2}) {
		t.Errorf("unexpected parse: %q %v %v", mapName, players, ranks)
	}

	invalid := [][]string{
		nil,
		{"highrise", "Ash", "1"},
		{"highrise", "Ash", "1", "Blaze"},
		{"highrise", "Ash", "first", "Blaze", "2"},
		{"highrise", "Ash", "-1", "Blaze", "2"},
		{"nowhere", "Ash", "1", "Blaze", "2"},
	}
	for _, v := range invalid {
		if _, _, _, err := parseFFAArgs(v); !errors.Is(err, util.ErrPublic("")) {
			t.Errorf("%v: expected a public error, got %v", v, err)
		}
	}
}

func TestParseTeamsArgs(t *testing.T) {
	mapName, players, ranks, err := parseTeamsArgs([]string{"gas-rigs", "Ash", "Blaze", "2", "Comet", "Dusk", "1"})
	if err != nil {
		t.Fatal(err)
	}
	if mapName != "Gas Rigs" ||
		!reflect.DeepEqual(players, []string{"Ash", "Blaze", "Comet", "Dusk"}) ||
		!reflect.DeepEqual(ranks[:2], []int{2, 1}) {
		t.Errorf("unexpected parse: %q %v %v", mapName, players, ranks)
	}

	match, err := back.NewMatch(mapName, true, players, ranks)
	if err != nil {
		t.Fatal(err)
	}
	if match.Slots[0].Rank != 2 || match.Slots[1].Rank != 1 {
		t.Errorf("unexpected team ranks: %+v", match.Slots)
	}

	if _, _, _, err := parseTeamsArgs([]string{"gas-rigs", "Ash", "2", "Comet", "1"}); err == nil {
		t.Error("expected an error")
	}
}

func TestFormatMatch(t *testing.T) {
	createdAt := util.NewTimeAsTimestamp(time.Date(2020, 5, 11, 21, 0, 0, 0, time.UTC))

	ffa, err := back.NewMatch("Old Mines", false, []string{"Ash", "", "Blaze"}, []int{1, 0, 2})
	if err != nil {
		t.Fatal(err)
	}
	ffa.ID, ffa.CreatedAt = 3, createdAt
	if actual, expected := formatMatch(ffa), "#3 Old Mines (2020-05-11 21h00 UTC): Ash 1, Blaze 2"; actual != expected {
		t.Errorf("expected %q, got %q", expected, actual)
	}

	teams, err := back.NewMatch("Dark Lab", true, []string{"Ash", "Dusk", "Blaze", "Flint"}, []int{2, 1, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	teams.ID, teams.CreatedAt = 4, createdAt
	if actual, expected := formatMatch(teams), "#4 Dark Lab (2020-05-11 21h00 UTC): Ash+Dusk 2 vs Blaze+Flint 1"; actual != expected {
		t.Errorf("expected %q, got %q", expected, actual)
	}
}

func TestTruncateMessage(t *testing.T) {
	short := "hello"
	if truncateMessage(short) != short {
		t.Error("short message was altered")
	}

	long := strings.Repeat("é", maxMessageLength)
	truncated := truncateMessage(long)
	if len(truncated) > maxMessageLength {
		t.Errorf("message is still %d bytes long", len(truncated))
	}
	if !strings.HasSuffix(truncated, "…") || !utf8.ValidString(truncated) {
		t.Errorf("badly truncated message: %q", truncated[len(truncated)-10:])
	}
}
