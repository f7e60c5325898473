package bot

import (
	"astroduel/internal/back"
	"astroduel/internal/util"
	"fmt"
	"strconv"
	"strings"
)

// parseCommand splits a message into its command and arguments, arguments
// can be double-quoted to contain spaces.
func parseCommand(cmd string) (string, []string) {
	parts := splitArgs(cmd)

	switch len(parts) {
	case 0:
		return "", nil
	case 1:
		return parts[0], nil
	default:
		return parts[0], parts[1:]
	}
}

func splitArgs(str string) []string {
	var (
		ret     []string
		cur     strings.Builder
		quoted  bool
		pending bool
	)

	for _, r := range str {
		switch {
		case r == '"':
			quoted = !quoted
			pending = true
		case !quoted && (r == ' ' || r == '\t' || r == '\n'):
			if pending {
				ret = append(ret, cur.String())
				cur.Reset()
				pending = false
			}
		default:
			cur.WriteRune(r)
			pending = true
		}
	}

	if pending {
		ret = append(ret, cur.String())
	}

	return ret
}

func argsAsName(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// resolveMap finds a known map from its name or slug.
func resolveMap(str string) (string, error) {
	slug := util.Slugify(str)
	for _, v := range back.Maps {
		if util.Slugify(v) == slug {
			return v, nil
		}
	}

	return "", util.ErrPublic(fmt.Sprintf("unknown map `%s`, see `!maps`", str))
}

func parseRank(str string) (int, error) {
	rank, err := strconv.Atoi(str)
	if err != nil || rank < 0 {
		return 0, util.ErrPublic(fmt.Sprintf("`%s` is not a valid rank", str))
	}

	return rank, nil
}

// parseFFAArgs parses: MAP NAME RANK NAME RANK [NAME RANK…]
func parseFFAArgs(args []string) (string, []string, []int, error) {
	if len(args) < 5 || len(args)%2 != 1 {
		return "", nil, nil, util.ErrPublic("expected: MAP NAME RANK NAME RANK [NAME RANK…]")
	}

	mapName, err := resolveMap(args[0])
	if err != nil {
		return "", nil, nil, err
	}

	players := make([]string, 0, back.MatchSlotCount)
	ranks := make([]int, 0, back.MatchSlotCount)
	for i := 1; i < len(args); i += 2 {
		rank, err := parseRank(args[i+1])
		if err != nil {
			return "", nil, nil, err
		}

		players = append(players, args[i])
		ranks = append(ranks, rank)
	}

	return mapName, players, ranks, nil
}

// parseTeamsArgs parses: MAP NAME NAME RANK NAME NAME RANK
func parseTeamsArgs(args []string) (string, []string, []int, error) {
	if len(args) != 7 {
		return "", nil, nil, util.ErrPublic("expected: MAP NAME NAME RANK NAME NAME RANK")
	}

	mapName, err := resolveMap(args[0])
	if err != nil {
		return "", nil, nil, err
	}

	rankA, err := parseRank(args[3])
	if err != nil {
		return "", nil, nil, err
	}
	rankB, err := parseRank(args[6])
	if err != nil {
		return "", nil, nil, err
	}

	return mapName,
		[]string{args[1], args[2], args[4], args[5]},
		[]int{rankA, rankB, 0, 0},
		nil
}
