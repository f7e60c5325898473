package bot

import (
	"astroduel/internal/back"
	"astroduel/internal/util"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

func (bot *Bot) cmdMaps(_ *discordgo.Message, _ []string, out io.Writer) error {
	fmt.Fprint(out, "Maps:\n```\n")
	for _, v := range back.Maps {
		fmt.Fprintf(out, "%-14s %s\n", util.Slugify(v), v)
	}
	fmt.Fprint(out, "```")

	return nil
}

func (bot *Bot) cmdFFA(_ *discordgo.Message, args []string, out io.Writer) error {
	mapName, players, ranks, err := parseFFAArgs(args)
	if err != nil {
		return err
	}

	return bot.addMatch(mapName, false, players, ranks, out)
}

func (bot *Bot) cmdTeams(_ *discordgo.Message, args []string, out io.Writer) error {
	mapName, players, ranks, err := parseTeamsArgs(args)
	if err != nil {
		return err
	}

	return bot.addMatch(mapName, true, players, ranks, out)
}

func (bot *Bot) addMatch(mapName string, teams bool, players []string, ranks []int, out io.Writer) error {
	match, err := bot.back.AddMatch(mapName, teams, players, ranks)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Recorded %s\n", formatMatch(match))
	for _, name := range match.Players() {
		player, err := bot.back.GetPlayer(name)
		if err != nil {
			fmt.Fprintf(out, "`%s` is not registered and was not rated.\n", name)
			continue
		}

		fmt.Fprintf(out, "`%s`: %.1f ~ %.1f\n", player.Name, player.Rating, player.Deviation)
	}

	return nil
}

func (bot *Bot) cmdUnmatch(_ *discordgo.Message, args []string, out io.Writer) error {
	if len(args) != 1 {
		return util.ErrPublic("expected a match ID, see `!matches`")
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil {
		return util.ErrPublic(fmt.Sprintf("`%s` is not a match ID", args[0]))
	}

	if err := bot.back.RemoveMatch(id); err != nil {
		return err
	}

	fmt.Fprintf(out, "Match #%d is gone and ratings have been recomputed.", id)
	return nil
}

func (bot *Bot) cmdMatches(_ *discordgo.Message, args []string, out io.Writer) error {
	count, err := parseCount(args)
	if err != nil {
		return err
	}

	matches, err := bot.back.ListMatches()
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		fmt.Fprint(out, "No match recorded yet.")
		return nil
	}

	if len(matches) > count {
		matches = matches[len(matches)-count:]
	}

	for i := len(matches) - 1; i >= 0; i-- {
		fmt.Fprintln(out, formatMatch(matches[i]))
	}

	return nil
}

// formatMatch renders a match on one line, eg.
// #3 Old Mines (2020-05-11 21h00 UTC): Ash 1, Blaze 2
// #4 Dark Lab (2020-05-11 21h30 UTC): Ash+Dusk 2 vs Blaze+Flint 1
func formatMatch(m back.Match) string {
	var parts []string
	if m.Teams {
		s := m.Slots
		parts = []string{
			fmt.Sprintf("%s+%s %d vs %s+%s %d",
				s[0].Player, s[1].Player, s[0].Rank,
				s[2].Player, s[3].Player, s[1].Rank,
			),
		}
	} else {
		for _, v := range m.Slots {
			if v.Valid {
				parts = append(parts, fmt.Sprintf("%s %d", v.Player, v.Rank))
			}
		}
	}

	return fmt.Sprintf(
		"#%d %s (%s): %s",
		m.ID, m.Map, util.Datetime(m.CreatedAt),
		strings.Join(parts, ", "),
	)
}
