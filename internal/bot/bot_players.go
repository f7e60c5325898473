package bot

import (
	"astroduel/internal/util"
	"fmt"
	"io"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

const defaultListLength = 10

func (bot *Bot) cmdRegister(m *discordgo.Message, args []string, out io.Writer) error {
	name := argsAsName(args)
	if name == "" {
		name = m.Author.Username
	}

	if err := bot.back.AddPlayer(name); err != nil {
		return err
	}

	fmt.Fprintf(out, "`%s` is registered, see you on the leaderboard.", name)
	return nil
}

func (bot *Bot) cmdUnregister(_ *discordgo.Message, args []string, out io.Writer) error {
	name := argsAsName(args)
	if name == "" {
		return util.ErrPublic("you forgot to tell me who to remove")
	}

	if err := bot.back.RemovePlayer(name); err != nil {
		return err
	}

	fmt.Fprintf(out, "`%s` is no longer registered.", name)
	return nil
}

func (bot *Bot) cmdPlayer(_ *discordgo.Message, args []string, out io.Writer) error {
	name := argsAsName(args)
	if name == "" {
		return util.ErrPublic("you forgot to tell me the player name")
	}

	player, err := bot.back.GetPlayer(name)
	if err != nil {
		return err
	}

	history, err := bot.back.GetPlayerHistory(name)
	if err != nil {
		return err
	}

	fmt.Fprintf(
		out,
		"`%s`: rating %.1f, deviation %.1f, %d rated matches.",
		player.Name, player.Rating, player.Deviation, len(history),
	)
	return nil
}

func (bot *Bot) cmdPlayers(_ *discordgo.Message, _ []string, out io.Writer) error {
	names, err := bot.back.ListPlayers()
	if err != nil {
		return err
	}

	if len(names) == 0 {
		fmt.Fprint(out, "Nobody registered yet.")
		return nil
	}

	fmt.Fprintf(out, "%d players:\n```\n", len(names))
	for _, v := range names {
		fmt.Fprintln(out, v)
	}
	fmt.Fprint(out, "```")

	return nil
}

func parseCount(args []string) (int, error) {
	if len(args) == 0 {
		return defaultListLength, nil
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return 0, util.ErrPublic(fmt.Sprintf("`%s` is not a valid count", args[0]))
	}

	return n, nil
}

func (bot *Bot) cmdLeaderboard(_ *discordgo.Message, args []string, out io.Writer) error {
	count, err := parseCount(args)
	if err != nil {
		return err
	}

	players, err := bot.back.ListPlayersRanked()
	if err != nil {
		return err
	}
	if len(players) > count {
		players = players[:count]
	}

	if len(players) == 0 {
		fmt.Fprint(out, "The leaderboard is empty.")
		return nil
	}

	fmt.Fprint(out, "```\n")
	for k, v := range players {
		fmt.Fprintf(out, "%2d. %s - %.1f ~ %.1f\n", k+1, v.Name, v.Rating, v.Deviation)
	}
	fmt.Fprint(out, "```")

	return nil
}
