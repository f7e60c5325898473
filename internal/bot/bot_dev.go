package bot

import (
	"astroduel/internal/util"
	"fmt"
	"io"
	"time"

	"github.com/bwmarrin/discordgo"
)

func (bot *Bot) cmdDev(_ *discordgo.Message, args []string, out io.Writer) error {
	if len(args) < 1 {
		return util.ErrPublic("need a subcommand")
	}

	switch args[0] {
	case "panic":
		panic("an admin asked me to panic")
	case "uptime":
		fmt.Fprintf(out, "The bot has been online for %s", util.FormatDuration(time.Since(bot.startedAt)))
	case "error":
		return util.ErrPublic("here's your error")
	case "rerank":
		start := time.Now()
		if err := bot.back.RecalculateAllRatings(); err != nil {
			return err
		}
		fmt.Fprintf(out, "Recomputed every rating in %s.", time.Since(start).Truncate(time.Millisecond))
	default:
		return util.ErrPublic(fmt.Sprintf("unknown subcommand `%s`", args[0]))
	}

	return nil
}
