package bot

import (
	"astroduel/internal/back"
	"astroduel/internal/config"
	"astroduel/internal/util"
	"errors"
	"fmt"
	"io"
	"log"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

type commandHandler func(m *discordgo.Message, args []string, w io.Writer) error

type Bot struct {
	back   *back.Back
	config *config.Config

	startedAt time.Time
	dg        *discordgo.Session

	handlers      map[string]commandHandler
	adminHandlers map[string]commandHandler
}

func New(back *back.Back, conf *config.Config) (*Bot, error) {
	dg, err := discordgo.New("Bot " + conf.DiscordToken)
	if err != nil {
		return nil, err
	}

	bot := &Bot{
		back:      back,
		config:    conf,
		dg:        dg,
		startedAt: time.Now(),
	}

	dg.AddHandler(bot.handleMessage)

	bot.handlers = map[string]commandHandler{
		"!help":        bot.cmdHelp,
		"!leaderboard": bot.cmdLeaderboard,
		"!maps":        bot.cmdMaps,
		"!matches":     bot.cmdMatches,
		"!player":      bot.cmdPlayer,
		"!players":     bot.cmdPlayers,
		"!register":    bot.cmdRegister,

		"!ffa":   bot.cmdFFA,
		"!teams": bot.cmdTeams,
	}

	bot.adminHandlers = map[string]commandHandler{
		"!dev":        bot.cmdDev,
		"!unmatch":    bot.cmdUnmatch,
		"!unregister": bot.cmdUnregister,
	}

	return bot, nil
}

// Serve blocks until done is closed, the caller must wg.Add(1) first.
func (bot *Bot) Serve(wg *sync.WaitGroup, done <-chan struct{}) {
	log.Println("info: starting Discord bot")
	defer wg.Done()
	if err := bot.dg.Open(); err != nil {
		log.Printf("error: could not open Discord session: %s", err)
		return
	}

	<-done

	if err := bot.dg.Close(); err != nil {
		log.Printf("error: could not close Discord bot: %s", err)
	}
}

func (bot *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore webooks, self, bots, non-commands.
	if m.Author == nil || m.Author.ID == s.State.User.ID ||
		m.Author.Bot || !strings.HasPrefix(m.Content, "!") {
		return
	}

	// PMs have no guild and are always listened to.
	if m.GuildID != "" && !bot.config.ListensTo(m.ChannelID) {
		return
	}

	log.Printf(
		"info: <%s(%s)@%s#%s> %s",
		m.Author.String(), m.Author.ID,
		m.GuildID, m.ChannelID,
		m.Content,
	)

	out := newChannelWriter(s, m.ChannelID)
	defer func() {
		if err := out.Flush(); err != nil {
			log.Printf("error: could not send message: %s", err)
		}
	}()

	defer func() {
		r := recover()
		if r != nil {
			out.Reset()
			fmt.Fprint(out, "Something went very wrong, please tell an admin.")
			log.Print("panic: ", r)
			log.Print(string(debug.Stack()))
		}
	}()

	if err := bot.dispatch(m.Message, out); err != nil {
		out.Reset()
		fmt.Fprintln(out, "There was an error processing your command.")

		if isPublic(err) {
			fmt.Fprintf(out, "```%s\n```\nIf you need help, send `!help`.", err)
		} else {
			fmt.Fprint(out, "An admin will check the logs when they have time.")
		}

		log.Printf("error: failed to process command: %s", err)
	}
}

// isPublic returns true if the error message can be shown to the user.
func isPublic(err error) bool {
	return errors.Is(err, util.ErrPublic("")) ||
		errors.Is(err, back.ErrInvalidInput) ||
		errors.Is(err, back.ErrNotFound)
}

func (bot *Bot) dispatch(m *discordgo.Message, w io.Writer) error {
	command, args := parseCommand(m.Content)
	if handler, ok := bot.handlers[command]; ok {
		return handler(m, args, w)
	}

	if handler, ok := bot.adminHandlers[command]; ok {
		if !bot.config.IsAdmin(m.Author.ID) {
			return fmt.Errorf("%s command ran by a non-admin: %v", command, args)
		}
		return handler(m, args, w)
	}

	return util.ErrPublic(fmt.Sprintf("invalid command: %v", m.Content))
}

func (bot *Bot) cmdHelp(m *discordgo.Message, _ []string, w io.Writer) error {
	fmt.Fprint(w, strings.ReplaceAll(`Available commands:
'''
# Players
!help                       # display this help message
!leaderboard [COUNT]        # display the best players
!player NAME                # display the rating of a player
!players                    # list every registered player
!register [NAME]            # register a player, defaults to your username

# Matches
!maps                       # list the maps
!matches [COUNT]            # list the latest matches
!ffa MAP NAME RANK NAME RANK [NAME RANK…]
                            # record a free-for-all of 2 to 4 players
!teams MAP NAME NAME RANK NAME NAME RANK
                            # record a 2v2 match
'''
Lower ranks are better, equal ranks are draws. Quote names containing spaces.`, "'''", "```"))

	if !bot.config.IsAdmin(m.Author.ID) {
		return nil
	}

	fmt.Fprint(w, strings.ReplaceAll(`
Admin-only commands:
'''
!unregister NAME   remove a player, their matches are kept
!unmatch ID        remove a match and recompute every rating
!dev rerank        recompute every rating from the match history
!dev error         error out
!dev panic         panic and abort
!dev uptime        display for how long the server has been running
'''`, "'''", "```"))

	return nil
}
