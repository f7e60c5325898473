package main

import (
	"astroduel/internal/back"
	"astroduel/internal/config"
	"astroduel/internal/util"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// Version holds the build-time version string.
var Version = "unknown" // nolint:gochecknoglobals

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.LUTC)

	if err := run(flag.Arg(0)); err != nil {
		log.Fatalf("error: %s", err)
	}
}

func run(command string) error {
	switch command {
	case "version":
		fmt.Fprintf(os.Stdout, "Astroduel %s\n", Version)
		return nil
	case "help":
		fmt.Fprint(os.Stdout, help())
		return nil
	case "migrate", "serve", "recalculate", "leaderboard", "dev:fixtures":
	default:
		fmt.Fprint(os.Stderr, help())
		os.Exit(1)
	}

	conf, err := config.NewFromUserConfigDir()
	if err != nil {
		return err
	}

	if command == "migrate" {
		return migrateUp(conf.DBPath)
	}

	b, err := back.New("sqlite3", conf.DBPath, conf.RatingEnv())
	if err != nil {
		return err
	}

	return util.ConcatErrors([]error{runWithBack(command, b, conf), b.Close()})
}

func runWithBack(command string, b *back.Back, conf *config.Config) error {
	switch command {
	case "serve":
		return serve(b, conf)
	case "recalculate":
		return b.RecalculateAllRatings()
	case "leaderboard":
		return printLeaderboard(b)
	case "dev:fixtures":
		return b.LoadFixtures()
	}

	return nil
}

func printLeaderboard(b *back.Back) error {
	players, err := b.ListPlayersRanked()
	if err != nil {
		return err
	}

	for k, v := range players {
		fmt.Fprintf(
			os.Stdout, "%3d. %-20s %7.2f ~ %5.2f (%.2f)\n",
			k+1, v.Name, v.Rating, v.Deviation, v.TrueSkill().Exposure(),
		)
	}

	return nil
}

func help() string {
	return fmt.Sprintf(`
Astroduel keeps the TrueSkill ladder of a local multiplayer arena game.

Usage: %[1]s COMMAND [ARGS…]

COMMANDS
    dev:fixtures create default data for quick testing during development
    help         display this help
    leaderboard  display every player, best rating first
    migrate      create or upgrade the database schema
    recalculate  recompute every rating from the match history
    serve        start the Discord bot and the JSON API
    version      display the current version
`,
		os.Args[0],
	)
}
