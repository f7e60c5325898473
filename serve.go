package main

import (
	"astroduel/internal/back"
	"astroduel/internal/bot"
	"astroduel/internal/config"
	"astroduel/internal/web"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

func serve(b *back.Back, conf *config.Config) error {
	done := make(chan struct{})
	signaled := make(chan os.Signal, 1)
	signal.Notify(signaled, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup

	server := web.NewServer(b, conf.WebListenAddr, conf.WebWriteRate)
	wg.Add(1)
	go server.Serve(&wg, done)

	if conf.DiscordToken != "" {
		bot, err := bot.New(b, conf)
		if err != nil {
			close(done)
			wg.Wait()
			return err
		}
		wg.Add(1)
		go bot.Serve(&wg, done)
	} else {
		log.Print("warning: no Discord token configured, the bot is disabled")
	}

	sig := <-signaled
	log.Printf("info: received signal %s", sig)

	close(done)
	wg.Wait()
	log.Print("info: shutdown complete")

	return nil
}
