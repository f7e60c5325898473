package config

import (
	"astroduel/internal/trueskill"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultDBPath        = "./astroduel.db"
	DefaultWebListenAddr = "127.0.0.1:3001"
	// DefaultWebWriteRate is the number of write requests per second the web
	// API accepts.
	DefaultWebWriteRate = 2.0
)

type Config struct {
	// DBPath is the SQLite database file.
	DBPath string

	WebListenAddr string
	WebWriteRate  float64

	// DiscordListenIDs is a list of channel ID where the bot will listen and
	// accept commands. PMs are always listened to.
	DiscordListenIDs []string

	// Who is allowed to remove players and matches, and use `!dev` commands.
	DiscordAdminUserIDs []string

	DiscordToken string

	// Rating parameters, changing them requires a full recalculation.
	RatingMu, RatingSigma, DrawProbability float64
}

func NewFromUserConfigDir() (*Config, error) {
	c := &Config{}
	if err := c.ReloadFromUserConfigDir(); err != nil {
		return nil, err
	}

	return c, nil
}

// RatingEnv returns the rating parameters to hand to the back.
func (c *Config) RatingEnv() trueskill.Env {
	return trueskill.NewEnv(c.RatingMu, c.RatingSigma, c.DrawProbability)
}

func (c *Config) setDefaults() {
	if c.DBPath == "" {
		c.DBPath = DefaultDBPath
	}
	if c.WebListenAddr == "" {
		c.WebListenAddr = DefaultWebListenAddr
	}
	if c.WebWriteRate <= 0 {
		c.WebWriteRate = DefaultWebWriteRate
	}
	if c.RatingMu == 0 {
		c.RatingMu = trueskill.DefaultMu
	}
	if c.RatingSigma <= 0 {
		c.RatingSigma = trueskill.DefaultSigma
	}
	if !(c.DrawProbability >= 0 && c.DrawProbability < 1) {
		log.Printf("warning: ignoring invalid draw probability %f, draws are disabled", c.DrawProbability)
		c.DrawProbability = 0
	}
}

func (c *Config) expandFromEnv() {
	vars := []struct {
		src string
		dst *string
	}{
		{"ASTRODUEL_DISCORD_TOKEN", &c.DiscordToken},
		{"ASTRODUEL_DB_PATH", &c.DBPath},
		{"ASTRODUEL_WEB_ADDR", &c.WebListenAddr},
	}

	for _, v := range vars {
		if str := os.Getenv(v.src); str != "" {
			*v.dst = str
		}
	}

	if str := os.Getenv("ASTRODUEL_DRAW_PROBABILITY"); str != "" {
		p, err := strconv.ParseFloat(str, 64)
		if err != nil || p < 0 || p >= 1 {
			log.Printf("warning: ignoring invalid ASTRODUEL_DRAW_PROBABILITY %q", str)
			return
		}
		c.DrawProbability = p
	}
}

func (c *Config) ReloadFromUserConfigDir() error {
	defer c.setDefaults()
	defer c.expandFromEnv()

	path, err := getOrCreateUserConfigPath()
	if err != nil {
		return err
	}
	log.Printf("debug: reading conf from %s", path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		*c = Config{}
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	*c = Config{}
	return json.NewDecoder(f).Decode(c)
}

func getOrCreateUserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(configDir, "astroduel")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}

	return filepath.Join(dir, "config.json"), nil
}

func (c *Config) Write() error {
	path, err := getOrCreateUserConfigPath()
	if err != nil {
		return err
	}
	log.Printf("debug: writing conf to %s", path)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "    ")
	if err := enc.Encode(c); err != nil {
		if err2 := f.Close(); err2 != nil {
			return fmt.Errorf("unable to close file (%s) after error: %w", err2, err)
		}

		return err
	}

	return f.Close()
}

// IsAdmin returns true if the Discord user may run admin commands.
func (c *Config) IsAdmin(discordUserID string) bool {
	for _, v := range c.DiscordAdminUserIDs {
		if v == discordUserID {
			return true
		}
	}

	return false
}

// ListensTo returns true if the bot should accept commands from a channel.
func (c *Config) ListensTo(channelID string) bool {
	for _, v := range c.DiscordListenIDs {
		if v == channelID {
			return true
		}
	}

	return false
}
