package bot

import (
	"bytes"
	"fmt"
	"log"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

// Discord refuses messages longer than this.
const maxMessageLength = 2000

// channelWriter outputs messages to a Discord channel (or private message)
// when flushed, it can be reused right after flushing to send a new message.
type channelWriter struct {
	channelID string
	dg        *discordgo.Session
	buf       bytes.Buffer

	debugInfo string
}

func newChannelWriter(dg *discordgo.Session, channelID string) *channelWriter {
	if channelID == "" {
		log.Print("warning: skipping creating writer for empty Discord channel ID")
		return nil
	}

	return &channelWriter{
		dg:        dg,
		channelID: channelID,
		debugInfo: fmt.Sprintf("<to chan %s>", channelID),
	}
}

func (w *channelWriter) Write(p []byte) (int, error) {
	if w == nil {
		return 0, nil
	}

	return w.buf.Write(p)
}

func (w *channelWriter) Reset() {
	if w == nil {
		return
	}

	w.buf.Reset()
}

func (w *channelWriter) Flush() error {
	if w == nil || w.buf.Len() <= 0 {
		return nil
	}

	content := truncateMessage(w.buf.String())
	_, err := w.dg.ChannelMessageSend(w.channelID, content)
	log.Printf("info: %s: %s", w.debugInfo, content)

	w.buf.Reset()
	return err
}

func truncateMessage(str string) string {
	if len(str) <= maxMessageLength {
		return str
	}

	const ellipsis = "\n…"
	end := maxMessageLength - len(ellipsis)
	for end > 0 && !utf8.RuneStart(str[end]) {
		end--
	}

	return str[:end] + ellipsis
}
