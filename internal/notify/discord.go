package notify

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// Bot posts to Discord through the REST API. No gateway connection is kept.
type Bot struct {
	session *discordgo.Session
}

// NewBot creates a bot for the given token.
func NewBot(token string) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("invalid bot token: %w", err)
	}
	return &Bot{session: session}, nil
}

// SendEmbed sends an embed to a channel.
func (b *Bot) SendEmbed(channelID string, embed *discordgo.MessageEmbed) {
	if _, err := b.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		slog.Error("notify: send embed failed", "err", err)
	}
}
