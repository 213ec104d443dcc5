package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/moorebrett0/roampet/internal/pet"
	"github.com/moorebrett0/roampet/internal/sensor"
)

// progressBar renders a visual bar like ████████░░ 78%
func progressBar(value float64, width int) string {
	filled := int(value / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	empty := width - filled
	return fmt.Sprintf("%s%s %.0f%%", strings.Repeat("█", filled), strings.Repeat("░", empty), value)
}

// moodColor returns a Discord embed color for the mood.
func moodColor(mood pet.Mood) int {
	switch mood {
	case pet.MoodContent:
		return 0x57F287 // green
	case pet.MoodNeedy:
		return 0xFEE75C // yellow
	case pet.MoodDoorOpen:
		return 0xEB459E // fuchsia
	case pet.MoodHot, pet.MoodCold:
		return 0xE67E22 // orange
	case pet.MoodDizzy:
		return 0xED4245 // red
	default:
		return 0x5865F2
	}
}

func moodEmoji(mood pet.Mood) string {
	switch mood {
	case pet.MoodContent:
		return "\U0001F60C"
	case pet.MoodNeedy:
		return "\U0001F97A"
	case pet.MoodDoorOpen:
		return "\U0001F6AA"
	case pet.MoodHot:
		return "\U0001F975"
	case pet.MoodCold:
		return "\U0001F976"
	case pet.MoodDizzy:
		return "\U0001F635"
	default:
		return ""
	}
}

// AlertEmbed builds the message for one alert with the pet's current status.
func AlertEmbed(text string, s Status, at time.Time) *discordgo.MessageEmbed {
	needs := fmt.Sprintf(
		"hunger %s\nsleep  %s\nwater  %s",
		progressBar(s.Needs.Hunger, 10),
		progressBar(s.Needs.Sleep, 10),
		progressBar(s.Needs.Water, 10),
	)

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s %s", moodEmoji(s.Mood), s.Mood),
		Description: text,
		Color:       moodColor(s.Mood),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Needs", Value: "```\n" + needs + "\n```", Inline: false},
			{Name: "Room", Value: sensor.FormatEnvironment(s.Env), Inline: false},
		},
		Timestamp: at.Format(time.RFC3339),
	}
}
