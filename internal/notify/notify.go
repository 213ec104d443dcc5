package notify

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/moorebrett0/roampet/internal/pet"
	"github.com/moorebrett0/roampet/internal/sensor"
)

// MessageSender can send embeds to a channel.
type MessageSender interface {
	SendEmbed(channelID string, embed *discordgo.MessageEmbed)
}

// Status is what the notifier looks at on each stats tick.
type Status struct {
	Needs pet.Needs
	Env   sensor.Environment
	Mood  pet.Mood
}

// alert is one reason to ping the owner.
type alert struct {
	key  string
	text string
}

// Notifier sends alerts when the room or the pet needs attention, at most once
// per cooldown for each reason.
type Notifier struct {
	sender    MessageSender
	channelID string
	cooldown  time.Duration

	mu       sync.Mutex
	lastSent map[string]time.Time
	lastMood pet.Mood

	now      func() time.Time
	dispatch func(func()) // runs sends off the caller's goroutine
}

// New creates a notifier. A nil sender disables it.
func New(sender MessageSender, channelID string, cooldown time.Duration) *Notifier {
	return &Notifier{
		sender:    sender,
		channelID: channelID,
		cooldown:  cooldown,
		lastSent:  make(map[string]time.Time),
		now:       time.Now,
		dispatch:  func(f func()) { go f() },
	}
}

// Check evaluates s and sends any alerts that are off cooldown.
func (n *Notifier) Check(s Status) {
	if n == nil || n.sender == nil || n.channelID == "" {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.now()
	if s.Mood != n.lastMood {
		slog.Debug("notify: mood changed", "from", n.lastMood, "to", s.Mood)
		n.lastMood = s.Mood
	}

	for _, a := range checkDistress(s) {
		if last, ok := n.lastSent[a.key]; ok && now.Sub(last) < n.cooldown {
			continue
		}
		n.lastSent[a.key] = now
		embed := AlertEmbed(a.text, s, now)
		n.dispatch(func() { n.sender.SendEmbed(n.channelID, embed) })
		slog.Info("notify: alert sent", "reason", a.key)
	}
}

func checkDistress(s Status) []alert {
	var out []alert
	if s.Env.CO2PPM > pet.CO2Limit {
		out = append(out, alert{"air", fmt.Sprintf("CO2 is at %.0f ppm. i'm getting dizzy... open a window?", s.Env.CO2PPM)})
	}
	if s.Env.TempC > pet.TempMax || s.Env.TempC < pet.TempMin {
		out = append(out, alert{"temperature", fmt.Sprintf("it's %.1f°C in here. not my favorite.", s.Env.TempC)})
	}
	if s.Env.DoorOpen() {
		out = append(out, alert{"door", "the door is open!"})
	}
	if s.Needs.Depleted() {
		out = append(out, alert{"depleted", fmt.Sprintf("i'm running on empty. hunger %.0f, sleep %.0f, water %.0f.",
			s.Needs.Hunger, s.Needs.Sleep, s.Needs.Water)})
	}
	return out
}
