package brain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/moorebrett0/roampet/internal/sensor"
)

// maxRemark caps the speech bubble length in runes.
const maxRemark = 80

// Brain turns the pet's situation into a short speech bubble line.
type Brain struct {
	provider Provider

	// Sliding-window rate limiter
	mu      sync.Mutex
	window  []time.Time
	rateMax int
	rateDur time.Duration
	now     func() time.Time
}

// Config for creating a Brain.
type Config struct {
	// Claude
	ClaudeAPIKey string
	ClaudeModel  string

	// Gemini
	GeminiAPIKey string
	GeminiModel  string

	// Which provider to force ("claude", "gemini", or "" for auto-detect)
	Provider string

	MaxTokens  int64
	RateLimit  int
	RateWindow time.Duration
}

// Situation is what the pet is going through right now.
type Situation struct {
	Mood   string
	State  string
	Hunger float64
	Sleep  float64
	Water  float64
	Env    sensor.Environment
}

// New creates a Brain. Returns nil if no API key is configured.
func New(ctx context.Context, cfg Config) *Brain {
	provider := newProvider(ctx, cfg)
	if provider == nil {
		slog.Info("brain: no API key configured, using canned remarks")
		return nil
	}
	return newWithProvider(provider, cfg.RateLimit, cfg.RateWindow)
}

func newWithProvider(p Provider, rateMax int, rateDur time.Duration) *Brain {
	return &Brain{
		provider: p,
		rateMax:  rateMax,
		rateDur:  rateDur,
		now:      time.Now,
	}
}

// newProvider auto-detects or forces the AI provider.
func newProvider(ctx context.Context, cfg Config) Provider {
	pick := cfg.Provider

	// Auto-detect if not forced
	if pick == "" {
		switch {
		case cfg.ClaudeAPIKey != "":
			pick = "claude"
		case cfg.GeminiAPIKey != "":
			pick = "gemini"
		}
	}

	switch pick {
	case "claude":
		if cfg.ClaudeAPIKey == "" {
			slog.Error("brain: AI_PROVIDER=claude but ANTHROPIC_API_KEY is not set")
			return nil
		}
		slog.Info("brain: using claude", "model", cfg.ClaudeModel)
		return newClaudeProvider(cfg.ClaudeAPIKey, cfg.ClaudeModel, cfg.MaxTokens)
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			slog.Error("brain: AI_PROVIDER=gemini but GOOGLE_API_KEY is not set")
			return nil
		}
		slog.Info("brain: using gemini", "model", cfg.GeminiModel)
		p, err := newGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.MaxTokens)
		if err != nil {
			slog.Error("brain: failed to create gemini provider", "err", err)
			return nil
		}
		return p
	default:
		return nil
	}
}

// Remark returns a one-line remark for the situation. A nil Brain, a rate-limited
// call or a provider failure all fall back to a canned line.
func (b *Brain) Remark(ctx context.Context, s Situation) string {
	if b == nil {
		return CannedRemark(s.Mood)
	}
	if !b.rateAllow() {
		slog.Debug("brain: rate limited, using canned remark")
		return CannedRemark(s.Mood)
	}

	resp, err := b.provider.Send(ctx, systemPrompt, []Message{{Role: "user", Text: describe(s)}})
	if err != nil {
		slog.Warn("brain: AI API error", "err", err)
		return CannedRemark(s.Mood)
	}

	text := tidy(resp.Text)
	if text == "" {
		return CannedRemark(s.Mood)
	}
	return text
}

const systemPrompt = `You are a tiny desktop pet who roams around the bottom of the user's screen.
You feel the room through sensors: temperature, CO2 and whether the door is open.
Reply with ONE short line (under 12 words), lowercase, in character. No emoji, no quotes.`

func describe(s Situation) string {
	return fmt.Sprintf(`Mood: %s
Doing: %s
Hunger: %.0f/100, Sleep: %.0f/100, Water: %.0f/100 (100 = satisfied)
Room: %s
Say something.`,
		s.Mood, s.State, s.Hunger, s.Sleep, s.Water, sensor.FormatEnvironment(s.Env))
}

// tidy keeps the first non-empty line, unquoted and capped.
func tidy(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.Trim(strings.TrimSpace(line), `"'`)
		if line == "" {
			continue
		}
		if r := []rune(line); len(r) > maxRemark {
			line = string(r[:maxRemark-1]) + "…"
		}
		return line
	}
	return ""
}

var canned = map[string]string{
	"dizzy":           "the air is so thick in here... open a window?",
	"too hot":         "it's roasting. i'm melting.",
	"too cold":        "brr. somebody turn up the heat.",
	"door open":       "hey, the door's open!",
	"needs attention": "psst. i could use a snack. or a nap.",
	"content":         "just vibing.",
}

// CannedRemark returns the fixed line for a mood.
func CannedRemark(mood string) string {
	if r, ok := canned[mood]; ok {
		return r
	}
	return canned["content"]
}

// --- Sliding-window rate limiter ---

func (b *Brain) rateAllow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	cutoff := now.Add(-b.rateDur)

	// Remove expired entries
	valid := b.window[:0]
	for _, t := range b.window {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	b.window = valid

	if len(b.window) >= b.rateMax {
		return false
	}

	b.window = append(b.window, now)
	return true
}
