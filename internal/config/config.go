package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/moorebrett0/roampet/internal/pet"
	"github.com/moorebrett0/roampet/internal/sensor"
)

type Config struct {
	Pet     PetConfig     `yaml:"pet"`
	Needs   pet.Rates     `yaml:"needs"`
	Items   ItemsConfig   `yaml:"items"`
	Sensors SensorsConfig `yaml:"sensors"`
	Assets  AssetsConfig  `yaml:"assets"`
	Journal JournalConfig `yaml:"journal"`
	Discord DiscordConfig `yaml:"discord"`
	AI      AIConfig      `yaml:"ai"`
	Claude  ClaudeConfig  `yaml:"claude"`
	Gemini  GeminiConfig  `yaml:"gemini"`
	Window  WindowConfig  `yaml:"window"`
	Log     LogConfig     `yaml:"log"`
}

type PetConfig struct {
	StatePath     string        `yaml:"state_path"`
	Scale         float64       `yaml:"scale"`
	SpriteSize    float64       `yaml:"sprite_size"` // unscaled px, square
	MoveInterval  time.Duration `yaml:"move_interval"`
	StatsInterval time.Duration `yaml:"stats_interval"`
	WalkSpeed     float64       `yaml:"walk_speed"`
	FallSpeed     float64       `yaml:"fall_speed"`

	JumpDuration     time.Duration `yaml:"jump_duration"`
	ThrowDuration    time.Duration `yaml:"throw_duration"`
	LandingDelay     time.Duration `yaml:"landing_delay"`
	ActivityDuration time.Duration `yaml:"activity_duration"`
	HitDuration      time.Duration `yaml:"hit_duration"`
}

type ItemsConfig struct {
	Lifetime      time.Duration `yaml:"lifetime"`
	SpawnInterval time.Duration `yaml:"spawn_interval"`
	Size          float64       `yaml:"size"` // unscaled px, square
}

type SensorsConfig struct {
	BaseURL string `yaml:"base_url"`
	// Shared service account, used by any device without its own
	KeyID  string `yaml:"key_id"`
	Secret string `yaml:"secret"`

	Temperature sensor.Device `yaml:"temperature"`
	CO2         sensor.Device `yaml:"co2"`
	Door        sensor.Device `yaml:"door"`

	Interval        time.Duration `yaml:"interval"`
	Timeout         time.Duration `yaml:"timeout"`
	HostTemperature bool          `yaml:"host_temperature"` // fall back to local thermal sensors
	HostMatch       string        `yaml:"host_match"`
}

type AssetsConfig struct {
	Dir string `yaml:"dir"`
}

type JournalConfig struct {
	Path string `yaml:"path"` // empty disables the journal
}

type DiscordConfig struct {
	BotToken      string        `yaml:"bot_token"`
	ChannelID     string        `yaml:"channel_id"`
	AlertCooldown time.Duration `yaml:"alert_cooldown"`
}

type AIConfig struct {
	Provider string `yaml:"provider"` // "claude", "gemini", or "" (auto-detect)
}

type ClaudeConfig struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int64  `yaml:"max_tokens"`
	// Sliding window rate limiter
	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type WindowConfig struct {
	TPS int `yaml:"tps"`
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

func Load(path string) (*Config, error) {
	cfg := defaults()

	// Load .env file first (working dir)
	loadDotEnv(".env")

	// Load YAML config if it exists
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// No file, defaults and env vars only
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	// Env vars override config file (secrets live in .env or environment)
	overrides := map[string]*string{
		"DT_KEY_ID":          &cfg.Sensors.KeyID,
		"DT_SECRET":          &cfg.Sensors.Secret,
		"DISCORD_BOT_TOKEN":  &cfg.Discord.BotToken,
		"DISCORD_CHANNEL_ID": &cfg.Discord.ChannelID,
		"ANTHROPIC_API_KEY":  &cfg.Claude.APIKey,
		"GOOGLE_API_KEY":     &cfg.Gemini.APIKey,
		"AI_PROVIDER":        &cfg.AI.Provider,
		"ROAMPET_LOG_LEVEL":  &cfg.Log.Level,
	}
	for key, dst := range overrides {
		if env := os.Getenv(key); env != "" {
			*dst = env
		}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Devices returns the three sensor devices with the shared credentials filled in.
func (c *Config) Devices() (temp, co2, door sensor.Device) {
	fill := func(d sensor.Device) sensor.Device {
		if d.KeyID == "" {
			d.KeyID = c.Sensors.KeyID
		}
		if d.Secret == "" {
			d.Secret = c.Sensors.Secret
		}
		return d
	}
	return fill(c.Sensors.Temperature), fill(c.Sensors.CO2), fill(c.Sensors.Door)
}

// SlogLevel maps the configured level name to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadDotEnv reads a .env file and sets env vars that aren't already set.
func loadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return // no .env, that's fine
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)

		// Strip surrounding quotes
		if len(val) >= 2 {
			if (val[0] == '"' && val[len(val)-1] == '"') ||
				(val[0] == '\'' && val[len(val)-1] == '\'') {
				val = val[1 : len(val)-1]
			}
		}

		// Only set if not already in environment
		if os.Getenv(key) == "" && val != "" {
			os.Setenv(key, val)
		}
	}
}

func defaults() *Config {
	return &Config{
		Pet: PetConfig{
			StatePath:        "state.json",
			Scale:            1,
			SpriteSize:       128,
			MoveInterval:     30 * time.Millisecond,
			StatsInterval:    5 * time.Second,
			WalkSpeed:        2,
			FallSpeed:        8,
			JumpDuration:     600 * time.Millisecond,
			ThrowDuration:    800 * time.Millisecond,
			LandingDelay:     500 * time.Millisecond,
			ActivityDuration: 5 * time.Second,
			HitDuration:      1500 * time.Millisecond,
		},
		Needs: pet.DefaultRates(),
		Items: ItemsConfig{
			Lifetime:      30 * time.Second,
			SpawnInterval: 2 * time.Minute,
			Size:          64,
		},
		Sensors: SensorsConfig{
			BaseURL:  sensor.DefaultBaseURL,
			Interval: time.Minute,
			Timeout:  10 * time.Second,
		},
		Assets: AssetsConfig{
			Dir: "assets",
		},
		Discord: DiscordConfig{
			AlertCooldown: 30 * time.Minute,
		},
		Claude: ClaudeConfig{
			Model:      "claude-sonnet-4-5-20250929",
			MaxTokens:  128,
			RateLimit:  6,
			RateWindow: time.Hour,
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash",
		},
		Window: WindowConfig{
			TPS: 60,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func validate(cfg *Config) error {
	if cfg.Pet.Scale <= 0 {
		return fmt.Errorf("pet.scale must be positive, got %v", cfg.Pet.Scale)
	}
	if cfg.Pet.SpriteSize <= 0 || cfg.Items.Size <= 0 {
		return fmt.Errorf("pet.sprite_size and items.size must be positive")
	}
	intervals := map[string]time.Duration{
		"pet.move_interval":    cfg.Pet.MoveInterval,
		"pet.stats_interval":   cfg.Pet.StatsInterval,
		"items.lifetime":       cfg.Items.Lifetime,
		"items.spawn_interval": cfg.Items.SpawnInterval,
		"sensors.interval":     cfg.Sensors.Interval,
	}
	for name, d := range intervals {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if cfg.Window.TPS <= 0 {
		return fmt.Errorf("window.tps must be positive, got %d", cfg.Window.TPS)
	}
	if cfg.Discord.BotToken != "" && cfg.Discord.ChannelID == "" {
		return fmt.Errorf("discord.bot_token is set but DISCORD_CHANNEL_ID is missing")
	}
	return nil
}
