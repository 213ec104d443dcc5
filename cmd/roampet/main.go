package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moorebrett0/roampet/internal/app"
	"github.com/moorebrett0/roampet/internal/brain"
	"github.com/moorebrett0/roampet/internal/config"
	"github.com/moorebrett0/roampet/internal/desktop"
	"github.com/moorebrett0/roampet/internal/item"
	"github.com/moorebrett0/roampet/internal/journal"
	"github.com/moorebrett0/roampet/internal/monitor"
	"github.com/moorebrett0/roampet/internal/notify"
	"github.com/moorebrett0/roampet/internal/pet"
	"github.com/moorebrett0/roampet/internal/sensor"
)

func main() {
	configPath := flag.String("config", "roampet.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Needs
	needs, err := pet.LoadNeeds(cfg.Pet.StatePath)
	if err != nil {
		slog.Warn("state file unusable, starting fresh", "path", cfg.Pet.StatePath, "err", err)
	}
	slog.Info("needs loaded", "hunger", needs.Hunger, "sleep", needs.Sleep, "water", needs.Water)

	// Sensors
	temp, co2, door := cfg.Devices()
	var hostSrc sensor.TemperatureSource
	if cfg.Sensors.HostTemperature {
		hostSrc = sensor.HostSource{Match: cfg.Sensors.HostMatch}
	}
	gw := sensor.NewGateway(sensor.NewClient(cfg.Sensors.BaseURL, cfg.Sensors.Timeout), temp, co2, door, hostSrc)
	mon := monitor.New(gw, cfg.Sensors.Interval, cfg.Sensors.Timeout, nil)
	go mon.Run(ctx)

	// Journal
	var jr *journal.Journal
	if cfg.Journal.Path != "" {
		jr, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			slog.Warn("journal disabled", "err", err)
		}
	}
	defer jr.Close()

	// Discord alerts
	var notifier *notify.Notifier
	if cfg.Discord.BotToken != "" {
		bot, err := notify.NewBot(cfg.Discord.BotToken)
		if err != nil {
			slog.Error("discord disabled", "err", err)
		} else {
			notifier = notify.New(bot, cfg.Discord.ChannelID, cfg.Discord.AlertCooldown)
			slog.Info("discord alerts enabled", "channel", cfg.Discord.ChannelID)
		}
	}

	// Brain
	b := brain.New(ctx, brain.Config{
		ClaudeAPIKey: cfg.Claude.APIKey,
		ClaudeModel:  cfg.Claude.Model,
		GeminiAPIKey: cfg.Gemini.APIKey,
		GeminiModel:  cfg.Gemini.Model,
		Provider:     cfg.AI.Provider,
		MaxTokens:    cfg.Claude.MaxTokens,
		RateLimit:    cfg.Claude.RateLimit,
		RateWindow:   cfg.Claude.RateWindow,
	})

	// Simulation
	screenW, screenH := desktop.ScreenSize()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	mcfg := pet.DefaultMachineConfig(float64(screenW), float64(screenH))
	mcfg.Scale = cfg.Pet.Scale
	mcfg.SpriteW = cfg.Pet.SpriteSize * cfg.Pet.Scale
	mcfg.SpriteH = cfg.Pet.SpriteSize * cfg.Pet.Scale
	mcfg.Step = cfg.Pet.MoveInterval
	mcfg.WalkSpeed = cfg.Pet.WalkSpeed
	mcfg.FallSpeed = cfg.Pet.FallSpeed
	mcfg.JumpDuration = cfg.Pet.JumpDuration
	mcfg.ThrowDuration = cfg.Pet.ThrowDuration
	mcfg.LandingDelay = cfg.Pet.LandingDelay
	mcfg.ActivityDuration = cfg.Pet.ActivityDuration
	mcfg.HitDuration = cfg.Pet.HitDuration
	machine := pet.NewMachine(mcfg, rng)

	itemSize := cfg.Items.Size * cfg.Pet.Scale
	spawner := item.NewSpawner(item.LoadPools(cfg.Assets.Dir), item.Config{
		Lifetime: cfg.Items.Lifetime,
		Width:    itemSize,
		Height:   itemSize,
		ScreenW:  float64(screenW),
		ScreenH:  float64(screenH),
	}, rng)

	deps := app.Deps{Env: mon}
	if jr != nil {
		deps.Journal = jr
	}
	if notifier != nil {
		deps.Alerts = notifier
	}
	if b != nil {
		deps.Brain = b
	}
	a := app.New(ctx, app.Options{
		StatePath:     cfg.Pet.StatePath,
		Rates:         cfg.Needs,
		MoveInterval:  cfg.Pet.MoveInterval,
		StatsInterval: cfg.Pet.StatsInterval,
		SpawnInterval: cfg.Items.SpawnInterval,
	}, needs, machine, spawner, deps)
	defer a.Close()

	slog.Info("roampet running", "screen", [2]int{screenW, screenH}, "assets", cfg.Assets.Dir)
	if err := desktop.Run(desktop.New(ctx, a, cfg.Assets.Dir, screenW, screenH), cfg.Window.TPS); err != nil {
		slog.Error("overlay stopped", "err", err)
	}
}
