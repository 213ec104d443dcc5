package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DT_KEY_ID", "DT_SECRET", "DISCORD_BOT_TOKEN", "DISCORD_CHANNEL_ID",
		"ANTHROPIC_API_KEY", "GOOGLE_API_KEY", "AI_PROVIDER", "ROAMPET_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	// .env is read from the working directory
	t.Chdir(t.TempDir())
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Pet.StatePath != "state.json" || cfg.Items.Lifetime != 30*time.Second {
		t.Errorf("unexpected defaults: %+v", cfg.Pet)
	}
	if cfg.Needs.Hunger != 0.5 || cfg.Needs.Bed != 30 {
		t.Errorf("needs defaults: %+v", cfg.Needs)
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("level = %v", cfg.SlogLevel())
	}
}

func TestLoadYAMLAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "roampet.yaml")
	yaml := `
pet:
  scale: 2
  stats_interval: 10s
needs:
  hunger: 1.5
sensors:
  key_id: from-file
  secret: file-secret
  temperature:
    project: p1
    device: t1
    key_id: temp-key
  co2:
    project: p1
    device: c1
  interval: 30s
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DT_KEY_ID", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Pet.Scale != 2 || cfg.Pet.StatsInterval != 10*time.Second {
		t.Errorf("pet = %+v", cfg.Pet)
	}
	if cfg.Needs.Hunger != 1.5 || cfg.Needs.Sleep != 0.4 {
		t.Errorf("needs = %+v", cfg.Needs)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("level = %v", cfg.SlogLevel())
	}

	temp, co2, door := cfg.Devices()
	if temp.KeyID != "temp-key" || temp.Secret != "file-secret" {
		t.Errorf("temp = %+v", temp)
	}
	if co2.KeyID != "from-env" {
		t.Errorf("co2 key = %q, want env override", co2.KeyID)
	}
	if door.Configured() {
		t.Error("door should be unconfigured")
	}
}

func TestDotEnv(t *testing.T) {
	clearEnv(t)
	if err := os.WriteFile(".env", []byte("# secrets\nDT_SECRET=\"quoted\"\nDISCORD_BOT_TOKEN=tok\nDISCORD_CHANNEL_ID=chan\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load("missing.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sensors.Secret != "quoted" || cfg.Discord.BotToken != "tok" {
		t.Errorf("dotenv not applied: %+v %+v", cfg.Sensors, cfg.Discord)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"zero scale", func(c *Config) { c.Pet.Scale = 0 }},
		{"zero stats interval", func(c *Config) { c.Pet.StatsInterval = 0 }},
		{"negative lifetime", func(c *Config) { c.Items.Lifetime = -time.Second }},
		{"zero tps", func(c *Config) { c.Window.TPS = 0 }},
		{"token without channel", func(c *Config) { c.Discord.BotToken = "x" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mod(cfg)
			if err := validate(cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
	if err := validate(defaults()); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}
