package pet

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/moorebrett0/roampet/internal/item"
	"github.com/moorebrett0/roampet/internal/sensor"
)

// Needs holds the pet's three bounded resources. 100 = fully satisfied, 0 = depleted.
type Needs struct {
	Hunger float64 `json:"hunger"`
	Sleep  float64 `json:"sleep"`
	Water  float64 `json:"water"`
}

// Rates controls decay per stats tick and the gain from each item.
type Rates struct {
	Hunger float64 `yaml:"hunger"`
	Sleep  float64 `yaml:"sleep"`
	Water  float64 `yaml:"water"`

	// Extra decay when the environment is off
	CO2Sleep   float64 `yaml:"co2_sleep"`
	TempHunger float64 `yaml:"temp_hunger"`
	TempWater  float64 `yaml:"temp_water"`
	DoorHunger float64 `yaml:"door_hunger"`
	DoorWater  float64 `yaml:"door_water"`

	// Item restores
	Food  float64 `yaml:"food"`
	Drink float64 `yaml:"drink"`
	Bed   float64 `yaml:"bed"`
}

// Environment thresholds shared by decay and mood.
const (
	CO2Limit = 1000.0
	TempMin  = 18.0
	TempMax  = 28.0
)

// DefaultNeeds is a fully satisfied pet.
func DefaultNeeds() Needs {
	return Needs{Hunger: 100, Sleep: 100, Water: 100}
}

// DefaultRates returns the stock decay and restore amounts.
func DefaultRates() Rates {
	return Rates{
		Hunger:     0.5,
		Sleep:      0.4,
		Water:      0.3,
		CO2Sleep:   0.3,
		TempHunger: 0.2,
		TempWater:  0.3,
		DoorHunger: 0.2,
		DoorWater:  0.2,
		Food:       20,
		Drink:      20,
		Bed:        30,
	}
}

// Tick applies one round of decay for the given environment.
func (n *Needs) Tick(env sensor.Environment, r Rates) {
	hunger, sleep, water := r.Hunger, r.Sleep, r.Water

	if env.CO2PPM > CO2Limit {
		sleep += r.CO2Sleep
	}
	if env.TempC < TempMin || env.TempC > TempMax {
		hunger += r.TempHunger
		water += r.TempWater
	}
	if env.DoorOpen() {
		hunger += r.DoorHunger
		water += r.DoorWater
	}

	n.Hunger -= hunger
	n.Sleep -= sleep
	n.Water -= water
	n.clamp()
}

// Restore raises the need matching an item kind.
func (n *Needs) Restore(k item.Kind, r Rates) {
	switch k {
	case item.Food:
		n.Hunger += r.Food
	case item.Drink:
		n.Water += r.Drink
	case item.Bed:
		n.Sleep += r.Bed
	}
	n.clamp()
}

// Depleted reports whether any need has reached zero.
func (n Needs) Depleted() bool {
	return n.Hunger <= 0 || n.Sleep <= 0 || n.Water <= 0
}

// Lowest returns the smallest of the three needs.
func (n Needs) Lowest() float64 {
	return min(n.Hunger, n.Sleep, n.Water)
}

// Levels converts to the spawner's view.
func (n Needs) Levels() item.Levels {
	return item.Levels{Hunger: n.Hunger, Sleep: n.Sleep, Water: n.Water}
}

func (n *Needs) clamp() {
	n.Hunger = clamp(n.Hunger)
	n.Sleep = clamp(n.Sleep)
	n.Water = clamp(n.Water)
}

// Save writes the needs to disk atomically (write tmp, then rename).
func (n Needs) Save(path string) error {
	data, err := json.MarshalIndent(n, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal needs: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write tmp needs: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename needs: %w", err)
	}
	return nil
}

// LoadNeeds reads needs from disk. A missing file yields defaults and no error;
// an unreadable or malformed file yields defaults and the error.
func LoadNeeds(path string) (Needs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultNeeds(), nil
		}
		return DefaultNeeds(), fmt.Errorf("read needs: %w", err)
	}

	// Absent fields keep their default value
	n := DefaultNeeds()
	if err := json.Unmarshal(data, &n); err != nil {
		return DefaultNeeds(), fmt.Errorf("unmarshal needs: %w", err)
	}
	n.clamp()
	return n, nil
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
