package item

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/moorebrett0/roampet/internal/geom"
)

// LowThreshold is the need level at or below which spawns target that need.
const LowThreshold = 20.0

// Levels is the current value of each need, as seen by the spawner.
type Levels struct {
	Hunger float64
	Sleep  float64
	Water  float64
}

// Config sizes and times spawned items.
type Config struct {
	Lifetime time.Duration
	Width    float64
	Height   float64
	ScreenW  float64
	ScreenH  float64
}

// Spawner creates items, expires them and answers collision queries.
type Spawner struct {
	pools  Pools
	cfg    Config
	rng    *rand.Rand
	items  []*Instance
	nextID int
}

// NewSpawner creates a spawner drawing assets from pools.
func NewSpawner(pools Pools, cfg Config, rng *rand.Rand) *Spawner {
	return &Spawner{pools: pools, cfg: cfg, rng: rng}
}

// Choose picks the category to spawn for the given needs.
// The lowest need wins when any is at or below LowThreshold; ties go hunger, water, sleep.
func (s *Spawner) Choose(l Levels) Kind {
	candidates := []struct {
		kind  Kind
		level float64
	}{
		{Food, l.Hunger},
		{Drink, l.Water},
		{Bed, l.Sleep},
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.level < best.level {
			best = c
		}
	}
	if best.level <= LowThreshold {
		return best.kind
	}
	return Kinds[s.rng.Intn(len(Kinds))]
}

// Trigger spawns exactly one item, or none when the chosen pool is empty.
func (s *Spawner) Trigger(l Levels, now time.Time) (*Instance, bool) {
	kind := s.Choose(l)
	pool := s.pools[kind]
	if len(pool) == 0 {
		slog.Debug("item: empty pool, skipping spawn", "kind", kind)
		return nil, false
	}

	maxX := s.cfg.ScreenW - s.cfg.Width
	if maxX < 0 {
		maxX = 0
	}
	y := s.cfg.ScreenH - s.cfg.Height
	if y < 0 {
		y = 0
	}

	s.nextID++
	inst := &Instance{
		ID:        s.nextID,
		Kind:      kind,
		Asset:     pool[s.rng.Intn(len(pool))],
		Bounds:    geom.Rect{X: s.rng.Float64() * maxX, Y: y, W: s.cfg.Width, H: s.cfg.Height},
		SpawnedAt: now,
	}
	s.items = append(s.items, inst)
	slog.Info("item: spawned", "kind", kind, "asset", inst.Asset, "x", int(inst.Bounds.X))
	return inst, true
}

// Expire removes and returns items older than the configured lifetime.
func (s *Spawner) Expire(now time.Time) []*Instance {
	var expired []*Instance
	kept := s.items[:0]
	for _, it := range s.items {
		if it.Expired(now, s.cfg.Lifetime) {
			expired = append(expired, it)
			continue
		}
		kept = append(kept, it)
	}
	s.items = kept
	return expired
}

// Remove deletes the item with the given id.
func (s *Spawner) Remove(id int) bool {
	for i, it := range s.items {
		if it.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// Collide returns the first live item overlapping pet, or nil.
func (s *Spawner) Collide(pet geom.Rect) *Instance {
	for _, it := range s.items {
		if CheckCollision(pet, it.Bounds) {
			return it
		}
	}
	return nil
}

// CheckCollision is an axis-aligned bounding box test requiring positive overlap area.
func CheckCollision(pet, item geom.Rect) bool {
	return pet.Intersects(item)
}

// Items returns a copy of the live items.
func (s *Spawner) Items() []Instance {
	out := make([]Instance, len(s.items))
	for i, it := range s.items {
		out[i] = *it
	}
	return out
}

// Len returns the number of live items.
func (s *Spawner) Len() int { return len(s.items) }
