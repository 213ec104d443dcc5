package app

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/moorebrett0/roampet/internal/brain"
	"github.com/moorebrett0/roampet/internal/geom"
	"github.com/moorebrett0/roampet/internal/item"
	"github.com/moorebrett0/roampet/internal/journal"
	"github.com/moorebrett0/roampet/internal/notify"
	"github.com/moorebrett0/roampet/internal/pet"
	"github.com/moorebrett0/roampet/internal/sensor"
)

// EnvSource supplies the latest effective sensor values without blocking.
type EnvSource interface {
	Environment() sensor.Environment
}

// Recorder stores stats ticks.
type Recorder interface {
	Record(journal.Entry)
}

// Alerter is told about every stats tick and decides whether to ping the owner.
type Alerter interface {
	Check(notify.Status)
}

// Remarker produces the speech bubble line.
type Remarker interface {
	Remark(ctx context.Context, s brain.Situation) string
}

// Options times the application's periodic work.
type Options struct {
	StatePath     string
	Rates         pet.Rates
	MoveInterval  time.Duration
	StatsInterval time.Duration
	SpawnInterval time.Duration
}

// Deps are the optional collaborators. Any may be nil.
type Deps struct {
	Env     EnvSource
	Journal Recorder
	Alerts  Alerter
	Brain   Remarker
}

// App owns the simulation: needs, the behavior machine, the item spawner and the
// timers that drive them. All methods must be called from one goroutine.
type App struct {
	opts    Options
	needs   pet.Needs
	machine *pet.Machine
	spawner *item.Spawner
	deps    Deps

	move  *timer
	stats *timer
	spawn *timer

	mood   pet.Mood
	env    sensor.Environment
	remark atomic.Pointer[string]

	ctx    context.Context
	cancel context.CancelFunc

	now      func() time.Time
	dispatch func(func())
}

// View is what the presentation needs to draw one frame.
type View struct {
	State     pet.State
	Position  geom.Point
	Direction float64
	Bounds    geom.Rect
	Needs     pet.Needs
	Mood      pet.Mood
	Remark    string
	Env       sensor.Environment
	Items     []item.Instance
}

// New creates the application context.
func New(ctx context.Context, opts Options, needs pet.Needs, machine *pet.Machine, spawner *item.Spawner, deps Deps) *App {
	ctx, cancel := context.WithCancel(ctx)
	a := &App{
		opts:     opts,
		needs:    needs,
		machine:  machine,
		spawner:  spawner,
		deps:     deps,
		move:     newTimer(opts.MoveInterval),
		stats:    newTimer(opts.StatsInterval),
		spawn:    newTimer(opts.SpawnInterval),
		env:      sensor.DefaultEnvironment(),
		ctx:      ctx,
		cancel:   cancel,
		now:      time.Now,
		dispatch: func(f func()) { go f() },
	}
	a.mood = pet.EvaluateMood(a.env, needs)
	canned := brain.CannedRemark(string(a.mood))
	a.remark.Store(&canned)

	machine.OnChange(func(from, to pet.State) {
		slog.Debug("app: state change", "from", from, "to", to)
	})
	return a
}

// Update advances the simulation by dt of wall time.
func (a *App) Update(dt time.Duration) {
	now := a.now()

	for i := a.move.advance(dt); i > 0; i-- {
		a.machine.Tick()
		if a.machine.State() == pet.Grabbed {
			a.checkCollision()
		}
	}

	for _, it := range a.spawner.Expire(now) {
		slog.Debug("app: item expired", "kind", it.Kind, "id", it.ID)
	}

	if a.stats.advance(dt) > 0 {
		a.statsTick(now)
	}
	if a.spawn.advance(dt) > 0 {
		a.spawner.Trigger(a.needs.Levels(), now)
	}
}

func (a *App) checkCollision() {
	it := a.spawner.Collide(a.machine.Bounds())
	if it == nil {
		return
	}
	a.needs.Restore(it.Kind, a.opts.Rates)
	a.machine.OnItemCollision(it.Kind)
	a.spawner.Remove(it.ID)
	slog.Info("app: item consumed", "kind", it.Kind,
		"hunger", a.needs.Hunger, "sleep", a.needs.Sleep, "water", a.needs.Water)
	a.save()
}

func (a *App) statsTick(now time.Time) {
	if a.deps.Env != nil {
		a.env = a.deps.Env.Environment()
	}

	a.needs.Tick(a.env, a.opts.Rates)
	if a.needs.Depleted() {
		a.machine.Hit()
	}

	mood := pet.EvaluateMood(a.env, a.needs)
	if mood != a.mood {
		slog.Info("app: mood changed", "from", a.mood, "to", mood)
		a.mood = mood
		a.refreshRemark()
	}

	a.save()

	if a.deps.Journal != nil {
		a.deps.Journal.Record(journal.Entry{
			At:     now,
			Hunger: a.needs.Hunger,
			Sleep:  a.needs.Sleep,
			Water:  a.needs.Water,
			TempC:  a.env.TempC,
			CO2PPM: a.env.CO2PPM,
			Door:   a.env.Door,
			Mood:   string(a.mood),
			State:  a.machine.State().String(),
		})
	}
	if a.deps.Alerts != nil {
		a.deps.Alerts.Check(notify.Status{Needs: a.needs, Env: a.env, Mood: a.mood})
	}

	// A hungry pet gets something right away if nothing is out
	if a.needs.Lowest() <= item.LowThreshold && a.spawner.Len() == 0 {
		a.spawner.Trigger(a.needs.Levels(), now)
	}
}

// refreshRemark shows the canned line at once and swaps in a generated one when it arrives.
func (a *App) refreshRemark() {
	canned := brain.CannedRemark(string(a.mood))
	a.remark.Store(&canned)
	if a.deps.Brain == nil {
		return
	}

	s := brain.Situation{
		Mood:   string(a.mood),
		State:  a.machine.State().String(),
		Hunger: a.needs.Hunger,
		Sleep:  a.needs.Sleep,
		Water:  a.needs.Water,
		Env:    a.env,
	}
	mood := a.mood
	a.dispatch(func() {
		text := a.deps.Brain.Remark(a.ctx, s)
		if a.ctx.Err() != nil || text == "" {
			return
		}
		slog.Debug("app: remark", "mood", mood, "text", text)
		a.remark.Store(&text)
	})
}

func (a *App) save() {
	if a.opts.StatePath == "" {
		return
	}
	if err := a.needs.Save(a.opts.StatePath); err != nil {
		slog.Warn("app: failed to save state", "err", err)
	}
}

// Grab picks the pet up when p is on it.
func (a *App) Grab(p geom.Point) bool { return a.machine.Grab(p) }

// Drag moves a grabbed pet.
func (a *App) Drag(p geom.Point) { a.machine.Drag(p) }

// Release throws a grabbed pet.
func (a *App) Release(p geom.Point) bool { return a.machine.Release(p) }

// Jump makes a roaming pet hop.
func (a *App) Jump() bool { return a.machine.Jump() }

// Needs returns the current needs.
func (a *App) Needs() pet.Needs { return a.needs }

// View returns a snapshot for drawing.
func (a *App) View() View {
	return View{
		State:     a.machine.State(),
		Position:  a.machine.Position(),
		Direction: a.machine.Direction(),
		Bounds:    a.machine.Bounds(),
		Needs:     a.needs,
		Mood:      a.mood,
		Remark:    *a.remark.Load(),
		Env:       a.env,
		Items:     a.spawner.Items(),
	}
}

// Close saves the needs and stops pending remarks.
func (a *App) Close() {
	a.cancel()
	a.save()
	slog.Info("app: state saved", "path", a.opts.StatePath)
}
