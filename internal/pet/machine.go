package pet

import (
	"math"
	"math/rand"
	"time"

	"github.com/moorebrett0/roampet/internal/geom"
	"github.com/moorebrett0/roampet/internal/item"
)

// MachineConfig sizes the playfield and times the behaviors.
// Speeds and distances are in unscaled pixels; Scale is applied by the machine.
type MachineConfig struct {
	ScreenW float64
	ScreenH float64
	SpriteW float64
	SpriteH float64
	Scale   float64

	Step      time.Duration // period of one Tick
	WalkSpeed float64       // px per tick
	FallSpeed float64       // px per tick

	JumpMin, JumpMax     float64 // jump height range
	ThrowMin, ThrowMax   float64 // throw distance range
	ArcMin, ArcMax       float64 // throw apex height range
	JumpDuration         time.Duration
	ThrowDuration        time.Duration
	LandingDelay         time.Duration
	ActivityDuration     time.Duration
	HitDuration          time.Duration
	ChangeMin, ChangeMax time.Duration // state-change timer range
	JumpChance           float64       // chance a timer firing becomes a jump
}

// DefaultMachineConfig returns stock behavior for a screen of the given size.
func DefaultMachineConfig(screenW, screenH float64) MachineConfig {
	return MachineConfig{
		ScreenW:          screenW,
		ScreenH:          screenH,
		SpriteW:          128,
		SpriteH:          128,
		Scale:            1,
		Step:             30 * time.Millisecond,
		WalkSpeed:        2,
		FallSpeed:        8,
		JumpMin:          50,
		JumpMax:          150,
		ThrowMin:         100,
		ThrowMax:         300,
		ArcMin:           50,
		ArcMax:           150,
		JumpDuration:     600 * time.Millisecond,
		ThrowDuration:    800 * time.Millisecond,
		LandingDelay:     500 * time.Millisecond,
		ActivityDuration: 5 * time.Second,
		HitDuration:      1500 * time.Millisecond,
		ChangeMin:        3 * time.Second,
		ChangeMax:        8 * time.Second,
		JumpChance:       0.1,
	}
}

// trajectory is an eased flight from one point to another with an optional arc.
type trajectory struct {
	from, to geom.Point
	apex     float64 // extra height at the midpoint
	dur      time.Duration
	elapsed  time.Duration
	ease     func(float64) float64
}

func (t *trajectory) advance(dt time.Duration) (geom.Point, bool) {
	t.elapsed += dt
	p := 1.0
	if t.dur > 0 {
		p = math.Min(float64(t.elapsed)/float64(t.dur), 1)
	}
	e := t.ease(p)
	pos := geom.Point{
		X: geom.Lerp(t.from.X, t.to.X, e),
		Y: geom.Lerp(t.from.Y, t.to.Y, e) - t.apex*math.Sin(math.Pi*p),
	}
	return pos, p >= 1
}

// Machine is the pet's behavior state machine. It is not safe for concurrent use;
// the application drives it from a single loop.
type Machine struct {
	cfg MachineConfig
	rng *rand.Rand

	state   State
	inState time.Duration
	pos     geom.Point
	dir     float64 // -1 left, +1 right

	changeIn   time.Duration // until the state-change timer fires
	traj       *trajectory
	grabOffset geom.Point

	onChange func(from, to State)
}

// NewMachine creates a pet that drops in from the top of the screen.
func NewMachine(cfg MachineConfig, rng *rand.Rand) *Machine {
	if cfg.Scale <= 0 {
		cfg.Scale = 1
	}
	m := &Machine{
		cfg:   cfg,
		rng:   rng,
		state: Falling,
		dir:   1,
	}
	m.pos = geom.Point{X: m.maxX() / 2, Y: 0}
	m.changeIn = m.nextChange()
	return m
}

// OnChange registers a callback invoked after every state change.
func (m *Machine) OnChange(fn func(from, to State)) { m.onChange = fn }

// State returns the active state.
func (m *Machine) State() State { return m.state }

// Position returns the sprite's top-left corner.
func (m *Machine) Position() geom.Point { return m.pos }

// Direction returns -1 when facing left, +1 when facing right.
func (m *Machine) Direction() float64 { return m.dir }

// Bounds returns the sprite's screen rectangle.
func (m *Machine) Bounds() geom.Rect {
	return geom.Rect{X: m.pos.X, Y: m.pos.Y, W: m.cfg.SpriteW, H: m.cfg.SpriteH}
}

// Place moves the pet, clamped to the screen.
func (m *Machine) Place(p geom.Point) { m.pos = m.clamp(p) }

// Resize updates the playfield, e.g. when the monitor changes.
func (m *Machine) Resize(w, h float64) {
	m.cfg.ScreenW, m.cfg.ScreenH = w, h
	m.pos = m.clamp(m.pos)
}

func (m *Machine) maxX() float64  { return math.Max(m.cfg.ScreenW-m.cfg.SpriteW, 0) }
func (m *Machine) floor() float64 { return math.Max(m.cfg.ScreenH-m.cfg.SpriteH, 0) }

func (m *Machine) clamp(p geom.Point) geom.Point {
	return geom.Point{X: geom.Clamp(p.X, 0, m.maxX()), Y: geom.Clamp(p.Y, 0, m.floor())}
}

func (m *Machine) between(lo, hi float64) float64 {
	return (lo + m.rng.Float64()*(hi-lo)) * m.cfg.Scale
}

func (m *Machine) nextChange() time.Duration {
	span := m.cfg.ChangeMax - m.cfg.ChangeMin
	if span <= 0 {
		return m.cfg.ChangeMin
	}
	return m.cfg.ChangeMin + time.Duration(m.rng.Int63n(int64(span)+1))
}

// Tick advances the machine by one fixed step.
func (m *Machine) Tick() {
	dt := m.cfg.Step
	m.inState += dt

	switch m.state {
	case Walking:
		m.walk()
	case Falling:
		m.fall()
	case Jumping, Floating:
		m.fly(dt)
	}

	if r, ok := rules[m.state]; ok && r.hold != nil && m.inState >= r.hold(m.cfg) {
		m.enter(r.next)
	}

	m.changeIn -= dt
	if m.changeIn <= 0 {
		m.changeIn = m.nextChange()
		m.roam()
	}
}

func (m *Machine) walk() {
	m.pos.X += m.dir * m.cfg.WalkSpeed * m.cfg.Scale
	switch {
	case m.pos.X <= 0:
		m.pos.X = 0
		m.dir = 1
	case m.pos.X >= m.maxX():
		m.pos.X = m.maxX()
		m.dir = -1
	}
}

func (m *Machine) fall() {
	m.pos.Y += m.cfg.FallSpeed * m.cfg.Scale
	if m.pos.Y >= m.floor() {
		m.pos.Y = m.floor()
		m.enter(rules[Falling].next)
	}
}

func (m *Machine) fly(dt time.Duration) {
	if m.traj == nil {
		m.enter(Falling)
		return
	}
	p, done := m.traj.advance(dt)
	m.pos = m.clamp(p)
	if done {
		m.traj = nil
		m.enter(rules[m.state].next)
	}
}

// roam handles a state-change timer firing. Only a roaming pet reacts.
func (m *Machine) roam() {
	if m.state != Idle && m.state != Walking {
		return
	}
	if m.rng.Float64() < m.cfg.JumpChance {
		m.Jump()
		return
	}
	next := pick(m.rng, roamChoices)
	if next == Walking {
		m.dir = 1
		if m.rng.Intn(2) == 0 {
			m.dir = -1
		}
	}
	m.enter(next)
}

// Jump launches a vertical hop. Only a roaming pet can jump.
func (m *Machine) Jump() bool {
	if m.state != Idle && m.state != Walking {
		return false
	}
	h := m.between(m.cfg.JumpMin, m.cfg.JumpMax)
	m.traj = &trajectory{
		from: m.pos,
		to:   geom.Point{X: m.pos.X, Y: math.Max(m.pos.Y-h, 0)},
		dur:  m.cfg.JumpDuration,
		ease: geom.EaseOutQuad,
	}
	m.enter(Jumping)
	return true
}

// Grab picks the pet up if p is on it. Autonomous motion stops until Release.
func (m *Machine) Grab(p geom.Point) bool {
	if !m.Bounds().Contains(p) {
		return false
	}
	m.traj = nil
	m.grabOffset = p.Sub(m.pos)
	m.enter(Grabbed)
	return true
}

// Drag moves a grabbed pet so the grab point follows the pointer.
func (m *Machine) Drag(p geom.Point) {
	if m.state != Grabbed {
		return
	}
	m.pos = m.clamp(p.Sub(m.grabOffset))
}

// Release throws the pet away from the pointer side: a pointer right of the
// pet's center throws right, left of center throws left.
func (m *Machine) Release(p geom.Point) bool {
	if m.state != Grabbed {
		return false
	}
	m.Drag(p)

	m.dir = 1
	if p.X < m.Bounds().Center().X {
		m.dir = -1
	}

	dist := m.between(m.cfg.ThrowMin, m.cfg.ThrowMax)
	m.traj = &trajectory{
		from: m.pos,
		to:   m.clamp(geom.Point{X: m.pos.X + m.dir*dist, Y: m.pos.Y}),
		apex: m.between(m.cfg.ArcMin, m.cfg.ArcMax),
		dur:  m.cfg.ThrowDuration,
		ease: geom.EaseInOutQuad,
	}
	m.enter(Floating)
	return true
}

// OnItemCollision starts the activity matching k. Locked states are not interrupted.
func (m *Machine) OnItemCollision(k item.Kind) bool {
	next, ok := activityFor[k]
	if !ok || m.state.Locked() {
		return false
	}
	m.traj = nil
	m.enter(next)
	return true
}

// Hit plays the distress state. Locked and grabbed pets are left alone.
func (m *Machine) Hit() bool {
	if m.state.Locked() || m.state == Grabbed || m.state == Hit {
		return false
	}
	m.enter(Hit)
	return true
}

func (m *Machine) enter(s State) {
	// A pet settling mid-air falls instead
	if (s == Idle || s == Walking) && m.pos.Y < m.floor() {
		s = Falling
	}
	prev := m.state
	m.state = s
	m.inState = 0
	if m.onChange != nil && prev != s {
		m.onChange(prev, s)
	}
}
