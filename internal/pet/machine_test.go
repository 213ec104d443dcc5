package pet

import (
	"math/rand"
	"testing"
	"time"

	"github.com/moorebrett0/roampet/internal/geom"
	"github.com/moorebrett0/roampet/internal/item"
)

func testMachine(seed int64) *Machine {
	cfg := DefaultMachineConfig(800, 600)
	cfg.SpriteW, cfg.SpriteH = 100, 100
	// Keep the roam timer out of the way unless a test wants it
	cfg.ChangeMin, cfg.ChangeMax = time.Hour, time.Hour
	return NewMachine(cfg, rand.New(rand.NewSource(seed)))
}

// settle drops the pet to the floor and waits for Idle.
func settle(t *testing.T, m *Machine) {
	t.Helper()
	for i := 0; i < 1000 && m.State() != Idle; i++ {
		m.Tick()
	}
	if m.State() != Idle {
		t.Fatalf("pet never settled, state %v", m.State())
	}
}

func TestStartsFallingThenLandsThenIdles(t *testing.T) {
	m := testMachine(1)
	var seen []State
	m.OnChange(func(_, to State) { seen = append(seen, to) })

	if m.State() != Falling {
		t.Fatalf("initial state %v", m.State())
	}
	settle(t, m)

	if len(seen) != 2 || seen[0] != Landing || seen[1] != Idle {
		t.Errorf("transitions = %v, want [land idle]", seen)
	}
	if m.Position().Y != 500 {
		t.Errorf("y = %v, want floor 500", m.Position().Y)
	}
}

func TestWalkingReflectsAtEdges(t *testing.T) {
	m := testMachine(1)
	settle(t, m)

	m.Place(geom.Point{X: 3, Y: 500})
	m.dir = -1
	m.enter(Walking)
	m.Tick()
	m.Tick()
	if m.Position().X < 0 || m.Direction() != 1 {
		t.Errorf("left edge: x=%v dir=%v", m.Position().X, m.Direction())
	}

	m.Place(geom.Point{X: 697, Y: 500})
	m.dir = 1
	m.Tick()
	m.Tick()
	if m.Position().X > 700 || m.Direction() != -1 {
		t.Errorf("right edge: x=%v dir=%v", m.Position().X, m.Direction())
	}
}

func TestJumpRisesThenFalls(t *testing.T) {
	m := testMachine(2)
	settle(t, m)

	if !m.Jump() {
		t.Fatal("jump refused from idle")
	}
	startY := 500.0
	minY := startY
	for i := 0; i < 1000 && m.State() == Jumping; i++ {
		m.Tick()
		if y := m.Position().Y; y < minY {
			minY = y
		}
	}
	if m.State() != Falling {
		t.Fatalf("after jump state %v, want fall", m.State())
	}
	rise := startY - minY
	if rise < 50 || rise > 150 {
		t.Errorf("rise = %v, want within [50,150]", rise)
	}
	if m.Position().X != 350 {
		t.Errorf("jump moved horizontally: x=%v", m.Position().X)
	}
	settle(t, m)
}

func TestReleaseDirection(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		for _, tc := range []struct {
			name   string
			grabAt float64 // offset from the sprite's left edge
			right  bool
		}{
			{"right of center", 80, true},
			{"left of center", 20, false},
		} {
			m := testMachine(seed)
			settle(t, m)
			m.Place(geom.Point{X: 350, Y: 300})
			start := m.Position()

			p := geom.Point{X: start.X + tc.grabAt, Y: start.Y + 50}
			if !m.Grab(p) {
				t.Fatal("grab missed")
			}
			if !m.Release(p) {
				t.Fatal("release refused")
			}
			if m.State() != Floating {
				t.Fatalf("state %v, want float", m.State())
			}
			for i := 0; i < 1000 && m.State() == Floating; i++ {
				m.Tick()
			}

			moved := m.Position().X - start.X
			if tc.right && (moved <= 0 || m.Direction() != 1) {
				t.Errorf("seed %d %s: moved %v dir %v", seed, tc.name, moved, m.Direction())
			}
			if !tc.right && (moved >= 0 || m.Direction() != -1) {
				t.Errorf("seed %d %s: moved %v dir %v", seed, tc.name, moved, m.Direction())
			}
			if m.State() != Falling {
				t.Errorf("throw ended in %v, want fall", m.State())
			}
		}
	}
}

func TestThrowStaysOnScreen(t *testing.T) {
	m := testMachine(3)
	settle(t, m)
	m.Place(geom.Point{X: 690, Y: 400})
	p := geom.Point{X: 790, Y: 450}
	m.Grab(p)
	m.Release(p)
	for i := 0; i < 1000 && m.State() == Floating; i++ {
		m.Tick()
		pos := m.Position()
		if pos.X < 0 || pos.X > 700 || pos.Y < 0 || pos.Y > 500 {
			t.Fatalf("off screen at %+v", pos)
		}
	}
}

func TestGrabTracksPointer(t *testing.T) {
	m := testMachine(4)
	settle(t, m)

	if m.Grab(geom.Point{X: 10, Y: 10}) {
		t.Fatal("grab outside sprite should miss")
	}

	pos := m.Position()
	if !m.Grab(geom.Point{X: pos.X + 30, Y: pos.Y + 40}) {
		t.Fatal("grab missed")
	}
	m.Drag(geom.Point{X: 200, Y: 200})
	if got := m.Position(); got != (geom.Point{X: 170, Y: 160}) {
		t.Errorf("position %+v, want {170 160}", got)
	}

	for i := 0; i < 100; i++ {
		m.Tick()
	}
	if m.State() != Grabbed || m.Position() != (geom.Point{X: 170, Y: 160}) {
		t.Errorf("grabbed pet moved on its own: %v %+v", m.State(), m.Position())
	}
}

func TestRoamTimerDoesNotOverrideLockedStates(t *testing.T) {
	cfg := DefaultMachineConfig(800, 600)
	cfg.SpriteW, cfg.SpriteH = 100, 100
	cfg.ChangeMin, cfg.ChangeMax = cfg.Step, cfg.Step // fire every tick
	cfg.ActivityDuration = time.Second
	m := NewMachine(cfg, rand.New(rand.NewSource(5)))
	for i := 0; i < 1000 && m.State() == Falling; i++ {
		m.Tick()
	}

	m.Place(geom.Point{X: 100, Y: 500})
	m.enter(Idle)
	if !m.OnItemCollision(item.Food) {
		t.Fatal("collision refused from idle")
	}
	ticks := int(cfg.ActivityDuration/cfg.Step) - 1
	for i := 0; i < ticks; i++ {
		m.Tick()
		if m.State() != Eating {
			t.Fatalf("tick %d: eating interrupted by %v", i, m.State())
		}
	}
	for i := 0; i < 3 && m.State() == Eating; i++ {
		m.Tick()
	}
	if m.State() == Eating {
		t.Error("eating did not end after its duration")
	}
}

func TestRoamChoosesBetweenIdleWalkAndJump(t *testing.T) {
	cfg := DefaultMachineConfig(800, 600)
	cfg.SpriteW, cfg.SpriteH = 100, 100
	m := NewMachine(cfg, rand.New(rand.NewSource(6)))
	settleMachine(m)

	counts := map[State]int{}
	for i := 0; i < 2000; i++ {
		m.Place(geom.Point{X: 350, Y: 500})
		m.traj = nil
		m.enter(Idle)
		m.roam()
		counts[m.State()]++
	}
	if counts[Jumping] < 100 || counts[Jumping] > 320 {
		t.Errorf("jumps = %d of 2000, want about 10%%", counts[Jumping])
	}
	if counts[Walking] <= counts[Idle] {
		t.Errorf("walk %d should dominate idle %d", counts[Walking], counts[Idle])
	}
}

func settleMachine(m *Machine) {
	for i := 0; i < 1000 && m.State() != Idle; i++ {
		m.Tick()
	}
}

func TestNextChangeWithinRange(t *testing.T) {
	cfg := DefaultMachineConfig(800, 600)
	m := NewMachine(cfg, rand.New(rand.NewSource(7)))
	for i := 0; i < 500; i++ {
		d := m.nextChange()
		if d < 3*time.Second || d > 8*time.Second {
			t.Fatalf("interval %v outside [3s,8s]", d)
		}
	}
}

func TestCollisionWhileGrabbedStartsActivity(t *testing.T) {
	m := testMachine(8)
	settle(t, m)
	pos := m.Position()
	m.Grab(geom.Point{X: pos.X + 50, Y: pos.Y + 50})

	if !m.OnItemCollision(item.Bed) || m.State() != Sleeping {
		t.Fatalf("state %v, want sleep", m.State())
	}
	if m.OnItemCollision(item.Food) {
		t.Error("activity should not be interrupted by another item")
	}
}

func TestHit(t *testing.T) {
	m := testMachine(9)
	if m.Hit() {
		t.Error("hit should not interrupt falling")
	}
	settle(t, m)
	if !m.Hit() || m.State() != Hit {
		t.Fatalf("state %v, want hit", m.State())
	}
	for i := 0; i < 100 && m.State() == Hit; i++ {
		m.Tick()
	}
	if m.State() != Idle {
		t.Errorf("hit ended in %v, want idle", m.State())
	}
}
