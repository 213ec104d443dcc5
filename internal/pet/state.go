package pet

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/moorebrett0/roampet/internal/item"
)

// State is the pet's current behavior. Exactly one is active at a time.
type State int

const (
	Idle State = iota
	Walking
	Falling
	Floating // in flight after being thrown
	Jumping
	Landing
	Grabbed
	Hit
	Eating
	Drinking
	Sleeping
)

// States lists every state, in declaration order.
var States = []State{Idle, Walking, Falling, Floating, Jumping, Landing, Grabbed, Hit, Eating, Drinking, Sleeping}

var stateNames = map[State]string{
	Idle:     "idle",
	Walking:  "walk",
	Falling:  "fall",
	Floating: "float",
	Jumping:  "jump",
	Landing:  "land",
	Grabbed:  "grabbed",
	Hit:      "hit",
	Eating:   "eat",
	Drinking: "drink",
	Sleeping: "sleep",
}

// String returns the short name, which doubles as the animation file stem.
func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// rule describes how a state ends.
type rule struct {
	locked bool                              // ignores the state-change timer and item effects
	hold   func(MachineConfig) time.Duration // timed states leave after this long
	next   State
}

// rules is the transition table evaluated on every Tick. States not listed here
// leave only through events (timer, grab, release, collision).
var rules = map[State]rule{
	Falling:  {locked: true, next: Landing}, // on reaching the floor
	Jumping:  {locked: true, next: Falling}, // on trajectory completion
	Floating: {locked: true, next: Falling}, // on trajectory completion
	Landing:  {locked: true, hold: func(c MachineConfig) time.Duration { return c.LandingDelay }, next: Idle},
	Eating:   {locked: true, hold: activityHold, next: Idle},
	Drinking: {locked: true, hold: activityHold, next: Idle},
	Sleeping: {locked: true, hold: activityHold, next: Idle},
	Hit:      {hold: func(c MachineConfig) time.Duration { return c.HitDuration }, next: Idle},
}

func activityHold(c MachineConfig) time.Duration { return c.ActivityDuration }

// Locked reports whether s must run to completion before timers may change it.
func (s State) Locked() bool { return rules[s].locked }

// activityFor maps an item to the state the pet plays while using it.
var activityFor = map[item.Kind]State{
	item.Food:  Eating,
	item.Drink: Drinking,
	item.Bed:   Sleeping,
}

// weighted is one option of a weighted random choice.
type weighted struct {
	state  State
	weight float64
}

// roamChoices is the idle/walk mix picked when the state-change timer fires.
var roamChoices = []weighted{{Idle, 0.3}, {Walking, 0.7}}

func pick(rng *rand.Rand, choices []weighted) State {
	total := 0.0
	for _, c := range choices {
		total += c.weight
	}
	r := rng.Float64() * total
	for _, c := range choices {
		if r < c.weight {
			return c.state
		}
		r -= c.weight
	}
	return choices[len(choices)-1].state
}
