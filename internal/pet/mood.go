package pet

import "github.com/moorebrett0/roampet/internal/sensor"

// Mood is a momentary label summarizing environment and needs.
type Mood string

const (
	MoodDizzy    Mood = "dizzy"
	MoodHot      Mood = "too hot"
	MoodCold     Mood = "too cold"
	MoodDoorOpen Mood = "door open"
	MoodNeedy    Mood = "needs attention"
	MoodContent  Mood = "content"
)

// NeedyThreshold is the need level below which the pet asks for attention.
const NeedyThreshold = 20.0

// EvaluateMood returns a mood based on priority-ordered rules.
// Priority: Dizzy > Hot > Cold > DoorOpen > Needy > Content
func EvaluateMood(env sensor.Environment, n Needs) Mood {
	// Dizzy: poor air
	if env.CO2PPM > CO2Limit {
		return MoodDizzy
	}

	if env.TempC > TempMax {
		return MoodHot
	}
	if env.TempC < TempMin {
		return MoodCold
	}

	if env.DoorOpen() {
		return MoodDoorOpen
	}

	if n.Lowest() < NeedyThreshold {
		return MoodNeedy
	}

	return MoodContent
}
