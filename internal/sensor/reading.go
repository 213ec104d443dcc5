package sensor

import (
	"fmt"
	"strings"
	"time"
)

// Kind tags what a Reading carries.
type Kind int

const (
	KindUnavailable Kind = iota // sensor answered but the field was absent, or not configured
	KindValue                   // numeric or text value present
	KindError                   // transport or decode failure
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindError:
		return "error"
	default:
		return "unavailable"
	}
}

// Reading is the result of one sensor fetch.
type Reading struct {
	Kind    Kind
	Value   float64 // set for numeric sensors
	Text    string  // set for status sensors (door contact)
	Code    int     // HTTP status for KindError, 0 for decode/network failures
	Message string
}

// Numeric wraps a scalar value.
func Numeric(v float64) Reading { return Reading{Kind: KindValue, Value: v} }

// Status wraps a text value.
func Status(s string) Reading { return Reading{Kind: KindValue, Text: s} }

// Unavailable marks a reading whose field was missing.
func Unavailable(msg string) Reading { return Reading{Kind: KindUnavailable, Message: msg} }

// Failure marks a reading that could not be fetched or decoded.
func Failure(code int, msg string) Reading {
	return Reading{Kind: KindError, Code: code, Message: msg}
}

// OK reports whether the reading carries a value.
func (r Reading) OK() bool { return r.Kind == KindValue }

// Float returns the numeric value, or def when the reading is not OK.
func (r Reading) Float(def float64) float64 {
	if !r.OK() {
		return def
	}
	return r.Value
}

// TextOr returns the text value, or def when the reading is not OK or empty.
func (r Reading) TextOr(def string) string {
	if !r.OK() || r.Text == "" {
		return def
	}
	return r.Text
}

// Err describes a non-OK reading as an error, nil otherwise.
func (r Reading) Err() error {
	switch r.Kind {
	case KindError:
		if r.Code != 0 {
			return fmt.Errorf("status %d: %s", r.Code, r.Message)
		}
		return fmt.Errorf("%s", r.Message)
	case KindUnavailable:
		return fmt.Errorf("unavailable: %s", r.Message)
	}
	return nil
}

// Readings is one poll of all three sensors.
type Readings struct {
	Temperature Reading
	CO2         Reading
	Door        Reading
	At          time.Time
}

// Defaults substituted for readings that are not OK.
const (
	DefaultTempC  = 25.0
	DefaultCO2PPM = 500.0
	DefaultDoor   = "Closed"
)

// Environment holds the effective values consumed by needs and mood.
type Environment struct {
	TempC  float64
	CO2PPM float64
	Door   string
}

// DefaultEnvironment is what the pet assumes when no sensor has answered.
func DefaultEnvironment() Environment {
	return Environment{TempC: DefaultTempC, CO2PPM: DefaultCO2PPM, Door: DefaultDoor}
}

// Environment substitutes defaults for every reading that is not OK.
func (r Readings) Environment() Environment {
	return Environment{
		TempC:  r.Temperature.Float(DefaultTempC),
		CO2PPM: r.CO2.Float(DefaultCO2PPM),
		Door:   r.Door.TextOr(DefaultDoor),
	}
}

// DoorOpen reports whether the contact sensor says open.
func (e Environment) DoorOpen() bool {
	return strings.EqualFold(strings.TrimSpace(e.Door), "open")
}

// FormatEnvironment returns a human-readable summary.
func FormatEnvironment(e Environment) string {
	return fmt.Sprintf("Temp: %.1f°C | CO2: %.0f ppm | Door: %s", e.TempC, e.CO2PPM, e.Door)
}
