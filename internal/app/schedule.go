package app

import "time"

// maxCatchUp bounds how many periods one Update may run, so a stalled frame
// (window drag, suspend) does not replay minutes of simulation.
const maxCatchUp = 5

// timer fires on a fixed period driven by frame deltas.
type timer struct {
	period time.Duration
	acc    time.Duration
}

func newTimer(period time.Duration) *timer {
	return &timer{period: period}
}

// advance adds dt and returns how many periods elapsed.
func (t *timer) advance(dt time.Duration) int {
	if t.period <= 0 {
		return 0
	}
	t.acc += dt
	n := int(t.acc / t.period)
	t.acc -= time.Duration(n) * t.period
	if n > maxCatchUp {
		n = maxCatchUp
	}
	return n
}
