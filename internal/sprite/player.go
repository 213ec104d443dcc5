package sprite

import (
	"image"
	"time"
)

// Player tracks which animation is showing and for how long.
type Player struct {
	current *Animation
	key     string
	elapsed time.Duration
}

// Play switches to anim under key. A nil anim keeps the current frames, so a
// missing asset leaves the previous animation running.
func (p *Player) Play(key string, anim *Animation) {
	if key == p.key {
		return
	}
	p.key = key
	if anim == nil {
		return
	}
	p.current = anim
	p.elapsed = 0
}

// Advance moves the playhead forward.
func (p *Player) Advance(dt time.Duration) { p.elapsed += dt }

// Frame returns the image to draw, or nil before anything has played.
func (p *Player) Frame() image.Image {
	if p.current == nil {
		return nil
	}
	return p.current.At(p.elapsed)
}
