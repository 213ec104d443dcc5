package sprite

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "image/jpeg"
	_ "image/png"
)

// ErrMissing is returned when an asset file does not exist.
var ErrMissing = errors.New("sprite: asset missing")

// defaultDelay is used for GIF frames that declare no delay.
const defaultDelay = 100 * time.Millisecond

// Frame is one fully composited image and how long it shows.
type Frame struct {
	Image image.Image
	Delay time.Duration
}

// Animation is a looping frame sequence. Still images have one frame.
type Animation struct {
	Frames []Frame
	total  time.Duration
}

func newAnimation(frames []Frame) *Animation {
	a := &Animation{Frames: frames}
	for _, f := range frames {
		a.total += f.Delay
	}
	return a
}

// At returns the frame showing after elapsed, looping.
func (a *Animation) At(elapsed time.Duration) image.Image {
	if len(a.Frames) == 0 {
		return nil
	}
	if a.total <= 0 || len(a.Frames) == 1 {
		return a.Frames[0].Image
	}
	t := elapsed % a.total
	if t < 0 {
		t += a.total
	}
	for _, f := range a.Frames {
		if t < f.Delay {
			return f.Image
		}
		t -= f.Delay
	}
	return a.Frames[len(a.Frames)-1].Image
}

// Load reads a GIF or still image from path.
func Load(path string) (*Animation, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissing, path)
		}
		return nil, fmt.Errorf("open sprite: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".gif") {
		return DecodeGIF(f)
	}
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return newAnimation([]Frame{{Image: img}}), nil
}

// DecodeGIF composites every GIF frame onto the logical screen so each Frame
// can be drawn on its own.
func DecodeGIF(r io.Reader) (*Animation, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, fmt.Errorf("decode gif: %w", err)
	}
	if len(g.Image) == 0 {
		return nil, errors.New("decode gif: no frames")
	}

	w, h := g.Config.Width, g.Config.Height
	if w == 0 || h == 0 {
		b := g.Image[0].Bounds()
		w, h = b.Max.X, b.Max.Y
	}
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))

	frames := make([]Frame, 0, len(g.Image))
	for i, src := range g.Image {
		var disposal byte
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		var prev *image.RGBA
		if disposal == gif.DisposalPrevious {
			prev = clone(canvas)
		}

		draw.Draw(canvas, src.Bounds(), src, src.Bounds().Min, draw.Over)

		delay := defaultDelay
		if i < len(g.Delay) && g.Delay[i] > 0 {
			delay = time.Duration(g.Delay[i]) * 10 * time.Millisecond
		}
		frames = append(frames, Frame{Image: clone(canvas), Delay: delay})

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, src.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = prev
		}
	}
	return newAnimation(frames), nil
}

func clone(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

// LoadSet loads dir/<name>.gif for each name. Missing or broken files are
// reported in the error map and left out of the result.
func LoadSet(dir string, names []string) (map[string]*Animation, map[string]error) {
	out := make(map[string]*Animation, len(names))
	errs := make(map[string]error)
	for _, name := range names {
		a, err := Load(filepath.Join(dir, name+".gif"))
		if err != nil {
			errs[name] = err
			continue
		}
		out[name] = a
	}
	return out, errs
}
