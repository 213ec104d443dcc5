package sprite

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func solid(c color.Color) *image.Paletted {
	pal := color.Palette{color.RGBA{255, 0, 0, 255}, color.RGBA{0, 0, 255, 255}}
	img := image.NewPaletted(image.Rect(0, 0, 4, 4), pal)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func writeGIF(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	err := gif.EncodeAll(&buf, &gif.GIF{
		Image: []*image.Paletted{solid(color.RGBA{255, 0, 0, 255}), solid(color.RGBA{0, 0, 255, 255})},
		Delay: []int{5, 0},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadGIF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walk.gif")
	writeGIF(t, path)

	a, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Frames) != 2 {
		t.Fatalf("frames = %d", len(a.Frames))
	}
	if a.Frames[0].Delay != 50*time.Millisecond || a.Frames[1].Delay != defaultDelay {
		t.Errorf("delays = %v, %v", a.Frames[0].Delay, a.Frames[1].Delay)
	}

	red := func(img image.Image) bool {
		r, g, b, _ := img.At(1, 1).RGBA()
		return r > 0xf000 && g == 0 && b == 0
	}
	if !red(a.At(0)) || red(a.At(60*time.Millisecond)) {
		t.Error("wrong frame for elapsed time")
	}
	// 150ms total, so 160ms loops back to the first frame
	if !red(a.At(160 * time.Millisecond)) {
		t.Error("animation should loop")
	}
}

func TestLoadPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bed.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	a, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Frames) != 1 || a.At(time.Hour) == nil {
		t.Errorf("still image: %+v", a)
	}
}

func TestLoadMissingAndBroken(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "nope.gif")); !errors.Is(err, ErrMissing) {
		t.Errorf("err = %v, want ErrMissing", err)
	}

	bad := filepath.Join(dir, "bad.gif")
	os.WriteFile(bad, []byte("not a gif"), 0o644)
	if _, err := Load(bad); err == nil || errors.Is(err, ErrMissing) {
		t.Errorf("err = %v, want decode error", err)
	}
}

func TestLoadSet(t *testing.T) {
	dir := t.TempDir()
	writeGIF(t, filepath.Join(dir, "idle.gif"))

	set, errs := LoadSet(dir, []string{"idle", "walk"})
	if set["idle"] == nil || set["walk"] != nil {
		t.Errorf("set = %v", set)
	}
	if !errors.Is(errs["walk"], ErrMissing) {
		t.Errorf("errs = %v", errs)
	}
}

func TestPlayerKeepsFramesWhenAssetMissing(t *testing.T) {
	a := newAnimation([]Frame{{Image: image.NewRGBA(image.Rect(0, 0, 1, 1)), Delay: time.Second}})
	var p Player
	if p.Frame() != nil {
		t.Fatal("empty player should draw nothing")
	}

	p.Play("idle", a)
	p.Advance(time.Second)
	first := p.Frame()
	p.Play("hit", nil)
	if p.Frame() != first {
		t.Error("missing animation should keep the current frames")
	}
}
