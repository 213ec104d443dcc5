package desktop

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"github.com/moorebrett0/roampet/internal/app"
	"github.com/moorebrett0/roampet/internal/geom"
	"github.com/moorebrett0/roampet/internal/item"
	"github.com/moorebrett0/roampet/internal/pet"
	"github.com/moorebrett0/roampet/internal/sprite"
)

var (
	labelColor  = color.RGBA{255, 255, 255, 230}
	remarkColor = color.RGBA{255, 220, 120, 255}
)

// Game is the transparent overlay that shows the pet and its items.
type Game struct {
	ctx    context.Context
	app    *app.App
	width  int
	height int

	pets   map[pet.State]*sprite.Animation
	player sprite.Player

	items   map[string]*sprite.Animation // by asset path; nil when unloadable
	images  map[image.Image]*ebiten.Image
	elapsed time.Duration

	dragging    bool
	passthrough bool
}

// ScreenSize returns the size of the monitor the overlay covers.
func ScreenSize() (int, int) {
	return ebiten.Monitor().Size()
}

// New creates the overlay. Pet animations are read from assetsDir/pets/<state>.gif;
// missing ones are logged and the previous animation keeps playing.
// Cancelling ctx closes the overlay the same way Escape does.
func New(ctx context.Context, a *app.App, assetsDir string, width, height int) *Game {
	g := &Game{
		ctx:    ctx,
		app:    a,
		width:  width,
		height: height,
		pets:   make(map[pet.State]*sprite.Animation),
		items:  make(map[string]*sprite.Animation),
		images: make(map[image.Image]*ebiten.Image),
	}

	names := make([]string, len(pet.States))
	for i, s := range pet.States {
		names[i] = s.String()
	}
	set, errs := sprite.LoadSet(filepath.Join(assetsDir, "pets"), names)
	for name, err := range errs {
		if errors.Is(err, sprite.ErrMissing) {
			slog.Warn("desktop: animation missing", "state", name)
		} else {
			slog.Warn("desktop: animation unreadable", "state", name, "err", err)
		}
	}
	for _, s := range pet.States {
		if anim, ok := set[s.String()]; ok {
			g.pets[s] = anim
		}
	}
	// Start with something on screen even if the first state has no art
	if idle, ok := g.pets[pet.Idle]; ok {
		g.player.Play(pet.Idle.String(), idle)
	}
	return g
}

// Run opens the overlay window and blocks until it closes.
func Run(g *Game, tps int) error {
	ebiten.SetWindowTitle("roampet")
	ebiten.SetWindowDecorated(false)
	ebiten.SetWindowFloating(true)
	ebiten.SetWindowSize(g.width, g.height)
	ebiten.SetWindowPosition(0, 0)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetTPS(tps)

	err := ebiten.RunGameWithOptions(g, &ebiten.RunGameOptions{
		ScreenTransparent: true,
		SkipTaskbar:       true,
	})
	if err != nil {
		return fmt.Errorf("run overlay: %w", err)
	}
	return nil
}

func (g *Game) Update() error {
	dt := time.Second / time.Duration(ebiten.TPS())

	if g.ctx.Err() != nil || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		g.app.Jump()
	}

	x, y := ebiten.CursorPosition()
	cursor := geom.Point{X: float64(x), Y: float64(y)}

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.dragging = g.app.Grab(cursor)
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		if g.dragging {
			g.app.Release(cursor)
			g.dragging = false
		}
	case g.dragging:
		g.app.Drag(cursor)
	}

	g.app.Update(dt)

	view := g.app.View()
	g.player.Play(view.State.String(), g.pets[view.State])
	g.player.Advance(dt)
	g.elapsed += dt

	// Clicks fall through to the desktop unless the pointer is on the pet
	pass := !g.dragging && !view.Bounds.Contains(cursor)
	if pass != g.passthrough {
		ebiten.SetWindowMousePassthrough(pass)
		g.passthrough = pass
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	view := g.app.View()

	for _, it := range view.Items {
		if img := g.itemFrame(it); img != nil {
			g.drawScaled(screen, img, it.Bounds, false)
		}
	}

	if img := g.player.Frame(); img != nil {
		g.drawScaled(screen, g.ebitenImage(img), view.Bounds, view.Direction < 0)
	}

	x := int(view.Bounds.X)
	y := int(view.Bounds.Y)
	label := fmt.Sprintf("%s  H%.0f S%.0f W%.0f", view.Mood, view.Needs.Hunger, view.Needs.Sleep, view.Needs.Water)
	text.Draw(screen, label, basicfont.Face7x13, x, y-4, labelColor)
	if view.Remark != "" {
		text.Draw(screen, view.Remark, basicfont.Face7x13, x, y-20, remarkColor)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// drawScaled fits img into r, mirrored horizontally when flip is set.
func (g *Game) drawScaled(screen, img *ebiten.Image, r geom.Rect, flip bool) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	sx := r.W / float64(b.Dx())
	sy := r.H / float64(b.Dy())

	op := &ebiten.DrawImageOptions{}
	if flip {
		op.GeoM.Scale(-1, 1)
		op.GeoM.Translate(float64(b.Dx()), 0)
	}
	op.GeoM.Scale(sx, sy)
	op.GeoM.Translate(r.X, r.Y)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(img, op)
}

func (g *Game) itemFrame(it item.Instance) *ebiten.Image {
	anim, ok := g.items[it.Asset]
	if !ok {
		var err error
		anim, err = sprite.Load(it.Asset)
		if err != nil {
			slog.Warn("desktop: item asset unusable", "path", it.Asset, "err", err)
			anim = nil
		}
		g.items[it.Asset] = anim
	}
	if anim == nil {
		return nil
	}
	img := anim.At(g.elapsed)
	if img == nil {
		return nil
	}
	return g.ebitenImage(img)
}

// ebitenImage uploads each decoded frame once.
func (g *Game) ebitenImage(img image.Image) *ebiten.Image {
	if e, ok := g.images[img]; ok {
		return e
	}
	e := ebiten.NewImageFromImage(img)
	g.images[img] = e
	return e
}
