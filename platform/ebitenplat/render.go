package ebitenplat

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/lilah/assets"
	"github.com/milk9111/lilah/common"
	"github.com/milk9111/lilah/engine"
	"golang.org/x/image/font/basicfont"
)

// Renderer draws onto the current screen image. Textures and font faces
// are converted once and cached by asset.
type Renderer struct {
	screen   *ebiten.Image
	images   map[*assets.Texture]*ebiten.Image
	sources  map[*assets.Font]*text.GoTextFaceSource
	fallback text.Face
}

func NewRenderer() *Renderer {
	return &Renderer{
		images:   map[*assets.Texture]*ebiten.Image{},
		sources:  map[*assets.Font]*text.GoTextFaceSource{},
		fallback: text.NewGoXFace(basicfont.Face7x13),
	}
}

func (r *Renderer) begin(screen *ebiten.Image) {
	r.screen = screen
}

func (r *Renderer) image(tex *assets.Texture) *ebiten.Image {
	img, ok := r.images[tex]
	if !ok {
		img = ebiten.NewImageFromImage(tex.Image)
		r.images[tex] = img
	}
	return img
}

// Forget drops cached images whose texture is no longer in use.
func (r *Renderer) Forget(live map[string]*assets.Texture) {
	for tex, img := range r.images {
		if live[tex.ID] != tex {
			img.Deallocate()
			delete(r.images, tex)
		}
	}
}

func (r *Renderer) face(font *assets.Font, size int) text.Face {
	if font == nil {
		return r.fallback
	}
	src, ok := r.sources[font]
	if !ok {
		var err error
		src, err = text.NewGoTextFaceSource(bytes.NewReader(font.Data))
		if err != nil {
			logger.Warn("font unusable, using fallback", "font", font.ID, "err", err)
			src = nil
		}
		r.sources[font] = src
	}
	if src == nil {
		return r.fallback
	}
	return &text.GoTextFace{Source: src, Size: float64(size)}
}

func (r *Renderer) DrawSprite(tex *assets.Texture, src image.Rectangle, op engine.DrawOp) {
	sub, ok := r.image(tex).SubImage(src).(*ebiten.Image)
	if !ok {
		return
	}
	w, h := float64(src.Dx()), float64(src.Dy())
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Translate(-w/2, -h/2)
	opts.GeoM.Scale(op.Scale.X, op.Scale.Y)
	// World rotation is counter-clockwise with y up.
	opts.GeoM.Rotate(-op.Rotation)
	opts.GeoM.Translate(op.Screen.X, op.Screen.Y)
	opts.ColorScale.ScaleWithColor(op.Tint)
	r.screen.DrawImage(sub, opts)
}

func (r *Renderer) DrawText(font *assets.Font, s string, size int, clr color.RGBA, op engine.DrawOp) {
	face := r.face(font, size)
	w, h := text.Measure(s, face, 0)
	opts := &text.DrawOptions{}
	opts.GeoM.Translate(-w/2, -h/2)
	opts.GeoM.Scale(op.Scale.X, op.Scale.Y)
	opts.GeoM.Rotate(-op.Rotation)
	opts.GeoM.Translate(op.Screen.X, op.Screen.Y)
	opts.ColorScale.ScaleWithColor(clr)
	text.Draw(r.screen, s, face, opts)
}

func (r *Renderer) DrawRect(rect common.Rect, clr color.RGBA) {
	for i := range rect.Points {
		a, b := rect.Points[i], rect.Points[(i+1)%len(rect.Points)]
		vector.StrokeLine(r.screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 1, clr, false)
	}
}

// debugText is drawn in the top left corner with the fallback face.
func (r *Renderer) debugText(lines ...string) {
	y := 4.0
	for _, line := range lines {
		opts := &text.DrawOptions{}
		opts.GeoM.Translate(4, y)
		text.Draw(r.screen, line, r.fallback, opts)
		y += 14
	}
}

func fpsLine(fps float64, entities, frames int) string {
	return fmt.Sprintf("FPS: %.1f  entities: %d  frame: %d", fps, entities, frames)
}
