package component

import (
	"image"
	"image/color"
)

// Sprite draws one cell of a texture sheet.
type Sprite struct {
	TextureID string
	Tint      color.RGBA
	Sort      int
	SortDirty bool

	// BaseSize is the pixel size of the whole texture.
	BaseSize image.Point
	// Cut is the number of columns and rows the sheet is divided into.
	Cut image.Point
	// IndexCut is the cell selected when the sprite loads.
	IndexCut image.Point
	// Index is the pixel origin of the current cell.
	Index image.Point
	// Bound is set once the texture dimensions are known.
	Bound bool
}

func NewSprite(textureID string) *Sprite {
	return &Sprite{
		TextureID: textureID,
		Tint:      color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		SortDirty: true,
		BaseSize:  image.Pt(1, 1),
		Cut:       image.Pt(1, 1),
	}
}

func (s *Sprite) Kind() Kind { return KindSprite }

func (s *Sprite) Clone() Component {
	c := *s
	return &c
}

// Size returns the pixel size of one cell.
func (s *Sprite) Size() (int, int) {
	cols, rows := max(s.Cut.X, 1), max(s.Cut.Y, 1)
	return s.BaseSize.X / cols, s.BaseSize.Y / rows
}

func (s *Sprite) SetSort(sort int) {
	s.Sort = sort
	s.SortDirty = true
}

// CheckDirty reports and clears the sort dirty flag.
func (s *Sprite) CheckDirty() bool {
	if !s.SortDirty {
		return false
	}
	s.SortDirty = false
	return true
}

// CutSheet divides the texture into cols x rows cells and selects cell (ix, iy)
// once the texture is bound.
func (s *Sprite) CutSheet(ix, iy, cols, rows int) {
	s.Cut = image.Pt(cols, rows)
	s.IndexCut = image.Pt(ix, iy)
	s.Index = image.Point{}
}

// AnimSheet selects cell (ix, iy).
func (s *Sprite) AnimSheet(ix, iy int) {
	w, h := s.Size()
	s.Index = image.Pt(ix*w, iy*h)
}

// Bind records the texture dimensions and selects the initial cell.
func (s *Sprite) Bind(width, height int) {
	s.BaseSize = image.Pt(width, height)
	s.Bound = true
	s.AnimSheet(s.IndexCut.X, s.IndexCut.Y)
}

// SourceRect is the texture region of the current cell.
func (s *Sprite) SourceRect() image.Rectangle {
	w, h := s.Size()
	return image.Rect(s.Index.X, s.Index.Y, s.Index.X+w, s.Index.Y+h)
}
