package component

import "image/color"

const (
	DefaultFontSize = 24
	DefaultTextSort = 1000
)

type Text struct {
	Text      string
	Font      string
	FontSize  int
	Color     color.RGBA
	Sort      int
	SortDirty bool
	Changed   bool
}

func NewText(text, font string) *Text {
	return &Text{
		Text:      text,
		Font:      font,
		FontSize:  DefaultFontSize,
		Color:     color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		Sort:      DefaultTextSort,
		SortDirty: true,
		Changed:   true,
	}
}

func (t *Text) Kind() Kind { return KindText }

func (t *Text) Clone() Component {
	c := *t
	return &c
}

func (t *Text) SetText(s string) {
	if s != t.Text {
		t.Text = s
		t.Changed = true
	}
}

func (t *Text) SetSort(sort int) {
	t.Sort = sort
	t.SortDirty = true
}
