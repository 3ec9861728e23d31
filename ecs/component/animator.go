package component

import "maps"

const (
	AnimatorNone         = "None"
	DefaultAnimatorSpeed = 10
)

// AnimState is a sprite sheet row played over Frames cells.
type AnimState struct {
	Frames int
	Row    int
}

type Animator struct {
	States  map[string]AnimState
	Current string
	Frame   float64
	Speed   float64
	Playing bool
}

func NewAnimator() *Animator {
	return &Animator{
		States:  map[string]AnimState{},
		Current: AnimatorNone,
		Speed:   DefaultAnimatorSpeed,
	}
}

func (a *Animator) Kind() Kind { return KindAnimator }

func (a *Animator) Clone() Component {
	c := *a
	c.States = maps.Clone(a.States)
	return &c
}

func (a *Animator) Insert(name string, frames, row int) {
	if a.States == nil {
		a.States = map[string]AnimState{}
	}
	a.States[name] = AnimState{Frames: frames, Row: row}
}

// SetState switches to a known state. Unknown names are ignored.
func (a *Animator) SetState(name string) {
	if _, ok := a.States[name]; ok {
		a.Current = name
	}
}

func (a *Animator) Play() { a.Playing = true }
func (a *Animator) Stop() { a.Playing = false }

// Update advances the current frame, wrapping to zero past the last cell.
func (a *Animator) Update(dt float64) {
	st, ok := a.States[a.Current]
	if !a.Playing || !ok {
		return
	}
	if a.Frame > float64(st.Frames) {
		a.Frame = 0
	}
	a.Frame += dt * a.Speed
	if a.Frame > float64(st.Frames) {
		a.Frame = 0
	}
}

// Apply selects the sprite cell for the current frame.
func (a *Animator) Apply(s *Sprite) {
	st, ok := a.States[a.Current]
	if !ok {
		return
	}
	s.AnimSheet(int(a.Frame), st.Row)
}
