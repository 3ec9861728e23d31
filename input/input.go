package input

import (
	"sort"
	"strings"

	"github.com/jakecoffman/cp"
)

// Info is the state of one key or mouse button.
type Info struct {
	Pressed bool
	// PressedDown is set on the frame the key went down and cleared when
	// read through KeyDown or at EndFrame.
	PressedDown bool
}

// Binding maps two keys onto an axis: Negative gives -1, Positive +1.
type Binding struct {
	Positive string `yaml:"positive"`
	Negative string `yaml:"negative"`
}

// State holds key mappings, mouse state, and named axis bindings. Key names
// are normalized to lower case.
type State struct {
	keys     map[string]*Info
	mouse    map[string]*Info
	bindings map[string]Binding

	// ScreenMouse is the cursor in screen pixels, set by the platform.
	// MousePos is the matching world position.
	ScreenMouse cp.Vector
	MousePos    cp.Vector
	// Quit is set by the platform when the window asks to close.
	Quit bool
}

func New() *State {
	return &State{
		keys:     map[string]*Info{},
		mouse:    map[string]*Info{},
		bindings: map[string]Binding{},
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func set(m map[string]*Info, name string, pressed bool) {
	name = normalize(name)
	info, ok := m[name]
	if !ok {
		info = &Info{}
		m[name] = info
	}
	if pressed && !info.Pressed {
		info.PressedDown = true
	}
	info.Pressed = pressed
}

// SetKey records the current state of a key.
func (s *State) SetKey(name string, pressed bool) { set(s.keys, name, pressed) }

// SetMouse records the current state of a mouse button.
func (s *State) SetMouse(button string, pressed bool) { set(s.mouse, button, pressed) }

// Key reports whether the key is held.
func (s *State) Key(name string) bool {
	info, ok := s.keys[normalize(name)]
	return ok && info.Pressed
}

// KeyDown reports whether the key went down this frame and consumes the
// edge.
func (s *State) KeyDown(name string) bool {
	return consume(s.keys, name)
}

func (s *State) Mouse(button string) bool {
	info, ok := s.mouse[normalize(button)]
	return ok && info.Pressed
}

func (s *State) MouseDown(button string) bool {
	return consume(s.mouse, button)
}

func consume(m map[string]*Info, name string) bool {
	info, ok := m[normalize(name)]
	if !ok || !info.PressedDown {
		return false
	}
	info.PressedDown = false
	return true
}

// Bind registers a named axis.
func (s *State) Bind(name, negative, positive string) {
	s.bindings[name] = Binding{Negative: negative, Positive: positive}
}

// Binding looks up a named axis.
func (s *State) Binding(name string) (Binding, bool) {
	b, ok := s.bindings[name]
	return b, ok
}

// Axis returns -1, 0 or 1 for a named binding. Unknown bindings are 0.
func (s *State) Axis(name string) int {
	b, ok := s.bindings[name]
	if !ok {
		return 0
	}
	v := 0
	if s.Key(b.Negative) {
		v--
	}
	if s.Key(b.Positive) {
		v++
	}
	return v
}

// Axis2 combines two bindings into a vector.
func (s *State) Axis2(x, y string) cp.Vector {
	return cp.Vector{X: float64(s.Axis(x)), Y: float64(s.Axis(y))}
}

// EndFrame clears edge flags that were not consumed.
func (s *State) EndFrame() {
	for _, info := range s.keys {
		info.PressedDown = false
	}
	for _, info := range s.mouse {
		info.PressedDown = false
	}
}

// Keys returns a copy of every tracked key.
func (s *State) Keys() map[string]Info {
	return snapshot(s.keys)
}

func (s *State) Buttons() map[string]Info {
	return snapshot(s.mouse)
}

// Bindings returns the binding names in sorted order.
func (s *State) Bindings() []string {
	out := make([]string, 0, len(s.bindings))
	for name := range s.bindings {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func snapshot(m map[string]*Info) map[string]Info {
	out := make(map[string]Info, len(m))
	for k, v := range m {
		out[k] = *v
	}
	return out
}
