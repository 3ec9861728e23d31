package ecs

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/milk9111/lilah/ecs/component"
)

// ID identifies a game object. Equality is by UUID.
type ID = component.ID

// GameObject is an identity, lifecycle flags, and an ordered list of
// components. Lookups scan the list and the first match wins.
type GameObject struct {
	ID ID
	// Index is the script-visible ordinal assigned on insertion.
	Index int
	Init  bool
	Start bool

	components []component.Component
}

// NewGameObject creates an empty object with a fresh UUID.
func NewGameObject(name string) *GameObject {
	return &GameObject{ID: ID{Name: name, UUID: uuid.NewString()}}
}

// With appends c and returns g for chaining.
func (g *GameObject) With(c component.Component) *GameObject {
	g.Push(c)
	return g
}

// Build finishes a chain of With calls and reports duplicate singleton
// components.
func (g *GameObject) Build() (*GameObject, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Push appends c without checking for duplicates.
func (g *GameObject) Push(c component.Component) {
	if c == nil {
		return
	}
	g.components = append(g.components, c)
}

// Components returns the component list in insertion order.
func (g *GameObject) Components() []component.Component {
	return g.components
}

// Len is the number of attached components.
func (g *GameObject) Len() int {
	return len(g.components)
}

// RemoveAt detaches the component at index i.
func (g *GameObject) RemoveAt(i int) {
	if i < 0 || i >= len(g.components) {
		return
	}
	g.components = append(g.components[:i], g.components[i+1:]...)
}

// Validate returns ErrDuplicateComponent when a singleton kind appears more
// than once.
func (g *GameObject) Validate() error {
	seen := make(map[component.Kind]bool, len(g.components))
	for _, c := range g.components {
		k := c.Kind()
		if seen[k] && k.Singleton() {
			return fmt.Errorf("%w: %s on %s", ErrDuplicateComponent, k, g.ID)
		}
		seen[k] = true
	}
	return nil
}

// Clone deep-copies the object and every component. The copy keeps the
// same identity.
func (g *GameObject) Clone() *GameObject {
	c := &GameObject{
		ID:         g.ID,
		Index:      g.Index,
		Init:       g.Init,
		Start:      g.Start,
		components: make([]component.Component, len(g.components)),
	}
	for i, comp := range g.components {
		c.components[i] = comp.Clone()
	}
	return c
}

// Has reports whether g carries a component of type T.
func Has[T component.Component](g *GameObject) bool {
	_, ok := Wrap[T](g)
	return ok
}

// Wrap returns the first component of type T.
func Wrap[T component.Component](g *GameObject) (T, bool) {
	var zero T
	if g == nil {
		return zero, false
	}
	for _, c := range g.components {
		if v, ok := c.(T); ok {
			return v, true
		}
	}
	return zero, false
}

// Get returns the first component of type T and panics when there is none.
// Check Has first.
func Get[T component.Component](g *GameObject) T {
	v, ok := Wrap[T](g)
	if !ok {
		var zero T
		panic(fmt.Sprintf("ecs: %s has no %T component", g.ID, zero))
	}
	return v
}

// WrapAll returns every component of type T in insertion order.
func WrapAll[T component.Component](g *GameObject) []T {
	if g == nil {
		return nil
	}
	var out []T
	for _, c := range g.components {
		if v, ok := c.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
