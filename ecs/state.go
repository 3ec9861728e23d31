package ecs

import (
	"errors"
	"slices"

	"github.com/milk9111/lilah/assets"
	"github.com/milk9111/lilah/ecs/component"
	"github.com/milk9111/lilah/logging"
)

var logger = logging.New("ecs")

var (
	ErrNotFound           = errors.New("ecs: game object not found")
	ErrDuplicateComponent = errors.New("ecs: duplicate singleton component")
)

// System updates the world state each physics step.
type System interface {
	Update(s *State, dt float64)
}

// State owns every live game object and the loaded asset tables. Objects
// are keyed by UUID and kept in insertion order; Index always equals the
// position in that order.
type State struct {
	Textures map[string]*assets.Texture
	Fonts    map[string]*assets.Font
	Music    map[string]*assets.Audio
	Sfx      map[string]*assets.Audio
	Scenes   map[string]*component.SceneData

	objects map[string]*GameObject
	order   []string
	systems []System
	events  EventQueue
}

// NewState creates an empty world state.
func NewState() *State {
	return &State{
		Textures: map[string]*assets.Texture{},
		Fonts:    map[string]*assets.Font{},
		Music:    map[string]*assets.Audio{},
		Sfx:      map[string]*assets.Audio{},
		Scenes:   map[string]*component.SceneData{},
		objects:  map[string]*GameObject{},
	}
}

// AddBundle merges loaded asset tables into the state. Entries with the
// same id are replaced.
func (s *State) AddBundle(b *assets.Bundle) {
	if b == nil {
		return
	}
	for id, t := range b.Textures {
		s.Textures[id] = t
	}
	for id, f := range b.Fonts {
		s.Fonts[id] = f
	}
	for id, a := range b.Music {
		s.Music[id] = a
	}
	for id, a := range b.Sfx {
		s.Sfx[id] = a
	}
	for id, sd := range b.Scenes {
		s.Scenes[id] = sd
	}
}

// Insert adds g, or replaces the object with the same UUID in place.
func (s *State) Insert(g *GameObject) {
	if g == nil {
		return
	}
	if err := g.Validate(); err != nil {
		logger.Warn("inserting object with duplicate components", "object", g.ID.Name, "err", err)
	}
	if prev, ok := s.objects[g.ID.UUID]; ok {
		g.Index = prev.Index
		s.objects[g.ID.UUID] = g
		return
	}
	g.Index = len(s.order)
	s.objects[g.ID.UUID] = g
	s.order = append(s.order, g.ID.UUID)
}

// Remove deletes the object matching key (a UUID or a name) and reports
// whether one was found.
func (s *State) Remove(key string) bool {
	g, ok := s.Wrap(key)
	if !ok {
		return false
	}
	delete(s.objects, g.ID.UUID)
	s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == g.ID.UUID })
	for i, id := range s.order {
		s.objects[id].Index = i
	}
	return true
}

// Wrap finds an object by UUID, then by name in insertion order.
func (s *State) Wrap(key string) (*GameObject, bool) {
	if g, ok := s.objects[key]; ok {
		return g, true
	}
	for _, id := range s.order {
		if g := s.objects[id]; g.ID.Name == key {
			return g, true
		}
	}
	return nil, false
}

// Get is Wrap for callers that know the object exists. It panics otherwise.
func (s *State) Get(key string) *GameObject {
	g, ok := s.Wrap(key)
	if !ok {
		panic(ErrNotFound.Error() + ": " + key)
	}
	return g
}

// ByUUID looks an object up by UUID only.
func (s *State) ByUUID(id string) (*GameObject, bool) {
	g, ok := s.objects[id]
	return g, ok
}

// ByIndex returns the object at script ordinal i.
func (s *State) ByIndex(i int) (*GameObject, bool) {
	if i < 0 || i >= len(s.order) {
		return nil, false
	}
	return s.objects[s.order[i]], true
}

// GameObjects returns the live objects in insertion order.
func (s *State) GameObjects() []*GameObject {
	out := make([]*GameObject, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.objects[id])
	}
	return out
}

func (s *State) Len() int {
	return len(s.order)
}

// AddSystem appends a system to the update order.
func (s *State) AddSystem(sys System) {
	if sys == nil {
		return
	}
	s.systems = append(s.systems, sys)
}

// Events returns the queue filled by systems during the last Update.
func (s *State) Events() *EventQueue {
	return &s.events
}

// Load runs GameObject.Load for every object.
func (s *State) Load(player SfxPlayer) {
	for _, g := range s.GameObjects() {
		g.Load(s, player)
	}
}

// Tick runs Load then Update for every object.
func (s *State) Tick(dt float64, player SfxPlayer) {
	for _, g := range s.GameObjects() {
		g.Load(s, player)
		g.Update(dt)
	}
}

// Update runs every system and then ticks every object.
func (s *State) Update(dt float64, player SfxPlayer) {
	s.events.flush()
	for _, sys := range s.systems {
		sys.Update(s, dt)
	}
	s.Tick(dt, player)
}

func (s *State) bindSprite(owner *GameObject, sp *component.Sprite) {
	tex, ok := s.Textures[sp.TextureID]
	if !ok {
		logger.Warn("texture not loaded", "object", owner.ID.Name, "texture", sp.TextureID)
		return
	}
	sp.Bind(tex.Width, tex.Height)
}

// ReplaceTexture swaps a texture entry and rebinds every sprite using it.
func (s *State) ReplaceTexture(t *assets.Texture) {
	s.Textures[t.ID] = t
	for _, g := range s.GameObjects() {
		for _, sp := range WrapAll[*component.Sprite](g) {
			if sp.TextureID == t.ID {
				sp.Bind(t.Width, t.Height)
			}
		}
		if sc, ok := Wrap[*component.Scene](g); ok {
			for _, tile := range sc.Tiles {
				if tile.Sprite.TextureID == t.ID {
					tile.Sprite.Bind(t.Width, t.Height)
				}
			}
		}
	}
}

// ReplaceScene swaps a scene entry and lays out every Scene component
// using it again.
func (s *State) ReplaceScene(id string, data *component.SceneData) {
	s.Scenes[id] = data
	for _, g := range s.GameObjects() {
		if sc, ok := Wrap[*component.Scene](g); ok && sc.File == id && g.Init {
			g.loadScene(s, sc)
		}
	}
}
