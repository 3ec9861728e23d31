package component

const DefaultSfxVolume = 128

// Sfx is a named sound effect trigger. An entity may carry several.
type Sfx struct {
	Name      string
	File      string
	Volume    float64
	PlayState bool
}

func NewSfx(name, file string) *Sfx {
	return &Sfx{Name: name, File: file, Volume: DefaultSfxVolume}
}

func (s *Sfx) Kind() Kind { return KindSfx }

func (s *Sfx) Clone() Component {
	c := *s
	return &c
}

func (s *Sfx) Play() { s.PlayState = true }

// Consume reports and clears a pending play trigger.
func (s *Sfx) Consume() bool {
	if !s.PlayState {
		return false
	}
	s.PlayState = false
	return true
}
