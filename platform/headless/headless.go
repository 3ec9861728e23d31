// Package headless is a windowless platform. Input is scripted per frame,
// which makes runs repeatable.
package headless

import (
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/lilah/assets"
	"github.com/milk9111/lilah/input"
	"github.com/milk9111/lilah/logging"
	"github.com/milk9111/lilah/scripting"
)

var logger = logging.New("platform")

// Event changes one key or mouse button at the start of a frame.
type Event struct {
	Key     string
	Button  string
	Pressed bool
	// Mouse, when set, moves the cursor to this screen position.
	Mouse *cp.Vector
}

// Platform counts frames and quits after MaxFrames. FPS above zero paces
// frames by sleeping.
type Platform struct {
	Width     int
	Height    int
	FPS       int
	MaxFrames int
	// Script maps a frame number to the events applied before it.
	Script map[int][]Event

	frame      int
	fullscreen bool
	last       time.Time
}

func New(width, height, fps, maxFrames int) *Platform {
	return &Platform{Width: width, Height: height, FPS: fps, MaxFrames: maxFrames, Script: map[int][]Event{}}
}

// At queues events for frame n.
func (p *Platform) At(n int, events ...Event) *Platform {
	p.Script[n] = append(p.Script[n], events...)
	return p
}

func (p *Platform) PreFrame(in *input.State) bool {
	if p.MaxFrames > 0 && p.frame >= p.MaxFrames {
		return true
	}
	for _, ev := range p.Script[p.frame] {
		if ev.Key != "" {
			in.SetKey(ev.Key, ev.Pressed)
		}
		if ev.Button != "" {
			in.SetMouse(ev.Button, ev.Pressed)
		}
		if ev.Mouse != nil {
			in.ScreenMouse = *ev.Mouse
		}
	}
	p.frame++
	return false
}

// PresentFrame sleeps for whatever is left of the frame budget.
func (p *Platform) PresentFrame() {
	if p.FPS <= 0 {
		return
	}
	budget := time.Second / time.Duration(p.FPS)
	if !p.last.IsZero() {
		if rest := budget - time.Since(p.last); rest > 0 {
			time.Sleep(rest)
		}
	}
	p.last = time.Now()
}

func (p *Platform) Window() scripting.Window { return p }

// Frame is the number of frames polled so far.
func (p *Platform) Frame() int { return p.frame }

func (p *Platform) Size() (int, int) { return p.Width, p.Height }

func (p *Platform) Fullscreen() bool { return p.fullscreen }

func (p *Platform) SetFullscreen(on bool) {
	if on != p.fullscreen {
		logger.Debug("fullscreen", "on", on)
	}
	p.fullscreen = on
}

// Audio records what would have been played.
type Audio struct {
	Music   string
	Paused  bool
	Sfx     []string
	volume  float64
	Pauses  int
	Resumes int
}

func NewAudio() *Audio { return &Audio{volume: 1} }

func (a *Audio) Play(music *assets.Audio) {
	a.Music = music.ID
	a.Paused = false
}

func (a *Audio) Pause(time.Duration) {
	a.Paused = true
	a.Pauses++
}

func (a *Audio) Resume(time.Duration) {
	a.Paused = false
	a.Resumes++
}

func (a *Audio) Volume() float64 { return a.volume }

func (a *Audio) SetVolume(v float64) { a.volume = v }

func (a *Audio) PlaySfx(s *assets.Audio, volume float64) {
	a.Sfx = append(a.Sfx, s.ID)
}
