package ebitenplat

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"github.com/milk9111/lilah/assets"
	"github.com/milk9111/lilah/ecs/component"
)

const sampleRate = 44100

type fadeKind int

const (
	fadeNone fadeKind = iota
	fadeOut
	fadeIn
)

// Audio plays one music track at a time and any number of sound effects.
// Fades run frame by frame from Update.
type Audio struct {
	ctx    *audio.Context
	music  *audio.Player
	track  *assets.Audio
	volume float64
	paused bool

	fade      fadeKind
	fadeStep  float64
	fadeLevel float64
}

func NewAudio() *Audio {
	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(sampleRate)
	}
	return &Audio{ctx: ctx, volume: 1}
}

func (a *Audio) decode(clip *assets.Audio) (io.ReadSeeker, error) {
	r := bytes.NewReader(clip.Data)
	switch clip.Format {
	case "wav":
		return wav.DecodeWithSampleRate(a.ctx.SampleRate(), r)
	case "mp3":
		return mp3.DecodeWithSampleRate(a.ctx.SampleRate(), r)
	case "ogg":
		return vorbis.DecodeWithSampleRate(a.ctx.SampleRate(), r)
	}
	return nil, fmt.Errorf("ebitenplat: unsupported audio format %q", clip.Format)
}

func (a *Audio) player(clip *assets.Audio) (*audio.Player, error) {
	stream, err := a.decode(clip)
	if err != nil {
		return nil, err
	}
	return a.ctx.NewPlayer(stream)
}

// Play starts music from the beginning, replacing the current track.
func (a *Audio) Play(music *assets.Audio) {
	if music == nil {
		return
	}
	p, err := a.player(music)
	if err != nil {
		logger.Error("music unplayable", "id", music.ID, "err", err)
		return
	}
	if a.music != nil {
		_ = a.music.Close()
	}
	a.music, a.track = p, music
	a.fade = fadeNone
	a.paused = false
	p.SetVolume(a.volume)
	p.Play()
}

// Pause fades the music out over fade, then pauses it.
func (a *Audio) Pause(fade time.Duration) {
	if a.music == nil || !a.music.IsPlaying() {
		return
	}
	a.paused = true
	frames := fadeFrames(fade)
	if frames == 0 {
		a.music.Pause()
		a.fade = fadeNone
		return
	}
	a.fade = fadeOut
	a.fadeLevel = a.music.Volume()
	a.fadeStep = a.fadeLevel / float64(frames)
}

// Resume continues paused music, fading in over fade.
func (a *Audio) Resume(fade time.Duration) {
	if a.music == nil {
		return
	}
	a.paused = false
	frames := fadeFrames(fade)
	if frames == 0 {
		a.fade = fadeNone
		a.music.SetVolume(a.volume)
		a.music.Play()
		return
	}
	a.fade = fadeIn
	a.fadeLevel = 0
	a.fadeStep = a.volume / float64(frames)
	a.music.SetVolume(0)
	a.music.Play()
}

func (a *Audio) Volume() float64 { return a.volume }

func (a *Audio) SetVolume(v float64) {
	a.volume = min(max(v, 0), 1)
	if a.music != nil && a.fade == fadeNone {
		a.music.SetVolume(a.volume)
	}
}

// PlaySfx plays a one-shot effect. volume is on the 0..128 scale used by
// Sfx components.
func (a *Audio) PlaySfx(clip *assets.Audio, volume float64) {
	if clip == nil {
		return
	}
	p, err := a.player(clip)
	if err != nil {
		logger.Error("sfx unplayable", "id", clip.ID, "err", err)
		return
	}
	p.SetVolume(min(max(volume/component.DefaultSfxVolume, 0), 1) * a.volume)
	p.Play()
}

// Update advances fades and loops the music track.
func (a *Audio) Update() {
	if a.music == nil {
		return
	}
	switch a.fade {
	case fadeOut:
		a.fadeLevel -= a.fadeStep
		if a.fadeLevel <= 0 {
			a.music.Pause()
			a.music.SetVolume(a.volume)
			a.fade = fadeNone
			return
		}
		a.music.SetVolume(a.fadeLevel)
	case fadeIn:
		a.fadeLevel += a.fadeStep
		if a.fadeLevel >= a.volume {
			a.music.SetVolume(a.volume)
			a.fade = fadeNone
			return
		}
		a.music.SetVolume(a.fadeLevel)
	case fadeNone:
		if !a.paused && !a.music.IsPlaying() {
			if err := a.music.Rewind(); err == nil {
				a.music.Play()
			}
		}
	}
}

func fadeFrames(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d.Seconds() * float64(ebiten.TPS()))
}
