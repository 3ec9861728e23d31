// Package ebitenplat runs an engine in an ebiten window.
package ebitenplat

import (
	"errors"
	"os"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/lilah/engine"
	"github.com/milk9111/lilah/input"
	"github.com/milk9111/lilah/logging"
	"github.com/milk9111/lilah/prefabs"
	"github.com/milk9111/lilah/scripting"
	"golang.design/x/clipboard"
)

var logger = logging.New("ebiten")

// Game adapts an engine to ebiten.Game. Escape opens the pause menu, F3
// toggles debug drawing, F9 copies a world snapshot to the clipboard and
// F11 toggles fullscreen.
type Game struct {
	engine   *engine.Engine
	renderer *Renderer
	audio    *Audio
	pause    *ebitenui.UI

	width, height int
	paused        bool
	quit          bool
	clipboard     bool
}

// NewGame wraps e. The engine must not be started yet.
func NewGame(e *engine.Engine, a *Audio) *Game {
	cfg := e.Config()
	g := &Game{
		engine:   e,
		renderer: NewRenderer(),
		audio:    a,
		width:    cfg.Window.Width,
		height:   cfg.Window.Height,
	}
	g.pause = newPauseUI(g, g.width, g.height)
	if err := clipboard.Init(); err != nil {
		logger.Warn("clipboard unavailable", "err", err)
	} else {
		g.clipboard = true
	}
	return g
}

// PreFrame polls ebiten input into in and reports whether the window asked
// to close.
func (g *Game) PreFrame(in *input.State) bool {
	pollInput(in)
	if ebiten.IsWindowBeingClosed() || g.quit {
		in.Quit = true
	}
	return in.Quit
}

// PresentFrame is a no-op. ebiten paces frames itself.
func (g *Game) PresentFrame() {}

func (g *Game) Window() scripting.Window { return window{g} }

func (g *Game) resume() {
	g.paused = false
	g.audio.Resume(0)
}

func (g *Game) hotkeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		if g.paused {
			g.resume()
		} else {
			g.paused = true
			g.audio.Pause(0)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.engine.Debug = !g.engine.Debug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		g.copySnapshot()
	}
}

func (g *Game) copySnapshot() {
	data, err := prefabs.Snapshot(g.engine.State)
	if err != nil {
		logger.Error("snapshot failed", "err", err)
		return
	}
	if !g.clipboard {
		os.Stdout.Write(data)
		return
	}
	clipboard.Write(clipboard.FmtText, data)
	logger.Info("snapshot copied", "bytes", len(data))
}

func (g *Game) Update() error {
	g.hotkeys()
	if g.paused {
		g.pause.Update()
		if g.quit {
			return ebiten.Termination
		}
		return nil
	}
	if g.PreFrame(g.engine.Input) {
		return ebiten.Termination
	}
	if err := g.engine.Step(); err != nil {
		return err
	}
	g.audio.Update()
	if g.engine.Input.Quit {
		return ebiten.Termination
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.begin(screen)
	g.renderer.Forget(g.engine.State.Textures)
	g.engine.Draw(g.renderer)
	if g.engine.Debug {
		g.renderer.debugText(fpsLine(ebiten.ActualFPS(), g.engine.State.Len(), g.engine.Frames()))
	}
	if g.paused {
		g.pause.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

type window struct{ g *Game }

func (w window) Size() (int, int)      { return w.g.width, w.g.height }
func (w window) Fullscreen() bool      { return ebiten.IsFullscreen() }
func (w window) SetFullscreen(on bool) { ebiten.SetFullscreen(on) }

// Run opens the window, starts e and blocks until the game quits.
func Run(e *engine.Engine, a *Audio) error {
	cfg := e.Config()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetFullscreen(cfg.Window.Fullscreen)
	if cfg.Window.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	ebiten.SetTPS(cfg.FPS)
	ebiten.SetWindowClosingHandled(true)

	g := NewGame(e, a)
	e.SetWindow(g.Window())
	if err := e.Start(); err != nil {
		return err
	}
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}
