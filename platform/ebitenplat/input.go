package ebitenplat

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/lilah/input"
)

const stickDeadZone = 0.3

var mouseButtons = map[ebiten.MouseButton]string{
	ebiten.MouseButtonLeft:   "left",
	ebiten.MouseButtonRight:  "right",
	ebiten.MouseButtonMiddle: "middle",
}

// pollInput copies keyboard and mouse state into in. Keys use ebiten's
// names ("A", "Space", "ArrowLeft"). The first standard gamepad presses
// the arrow keys with its left stick and Space with its bottom face button.
func pollInput(in *input.State) {
	pad := gamepadKeys()
	for k := ebiten.Key(0); k <= ebiten.KeyMax; k++ {
		in.SetKey(k.String(), ebiten.IsKeyPressed(k) || pad[k])
	}
	for b, name := range mouseButtons {
		in.SetMouse(name, ebiten.IsMouseButtonPressed(b))
	}
	mx, my := ebiten.CursorPosition()
	in.ScreenMouse = cp.Vector{X: float64(mx), Y: float64(my)}
}

func gamepadKeys() map[ebiten.Key]bool {
	ids := ebiten.AppendGamepadIDs(nil)
	if len(ids) == 0 || !ebiten.IsStandardGamepadLayoutAvailable(ids[0]) {
		return nil
	}
	gid := ids[0]
	x := ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisLeftStickHorizontal)
	y := ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisLeftStickVertical)
	return map[ebiten.Key]bool{
		ebiten.KeyArrowLeft:  x < -stickDeadZone,
		ebiten.KeyArrowRight: x > stickDeadZone,
		ebiten.KeyArrowUp:    y < -stickDeadZone,
		ebiten.KeyArrowDown:  y > stickDeadZone,
		ebiten.KeySpace:      ebiten.IsStandardGamepadButtonPressed(gid, ebiten.StandardGamepadButtonRightBottom),
	}
}
