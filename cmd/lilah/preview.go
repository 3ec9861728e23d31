package main

import (
	"fmt"
	"image/color"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/lilah/assets"
	"github.com/milk9111/lilah/ecs"
	"github.com/milk9111/lilah/ecs/component"
	"github.com/milk9111/lilah/prefabs"
	"github.com/spf13/cobra"
)

const previewSize = 512

var flagPreviewScale float64

var previewCmd = &cobra.Command{
	Use:   "preview <prefab>",
	Short: "Play the animations of a prefab's sprite",
	Long: `Open a window showing the prefab's sprite sheet played through its
Animator states. Left and Right switch states, Space pauses.

Examples:
  lilah preview prefabs/player.yaml
  lilah preview prefabs/player.yaml --scale 6`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().Float64Var(&flagPreviewScale, "scale", 4, "Pixel scale")
	rootCmd.AddCommand(previewCmd)
}

type preview struct {
	sheet  *ebiten.Image
	sprite *component.Sprite
	anim   *component.Animator
	states []string
	scale  float64
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	g, err := prefabs.BuildFile(cfg.FS, args[0])
	if err != nil {
		return err
	}
	sp, ok := ecs.Wrap[*component.Sprite](g)
	if !ok {
		return fmt.Errorf("%s has no Sprite", args[0])
	}
	file, ok := cfg.Assets.Textures[sp.TextureID]
	if !ok {
		return fmt.Errorf("texture %q is not in the project assets", sp.TextureID)
	}
	tex, err := assets.NewLoader(cfg.FS).Texture(sp.TextureID, file)
	if err != nil {
		return err
	}
	sp.Bind(tex.Width, tex.Height)

	anim, ok := ecs.Wrap[*component.Animator](g)
	if !ok {
		anim = component.NewAnimator()
	}
	p := &preview{
		sheet:  ebiten.NewImageFromImage(tex.Image),
		sprite: sp,
		anim:   anim,
		scale:  flagPreviewScale,
	}
	for name := range anim.States {
		p.states = append(p.states, name)
	}
	slices.Sort(p.states)
	if _, ok := anim.States[anim.Current]; !ok && len(p.states) > 0 {
		anim.SetState(p.states[0])
	}
	anim.Play()

	ebiten.SetWindowSize(previewSize, previewSize)
	ebiten.SetWindowTitle("lilah preview: " + g.ID.Name)
	return ebiten.RunGame(p)
}

func (p *preview) step(dir int) {
	if len(p.states) == 0 {
		return
	}
	i := slices.Index(p.states, p.anim.Current)
	i = (i + dir + len(p.states)) % len(p.states)
	p.anim.SetState(p.states[i])
	p.anim.Frame = 0
}

func (p *preview) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeyRight):
		p.step(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyLeft):
		p.step(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		p.anim.Playing = !p.anim.Playing
	}
	p.anim.Update(1 / float64(ebiten.TPS()))
	p.anim.Apply(p.sprite)
	return nil
}

func (p *preview) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{0x20, 0x20, 0x20, 0xff})
	src := p.sprite.SourceRect()
	cell, ok := p.sheet.SubImage(src).(*ebiten.Image)
	if !ok {
		return
	}
	w, h := float64(src.Dx())*p.scale, float64(src.Dy())*p.scale
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(p.scale, p.scale)
	op.GeoM.Translate((previewSize-w)/2, (previewSize-h)/2)
	op.Filter = ebiten.FilterNearest
	screen.DrawImage(cell, op)
	ebitenutil.DebugPrint(screen, fmt.Sprintf("state: %s  frame: %d  playing: %v", p.anim.Current, int(p.anim.Frame), p.anim.Playing))
}

func (p *preview) Layout(outsideWidth, outsideHeight int) (int, int) {
	return previewSize, previewSize
}
