package ecs

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/lilah/assets"
	"github.com/milk9111/lilah/ecs/component"
)

// SfxPlayer plays one-shot sound effects.
type SfxPlayer interface {
	PlaySfx(a *assets.Audio, volume float64)
}

// Load runs once per frame for every object. The first call binds assets
// and sets Init. Every later call sets Start. Pending Sfx triggers are
// played on every call.
func (g *GameObject) Load(s *State, player SfxPlayer) {
	for _, sfx := range WrapAll[*component.Sfx](g) {
		if !sfx.Consume() {
			continue
		}
		a, ok := s.Sfx[sfx.File]
		if !ok {
			logger.Warn("sfx not loaded", "object", g.ID.Name, "sfx", sfx.Name, "file", sfx.File)
			continue
		}
		if player != nil {
			player.PlaySfx(a, sfx.Volume)
		}
	}

	if g.Init {
		g.Start = true
		return
	}

	if sc, ok := Wrap[*component.Scene](g); ok {
		g.loadScene(s, sc)
	}
	if sp, ok := Wrap[*component.Sprite](g); ok {
		s.bindSprite(g, sp)
	}
	if txt, ok := Wrap[*component.Text](g); ok && txt.Font != "" {
		if _, ok := s.Fonts[txt.Font]; !ok {
			logger.Warn("font not loaded", "object", g.ID.Name, "font", txt.Font)
		}
	}
	if rb, ok := Wrap[*component.Rigidbody](g); ok {
		if sp, ok := Wrap[*component.Sprite](g); ok && sp.Bound {
			rb.FitSprite(sp)
		}
		if tr, ok := Wrap[*component.Transform](g); ok {
			rb.Position = tr.Position
		}
	}

	g.Init = true
}

func (g *GameObject) loadScene(s *State, sc *component.Scene) {
	data, ok := s.Scenes[sc.File]
	if !ok {
		logger.Warn("scene not loaded", "object", g.ID.Name, "scene", sc.File)
		return
	}
	var origin cp.Vector
	if tr, ok := Wrap[*component.Transform](g); ok {
		origin = tr.Position
	}
	if err := sc.Load(data, origin); err != nil {
		logger.Error("scene load failed", "object", g.ID.Name, "err", err)
		return
	}
	for _, tile := range sc.Tiles {
		s.bindSprite(g, tile.Sprite)
	}
}

// Update ticks the links between components: bounds follow the sprite
// cell, the body follows authored scale and pivot, the transform follows
// the simulated body, and the animator drives the sprite cell.
func (g *GameObject) Update(dt float64) {
	rb, hasBody := Wrap[*component.Rigidbody](g)
	sp, hasSprite := Wrap[*component.Sprite](g)
	tr, hasTransform := Wrap[*component.Transform](g)
	an, hasAnimator := Wrap[*component.Animator](g)

	if hasBody && hasSprite && sp.Bound {
		rb.FitSprite(sp)
	}
	if hasBody && hasTransform {
		rb.FollowTransform(tr)
		tr.FollowBody(rb)
	}
	if hasAnimator && hasSprite {
		an.Update(dt)
		an.Apply(sp)
	}
}
