// Package game embeds the demo project run when no lilah.yaml is found.
package game

import "embed"

//go:embed lilah.yaml scripts prefabs scenes textures sounds
var FS embed.FS
