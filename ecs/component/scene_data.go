package component

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

var ErrUnknownSheet = errors.New("component: unknown tile sheet")

// SceneData is a tile map authored in the level editor.
type SceneData struct {
	Name       string      `json:"name"`
	Path       string      `json:"path"`
	TileSheets []TileSheet `json:"tile_sheets"`
	Layers     []Layer     `json:"layers"`
	Markers    []Marker    `json:"markers"`
}

type TileSheet struct {
	Filename     string `json:"filename"`
	Path         string `json:"path"`
	AbsolutePath string `json:"absolute_path"`
	TileSize     [2]int `json:"tile_size"`
	SheetSize    [2]int `json:"sheet_size"`
}

// TextureID is the texture key the sheet is drawn from.
func (s TileSheet) TextureID() string {
	if s.AbsolutePath != "" {
		return s.AbsolutePath
	}
	return s.Filename
}

// Grid returns the number of tile columns and rows in the sheet.
func (s TileSheet) Grid() (int, int) {
	if s.TileSize[0] <= 0 || s.TileSize[1] <= 0 {
		return 1, 1
	}
	return max(s.SheetSize[0]/s.TileSize[0], 1), max(s.SheetSize[1]/s.TileSize[1], 1)
}

type Layer struct {
	Tiles           []LayerTile `json:"tiles"`
	Visible         bool        `json:"visible"`
	Collision       bool        `json:"collision"`
	TileSheet       string      `json:"tile_sheet"`
	CurrentTileItem int         `json:"current_tile_item"`
}

// LayerTile is one grid cell of a layer. It is encoded as a
// two element array: [[x, y], tile].
type LayerTile struct {
	Cell [2]int
	Tile Tile
}

func (lt *LayerTile) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("component: layer tile: expected [cell, tile], got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &lt.Cell); err != nil {
		return fmt.Errorf("component: layer tile cell: %w", err)
	}
	if err := json.Unmarshal(pair[1], &lt.Tile); err != nil {
		return fmt.Errorf("component: layer tile: %w", err)
	}
	return nil
}

func (lt LayerTile) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{lt.Cell, lt.Tile})
}

type Tile struct {
	Sheet    string     `json:"sheet"`
	SheetID  [2]int     `json:"sheet_id"`
	Position [2]float64 `json:"position"`
}

type Marker struct {
	Position [2]float64 `json:"position"`
	Name     string     `json:"name"`
}

// ParseSceneData decodes a scene file.
func ParseSceneData(data []byte) (*SceneData, error) {
	var sd SceneData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("component: parse scene: %w", err)
	}
	for li, layer := range sd.Layers {
		for _, lt := range layer.Tiles {
			if _, ok := sd.Sheet(lt.Tile.Sheet); !ok {
				return nil, fmt.Errorf("component: parse scene %s layer %d: %w: %q", sd.Name, li, ErrUnknownSheet, lt.Tile.Sheet)
			}
		}
	}
	return &sd, nil
}

// Sheet finds a tile sheet by its path.
func (sd *SceneData) Sheet(path string) (TileSheet, bool) {
	for _, s := range sd.TileSheets {
		if s.Path == path {
			return s, true
		}
	}
	return TileSheet{}, false
}

// Marker finds a marker by name.
func (sd *SceneData) Marker(name string) (Marker, bool) {
	for _, m := range sd.Markers {
		if m.Name == name {
			return m, true
		}
	}
	return Marker{}, false
}
