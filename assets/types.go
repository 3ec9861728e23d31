package assets

import "image"

// Texture is a decoded image keyed by its asset id.
type Texture struct {
	ID     string
	Path   string
	Image  image.Image
	Width  int
	Height int
}

func NewTexture(id, path string, img image.Image) *Texture {
	b := img.Bounds()
	return &Texture{ID: id, Path: path, Image: img, Width: b.Dx(), Height: b.Dy()}
}

// Font holds raw font file bytes. Faces are built by the platform.
type Font struct {
	ID   string
	Path string
	Data []byte
}

// Audio holds an encoded audio file. Format is the lower-case file
// extension without the dot.
type Audio struct {
	ID     string
	Path   string
	Format string
	Data   []byte
}
