package imaging

import "catalog-service/internal/model"

// Output is an encoded rendition
type Output struct {
	Data   []byte
	Width  int
	Height int
}

// Renderer turns a source image into one rendition. Implementations must
// normalise EXIF orientation before resizing.
type Renderer interface {
	Render(src []byte, spec Spec, format model.ImageFormat, quality int) (Output, error)
}
