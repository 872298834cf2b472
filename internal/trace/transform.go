package trace

import (
	"image"

	"github.com/ironsheep/pdf2cad/internal/cad"
)

// Transform maps raster pixels (Y down, origin top-left) to output space
// (Y up, origin bottom-left).
type Transform struct {
	// Height is the raster height in pixels.
	Height int

	// K converts pixels to output units: outputScale / page.Scale.
	K float64
}

// NewTransform builds the transform for a page of pageHeight pixels rendered at
// pageScale pixels per source unit.
func NewTransform(pageHeight int, pageScale, outputScale float64) Transform {
	return Transform{Height: pageHeight, K: outputScale / pageScale}
}

// Apply maps a pixel to output space: (px*K, (Height-py)*K).
func (t Transform) Apply(p image.Point) cad.Point {
	return t.ApplyXY(float64(p.X), float64(p.Y))
}

// ApplyXY is Apply for fractional pixel coordinates.
func (t Transform) ApplyXY(px, py float64) cad.Point {
	return cad.Point{X: px * t.K, Y: (float64(t.Height) - py) * t.K}
}

// Length converts a pixel distance to output units.
func (t Transform) Length(pixels float64) float64 {
	return pixels * t.K
}
