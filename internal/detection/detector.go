package detection

import (
	"context"
	"errors"
	"image"

	"github.com/ironsheep/pdf2cad/internal/imaging"
)

// ErrNoTextLayer is returned by LayerDetector for pages without a text layer.
var ErrNoTextLayer = errors.New("page has no text layer")

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// The coordinate convention follows standard image bounds:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// BoundsFromRect converts an image.Rectangle.
func BoundsFromRect(r image.Rectangle) Bounds {
	return Bounds{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// Rect converts the bounds to an image.Rectangle.
func (b Bounds) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// Region is one detected word.
type Region struct {
	Bounds     Bounds  `json:"bounds"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // 0-100
}

// TextLayer is implemented by pages that carry their own text, such as PDF
// pages with a content stream text layer. Regions are returned in raster
// pixels for a page rendered at scale pixels per source unit.
type TextLayer interface {
	TextRegions(scale float64) ([]Region, error)
}

// Detector finds text regions on one page. layer is nil when the page source
// has no text layer of its own.
type Detector interface {
	Name() string
	Detect(ctx context.Context, raster *imaging.Page, layer TextLayer) ([]Region, error)
}

// LayerDetector reads regions from the page's text layer.
type LayerDetector struct{}

// Name returns "pdf".
func (LayerDetector) Name() string { return "pdf" }

// Detect returns the text layer's regions, or ErrNoTextLayer.
func (LayerDetector) Detect(ctx context.Context, raster *imaging.Page, layer TextLayer) ([]Region, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if layer == nil {
		return nil, ErrNoTextLayer
	}
	regions, err := layer.TextRegions(raster.Scale)
	if err != nil {
		return nil, err
	}
	if len(regions) == 0 {
		return nil, ErrNoTextLayer
	}
	return regions, nil
}

// Auto uses Primary and falls back to Secondary when Primary reports
// ErrNoTextLayer.
type Auto struct {
	Primary   Detector
	Secondary Detector
}

// NewAuto prefers the text layer and falls back to fallback.
func NewAuto(fallback Detector) *Auto {
	return &Auto{Primary: LayerDetector{}, Secondary: fallback}
}

// Name returns "auto".
func (a *Auto) Name() string { return "auto" }

// Detect runs Primary, then Secondary if the page has no text layer.
func (a *Auto) Detect(ctx context.Context, raster *imaging.Page, layer TextLayer) ([]Region, error) {
	regions, err := a.Primary.Detect(ctx, raster, layer)
	if err == nil {
		return regions, nil
	}
	if !errors.Is(err, ErrNoTextLayer) || a.Secondary == nil {
		return nil, err
	}
	return a.Secondary.Detect(ctx, raster, layer)
}
