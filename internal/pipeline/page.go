package pipeline

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/ironsheep/pdf2cad/internal/detection"
	"github.com/ironsheep/pdf2cad/internal/imaging"
	"github.com/ironsheep/pdf2cad/internal/source"
	"github.com/ironsheep/pdf2cad/internal/trace"
)

// Stage names an intermediate raster kept by ProcessPage.
type Stage string

const (
	StageRender   Stage = "render"
	StageMasked   Stage = "masked"
	StageDenoised Stage = "denoised"
	StageBinary   Stage = "binary"
	StageSkeleton Stage = "skeleton"
	StagePreview  Stage = "preview"
)

// Stages lists every stage in processing order.
var Stages = []Stage{StageRender, StageMasked, StageDenoised, StageBinary, StageSkeleton, StagePreview}

// PageOutput is everything one page produced.
type PageOutput struct {
	// Index is zero-based.
	Index int

	Width, Height int
	Polylines     []trace.Polyline
	Annotations   []detection.Annotation
	MaskRects     []image.Rectangle
	// Rejected counts text regions below the confidence threshold.
	Rejected int
	// Ink describes the binary mask before thinning.
	Ink imaging.MaskStats
	// Components counts the connected strokes of the skeleton. Only computed
	// when the stage rasters are kept.
	Components int

	// Warnings are recoverable problems; the page still produced output.
	Warnings []*PageError
	// Err is set when the page failed and produced nothing.
	Err *PageError

	// Images holds intermediate rasters when requested.
	Images map[Stage]image.Image

	Elapsed time.Duration
}

// Oversample is the raster scale used for pages of a document in unit.
func (c *Converter) Oversample(unit string) int {
	return c.opts.Oversample(unit == source.UnitPixel)
}

// ProcessPage runs one page through every stage, rendering it at oversample
// raster pixels per source unit. It never returns an error: failures are
// recorded on the output. When keep is true the intermediate rasters are
// returned in Images.
func (c *Converter) ProcessPage(ctx context.Context, page source.Page, index, oversample int, keep bool) (out PageOutput) {
	start := time.Now()
	out.Index = index
	if keep {
		out.Images = make(map[Stage]image.Image, len(Stages))
	}

	defer func() {
		if rec := recover(); rec != nil {
			out.Polylines, out.Annotations, out.MaskRects = nil, nil, nil
			out.Err = &PageError{Page: index + 1, Kind: RenderFailure, Err: fmt.Errorf("panic: %v", rec)}
		}
		out.Elapsed = time.Since(start)
	}()

	raster, err := page.Render(float64(oversample))
	if err != nil {
		out.Err = &PageError{Page: index + 1, Kind: RenderFailure, Err: err}
		return out
	}
	out.Width, out.Height = raster.Width(), raster.Height()
	if keep {
		out.Images[StageRender] = raster.Gray
	}

	tr := trace.NewTransform(raster.Height(), raster.Scale, c.opts.OutputScale)

	working := raster
	if c.detector != nil {
		layer, _ := page.(detection.TextLayer)
		regions, err := c.detector.Detect(ctx, raster, layer)
		if err != nil {
			out.Warnings = append(out.Warnings, &PageError{Page: index + 1, Kind: DetectionFailure, Err: err})
		} else {
			sel := detection.Select(regions, float64(c.opts.TextConfidenceThreshold), c.opts.TextMaskPadding, raster.Gray.Rect, tr)
			out.Annotations = sel.Annotations
			out.MaskRects = sel.MaskRects
			out.Rejected = sel.Rejected
			if len(sel.MaskRects) > 0 {
				working = raster.Clone()
				imaging.EraseRects(working, sel.MaskRects)
			}
		}
	}
	if keep {
		out.Images[StageMasked] = working.Gray
	}

	denoised := imaging.Denoise(working, c.opts.DenoiseStrength)
	if keep {
		out.Images[StageDenoised] = denoised.Gray
	}

	mask, err := imaging.Binarize(denoised, c.threshold)
	if err != nil {
		out.Annotations, out.MaskRects = nil, nil
		out.Err = &PageError{Page: index + 1, Kind: RenderFailure, Err: err}
		return out
	}
	out.Ink = imaging.Measure(mask)
	if keep {
		out.Images[StageBinary] = mask.Image()
	}

	skeleton := c.skeletonizer.Apply(mask)
	if c.skeletonizer.Degraded() {
		out.Warnings = append(out.Warnings, &PageError{Page: index + 1, Kind: DegradedCapability, Err: errDegraded})
	}
	if keep {
		out.Images[StageSkeleton] = skeleton.Image()
		out.Components = trace.CountComponents(skeleton)
	}

	out.Polylines = trace.Trace(skeleton, tr, trace.Options{
		SimplifyFactor:   c.opts.SimplifyFactor,
		MinContourPoints: c.opts.MinContourPoints,
	})

	if keep || c.previewDir != "" {
		preview := imaging.Preview(raster, trace.Paths(out.Polylines), out.MaskRects, imaging.DefaultPreviewOptions())
		if keep {
			out.Images[StagePreview] = preview
		}
		if c.previewDir != "" {
			c.writePreview(index, preview)
		}
	}

	return out
}
