package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/blur"

	"github.com/ironsheep/pdf2cad/internal/config"
)

// ThresholdParams configures the adaptive threshold.
type ThresholdParams struct {
	// Method selects the local mean weighting: config.ThresholdGaussian or
	// config.ThresholdMean.
	Method string

	// BlockSize is the odd side length of the neighbourhood in pixels.
	BlockSize int

	// Offset is subtracted from the local mean before comparing.
	Offset float64
}

// DefaultThresholdParams returns the defaults used by the pipeline.
func DefaultThresholdParams() ThresholdParams {
	return ThresholdParams{
		Method:    config.ThresholdGaussian,
		BlockSize: config.DefaultThresholdBlockSize,
		Offset:    config.DefaultThresholdOffset,
	}
}

// Binarize classifies every pixel as ink or background with a locally
// adaptive threshold.
//
// A pixel is ink when its value is below the mean of its BlockSize
// neighbourhood minus Offset. The output is inverted relative to intensity:
// dark strokes become true cells. Uniform areas, including a blank page, have
// no pixel below their own mean and produce an empty mask.
func Binarize(p *Page, params ThresholdParams) (*Mask, error) {
	if params.BlockSize < 3 || params.BlockSize%2 == 0 {
		return nil, fmt.Errorf("threshold block size must be odd and >= 3, got %d", params.BlockSize)
	}
	radius := float64((params.BlockSize - 1) / 2)

	var means *image.Gray
	switch params.Method {
	case config.ThresholdMean:
		means = grayFromRGBA(blur.Box(p.Gray, radius))
	case config.ThresholdGaussian, "":
		means = grayFromRGBA(blur.Gaussian(p.Gray, radius))
	default:
		return nil, fmt.Errorf("unknown threshold method %q", params.Method)
	}

	w, h := p.Width(), p.Height()
	m := NewMask(w, h)
	for y := 0; y < h; y++ {
		row := p.Gray.Pix[y*p.Gray.Stride:]
		mrow := means.Pix[y*means.Stride:]
		for x := 0; x < w; x++ {
			if float64(row[x]) < float64(mrow[x])-params.Offset {
				m.Bits[y*w+x] = true
			}
		}
	}
	return m, nil
}
