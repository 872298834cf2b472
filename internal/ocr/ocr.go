package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/ironsheep/pdf2cad/internal/detection"
	"github.com/ironsheep/pdf2cad/internal/imaging"
)

// ErrOCRNotEnabled is returned when the binary was built without the "ocr" tag.
var ErrOCRNotEnabled = errors.New("OCR support not compiled in (build with -tags ocr)")

// DefaultLanguage is the Tesseract language used when none is configured.
const DefaultLanguage = "eng"

// Detector recognises words on a rendered page with Tesseract.
type Detector struct {
	// Language is a Tesseract language code, e.g. "eng" or "eng+deu".
	Language string
	// TessdataPrefix overrides the traineddata directory when non-empty.
	TessdataPrefix string
}

// NewDetector returns a detector for language, defaulting to English.
func NewDetector(language string) *Detector {
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}
	return &Detector{Language: language}
}

// Name returns "ocr".
func (d *Detector) Name() string { return "ocr" }

// Detect runs OCR over the whole raster. The text layer is ignored.
func (d *Detector) Detect(ctx context.Context, raster *imaging.Page, _ detection.TextLayer) ([]detection.Region, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if raster == nil || raster.Gray == nil {
		return nil, fmt.Errorf("no raster to recognise")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, raster.Gray); err != nil {
		return nil, fmt.Errorf("failed to encode page for OCR: %w", err)
	}

	words, err := d.recognize(ctx, buf.Bytes())
	if err != nil {
		return nil, err
	}
	return toRegions(words, raster.Gray.Rect), nil
}

// word is one recognised word in encoded-image coordinates.
type word struct {
	Box        image.Rectangle
	Text       string
	Confidence float64
}

// toRegions drops empty words, shifts boxes back into page coordinates and
// clips them to the page. Confidence is clamped to 0-100.
func toRegions(words []word, page image.Rectangle) []detection.Region {
	regions := make([]detection.Region, 0, len(words))
	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}
		box := w.Box.Add(page.Min).Intersect(page)
		if box.Empty() {
			continue
		}
		conf := w.Confidence
		if conf < 0 {
			conf = 0
		} else if conf > 100 {
			conf = 100
		}
		regions = append(regions, detection.Region{
			Bounds:     detection.BoundsFromRect(box),
			Text:       text,
			Confidence: conf,
		})
	}
	return regions
}

// Info contains information about the OCR subsystem.
type Info struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Language  string `json:"language"`
	Backend   string `json:"backend"`
	Error     string `json:"error,omitempty"`
}

// GetInfo returns information about OCR availability.
func GetInfo(language string) Info {
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}
	info := Info{Language: language, Backend: backend}
	version, err := engineVersion()
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.Available = true
	info.Version = version
	return info
}
