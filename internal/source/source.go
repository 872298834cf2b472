// Package source opens input documents and renders their pages to grayscale
// rasters.
//
// Two kinds of input are supported: PDF files, whose pages are rendered from
// their embedded raster images, and raster image files (or directories of
// them), where every file is one page.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/pdf2cad/internal/imaging"
)

var (
	// ErrNoRaster is returned when a page has no raster content to render.
	ErrNoRaster = errors.New("page has no raster content")

	// ErrUnsupported is returned for inputs that are neither PDFs nor images.
	ErrUnsupported = errors.New("unsupported input")
)

// Source units reported by Document.Unit.
const (
	UnitPoint = "pt"
	UnitPixel = "px"
)

// Document is an opened multi-page input.
type Document interface {
	PageCount() int
	// Page returns the zero-based page i.
	Page(i int) (Page, error)
	// Unit names the source unit that page sizes are measured in.
	Unit() string
	Close() error
}

// Page is one renderable page.
type Page interface {
	// Size returns the page size in source units.
	Size() (width, height float64, err error)
	// Render rasterizes the page at s pixels per source unit. The result is
	// ceil(width*s) x ceil(height*s) pixels.
	Render(s float64) (*imaging.Page, error)
}

// Open opens path as a PDF, a raster image, or a directory of raster images.
// cache may be nil for PDFs.
func Open(path string, cache *imaging.ImageCache) (Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if info.IsDir() || imaging.IsRasterFile(path) {
		if cache == nil {
			cache = imaging.NewImageCache()
		}
		return OpenImages(path, cache)
	}
	if IsPDF(path) {
		return OpenPDF(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(path))
}

// IsPDF reports whether path has a .pdf extension.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// IsSupported reports whether Open would accept path by its name.
func IsSupported(path string) bool {
	return IsPDF(path) || imaging.IsRasterFile(path)
}

func checkIndex(i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("invalid page index %d (document has %d pages)", i, n)
	}
	return nil
}

func checkScale(s float64) error {
	if !(s >= 1) {
		return fmt.Errorf("invalid oversampling factor %v: must be >= 1", s)
	}
	return nil
}

// OutputPath returns where the drawing converted from input is written: input
// with its extension replaced by ext, inside dir when dir is not empty.
// Directory inputs get ext appended to their name.
func OutputPath(input, dir, ext string) string {
	clean := filepath.Clean(input)
	var out string
	if info, err := os.Stat(clean); err == nil && info.IsDir() {
		out = clean + "." + ext
	} else {
		out = strings.TrimSuffix(clean, filepath.Ext(clean)) + "." + ext
	}
	if dir != "" {
		out = filepath.Join(dir, filepath.Base(out))
	}
	return out
}
