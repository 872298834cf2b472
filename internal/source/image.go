package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ironsheep/pdf2cad/internal/imaging"
)

// ImageDocument treats raster image files as pages, one per file.
type ImageDocument struct {
	cache *imaging.ImageCache
	paths []string
}

// OpenImages opens a single image file, or every raster image directly inside
// a directory in lexical filename order.
func OpenImages(path string, cache *imaging.ImageCache) (*ImageDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	var paths []string
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
		}
		for _, e := range entries {
			if !e.IsDir() && imaging.IsRasterFile(e.Name()) {
				paths = append(paths, filepath.Join(path, e.Name()))
			}
		}
		sort.Strings(paths)
		if len(paths) == 0 {
			return nil, fmt.Errorf("%w: no raster images in %s", ErrUnsupported, path)
		}
	} else {
		if !imaging.IsRasterFile(path) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(path))
		}
		paths = []string{path}
	}

	return &ImageDocument{cache: cache, paths: paths}, nil
}

// PageCount returns the number of image files.
func (d *ImageDocument) PageCount() int { return len(d.paths) }

// Unit returns UnitPixel.
func (d *ImageDocument) Unit() string { return UnitPixel }

// Paths returns the page files in page order.
func (d *ImageDocument) Paths() []string {
	return append([]string(nil), d.paths...)
}

// Page returns the image at index i. The file is not read until the page is
// measured or rendered.
func (d *ImageDocument) Page(i int) (Page, error) {
	if err := checkIndex(i, len(d.paths)); err != nil {
		return nil, err
	}
	return &imagePage{cache: d.cache, path: d.paths[i]}, nil
}

// Close drops the document's images from the cache.
func (d *ImageDocument) Close() error {
	for _, p := range d.paths {
		d.cache.Evict(p)
	}
	return nil
}

type imagePage struct {
	cache *imaging.ImageCache
	path  string
}

func (p *imagePage) Size() (float64, float64, error) {
	img, err := p.cache.Load(p.path)
	if err != nil {
		return 0, 0, err
	}
	b := img.Bounds()
	return float64(b.Dx()), float64(b.Dy()), nil
}

func (p *imagePage) Render(s float64) (*imaging.Page, error) {
	if err := checkScale(s); err != nil {
		return nil, err
	}
	img, err := p.cache.Load(p.path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoRaster, filepath.Base(p.path))
	}
	w, h := imaging.RenderSize(float64(b.Dx()), float64(b.Dy()), s)
	return imaging.PageFromImage(imaging.Resample(img, w, h), s), nil
}
