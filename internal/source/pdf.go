package source

import (
	"fmt"
	"image"
	"os"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/ironsheep/pdf2cad/internal/detection"
	"github.com/ironsheep/pdf2cad/internal/imaging"
)

// Glyph box proportions relative to the font size, measured from the baseline.
const (
	glyphAscent  = 0.8
	glyphDescent = 0.2
	glyphAdvance = 0.6 // used when the font has no width table
	wordGap      = 0.3 // max gap between glyphs of one word, in line heights
)

// PDFDocument renders PDF pages from their embedded raster images.
//
// Page geometry and images come from pdfcpu; the optional text layer is read
// with ledongthuc/pdf. Neither library is safe for concurrent use of one
// document, so both are guarded by mu.
type PDFDocument struct {
	mu   sync.Mutex
	path string
	ctx  *model.Context
	dims []types.Dim

	textFile *os.File
	text     *pdf.Reader
}

// OpenPDF reads and validates a PDF. A PDF whose text layer cannot be parsed
// still opens; its pages simply report no text layer.
func OpenPDF(path string) (*PDFDocument, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.Cmd = model.EXTRACTIMAGES

	ctx, err := api.ReadValidateAndOptimize(file, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	dims, err := ctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("failed to read page dimensions: %w", err)
	}

	doc := &PDFDocument{path: path, ctx: ctx, dims: dims}
	doc.textFile, doc.text = openTextLayer(path)
	return doc, nil
}

// openTextLayer opens the ledongthuc reader, returning nils on any failure.
func openTextLayer(path string) (f *os.File, r *pdf.Reader) {
	defer func() {
		if rec := recover(); rec != nil {
			if f != nil {
				f.Close()
			}
			f, r = nil, nil
		}
	}()
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, nil
	}
	return f, r
}

// PageCount returns the number of pages.
func (d *PDFDocument) PageCount() int { return len(d.dims) }

// Unit returns UnitPoint.
func (d *PDFDocument) Unit() string { return UnitPoint }

// HasTextLayer reports whether the text layer reader could be opened.
func (d *PDFDocument) HasTextLayer() bool { return d.text != nil }

// Page returns page i (zero-based).
func (d *PDFDocument) Page(i int) (Page, error) {
	if err := checkIndex(i, len(d.dims)); err != nil {
		return nil, err
	}
	return &pdfPage{doc: d, index: i}, nil
}

// Close releases the text layer file handle.
func (d *PDFDocument) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.textFile != nil {
		err := d.textFile.Close()
		d.textFile, d.text = nil, nil
		return err
	}
	return nil
}

type pdfPage struct {
	doc   *PDFDocument
	index int
}

func (p *pdfPage) Size() (float64, float64, error) {
	dim := p.doc.dims[p.index]
	return dim.Width, dim.Height, nil
}

// Render draws the page's largest embedded image over the whole page.
func (p *pdfPage) Render(s float64) (*imaging.Page, error) {
	if err := checkScale(s); err != nil {
		return nil, err
	}
	dim := p.doc.dims[p.index]
	w, h := imaging.RenderSize(dim.Width, dim.Height, s)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("page %d has empty dimensions %vx%v", p.index+1, dim.Width, dim.Height)
	}

	img, err := p.largestImage()
	if err != nil {
		return nil, err
	}
	return imaging.PageFromImage(imaging.Resample(img, w, h), s), nil
}

func (p *pdfPage) largestImage() (best image.Image, err error) {
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()

	defer func() {
		if rec := recover(); rec != nil {
			best, err = nil, fmt.Errorf("image extraction panicked on page %d: %v", p.index+1, rec)
		}
	}()

	images, err := pdfcpu.ExtractPageImages(p.doc.ctx, p.index+1, false)
	if err != nil {
		return nil, fmt.Errorf("failed to extract images from page %d: %w", p.index+1, err)
	}

	var unsupported []string
	bestArea := 0
	for _, pi := range images {
		if strings.EqualFold(pi.FileType, "jpx") {
			unsupported = append(unsupported, pi.Name)
			continue
		}
		img, _, err := image.Decode(pi)
		if err != nil {
			unsupported = append(unsupported, pi.Name)
			continue
		}
		if area := img.Bounds().Dx() * img.Bounds().Dy(); area > bestArea {
			best, bestArea = img, area
		}
	}

	if best == nil {
		if len(unsupported) > 0 {
			return nil, fmt.Errorf("%w: page %d images could not be decoded (%s)",
				ErrNoRaster, p.index+1, strings.Join(unsupported, ", "))
		}
		return nil, fmt.Errorf("%w: page %d", ErrNoRaster, p.index+1)
	}
	return best, nil
}

// TextRegions reads the page's text layer as word regions in raster pixels
// for a page rendered at scale. Confidence is always 100.
func (p *pdfPage) TextRegions(scale float64) (regions []detection.Region, err error) {
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()

	if p.doc.text == nil {
		return nil, detection.ErrNoTextLayer
	}

	defer func() {
		if rec := recover(); rec != nil {
			regions, err = nil, fmt.Errorf("text layer of page %d is malformed: %v", p.index+1, rec)
		}
	}()

	page := p.doc.text.Page(p.index + 1)
	if page.V.IsNull() {
		return nil, detection.ErrNoTextLayer
	}

	left, top := 0.0, p.doc.dims[p.index].Height
	if box := inheritedKey(page.V, "MediaBox"); box.Len() == 4 {
		left, top = box.Index(0).Float64(), box.Index(3).Float64()
	}

	content := page.Content()
	glyphs := make([]detection.Region, 0, len(content.Text))
	for _, t := range content.Text {
		if t.S == "" || t.FontSize <= 0 {
			continue
		}
		width := t.W
		if width <= 0 {
			width = glyphAdvance * t.FontSize * float64(len([]rune(t.S)))
		}
		x1 := (t.X - left) * scale
		x2 := (t.X + width - left) * scale
		y1 := (top - (t.Y + glyphAscent*t.FontSize)) * scale
		y2 := (top - (t.Y - glyphDescent*t.FontSize)) * scale
		glyphs = append(glyphs, detection.Region{
			Bounds: detection.Bounds{
				X1: int(x1),
				Y1: int(y1),
				X2: int(x2 + 0.999),
				Y2: int(y2 + 0.999),
			},
			Text:       t.S,
			Confidence: 100,
		})
	}

	return detection.MergeWords(glyphs, wordGap), nil
}

// inheritedKey looks key up on a page dictionary and then along its Parent
// chain, the way page attributes are inherited in the page tree.
func inheritedKey(v pdf.Value, key string) pdf.Value {
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		if r := v.Key(key); !r.IsNull() {
			return r
		}
		v = v.Key("Parent")
	}
	return pdf.Value{}
}
