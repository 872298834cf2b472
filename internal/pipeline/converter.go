// Package pipeline sequences the tracing stages over every page of a document
// and accumulates the results into one output drawing.
//
// Per page: Render, optional text masking, Denoise, Binarize, Skeletonize,
// Trace, Append. Page problems never abort the document; they are collected
// as PageError warnings on the Result.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/pdf2cad/internal/cad"
	"github.com/ironsheep/pdf2cad/internal/config"
	"github.com/ironsheep/pdf2cad/internal/detection"
	"github.com/ironsheep/pdf2cad/internal/imaging"
	"github.com/ironsheep/pdf2cad/internal/ocr"
	"github.com/ironsheep/pdf2cad/internal/source"
	"github.com/ironsheep/pdf2cad/internal/trace"
)

// ProgressFunc is called after each page is appended with the number of
// pages appended so far.
type ProgressFunc func(completed, total int)

// Result summarises one document conversion.
type Result struct {
	Pages     int          `json:"pages"`
	Completed int          `json:"completed"` // pages appended to the drawing
	Failed    int          `json:"failed"`
	Polylines int          `json:"polylines"`
	Texts     int          `json:"texts"`
	Warnings  []*PageError `json:"-"`
	// Output is the serialized drawing; nil when nothing was serialized.
	Output []byte `json:"-"`
}

// Converter runs the pipeline with a fixed configuration. It is safe to use
// for several documents, one at a time or concurrently.
type Converter struct {
	opts         config.Options
	logger       *slog.Logger
	skeletonizer *trace.Skeletonizer
	detector     detection.Detector
	threshold    imaging.ThresholdParams
	progress     ProgressFunc
	previewDir   string
	previewName  string
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDetector overrides the text detector chosen from the options. It only
// takes effect when text recognition is enabled.
func WithDetector(d detection.Detector) Option {
	return func(c *Converter) { c.detector = d }
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Converter) { c.progress = fn }
}

// WithPreview writes a PNG preview of every traced page into dir, named
// <name>-page-<n>.png. It overrides Options.PreviewDir.
func WithPreview(dir, name string) Option {
	return func(c *Converter) {
		c.previewDir = dir
		c.previewName = name
	}
}

// New validates opts and resolves every stage once.
func New(opts config.Options, options ...Option) (*Converter, error) {
	opts.Normalize()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	skel, err := trace.NewSkeletonizer(opts.Thinning)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}

	c := &Converter{
		opts:         opts,
		logger:       slog.Default(),
		skeletonizer: skel,
		threshold: imaging.ThresholdParams{
			Method:    opts.ThresholdMethod,
			BlockSize: opts.ThresholdBlockSize,
			Offset:    opts.ThresholdOffset,
		},
		previewDir: opts.PreviewDir,
	}
	for _, o := range options {
		o(c)
	}

	if !opts.TextRecognitionEnabled {
		c.detector = nil
	} else if c.detector == nil {
		c.detector = DetectorFor(opts)
	}

	if skel.Degraded() {
		c.logger.Warn("skeletonization disabled, tracing will produce doubled outlines",
			"thinning", skel.Algorithm())
	}
	if c.detector != nil {
		c.logger.Debug("text masking enabled",
			"detector", c.detector.Name(),
			"threshold", opts.TextConfidenceThreshold)
	}
	return c, nil
}

// DetectorFor builds the text detector selected by opts.TextSource.
func DetectorFor(opts config.Options) detection.Detector {
	switch opts.TextSource {
	case config.TextSourcePDF:
		return detection.LayerDetector{}
	case config.TextSourceOCR:
		return ocr.NewDetector(opts.OCRLanguage)
	default:
		return detection.NewAuto(ocr.NewDetector(opts.OCRLanguage))
	}
}

// Options returns the normalized options.
func (c *Converter) Options() config.Options { return c.opts }

// Convert processes every page of doc and appends the results to out in page
// order, then serializes out once.
//
// With more than one worker pages run concurrently but are still appended in
// order by this goroutine alone. The context is checked before each page
// starts; on cancellation pages already running finish, their output is
// appended, and out is left unserialized.
func (c *Converter) Convert(ctx context.Context, doc source.Document, out cad.Document) (*Result, error) {
	total := doc.PageCount()
	res := &Result{Pages: total}

	outputs := make(chan PageOutput)
	var g errgroup.Group
	g.SetLimit(c.opts.Workers)

	go func() {
		defer close(outputs)
		for i := 0; i < total; i++ {
			if ctx.Err() != nil {
				break
			}
			i := i
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				outputs <- c.processIndex(ctx, doc, i)
				return nil
			})
		}
		_ = g.Wait()
	}()

	pending := make(map[int]PageOutput)
	next := 0
	for o := range outputs {
		pending[o.Index] = o
		for {
			p, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			c.merge(res, out, p)
			next++
			res.Completed++
			if c.progress != nil {
				c.progress(res.Completed, total)
			}
		}
	}

	if next < total {
		return res, fmt.Errorf("conversion stopped after %d of %d pages: %w", next, total, context.Cause(ctx))
	}

	if res.Polylines == 0 && res.Texts == 0 {
		return res, ErrEmptyResult
	}

	data, err := out.Serialize()
	if err != nil {
		return res, fmt.Errorf("failed to serialize drawing: %w", err)
	}
	res.Output = data

	c.logger.Info("conversion complete",
		"pages", total,
		"failed", res.Failed,
		"polylines", res.Polylines,
		"texts", res.Texts,
		"warnings", len(res.Warnings),
		"bytes", len(data))
	return res, nil
}

func (c *Converter) processIndex(ctx context.Context, doc source.Document, i int) PageOutput {
	page, err := doc.Page(i)
	if err != nil {
		return PageOutput{Index: i, Err: &PageError{Page: i + 1, Kind: RenderFailure, Err: err}}
	}
	return c.ProcessPage(ctx, page, i, c.Oversample(doc.Unit()), false)
}

// merge appends one page to the drawing. Only the Convert goroutine calls it.
func (c *Converter) merge(res *Result, out cad.Document, p PageOutput) {
	res.Warnings = append(res.Warnings, p.Warnings...)
	for _, w := range p.Warnings {
		if w.Kind == DegradedCapability {
			continue // logged once by New
		}
		c.logger.Warn("page warning", "page", w.Page, "kind", w.Kind.String(), "error", w.Err)
	}

	if p.Err != nil {
		res.Failed++
		res.Warnings = append(res.Warnings, p.Err)
		c.logger.Error("page failed", "page", p.Err.Page, "kind", p.Err.Kind.String(), "error", p.Err.Err)
		return
	}

	for _, pl := range p.Polylines {
		out.AppendPolyline(pl.Points, pl.Closed)
	}
	for _, a := range p.Annotations {
		out.AppendText(a.Text, a.At, a.Height)
	}
	res.Polylines += len(p.Polylines)
	res.Texts += len(p.Annotations)

	c.logger.Debug("page traced",
		"page", p.Index+1,
		"size", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"polylines", len(p.Polylines),
		"texts", len(p.Annotations),
		"masked", len(p.MaskRects),
		"ink", p.Ink.Ink,
		"rejected_text", p.Rejected,
		"elapsed", p.Elapsed)
}

func (c *Converter) writePreview(index int, img *image.RGBA) {
	name := c.previewName
	if name == "" {
		name = "preview"
	}
	path := filepath.Join(c.previewDir, fmt.Sprintf("%s-page-%d.png", name, index+1))

	if err := os.MkdirAll(c.previewDir, 0o755); err != nil {
		c.logger.Warn("failed to create preview directory", "dir", c.previewDir, "error", err)
		return
	}
	f, err := os.Create(path)
	if err != nil {
		c.logger.Warn("failed to write preview", "path", path, "error", err)
		return
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		c.logger.Warn("failed to encode preview", "path", path, "error", err)
		return
	}
	c.logger.Debug("preview written", "path", path)
}
