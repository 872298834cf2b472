// Package cad accumulates traced geometry and text and serializes it once as
// a DXF or SVG drawing.
//
// Coordinates are in output space: units chosen by the caller through the
// output scale, origin at the bottom-left, Y increasing upward.
package cad

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
)

// ErrFinalized is returned when a drawing is serialized a second time.
var ErrFinalized = errors.New("drawing already serialized")

// Layer names used for the two kinds of entity.
const (
	LayerTrace = "TRACE"
	LayerText  = "TEXT"
)

// Point is a position in output space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polyline is an ordered run of at least two points with no consecutive
// duplicates. A closed polyline implicitly joins its last point to its first.
type Polyline struct {
	Points []Point `json:"points"`
	Closed bool    `json:"closed"`
}

// Text is a single-line annotation anchored at its lower-left corner.
type Text struct {
	Value  string  `json:"text"`
	At     Point   `json:"at"`
	Height float64 `json:"height"`
}

// Document is the output sink of the pipeline.
type Document interface {
	AppendPolyline(points []Point, closed bool)
	AppendText(text string, at Point, height float64)
	Serialize() ([]byte, error)
}

// Encoder writes a finished drawing in a concrete file format.
type Encoder interface {
	Encode(buf *bytes.Buffer, d *Drawing) error
	Extension() string
	MimeType() string
}

// Drawing is an append-only Document. It is safe for concurrent use.
type Drawing struct {
	mu        sync.Mutex
	encoder   Encoder
	polylines []Polyline
	texts     []Text
	finalized bool
}

// NewDrawing returns an empty drawing serialized by enc.
func NewDrawing(enc Encoder) *Drawing {
	return &Drawing{encoder: enc}
}

// NewDrawingForFormat returns an empty drawing for "dxf" or "svg".
func NewDrawingForFormat(format string) (*Drawing, error) {
	enc, err := EncoderFor(format)
	if err != nil {
		return nil, err
	}
	return NewDrawing(enc), nil
}

// EncoderFor returns the encoder registered for a format name.
func EncoderFor(format string) (Encoder, error) {
	switch format {
	case "dxf":
		return NewDXFEncoder(), nil
	case "svg":
		return NewSVGEncoder(), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// AppendPolyline adds a polyline. Consecutive duplicate points are dropped;
// if fewer than two points remain the call has no effect. Calls after
// Serialize are ignored.
func (d *Drawing) AppendPolyline(points []Point, closed bool) {
	pts := dedupe(points, closed)
	if len(pts) < 2 {
		return
	}
	if len(pts) == 2 {
		closed = false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.finalized {
		return
	}
	d.polylines = append(d.polylines, Polyline{Points: pts, Closed: closed})
}

// AppendText adds a text annotation. Empty strings and non-positive heights
// are ignored, as are calls after Serialize.
func (d *Drawing) AppendText(text string, at Point, height float64) {
	if text == "" || !(height > 0) {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.finalized {
		return
	}
	d.texts = append(d.texts, Text{Value: text, At: at, Height: height})
}

// Serialize encodes the drawing. It succeeds exactly once.
func (d *Drawing) Serialize() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.finalized {
		return nil, ErrFinalized
	}
	d.finalized = true

	var buf bytes.Buffer
	if err := d.encoder.Encode(&buf, d); err != nil {
		return nil, fmt.Errorf("failed to encode drawing: %w", err)
	}
	return buf.Bytes(), nil
}

// Encoder returns the encoder the drawing serializes with.
func (d *Drawing) Encoder() Encoder { return d.encoder }

// Polylines returns a copy of the accumulated polylines.
func (d *Drawing) Polylines() []Polyline {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Polyline, len(d.polylines))
	copy(out, d.polylines)
	return out
}

// Texts returns a copy of the accumulated annotations.
func (d *Drawing) Texts() []Text {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Text, len(d.texts))
	copy(out, d.texts)
	return out
}

// Counts returns the number of polylines and texts appended so far.
func (d *Drawing) Counts() (polylines, texts int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.polylines), len(d.texts)
}

// Bounds returns the extents of every entity. ok is false for an empty drawing.
// Callers inside Encode already hold the lock and use bounds instead.
func (d *Drawing) Bounds() (min, max Point, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bounds()
}

func (d *Drawing) bounds() (min, max Point, ok bool) {
	grow := func(p Point) {
		if !ok {
			min, max, ok = p, p, true
			return
		}
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	for _, pl := range d.polylines {
		for _, p := range pl.Points {
			grow(p)
		}
	}
	for _, t := range d.texts {
		grow(t.At)
		// Rough glyph box: one height tall, 0.6 height per character wide.
		grow(Point{X: t.At.X + 0.6*t.Height*float64(len([]rune(t.Value))), Y: t.At.Y + t.Height})
	}
	return min, max, ok
}

func dedupe(points []Point, closed bool) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	if closed {
		for len(out) > 1 && out[len(out)-1] == out[0] {
			out = out[:len(out)-1]
		}
	}
	return out
}
