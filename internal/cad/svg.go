package cad

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// SVGEncoder writes the drawing as an SVG document with one group per layer.
// SVG is Y-down, so output Y values are mirrored about the drawing extents.
type SVGEncoder struct {
	TraceColor  colorful.Color
	TextColor   colorful.Color
	StrokeWidth float64
}

// NewSVGEncoder returns an encoder with black traces and blue text.
func NewSVGEncoder() *SVGEncoder {
	trace, _ := colorful.Hex("#000000")
	text, _ := colorful.Hex("#0050ff")
	return &SVGEncoder{TraceColor: trace, TextColor: text, StrokeWidth: 0.5}
}

// Extension returns the file extension, without the dot.
func (e *SVGEncoder) Extension() string { return "svg" }

// MimeType returns the SVG media type.
func (e *SVGEncoder) MimeType() string { return "image/svg+xml" }

type svgDocument struct {
	XMLName xml.Name   `xml:"svg"`
	Xmlns   string     `xml:"xmlns,attr"`
	Width   string     `xml:"width,attr"`
	Height  string     `xml:"height,attr"`
	ViewBox string     `xml:"viewBox,attr"`
	Groups  []svgGroup `xml:"g"`
}

type svgGroup struct {
	ID          string     `xml:"id,attr"`
	Stroke      string     `xml:"stroke,attr,omitempty"`
	StrokeWidth string     `xml:"stroke-width,attr,omitempty"`
	Fill        string     `xml:"fill,attr"`
	Polylines   []svgShape `xml:"polyline"`
	Polygons    []svgShape `xml:"polygon"`
	Texts       []svgText  `xml:"text"`
}

type svgShape struct {
	Points string `xml:"points,attr"`
}

type svgText struct {
	X        string `xml:"x,attr"`
	Y        string `xml:"y,attr"`
	FontSize string `xml:"font-size,attr"`
	Value    string `xml:",chardata"`
}

// Encode writes d. The caller holds d's lock.
func (e *SVGEncoder) Encode(buf *bytes.Buffer, d *Drawing) error {
	min, max, ok := d.bounds()
	if !ok {
		min, max = Point{}, Point{}
	}
	width, height := max.X-min.X, max.Y-min.Y

	flip := func(p Point) (float64, float64) {
		return p.X - min.X, max.Y - p.Y
	}

	traces := svgGroup{
		ID:          LayerTrace,
		Stroke:      e.TraceColor.Hex(),
		StrokeWidth: num(e.StrokeWidth),
		Fill:        "none",
	}
	for _, pl := range d.polylines {
		parts := make([]string, len(pl.Points))
		for i, p := range pl.Points {
			x, y := flip(p)
			parts[i] = num(x) + "," + num(y)
		}
		shape := svgShape{Points: strings.Join(parts, " ")}
		if pl.Closed {
			traces.Polygons = append(traces.Polygons, shape)
		} else {
			traces.Polylines = append(traces.Polylines, shape)
		}
	}

	texts := svgGroup{ID: LayerText, Fill: e.TextColor.Hex()}
	for _, t := range d.texts {
		x, y := flip(t.At)
		texts.Texts = append(texts.Texts, svgText{
			X:        num(x),
			Y:        num(y),
			FontSize: num(t.Height),
			Value:    t.Value,
		})
	}

	doc := svgDocument{
		Xmlns:   "http://www.w3.org/2000/svg",
		Width:   num(width),
		Height:  num(height),
		ViewBox: fmt.Sprintf("0 0 %s %s", num(width), num(height)),
		Groups:  []svgGroup{traces, texts},
	}

	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode svg: %w", err)
	}
	buf.WriteByte('\n')
	return nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
