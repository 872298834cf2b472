package cad

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
)

// DXFEncoder writes ASCII DXF through github.com/yofu/dxf: traces become
// POLYLINE entities on LayerTrace and annotations TEXT entities on LayerText.
type DXFEncoder struct {
	// TraceColor and TextColor are AutoCAD color indexes.
	TraceColor color.ColorNumber
	TextColor  color.ColorNumber
}

// NewDXFEncoder returns an encoder with white/black traces and blue text.
func NewDXFEncoder() *DXFEncoder {
	return &DXFEncoder{TraceColor: color.White, TextColor: color.Blue}
}

// Extension returns the file extension, without the dot.
func (e *DXFEncoder) Extension() string { return "dxf" }

// MimeType returns the registered DXF media type.
func (e *DXFEncoder) MimeType() string { return "image/vnd.dxf" }

// Encode writes d. The caller holds d's lock.
func (e *DXFEncoder) Encode(buf *bytes.Buffer, d *Drawing) error {
	dw := dxf.NewDrawing()

	if _, err := dw.AddLayer(LayerText, e.TextColor, dxf.DefaultLineType, false); err != nil {
		return fmt.Errorf("dxf: add layer %s: %w", LayerText, err)
	}
	if _, err := dw.AddLayer(LayerTrace, e.TraceColor, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("dxf: add layer %s: %w", LayerTrace, err)
	}

	for i, pl := range d.polylines {
		vertices := make([][]float64, len(pl.Points))
		for j, p := range pl.Points {
			vertices[j] = []float64{p.X, p.Y, 0}
		}
		if _, err := dw.Polyline(pl.Closed, vertices...); err != nil {
			return fmt.Errorf("dxf: polyline %d: %w", i, err)
		}
	}

	if len(d.texts) > 0 {
		if err := dw.ChangeLayer(LayerText); err != nil {
			return fmt.Errorf("dxf: %w", err)
		}
		for i, t := range d.texts {
			if _, err := dw.Text(dxfText(t.Value), t.At.X, t.At.Y, 0, t.Height); err != nil {
				return fmt.Errorf("dxf: text %d: %w", i, err)
			}
		}
	}

	return writeDXF(buf, dw)
}

// writeDXF saves dw and copies the file into buf. The library only writes
// to named files.
func writeDXF(buf *bytes.Buffer, dw *drawing.Drawing) error {
	f, err := os.CreateTemp("", "pdf2cad-*.dxf")
	if err != nil {
		return fmt.Errorf("dxf: %w", err)
	}
	name := f.Name()
	f.Close()
	defer os.Remove(name)

	if err := dw.SaveAs(name); err != nil {
		return fmt.Errorf("dxf: save: %w", err)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return fmt.Errorf("dxf: %w", err)
	}
	buf.Write(data)
	return nil
}

// dxfText makes a string safe for a single group value: line breaks become
// spaces and non-ASCII runes use the \U+XXXX escape AutoCAD understands.
func dxfText(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteByte(' ')
		case r < 0x20:
			// drop other control characters
		case r < 0x80:
			b.WriteRune(r)
		default:
			fmt.Fprintf(&b, "\\U+%04X", r)
		}
	}
	return b.String()
}
