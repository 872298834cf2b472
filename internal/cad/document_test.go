package cad

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestDrawing_AppendPolyline(t *testing.T) {
	d := NewDrawing(NewDXFEncoder())

	d.AppendPolyline([]Point{{0, 0}, {0, 0}, {10, 0}, {10, 5}, {0, 0}}, true)
	d.AppendPolyline([]Point{{1, 1}}, false)         // too short
	d.AppendPolyline([]Point{{2, 2}, {2, 2}}, false) // collapses to one point
	d.AppendPolyline([]Point{{0, 0}, {3, 4}}, true)  // two points cannot close

	pls := d.Polylines()
	if len(pls) != 2 {
		t.Fatalf("polylines: got %d, want 2", len(pls))
	}

	tri := pls[0]
	if len(tri.Points) != 3 || !tri.Closed {
		t.Errorf("triangle: got %+v, want 3 points, closed", tri)
	}
	for i := 1; i < len(tri.Points); i++ {
		if tri.Points[i] == tri.Points[i-1] {
			t.Errorf("consecutive duplicate at %d", i)
		}
	}

	if pls[1].Closed {
		t.Error("two-point polyline should be open")
	}
}

func TestDrawing_AppendText(t *testing.T) {
	d := NewDrawing(NewDXFEncoder())
	d.AppendText("A-101", Point{5, 6}, 2.5)
	d.AppendText("", Point{}, 2)
	d.AppendText("zero", Point{}, 0)

	texts := d.Texts()
	if len(texts) != 1 {
		t.Fatalf("texts: got %d, want 1", len(texts))
	}
	if texts[0].Value != "A-101" || texts[0].At != (Point{5, 6}) || texts[0].Height != 2.5 {
		t.Errorf("unexpected text: %+v", texts[0])
	}
}

func TestDrawing_SerializeOnce(t *testing.T) {
	d := NewDrawing(NewDXFEncoder())
	d.AppendPolyline([]Point{{0, 0}, {1, 1}}, false)

	if _, err := d.Serialize(); err != nil {
		t.Fatalf("first Serialize failed: %v", err)
	}
	_, err := d.Serialize()
	if !errors.Is(err, ErrFinalized) {
		t.Errorf("second Serialize: got %v, want ErrFinalized", err)
	}

	d.AppendPolyline([]Point{{0, 0}, {2, 2}}, false)
	if n, _ := d.Counts(); n != 1 {
		t.Errorf("append after Serialize should be ignored, have %d polylines", n)
	}
}

func TestDrawing_Bounds(t *testing.T) {
	d := NewDrawing(NewSVGEncoder())
	if _, _, ok := d.Bounds(); ok {
		t.Error("empty drawing should have no bounds")
	}

	d.AppendPolyline([]Point{{1, 2}, {8, -3}}, false)
	d.AppendText("AB", Point{0, 0}, 10)

	min, max, ok := d.Bounds()
	if !ok {
		t.Fatal("expected bounds")
	}
	if min != (Point{0, -3}) {
		t.Errorf("min: got %+v", min)
	}
	if max.X != 12 || max.Y != 10 {
		t.Errorf("max: got %+v, want (12,10)", max)
	}
}

func TestDrawing_ConcurrentAppend(t *testing.T) {
	d := NewDrawing(NewDXFEncoder())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d.AppendPolyline([]Point{{0, 0}, {float64(i + 1), 0}}, false)
			d.AppendText("t", Point{}, 1)
		}(i)
	}
	wg.Wait()

	p, tx := d.Counts()
	if p != 20 || tx != 20 {
		t.Errorf("counts: got %d polylines, %d texts, want 20 each", p, tx)
	}
}

func TestEncoderFor(t *testing.T) {
	for _, format := range []string{"dxf", "svg"} {
		enc, err := EncoderFor(format)
		if err != nil {
			t.Fatalf("EncoderFor(%q) failed: %v", format, err)
		}
		if enc.Extension() != format {
			t.Errorf("extension: got %q, want %q", enc.Extension(), format)
		}
	}
	if _, err := EncoderFor("dwg"); err == nil {
		t.Error("expected error for dwg")
	}

	d, err := NewDrawingForFormat("svg")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(d.Encoder().MimeType(), "svg") {
		t.Errorf("mime type: got %q", d.Encoder().MimeType())
	}
}
