package imaging

import (
	"image"
	"testing"
)

func TestPreview_DrawsPaths(t *testing.T) {
	p := createGrayPage(50, 50, 255)
	paths := []Path{
		{Points: []image.Point{{5, 5}, {40, 5}, {40, 40}}, Closed: true},
	}

	img := Preview(p, paths, nil, PreviewOptions{})
	if img.Bounds() != p.Gray.Rect {
		t.Fatalf("bounds: got %v, want %v", img.Bounds(), p.Gray.Rect)
	}

	want := Palette(1)[0]
	for _, pt := range []image.Point{{20, 5}, {40, 20}, {5, 5}} {
		if got := img.RGBAAt(pt.X, pt.Y); got != want {
			t.Errorf("pixel %v: got %v, want path color %v", pt, got, want)
		}
	}
	// Closing segment runs along the diagonal.
	if got := img.RGBAAt(22, 22); got != want {
		t.Errorf("closing segment missing at (22,22): got %v", got)
	}
	if got := img.RGBAAt(30, 45); got.R != 255 || got.G != 255 || got.B != 255 {
		t.Errorf("background should stay white: got %v", got)
	}
}

func TestPreview_TextRegionsAndFade(t *testing.T) {
	p := createGrayPage(40, 40, 0)
	regions := []image.Rectangle{image.Rect(10, 10, 20, 20)}

	img := Preview(p, nil, regions, PreviewOptions{Fade: 0.5, TextColor: "#00FF00"})

	if got := img.RGBAAt(10, 15); got.G != 255 || got.R != 0 {
		t.Errorf("text outline: got %v, want green", got)
	}
	if got := img.RGBAAt(15, 15); got.R == 0 || got.R == 255 {
		t.Errorf("faded black should be mid gray, got %v", got)
	}
}

func TestPreview_LabelsAndOffPagePoints(t *testing.T) {
	p := createGrayPage(30, 30, 255)
	paths := []Path{
		{Points: []image.Point{{-5, -5}, {60, 60}}},
		{Points: nil},
	}

	// Must not panic on points outside the page or empty paths.
	img := Preview(p, paths, nil, DefaultPreviewOptions())
	if img == nil {
		t.Fatal("Preview returned nil")
	}
}

func TestDrawLine_Endpoints(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	c := Palette(1)[0]
	drawLine(img, image.Point{X: 8, Y: 1}, image.Point{X: 1, Y: 6}, c)

	if img.RGBAAt(8, 1) != c || img.RGBAAt(1, 6) != c {
		t.Error("line endpoints not drawn")
	}
}
