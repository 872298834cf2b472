package imaging

import (
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func TestCrop(t *testing.T) {
	p := createGrayPage(100, 80, 255)
	p.Gray.SetGray(30, 20, grayOf(7))

	cropped, err := Crop(p, image.Rect(25, 15, 75, 45))
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if cropped.Width() != 50 || cropped.Height() != 30 {
		t.Errorf("dimensions: got %dx%d, want 50x30", cropped.Width(), cropped.Height())
	}
	if v := cropped.Gray.GrayAt(5, 5).Y; v != 7 {
		t.Errorf("pixel value not preserved: got %d, want 7", v)
	}
	if cropped.Scale != p.Scale {
		t.Errorf("scale: got %v, want %v", cropped.Scale, p.Scale)
	}
}

func TestCrop_InvalidRegions(t *testing.T) {
	p := createGrayPage(100, 100, 255)

	tests := []struct {
		name string
		r    image.Rectangle
	}{
		{"outside right", image.Rect(50, 50, 150, 90)},
		{"negative origin", image.Rect(-10, 0, 50, 50)},
		{"empty", image.Rect(40, 40, 40, 60)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Crop(p, tt.r); err == nil {
				t.Errorf("expected error for %v", tt.r)
			}
		})
	}
}

func TestResample(t *testing.T) {
	img := createInMemoryImage(40, 20, color.RGBA{0, 0, 0, 255})

	out := Resample(img, 80, 40)
	if out.Bounds().Dx() != 80 || out.Bounds().Dy() != 40 {
		t.Errorf("dimensions: got %v, want 80x40", out.Bounds())
	}

	same := Resample(img, 40, 20)
	if same != img {
		t.Error("resampling to the same size should return the input")
	}
}

func TestPadRect(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 50)
	tests := []struct {
		name string
		r    image.Rectangle
		pad  int
		want image.Rectangle
	}{
		{"no pad", image.Rect(10, 10, 20, 20), 0, image.Rect(10, 10, 20, 20)},
		{"padded", image.Rect(10, 10, 20, 20), 2, image.Rect(8, 8, 22, 22)},
		{"clipped", image.Rect(1, 45, 99, 50), 3, image.Rect(0, 42, 100, 50)},
		{"outside", image.Rect(200, 200, 210, 210), 1, image.Rectangle{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PadRect(tt.r, tt.pad, bounds)
			if got != tt.want && !(got.Empty() && tt.want.Empty()) {
				t.Errorf("PadRect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEraseRects(t *testing.T) {
	p := createGrayPage(20, 20, 0)
	EraseRects(p, []image.Rectangle{
		image.Rect(2, 2, 5, 5),
		image.Rect(18, 18, 30, 30), // partly outside
		image.Rect(10, 10, 10, 12), // empty
	})

	if p.Gray.GrayAt(3, 3).Y != Substrate {
		t.Error("inside first rect should be erased")
	}
	if p.Gray.GrayAt(19, 19).Y != Substrate {
		t.Error("clipped part of second rect should be erased")
	}
	if p.Gray.GrayAt(5, 5).Y != 0 {
		t.Error("Max corner is exclusive and must stay untouched")
	}
	if p.Gray.GrayAt(10, 10).Y != 0 {
		t.Error("empty rect must not erase anything")
	}
}

func TestEncodePNG(t *testing.T) {
	img := createInMemoryImage(12, 7, color.RGBA{10, 20, 30, 255})

	enc, err := EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	if enc.Width != 12 || enc.Height != 7 || enc.MimeType != "image/png" {
		t.Errorf("unexpected result: %+v", enc)
	}

	data, err := base64.StdEncoding.DecodeString(enc.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	decoded, err := png.Decode(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	if decoded.Bounds().Dx() != 12 {
		t.Errorf("decoded width: got %d, want 12", decoded.Bounds().Dx())
	}
}
