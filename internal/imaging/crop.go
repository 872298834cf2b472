package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// EncodedImage is a PNG ready to be returned over a text protocol.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG encodes img as a base64 PNG.
func EncodePNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// Crop extracts a rectangular region of a page. The scale is preserved so
// coordinates inside the crop still map to source units.
func Crop(p *Page, r image.Rectangle) (*Page, error) {
	bounds := p.Gray.Rect
	if !r.In(bounds) {
		return nil, fmt.Errorf("crop region %v outside page bounds %v", r, bounds)
	}
	if r.Empty() {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}
	return &Page{Gray: ToGray(p.Gray.SubImage(r)), Scale: p.Scale}, nil
}

// Resample scales img to exactly width x height with a Catmull-Rom filter.
func Resample(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	return imaging.Resize(img, width, height, imaging.CatmullRom)
}

// PadRect grows r by pad pixels on every side and clips it to bounds.
func PadRect(r image.Rectangle, pad int, bounds image.Rectangle) image.Rectangle {
	if pad > 0 {
		r = r.Inset(-pad)
	}
	return r.Intersect(bounds)
}

// EraseRects fills each rectangle with substrate white, in place.
// Rectangles are clipped to the page; empty ones are ignored.
func EraseRects(p *Page, rects []image.Rectangle) {
	for _, r := range rects {
		r = r.Intersect(p.Gray.Rect)
		if r.Empty() {
			continue
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			row := p.Gray.Pix[p.Gray.PixOffset(r.Min.X, y):p.Gray.PixOffset(r.Max.X, y)]
			for i := range row {
				row[i] = Substrate
			}
		}
	}
}
