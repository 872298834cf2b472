package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// Lightness returns the perceptual lightness of c as an 8-bit gray value.
//
// Translucent colors are composited over white substrate first, so a fully
// transparent pixel reads as blank paper. The value is the CIE L* channel of
// the composited color, scaled from [0,1] to [0,255].
func Lightness(c color.Color) uint8 {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return Substrate
	}
	// RGBA() is premultiplied; adding the uncovered share of white composites it.
	under := 0xffff - a
	col := colorful.Color{
		R: float64(r+under) / 0xffff,
		G: float64(g+under) / 0xffff,
		B: float64(b+under) / 0xffff,
	}
	l, _, _ := col.Lab()
	return unit8(l)
}

func unit8(v float64) uint8 {
	v = math.Round(v * 255)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// ToGray converts any image to an *image.Gray anchored at (0,0).
//
// *image.Gray input is copied as is. Other color models go through Lightness;
// opaque neutral pixels are served from a 256-entry lookup table because scanned
// line art is overwhelmingly gray.
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	if src, ok := img.(*image.Gray); ok {
		for y := 0; y < b.Dy(); y++ {
			so := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()], src.Pix[so:so+b.Dx()])
		}
		return dst
	}

	var neutral [256]uint8
	var known [256]bool

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			r, g, bl, a := c.RGBA()
			var v uint8
			if a == 0xffff && r == g && g == bl {
				i := r >> 8
				if !known[i] {
					neutral[i] = Lightness(color.Gray{Y: uint8(i)})
					known[i] = true
				}
				v = neutral[i]
			} else {
				v = Lightness(c)
			}
			dst.Pix[y*dst.Stride+x] = v
		}
	}
	return dst
}

// ParseColor parses "#RRGGBB" or "#RRGGBBAA" into an RGBA color.
func ParseColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] != '#' {
		hex = "#" + hex
	}
	if len(hex) != 7 && len(hex) != 9 {
		return color.RGBA{}, fmt.Errorf("invalid color %q: want #RRGGBB or #RRGGBBAA", hex)
	}
	alpha := uint8(255)
	if len(hex) == 9 {
		a, err := strconv.ParseUint(hex[7:], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid alpha in %q: %w", hex, err)
		}
		alpha = uint8(a)
		hex = hex[:7]
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: alpha}, nil
}

// Palette returns n distinct, evenly spread colors of equal lightness.
// The sequence is deterministic so previews and SVG layers are stable.
func Palette(n int) []color.RGBA {
	out := make([]color.RGBA, n)
	for i := range out {
		h := math.Mod(float64(i)*137.508, 360)
		r, g, b := colorful.Hcl(h, 0.7, 0.55).Clamped().RGB255()
		out[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return out
}
