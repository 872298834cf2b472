package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/effect"

	"github.com/ironsheep/pdf2cad/internal/config"
)

// Denoise removes salt-and-pepper speckle with a median filter.
//
// strength is the kernel size. Zero disables the filter and returns p itself;
// even sizes are widened to the next odd size (4 becomes 5) so the window stays
// centered. The window radius is (k-1)/2 and edge pixels are handled by
// extending the border, so nothing outside the window bleeds in.
func Denoise(p *Page, strength int) *Page {
	k := config.OddKernel(strength)
	if k <= 1 {
		return p
	}
	radius := float64((k - 1) / 2)
	filtered := effect.Median(p.Gray, radius)
	return &Page{Gray: grayFromRGBA(filtered), Scale: p.Scale}
}

// grayFromRGBA takes the red channel of a bild result. Every bild filter used
// here maps gray input to gray output, so the channels are equal.
func grayFromRGBA(src *image.RGBA) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		so := src.PixOffset(b.Min.X, b.Min.Y+y)
		do := y * dst.Stride
		for x := 0; x < b.Dx(); x++ {
			dst.Pix[do+x] = src.Pix[so+4*x]
		}
	}
	return dst
}
