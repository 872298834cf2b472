package imaging

import (
	"fmt"
	"image"
	"math"
)

// Substrate is the gray value of blank paper.
const Substrate uint8 = 255

// Page is a grayscale raster of one document page.
type Page struct {
	// Gray holds the samples; its bounds always start at (0,0).
	Gray *image.Gray

	// Scale is the number of raster pixels per source unit.
	Scale float64
}

// NewPage returns a blank (all substrate) page of the given size.
func NewPage(width, height int, scale float64) *Page {
	g := image.NewGray(image.Rect(0, 0, width, height))
	for i := range g.Pix {
		g.Pix[i] = Substrate
	}
	return &Page{Gray: g, Scale: scale}
}

// PageFromImage reduces any image to a page with the given scale.
func PageFromImage(img image.Image, scale float64) *Page {
	return &Page{Gray: ToGray(img), Scale: scale}
}

// RenderSize returns the raster size of a page of w x h source units at
// oversampling factor s.
func RenderSize(w, h, s float64) (int, int) {
	return int(math.Ceil(w * s)), int(math.Ceil(h * s))
}

// Width returns the page width in pixels.
func (p *Page) Width() int { return p.Gray.Rect.Dx() }

// Height returns the page height in pixels.
func (p *Page) Height() int { return p.Gray.Rect.Dy() }

// Clone returns a deep copy of the page.
func (p *Page) Clone() *Page {
	g := image.NewGray(p.Gray.Rect)
	copy(g.Pix, p.Gray.Pix)
	return &Page{Gray: g, Scale: p.Scale}
}

// Mask is a binary raster where true marks ink (foreground).
type Mask struct {
	W, H int
	Bits []bool
}

// NewMask returns an empty mask.
func NewMask(width, height int) *Mask {
	return &Mask{W: width, H: height, Bits: make([]bool, width*height)}
}

// MaskFromRows builds a mask from text rows where '#' or '1' marks ink.
// All rows must have the same length.
func MaskFromRows(rows ...string) (*Mask, error) {
	if len(rows) == 0 {
		return NewMask(0, 0), nil
	}
	m := NewMask(len(rows[0]), len(rows))
	for y, row := range rows {
		if len(row) != m.W {
			return nil, fmt.Errorf("row %d has %d cells, want %d", y, len(row), m.W)
		}
		for x := 0; x < len(row); x++ {
			m.Bits[y*m.W+x] = row[x] == '#' || row[x] == '1'
		}
	}
	return m, nil
}

// At reports whether (x, y) is ink. Coordinates outside the mask are background.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return false
	}
	return m.Bits[y*m.W+x]
}

// Set marks (x, y) as ink or background. Out-of-range coordinates are ignored.
func (m *Mask) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return
	}
	m.Bits[y*m.W+x] = v
}

// Count returns the number of ink cells.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	c := &Mask{W: m.W, H: m.H, Bits: make([]bool, len(m.Bits))}
	copy(c.Bits, m.Bits)
	return c
}

// Equal reports whether two masks have the same size and cells.
func (m *Mask) Equal(o *Mask) bool {
	if m.W != o.W || m.H != o.H {
		return false
	}
	for i := range m.Bits {
		if m.Bits[i] != o.Bits[i] {
			return false
		}
	}
	return true
}

// Image renders the mask as black ink on white substrate.
func (m *Mask) Image() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, m.W, m.H))
	for i, b := range m.Bits {
		if b {
			g.Pix[i] = 0
		} else {
			g.Pix[i] = Substrate
		}
	}
	return g
}

// String renders the mask as rows of '#' and '.', handy in test failures.
func (m *Mask) String() string {
	buf := make([]byte, 0, (m.W+1)*m.H)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if m.Bits[y*m.W+x] {
				buf = append(buf, '#')
			} else {
				buf = append(buf, '.')
			}
		}
		buf = append(buf, '\n')
	}
	return string(buf)
}
