package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Path is a traced polyline in raster pixel coordinates.
type Path struct {
	Points []image.Point
	Closed bool
}

// PreviewOptions controls the debug overlay.
type PreviewOptions struct {
	// Fade blends the page toward white so the overlay stands out, 0..1.
	Fade float64

	// Label draws each path's index next to its first vertex.
	Label bool

	// TextColor is used for the outlines of masked text regions.
	TextColor string
}

// DefaultPreviewOptions returns the options used by the CLI preview writer.
func DefaultPreviewOptions() PreviewOptions {
	return PreviewOptions{Fade: 0.6, Label: true, TextColor: "#0050FF"}
}

// Preview draws traced paths and masked text regions over a page.
//
// Each path gets its own color from Palette so neighbouring strokes can be
// told apart; text regions are outlined in opts.TextColor.
func Preview(p *Page, paths []Path, textRegions []image.Rectangle, opts PreviewOptions) *image.RGBA {
	bounds := p.Gray.Rect
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, p.Gray, bounds.Min, draw.Src)

	if opts.Fade > 0 {
		fade(result, opts.Fade)
	}

	textColor, err := ParseColor(opts.TextColor)
	if err != nil {
		textColor = color.RGBA{0, 80, 255, 255} // Default: blue
	}
	for _, r := range textRegions {
		drawRect(result, r, textColor)
	}

	palette := Palette(len(paths))
	for i, path := range paths {
		c := palette[i]
		for j := 1; j < len(path.Points); j++ {
			drawLine(result, path.Points[j-1], path.Points[j], c)
		}
		if path.Closed && len(path.Points) > 2 {
			drawLine(result, path.Points[len(path.Points)-1], path.Points[0], c)
		}
	}

	if opts.Label {
		labelColor := color.RGBA{255, 255, 255, 255}
		for i, path := range paths {
			if len(path.Points) == 0 {
				continue
			}
			pt := path.Points[0]
			drawLabel(result, pt.X+2, pt.Y+2, fmt.Sprintf("%d", i), labelColor, palette[i])
		}
	}

	return result
}

// fade blends every pixel toward white by amount.
func fade(img *image.RGBA, amount float64) {
	if amount > 1 {
		amount = 1
	}
	for i := 0; i < len(img.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := float64(img.Pix[i+c])
			img.Pix[i+c] = uint8(v + (255-v)*amount)
		}
	}
}

func drawRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Rect)
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, c)
		img.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, c)
		img.SetRGBA(r.Max.X-1, y, c)
	}
}

// drawLine draws a 1-px Bresenham line. SetRGBA ignores points outside img.
func drawLine(img *image.RGBA, a, b image.Point, c color.RGBA) {
	dx := absInt(b.X - a.X)
	dy := -absInt(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	e := dx + dy
	x, y := a.X, a.Y
	for {
		img.SetRGBA(x, y, c)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// drawLabel draws a simple text label at the given position
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	// Simple 3x5 pixel font for digits
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
	}

	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	// Draw background
	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			px, py := x+dx, y+dy
			if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
				img.SetRGBA(px, py, bg)
			}
		}
	}

	// Draw text
	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					px, py := cx+col, y+row
					if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
						img.SetRGBA(px, py, fg)
					}
				}
			}
		}
		cx += charWidth
	}
}
