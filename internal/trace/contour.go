package trace

import (
	"image"

	"github.com/ironsheep/pdf2cad/internal/imaging"
)

// Contour is one closed border walk.
type Contour struct {
	// Points are the pixels where the walk changes direction, in walk order.
	// The first point is not repeated at the end.
	Points []image.Point

	// Hole is true for the inner border of a component.
	Hole bool

	// Length is the number of steps of the uncompressed walk.
	Length int
}

// Neighbour offsets, clockwise on screen starting east.
var dirs = [8]image.Point{
	{1, 0},   // E
	{1, 1},   // SE
	{0, 1},   // S
	{-1, 1},  // SW
	{-1, 0},  // W
	{-1, -1}, // NW
	{0, -1},  // N
	{1, -1},  // NE
}

const (
	dirE = 0
	dirW = 4
)

// FindContours follows every border in m and returns them in discovery
// (row-major) order. There is no hierarchy: outer borders and hole borders
// come back side by side.
//
// An isolated ink pixel yields a one-point contour; callers decide whether
// such borders are worth keeping.
func FindContours(m *imaging.Mask) []Contour {
	// Labels on a zero-padded grid: 0 background, 1 unvisited ink,
	// +n / -n visited by border n.
	w, h := m.W+2, m.H+2
	f := make([]int32, w*h)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if m.Bits[y*m.W+x] {
				f[(y+1)*w+x+1] = 1
			}
		}
	}

	var contours []Contour
	nbd := int32(1)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			v := f[i]
			if v == 0 {
				continue
			}

			var from int
			var hole bool
			switch {
			case v == 1 && f[i-1] == 0:
				from = dirW
			case v >= 1 && f[i+1] == 0:
				from, hole = dirE, true
			default:
				continue
			}

			nbd++
			walk := follow(f, w, image.Point{X: x, Y: y}, from, nbd)
			for k := range walk {
				walk[k] = walk[k].Sub(image.Point{X: 1, Y: 1})
			}
			contours = append(contours, Contour{
				Points: compress(walk),
				Hole:   hole,
				Length: len(walk),
			})
		}
	}
	return contours
}

// follow walks one border starting at start, whose background neighbour lies
// in direction from, labelling the border pixels with nbd.
func follow(f []int32, w int, start image.Point, from int, nbd int32) []image.Point {
	at := func(p image.Point) int32 { return f[p.Y*w+p.X] }

	// Find the first ink neighbour clockwise from the background side.
	first, found := -1, false
	for k := 0; k < 8; k++ {
		d := (from + k) % 8
		if at(start.Add(dirs[d])) != 0 {
			first, found = d, true
			break
		}
	}
	if !found {
		f[start.Y*w+start.X] = -nbd
		return []image.Point{start}
	}

	p1 := start.Add(dirs[first])
	prev := p1
	cur := start
	walk := []image.Point{start}

	for {
		// Search counterclockwise around cur, starting just past prev.
		back := dirTo(cur, prev)
		eastZero := false
		var next image.Point
		for k := 1; k <= 8; k++ {
			d := (back - k + 16) % 8
			q := cur.Add(dirs[d])
			if at(q) != 0 {
				next = q
				break
			}
			if d == dirE {
				eastZero = true
			}
		}

		ci := cur.Y*w + cur.X
		if eastZero {
			f[ci] = -nbd
		} else if f[ci] == 1 {
			f[ci] = nbd
		}

		if next == start && cur == p1 {
			return walk
		}
		prev, cur = cur, next
		walk = append(walk, cur)
	}
}

// dirTo returns the direction index pointing from a to its neighbour b.
func dirTo(a, b image.Point) int {
	d := b.Sub(a)
	for i, v := range dirs {
		if v == d {
			return i
		}
	}
	return 0
}

// compress keeps the points of a closed walk where the step direction changes.
func compress(walk []image.Point) []image.Point {
	n := len(walk)
	if n < 3 {
		out := make([]image.Point, n)
		copy(out, walk)
		return out
	}
	out := make([]image.Point, 0, n/2+1)
	for i := 0; i < n; i++ {
		prev := walk[(i+n-1)%n]
		next := walk[(i+1)%n]
		if walk[i].Sub(prev) != next.Sub(walk[i]) {
			out = append(out, walk[i])
		}
	}
	return out
}
