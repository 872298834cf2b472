package trace

import (
	"image"

	"github.com/ironsheep/pdf2cad/internal/cad"
	"github.com/ironsheep/pdf2cad/internal/imaging"
)

// Options tunes Trace.
type Options struct {
	// SimplifyFactor scales each contour's closed perimeter into its
	// Douglas-Peucker tolerance.
	SimplifyFactor float64

	// MinContourPoints drops borders whose uncompressed walk is shorter.
	// Zero keeps everything.
	MinContourPoints int
}

// Polyline is one traced border after simplification.
type Polyline struct {
	// Pixels are the simplified points in raster coordinates.
	Pixels []image.Point

	// Points are Pixels mapped through the page transform.
	Points []cad.Point

	Closed bool
	Hole   bool
}

// Trace follows every border of m, simplifies it and maps it to output space.
//
// Borders that reduce to fewer than two distinct points are dropped. Every
// emitted polyline has at least two points, no consecutive duplicates and,
// because pixel coordinates lie inside the raster, non-negative coordinates.
func Trace(m *imaging.Mask, t Transform, opts Options) []Polyline {
	var out []Polyline
	for _, c := range FindContours(m) {
		if c.Length < opts.MinContourPoints {
			continue
		}
		pts := distinct(c.Points)
		if len(pts) < 2 {
			continue
		}

		eps := opts.SimplifyFactor * Perimeter(pts, true)
		simplified := distinct(Simplify(pts, eps, true))
		if len(simplified) < 2 {
			continue
		}

		pl := Polyline{
			Pixels: simplified,
			Points: make([]cad.Point, len(simplified)),
			Closed: len(simplified) > 2,
			Hole:   c.Hole,
		}
		for i, p := range simplified {
			pl.Points[i] = t.Apply(p)
		}
		out = append(out, pl)
	}
	return out
}

// distinct removes consecutive duplicates, including a last point equal to
// the first.
func distinct(pts []image.Point) []image.Point {
	out := make([]image.Point, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[len(out)-1] == out[0] {
		out = out[:len(out)-1]
	}
	return out
}

// Paths converts traced polylines to preview paths.
func Paths(pls []Polyline) []imaging.Path {
	out := make([]imaging.Path, len(pls))
	for i, pl := range pls {
		out[i] = imaging.Path{Points: pl.Pixels, Closed: pl.Closed}
	}
	return out
}
