package trace

import (
	"image"
	"math"
)

// Perimeter returns the length of pts. When closed, the segment from the last
// point back to the first is included.
func Perimeter(pts []image.Point, closed bool) float64 {
	if len(pts) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += dist(pts[i-1], pts[i])
	}
	if closed {
		total += dist(pts[len(pts)-1], pts[0])
	}
	return total
}

// Simplify removes points that lie within epsilon of the polyline through
// their neighbours, by Douglas-Peucker worst-point elimination.
//
// The result is a subsequence of pts that keeps the first point. Elimination
// is repeated until a pass removes nothing, so Simplify(Simplify(p, e), e)
// returns the same points as Simplify(p, e).
//
// Closed polylines are split at the point farthest from the first one and the
// two halves are simplified separately.
func Simplify(pts []image.Point, epsilon float64, closed bool) []image.Point {
	out := make([]image.Point, len(pts))
	copy(out, pts)
	for {
		next := simplifyOnce(out, epsilon, closed)
		if len(next) == len(out) {
			return next
		}
		out = next
	}
}

func simplifyOnce(pts []image.Point, epsilon float64, closed bool) []image.Point {
	n := len(pts)
	if n < 3 {
		return pts
	}
	if !closed {
		keep := make([]bool, n)
		markKeep(pts, 0, n-1, epsilon, keep)
		return collect(pts, keep)
	}

	far, farDist := 0, -1.0
	for i := 1; i < n; i++ {
		if d := dist(pts[0], pts[i]); d > farDist {
			far, farDist = i, d
		}
	}

	// Ring p0..p(n-1) followed by p0 again, split at far.
	ring := append(append([]image.Point{}, pts...), pts[0])
	keep := make([]bool, n+1)
	markKeep(ring, 0, far, epsilon, keep)
	markKeep(ring, far, n, epsilon, keep)
	return collect(pts, keep[:n])
}

// markKeep flags the endpoints of pts[lo..hi] and every point Douglas-Peucker
// retains between them.
func markKeep(pts []image.Point, lo, hi int, epsilon float64, keep []bool) {
	keep[lo], keep[hi] = true, true
	stack := [][2]int{{lo, hi}}
	for len(stack) > 0 {
		seg := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		a, b := seg[0], seg[1]
		if b-a < 2 {
			continue
		}

		worst, worstDist := -1, -1.0
		for i := a + 1; i < b; i++ {
			if d := segmentDist(pts[i], pts[a], pts[b]); d > worstDist {
				worst, worstDist = i, d
			}
		}
		if worstDist > epsilon {
			keep[worst] = true
			stack = append(stack, [2]int{a, worst}, [2]int{worst, b})
		}
	}
}

func collect(pts []image.Point, keep []bool) []image.Point {
	out := make([]image.Point, 0, len(pts))
	for i, k := range keep {
		if k {
			out = append(out, pts[i])
		}
	}
	return out
}

func dist(a, b image.Point) float64 {
	return math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
}

// segmentDist returns the distance from p to the segment ab.
func segmentDist(p, a, b image.Point) float64 {
	dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
	px, py := float64(p.X-a.X), float64(p.Y-a.Y)
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(px, py)
	}
	t := (px*dx + py*dy) / l2
	switch {
	case t < 0:
		t = 0
	case t > 1:
		t = 1
	}
	return math.Hypot(px-t*dx, py-t*dy)
}
