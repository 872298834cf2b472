package trace

import (
	"fmt"

	"github.com/ironsheep/pdf2cad/internal/config"
	"github.com/ironsheep/pdf2cad/internal/imaging"
)

// Skeletonizer thins ink masks. The algorithm is chosen once, when the
// skeletonizer is built, and never changes afterwards.
type Skeletonizer struct {
	algorithm string
}

// NewSkeletonizer resolves a thinning algorithm by name:
// config.ThinningZhangSuen or config.ThinningNone.
func NewSkeletonizer(algorithm string) (*Skeletonizer, error) {
	switch algorithm {
	case config.ThinningZhangSuen, config.ThinningNone:
		return &Skeletonizer{algorithm: algorithm}, nil
	default:
		return nil, fmt.Errorf("unknown thinning algorithm %q", algorithm)
	}
}

// Algorithm returns the resolved algorithm name.
func (s *Skeletonizer) Algorithm() string { return s.algorithm }

// Degraded reports whether thinning is disabled, in which case Apply returns
// its input and thick strokes are traced as outlines.
func (s *Skeletonizer) Degraded() bool { return s.algorithm == config.ThinningNone }

// Apply thins m. It never modifies m.
func (s *Skeletonizer) Apply(m *imaging.Mask) *imaging.Mask {
	if s.Degraded() {
		return m
	}
	return ZhangSuen(m)
}

// ZhangSuen thins every 8-connected component of m to a 1-px wide line.
//
// Each Zhang-Suen sub-iteration picks its deletion candidates from the mask as
// it stood when the sub-iteration began. Candidates are then removed one at a
// time, each only if it is still a simple point (Yokoi 8-connectivity number 1)
// and not an end point, so the number of components and holes never changes.
// A 2x2 block thins to two pixels rather than vanishing.
func ZhangSuen(m *imaging.Mask) *imaging.Mask {
	out := m.Clone()
	var candidates []int
	for {
		changed := false
		for pass := 0; pass < 2; pass++ {
			candidates = candidates[:0]
			for y := 0; y < out.H; y++ {
				for x := 0; x < out.W; x++ {
					if out.Bits[y*out.W+x] && deletable(out, x, y, pass) {
						candidates = append(candidates, y*out.W+x)
					}
				}
			}
			for _, i := range candidates {
				if simple(neighbours(out, i%out.W, i/out.W)) {
					out.Bits[i] = false
					changed = true
				}
			}
		}
		if !changed {
			return out
		}
	}
}

// neighbours returns the 8-neighbourhood of (x, y) counterclockwise from east:
// E, NE, N, NW, W, SW, S, SE.
func neighbours(m *imaging.Mask, x, y int) [8]bool {
	return [8]bool{
		m.At(x+1, y),
		m.At(x+1, y-1),
		m.At(x, y-1),
		m.At(x-1, y-1),
		m.At(x-1, y),
		m.At(x-1, y+1),
		m.At(x, y+1),
		m.At(x+1, y+1),
	}
}

func deletable(m *imaging.Mask, x, y, pass int) bool {
	n := neighbours(m, x, y)
	e, north, w, s := n[0], n[2], n[4], n[6]

	if pass == 0 {
		// South and east boundary, north-west corner.
		if north && e && s {
			return false
		}
		if e && s && w {
			return false
		}
	} else {
		// North and west boundary, south-east corner.
		if north && e && w {
			return false
		}
		if north && s && w {
			return false
		}
	}
	return simple(n)
}

// simple reports whether a pixel with neighbourhood n can be removed: it is
// not an end point or an interior point and removing it keeps the topology.
func simple(n [8]bool) bool {
	count := 0
	for _, v := range n {
		if v {
			count++
		}
	}
	if count < 2 || count > 6 {
		return false
	}
	return connectivity(n) == 1
}

// connectivity is the Yokoi 8-connectivity number of a neighbourhood given
// counterclockwise from east. A pixel whose number is 1 can be removed without
// changing the topology of the ink or the background.
func connectivity(n [8]bool) int {
	bg := func(i int) int {
		if n[i%8] {
			return 0
		}
		return 1
	}
	c := 0
	for k := 0; k < 8; k += 2 {
		c += bg(k) - bg(k)*bg(k+1)*bg(k+2)
	}
	return c
}
