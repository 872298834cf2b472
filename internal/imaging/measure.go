package imaging

import "image"

// MaskStats summarizes the ink in a mask.
type MaskStats struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Ink      int     `json:"ink_pixels"`
	Coverage float64 `json:"coverage"` // Ink / (Width*Height), 0 for an empty raster
	// Bounds is the smallest rectangle holding every ink cell; empty when there is none.
	Bounds image.Rectangle `json:"bounds"`
}

// Measure counts the ink cells of m and finds their bounding box.
func Measure(m *Mask) MaskStats {
	stats := MaskStats{Width: m.W, Height: m.H}
	minX, minY, maxX, maxY := m.W, m.H, -1, -1
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if !m.Bits[y*m.W+x] {
				continue
			}
			stats.Ink++
			minX = minInt(minX, x)
			minY = minInt(minY, y)
			maxX = maxInt(maxX, x)
			maxY = maxInt(maxY, y)
		}
	}
	if stats.Ink > 0 {
		stats.Bounds = image.Rect(minX, minY, maxX+1, maxY+1)
	}
	if total := m.W * m.H; total > 0 {
		stats.Coverage = float64(stats.Ink) / float64(total)
	}
	return stats
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
