package trace

import (
	"image"

	"github.com/ironsheep/pdf2cad/internal/imaging"
)

// Components returns the 8-connected ink components of m in row-major order
// of their first pixel.
func Components(m *imaging.Mask) [][]image.Point {
	visited := make([]bool, len(m.Bits))
	var components [][]image.Point

	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			i := y*m.W + x
			if m.Bits[i] && !visited[i] {
				var component []image.Point
				floodFill(m, visited, x, y, &component)
				components = append(components, component)
			}
		}
	}
	return components
}

// CountComponents returns the number of 8-connected ink components.
func CountComponents(m *imaging.Mask) int {
	return len(Components(m))
}

// floodFill collects the component containing (startX, startY).
func floodFill(m *imaging.Mask, visited []bool, startX, startY int, component *[]image.Point) {
	stack := []image.Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= m.W || p.Y < 0 || p.Y >= m.H {
			continue
		}
		i := p.Y*m.W + p.X
		if visited[i] || !m.Bits[i] {
			continue
		}

		visited[i] = true
		*component = append(*component, p)

		// 8-connected neighbors
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, image.Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
}
