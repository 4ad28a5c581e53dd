package sim

import (
	"math"

	"lasersim/internal/canvas"
)

// DrawVector walks the straight segment (x0,y0)-(x1,y1), selecting the
// dominant axis and stamping a beam center at each integer step's midpoint
// along it, per the vector rasterizer design. A zero-length vector is a
// successful no-op. Returns false (aborting the caller) the moment a Burn
// call fails.
func DrawVector(c *canvas.Canvas, x0, y0, x1, y1, intensity float64) bool {
	dx := x1 - x0
	dy := y1 - y0

	if dx == 0 && dy == 0 {
		return true
	}

	if math.Abs(dx) >= math.Abs(dy) {
		if dx < 0 {
			x0, y0, x1, y1 = x1, y1, x0, y0
			dx, dy = -dx, -dy
		}
		slope := dy / dx
		for x := x0 + 0.5; x < x1+0.5; x++ {
			y := y0 + (x-x0)*slope
			if !Burn(c, x, y, intensity) {
				return false
			}
		}
		return true
	}

	if dy < 0 {
		x0, y0, x1, y1 = x1, y1, x0, y0
		dx, dy = -dx, -dy
	}
	slope := dx / dy
	for y := y0 + 0.5; y < y1+0.5; y++ {
		x := x0 + (y-y0)*slope
		if !Burn(c, x, y, intensity) {
			return false
		}
	}
	return true
}
