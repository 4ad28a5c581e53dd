package sim

import "lasersim/internal/canvas"

// diffusionFloor is the magnitude below which a deposit stops spreading:
// only its center is written, no neighbor pushes. It bounds both the
// recursion depth and the spatial footprint of a single stamp to roughly
// 5-9 cells on a side for typical material parameters.
const diffusionFloor = 0.05

type diffusionDeposit struct {
	x, y int
	v    float64
}

// neighborOffsets lists the 8 neighbors of a cell; the first four are
// orthogonal (scaled by DiffusionLin), the last four diagonal (scaled by
// DiffusionDia).
var neighborOffsets = [8]struct{ dx, dy int }{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1}, // orthogonal
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1}, // diagonal
}

const numOrthogonal = 4

// diffuse deposits v*diffusion into (x,y) and recurses into the 8
// neighbors, exactly as spec'd, but via an explicit work stack instead of
// native recursion: every pop re-reads the canvas's current bounds, so an
// Extend triggered by one deposit is never straddled by a stale reference
// held from an earlier stack frame.
//
// An Extend failure (out of memory) silently drops that deposit and
// everything it would have spread to — diffusion magnitudes decay
// geometrically, so a dropped far-field deposit is negligible next to
// aborting a long-running simulation.
func diffuse(c *canvas.Canvas, x, y int, v float64) {
	stack := []diffusionDeposit{{x, y, v}}

	for len(stack) > 0 {
		d := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !c.Extend(d.x, d.y, d.x, d.y) {
			continue
		}
		cell := c.At(d.x, d.y)
		*cell += float32(d.v * c.Material.Diffusion)

		if d.v < diffusionFloor {
			continue
		}

		for i, off := range neighborOffsets {
			ratio := c.Material.DiffusionDia
			if i < numOrthogonal {
				ratio = c.Material.DiffusionLin
			}
			nv := d.v * c.Material.Diffusion * ratio
			stack = append(stack, diffusionDeposit{d.x + off.dx, d.y + off.dy, nv})
		}
	}
}
