package sim

import (
	"math"

	"lasersim/internal/canvas"
)

// quantStep is the sub-pixel resolution beam centers are rounded to before
// computing the bilinear footprint, to avoid rounding artifacts (phantom
// lines or gaps) when pixel_size doesn't divide evenly, e.g. 7/80 mm.
const quantStep = 1.0 / 16.0

func quantize(v float64) float64 {
	return math.Round(v*16) / 16
}

// Burn stamps a beam centered at (x,y) with intensity multiplier intensity
// into up to four pixels, through bilinear, absorption-weighted,
// threshold-gated deposits, each forwarded to the diffusion kernel. It
// returns false only when extending the canvas to cover the footprint
// failed (out of memory); a false return aborts the caller (the
// rasterizer), matching the propagation policy in the error handling
// design.
func Burn(c *canvas.Canvas, x, y, intensity float64) bool {
	x = quantize(x)
	y = quantize(y)

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := x0 + 1
	y1 := y0 + 1

	if !c.Extend(x0, y0, x1, y1) {
		return false
	}

	dx := x - float64(x0) - 0.5
	dy := y - float64(y0) - 0.5

	type neighbor struct {
		nx, ny int
		weight float64
	}
	neighbors := [4]neighbor{
		{x0, y0, (1 - dx) * (1 - dy)},
		{x1, y0, dx * (1 - dy)},
		{x0, y1, (1 - dx) * dy},
		{x1, y1, dx * dy},
	}

	pixEnergy := intensity * c.Material.PixelEnergy

	for _, n := range neighbors {
		a := *c.At(n.nx, n.ny)
		weight := n.weight * (c.Material.Absorption + c.Material.AbsorptionFactor*float64(a))
		if weight < 0 {
			weight = 0
		}

		weight *= intensity
		if weight > 1.0 {
			weight = 1.0
		}

		threshold := c.Material.EnergyDensity * (1 - math.Sqrt(float64(a)))
		if pixEnergy < threshold {
			continue
		}

		diffuse(c, n.nx, n.ny, weight)
	}

	return true
}
