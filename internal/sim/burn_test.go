package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lasersim/internal/canvas"
)

func defaultMaterial() canvas.Material {
	m := canvas.Material{
		Absorption:       0.75,
		AbsorptionFactor: 2.0,
		DiffusionLin:     0.25,
		PixelSize:        0.1,
		BeamPower:        10.0,
		EnergyDensity:    0.5 * 0.1 * 0.1, // pre-multiplied by pixel_size^2
	}
	m.DeriveDiffusion()
	m.SetFeedRate(60) // slow feed -> plenty of energy per pixel
	return m
}

func TestBurnExtendsOverFourNeighborFootprint(t *testing.T) {
	c := canvas.New(defaultMaterial())
	require.True(t, Burn(c, 2.5, 2.5, 1.0))

	assert.True(t, c.Contains(2, 2))
	assert.True(t, c.Contains(3, 3))
}

func TestBurnSkipsBelowEnergyThreshold(t *testing.T) {
	mat := defaultMaterial()
	mat.SetFeedRate(60000) // fast feed -> very little energy per pixel
	c := canvas.New(mat)

	require.True(t, Burn(c, 2.5, 2.5, 1.0))
	// The footprint is still extended (extension happens before the
	// threshold gate), but no energy should have been deposited.
	for y := c.Y0; y <= c.Y1; y++ {
		for x := c.X0; x <= c.X1; x++ {
			assert.Equal(t, float32(0), *c.At(x, y))
		}
	}
}

func TestBurnClampsNegativeWeightWhenSaturated(t *testing.T) {
	mat := defaultMaterial()
	mat.Absorption = 1.0
	mat.AbsorptionFactor = -1.0
	c := canvas.New(mat)

	require.True(t, c.Extend(0, 0, 3, 3))
	*c.At(2, 2) = 2.0 // already over-saturated

	require.True(t, Burn(c, 2.5, 2.5, 1.0))
	assert.GreaterOrEqual(t, *c.At(2, 2), float32(2.0))
}

func TestBurnNeverDepositsNegativeWeightOffCenter(t *testing.T) {
	// A beam sitting off the pixel center (dx = -0.3125) with a positive
	// AbsorptionFactor gives the x1 corners a negative raw bilinear weight
	// (dx*(1-dy)); the unconditional clamp keeps them from depositing a
	// negative value.
	c := canvas.New(defaultMaterial())
	require.True(t, Burn(c, 2.1875, 2.5, 1.0))

	for y := c.Y0; y <= c.Y1; y++ {
		for x := c.X0; x <= c.X1; x++ {
			assert.GreaterOrEqual(t, *c.At(x, y), float32(0), "cell (%d,%d) went negative", x, y)
		}
	}
}

func TestRepeatedPassesDarkenWoodButSaturateMetal(t *testing.T) {
	wood := defaultMaterial()
	metal := defaultMaterial()
	metal.Absorption = 1.0
	metal.AbsorptionFactor = -1.0

	cw := canvas.New(wood)
	cm := canvas.New(metal)

	var woodVals, metalVals []float32
	for i := 0; i < 5; i++ {
		require.True(t, Burn(cw, 2.5, 2.5, 1.0))
		require.True(t, Burn(cm, 2.5, 2.5, 1.0))
		woodVals = append(woodVals, *cw.At(2, 2))
		metalVals = append(metalVals, *cm.At(2, 2))
	}

	for i := 1; i < len(woodVals); i++ {
		assert.Greater(t, woodVals[i], woodVals[i-1], "wood should keep darkening")
	}
	for i := 2; i < len(metalVals); i++ {
		assert.InDelta(t, float64(metalVals[i-1]), float64(metalVals[i]), 1e-4, "saturated metal shouldn't keep darkening")
	}
}
