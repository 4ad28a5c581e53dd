package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtendFromEmpty(t *testing.T) {
	c := New(Material{})
	require.True(t, c.Extend(0, 0, 9, 9))
	assert.True(t, c.Allocated())
	assert.True(t, c.Contains(0, 0))
	assert.True(t, c.Contains(9, 9))
	// The first allocation is overallocated to 24x24 centred on the
	// request, [-7,16] on each axis.
	assert.False(t, c.Contains(17, 0))
}

func TestExtendPreservesValues(t *testing.T) {
	c := New(Material{})
	require.True(t, c.Extend(0, 0, 9, 9))

	for y := 0; y <= 9; y++ {
		for x := 0; x <= 9; x++ {
			*c.At(x, y) = float32(x + y*10)
		}
	}

	require.True(t, c.Extend(-5, -5, 14, 14))

	for y := 0; y <= 9; y++ {
		for x := 0; x <= 9; x++ {
			assert.Equal(t, float32(x+y*10), *c.At(x, y), "cell (%d,%d) changed value after extend", x, y)
		}
	}

	for y := -5; y <= 14; y++ {
		for x := -5; x <= 14; x++ {
			if x >= 0 && x <= 9 && y >= 0 && y <= 9 {
				continue
			}
			assert.Equal(t, float32(0), *c.At(x, y), "new cell (%d,%d) should be zero", x, y)
		}
	}
}

func TestExtendMonotonicBoundingBox(t *testing.T) {
	c := New(Material{})
	require.True(t, c.Extend(0, 0, 9, 9))
	require.True(t, c.Extend(3, 3, 5, 5)) // fully contained, must not shrink

	assert.LessOrEqual(t, c.X0, 0)
	assert.GreaterOrEqual(t, c.X1, 9)
	assert.LessOrEqual(t, c.Y0, 0)
	assert.GreaterOrEqual(t, c.Y1, 9)
}

func TestExtendIdempotentWhenContained(t *testing.T) {
	c := New(Material{})
	require.True(t, c.Extend(0, 0, 20, 20))
	x0, y0, x1, y1 := c.X0, c.Y0, c.X1, c.Y1

	require.True(t, c.Extend(5, 5, 10, 10))
	assert.Equal(t, x0, c.X0)
	assert.Equal(t, y0, c.Y0)
	assert.Equal(t, x1, c.X1)
	assert.Equal(t, y1, c.Y1)
}

func TestExtendNormalizesInvertedCoordinates(t *testing.T) {
	c := New(Material{})
	require.True(t, c.Extend(9, 9, 0, 0))
	assert.True(t, c.Contains(0, 0))
	assert.True(t, c.Contains(9, 9))
}

func TestSeedMinimum(t *testing.T) {
	c := New(Material{})
	require.True(t, c.SeedMinimum(10, 10))
	assert.GreaterOrEqual(t, c.Width(), 10)
	assert.GreaterOrEqual(t, c.Height(), 10)
	assert.True(t, c.Contains(0, 0))
	assert.True(t, c.Contains(9, 9))
}

func TestSeedMinimumNoop(t *testing.T) {
	c := New(Material{})
	require.True(t, c.SeedMinimum(0, 0))
	assert.False(t, c.Allocated())
}

func TestDeriveDiffusionConservesEnergy(t *testing.T) {
	m := Material{DiffusionLin: 0.25}
	m.DeriveDiffusion()

	total := m.Diffusion * (1 + 4*m.DiffusionLin + 4*m.DiffusionDia)
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestSetFeedRate(t *testing.T) {
	m := Material{BeamPower: 10, PixelSize: 0.1}
	m.SetFeedRate(600)
	assert.InDelta(t, 10*0.1*60/600.0, m.PixelEnergy, 1e-12)

	m.SetFeedRate(0)
	assert.Equal(t, 0.0, m.PixelEnergy)
}
