// Package material holds named bundles of the canvas's physical parameters
// (absorption, diffusion, energy density, beam power) so an operator can
// select "wood" or "painted-aluminum" instead of retyping five flags, and
// can check a shared profile file into version control.
package material

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"lasersim/internal/canvas"
)

// Preset is the on-disk/YAML shape of one named material. Units match
// spec.md's data model table: EnergyDensity is J/mm^2 as the operator
// supplies it, not yet pre-multiplied by pixel_size^2 — that multiplication
// happens in ToCanvasMaterial, once PixelSize is known.
type Preset struct {
	Absorption       float64 `yaml:"absorption"`
	AbsorptionFactor float64 `yaml:"absorption_factor"`
	DiffusionLin     float64 `yaml:"diffusion_lin"`
	PixelSize        float64 `yaml:"pixel_size"`
	BeamPower        float64 `yaml:"beam_power"`
	EnergyDensity    float64 `yaml:"energy_density"`
}

// ToCanvasMaterial derives the canvas.Material a Preset describes,
// including the diffusion normalization (invariant (d)) and the
// energy-density pre-multiplication the data model calls for.
func (p Preset) ToCanvasMaterial() canvas.Material {
	m := canvas.Material{
		Absorption:       p.Absorption,
		AbsorptionFactor: p.AbsorptionFactor,
		DiffusionLin:     p.DiffusionLin,
		PixelSize:        p.PixelSize,
		BeamPower:        p.BeamPower,
		EnergyDensity:    p.EnergyDensity * p.PixelSize * p.PixelSize,
	}
	m.DeriveDiffusion()
	return m
}

// Defaults mirrors spec.md section 6's own CLI defaults as the "default"
// preset, plus the wood/painted-aluminum pair from section 8 scenario 5 and
// two more common engraving materials.
func Defaults() map[string]Preset {
	return map[string]Preset{
		"default": {
			Absorption:       0.75,
			AbsorptionFactor: 2.0,
			DiffusionLin:     0.25,
			PixelSize:        0.1,
			BeamPower:        10.0,
			EnergyDensity:    0.5,
		},
		"wood": {
			Absorption:       0.75,
			AbsorptionFactor: 2.0,
			DiffusionLin:     0.3,
			PixelSize:        0.1,
			BeamPower:        10.0,
			EnergyDensity:    0.4,
		},
		"painted-aluminum": {
			Absorption:       1.0,
			AbsorptionFactor: -1.0,
			DiffusionLin:     0.1,
			PixelSize:        0.1,
			BeamPower:        10.0,
			EnergyDensity:    0.6,
		},
		"anodized-steel": {
			Absorption:       0.9,
			AbsorptionFactor: -0.5,
			DiffusionLin:     0.15,
			PixelSize:        0.1,
			BeamPower:        12.0,
			EnergyDensity:    0.8,
		},
		"acrylic": {
			Absorption:       0.6,
			AbsorptionFactor: 1.2,
			DiffusionLin:     0.2,
			PixelSize:        0.1,
			BeamPower:        8.0,
			EnergyDensity:    0.3,
		},
	}
}

// Library is a name-indexed set of presets, built-ins merged with whatever
// was loaded from a --materials-file.
type Library struct {
	presets map[string]Preset
}

// NewLibrary returns a Library seeded with the built-in defaults.
func NewLibrary() *Library {
	return &Library{presets: Defaults()}
}

// LoadFile merges presets from a YAML file (a top-level map of name to
// preset fields) into the library, overriding any built-in of the same
// name. A malformed file is a fatal, startup-time error per the error
// handling design — never a mid-simulation failure.
func (l *Library) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("material: reading %s: %w", path, err)
	}

	var loaded map[string]Preset
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("material: parsing %s: %w", path, err)
	}

	for name, preset := range loaded {
		l.presets[name] = preset
	}
	return nil
}

// Lookup returns the named preset, or an error if it isn't known.
func (l *Library) Lookup(name string) (Preset, error) {
	preset, ok := l.presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("material: unknown preset %q", name)
	}
	return preset, nil
}

// Names returns every preset name currently in the library.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.presets))
	for name := range l.presets {
		names = append(names, name)
	}
	return names
}
