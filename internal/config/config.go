// Package config assembles a validated simulation run from independently
// set pieces (material selection, canvas seed size, power multiplier,
// logging), the way this codebase's app builder assembles a run from
// independently installed modules: register everything, validate once at
// the end, rather than validating field-by-field as each flag is parsed.
package config

import (
	"fmt"

	"lasersim/internal/canvas"
	"lasersim/internal/logging"
	"lasersim/internal/material"
)

// Options is the fully validated configuration for one simulation run.
type Options struct {
	Material      canvas.Material
	SeedWidth     int
	SeedHeight    int
	Multiply      float64
	OutputPath    string
	Debug         bool
	LogLevel      logging.Level
	MaterialName  string
}

// Builder collects options field by field and validates them together in
// Build, so a mistake in one flag (e.g. a non-positive pixel size) is
// reported once, with the same fatal-exit-1 treatment as any other
// malformed option.
type Builder struct {
	lib *material.Library

	materialName   string
	materialsFile  string
	absorption     *float64
	absorptionMul  *float64
	diffusion      *float64
	energyDensity  *float64
	pixelSize      *float64
	beamPower      *float64
	multiply       float64
	seedWidth      int
	seedHeight     int
	outputPath     string
	debug          bool
	logLevel       string
}

// NewBuilder starts a Builder with the library of built-in material
// presets and the library-independent defaults from spec.md section 6.
func NewBuilder() *Builder {
	return &Builder{
		lib:      material.NewLibrary(),
		multiply: 1.0,
		logLevel: "info",
	}
}

func (b *Builder) UseMaterial(name string) *Builder {
	b.materialName = name
	return b
}

func (b *Builder) UseMaterialsFile(path string) *Builder {
	b.materialsFile = path
	return b
}

func (b *Builder) OverrideAbsorption(v float64) *Builder       { b.absorption = &v; return b }
func (b *Builder) OverrideAbsorptionMul(v float64) *Builder    { b.absorptionMul = &v; return b }
func (b *Builder) OverrideDiffusion(v float64) *Builder        { b.diffusion = &v; return b }
func (b *Builder) OverrideEnergyDensity(v float64) *Builder    { b.energyDensity = &v; return b }
func (b *Builder) OverridePixelSize(v float64) *Builder        { b.pixelSize = &v; return b }
func (b *Builder) OverrideBeamPower(v float64) *Builder        { b.beamPower = &v; return b }

func (b *Builder) Multiply(v float64) *Builder    { b.multiply = v; return b }
func (b *Builder) SeedSize(w, h int) *Builder     { b.seedWidth, b.seedHeight = w, h; return b }
func (b *Builder) Output(path string) *Builder    { b.outputPath = path; return b }
func (b *Builder) Debug(enabled bool) *Builder    { b.debug = enabled; return b }
func (b *Builder) LogLevel(level string) *Builder { b.logLevel = level; return b }

// Build validates the collected options and derives the final
// canvas.Material, or returns an error describing the first problem found.
func (b *Builder) Build() (Options, error) {
	if b.materialsFile != "" {
		if err := b.lib.LoadFile(b.materialsFile); err != nil {
			return Options{}, err
		}
	}

	name := b.materialName
	if name == "" {
		name = "default"
	}
	preset, err := b.lib.Lookup(name)
	if err != nil {
		return Options{}, err
	}

	if b.absorption != nil {
		preset.Absorption = *b.absorption
	}
	if b.absorptionMul != nil {
		preset.AbsorptionFactor = *b.absorptionMul
	}
	if b.diffusion != nil {
		preset.DiffusionLin = *b.diffusion
	}
	if b.energyDensity != nil {
		preset.EnergyDensity = *b.energyDensity
	}
	if b.pixelSize != nil {
		preset.PixelSize = *b.pixelSize
	}
	if b.beamPower != nil {
		preset.BeamPower = *b.beamPower
	}

	if preset.PixelSize <= 0 {
		return Options{}, fmt.Errorf("config: pixel size must be > 0, got %v", preset.PixelSize)
	}
	if preset.BeamPower <= 0 {
		return Options{}, fmt.Errorf("config: beam power must be > 0, got %v", preset.BeamPower)
	}
	if preset.EnergyDensity <= 0 {
		return Options{}, fmt.Errorf("config: energy density must be > 0, got %v", preset.EnergyDensity)
	}
	if b.seedWidth < 0 || b.seedHeight < 0 {
		return Options{}, fmt.Errorf("config: seed width/height must be >= 0")
	}

	return Options{
		Material:     preset.ToCanvasMaterial(),
		SeedWidth:    b.seedWidth,
		SeedHeight:   b.seedHeight,
		Multiply:     b.multiply,
		OutputPath:   b.outputPath,
		Debug:        b.debug,
		LogLevel:     logging.ParseLevel(b.logLevel),
		MaterialName: name,
	}, nil
}
