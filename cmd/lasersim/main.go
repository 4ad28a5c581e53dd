// Command lasersim reads a G-code program from stdin, simulates the
// resulting laser burn on a dynamically-growing energy canvas, and writes
// an inverted 8-bit grayscale PNG preview.
package main

import (
	"flag"
	"fmt"
	"os"

	"lasersim/internal/canvas"
	"lasersim/internal/config"
	"lasersim/internal/export"
	"lasersim/internal/gcode"
	"lasersim/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin *os.File, stdout, stderr *os.File) int {
	fs := flag.NewFlagSet("lasersim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: lasersim [options] < program.gcode\n\noptions:\n")
		fs.PrintDefaults()
	}

	var (
		width         int
		height        int
		absorption    float64
		absorptionSet bool
		absorptionMul float64
		absMulSet     bool
		diffusion     float64
		diffusionSet  bool
		energyDensity float64
		energySet     bool
		pixelSize     float64
		pixelSizeSet  bool
		beamPower     float64
		beamPowerSet  bool
		multiply      float64
		output        string
		materialName  string
		materialsFile string
		debug         bool
		logLevel      string
	)

	addFloatFlag := func(p *float64, set *bool, short, long string, def float64, usage string) {
		fn := func(v string) error {
			var f float64
			if _, err := fmt.Sscanf(v, "%g", &f); err != nil {
				return fmt.Errorf("invalid value %q", v)
			}
			*p = f
			*set = true
			return nil
		}
		fs.Func(short, usage, fn)
		fs.Func(long, usage, fn)
		*p = def
	}

	fs.IntVar(&width, "W", 0, "seed canvas width in pixels")
	fs.IntVar(&width, "width", 0, "seed canvas width in pixels")
	fs.IntVar(&height, "H", 0, "seed canvas height in pixels")
	fs.IntVar(&height, "height", 0, "seed canvas height in pixels")

	addFloatFlag(&absorption, &absorptionSet, "a", "absorption", 0, "virgin material absorption coefficient")
	addFloatFlag(&absorptionMul, &absMulSet, "A", "absorption_mul", 0, "state-dependent absorption factor")
	addFloatFlag(&diffusion, &diffusionSet, "d", "diffusion", 0, "linear-neighbor diffusion coefficient")
	addFloatFlag(&energyDensity, &energySet, "e", "energy-density", 0, "energy density threshold, J/mm^2")
	addFloatFlag(&pixelSize, &pixelSizeSet, "p", "pixel-size", 0, "pixel edge length in mm")
	addFloatFlag(&beamPower, &beamPowerSet, "P", "beam-power", 0, "beam power in watts")

	fs.Float64Var(&multiply, "m", 1.0, "global power multiplier")
	fs.Float64Var(&multiply, "multiply", 1.0, "global power multiplier")

	fs.StringVar(&output, "o", "", "output PNG path (default: stdout)")
	fs.StringVar(&output, "output", "", "output PNG path (default: stdout)")

	fs.StringVar(&materialName, "material", "", "named material preset (default: \"default\")")
	fs.StringVar(&materialsFile, "materials-file", "", "YAML file of additional/overriding material presets")
	fs.BoolVar(&debug, "debug", false, "burn a parameter legend into the top-left corner of the output")
	fs.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}

	builder := config.NewBuilder().
		UseMaterial(materialName).
		UseMaterialsFile(materialsFile).
		Multiply(multiply).
		SeedSize(width, height).
		Output(output).
		Debug(debug).
		LogLevel(logLevel)

	if absorptionSet {
		builder.OverrideAbsorption(absorption)
	}
	if absMulSet {
		builder.OverrideAbsorptionMul(absorptionMul)
	}
	if diffusionSet {
		builder.OverrideDiffusion(diffusion)
	}
	if energySet {
		builder.OverrideEnergyDensity(energyDensity)
	}
	if pixelSizeSet {
		builder.OverridePixelSize(pixelSize)
	}
	if beamPowerSet {
		builder.OverrideBeamPower(beamPower)
	}

	opts, err := builder.Build()
	if err != nil {
		fmt.Fprintf(stderr, "lasersim: %v\n", err)
		fs.Usage()
		return 1
	}

	logger := logging.New("lasersim", opts.LogLevel)

	c := canvas.New(opts.Material)
	if opts.SeedWidth > 0 || opts.SeedHeight > 0 {
		if !c.SeedMinimum(opts.SeedWidth, opts.SeedHeight) {
			fmt.Fprintf(stderr, "lasersim: failed to allocate seed canvas\n")
			return 1
		}
	}

	driver := gcode.NewDriver(c, opts.Material.PixelSize, opts.Multiply, logger)
	if err := driver.Run(stdin); err != nil {
		fmt.Fprintf(stderr, "lasersim: %v\n", err)
		return 1
	}

	img := export.Flatten(c)
	if opts.Debug {
		export.ApplyLegend(img, export.Legend{Lines: []string{
			fmt.Sprintf("material: %s", opts.MaterialName),
			fmt.Sprintf("size: %dx%d", c.Width(), c.Height()),
			fmt.Sprintf("multiply: %.3g", opts.Multiply),
		}})
	}

	if err := export.Write(img, opts.OutputPath, stdout); err != nil {
		fmt.Fprintf(stderr, "lasersim: %v\n", err)
		return 1
	}

	logger.Infof("wrote %dx%d image", c.Width(), c.Height())
	return 0
}
