// Package export flattens a simulated canvas into an 8-bit grayscale PNG,
// the image exporter collaborator from spec.md section 4.6.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"lasersim/internal/canvas"
)

// Legend, when it has any lines, is burned into the top-left corner of the
// exported image as a debug annotation. It never participates in the simulation and
// is applied strictly after the canvas is flattened.
type Legend struct {
	Lines []string
}

// Flatten clamps every cell to [0,1], emits 255-floor(v*255) (burn is dark
// on a light background), and reverses row order: the canvas's Y grows
// upward in G-code convention, image Y grows downward.
func Flatten(c *canvas.Canvas) *image.Gray {
	w, h := c.Width(), c.Height()
	if w == 0 || h == 0 {
		// An unallocated or zero-sized canvas still exports cleanly: a
		// single all-white pixel is visually indistinguishable from "no
		// image" for a preview tool, and avoids a zero-dimension PNG.
		w, h = 1, 1
	}

	img := image.NewGray(image.Rect(0, 0, w, h))

	if !c.Allocated() {
		whiteOut(img)
		return img
	}

	for row := 0; row < h; row++ {
		// Row 0 of the output is the canvas's top (highest Y); reversed
		// relative to the canvas's own Y-grows-upward convention.
		y := c.Y1 - row
		for col := 0; col < w; col++ {
			x := c.X0 + col
			v := float64(*c.At(x, y))
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			gray := uint8(255 - int(v*255))
			img.Pix[img.PixOffset(col, row)] = gray
		}
	}
	return img
}

func whiteOut(img *image.Gray) {
	for i := range img.Pix {
		img.Pix[i] = 255
	}
}

func colorGray(v uint8) (g grayColor) { return grayColor{v} }

// grayColor is a minimal color.Color used for the legend's uniform fills,
// so the package does not import image/color.
type grayColor struct{ Y uint8 }

func (g grayColor) RGBA() (r, g2, b, a uint32) {
	v := uint32(g.Y) * 0x101
	return v, v, v, 0xffff
}

// ApplyLegend composites a monochrome bitmap-font legend into the top-left
// corner of img, in place. Used only when --debug is set; it's a
// post-simulation annotation, not part of the energy model.
func ApplyLegend(img *image.Gray, legend Legend) {
	if len(legend.Lines) == 0 {
		return
	}

	const lineHeight = 13
	const padding = 4

	face := basicfont.Face7x13
	bounds := img.Bounds()

	// Paint a solid background box behind the text so the legend stays
	// legible over a dark burn region.
	boxHeight := padding*2 + lineHeight*len(legend.Lines)
	boxWidth := bounds.Dx()
	if boxWidth > 420 {
		boxWidth = 420
	}
	boxRect := image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Min.X+boxWidth, bounds.Min.Y+boxHeight)
	draw.Draw(img, boxRect, &image.Uniform{C: grayColor{235}}, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(grayColor{0}),
		Face: face,
	}

	for i, line := range legend.Lines {
		drawer.Dot = fixed.Point26_6{
			X: fixed.I(bounds.Min.X + padding),
			Y: fixed.I(bounds.Min.Y + padding + (i+1)*lineHeight - 3),
		}
		drawer.DrawString(line)
	}
}

// Write encodes img as a single-channel grayscale PNG. If path is empty,
// it streams directly to out (stdout). Otherwise it writes atomically: the
// image is encoded to a sibling temp file (suffixed with a uuid to avoid
// collisions between concurrent invocations sharing an output directory)
// and renamed into place, so a failure mid-encode never leaves a truncated
// file at the requested path.
func Write(img *image.Gray, path string, out io.Writer) error {
	if path == "" {
		return png.Encode(out, img)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("export: encoding png: %w", err)
	}

	dir := filepath.Dir(path)
	tmpPath := filepath.Join(dir, fmt.Sprintf(".lasersim-%s.tmp", uuid.NewString()))

	if err := os.WriteFile(tmpPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("export: writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("export: renaming into place: %w", err)
	}
	return nil
}
