// Package gcode implements the line-oriented G-code lexer and modal state
// machine that drives the burn simulation: the external collaborator
// spec.md treats as an interface, built out in full here so the CLI has
// something to read stdin with.
package gcode

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-gl/mathgl/mgl64"

	"lasersim/internal/logging"
	"lasersim/internal/sim"

	"lasersim/internal/canvas"
)

// errOutOfMemory is returned by Run when a burn stamp fails to extend the
// canvas, the only fatal condition the driver itself can raise.
var errOutOfMemory = errors.New("gcode: canvas allocation failed")

// motion is the modal G-word state: rapid moves reposition without
// burning, interpolated moves (G1/G2/G3 - arcs are chords, see spec
// non-goals) burn.
type motion int

const (
	motionRapid motion = iota
	motionDraw
)

type state struct {
	pos       mgl64.Vec2
	motion    motion
	spindleOn bool
	sSeen     bool
	s         float64 // 0..255
	relative  bool    // G91 toggles relative X/Y interpretation
}

// Driver consumes a G-code stream and issues DrawVector calls into a
// canvas, tracking modal motion/spindle state across lines.
type Driver struct {
	canvas   *canvas.Canvas
	zoom     float64 // 1/pixel_size
	multiply float64
	logger   logging.Logger
	state    state
}

// NewDriver builds a driver targeting canvas, scaling X/Y words by
// 1/pixelSize, and applying multiply as the external power override on
// every drawn segment.
func NewDriver(c *canvas.Canvas, pixelSize, multiply float64, logger logging.Logger) *Driver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Driver{
		canvas:   c,
		zoom:     1.0 / pixelSize,
		multiply: multiply,
		logger:   logger,
	}
}

// Run reads r line by line until EOF or a burn failure, returning the
// first error encountered. A word whose numeric tail has no digits is
// logged and read as zero; a token that does not start with a letter is
// logged and skipped. Neither aborts the run (see error handling design,
// section 7).
func (d *Driver) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := d.runLine(lineNo, scanner.Text()); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (d *Driver) runLine(lineNo int, line string) error {
	if idx := strings.IndexByte(line, ';'); idx >= 0 {
		line = line[:idx]
	}

	newPos := d.state.pos

	for _, raw := range strings.Fields(line) {
		letter, value, ok := parseWord(raw)
		if !ok {
			if letter == 0 {
				d.logger.Warnf("line %d: malformed word %q, skipping", lineNo, raw)
				continue
			}
			d.logger.Warnf("line %d: word %q has no numeric value, reading it as zero", lineNo, raw)
		}

		switch letter {
		case 'G':
			switch int(value) {
			case 0:
				d.state.motion = motionRapid
			case 1, 2, 3:
				d.state.motion = motionDraw
			case 90:
				d.state.relative = false
			case 91:
				d.state.relative = true
			default:
				d.logger.Debugf("line %d: ignoring unrecognized G%d", lineNo, int(value))
			}
		case 'M':
			switch int(value) {
			case 3, 4:
				d.state.spindleOn = true
				if !d.state.sSeen {
					d.state.s = 255
					d.state.sSeen = true
				}
			case 5:
				d.state.spindleOn = false
			default:
				d.logger.Debugf("line %d: ignoring unrecognized M%d", lineNo, int(value))
			}
		case 'X':
			if d.state.relative {
				newPos[0] = d.state.pos[0] + value
			} else {
				newPos[0] = value
			}
		case 'Y':
			if d.state.relative {
				newPos[1] = d.state.pos[1] + value
			} else {
				newPos[1] = value
			}
		case 'S':
			d.state.s = value
			d.state.sSeen = true
		case 'F':
			d.canvas.Material.SetFeedRate(value)
		default:
			// Every other word is silently ignored per the recognized dialect.
		}
	}

	drawing := d.state.motion == motionDraw && d.state.spindleOn
	if drawing && newPos != d.state.pos {
		intensity := (d.state.s / 255.0) * d.multiply
		sx := quantizeCoord(d.state.pos[0], d.zoom)
		sy := quantizeCoord(d.state.pos[1], d.zoom)
		ex := quantizeCoord(newPos[0], d.zoom)
		ey := quantizeCoord(newPos[1], d.zoom)
		if !sim.DrawVector(d.canvas, sx, sy, ex, ey, intensity) {
			return errOutOfMemory
		}
	}

	d.state.pos = newPos
	return nil
}

// Position returns the driver's current interpreted (cur_x, cur_y), mostly
// useful for tests and debug logging.
func (d *Driver) Position() mgl64.Vec2 { return d.state.pos }

// quantizeCoord applies the documented floor(v*zoom + zoom/16) rounding
// from the driver interface. See design notes: this loses sub-pixel
// precision the rasterizer could otherwise use, but it's the documented,
// visually-compatible behavior.
func quantizeCoord(v, zoom float64) float64 {
	return floor(v*zoom + zoom/16)
}

func floor(v float64) float64 {
	i := int64(v)
	if v < 0 && float64(i) != v {
		i--
	}
	return float64(i)
}

func parseWord(raw string) (letter byte, value float64, ok bool) {
	if len(raw) == 0 {
		return 0, 0, false
	}
	r := rune(raw[0])
	if !unicode.IsLetter(r) {
		return 0, 0, false
	}
	letter = byte(unicode.ToUpper(r))

	value, ok = parseNumberPrefix(raw[1:])
	return letter, value, ok
}

// parseNumberPrefix tolerantly parses as much of s as forms a valid
// decimal number (optional sign, digits, optional fraction, optional
// exponent), ignoring any non-numeric tail. It reports ok=false only when
// no digits were found at all, in which case callers treat the word as
// having a zero numeric tail per the driver's malformed-word policy.
func parseNumberPrefix(s string) (float64, bool) {
	i := 0
	n := len(s)
	start := 0

	if i < n && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digitsBefore := i
	for i < n && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	hasIntDigits := i > digitsBefore

	if i < n && s[i] == '.' {
		i++
		digitsAfter := i
		for i < n && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		hasFracDigits := i > digitsAfter
		if !hasIntDigits && !hasFracDigits {
			return 0, false
		}
	} else if !hasIntDigits {
		return 0, false
	}

	mantissaEnd := i
	if i < n && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < n && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expDigitsStart := j
		for j < n && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j > expDigitsStart {
			i = j
		}
	}

	numStr := s[start:i]
	if numStr == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		// Fall back to the mantissa alone if the tentative exponent suffix
		// somehow didn't parse; mantissaEnd always parses since it was
		// built from validated digit runs.
		v, err = strconv.ParseFloat(s[start:mantissaEnd], 64)
		if err != nil {
			return 0, false
		}
	}
	return v, true
}
