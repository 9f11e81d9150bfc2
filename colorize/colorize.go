// Package colorize turns a dual-pol RTC pair into a three-band color
// composite: red for strong co-pol excess, green for cross-pol volume
// scattering, blue for the optional teal extension and dark areas below
// a dB threshold.
package colorize

import (
	"errors"
	"fmt"
	"math"

	"github.com/idixon/hyp3-lib/internal/grid"
	"gonum.org/v1/gonum/floats"
)

// ErrInputMissing is returned when an input raster does not exist.
var ErrInputMissing = errors.New("input file does not exist")

// powerFloor is the -24 dB floor applied by Params.Cleanup.
const powerFloor = 0.0039811

type Params struct {
	Threshold float64 // dB
	Cleanup   bool    // zero power below powerFloor
	Teal      bool    // extend the blue band with teal
	Amp       bool    // inputs are amplitude, square them
	Float     bool    // keep float output instead of scaling to bytes
}

// Composite is the decomposition result, georeferenced like the full-pol
// input.
type Composite struct {
	Width, Height int
	GeoTransform  grid.GeoTransform
	Projection    string
	Red           []float64
	Green         []float64
	Blue          []float64
}

func (c *Composite) Bands() [3][]float64 {
	return [3][]float64{c.Red, c.Green, c.Blue}
}

// clean copies band samples as power values.
func clean(g *grid.Grid, p Params) []float64 {
	out := make([]float64, len(g.Data))
	for i, v := range g.Data {
		x := float64(v)
		if math.IsNaN(x) || x < 0 {
			x = 0
		}
		if p.Cleanup && x < powerFloor {
			x = 0
		}
		out[i] = x
	}
	if p.Amp {
		floats.Mul(out, out)
	}
	return out
}

// Compose applies the decomposition to a full-pol (cp) and cross-pol (xp)
// band. Both are cut to their common upper-left extent first.
func Compose(full, cross *grid.Grid, p Params) (*Composite, error) {
	w, h := min(full.Width, cross.Width), min(full.Height, cross.Height)
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("colorize: empty overlap %dx%d", w, h)
	}
	full, err := full.Crop(w, h)
	if err != nil {
		return nil, err
	}
	cross, err = cross.Crop(w, h)
	if err != nil {
		return nil, err
	}

	cp := clean(full, p)
	xp := clean(cross, p)
	g := math.Pow(10, p.Threshold/10)

	c := &Composite{
		Width:        w,
		Height:       h,
		GeoTransform: full.GeoTransform,
		Projection:   full.Projection,
		Red:          make([]float64, w*h),
		Green:        make([]float64, w*h),
		Blue:         make([]float64, w*h),
	}
	for i := range cp {
		c.Red[i], c.Green[i], c.Blue[i] = pixel(cp[i], xp[i], g, p.Teal)
	}
	return c, nil
}

func pixel(cp, xp, g float64, teal bool) (r, gr, b float64) {
	var zp, rp, bp float64
	if cp > xp {
		zp = math.Atan(math.Sqrt(cp-xp)) * 2 / math.Pi
	}
	if cp > 3*xp {
		rp = math.Sqrt(cp - 3*xp)
	}
	if teal && 3*xp > cp {
		bp = math.Sqrt(3*xp - cp)
	}
	if xp < g {
		return zp, 2 * zp, 5 * zp
	}
	return 2 * rp, 3 * math.Sqrt(xp), 2 * bp
}

// Float32 returns the bands as computed.
func (c *Composite) Float32() [3][]float32 {
	var out [3][]float32
	for i, band := range c.Bands() {
		out[i] = make([]float32, len(band))
		for j, v := range band {
			out[i][j] = float32(v)
		}
	}
	return out
}

// Bytes scales the bands by 255, rounding and clamping to 0..255.
func (c *Composite) Bytes() [3][]uint8 {
	var out [3][]uint8
	for i, band := range c.Bands() {
		scaled := make([]float64, len(band))
		floats.ScaleTo(scaled, 255, band)
		out[i] = make([]uint8, len(band))
		for j, v := range scaled {
			out[i][j] = uint8(math.Max(0, math.Min(255, math.Round(v))))
		}
	}
	return out
}

// Stats summarises one band for logging.
func Stats(band []float64) (lo, hi, mean float64) {
	if len(band) == 0 {
		return 0, 0, 0
	}
	return floats.Min(band), floats.Max(band), floats.Sum(band) / float64(len(band))
}
