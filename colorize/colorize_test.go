package colorize

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/idixon/hyp3-lib/internal/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func band(w, h int, vals ...float32) *grid.Grid {
	g := grid.New(w, h)
	copy(g.Data, vals)
	g.GeoTransform = grid.GeoTransform{500000, 30, 0, 4000000, 0, -30}
	g.Projection = "PROJCS[\"WGS 84 / UTM zone 33N\"]"
	return g
}

func TestCompose_IdenticalInputs(t *testing.T) {
	vals := []float32{0, 0.001, 0.01, 0.05, 0.2, 1.5}
	for _, teal := range []bool{false, true} {
		// threshold above every sample: all pixels take the dark branch
		c, err := Compose(band(3, 2, vals...), band(3, 2, vals...), Params{Threshold: 10, Teal: teal})
		require.NoError(t, err)
		for i := range vals {
			assert.Zero(t, c.Red[i], "red %d teal=%v", i, teal)
			assert.Zero(t, c.Blue[i], "blue %d teal=%v", i, teal)
			assert.Zero(t, c.Green[i], "green %d teal=%v", i, teal)
		}
	}

	// threshold below every sample: red stays off, blue only with teal
	c, err := Compose(band(3, 2, vals...), band(3, 2, vals...), Params{Threshold: -40})
	require.NoError(t, err)
	for i, v := range vals {
		assert.Zero(t, c.Red[i])
		assert.Zero(t, c.Blue[i])
		assert.InDelta(t, 3*math.Sqrt(float64(v)), c.Green[i], 1e-9)
	}
	c, err = Compose(band(3, 2, vals...), band(3, 2, vals...), Params{Threshold: -40, Teal: true})
	require.NoError(t, err)
	for i, v := range vals {
		assert.Zero(t, c.Red[i])
		assert.InDelta(t, 2*math.Sqrt(2*float64(v)), c.Blue[i], 1e-6)
	}
}

func TestPixel(t *testing.T) {
	g := math.Pow(10, -2.4) // -24 dB

	// bright co-pol dominant pixel
	r, gr, b := pixel(1.0, 0.1, g, false)
	assert.InDelta(t, 2*math.Sqrt(0.7), r, 1e-12)
	assert.InDelta(t, 3*math.Sqrt(0.1), gr, 1e-12)
	assert.Zero(t, b)

	// dark pixel: blend from the angle term
	r, gr, b = pixel(0.003, 0.001, g, true)
	zp := math.Atan(math.Sqrt(0.002)) * 2 / math.Pi
	assert.InDelta(t, zp, r, 1e-12)
	assert.InDelta(t, 2*zp, gr, 1e-12)
	assert.InDelta(t, 5*zp, b, 1e-12)

	// volume dominant with teal
	_, _, b = pixel(0.1, 0.2, g, true)
	assert.InDelta(t, 2*math.Sqrt(0.5), b, 1e-12)
}

func TestCompose_CleansAndTruncates(t *testing.T) {
	nan := float32(math.NaN())
	full := band(3, 2, 1, nan, -1, 0.002, 1, 1)
	cross := band(2, 3, 0.1, 0.1, 0.1, 0.1, 9, 9)

	c, err := Compose(full, cross, Params{Threshold: -30, Cleanup: true})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Width)
	assert.Equal(t, 2, c.Height)
	assert.Equal(t, full.GeoTransform, c.GeoTransform)
	assert.Equal(t, full.Projection, c.Projection)
	require.Len(t, c.Red, 4)

	// NaN becomes 0 so cp < xp and red is off
	assert.Zero(t, c.Red[1])
	// 0.002 falls under the cleanup floor
	assert.Zero(t, c.Red[2])
	assert.InDelta(t, 2*math.Sqrt(0.7), c.Red[0], 1e-6)
}

func TestCompose_Amplitude(t *testing.T) {
	c, err := Compose(band(1, 1, 2), band(1, 1, 0.5), Params{Threshold: -30, Amp: true})
	require.NoError(t, err)
	// powers 4 and 0.25
	assert.InDelta(t, 2*math.Sqrt(4-0.75), c.Red[0], 1e-9)
	assert.InDelta(t, 3*0.5, c.Green[0], 1e-9)
}

func TestBytesProportionalToFloat(t *testing.T) {
	vals := []float32{0.9, 0.05, 0.3, 0.0001, 0.02, 0.5}
	xvals := []float32{0.05, 0.04, 0.2, 0.0001, 0.001, 0.01}
	c, err := Compose(band(3, 2, vals...), band(3, 2, xvals...), Params{Threshold: -20, Teal: true})
	require.NoError(t, err)

	fl := c.Float32()
	by := c.Bytes()
	for b := 0; b < 3; b++ {
		for i := range fl[b] {
			want := math.Min(255, math.Round(float64(fl[b][i])*255))
			assert.InDelta(t, want, float64(by[b][i]), 1, "band %d pixel %d", b, i)
		}
	}
}

func TestStats(t *testing.T) {
	lo, hi, mean := Stats([]float64{1, 2, 3})
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 3.0, hi)
	assert.Equal(t, 2.0, mean)
}

type fakeIO struct {
	bands   map[string]*grid.Grid
	written *Composite
	asFloat bool
}

func (f *fakeIO) ReadBand(path string) (*grid.Grid, error) { return f.bands[path], nil }

func (f *fakeIO) WriteComposite(_ string, c *Composite, asFloat bool) error {
	f.written, f.asFloat = c, asFloat
	return nil
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	vv := filepath.Join(dir, "VV.tif")
	vh := filepath.Join(dir, "VH.tif")
	require.NoError(t, os.WriteFile(vv, nil, 0o644))
	require.NoError(t, os.WriteFile(vh, nil, 0o644))

	rio := &fakeIO{bands: map[string]*grid.Grid{vv: band(1, 1, 1), vh: band(1, 1, 0.1)}}
	require.NoError(t, Run(vv, vh, filepath.Join(dir, "rgb.tif"), Params{Threshold: -24, Float: true}, rio))
	require.NotNil(t, rio.written)
	assert.True(t, rio.asFloat)

	err := Run(vv, filepath.Join(dir, "missing.tif"), filepath.Join(dir, "rgb.tif"), Params{}, rio)
	assert.ErrorIs(t, err, ErrInputMissing)
}
