package elevation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/idixon/hyp3-lib/internal/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type warpCall struct {
	Dst, Src string
	Opts     WarpOptions
}

// fakeRaster records the calls and touches every output file.
type fakeRaster struct {
	vrtSources []string
	warps      []warpCall
	bounds     Extent
	projected  []bool
	grid       *grid.Grid
	updated    *grid.Grid
}

func touch(path string) error {
	return os.WriteFile(path, []byte("raster"), 0o644)
}

func (f *fakeRaster) BuildVRT(dst string, sources []string) error {
	f.vrtSources = sources
	return touch(dst)
}

func (f *fakeRaster) Warp(dst, src string, opts WarpOptions) error {
	if opts.Bounds != nil {
		b := *opts.Bounds
		opts.Bounds = &b
	}
	f.warps = append(f.warps, warpCall{dst, src, opts})
	return touch(dst)
}

func (f *fakeRaster) Bounds(string) (Extent, error) { return f.bounds, nil }

// ProjectToUTM pretends zone 1 is a plain scaling so extents are easy to check.
func (f *fakeRaster) ProjectToUTM(zone int, south bool, lon, lat []float64) ([]float64, []float64, error) {
	f.projected = append(f.projected, south)
	x := make([]float64, len(lon))
	y := make([]float64, len(lat))
	for i := range lon {
		x[i] = lon[i] * 1000
		y[i] = lat[i] * 1000
		if south {
			y[i] += southFalseNorthing
		}
	}
	return x, y, nil
}

func (f *fakeRaster) ReadGrid(string) (*grid.Grid, error) { return f.grid, nil }

func (f *fakeRaster) UpdateGrid(_ string, g *grid.Grid) error {
	f.updated = g
	return nil
}

func newTestAssembler(t *testing.T, raster *fakeRaster) (*Assembler, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "geotiff"), 0o755))
	for _, tile := range []string{"N45W123", "N45W122"} {
		require.NoError(t, touch(filepath.Join(root, "geotiff", tile+".tif")))
	}
	require.NoError(t, touch(filepath.Join(root, "SRTMUS1_zone1.tif")))
	require.NoError(t, touch(filepath.Join(root, "SRTMGL3_zone1.tif")))

	work := t.TempDir()
	store, err := NewTileStore(StoreConfig{
		StagingDir: filepath.Join(work, "DEM"),
		Table:      SourceTable{"SRTMGL1": root, "SRTMUS1": root, "SRTMGL3": root},
	})
	require.NoError(t, err)

	coverage := &fakeCoverage{bySource: map[Source][]Footprint{
		SRTMGL1: {
			{Tile: "N45W123", Geometry: rect(-123, 45, -122, 46)},
			{Tile: "N45W122", Geometry: rect(-122, 45, -121, 46)},
		},
	}}
	return &Assembler{Raster: raster, Coverage: coverage, Store: store, WorkDir: work}, work
}

func TestValidate(t *testing.T) {
	box := BoundingBox{-122.5, 45.2, -121.5, 45.8}
	tests := []struct {
		name string
		req  Request
	}{
		{"posting without utm", Request{Box: box, Output: "dem.tif", Posting: 30}},
		{"negative posting", Request{Box: box, Output: "dem.tif", UTM: true, Posting: -30}},
		{"missing output", Request{Box: box}},
		{"out of range", Request{Box: BoundingBox{-190, 45, -121, 46}, Output: "dem.tif"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	req, err := Validate(Request{Box: BoundingBox{-121.5, 45.8, -122.5, 45.2}, Output: "dem.tif"})
	require.NoError(t, err)
	assert.Equal(t, box, req.Box)
}

func TestAssemble_Geographic(t *testing.T) {
	raster := &fakeRaster{}
	a, work := newTestAssembler(t, raster)
	out := filepath.Join(work, "dem.tif")

	res, err := a.Assemble(context.Background(), Request{
		Box:    BoundingBox{-122.5, 45.2, -121.5, 45.8},
		Output: out,
	})
	require.NoError(t, err)
	assert.Equal(t, SRTMGL1, res.Source)
	assert.InDelta(t, 1.0, res.Coverage, 1e-9)
	assert.Equal(t, []string{"N45W123", "N45W122"}, res.Tiles)
	assert.Zero(t, res.EPSG)

	assert.Equal(t, []string{
		filepath.Join(work, "DEM", "SRTMGL1", "N45W123.tif"),
		filepath.Join(work, "DEM", "SRTMGL1", "N45W122.tif"),
	}, raster.vrtSources)

	require.Len(t, raster.warps, 1)
	w := raster.warps[0]
	assert.Equal(t, filepath.Join(work, tempGeo), w.Dst)
	assert.Equal(t, filepath.Join(work, mosaicName), w.Src)
	assert.Equal(t, Extent{-122.5, 45.2, -121.5, 45.8}, *w.Opts.Bounds)
	assert.Equal(t, SRTMGL1.GeoPixel(), w.Opts.XRes)
	assert.Equal(t, "cubic", w.Opts.Resample)
	assert.EqualValues(t, NoData, w.Opts.NoData)

	assert.FileExists(t, out)
	assert.NoFileExists(t, filepath.Join(work, mosaicName))
	assert.NoFileExists(t, filepath.Join(work, tempGeo))
}

func TestAssemble_UTMWithPosting(t *testing.T) {
	raster := &fakeRaster{bounds: Extent{MinX: 512345.6, MinY: 5012345.4, MaxX: 589999.1, MaxY: 5078001}}
	a, work := newTestAssembler(t, raster)
	out := filepath.Join(work, "dem_utm.tif")

	res, err := a.Assemble(context.Background(), Request{
		Box:      BoundingBox{-122.5, 45.2, -121.5, 45.8},
		Output:   out,
		UTM:      true,
		Posting:  30,
		KeepTemp: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 32610, res.EPSG)

	require.Len(t, raster.warps, 3)
	assert.Equal(t, "EPSG:32610", raster.warps[1].Opts.DstSRS)
	assert.EqualValues(t, 30, raster.warps[1].Opts.XRes)

	snap := raster.warps[2]
	assert.Equal(t, out, snap.Dst)
	assert.Equal(t, filepath.Join(work, tempUTM), snap.Src)
	assert.Equal(t, Extent{MinX: 512340, MinY: 5012340, MaxX: 590010, MaxY: 5078010}, *snap.Opts.Bounds)

	assert.FileExists(t, filepath.Join(work, mosaicName))
	assert.FileExists(t, filepath.Join(work, tempUTM))
}

func TestAssemble_Geoid(t *testing.T) {
	g := grid.New(2, 1)
	g.GeoTransform = grid.GeoTransform{-122.5, 0.5, 0, 45.8, 0, -0.6}
	g.Data = []float32{100, NoData}
	raster := &fakeRaster{grid: g}
	a, work := newTestAssembler(t, raster)
	a.Geoid = func(lat, lon float64) (float64, error) { return -20, nil }

	_, err := a.Assemble(context.Background(), Request{
		Box:    BoundingBox{-122.5, 45.2, -121.5, 45.8},
		Output: filepath.Join(work, "dem.tif"),
		Geoid:  true,
	})
	require.NoError(t, err)
	require.NotNil(t, raster.updated)
	assert.InDelta(t, 80, raster.updated.Data[0], 1e-4)
	assert.EqualValues(t, NoData, raster.updated.Data[1])
}

func TestAssemble_CoverageRejected(t *testing.T) {
	raster := &fakeRaster{}
	a, work := newTestAssembler(t, raster)

	out := filepath.Join(work, "dem.tif")

	_, err := a.Assemble(context.Background(), Request{
		Box:    BoundingBox{10, 10, 11, 11},
		Output: out,
	})
	assert.ErrorIs(t, err, ErrCoverageRejected)
	assert.Empty(t, raster.warps)
	assert.NoFileExists(t, out)

	staged, err := os.ReadDir(filepath.Join(work, "DEM"))
	require.NoError(t, err)
	assert.Empty(t, staged)
}

func TestAssemble_Antimeridian(t *testing.T) {
	t.Run("requires utm", func(t *testing.T) {
		a, work := newTestAssembler(t, &fakeRaster{})
		_, err := a.Assemble(context.Background(), Request{
			Box:    BoundingBox{-179.5, 51, 179.5, 52},
			Output: filepath.Join(work, "dem.tif"),
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("aleutians", func(t *testing.T) {
		raster := &fakeRaster{}
		a, work := newTestAssembler(t, raster)
		res, err := a.Assemble(context.Background(), Request{
			Box:    BoundingBox{-179.5, 51, 179.5, 52},
			Output: filepath.Join(work, "dem.tif"),
			UTM:    true,
		})
		require.NoError(t, err)
		assert.True(t, res.Antimeridian)
		assert.Equal(t, SRTMUS1, res.Source)
		assert.Equal(t, []bool{false}, raster.projected)
		require.Len(t, raster.warps, 1)
		assert.Equal(t, filepath.Join(work, "SRTMUS1_zone1.tif"), raster.warps[0].Src)
		assert.Equal(t, Extent{-179500, 51000, 179500, 52000}, *raster.warps[0].Opts.Bounds)
	})

	t.Run("south pacific", func(t *testing.T) {
		raster := &fakeRaster{}
		a, work := newTestAssembler(t, raster)
		res, err := a.Assemble(context.Background(), Request{
			Box:    BoundingBox{-179, -20, 179, -15},
			Output: filepath.Join(work, "dem.tif"),
			UTM:    true,
		})
		require.NoError(t, err)
		assert.Equal(t, SRTMGL3, res.Source)
		assert.Equal(t, 32701, res.EPSG)
		assert.Equal(t, []bool{true}, raster.projected)
		assert.Equal(t, Extent{-179000, -20000, 179000, -15000}, *raster.warps[0].Opts.Bounds)
	})

	t.Run("unsupported latitude", func(t *testing.T) {
		a, work := newTestAssembler(t, &fakeRaster{})
		_, err := a.Assemble(context.Background(), Request{
			Box:    BoundingBox{-179, 60, 179, 62},
			Output: filepath.Join(work, "dem.tif"),
			UTM:    true,
		})
		assert.ErrorIs(t, err, ErrValidation)
	})
}
