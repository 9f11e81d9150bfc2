package elevation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/idixon/hyp3-lib/internal/grid"
	"github.com/rs/zerolog/log"
)

const (
	// NoData is written to every output pixel without elevation.
	NoData = -32767

	resampleCubic = "cubic"

	mosaicName = "temp.vrt"
	tempGeo    = "tempdem.tif"
	tempUTM    = "temputm.tif"
)

// WarpOptions mirrors the gdalwarp switches the assembler uses.
type WarpOptions struct {
	DstSRS     string // e.g. "EPSG:32633"; empty keeps the source CRS
	XRes, YRes float64
	Bounds     *Extent // output bounds in the target CRS
	Resample   string
	NoData     float64
}

// Raster is the raster toolkit the assembler drives.
type Raster interface {
	BuildVRT(dst string, sources []string) error
	Warp(dst, src string, opts WarpOptions) error
	Bounds(path string) (Extent, error)
	ProjectToUTM(zone int, south bool, lon, lat []float64) (x, y []float64, err error)
	ReadGrid(path string) (*grid.Grid, error)
	UpdateGrid(path string, g *grid.Grid) error
}

// Request describes one DEM to build.
type Request struct {
	Box     BoundingBox
	Output  string
	UTM     bool
	Posting float64 // metres; 0 disables snapping
	Geoid   bool    // convert EGM96 heights to WGS84 ellipsoid heights
	// KeepTemp leaves temp.vrt, tempdem.tif and temputm.tif in WorkDir.
	KeepTemp bool
}

// Result describes the DEM that was written.
type Result struct {
	Source       Source
	Coverage     float64
	Tiles        []string
	Output       string
	EPSG         int // 0 for geographic output
	Antimeridian bool
}

// Assembler builds a DEM for a bounding box: it picks the best covering
// source, stages its tiles, mosaics and resamples them to the box and
// optionally reprojects to UTM and snaps to a posting grid.
type Assembler struct {
	Raster   Raster
	Coverage CoverageLoader
	Store    *TileStore
	WorkDir  string
	Geoid    UndulationFunc // defaults to EGM96Undulation
}

func (a *Assembler) work(name string) string {
	return filepath.Join(a.WorkDir, name)
}

// Validate checks and normalises a request before any I/O.
func Validate(req Request) (Request, error) {
	if req.Posting != 0 {
		if !req.UTM {
			return req, validationf("may use posting with UTM projection only")
		}
		if req.Posting < 0 {
			return req, validationf("posting must be positive, got %g", req.Posting)
		}
	}
	if req.Output == "" {
		return req, validationf("output file required")
	}
	if err := req.Box.Validate(); err != nil {
		return req, err
	}
	box, warnings := req.Box.Normalize()
	for _, w := range warnings {
		log.Warn().Msg(w)
	}
	req.Box = box
	return req, nil
}

// Assemble runs the whole pipeline. Every failure is returned; there is no
// partial-output recovery.
func (a *Assembler) Assemble(ctx context.Context, req Request) (Result, error) {
	if a.Raster == nil || a.Store == nil {
		return Result{}, fmt.Errorf("assembler is not configured")
	}
	req, err := Validate(req)
	if err != nil {
		return Result{}, err
	}

	if req.Box.CrossesAntimeridian() {
		if !req.UTM {
			return Result{}, validationf("may only create a DEM file over anti-meridian using UTM coordinates")
		}
		return a.antimeridian(ctx, req)
	}

	if a.Coverage == nil {
		return Result{}, fmt.Errorf("assembler has no coverage loader")
	}
	cand, err := SelectSource(req.Box, a.Coverage)
	if err != nil {
		return Result{}, err
	}
	log.Info().
		Stringer("dem", cand.Source).
		Float64("coverage", cand.Coverage).
		Strs("tiles", cand.Tiles).
		Msg("selected DEM")

	res := Result{Source: cand.Source, Coverage: cand.Coverage, Tiles: cand.Tiles, Output: req.Output}

	staged := make([]string, 0, len(cand.Tiles))
	for _, tile := range cand.Tiles {
		meta, err := a.Store.Stage(ctx, TileRef{Source: cand.Source, Tile: tile})
		if err != nil {
			return res, err
		}
		staged = append(staged, meta.Path)
	}

	mosaic, geo, utm := a.work(mosaicName), a.work(tempGeo), a.work(tempUTM)
	if !req.KeepTemp {
		defer removeAll(mosaic, geo, utm)
	}

	if err := a.Raster.BuildVRT(mosaic, staged); err != nil {
		return res, fmt.Errorf("build mosaic: %w", err)
	}
	for _, stale := range []string{geo, utm} {
		if _, err := os.Stat(stale); err == nil {
			log.Debug().Str("file", stale).Msg("removing old file")
			if err := os.Remove(stale); err != nil {
				return res, err
			}
		}
	}

	log.Info().Msg("creating initial raster file")
	bounds := req.Box.Extent()
	px := cand.Source.GeoPixel()
	if err := a.Raster.Warp(geo, mosaic, WarpOptions{
		XRes: px, YRes: px, Bounds: &bounds, Resample: resampleCubic, NoData: NoData,
	}); err != nil {
		return res, fmt.Errorf("resample mosaic: %w", err)
	}

	if req.Geoid {
		if err := a.toEllipsoid(geo); err != nil {
			return res, err
		}
	}

	if !req.UTM {
		return res, os.Rename(geo, req.Output)
	}

	res.EPSG = UTMEPSG(req.Box)
	log.Info().Int("epsg", res.EPSG).Msg("translating raster file to UTM coordinates")
	upx := cand.Source.UTMPixel()
	if err := a.Raster.Warp(utm, geo, WarpOptions{
		DstSRS: fmt.Sprintf("EPSG:%d", res.EPSG), XRes: upx, YRes: upx, Resample: resampleCubic, NoData: NoData,
	}); err != nil {
		return res, fmt.Errorf("reproject to UTM: %w", err)
	}

	if req.Posting == 0 {
		return res, os.Rename(utm, req.Output)
	}

	ext, err := a.Raster.Bounds(utm)
	if err != nil {
		return res, err
	}
	snapped := ext.Snap(req.Posting)
	log.Info().
		Float64("posting", req.Posting).
		Float64("e_min", snapped.MinX).Float64("e_max", snapped.MaxX).
		Float64("n_min", snapped.MinY).Float64("n_max", snapped.MaxY).
		Msg("snapping file to grid")
	if err := a.Raster.Warp(req.Output, utm, WarpOptions{
		XRes: upx, YRes: upx, Bounds: &snapped, Resample: resampleCubic, NoData: NoData,
	}); err != nil {
		return res, fmt.Errorf("snap to posting: %w", err)
	}
	return res, nil
}

func (a *Assembler) toEllipsoid(path string) error {
	und := a.Geoid
	if und == nil {
		und = EGM96Undulation
	}
	g, err := a.Raster.ReadGrid(path)
	if err != nil {
		return err
	}
	log.Info().Msg("converting heights to WGS84 ellipsoid")
	if err := ToEllipsoid(g, NoData, und); err != nil {
		return err
	}
	return a.Raster.UpdateGrid(path, g)
}

// removeAll is best-effort cleanup of intermediates.
func removeAll(paths ...string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Debug().Err(err).Str("file", p).Msg("cleanup failed")
		}
	}
}
