package elevation

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

const southFalseNorthing = 10000000.0

// substitute is a pre-projected UTM zone 1 dataset used for boxes that
// straddle the antimeridian.
type substitute struct {
	Source Source
	File   string
	South  bool
}

// substituteFor picks the dataset for an antimeridian box. Only the
// Aleutians and the southern Pacific bands are supported.
func substituteFor(b BoundingBox) (substitute, error) {
	switch {
	case b.LatMin > 50 && b.LatMax < 53:
		return substitute{Source: SRTMUS1, File: "SRTMUS1_zone1.tif"}, nil
	case b.LatMin > -51 && b.LatMax < -7:
		return substitute{Source: SRTMGL3, File: "SRTMGL3_zone1.tif", South: true}, nil
	}
	return substitute{}, validationf("failed to find a DEM across the antimeridian for latitudes %g..%g", b.LatMin, b.LatMax)
}

// antimeridianExtent projects the box corners into UTM zone 1. The zone 1
// substitutes are stored with the northern false northing, so southern
// northings are shifted back by 10,000 km.
func antimeridianExtent(r Raster, b BoundingBox, south bool) (Extent, error) {
	lon := []float64{b.LonMin, b.LonMin, b.LonMax, b.LonMax}
	lat := []float64{b.LatMin, b.LatMax, b.LatMin, b.LatMax}
	x, y, err := r.ProjectToUTM(1, south, lon, lat)
	if err != nil {
		return Extent{}, fmt.Errorf("project corners to UTM zone 1: %w", err)
	}
	e := ExtentOf(x, y)
	if south {
		e.MinY -= southFalseNorthing
		e.MaxY -= southFalseNorthing
	}
	return e, nil
}

func (a *Assembler) antimeridian(ctx context.Context, req Request) (Result, error) {
	log.Info().Msg("handling box across the antimeridian")
	sub, err := substituteFor(req.Box)
	if err != nil {
		return Result{}, err
	}
	log.Info().Stringer("dem", sub.Source).Msg("selected antimeridian DEM")

	res := Result{Source: sub.Source, Output: req.Output, Antimeridian: true, EPSG: 32601}
	if sub.South {
		res.EPSG = 32701
	}

	local := filepath.Join(a.WorkDir, sub.File)
	if err := a.Store.StageFile(ctx, sub.Source, sub.File, local); err != nil {
		return res, fmt.Errorf("unable to copy DEM file %s: %w", sub.File, err)
	}

	ext, err := antimeridianExtent(a.Raster, req.Box, sub.South)
	if err != nil {
		return res, err
	}
	log.Info().Str("output", req.Output).Msg("creating output file")
	if err := a.Raster.Warp(req.Output, local, WarpOptions{
		Bounds: &ext, Resample: resampleCubic, NoData: NoData,
	}); err != nil {
		return res, fmt.Errorf("warp %s: %w", sub.File, err)
	}
	if !req.KeepTemp {
		removeAll(local)
	}
	return res, nil
}
