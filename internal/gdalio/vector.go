package gdalio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/airbusgeo/godal"
	"github.com/idixon/hyp3-lib/elevation"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
)

// ShapefileCoverage reads <dir>/<name>_coverage.shp footprint layers.
type ShapefileCoverage struct {
	Dir string
}

func (s ShapefileCoverage) LoadCoverage(src elevation.Source) (elevation.Coverage, error) {
	path := filepath.Join(s.Dir, src.CoverageName()+".shp")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return elevation.Coverage{}, fmt.Errorf("%s: %w", path, elevation.ErrCoverageMissing)
	}
	ds, err := godal.Open(path, godal.VectorOnly())
	if err != nil {
		return elevation.Coverage{}, err
	}
	defer ds.Close()

	cov := elevation.Coverage{Source: src}
	for _, layer := range ds.Layers() {
		layer.ResetReading()
		for {
			feat := layer.NextFeature()
			if feat == nil {
				break
			}
			fp, ok, err := footprint(feat)
			feat.Close()
			if err != nil {
				return cov, fmt.Errorf("%s: %w", path, err)
			}
			if ok {
				cov.Footprints = append(cov.Footprints, fp)
			}
		}
	}
	return cov, nil
}

func footprint(feat *godal.Feature) (elevation.Footprint, bool, error) {
	geom := feat.Geometry()
	if geom == nil {
		return elevation.Footprint{}, false, nil
	}
	defer geom.Close()
	raw, err := geom.WKB()
	if err != nil {
		return elevation.Footprint{}, false, err
	}
	g, err := wkb.Unmarshal(raw)
	if err != nil {
		return elevation.Footprint{}, false, err
	}
	return elevation.Footprint{Tile: tileName(feat, g), Geometry: g}, true, nil
}

func tileName(feat *godal.Feature, g orb.Geometry) string {
	for _, key := range []string{"tile", "TILE"} {
		if f, ok := feat.Fields()[key]; ok && f.String() != "" {
			return f.String()
		}
	}
	sw := g.Bound().Min
	return elevation.TileNameFor(sw.Lat(), sw.Lon()).FileStem()
}
