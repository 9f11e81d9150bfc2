package elevation

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Footprint is one tile's coverage polygon.
type Footprint struct {
	Tile     string
	Geometry orb.Geometry
}

// Coverage is the footprint set of one source.
type Coverage struct {
	Source     Source
	Footprints []Footprint
}

// Candidate is a scored source.
type Candidate struct {
	Source   Source
	Coverage float64 // 0..1
	Tiles    []string
}

// Score intersects every footprint with the box and returns the covered
// fraction plus the tiles that contributed, in footprint order.
func (c Coverage) Score(box BoundingBox) Candidate {
	cand := Candidate{Source: c.Source}
	total := box.Area()
	if total <= 0 {
		return cand
	}
	bound := box.Bound()
	var covered float64
	for _, fp := range c.Footprints {
		a := clippedArea(fp.Geometry, bound)
		if a > 0 {
			covered += a
			cand.Tiles = append(cand.Tiles, fp.Tile)
		}
	}
	cand.Coverage = covered / total
	return cand
}

func clippedArea(g orb.Geometry, b orb.Bound) float64 {
	switch g := g.(type) {
	case orb.Polygon:
		return planar.Area(clip.Polygon(b, g))
	case orb.MultiPolygon:
		return planar.Area(clip.MultiPolygon(b, g))
	case orb.Bound:
		return planar.Area(clip.Polygon(b, g.ToPolygon()))
	}
	return 0
}

// CoverageLoader provides the footprints of a source.
type CoverageLoader interface {
	LoadCoverage(src Source) (Coverage, error)
}

// CoverageChain tries each loader in turn, skipping those that report
// ErrCoverageMissing.
type CoverageChain []CoverageLoader

func (c CoverageChain) LoadCoverage(src Source) (Coverage, error) {
	for _, l := range c {
		cov, err := l.LoadCoverage(src)
		if errors.Is(err, ErrCoverageMissing) {
			continue
		}
		return cov, err
	}
	return Coverage{}, fmt.Errorf("%s: %w", src, ErrCoverageMissing)
}

// GeoJSONCoverage reads <dir>/<name>_coverage.geojson feature collections.
// Each feature carries its tile id in the "tile" property; features without
// one are named after the south-west corner of their envelope.
type GeoJSONCoverage struct {
	Dir string
}

func (g GeoJSONCoverage) LoadCoverage(src Source) (Coverage, error) {
	path := filepath.Join(g.Dir, src.CoverageName()+".geojson")
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Coverage{}, fmt.Errorf("%s: %w", path, ErrCoverageMissing)
	}
	if err != nil {
		return Coverage{}, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return Coverage{}, fmt.Errorf("parse %s: %w", path, err)
	}

	cov := Coverage{Source: src}
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		tile := f.Properties.MustString("tile", "")
		if tile == "" {
			sw := f.Geometry.Bound().Min
			tile = TileNameFor(sw.Lat(), sw.Lon()).FileStem()
		}
		cov.Footprints = append(cov.Footprints, Footprint{Tile: tile, Geometry: f.Geometry})
	}
	return cov, nil
}
