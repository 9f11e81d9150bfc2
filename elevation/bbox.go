package elevation

import (
	"math"

	"github.com/paulmach/orb"
)

// BoundingBox is a geographic query box in degrees.
type BoundingBox struct {
	LonMin, LatMin, LonMax, LatMax float64
}

// Validate rejects coordinates outside [-180,180] x [-90,90].
func (b BoundingBox) Validate() error {
	for _, lon := range []float64{b.LonMin, b.LonMax} {
		if math.IsNaN(lon) || lon < -180 || lon > 180 {
			return validationf("longitude %g outside (-180,180)", lon)
		}
	}
	for _, lat := range []float64{b.LatMin, b.LatMax} {
		if math.IsNaN(lat) || lat < -90 || lat > 90 {
			return validationf("latitude %g outside (-90,90)", lat)
		}
	}
	return nil
}

// Normalize swaps reversed min/max pairs and reports each swap.
func (b BoundingBox) Normalize() (BoundingBox, []string) {
	var warnings []string
	if b.LonMin > b.LonMax {
		b.LonMin, b.LonMax = b.LonMax, b.LonMin
		warnings = append(warnings, "minimum longitude > maximum longitude - swapping")
	}
	if b.LatMin > b.LatMax {
		b.LatMin, b.LatMax = b.LatMax, b.LatMin
		warnings = append(warnings, "minimum latitude > maximum latitude - swapping")
	}
	return b, warnings
}

// CrossesAntimeridian reports boxes spanning from <= -178 to >= 178.
func (b BoundingBox) CrossesAntimeridian() bool {
	return b.LonMin <= -178 && b.LonMax >= 178
}

func (b BoundingBox) Center() (lon, lat float64) {
	return (b.LonMin + b.LonMax) / 2, (b.LatMin + b.LatMax) / 2
}

func (b BoundingBox) Area() float64 {
	return (b.LonMax - b.LonMin) * (b.LatMax - b.LatMin)
}

func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.LonMin, b.LatMin},
		Max: orb.Point{b.LonMax, b.LatMax},
	}
}

func (b BoundingBox) Extent() Extent {
	return Extent{MinX: b.LonMin, MinY: b.LatMin, MaxX: b.LonMax, MaxY: b.LatMax}
}

// Extent is an axis-aligned box in any coordinate system.
type Extent struct {
	MinX, MinY, MaxX, MaxY float64
}

// Snap grows the extent outward to multiples of posting.
func (e Extent) Snap(posting float64) Extent {
	return Extent{
		MinX: math.Floor(e.MinX/posting) * posting,
		MinY: math.Floor(e.MinY/posting) * posting,
		MaxX: math.Ceil(e.MaxX/posting) * posting,
		MaxY: math.Ceil(e.MaxY/posting) * posting,
	}
}

// ExtentOf returns the envelope of the given points.
func ExtentOf(xs, ys []float64) Extent {
	e := Extent{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for i := range xs {
		e.MinX = math.Min(e.MinX, xs[i])
		e.MaxX = math.Max(e.MaxX, xs[i])
		e.MinY = math.Min(e.MinY, ys[i])
		e.MaxY = math.Max(e.MaxY, ys[i])
	}
	return e
}
