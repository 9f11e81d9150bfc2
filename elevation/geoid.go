package elevation

import (
	"fmt"
	"math"

	"github.com/idixon/hyp3-lib/internal/grid"
	"github.com/westphae/geomag/pkg/egm96"
)

// geoidStep matches the 15' spacing of the EGM96 grid.
const geoidStep = 0.25

// UndulationFunc returns the geoid height N above the WGS84 ellipsoid.
type UndulationFunc func(lat, lon float64) (float64, error)

// EGM96Undulation evaluates N with the EGM96 model. A point on the
// ellipsoid sits -N above mean sea level.
func EGM96Undulation(lat, lon float64) (float64, error) {
	// the model takes longitudes in [0, 360)
	if lon < 0 {
		lon += 360
	}
	msl, err := egm96.NewLocationGeodetic(lat, lon, 0).HeightAboveMSL()
	if err != nil {
		return 0, err
	}
	return -msl, nil
}

type geoidLattice struct {
	lon0, lat0 float64 // south-west node
	nx, ny     int
	vals       []float64 // row j is lat0 + j*step
}

func newGeoidLattice(e Extent, und UndulationFunc) (*geoidLattice, error) {
	lon0 := math.Floor(e.MinX/geoidStep) * geoidStep
	lat0 := math.Floor(e.MinY/geoidStep) * geoidStep
	nx := max(int(math.Ceil((e.MaxX-lon0)/geoidStep))+1, 2)
	ny := max(int(math.Ceil((e.MaxY-lat0)/geoidStep))+1, 2)

	l := &geoidLattice{lon0: lon0, lat0: lat0, nx: nx, ny: ny, vals: make([]float64, nx*ny)}
	for j := 0; j < ny; j++ {
		lat := math.Max(-90, math.Min(90, lat0+float64(j)*geoidStep))
		for i := 0; i < nx; i++ {
			n, err := und(lat, lon0+float64(i)*geoidStep)
			if err != nil {
				return nil, fmt.Errorf("geoid at %.3f,%.3f: %w", lat, lon0+float64(i)*geoidStep, err)
			}
			l.vals[j*nx+i] = n
		}
	}
	return l, nil
}

func (l *geoidLattice) at(lat, lon float64) float64 {
	col := (lon - l.lon0) / geoidStep
	row := (lat - l.lat0) / geoidStep
	i := clamp(int(math.Floor(col)), 0, l.nx-2)
	j := clamp(int(math.Floor(row)), 0, l.ny-2)
	fx := col - float64(i)
	fy := row - float64(j)

	p00 := l.vals[j*l.nx+i]
	p10 := l.vals[j*l.nx+i+1]
	p01 := l.vals[(j+1)*l.nx+i]
	p11 := l.vals[(j+1)*l.nx+i+1]
	return bilinear(p00, p10, p01, p11, fx, fy)
}

// ToEllipsoid adds the geoid height to every valid sample of a geographic
// grid, turning EGM96 orthometric heights into WGS84 ellipsoidal heights.
func ToEllipsoid(g *grid.Grid, nodata float32, und UndulationFunc) error {
	if g.GeoTransform[2] != 0 || g.GeoTransform[4] != 0 {
		return fmt.Errorf("geoid: rotated grids are not supported")
	}
	corners := grid.CornersOf(g.GeoTransform, g.Width, g.Height)
	minX, minY, maxX, maxY := corners.Bounds()
	lattice, err := newGeoidLattice(Extent{minX, minY, maxX, maxY}, und)
	if err != nil {
		return err
	}

	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			v := g.At(col, row)
			if v == nodata || math.IsNaN(float64(v)) {
				continue
			}
			lon, lat := g.GeoTransform.Apply(float64(col)+0.5, float64(row)+0.5)
			g.Set(col, row, v+float32(lattice.at(lat, lon)))
		}
	}
	return nil
}

func bilinear(p00, p10, p01, p11 float64, fx, fy float64) float64 {
	// p00 = (row0,col0), p10 = (row0,col1), p01 = (row1,col0), p11 = (row1,col1)
	a := p00*(1-fx) + p10*fx
	b := p01*(1-fx) + p11*fx
	return a*(1-fy) + b*fy
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
