// Package grid holds the in-memory raster representation shared by the
// pipelines: a single band of float32 samples plus its georeferencing.
package grid

import (
	"fmt"
	"math"
)

// GeoTransform is the GDAL affine transform:
// x = GT[0] + col*GT[1] + row*GT[2], y = GT[3] + col*GT[4] + row*GT[5].
type GeoTransform [6]float64

// Apply maps a pixel/line position to georeferenced coordinates.
func (gt GeoTransform) Apply(col, row float64) (x, y float64) {
	x = gt[0] + col*gt[1] + row*gt[2]
	y = gt[3] + col*gt[4] + row*gt[5]
	return
}

// Grid is a row-major single band raster.
type Grid struct {
	Width        int
	Height       int
	Data         []float32
	GeoTransform GeoTransform
	Projection   string // WKT
}

// New allocates a zeroed grid.
func New(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		Data:   make([]float32, width*height),
	}
}

func (g *Grid) At(col, row int) float32 {
	return g.Data[row*g.Width+col]
}

func (g *Grid) Set(col, row int, v float32) {
	g.Data[row*g.Width+col] = v
}

// Crop returns the upper-left width x height window of g. The window must
// fit inside g; georeferencing is kept since the origin does not move.
func (g *Grid) Crop(width, height int) (*Grid, error) {
	if width > g.Width || height > g.Height || width < 0 || height < 0 {
		return nil, fmt.Errorf("grid: crop %dx%d outside %dx%d", width, height, g.Width, g.Height)
	}
	if width == g.Width && height == g.Height {
		return g, nil
	}
	out := New(width, height)
	for row := 0; row < height; row++ {
		copy(out.Data[row*width:(row+1)*width], g.Data[row*g.Width:row*g.Width+width])
	}
	out.GeoTransform = g.GeoTransform
	out.Projection = g.Projection
	return out, nil
}

// Corners are the four georeferenced corners of a raster, counter-clockwise
// from lower-left.
type Corners struct {
	LowerLeft  [2]float64
	LowerRight [2]float64
	UpperRight [2]float64
	UpperLeft  [2]float64
}

// CornersOf computes the corners of a width x height raster from a north-up
// geotransform. Rotation terms are ignored, as for GroundOverlay quads.
func CornersOf(gt GeoTransform, width, height int) Corners {
	x0, y0 := gt[0], gt[3]
	x1 := x0 + float64(width)*gt[1]
	y1 := y0 + float64(height)*gt[5]
	return Corners{
		LowerLeft:  [2]float64{x0, y1},
		LowerRight: [2]float64{x1, y1},
		UpperRight: [2]float64{x1, y0},
		UpperLeft:  [2]float64{x0, y0},
	}
}

// Bounds returns min x, min y, max x, max y of the corners.
func (c Corners) Bounds() (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range [][2]float64{c.LowerLeft, c.LowerRight, c.UpperRight, c.UpperLeft} {
		minX = math.Min(minX, p[0])
		maxX = math.Max(maxX, p[0])
		minY = math.Min(minY, p[1])
		maxY = math.Max(maxY, p[1])
	}
	return
}
