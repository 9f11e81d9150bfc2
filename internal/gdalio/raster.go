// Package gdalio adapts GDAL, through godal, to the raster interfaces of the
// elevation, overlay and colorize packages. It is the only package that
// needs cgo.
package gdalio

import (
	"fmt"
	"strconv"

	"github.com/airbusgeo/godal"
	"github.com/idixon/hyp3-lib/colorize"
	"github.com/idixon/hyp3-lib/elevation"
	"github.com/idixon/hyp3-lib/internal/grid"
	"github.com/idixon/hyp3-lib/overlay"
)

// Toolkit implements elevation.Raster, overlay.ExtentReader and
// colorize.RasterIO on top of GDAL.
type Toolkit struct{}

var (
	_ elevation.Raster     = Toolkit{}
	_ overlay.ExtentReader = Toolkit{}
	_ colorize.RasterIO    = Toolkit{}
)

// Register loads every GDAL driver. Call once from main.
func Register() {
	godal.RegisterAll()
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// warpSwitches translates options into gdalwarp arguments.
func warpSwitches(opts elevation.WarpOptions) []string {
	sw := []string{"-of", "GTiff", "-overwrite"}
	if opts.DstSRS != "" {
		sw = append(sw, "-t_srs", opts.DstSRS)
	}
	if opts.XRes > 0 && opts.YRes > 0 {
		sw = append(sw, "-tr", ftoa(opts.XRes), ftoa(opts.YRes))
	}
	if b := opts.Bounds; b != nil {
		sw = append(sw, "-te", ftoa(b.MinX), ftoa(b.MinY), ftoa(b.MaxX), ftoa(b.MaxY))
	}
	if opts.Resample != "" {
		sw = append(sw, "-r", opts.Resample)
	}
	sw = append(sw, "-dstnodata", ftoa(opts.NoData))
	return sw
}

func (Toolkit) BuildVRT(dst string, sources []string) error {
	ds, err := godal.BuildVRT(dst, sources, nil)
	if err != nil {
		return fmt.Errorf("gdalbuildvrt %s: %w", dst, err)
	}
	return ds.Close()
}

func (Toolkit) Warp(dst, src string, opts elevation.WarpOptions) error {
	in, err := godal.Open(src, godal.RasterOnly())
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := in.Warp(dst, warpSwitches(opts))
	if err != nil {
		return fmt.Errorf("gdalwarp %s: %w", dst, err)
	}
	return out.Close()
}

func (Toolkit) Bounds(path string) (elevation.Extent, error) {
	ds, err := godal.Open(path, godal.RasterOnly())
	if err != nil {
		return elevation.Extent{}, err
	}
	defer ds.Close()
	b, err := ds.Bounds()
	if err != nil {
		return elevation.Extent{}, err
	}
	return elevation.Extent{MinX: b[0], MinY: b[1], MaxX: b[2], MaxY: b[3]}, nil
}

// ProjectToUTM transforms WGS84 lon/lat pairs to the given UTM zone.
func (Toolkit) ProjectToUTM(zone int, south bool, lon, lat []float64) ([]float64, []float64, error) {
	src, err := godal.NewSpatialRefFromProj4("+proj=longlat +datum=WGS84 +no_defs")
	if err != nil {
		return nil, nil, err
	}
	defer src.Close()
	proj := fmt.Sprintf("+proj=utm +zone=%d +datum=WGS84 +units=m +no_defs", zone)
	if south {
		proj += " +south"
	}
	dst, err := godal.NewSpatialRefFromProj4(proj)
	if err != nil {
		return nil, nil, err
	}
	defer dst.Close()

	trn, err := godal.NewTransform(src, dst)
	if err != nil {
		return nil, nil, err
	}
	defer trn.Close()

	x := append([]float64(nil), lon...)
	y := append([]float64(nil), lat...)
	if err := trn.TransformEx(x, y, nil, nil); err != nil {
		return nil, nil, fmt.Errorf("transform to %s: %w", proj, err)
	}
	return x, y, nil
}

func readBand(ds *godal.Dataset) (*grid.Grid, error) {
	st := ds.Structure()
	bands := ds.Bands()
	if len(bands) == 0 {
		return nil, fmt.Errorf("dataset has no raster bands")
	}
	g := grid.New(st.SizeX, st.SizeY)
	if err := bands[0].Read(0, 0, g.Data, st.SizeX, st.SizeY); err != nil {
		return nil, err
	}
	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, err
	}
	g.GeoTransform = gt
	g.Projection = ds.Projection()
	return g, nil
}

// ReadGrid reads band 1 as float32 with its georeferencing.
func (Toolkit) ReadGrid(path string) (*grid.Grid, error) {
	ds, err := godal.Open(path, godal.RasterOnly())
	if err != nil {
		return nil, err
	}
	defer ds.Close()
	return readBand(ds)
}

// UpdateGrid overwrites band 1 of an existing raster in place.
func (Toolkit) UpdateGrid(path string, g *grid.Grid) error {
	ds, err := godal.Open(path, godal.RasterOnly(), godal.Update())
	if err != nil {
		return err
	}
	bands := ds.Bands()
	if len(bands) == 0 {
		ds.Close()
		return fmt.Errorf("%s has no raster bands", path)
	}
	if err := bands[0].Write(0, 0, g.Data, g.Width, g.Height); err != nil {
		ds.Close()
		return err
	}
	return ds.Close()
}

// ReadBand satisfies colorize.RasterIO.
func (t Toolkit) ReadBand(path string) (*grid.Grid, error) {
	return t.ReadGrid(path)
}

// Info satisfies overlay.ExtentReader.
func (Toolkit) Info(path string) (overlay.RasterInfo, error) {
	ds, err := godal.Open(path, godal.RasterOnly())
	if err != nil {
		return overlay.RasterInfo{}, err
	}
	defer ds.Close()
	gt, err := ds.GeoTransform()
	if err != nil {
		return overlay.RasterInfo{}, err
	}
	st := ds.Structure()
	return overlay.RasterInfo{Width: st.SizeX, Height: st.SizeY, GeoTransform: gt}, nil
}

// WriteComposite writes a three-band LZW GeoTIFF, Float32 or Byte.
func (Toolkit) WriteComposite(path string, c *colorize.Composite, asFloat bool) error {
	dtype := godal.Byte
	if asFloat {
		dtype = godal.Float32
	}
	ds, err := godal.Create(godal.GTiff, path, 3, dtype, c.Width, c.Height, godal.CreationOption("COMPRESS=LZW"))
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := writeComposite(ds, c, asFloat); err != nil {
		ds.Close()
		return err
	}
	return ds.Close()
}

func writeComposite(ds *godal.Dataset, c *colorize.Composite, asFloat bool) error {
	if err := ds.SetGeoTransform(c.GeoTransform); err != nil {
		return err
	}
	if c.Projection != "" {
		if err := ds.SetProjection(c.Projection); err != nil {
			return err
		}
	}
	bands := ds.Bands()
	if asFloat {
		for i, data := range c.Float32() {
			if err := bands[i].Write(0, 0, data, c.Width, c.Height); err != nil {
				return err
			}
		}
		return nil
	}
	for i, data := range c.Bytes() {
		if err := bands[i].Write(0, 0, data, c.Width, c.Height); err != nil {
			return err
		}
	}
	return nil
}
