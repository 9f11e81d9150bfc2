// Package overlay writes KML ground overlays that drape a rendered image
// over the footprint of a georeferenced raster, and packs them as KMZ.
package overlay

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/idixon/hyp3-lib/internal/grid"
	"github.com/rs/zerolog/log"
)

// ErrInputMissing is returned before any processing when an input file
// does not exist.
var ErrInputMissing = errors.New("input file does not exist")

// RasterInfo is the raster header the overlay needs.
type RasterInfo struct {
	Width, Height int
	GeoTransform  grid.GeoTransform
}

// ExtentReader reads raster headers.
type ExtentReader interface {
	Info(path string) (RasterInfo, error)
}

type Result struct {
	KML         string
	KMZ         string
	Coordinates string
}

// Coordinates formats the raster corners as a gx:LatLonQuad coordinate
// list: lower-left, lower-right, upper-right, upper-left.
func Coordinates(info RasterInfo) string {
	c := grid.CornersOf(info.GeoTransform, info.Width, info.Height)
	pts := [][2]float64{c.LowerLeft, c.LowerRight, c.UpperRight, c.UpperLeft}
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = fmt.Sprintf("%.4f,%.4f", p[0], p[1])
	}
	return strings.Join(parts, " ")
}

func checkExists(kind, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%s file (%s): %w", kind, path, ErrInputMissing)
	}
	return nil
}

// Build writes <image-base>.kml and <image-base>.kmz into outDir ("" for
// the working directory).
func Build(rasterPath, imagePath, outDir string, r ExtentReader) (Result, error) {
	if err := checkExists("GeoTIFF", rasterPath); err != nil {
		return Result{}, err
	}
	if err := checkExists("image", imagePath); err != nil {
		return Result{}, err
	}

	info, err := r.Info(rasterPath)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", rasterPath, err)
	}

	image := filepath.Base(imagePath)
	base := strings.TrimSuffix(image, filepath.Ext(image))
	res := Result{
		KML:         filepath.Join(outDir, base+".kml"),
		KMZ:         filepath.Join(outDir, base+".kmz"),
		Coordinates: Coordinates(info),
	}

	doc, err := Document(base+" overlay", image, res.Coordinates)
	if err != nil {
		return res, err
	}
	if err := os.WriteFile(res.KML, doc, 0o644); err != nil {
		return res, err
	}
	log.Info().Str("kml", res.KML).Str("coordinates", res.Coordinates).Msg("wrote overlay")

	if err := WriteKMZ(res.KMZ, map[string]string{
		base + ".kml": res.KML,
		image:         imagePath,
	}); err != nil {
		return res, fmt.Errorf("write %s: %w", res.KMZ, err)
	}
	log.Info().Str("kmz", res.KMZ).Msg("wrote archive")
	return res, nil
}
