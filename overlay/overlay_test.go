package overlay

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/idixon/hyp3-lib/internal/grid"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	info RasterInfo
	err  error
}

func (f fakeReader) Info(string) (RasterInfo, error) { return f.info, f.err }

var sample = RasterInfo{
	Width:        10,
	Height:       20,
	GeoTransform: grid.GeoTransform{10, 0.1, 0, 50, 0, -0.1},
}

func TestCoordinates(t *testing.T) {
	assert.Equal(t,
		"10.0000,48.0000 11.0000,48.0000 11.0000,50.0000 10.0000,50.0000",
		Coordinates(sample))

	west := RasterInfo{Width: 3, Height: 2, GeoTransform: grid.GeoTransform{-123.1, 0.5, 0, -10, 0, -0.25}}
	assert.Equal(t,
		"-123.1000,-10.5000 -121.6000,-10.5000 -121.6000,-10.0000 -123.1000,-10.0000",
		Coordinates(west))
}

func TestDocument(t *testing.T) {
	doc, err := Document("scene overlay", "scene.png", "1.0000,2.0000")
	require.NoError(t, err)
	s := string(doc)

	assert.True(t, strings.HasPrefix(s, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, s, `<kml xmlns="http://www.opengis.net/kml/2.2" xmlns:gx="http://www.google.com/kml/ext/2.2">`)
	assert.Contains(t, s, "<name>scene overlay</name>")
	assert.Contains(t, s, "<href>scene.png</href>")
	assert.Contains(t, s, "<viewBoundScale>0.75</viewBoundScale>")
	assert.Contains(t, s, "<gx:LatLonQuad>")
	assert.Contains(t, s, "<coordinates>1.0000,2.0000</coordinates>")
}

func writeInputs(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	tif := filepath.Join(dir, "scene.tif")
	png := filepath.Join(dir, "scene_rgb.png")
	require.NoError(t, os.WriteFile(tif, []byte("tif"), 0o644))
	require.NoError(t, os.WriteFile(png, []byte("png bytes"), 0o644))
	return tif, png
}

func TestBuild(t *testing.T) {
	tif, png := writeInputs(t)
	out := t.TempDir()

	res, err := Build(tif, png, out, fakeReader{info: sample})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "scene_rgb.kml"), res.KML)
	assert.Equal(t, filepath.Join(out, "scene_rgb.kmz"), res.KMZ)

	kml, err := os.ReadFile(res.KML)
	require.NoError(t, err)
	assert.Contains(t, string(kml), "<name>scene_rgb overlay</name>")
	assert.Contains(t, string(kml), res.Coordinates)

	zr, err := zip.OpenReader(res.KMZ)
	require.NoError(t, err)
	defer zr.Close()
	require.Len(t, zr.File, 2)
	assert.Equal(t, "scene_rgb.kml", zr.File[0].Name)
	assert.Equal(t, "scene_rgb.png", zr.File[1].Name)
	assert.Equal(t, zip.Deflate, zr.File[1].Method)

	rc, err := zr.File[1].Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))
}

func TestBuild_InputMissing(t *testing.T) {
	tif, png := writeInputs(t)
	reader := fakeReader{info: sample}

	_, err := Build(filepath.Join(t.TempDir(), "nope.tif"), png, t.TempDir(), reader)
	assert.ErrorIs(t, err, ErrInputMissing)
	assert.Contains(t, err.Error(), "GeoTIFF")

	_, err = Build(tif, filepath.Join(t.TempDir(), "nope.png"), t.TempDir(), reader)
	assert.ErrorIs(t, err, ErrInputMissing)
	assert.Contains(t, err.Error(), "image")
}

func TestBuild_ReaderError(t *testing.T) {
	tif, png := writeInputs(t)
	boom := errors.New("not a raster")
	_, err := Build(tif, png, t.TempDir(), fakeReader{err: boom})
	assert.ErrorIs(t, err, boom)
}
