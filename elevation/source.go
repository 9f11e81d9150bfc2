package elevation

import (
	"fmt"
	"strings"
)

// Source identifies an elevation dataset.
type Source int

const (
	NED13 Source = iota + 1
	SRTMGL1
	SRTMAU1
	NED1
	NED2
	SRTMGL3
	// SRTMUS1 is only used as an antimeridian substitute.
	SRTMUS1
)

const arcSecond = 0.00027777777778

type sourceParam struct {
	name     string
	geoPixel float64 // degrees
	utmPixel float64 // metres
}

var sourceParams = map[Source]sourceParam{
	NED13:   {"NED13", arcSecond, 30},
	SRTMGL1: {"SRTMGL1", arcSecond, 30},
	SRTMAU1: {"SRTMAU1", arcSecond, 30},
	NED1:    {"NED1", arcSecond, 30},
	NED2:    {"NED2", 2 * arcSecond, 60},
	SRTMGL3: {"SRTMGL3", 3 * arcSecond, 90},
	SRTMUS1: {"SRTMUS1", arcSecond, 30},
}

// SourcePriority is the scan order used when scoring coverage. Earlier
// sources win ties.
var SourcePriority = []Source{NED13, SRTMGL1, SRTMAU1, NED1, NED2, SRTMGL3}

func (s Source) String() string {
	if sp, ok := sourceParams[s]; ok {
		return sp.name
	}
	return fmt.Sprintf("Source(%d)", int(s))
}

// GeoPixel is the native pixel size in degrees used for the geographic
// mosaic.
func (s Source) GeoPixel() float64 { return sourceParams[s].geoPixel }

// UTMPixel is the ground pixel size in metres used for UTM output.
func (s Source) UTMPixel() float64 { return sourceParams[s].utmPixel }

// CoverageName is the base name of the source's footprint files.
func (s Source) CoverageName() string {
	return strings.ToLower(s.String()) + "_coverage"
}

func ParseSource(name string) (Source, error) {
	for src, sp := range sourceParams {
		if strings.EqualFold(sp.name, name) {
			return src, nil
		}
	}
	return 0, fmt.Errorf("unknown DEM source %q", name)
}
