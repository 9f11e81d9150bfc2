package elevation

import (
	"fmt"
	"math"
)

// TileName is a 1x1 degree SRTM-style tile, named after its south-west
// corner.
type TileName struct {
	LatDeg int // absolute degrees
	LonDeg int
	NS     byte
	EW     byte
}

func TileNameFor(lat, lon float64) TileName {
	baseLat := int(math.Floor(lat))
	baseLon := int(math.Floor(lon))

	name := TileName{NS: 'N', EW: 'E', LatDeg: baseLat, LonDeg: baseLon}
	if baseLat < 0 {
		name.NS = 'S'
		name.LatDeg = -baseLat
	}
	if baseLon < 0 {
		name.EW = 'W'
		name.LonDeg = -baseLon
	}
	return name
}

// FileStem is e.g. N37E055 or S04W070.
func (t TileName) FileStem() string {
	return fmt.Sprintf("%c%02d%c%03d", t.NS, t.LatDeg, t.EW, t.LonDeg)
}
