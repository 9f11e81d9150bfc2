package elevation

import "math"

// UTMZone returns the zone number containing lon, clamped to 1..60.
func UTMZone(lon float64) int {
	zone := int(math.Floor((lon+180)/6 + 1))
	if zone < 1 {
		return 1
	}
	if zone > 60 {
		return 60
	}
	return zone
}

// UTMEPSG returns the WGS84 / UTM EPSG code for the box: the zone comes from
// the mean longitude, the hemisphere from the mean latitude.
func UTMEPSG(b BoundingBox) int {
	lon, lat := b.Center()
	zone := UTMZone(lon)
	if lat > 0 {
		return 32600 + zone
	}
	return 32700 + zone
}
