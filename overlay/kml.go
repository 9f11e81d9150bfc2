package overlay

import (
	"encoding/xml"
)

const (
	kmlNS = "http://www.opengis.net/kml/2.2"
	gxNS  = "http://www.google.com/kml/ext/2.2"
)

type kmlDoc struct {
	XMLName xml.Name      `xml:"kml"`
	NS      string        `xml:"xmlns,attr"`
	GX      string        `xml:"xmlns:gx,attr"`
	Overlay groundOverlay `xml:"GroundOverlay"`
}

type groundOverlay struct {
	Name string     `xml:"name"`
	Icon icon       `xml:"Icon"`
	Quad latLonQuad `xml:"gx:LatLonQuad"`
}

type icon struct {
	Href           string `xml:"href"`
	ViewBoundScale string `xml:"viewBoundScale"`
}

type latLonQuad struct {
	Coordinates string `xml:"coordinates"`
}

// Document renders a single GroundOverlay KML document.
func Document(name, href, coordinates string) ([]byte, error) {
	doc := kmlDoc{
		NS: kmlNS,
		GX: gxNS,
		Overlay: groundOverlay{
			Name: name,
			Icon: icon{Href: href, ViewBoundScale: "0.75"},
			Quad: latLonQuad{Coordinates: coordinates},
		},
	}
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	out := append([]byte(xml.Header), body...)
	return append(out, '\n'), nil
}
