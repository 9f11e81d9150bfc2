// Package orbit locates and downloads Sentinel-1 orbit state-vector files
// from the ASF and ESA archives.
package orbit

import (
	"path/filepath"
	"strings"
	"time"
)

// timeLayout is the compact UTC stamp used in product and orbit names.
const timeLayout = "20060102T150405"

// Product is the part of a SAR product id the orbit search needs.
type Product struct {
	ID       string
	Platform string // S1A, S1B, ...
	Start    time.Time
}

func splitName(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool { return r == '_' })
}

// ParseProduct reads the platform and acquisition start from an id such as
// S1A_IW_GRDH_1SDV_20170101T003012_20170101T003037_014620_017C29_5D3A.
// Runs of underscores count as one separator and a leading directory is
// ignored.
func ParseProduct(id string) (Product, error) {
	base := filepath.Base(strings.TrimSpace(id))
	if len(base) < 3 {
		return Product{}, parseErr("product", id, "too short")
	}
	fields := splitName(base)
	if len(fields) < 5 {
		return Product{}, parseErr("product", id, "missing start time")
	}
	start, err := time.Parse(timeLayout, fields[4])
	if err != nil {
		return Product{}, parseErr("product", id, err.Error())
	}
	return Product{ID: base, Platform: base[:3], Start: start}, nil
}
