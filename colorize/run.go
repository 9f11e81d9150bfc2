package colorize

import (
	"fmt"
	"os"

	"github.com/idixon/hyp3-lib/internal/grid"
	"github.com/rs/zerolog/log"
)

// RasterIO reads single bands and writes composites; gdalio implements it.
type RasterIO interface {
	ReadBand(path string) (*grid.Grid, error)
	WriteComposite(path string, c *Composite, asFloat bool) error
}

// Run reads the pair, composes it and writes a three-band LZW GeoTIFF.
func Run(fullpol, crosspol, output string, p Params, rio RasterIO) error {
	for _, path := range []string{fullpol, crosspol} {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%s: %w", path, ErrInputMissing)
		}
	}

	log.Info().Str("file", fullpol).Msg("reading full-pol image")
	full, err := rio.ReadBand(fullpol)
	if err != nil {
		return err
	}
	log.Info().Str("file", crosspol).Msg("reading cross-pol image")
	cross, err := rio.ReadBand(crosspol)
	if err != nil {
		return err
	}

	log.Info().Msg("calculating color decomposition components")
	c, err := Compose(full, cross, p)
	if err != nil {
		return err
	}
	for name, band := range map[string][]float64{"red": c.Red, "green": c.Green, "blue": c.Blue} {
		lo, hi, mean := Stats(band)
		log.Debug().Str("band", name).Float64("min", lo).Float64("max", hi).Float64("mean", mean).Msg("band stats")
	}

	log.Info().Str("file", output).Bool("float", p.Float).Msg("writing color GeoTIFF")
	return rio.WriteComposite(output, c, p.Float)
}
