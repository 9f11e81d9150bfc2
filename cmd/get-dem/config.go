package main

import (
	"errors"
	"io/fs"

	"github.com/idixon/hyp3-lib/elevation"
	"github.com/idixon/hyp3-lib/internal/config"
	"github.com/idixon/hyp3-lib/internal/fetch"
	"github.com/idixon/hyp3-lib/internal/gdalio"
	"github.com/rs/zerolog/log"
)

// flag name -> config key
var bindings = map[string]string{
	"config-dir":  "dem.config_dir",
	"table":       "dem.source_table",
	"staging-dir": "dem.staging_dir",
	"work-dir":    "dem.work_dir",
}

// loadSourceTable reads the storage table and applies dem.sources
// overrides. A missing table is fine when overrides exist.
func loadSourceTable(cfg config.DEMConfig) (elevation.SourceTable, error) {
	path := cfg.SourceTablePath()
	table, err := elevation.LoadSourceTable(path)
	if errors.Is(err, fs.ErrNotExist) && len(cfg.Sources) > 0 {
		log.Warn().Str("table", path).Msg("source table not found, using configured sources only")
		table = elevation.SourceTable{}
	} else if err != nil {
		return nil, err
	}
	return table.Merge(cfg.Sources), nil
}

// newAssembler wires the GDAL toolkit, coverage loaders and tile store.
func newAssembler(cfg *config.Config) (*elevation.Assembler, error) {
	table, err := loadSourceTable(cfg.DEM)
	if err != nil {
		return nil, err
	}
	store, err := elevation.NewTileStore(elevation.StoreConfig{
		StagingDir: cfg.DEM.StagingDir,
		Table:      table,
		HTTP:       fetch.New(fetch.Options{Timeout: cfg.HTTP.Timeout, Retries: cfg.HTTP.Retries}),
	})
	if err != nil {
		return nil, err
	}
	return &elevation.Assembler{
		Raster: gdalio.Toolkit{},
		Coverage: elevation.CoverageChain{
			elevation.GeoJSONCoverage{Dir: cfg.DEM.ConfigDir},
			gdalio.ShapefileCoverage{Dir: cfg.DEM.ConfigDir},
		},
		Store:   store,
		WorkDir: cfg.DEM.WorkDir,
	}, nil
}
