package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/idixon/hyp3-lib/elevation"
	"github.com/idixon/hyp3-lib/internal/cli"
	"github.com/idixon/hyp3-lib/internal/config"
	"github.com/idixon/hyp3-lib/internal/gdalio"
	"github.com/idixon/hyp3-lib/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "get-dem lon_min lat_min lon_max lat_max outfile",
	Short: "Build a DEM covering a bounding box",
	Long: `Build a DEM GeoTIFF covering a geographic bounding box.

The best covering source (NED13, SRTMGL1, SRTMAU1, NED1, NED2, SRTMGL3) is
chosen from the coverage files in the config directory, its tiles are staged
into DEM/ and mosaicked, then resampled to the box.

Examples:
  get-dem -122.5 45.2 -121.5 45.8 dem.tif
  get-dem --utm --posting 30 -122.5 45.2 -121.5 45.8 dem_utm.tif
  get-dem --utm -179.4 51.1 179.2 51.9 aleutians.tif`,
	Args: cobra.ExactArgs(5),
	Run: func(cmd *cobra.Command, args []string) {
		var box [4]float64
		for i := range box {
			v, err := strconv.ParseFloat(args[i], 64)
			if err != nil {
				log.Fatal().Err(err).Str("arg", args[i]).Msg("bounding box values must be numbers")
			}
			box[i] = v
		}

		utm, _ := cmd.Flags().GetBool("utm")
		posting, _ := cmd.Flags().GetFloat64("posting")
		geoid, _ := cmd.Flags().GetBool("geoid")
		keepTemp, _ := cmd.Flags().GetBool("keep-temp")

		req := elevation.Request{
			Box:      elevation.BoundingBox{LonMin: box[0], LatMin: box[1], LonMax: box[2], LatMax: box[3]},
			Output:   args[4],
			UTM:      utm,
			Posting:  posting,
			Geoid:    geoid,
			KeepTemp: keepTemp,
		}
		// bounds are rejected before any file is read
		req, err := elevation.Validate(req)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid request")
		}

		cfg, err := config.Load(cmd.Flags(), bindings)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
		logging.Setup(cfg.Log.Level, cfg.Log.Format)
		gdalio.Register()

		asm, err := newAssembler(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to set up DEM assembler")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		res, err := asm.Assemble(ctx, req)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build DEM")
		}

		fmt.Printf("Output: %s\n", res.Output)
		fmt.Printf("Source: %s\n", res.Source)
		if !res.Antimeridian {
			fmt.Printf("Coverage: %.1f%%\n", res.Coverage*100)
			fmt.Printf("Tiles: %d\n", len(res.Tiles))
		}
		if res.EPSG != 0 {
			fmt.Printf("EPSG: %d\n", res.EPSG)
		}
	},
}

// Execute runs the root command and exits 1 on error.
func Execute() {
	rootCmd.SetArgs(cli.ReorderArgs(rootCmd.Flags(), os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	config.AddFlags(rootCmd.Flags())

	rootCmd.Flags().BoolP("utm", "u", false, "Create output in UTM projection")
	rootCmd.Flags().Float64P("posting", "p", 0, "Snap to grid at this posting in metres (UTM only)")
	rootCmd.Flags().Bool("geoid", false, "Convert EGM96 heights to WGS84 ellipsoid heights")
	rootCmd.Flags().Bool("keep-temp", true, "Keep temp.vrt, tempdem.tif and temputm.tif")

	rootCmd.Flags().String("config-dir", "./config", "Directory with coverage files and the source table")
	rootCmd.Flags().String("table", "", "Source table (default <config-dir>/get_dem.py.cfg)")
	rootCmd.Flags().String("staging-dir", "DEM", "Directory tiles are staged into")
	rootCmd.Flags().String("work-dir", ".", "Directory for intermediate files")
}
