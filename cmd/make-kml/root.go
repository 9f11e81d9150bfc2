package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/idixon/hyp3-lib/internal/config"
	"github.com/idixon/hyp3-lib/internal/gdalio"
	"github.com/idixon/hyp3-lib/internal/logging"
	"github.com/idixon/hyp3-lib/overlay"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "make-kml geotiff image",
	Short: "Create a KML ground overlay from a GeoTIFF and an image",
	Long: `Create <image>.kml and <image>.kmz in the working directory.

The overlay drapes the image over the footprint of the GeoTIFF; the KMZ
bundles the KML with the image.

Example:
  make-kml S1A_rtc_VV.tif S1A_rtc_rgb.png`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(cmd.Flags(), nil)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
		logging.Setup(cfg.Log.Level, cfg.Log.Format)
		gdalio.Register()

		res, err := overlay.Build(args[0], args[1], "", gdalio.Toolkit{})
		if errors.Is(err, overlay.ErrInputMissing) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build overlay")
		}
		fmt.Println(res.KML)
		fmt.Println(res.KMZ)
	},
}

// Execute runs the root command and exits 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	config.AddFlags(rootCmd.Flags())
}
