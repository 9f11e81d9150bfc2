package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/idixon/hyp3-lib/colorize"
	"github.com/idixon/hyp3-lib/internal/cli"
	"github.com/idixon/hyp3-lib/internal/config"
	"github.com/idixon/hyp3-lib/internal/gdalio"
	"github.com/idixon/hyp3-lib/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rtc2color fullpol crosspol threshold geotiff",
	Short: "Convert a dual-pol RTC to a color GeoTIFF",
	Long: `Convert a dual-pol RTC pair to a three-band color GeoTIFF.

fullpol    full-pol RTC file (input)
crosspol   cross-pol RTC file (input)
threshold  threshold value in dB
geotiff    color GeoTIFF file (output)

Example:
  rtc2color -teal S1A_VV.tif S1A_VH.tif -24 S1A_rgb.tif`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			cmd.Usage()
			os.Exit(1)
		}
		if len(args) != 4 {
			log.Fatal().Msgf("expected 4 arguments, got %d", len(args))
		}
		threshold, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			log.Fatal().Err(err).Msg("threshold must be a number in dB")
		}

		cfg, err := config.Load(cmd.Flags(), nil)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
		logging.Setup(cfg.Log.Level, cfg.Log.Format)
		gdalio.Register()

		p := colorize.Params{Threshold: threshold}
		p.Cleanup, _ = cmd.Flags().GetBool("cleanup")
		p.Teal, _ = cmd.Flags().GetBool("teal")
		p.Amp, _ = cmd.Flags().GetBool("amp")
		p.Float, _ = cmd.Flags().GetBool("float")

		if err := colorize.Run(args[0], args[1], args[3], p, gdalio.Toolkit{}); err != nil {
			log.Fatal().Err(err).Msg("failed to create color GeoTIFF")
		}
		fmt.Println(args[3])
	},
}

// Execute runs the root command and exits 1 on error.
func Execute() {
	// -cleanup, -teal, -amp and -float keep their historical single dash
	rootCmd.SetArgs(cli.ReorderArgs(rootCmd.Flags(), os.Args[1:], "cleanup", "teal", "amp", "float"))
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	config.AddFlags(rootCmd.Flags())

	rootCmd.Flags().Bool("cleanup", false, "Clean up artifacts in powerscale images")
	rootCmd.Flags().Bool("teal", false, "Extend the blue band with teal")
	rootCmd.Flags().Bool("amp", false, "Input is amplitude, not powerscale")
	rootCmd.Flags().Bool("float", false, "Save as floating point")
}
