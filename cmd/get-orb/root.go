package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/idixon/hyp3-lib/internal/config"
	"github.com/idixon/hyp3-lib/internal/fetch"
	"github.com/idixon/hyp3-lib/internal/logging"
	"github.com/idixon/hyp3-lib/orbit"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "get-orb [flags] product...",
	Short: "Get Sentinel-1 orbit files from the ASF or ESA archives",
	Long: `Find and download the orbit state-vector file for each Sentinel-1 product.

Precise orbits are preferred; restituted orbits are used when no precise
file covers the acquisition. The file whose validity window is most centred
on the acquisition start is chosen.

Examples:
  get-orb S1A_IW_GRDH_1SDV_20170101T003012_20170101T003037_014620_017C29_5D3A
  get-orb --provider ESA --dir orbits S1B_IW_SLC__1SDV_20180512T101010_20180512T101037_010000_012345_ABCD`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			cmd.Usage()
			os.Exit(1)
		}

		cfg, err := config.Load(cmd.Flags(), map[string]string{
			"provider": "orbit.provider",
			"dir":      "orbit.dir",
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
		logging.Setup(cfg.Log.Level, cfg.Log.Format)

		client := fetch.New(fetch.Options{
			Timeout:            cfg.HTTP.Timeout,
			Retries:            cfg.HTTP.Retries,
			InsecureSkipVerify: !cfg.Orbit.VerifyTLS(),
		})
		provider, err := orbit.NewProvider(cfg.Orbit.Provider, orbit.Endpoints{
			ASFPrecise:    cfg.Orbit.ASFURL,
			ASFRestituted: cfg.Orbit.ASFRestitutedURL,
			ESAPrecise:    cfg.Orbit.ESAURL,
			ESARestituted: cfg.Orbit.ESARestitutedURL,
			ESAPages:      cfg.Orbit.ESAPages,
		}, client)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid provider")
		}
		if err := os.MkdirAll(cfg.Orbit.Dir, 0o755); err != nil {
			log.Fatal().Err(err).Msg("failed to create output directory")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		for _, id := range args {
			fmt.Println("Getting: " + id)
			m, path, err := orbit.Fetch(ctx, provider, client, id, cfg.Orbit.Dir)
			if err != nil {
				log.Fatal().Err(err).Str("product", id).Msg("failed to get orbit file")
			}
			fmt.Println(m.URL)
			fmt.Println(path)
		}
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

	rootCmd.Flags().String("provider", "ASF", "Orbit archive: ASF or ESA")
	rootCmd.Flags().String("dir", ".", "Directory to download orbit files into")
}
