package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	match "github.com/cyber-nic/go-gcp-asset-pub/apps/match-logos"
	promocover "github.com/cyber-nic/go-gcp-asset-pub/apps/promo-cover"
	gallery "github.com/cyber-nic/go-gcp-asset-pub/apps/winner-gallery"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/utils"
)

// NewPromoCoverCommand creates the promo-cover command
func NewPromoCoverCommand() *cobra.Command {
	var cfg promocover.Config
	var title, subtitle string

	cmd := &cobra.Command{
		Use:   "promo-cover <image>",
		Short: "Publish the promo card cover",
		Long: `Publish an image as the cover of a promo card document.

Title and subtitle are only written when their flag is given; an empty value
clears the field. Otherwise the values curated in the admin panel are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, appCfg, l, err := setup(cmd)
			if err != nil {
				return err
			}
			defer closeRuntime(rt, l)

			cfg.Source = args[0]
			cfg.OutputDir = appCfg.OutputDir
			cfg.Quality = appCfg.Quality
			if cmd.Flags().Changed("title") {
				cfg.Title = &title
			}
			if cmd.Flags().Changed("subtitle") {
				cfg.Subtitle = &subtitle
			}

			res, err := promocover.Run(cmd.Context(), rt.Pipeline, cfg)
			if err != nil {
				return err
			}
			utils.PrintStruct(os.Stdout, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.DocID, "doc-id", promocover.DefaultDocID, "promoCards document id")
	cmd.Flags().IntVar(&cfg.MaxWidth, "max-width", promocover.MaxWidth, "maximum output width")
	cmd.Flags().StringVar(&title, "title", "", "card title")
	cmd.Flags().StringVar(&subtitle, "subtitle", "", "card subtitle")

	return cmd
}

// NewWinnersCommand creates the winners command
func NewWinnersCommand() *cobra.Command {
	var cfg gallery.Config

	cmd := &cobra.Command{
		Use:   "winners [dir]",
		Short: "Publish every image of a directory to the winner gallery",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, appCfg, l, err := setup(cmd)
			if err != nil {
				return err
			}
			defer closeRuntime(rt, l)

			cfg.SourceDir = defaultSourceDir
			if len(args) == 1 {
				cfg.SourceDir = args[0]
			}
			cfg.OutputDir = appCfg.OutputDir
			cfg.Quality = appCfg.Quality

			report, err := gallery.Run(cmd.Context(), rt.Pipeline, cfg)
			if report != nil {
				utils.PrintStruct(os.Stdout, report)
			}
			if err != nil {
				return err
			}
			if err := report.Err(); err != nil {
				return fmt.Errorf("%d of %d images failed", len(report.Failed), len(report.Failed)+len(report.Published))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&cfg.MaxDimension, "max-dimension", gallery.MaxDimension, "maximum output width or height")
	cmd.Flags().BoolVar(&cfg.StopOnError, "stop-on-error", false, "abort on the first failed image")

	return cmd
}

// NewMatchCommand creates the match command
func NewMatchCommand() *cobra.Command {
	var cfg match.Config
	var start string

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Publish the team logos of a match and upsert the match document",
		Example: `  assetpub match --competition Classico --start 2025-10-25T16:15:00+02:00 \
    --team-a "Real Madrid" --logo-a real-madrid.png \
    --team-b Barca --logo-b barca.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := time.Parse(time.RFC3339, start)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			cfg.StartTime = t

			rt, appCfg, l, err := setup(cmd)
			if err != nil {
				return err
			}
			defer closeRuntime(rt, l)

			cfg.OutputDir = appCfg.OutputDir
			cfg.Quality = appCfg.Quality

			res, err := match.Run(cmd.Context(), rt.Pipeline, cfg)
			if err != nil {
				return err
			}
			utils.PrintStruct(os.Stdout, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.MatchID, "id", "", "matches document id (default <competition>-<start date>)")
	cmd.Flags().StringVar(&cfg.Competition, "competition", "", "competition name")
	cmd.Flags().StringVar(&start, "start", "", "kick-off time, RFC 3339")
	cmd.Flags().StringVar(&cfg.TeamA.Name, "team-a", "", "home team")
	cmd.Flags().StringVar(&cfg.TeamA.Logo, "logo-a", "", "home team logo")
	cmd.Flags().StringVar(&cfg.TeamB.Name, "team-b", "", "away team")
	cmd.Flags().StringVar(&cfg.TeamB.Logo, "logo-b", "", "away team logo")
	cmd.Flags().IntVar(&cfg.MaxDimension, "max-dimension", match.MaxDimension, "maximum logo width or height")
	for _, f := range []string{"competition", "start", "team-a", "team-b", "logo-a", "logo-b"} {
		_ = cmd.MarkFlagRequired(f)
	}

	return cmd
}
