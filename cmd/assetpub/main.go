// Package main is the assetpub command line. It runs the publishing jobs
// against Cloud Storage and Firestore, or in memory with --dry-run.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cyber-nic/go-gcp-asset-pub/libs/config"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/gcp"
	"github.com/cyber-nic/go-gcp-asset-pub/libs/logging"
)

const defaultSourceDir = "images_a_televerser"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// NewRootCommand creates the root command and its subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "assetpub",
		Short: "Publish images to Cloud Storage and their metadata to Firestore",
		Long: `assetpub normalizes local images to WebP, uploads them behind a
Firebase download token and upserts the Firestore documents pointing at them.

Settings are read from the environment, .env and .env.local.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("debug", false, "debug logging (env DEBUG)")
	rootCmd.PersistentFlags().Bool("dry-run", false, "use in-memory stores, nothing leaves the machine (env DRY_RUN)")
	rootCmd.PersistentFlags().String("out", config.DefaultOutputDir, "directory receiving the normalized files (env OUTPUT_DIR)")

	rootCmd.AddCommand(NewPromoCoverCommand())
	rootCmd.AddCommand(NewWinnersCommand())
	rootCmd.AddCommand(NewMatchCommand())

	return rootCmd
}

// setup loads the configuration, applies the persistent flags that were set
// explicitly and builds the runtime.
func setup(cmd *cobra.Command) (*gcp.Runtime, config.AppConfig, zerolog.Logger, error) {
	flags := cmd.Flags()
	cfg, err := config.Load(func(c *config.AppConfig) {
		if flags.Changed("debug") {
			c.Debug, _ = flags.GetBool("debug")
		}
		if flags.Changed("dry-run") {
			c.DryRun, _ = flags.GetBool("dry-run")
		}
		if flags.Changed("out") {
			c.OutputDir, _ = flags.GetString("out")
		}
	})

	l := logging.New(cfg.Debug)
	logging.SetGlobal(l)
	if err != nil {
		return nil, cfg, l, err
	}

	rt, err := gcp.NewRuntime(cmd.Context(), cfg, l)
	if err != nil {
		return nil, cfg, l, err
	}
	return rt, cfg, l, nil
}

func closeRuntime(rt *gcp.Runtime, l zerolog.Logger) {
	if err := rt.Close(); err != nil {
		l.Warn().Err(err).Msg("failed to close clients")
	}
}
