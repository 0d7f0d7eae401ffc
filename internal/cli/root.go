// Package cli holds the deckprint cobra commands.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "deckprint",
		Short: "Lay out card images on printable sheets for a cutting machine",
		Long: `deckprint places per-card images into the fixed slots of a paper/card layout
and writes a print-ready PDF, or one image per page, with fronts and backs in
duplex order and registration marks for the cutter.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log debug output")

	cmd.AddCommand(
		newGenerateCmd(),
		newOffsetCmd(),
		newCalibrateCmd(),
		newLayoutsCmd(),
		newServeCmd(),
	)
	return cmd
}
