package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/youruser/deckprint/internal/config"
	"github.com/youruser/deckprint/internal/offset"
)

func newCalibrateCmd() *cobra.Command {
	var paper, output, layouts string

	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Write a two page sheet for measuring the printer offset",
		Long: `Print the sheet duplex and hold it to a light. The front crosshair falls on the
back rulers at the offset to save with "deckprint offset save X Y".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			cfg.Layouts = layouts
			cat, err := cfg.Catalog()
			if err != nil {
				return err
			}
			size, err := cat.PaperSize(paper)
			if err != nil {
				return err
			}
			if err := offset.CalibrationSheet(size, output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&paper, "paper-size", "p", "letter", "Paper size")
	cmd.Flags().StringVarP(&output, "output", "o", "calibration.pdf", "PDF to write")
	cmd.Flags().StringVar(&layouts, "layouts", "", "YAML layout catalog replacing the built-in one")
	return cmd
}
