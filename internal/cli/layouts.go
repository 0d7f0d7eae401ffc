package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/youruser/deckprint/internal/config"
)

func newLayoutsCmd() *cobra.Command {
	var layouts string

	cmd := &cobra.Command{
		Use:   "layouts",
		Short: "List the supported paper and card sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			cfg.Layouts = layouts
			cat, err := cfg.Catalog()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PAPER\tCARD\tSLOTS\tGRID\tTEMPLATE")
			for _, l := range cat.Layouts() {
				fmt.Fprintf(w, "%s\t%s\t%d\t%dx%d\t%s\n", l.Paper, l.Card, l.Capacity(), l.Cols(), len(l.YAnchors), l.Template)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&layouts, "layouts", "", "YAML layout catalog replacing the built-in one")
	return cmd
}
