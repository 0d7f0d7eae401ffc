package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/youruser/deckprint/internal/offset"
)

func newOffsetCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "offset",
		Short: "Manage the printer's back page offset",
		Long: `The offset shifts every back page so it registers with its front when printed
duplex. Values are pixels at 300 PPI; positive x moves backs right, positive y
moves them down. Use "deckprint calibrate" to measure it.`,
	}
	cmd.PersistentFlags().StringVar(&file, "offset-file", "", "Offset settings file (default $DECKPRINT_OFFSET_FILE or the user config dir)")

	save := &cobra.Command{
		Use:     "save X Y",
		Short:   "Save the offset used by --load-offset",
		Example: "  deckprint offset save 12 4\n  deckprint offset save -- -6 3",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("x offset %q: %w", args[0], err)
			}
			y, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("y offset %q: %w", args[1], err)
			}
			store := offset.NewStore(file)
			if _, err := store.Save(x, y); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved offset %d,%d to %s\n", x, y, store.Path)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the saved offset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := offset.NewStore(file)
			st, err := store.Load()
			if err != nil {
				return err
			}
			if !st.Saved {
				fmt.Fprintf(cmd.OutOrStdout(), "no offset saved (%s)\n", store.Path)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "x=%d y=%d (%s)\n", st.X, st.Y, store.Path)
			return nil
		},
	}

	var in, out string
	var x, y int
	apply := &cobra.Command{
		Use:   "apply",
		Short: "Shift the back pages of an existing PDF",
		Long:  "Shift the back pages of an existing PDF by --x/--y, or by the saved offset when neither is given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var explicit *offset.Settings
			if cmd.Flags().Changed("x") || cmd.Flags().Changed("y") {
				explicit = &offset.Settings{X: x, Y: y}
			}
			st, err := offset.Resolve(explicit, true, offset.NewStore(file))
			if err != nil {
				return err
			}
			if out == "" {
				out = in
			}
			if err := offset.ApplyPDF(in, out, st); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s with back offset %d,%d\n", out, st.X, st.Y)
			return nil
		},
	}
	apply.Flags().StringVar(&in, "in", "", "PDF to shift")
	apply.Flags().StringVar(&out, "out", "", "Result file (default: replace --in)")
	apply.Flags().IntVar(&x, "x", 0, "x offset")
	apply.Flags().IntVar(&y, "y", 0, "y offset")
	_ = apply.MarkFlagRequired("in")

	cmd.AddCommand(save, show, apply)
	return cmd
}
