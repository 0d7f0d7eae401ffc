package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/youruser/deckprint/internal/config"
	"github.com/youruser/deckprint/internal/deck"
	imagepkg "github.com/youruser/deckprint/internal/image"
	"github.com/youruser/deckprint/internal/pipeline"
	"github.com/youruser/deckprint/internal/sheet"
)

// generateFlags mirrors config.Config; only flags the user set override the
// config file.
type generateFlags struct {
	cfg        config.Config
	configPath string
	crop       string
	pad        string
	offsetX    int
	offsetY    int
}

func newGenerateCmd() *cobra.Command {
	f := &generateFlags{cfg: config.Default()}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Lay out the card images and write the print file",
		Example: `  # 9 poker cards per letter sheet, shared back, PDF
  deckprint generate --front-dir game/front --back-dir game/back

  # A4, trim 3mm bleed, load the saved printer offset
  deckprint generate --paper-size a4 --crop 3mm --load-offset

  # one PNG per page, leave slot 0 empty
  deckprint generate --format png --output out/pages --skip 0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			sum, err := pipeline.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), deck.ExportSummaryText(*sum))
			return nil
		},
	}

	fl := cmd.Flags()
	c := &f.cfg
	fl.StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	fl.StringVar(&c.FrontDir, "front-dir", c.FrontDir, "Directory of front images")
	fl.StringVar(&c.BackDir, "back-dir", c.BackDir, "Directory holding the shared back image")
	fl.StringVar(&c.DoubleSidedDir, "double-sided-dir", c.DoubleSidedDir, "Directory of backs paired to fronts by file name")
	fl.StringVar(&c.Filler, "filler", "", "Image for padding slots (blank when empty)")
	fl.StringVarP(&c.Output, "output", "o", c.Output, "PDF file, or directory for page images")
	fl.StringVarP(&c.Format, "format", "f", c.Format, "Output format: pdf, png or jpg")
	fl.StringVar(&c.Summary, "summary", "", "Write a YAML run summary to this file")
	fl.StringVarP(&c.Paper, "paper-size", "p", c.Paper, "Paper size")
	fl.StringVarP(&c.Card, "card-size", "s", c.Card, "Card size")
	fl.StringVar(&f.crop, "crop", "", "Trim each front edge: 3mm, 0.1in, 12px or a bare mm value")
	fl.IntVar(&c.ExtendCorners, "extend-corners", 0, "Fill rounded corners by replicating edges this many source pixels")
	fl.IntVar(&c.PPI, "ppi", c.PPI, "Output resolution")
	fl.IntVar(&c.Quality, "quality", c.Quality, "JPEG quality of PDF pages and jpg output")
	fl.IntSliceVar(&c.Skip, "skip", nil, "Slot index to leave empty on every sheet (repeatable)")
	fl.StringVar(&f.pad, "pad", string(sheet.PadFill), "When fronts do not fill the last sheet: fill or fail")
	fl.BoolVar(&c.OnlyFronts, "only-fronts", false, "Single-sided output, no back pages")
	fl.BoolVar(&c.LoadOffset, "load-offset", false, "Apply the saved printer offset to back pages")
	fl.IntVar(&f.offsetX, "offset-x", 0, "Back page x offset in 300 PPI pixels (not saved)")
	fl.IntVar(&f.offsetY, "offset-y", 0, "Back page y offset in 300 PPI pixels (not saved)")
	fl.StringVar(&c.OffsetFile, "offset-file", "", "Offset settings file")
	fl.StringVar(&c.Label, "label", "", "Page label, may use {page}, {pages}, {sheet}, {side}")
	fl.BoolVar(&c.LabelQR, "label-qr", false, "Stamp a QR code of the label next to it")
	fl.StringVar(&c.LabelFont, "label-font", "", "TTF/OTF font for the label")
	fl.BoolVar(&c.Strict, "strict", false, "Fail on the first image that cannot be decoded")
	fl.IntVarP(&c.Workers, "workers", "j", c.Workers, "Parallel image decoders")
	fl.StringVar(&c.Layouts, "layouts", "", "YAML layout catalog replacing the built-in one")

	return cmd
}

// resolve builds the run config: defaults, then the config file, then the
// environment, then flags the user actually set.
func (f *generateFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}

	changed := cmd.Flags().Changed
	src := f.cfg
	strs := map[string]struct{ dst, src *string }{
		"front-dir":        {&cfg.FrontDir, &src.FrontDir},
		"back-dir":         {&cfg.BackDir, &src.BackDir},
		"double-sided-dir": {&cfg.DoubleSidedDir, &src.DoubleSidedDir},
		"filler":           {&cfg.Filler, &src.Filler},
		"output":           {&cfg.Output, &src.Output},
		"format":           {&cfg.Format, &src.Format},
		"summary":          {&cfg.Summary, &src.Summary},
		"paper-size":       {&cfg.Paper, &src.Paper},
		"card-size":        {&cfg.Card, &src.Card},
		"offset-file":      {&cfg.OffsetFile, &src.OffsetFile},
		"label":            {&cfg.Label, &src.Label},
		"label-font":       {&cfg.LabelFont, &src.LabelFont},
		"layouts":          {&cfg.Layouts, &src.Layouts},
	}
	for name, p := range strs {
		if changed(name) {
			*p.dst = *p.src
		}
	}
	ints := map[string]struct{ dst, src *int }{
		"extend-corners": {&cfg.ExtendCorners, &src.ExtendCorners},
		"ppi":            {&cfg.PPI, &src.PPI},
		"quality":        {&cfg.Quality, &src.Quality},
		"workers":        {&cfg.Workers, &src.Workers},
	}
	for name, p := range ints {
		if changed(name) {
			*p.dst = *p.src
		}
	}
	bools := map[string]struct{ dst, src *bool }{
		"only-fronts": {&cfg.OnlyFronts, &src.OnlyFronts},
		"load-offset": {&cfg.LoadOffset, &src.LoadOffset},
		"label-qr":    {&cfg.LabelQR, &src.LabelQR},
		"strict":      {&cfg.Strict, &src.Strict},
	}
	for name, p := range bools {
		if changed(name) {
			*p.dst = *p.src
		}
	}

	if changed("skip") {
		cfg.Skip = src.Skip
	}
	if changed("pad") {
		cfg.Pad = sheet.PadMode(f.pad)
	}
	if changed("crop") {
		l, err := imagepkg.ParseLength(f.crop)
		if err != nil {
			return cfg, fmt.Errorf("%w: --crop: %v", config.ErrInvalid, err)
		}
		cfg.Crop = l
	}
	if changed("offset-x") {
		x := f.offsetX
		cfg.OffsetX = &x
	}
	if changed("offset-y") {
		y := f.offsetY
		cfg.OffsetY = &y
	}
	return cfg, cfg.Validate()
}
