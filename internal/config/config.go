// Package config holds the single option record for a layout run.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"

	imagepkg "github.com/youruser/deckprint/internal/image"
	"github.com/youruser/deckprint/internal/layout"
	"github.com/youruser/deckprint/internal/offset"
	"github.com/youruser/deckprint/internal/render"
	"github.com/youruser/deckprint/internal/sheet"
)

var ErrInvalid = errors.New("invalid configuration")

// MaxPPI bounds the output resolution; a tabloid page at 1200 PPI is
// already close to 100 MP.
const MaxPPI = 1200

// Config is everything a run needs. Zero values are filled by Default.
type Config struct {
	Paper string `yaml:"paper_size" json:"paper_size"`
	Card  string `yaml:"card_size" json:"card_size"`

	FrontDir       string `yaml:"front_dir" json:"front_dir"`
	BackDir        string `yaml:"back_dir" json:"back_dir"`
	DoubleSidedDir string `yaml:"double_sided_dir" json:"double_sided_dir"`
	Filler         string `yaml:"filler" json:"filler"`

	Output  string `yaml:"output" json:"output"`
	Format  string `yaml:"format" json:"format"`
	Summary string `yaml:"summary" json:"summary"`

	Crop          imagepkg.Length `yaml:"crop" json:"crop"`
	ExtendCorners int             `yaml:"extend_corners" json:"extend_corners"`
	PPI           int             `yaml:"ppi" json:"ppi"`
	Quality       int             `yaml:"quality" json:"quality"`

	Skip       []int         `yaml:"skip" json:"skip"`
	Pad        sheet.PadMode `yaml:"pad" json:"pad"`
	OnlyFronts bool          `yaml:"only_fronts" json:"only_fronts"`

	LoadOffset bool   `yaml:"load_offset" json:"load_offset"`
	OffsetX    *int   `yaml:"offset_x" json:"offset_x"`
	OffsetY    *int   `yaml:"offset_y" json:"offset_y"`
	OffsetFile string `yaml:"offset_file" json:"offset_file"`

	Label     string `yaml:"label" json:"label"`
	LabelQR   bool   `yaml:"label_qr" json:"label_qr"`
	LabelFont string `yaml:"label_font" json:"label_font"`

	Strict  bool   `yaml:"strict" json:"strict"`
	Workers int    `yaml:"workers" json:"workers"`
	Layouts string `yaml:"layouts" json:"layouts"`
}

func Default() Config {
	return Config{
		Paper:          "letter",
		Card:           "poker",
		FrontDir:       "game/front",
		BackDir:        "game/back",
		DoubleSidedDir: "game/double_sided",
		Output:         "game/output/game.pdf",
		Format:         string(render.FormatPDF),
		PPI:            300,
		Quality:        75,
		Pad:            sheet.PadFill,
		Workers:        runtime.NumCPU(),
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from DECKPRINT_* variables.
func (c *Config) ApplyEnv() error {
	strs := map[string]*string{
		"DECKPRINT_PAPER_SIZE": &c.Paper,
		"DECKPRINT_CARD_SIZE":  &c.Card,
		"DECKPRINT_OUTPUT":     &c.Output,
		"DECKPRINT_LABEL_FONT": &c.LabelFont,
		"DECKPRINT_LAYOUTS":    &c.Layouts,
	}
	for k, p := range strs {
		if v, ok := os.LookupEnv(k); ok {
			*p = v
		}
	}
	ints := map[string]*int{
		"DECKPRINT_PPI":     &c.PPI,
		"DECKPRINT_WORKERS": &c.Workers,
	}
	for k, p := range ints {
		v, ok := os.LookupEnv(k)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalid, k, v)
		}
		*p = n
	}
	return nil
}

// Validate checks field ranges. Paper and card names are checked later,
// against the catalog.
func (c Config) Validate() error {
	var errs []error
	if c.Paper == "" || c.Card == "" {
		errs = append(errs, errors.New("paper_size and card_size are required"))
	}
	if c.FrontDir == "" {
		errs = append(errs, errors.New("front_dir is required"))
	}
	if c.Output == "" {
		errs = append(errs, errors.New("output is required"))
	}
	if _, err := render.ParseFormat(c.Format); err != nil {
		errs = append(errs, err)
	}
	if c.PPI <= 0 || c.PPI > MaxPPI {
		errs = append(errs, fmt.Errorf("ppi %d not in 1..%d", c.PPI, MaxPPI))
	}
	if c.Quality < 0 || c.Quality > 100 {
		errs = append(errs, fmt.Errorf("quality %d not in 0..100", c.Quality))
	}
	if c.ExtendCorners < 0 {
		errs = append(errs, fmt.Errorf("extend_corners %d is negative", c.ExtendCorners))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers %d is negative", c.Workers))
	}
	if c.Pad != sheet.PadFill && c.Pad != sheet.PadFail {
		errs = append(errs, fmt.Errorf("pad %q must be fill or fail", c.Pad))
	}
	for _, k := range c.Skip {
		if k < 0 {
			errs = append(errs, fmt.Errorf("skip index %d is negative", k))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Clone returns a copy that shares no pointers or slices with c, so the
// copy can be decoded into without touching c.
func (c Config) Clone() Config {
	out := c
	out.Skip = slices.Clone(c.Skip)
	if c.OffsetX != nil {
		x := *c.OffsetX
		out.OffsetX = &x
	}
	if c.OffsetY != nil {
		y := *c.OffsetY
		out.OffsetY = &y
	}
	return out
}

// ExplicitOffset is the offset given with the run, or nil when only the
// persisted one may apply.
func (c Config) ExplicitOffset() *offset.Settings {
	if c.OffsetX == nil && c.OffsetY == nil {
		return nil
	}
	var s offset.Settings
	if c.OffsetX != nil {
		s.X = *c.OffsetX
	}
	if c.OffsetY != nil {
		s.Y = *c.OffsetY
	}
	return &s
}

// Catalog returns the built-in catalog, or the one at Layouts.
func (c Config) Catalog() (*layout.Catalog, error) {
	if c.Layouts == "" {
		return layout.Default()
	}
	f, err := os.Open(c.Layouts)
	if err != nil {
		return nil, fmt.Errorf("open layouts %s: %w", c.Layouts, err)
	}
	defer f.Close()
	cat, err := layout.Load(f)
	if err != nil {
		return nil, fmt.Errorf("layouts %s: %w", c.Layouts, err)
	}
	return cat, nil
}

func (c Config) OutputFormat() render.Format {
	f, _ := render.ParseFormat(c.Format)
	return f
}

// OffsetStore is the store at OffsetFile, or at the default location.
func (c Config) OffsetStore() *offset.Store {
	return offset.NewStore(c.OffsetFile)
}
