// Package layout holds the static paper x card slot geometry.
package layout

import (
	_ "embed"
	"errors"
	"fmt"
	"image"
	"io"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ReferencePPI is the resolution every anchor in the catalog is expressed in.
const ReferencePPI = 300

var ErrUnsupportedCombination = errors.New("unsupported paper/card combination")

//go:embed layouts.yaml
var builtin []byte

// Side tells which face of a sheet pair is being placed.
type Side int

const (
	Front Side = iota
	Back
)

func (s Side) String() string {
	if s == Back {
		return "back"
	}
	return "front"
}

// CardLayout is the slot grid for one card size on one paper size.
type CardLayout struct {
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	XAnchors    []int  `yaml:"x_pos"`
	YAnchors    []int  `yaml:"y_pos"`
	Template    string `yaml:"template"`
	MirrorBacks bool   `yaml:"mirror_backs"`

	// filled in by the catalog on load
	Paper     string      `yaml:"-"`
	Card      string      `yaml:"-"`
	PaperSize image.Point `yaml:"-"`
}

// Capacity is the number of slots per sheet.
func (c CardLayout) Capacity() int {
	return len(c.XAnchors) * len(c.YAnchors)
}

// Cols is the number of slot columns.
func (c CardLayout) Cols() int {
	return len(c.XAnchors)
}

// SlotRect returns the rectangle of slot i at the reference resolution.
// On back sheets of a mirrored layout the column is reflected across the
// page so slot i lands behind its front after a long-edge flip.
func (c CardLayout) SlotRect(i int, side Side) image.Rectangle {
	col, row := i%c.Cols(), i/c.Cols()
	x, y := c.XAnchors[col], c.YAnchors[row]
	if side == Back && c.MirrorBacks {
		x = c.PaperSize.X - x - c.Width
	}
	return image.Rect(x, y, x+c.Width, y+c.Height)
}

// ScaledSlotRect is SlotRect converted to an output resolution.
func (c CardLayout) ScaledSlotRect(i int, side Side, ppi int) image.Rectangle {
	return Scale(c.SlotRect(i, side), ppi)
}

// SlotSize is the slot size in pixels at ppi.
func (c CardLayout) SlotSize(ppi int) image.Point {
	return image.Pt(ScaleLen(c.Width, ppi), ScaleLen(c.Height, ppi))
}

// Bottom is the lowest slot edge at the reference resolution.
func (c CardLayout) Bottom() int {
	return c.YAnchors[len(c.YAnchors)-1] + c.Height
}

// ScaleLen converts a reference length to pixels at ppi.
func ScaleLen(v, ppi int) int {
	return v * ppi / ReferencePPI
}

// Scale converts a reference rectangle to pixels at ppi. The size is
// scaled independently of the origin so every slot keeps the same size.
func Scale(r image.Rectangle, ppi int) image.Rectangle {
	x, y := ScaleLen(r.Min.X, ppi), ScaleLen(r.Min.Y, ppi)
	return image.Rect(x, y, x+ScaleLen(r.Dx(), ppi), y+ScaleLen(r.Dy(), ppi))
}

// PaperLayout is one paper size and the card layouts it supports.
type PaperLayout struct {
	Width  int                   `yaml:"width"`
	Height int                   `yaml:"height"`
	Cards  map[string]CardLayout `yaml:"cards"`
}

// Catalog is the full set of supported layouts.
type Catalog struct {
	ReferencePPI int                    `yaml:"reference_ppi"`
	Papers       map[string]PaperLayout `yaml:"papers"`
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the embedded catalog, parsed once.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Load(strings.NewReader(string(builtin)))
	})
	return defaultCat, defaultErr
}

// Load parses and validates a catalog definition.
func Load(r io.Reader) (*Catalog, error) {
	var cat Catalog
	if err := yaml.NewDecoder(r).Decode(&cat); err != nil {
		return nil, fmt.Errorf("parse layouts: %w", err)
	}
	if cat.ReferencePPI != 0 && cat.ReferencePPI != ReferencePPI {
		return nil, fmt.Errorf("layouts: reference_ppi must be %d, got %d", ReferencePPI, cat.ReferencePPI)
	}
	normalized := make(map[string]PaperLayout, len(cat.Papers))
	for pname, p := range cat.Papers {
		pname = strings.ToLower(pname)
		cards := make(map[string]CardLayout, len(p.Cards))
		for cname, c := range p.Cards {
			cname = strings.ToLower(cname)
			c.Paper, c.Card = pname, cname
			c.PaperSize = image.Pt(p.Width, p.Height)
			if c.Template == "" {
				c.Template = TemplateNone
			}
			cards[cname] = c
		}
		p.Cards = cards
		normalized[pname] = p
	}
	cat.Papers = normalized
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Lookup returns the layout for a paper and card size.
func (c *Catalog) Lookup(paper, card string) (CardLayout, error) {
	p, ok := c.Papers[strings.ToLower(paper)]
	if !ok {
		return CardLayout{}, fmt.Errorf("%w: paper %q", ErrUnsupportedCombination, paper)
	}
	l, ok := p.Cards[strings.ToLower(card)]
	if !ok {
		return CardLayout{}, fmt.Errorf("%w: card %q on paper %q", ErrUnsupportedCombination, card, paper)
	}
	return l, nil
}

// Validate checks that every slot grid is well formed and fits its paper.
func (c *Catalog) Validate() error {
	for pname, p := range c.Papers {
		if p.Width <= 0 || p.Height <= 0 {
			return fmt.Errorf("layouts: paper %s has no size", pname)
		}
		bounds := image.Rect(0, 0, p.Width, p.Height)
		for cname, l := range p.Cards {
			if err := validateCard(l, bounds); err != nil {
				return fmt.Errorf("layouts: %s/%s: %w", pname, cname, err)
			}
		}
	}
	return nil
}

func validateCard(l CardLayout, bounds image.Rectangle) error {
	if l.Width <= 0 || l.Height <= 0 {
		return errors.New("slot size must be positive")
	}
	if l.Capacity() == 0 {
		return errors.New("no slots")
	}
	if !increasing(l.XAnchors, l.Width) || !increasing(l.YAnchors, l.Height) {
		return errors.New("anchors must increase by at least one slot")
	}
	if _, ok := templates[l.Template]; !ok {
		return fmt.Errorf("unknown template %q", l.Template)
	}
	marks := Marks(l.Template, bounds.Size(), ReferencePPI)
	for _, side := range []Side{Front, Back} {
		for i := 0; i < l.Capacity(); i++ {
			r := l.SlotRect(i, side)
			if !r.In(bounds) {
				return fmt.Errorf("%s slot %d %v outside paper %v", side, i, r, bounds)
			}
			for _, m := range marks {
				if r.Overlaps(m) {
					return fmt.Errorf("%s slot %d overlaps registration mark %v", side, i, m)
				}
			}
		}
	}
	return nil
}

func increasing(anchors []int, size int) bool {
	for i := 1; i < len(anchors); i++ {
		if anchors[i]-anchors[i-1] < size {
			return false
		}
	}
	return true
}

// PaperNames lists the catalog papers, sorted.
func (c *Catalog) PaperNames() []string {
	out := make([]string, 0, len(c.Papers))
	for name := range c.Papers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// CardNames lists the card sizes supported on paper, sorted.
func (c *Catalog) CardNames(paper string) []string {
	p := c.Papers[strings.ToLower(paper)]
	out := make([]string, 0, len(p.Cards))
	for name := range p.Cards {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// PaperSize returns the size of a paper in reference pixels.
func (c *Catalog) PaperSize(paper string) (image.Point, error) {
	p, ok := c.Papers[strings.ToLower(paper)]
	if !ok {
		return image.Point{}, fmt.Errorf("%w: paper %q", ErrUnsupportedCombination, paper)
	}
	return image.Pt(p.Width, p.Height), nil
}

// Layouts returns every layout, ordered by paper then card name.
func (c *Catalog) Layouts() []CardLayout {
	var out []CardLayout
	for _, paper := range c.PaperNames() {
		for _, card := range c.CardNames(paper) {
			out = append(out, c.Papers[paper].Cards[card])
		}
	}
	return out
}
