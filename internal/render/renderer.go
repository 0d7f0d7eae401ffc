// Package render draws composed sheets into pages and writes them out.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	imagepkg "github.com/youruser/deckprint/internal/image"
	"github.com/youruser/deckprint/internal/layout"
	"github.com/youruser/deckprint/internal/sheet"
)

// labelInset keeps the label and QR clear of the corner brackets, in
// reference pixels.
const labelInset = 300

// minLabelPx is the smallest margin a label is drawn into.
const minLabelPx = 12

// Options for page drawing.
type Options struct {
	PPI int
	// Label may use {page}, {pages}, {sheet} and {side}.
	Label     string
	LabelQR   bool
	LabelFont string
}

// Renderer draws sheets of one layout.
type Renderer struct {
	layout layout.CardLayout
	opts   Options
	size   image.Point
	font   *opentype.Font
	warned bool
}

// NewRenderer prepares a renderer; the label font is only loaded when a
// label is requested.
func NewRenderer(l layout.CardLayout, opts Options) (*Renderer, error) {
	if opts.PPI <= 0 {
		return nil, fmt.Errorf("ppi must be positive, got %d", opts.PPI)
	}
	r := &Renderer{
		layout: l,
		opts:   opts,
		size:   image.Pt(layout.ScaleLen(l.PaperSize.X, opts.PPI), layout.ScaleLen(l.PaperSize.Y, opts.PPI)),
	}
	if opts.Label != "" {
		f, err := loadFont(opts.LabelFont)
		if err != nil {
			return nil, err
		}
		r.font = f
	}
	return r, nil
}

// Size is the page size in pixels.
func (r *Renderer) Size() image.Point { return r.size }

// Page draws one sheet: template, then every slot that has a prepared
// image, then the label. n is the 1-based page number out of total.
func (r *Renderer) Page(sh *sheet.Sheet, set *imagepkg.Set, n, total int) (*image.NRGBA, error) {
	placements := make([]imagepkg.Placement, 0, len(sh.Slots))
	for i, slot := range sh.Slots {
		img, ok := set.Get(slot.Image)
		if !ok {
			continue
		}
		placements = append(placements, imagepkg.Placement{
			Rect:  r.layout.ScaledSlotRect(i, sh.Side, r.opts.PPI),
			Image: img,
		})
	}

	background := func(dst draw.Image) {
		layout.DrawTemplate(dst, r.layout.Template, r.layout.PaperSize, r.opts.PPI)
	}
	page, err := imagepkg.ComposePage(r.size, background, placements)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", n, err)
	}

	if r.opts.Label != "" {
		text := expandLabel(r.opts.Label, sh, n, total)
		if err := r.drawLabel(page, text); err != nil {
			return nil, fmt.Errorf("page %d label: %w", n, err)
		}
	}
	return page, nil
}

func expandLabel(tmpl string, sh *sheet.Sheet, n, total int) string {
	return strings.NewReplacer(
		"{page}", strconv.Itoa(n),
		"{pages}", strconv.Itoa(total),
		"{sheet}", strconv.Itoa(sh.Index+1),
		"{side}", sh.Side.String(),
	).Replace(tmpl)
}

// LabelArea is the strip below the last slot row, clear of the corner marks.
func (r *Renderer) LabelArea() image.Rectangle {
	inset := layout.ScaleLen(labelInset, r.opts.PPI)
	top := layout.ScaleLen(r.layout.Bottom(), r.opts.PPI) + 1
	return image.Rect(inset, top, r.size.X-inset, r.size.Y)
}

func (r *Renderer) drawLabel(page *image.NRGBA, text string) error {
	area := r.LabelArea()
	if area.Dy() < minLabelPx || area.Dx() <= 0 {
		if !r.warned {
			slog.Warn("Bottom margin too small for a label, skipping", "margin_px", area.Dy())
			r.warned = true
		}
		return nil
	}

	textArea := area
	if r.opts.LabelQR {
		side := area.Dy() * 4 / 5
		qr, err := imagepkg.GenerateQRImage(text, side)
		if err != nil {
			return err
		}
		qb := qr.Bounds()
		at := image.Pt(area.Min.X, area.Min.Y+(area.Dy()-qb.Dy())/2)
		dst := image.Rectangle{Min: at, Max: at.Add(qb.Size())}.Intersect(area)
		draw.Draw(page, dst, qr, qb.Min, draw.Src)
		textArea.Min.X = dst.Max.X + area.Dy()/4
	}

	if textArea.Dx() <= 0 {
		return nil
	}
	px := float64(area.Dy()) * 0.45
	fc, err := face(r.font, px)
	if err != nil {
		return err
	}
	width := font.MeasureString(fc, text).Ceil()
	if width > textArea.Dx() && width > 0 {
		px = px * float64(textArea.Dx()) / float64(width)
		fc.Close()
		if px < 1 {
			return nil
		}
		if fc, err = face(r.font, px); err != nil {
			return err
		}
		width = font.MeasureString(fc, text).Ceil()
	}
	defer fc.Close()

	m := fc.Metrics()
	x := textArea.Min.X + (textArea.Dx()-width)/2
	if x < textArea.Min.X {
		x = textArea.Min.X
	}
	baseline := area.Min.Y + (area.Dy()+m.Ascent.Ceil()-m.Descent.Ceil())/2
	d := &font.Drawer{
		Dst:  clip{page, area},
		Src:  image.NewUniform(color.Black),
		Face: fc,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(text)
	return nil
}

// clip confines drawing to a rectangle so glyph overshoot never reaches a slot.
type clip struct {
	*image.NRGBA
	r image.Rectangle
}

func (c clip) Bounds() image.Rectangle { return c.r.Intersect(c.NRGBA.Bounds()) }
