// Package pipeline runs one layout job from image directories to committed
// output.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/youruser/deckprint/internal/cards"
	"github.com/youruser/deckprint/internal/config"
	"github.com/youruser/deckprint/internal/deck"
	imagepkg "github.com/youruser/deckprint/internal/image"
	"github.com/youruser/deckprint/internal/layout"
	"github.com/youruser/deckprint/internal/offset"
	"github.com/youruser/deckprint/internal/render"
	"github.com/youruser/deckprint/internal/sheet"
	"github.com/youruser/deckprint/internal/util"
)

// Runner executes a single run. It is not reusable.
type Runner struct {
	cfg     config.Config
	machine Machine

	// Progress, when set, is called after each page is written.
	Progress func(page, total int)
}

func New(cfg config.Config) *Runner {
	return &Runner{cfg: cfg}
}

func (r *Runner) State() State { return r.machine.State() }

// Run loads the configured image directories and runs them.
func Run(ctx context.Context, cfg config.Config) (*deck.Summary, error) {
	in, err := cards.LoadInputs(cfg.FrontDir, cfg.BackDir, cfg.DoubleSidedDir, cfg.Filler)
	if err != nil {
		return nil, err
	}
	return New(cfg).Run(ctx, in)
}

// Run lays out in. An error or cancellation before the commit leaves no
// output behind and the runner ends in Failed. The summary file is written
// after the commit, so a failed summary write also ends in Failed but keeps
// the committed output, and the error says so.
func (r *Runner) Run(ctx context.Context, in cards.Inputs) (*deck.Summary, error) {
	sum, err := r.run(ctx, in)
	if err != nil {
		if terr := r.machine.To(Failed); terr != nil {
			return nil, errors.Join(err, terr)
		}
		return nil, err
	}
	return sum, r.machine.To(Done)
}

func (r *Runner) run(ctx context.Context, in cards.Inputs) (*deck.Summary, error) {
	cfg := r.cfg
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cat, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}
	l, err := cat.Lookup(cfg.Paper, cfg.Card)
	if err != nil {
		return nil, err
	}
	if err := r.machine.To(LayoutSelected); err != nil {
		return nil, err
	}
	slog.Info("Layout selected", "paper", l.Paper, "card", l.Card, "slots", l.Capacity())

	off, err := offset.Resolve(cfg.ExplicitOffset(), cfg.LoadOffset, cfg.OffsetStore())
	if err != nil {
		return nil, err
	}
	if cfg.OnlyFronts && !off.IsZero() {
		slog.Warn("Ignoring offset for single-sided output", "x", off.X, "y", off.Y)
		off = offset.Settings{}
	}

	if err := r.machine.To(Composing); err != nil {
		return nil, err
	}
	composer, err := sheet.NewComposer(l, sheet.Options{Pad: cfg.Pad, SingleSided: cfg.OnlyFronts, Skip: cfg.Skip})
	if err != nil {
		return nil, err
	}
	pairs, err := composer.Compose(sheet.Input{
		Fronts:      in.Fronts,
		Backs:       in.Backs,
		DoubleSided: in.DoubleSided,
		Filler:      in.Filler,
	})
	if err != nil {
		return nil, err
	}
	stats := sheet.Count(pairs)
	sum := &deck.Summary{
		Paper:   l.Paper,
		Card:    l.Card,
		Sheets:  stats.Pairs,
		Pages:   stats.Pages,
		Fillers: stats.Fillers,
		Skipped: stats.Skipped,
		Offset:  off,
	}

	preparer, err := imagepkg.NewPreparer(l, imagepkg.Options{Crop: cfg.Crop, ExtendCorners: cfg.ExtendCorners, PPI: cfg.PPI})
	if err != nil {
		return nil, err
	}
	set, err := preparer.PrepareAll(ctx, sheet.Images(pairs), cfg.Workers, cfg.Strict)
	if err != nil {
		return nil, err
	}
	sum.Failures = set.Failures
	sum.Placed = placed(pairs, set)

	if err := r.machine.To(Rendering); err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		slog.Warn("No front images found, nothing to render", "dir", cfg.FrontDir)
		if err := r.machine.To(Finalizing); err != nil {
			return nil, err
		}
		return sum, nil
	}

	renderer, err := render.NewRenderer(l, render.Options{
		PPI:       cfg.PPI,
		Label:     cfg.Label,
		LabelQR:   cfg.LabelQR,
		LabelFont: cfg.LabelFont,
	})
	if err != nil {
		return nil, err
	}
	sink, err := openSink(cfg, l, off)
	if err != nil {
		return nil, err
	}
	if err := r.renderPages(ctx, renderer, sink, pairs, set, off); err != nil {
		sink.Abort()
		return nil, err
	}

	if err := r.machine.To(Finalizing); err != nil {
		sink.Abort()
		return nil, err
	}
	if err := sink.Close(); err != nil {
		sink.Abort()
		return nil, err
	}
	sum.Outputs = sink.Outputs()

	if cfg.Summary != "" {
		if err := deck.SaveSummaryYAML(*sum, cfg.Summary); err != nil {
			return nil, fmt.Errorf("output committed to %v, but writing summary %s failed: %w", sum.Outputs, cfg.Summary, err)
		}
	}
	slog.Info("Layout complete", "pages", sum.Pages, "placed", sum.Placed, "outputs", sum.Outputs)
	return sum, nil
}

// placed counts the front slots that receive a prepared image. A front that
// failed to decode keeps its slot but is not placed.
func placed(pairs []sheet.Pair, set *imagepkg.Set) int {
	n := 0
	for _, p := range pairs {
		for _, slot := range p.Front.Slots {
			if slot.Kind != sheet.Image {
				continue
			}
			if _, ok := set.Get(slot.Image); ok {
				n++
			}
		}
	}
	return n
}

func (r *Runner) renderPages(ctx context.Context, renderer *render.Renderer, sink render.Sink, pairs []sheet.Pair, set *imagepkg.Set, off offset.Settings) error {
	pages := sheet.Pages(pairs)
	raster := r.cfg.OutputFormat() != render.FormatPDF
	for i, sh := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := i + 1
		page, err := renderer.Page(sh, set, n, len(pages))
		if err != nil {
			return err
		}
		var out image.Image = page
		if raster {
			out = offset.ApplyImage(page, n, off, r.cfg.PPI)
		}
		if err := sink.WritePage(n, sh.Side, out); err != nil {
			return err
		}
		slog.Debug("Page written", "page", n, "of", len(pages), "side", sh.Side)
		if r.Progress != nil {
			r.Progress(n, len(pages))
		}
	}
	return nil
}

func openSink(cfg config.Config, l layout.CardLayout, off offset.Settings) (render.Sink, error) {
	format := cfg.OutputFormat()
	if format != render.FormatPDF || off.IsZero() {
		return render.NewSink(format, cfg.Output, l.PaperSize, cfg.Quality)
	}
	dir := filepath.Dir(cfg.Output)
	if err := util.EnsureDir(dir); err != nil {
		return nil, err
	}
	tmp, err := os.MkdirTemp(dir, ".deckprint-unshifted-*")
	if err != nil {
		return nil, fmt.Errorf("create staging dir in %s: %w", dir, err)
	}
	return &shiftedPDF{
		PDFSink: render.NewPDFSink(filepath.Join(tmp, "unshifted.pdf"), l.PaperSize, cfg.Quality),
		tmp:     tmp,
		out:     cfg.Output,
		offset:  off,
	}, nil
}

// shiftedPDF renders to a staging file and commits it through the offset.
type shiftedPDF struct {
	*render.PDFSink
	tmp    string
	out    string
	offset offset.Settings
	done   bool
}

func (s *shiftedPDF) Close() error {
	defer os.RemoveAll(s.tmp)
	if err := s.PDFSink.Close(); err != nil {
		return err
	}
	if err := offset.ApplyPDF(s.PDFSink.Outputs()[0], s.out, s.offset); err != nil {
		return fmt.Errorf("apply offset to %s: %w", s.out, err)
	}
	s.done = true
	return nil
}

func (s *shiftedPDF) Abort() {
	s.PDFSink.Abort()
	os.RemoveAll(s.tmp)
}

func (s *shiftedPDF) Outputs() []string {
	if !s.done {
		return nil
	}
	return []string{s.out}
}
