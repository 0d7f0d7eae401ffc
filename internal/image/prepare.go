package imagepkg

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sort"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/youruser/deckprint/internal/cards"
	"github.com/youruser/deckprint/internal/layout"
)

// Options is the per-run transform pipeline.
type Options struct {
	Crop          Length
	ExtendCorners int
	PPI           int
}

// Key identifies a prepared image. The same file can be prepared twice
// when it is used in two roles, since crop depends on the role.
type Key struct {
	Path string
	Role cards.Role
}

// KeyOf returns the key for a source image.
func KeyOf(img cards.SourceImage) Key {
	return Key{Path: img.Path, Role: img.Role}
}

// Failure is an image that could not be prepared.
type Failure struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

// Preparer turns source images into slot-sized images for one layout.
type Preparer struct {
	layout layout.CardLayout
	opts   Options
	size   image.Point
}

// NewPreparer fixes the target slot size for the layout at opts.PPI.
func NewPreparer(l layout.CardLayout, opts Options) (*Preparer, error) {
	if opts.PPI <= 0 {
		return nil, fmt.Errorf("ppi must be positive, got %d", opts.PPI)
	}
	if opts.ExtendCorners < 0 {
		return nil, fmt.Errorf("corner extension must not be negative, got %d", opts.ExtendCorners)
	}
	return &Preparer{layout: l, opts: opts, size: l.SlotSize(opts.PPI)}, nil
}

// Size is the pixel size of every prepared image.
func (p *Preparer) Size() image.Point { return p.size }

// sourcePPI is the image's own resolution, taking the slot width as the
// physical width of the art.
func (p *Preparer) sourcePPI(img image.Image) float64 {
	inches := float64(p.layout.Width) / layout.ReferencePPI
	return float64(img.Bounds().Dx()) / inches
}

// Transform crops (fronts and double-sided backs only), extends corners
// and resamples img to the slot size.
func (p *Preparer) Transform(img image.Image, role cards.Role) (*image.NRGBA, error) {
	var err error
	if role != cards.RoleBack && !p.opts.Crop.IsZero() {
		margin := p.opts.Crop.Pixels(p.sourcePPI(img))
		if img, err = CropMargin(img, margin); err != nil {
			return nil, err
		}
	}
	if img, err = ExtendCorners(img, p.opts.ExtendCorners); err != nil {
		return nil, err
	}
	return imaging.Resize(img, p.size.X, p.size.Y, imaging.Lanczos), nil
}

// PrepareFile decodes and transforms one source image.
func (p *Preparer) PrepareFile(src cards.SourceImage) (*image.NRGBA, error) {
	img, err := DecodeFile(src.Path)
	if err != nil {
		return nil, err
	}
	out, err := p.Transform(img, src.Role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Path, err)
	}
	return out, nil
}

// Set is the result of preparing a batch of images.
type Set struct {
	Images   map[Key]*image.NRGBA
	Failures []Failure
}

// Get returns the prepared image for src, if it was prepared.
func (s *Set) Get(src *cards.SourceImage) (*image.NRGBA, bool) {
	if s == nil || src == nil {
		return nil, false
	}
	img, ok := s.Images[KeyOf(*src)]
	return img, ok
}

// PrepareAll decodes srcs on up to workers goroutines. Decode order does
// not matter: callers look results up by key. Failures are collected
// unless strict, in which case the first one aborts the batch.
func (p *Preparer) PrepareAll(ctx context.Context, srcs []cards.SourceImage, workers int, strict bool) (*Set, error) {
	if workers <= 0 {
		workers = 1
	}
	set := &Set{Images: make(map[Key]*image.NRGBA, len(srcs))}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, src := range srcs {
		i, src := i, src
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slog.Debug("Preparing image", "path", src.Path, "role", src.Role, "progress", fmt.Sprintf("%d/%d", i+1, len(srcs)))
			img, err := p.PrepareFile(src)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if strict {
					return err
				}
				slog.Warn("Skipping image", "path", src.Path, "err", err)
				set.Failures = append(set.Failures, Failure{Path: src.Path, Reason: err.Error()})
				return nil
			}
			set.Images[KeyOf(src)] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sortFailures(set.Failures)
	return set, nil
}

func sortFailures(fs []Failure) {
	sort.Slice(fs, func(i, j int) bool { return fs[i].Path < fs[j].Path })
}
