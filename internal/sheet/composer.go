package sheet

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/youruser/deckprint/internal/cards"
	"github.com/youruser/deckprint/internal/layout"
)

var (
	ErrUnpaddedFrontCount  = errors.New("front count is not a multiple of the sheet capacity")
	ErrMissingBackForFront = errors.New("no back image for front")
	ErrInvalidSkip         = errors.New("invalid skip index")
)

type PadMode string

const (
	PadFill PadMode = "fill"
	PadFail PadMode = "fail"
)

// Options control how fronts are distributed.
type Options struct {
	Pad         PadMode
	SingleSided bool
	// Skip lists slot indices left empty on every sheet.
	Skip []int
}

// Input is the ordered image set for one run.
type Input struct {
	Fronts      []cards.SourceImage
	Backs       []cards.SourceImage
	DoubleSided []cards.SourceImage
	Filler      *cards.SourceImage
}

// Composer turns image lists into sheet pairs for one card layout.
type Composer struct {
	layout layout.CardLayout
	opts   Options
	skip   map[int]bool
}

// NewComposer validates the skip set against the layout capacity.
func NewComposer(l layout.CardLayout, opts Options) (*Composer, error) {
	n := l.Capacity()
	skip := make(map[int]bool, len(opts.Skip))
	for _, k := range opts.Skip {
		if k < 0 || k >= n {
			return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidSkip, k, n)
		}
		skip[k] = true
	}
	if len(skip) >= n {
		return nil, fmt.Errorf("%w: all %d slots skipped", ErrInvalidSkip, n)
	}
	if opts.Pad == "" {
		opts.Pad = PadFill
	}
	return &Composer{layout: l, opts: opts, skip: skip}, nil
}

// SkipIndices returns the validated skip set, sorted.
func (c *Composer) SkipIndices() []int {
	out := make([]int, 0, len(c.skip))
	for k := range c.skip {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// PerSheet is the number of usable slots on each sheet.
func (c *Composer) PerSheet() int {
	return c.layout.Capacity() - len(c.skip)
}

type entry struct {
	kind  SlotKind
	front *cards.SourceImage
	back  *cards.SourceImage
}

// Compose lays the fronts out in order, one back sheet behind every front
// sheet unless single-sided. Every front lands in exactly one slot.
func (c *Composer) Compose(in Input) ([]Pair, error) {
	if len(in.Fronts) == 0 {
		return nil, nil
	}

	var shared *cards.SourceImage
	if !c.opts.SingleSided {
		shared = sharedBack(in.Backs)
	}
	entries, err := c.resolve(in, shared)
	if err != nil {
		return nil, err
	}

	per := c.PerSheet()
	if rem := len(entries) % per; rem != 0 {
		missing := per - rem
		if c.opts.Pad == PadFail {
			return nil, fmt.Errorf("%w: %d fronts, %d per sheet, %d short", ErrUnpaddedFrontCount, len(entries), per, missing)
		}
		for i := 0; i < missing; i++ {
			entries = append(entries, entry{kind: Filler, front: in.Filler, back: shared})
		}
	}

	n := c.layout.Capacity()
	var pairs []Pair
	next := 0
	for idx := 0; next < len(entries); idx++ {
		p := Pair{Front: c.newSheet(idx, layout.Front)}
		if !c.opts.SingleSided {
			p.Back = c.newSheet(idx, layout.Back)
		}
		for i := 0; i < n; i++ {
			if c.skip[i] {
				p.Front.Slots[i] = Slot{Kind: Skipped}
				if p.Back != nil {
					p.Back.Slots[i] = Slot{Kind: Skipped}
				}
				continue
			}
			if next >= len(entries) {
				continue
			}
			e := entries[next]
			next++
			p.Front.Slots[i] = Slot{Kind: e.kind, Image: e.front}
			if p.Back != nil {
				kind := e.kind
				if e.back == nil && kind == Image {
					kind = Empty
				}
				p.Back.Slots[i] = Slot{Kind: kind, Image: e.back}
			}
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

// resolve pairs every front with its back: a double-sided back sharing the
// pairing key wins over the shared back.
func (c *Composer) resolve(in Input, shared *cards.SourceImage) ([]entry, error) {
	entries := make([]entry, len(in.Fronts))
	for i := range in.Fronts {
		entries[i] = entry{kind: Image, front: &in.Fronts[i]}
	}
	if c.opts.SingleSided {
		return entries, nil
	}

	paired, err := cards.Index(in.DoubleSided)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		f := entries[i].front
		if b, ok := paired[f.Key]; ok {
			b := b
			entries[i].back = &b
			continue
		}
		if shared == nil {
			return nil, fmt.Errorf("%w %s (no double-sided %q and no shared back)", ErrMissingBackForFront, f.Path, f.Key)
		}
		entries[i].back = shared
	}
	return entries, nil
}

func sharedBack(backs []cards.SourceImage) *cards.SourceImage {
	if len(backs) == 0 {
		return nil
	}
	if len(backs) > 1 {
		slog.Warn("Multiple back images found, using the first", "path", backs[0].Path, "count", len(backs))
	}
	b := backs[0]
	return &b
}

func (c *Composer) newSheet(idx int, side layout.Side) *Sheet {
	return &Sheet{Index: idx, Side: side, Slots: make([]Slot, c.layout.Capacity())}
}
