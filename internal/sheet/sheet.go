// Package sheet distributes card images over fixed-capacity sheet pairs.
//
// Composition only works on image handles; nothing here touches the disk,
// so every padding, pairing and skip rule can be checked in isolation.
package sheet

import (
	"github.com/youruser/deckprint/internal/cards"
	"github.com/youruser/deckprint/internal/layout"
)

type SlotKind int

const (
	Empty SlotKind = iota
	Image
	Filler
	Skipped
)

func (k SlotKind) String() string {
	switch k {
	case Image:
		return "image"
	case Filler:
		return "filler"
	case Skipped:
		return "skipped"
	default:
		return "empty"
	}
}

// Slot is one card position. Image is nil for empty and skipped slots and
// for fillers padded without a filler image.
type Slot struct {
	Kind  SlotKind
	Image *cards.SourceImage
}

// Sheet is one page worth of slots. len(Slots) always equals the layout capacity.
type Sheet struct {
	Index int
	Side  layout.Side
	Slots []Slot
}

// Pair is a front sheet and the back sheet printed behind it.
// Back is nil for single-sided output.
type Pair struct {
	Front *Sheet
	Back  *Sheet
}

// Pages flattens pairs into print order: front, back, front, back...
func Pages(pairs []Pair) []*Sheet {
	out := make([]*Sheet, 0, 2*len(pairs))
	for _, p := range pairs {
		out = append(out, p.Front)
		if p.Back != nil {
			out = append(out, p.Back)
		}
	}
	return out
}

// Stats summarises what a composition placed.
type Stats struct {
	Pairs   int
	Pages   int
	Fronts  int
	Fillers int
	Skipped int
}

// Count tallies the front sheets of pairs. Skipped counts slots on every page.
func Count(pairs []Pair) Stats {
	st := Stats{Pairs: len(pairs)}
	for _, sh := range Pages(pairs) {
		st.Pages++
		for _, s := range sh.Slots {
			if s.Kind == Skipped {
				st.Skipped++
			}
			if sh.Side != layout.Front {
				continue
			}
			switch s.Kind {
			case Image:
				st.Fronts++
			case Filler:
				st.Fillers++
			}
		}
	}
	return st
}

// Images returns every distinct image handle referenced by pairs, in first-use order.
func Images(pairs []Pair) []cards.SourceImage {
	seen := map[imageKey]bool{}
	var out []cards.SourceImage
	for _, sh := range Pages(pairs) {
		for _, s := range sh.Slots {
			if s.Image == nil {
				continue
			}
			k := imageKey{s.Image.Path, s.Image.Role}
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, *s.Image)
		}
	}
	return out
}

type imageKey struct {
	path string
	role cards.Role
}
