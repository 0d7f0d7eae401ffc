package sheet

import (
	"errors"
	"fmt"
	"testing"

	"github.com/youruser/deckprint/internal/cards"
	"github.com/youruser/deckprint/internal/layout"
)

func lookup(t *testing.T, paper, card string) layout.CardLayout {
	t.Helper()
	cat, err := layout.Default()
	if err != nil {
		t.Fatal(err)
	}
	l, err := cat.Lookup(paper, card)
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func fronts(n int) []cards.SourceImage {
	out := make([]cards.SourceImage, n)
	for i := range out {
		out[i] = cards.NewSourceImage(fmt.Sprintf("front/%03d.png", i), cards.RoleFront)
	}
	return out
}

func sharedBackList() []cards.SourceImage {
	return []cards.SourceImage{cards.NewSourceImage("back/back.png", cards.RoleBack)}
}

// placedFronts returns the front paths in slot order across all sheets.
func placedFronts(pairs []Pair) []string {
	var out []string
	for _, p := range pairs {
		for _, s := range p.Front.Slots {
			if s.Kind == Image {
				out = append(out, s.Image.Path)
			}
		}
	}
	return out
}

func TestComposeNineOnLetter(t *testing.T) {
	l := lookup(t, "letter", "poker")
	c, err := NewComposer(l, Options{})
	if err != nil {
		t.Fatal(err)
	}
	pairs, err := c.Compose(Input{Fronts: fronts(9), Backs: sharedBackList()})
	if err != nil {
		t.Fatalf("Compose error: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("Expected 1 sheet pair, got %d", len(pairs))
	}
	for i := 0; i < 9; i++ {
		f, b := pairs[0].Front.Slots[i], pairs[0].Back.Slots[i]
		if f.Kind != Image || f.Image.Path != fmt.Sprintf("front/%03d.png", i) {
			t.Errorf("front slot %d: got %+v", i, f)
		}
		if b.Kind != Image || b.Image.Path != "back/back.png" {
			t.Errorf("back slot %d: expected shared back, got %+v", i, b)
		}
	}
	if pages := Pages(pairs); len(pages) != 2 || pages[0].Side != layout.Front || pages[1].Side != layout.Back {
		t.Errorf("Expected front then back page, got %d pages", len(pages))
	}
}

func TestComposePadsToCapacity(t *testing.T) {
	l := lookup(t, "a4", "poker")
	if l.Capacity() != 8 {
		t.Fatalf("Expected capacity 8, got %d", l.Capacity())
	}
	c, err := NewComposer(l, Options{Pad: PadFill})
	if err != nil {
		t.Fatal(err)
	}
	pairs, err := c.Compose(Input{Fronts: fronts(10), Backs: sharedBackList()})
	if err != nil {
		t.Fatalf("Compose error: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("Expected 2 sheet pairs, got %d", len(pairs))
	}

	st := Count(pairs)
	if st.Fronts != 10 || st.Fillers != 6 {
		t.Errorf("Expected 10 fronts and 6 fillers, got %+v", st)
	}
	if st.Fronts+st.Fillers != 16 {
		t.Errorf("Expected 16 front slots, got %d", st.Fronts+st.Fillers)
	}
	for _, p := range pairs {
		if len(p.Front.Slots) != 8 || len(p.Back.Slots) != 8 {
			t.Fatalf("sheet sizes must equal capacity")
		}
		for i, s := range p.Back.Slots {
			if s.Image == nil || s.Image.Path != "back/back.png" {
				t.Errorf("sheet %d back slot %d: expected shared back, got %+v", p.Back.Index, i, s)
			}
		}
	}
}

func TestComposeFillerImage(t *testing.T) {
	l := lookup(t, "letter", "poker")
	filler := cards.NewSourceImage("filler.png", cards.RoleFront)
	c, _ := NewComposer(l, Options{Pad: PadFill, SingleSided: true})
	pairs, err := c.Compose(Input{Fronts: fronts(4), Filler: &filler})
	if err != nil {
		t.Fatal(err)
	}
	for i := 4; i < 9; i++ {
		s := pairs[0].Front.Slots[i]
		if s.Kind != Filler || s.Image == nil || s.Image.Path != "filler.png" {
			t.Errorf("slot %d: expected filler image, got %+v", i, s)
		}
	}
	if pairs[0].Back != nil {
		t.Error("single-sided output must not have back sheets")
	}
}

func TestComposePaddingProperty(t *testing.T) {
	l := lookup(t, "letter", "poker")
	n := l.Capacity()
	for f := 1; f <= 3*n+1; f++ {
		c, _ := NewComposer(l, Options{Pad: PadFill})
		pairs, err := c.Compose(Input{Fronts: fronts(f), Backs: sharedBackList()})
		if err != nil {
			t.Fatalf("F=%d: %v", f, err)
		}
		st := Count(pairs)
		want := (f + n - 1) / n * n
		if st.Fronts != f || st.Fronts+st.Fillers != want {
			t.Errorf("F=%d: got %d fronts + %d fillers, want %d real of %d", f, st.Fronts, st.Fillers, f, want)
		}
		got := placedFronts(pairs)
		for i, path := range got {
			if path != fmt.Sprintf("front/%03d.png", i) {
				t.Errorf("F=%d: position %d holds %s", f, i, path)
				break
			}
		}
	}
}

func TestComposeFailMode(t *testing.T) {
	l := lookup(t, "letter", "poker")
	c, _ := NewComposer(l, Options{Pad: PadFail})

	if _, err := c.Compose(Input{Fronts: fronts(10), Backs: sharedBackList()}); !errors.Is(err, ErrUnpaddedFrontCount) {
		t.Errorf("Expected ErrUnpaddedFrontCount, got %v", err)
	}
	if _, err := c.Compose(Input{Fronts: fronts(18), Backs: sharedBackList()}); err != nil {
		t.Errorf("Expected exact multiple to pass, got %v", err)
	}
}

func TestComposeZeroFronts(t *testing.T) {
	c, _ := NewComposer(lookup(t, "letter", "poker"), Options{Pad: PadFail})
	pairs, err := c.Compose(Input{})
	if err != nil || len(pairs) != 0 {
		t.Errorf("Expected no pairs and no error, got %d, %v", len(pairs), err)
	}
}

func TestComposeBackResolution(t *testing.T) {
	l := lookup(t, "letter", "poker")
	fs := fronts(3)
	ds := []cards.SourceImage{cards.NewSourceImage("ds/001.jpg", cards.RoleDoubleSided)}

	t.Run("paired back wins over shared", func(t *testing.T) {
		c, _ := NewComposer(l, Options{})
		pairs, err := c.Compose(Input{Fronts: fs, Backs: sharedBackList(), DoubleSided: ds})
		if err != nil {
			t.Fatal(err)
		}
		back := pairs[0].Back.Slots
		if back[1].Image.Path != "ds/001.jpg" {
			t.Errorf("slot 1: expected paired back, got %s", back[1].Image.Path)
		}
		if back[0].Image.Path != "back/back.png" || back[2].Image.Path != "back/back.png" {
			t.Errorf("unpaired fronts should get the shared back")
		}
	})

	t.Run("missing back is fatal", func(t *testing.T) {
		c, _ := NewComposer(l, Options{})
		_, err := c.Compose(Input{Fronts: fs, DoubleSided: ds})
		if !errors.Is(err, ErrMissingBackForFront) {
			t.Errorf("Expected ErrMissingBackForFront, got %v", err)
		}
	})

	t.Run("single-sided needs no back", func(t *testing.T) {
		c, _ := NewComposer(l, Options{SingleSided: true})
		pairs, err := c.Compose(Input{Fronts: fs})
		if err != nil {
			t.Fatal(err)
		}
		if len(Pages(pairs)) != 1 {
			t.Errorf("Expected 1 page, got %d", len(Pages(pairs)))
		}
	})

	t.Run("filler without shared back stays blank", func(t *testing.T) {
		c, _ := NewComposer(l, Options{})
		all := append(fronts(0), cards.NewSourceImage("front/001.png", cards.RoleFront))
		pairs, err := c.Compose(Input{Fronts: all, DoubleSided: ds})
		if err != nil {
			t.Fatal(err)
		}
		if s := pairs[0].Back.Slots[1]; s.Kind != Filler || s.Image != nil {
			t.Errorf("Expected blank filler back, got %+v", s)
		}
	})
}

func TestComposeSkipIndex(t *testing.T) {
	l := lookup(t, "a4", "poker")
	c, err := NewComposer(l, Options{Skip: []int{0}})
	if err != nil {
		t.Fatal(err)
	}
	pairs, err := c.Compose(Input{Fronts: fronts(7), Backs: sharedBackList()})
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 1 {
		t.Fatalf("Expected 1 pair, got %d", len(pairs))
	}
	if pairs[0].Front.Slots[0].Kind != Skipped || pairs[0].Back.Slots[0].Kind != Skipped {
		t.Error("slot 0 must be skipped on front and back")
	}
	for i := 1; i < 8; i++ {
		s := pairs[0].Front.Slots[i]
		if s.Kind != Image || s.Image.Path != fmt.Sprintf("front/%03d.png", i-1) {
			t.Errorf("slot %d: got %+v", i, s)
		}
	}
}

func TestComposeSkipReinsertion(t *testing.T) {
	l := lookup(t, "letter", "poker")
	skip := []int{0, 4, 8}
	for f := 1; f <= 20; f++ {
		c, err := NewComposer(l, Options{Skip: skip})
		if err != nil {
			t.Fatal(err)
		}
		pairs, err := c.Compose(Input{Fronts: fronts(f), Backs: sharedBackList()})
		if err != nil {
			t.Fatalf("F=%d: %v", f, err)
		}
		for _, p := range pairs {
			for _, k := range skip {
				if p.Front.Slots[k].Kind != Skipped || p.Back.Slots[k].Kind != Skipped {
					t.Errorf("F=%d sheet %d: slot %d not skipped", f, p.Front.Index, k)
				}
			}
		}
		got := placedFronts(pairs)
		if len(got) != f {
			t.Errorf("F=%d: placed %d fronts", f, len(got))
		}
		if st := Count(pairs); st.Skipped != len(skip)*st.Pages {
			t.Errorf("F=%d: skipped %d, want %d", f, st.Skipped, len(skip)*st.Pages)
		}
	}
}

func TestComposePairingStable(t *testing.T) {
	l := lookup(t, "letter", "poker")
	fs := fronts(12)
	var ds []cards.SourceImage
	for _, f := range fs {
		ds = append(ds, cards.NewSourceImage("ds/"+f.Key+".jpg", cards.RoleDoubleSided))
	}
	c, _ := NewComposer(l, Options{Skip: []int{3}})
	pairs, err := c.Compose(Input{Fronts: fs, DoubleSided: ds})
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range pairs {
		for i, s := range p.Front.Slots {
			if s.Kind != Image {
				continue
			}
			b := p.Back.Slots[i]
			if b.Image == nil || b.Image.Key != s.Image.Key {
				t.Errorf("sheet %d slot %d: front %s paired with %+v", p.Front.Index, i, s.Image.Key, b.Image)
			}
		}
	}
}

func TestNewComposerInvalidSkip(t *testing.T) {
	l := lookup(t, "letter", "poker")
	tests := []struct {
		name string
		skip []int
	}{
		{"negative", []int{-1}},
		{"past capacity", []int{9}},
		{"everything", []int{0, 1, 2, 3, 4, 5, 6, 7, 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewComposer(l, Options{Skip: tt.skip}); !errors.Is(err, ErrInvalidSkip) {
				t.Errorf("Expected ErrInvalidSkip, got %v", err)
			}
		})
	}
}

func TestImagesDistinct(t *testing.T) {
	c, _ := NewComposer(lookup(t, "letter", "poker"), Options{})
	pairs, _ := c.Compose(Input{Fronts: fronts(10), Backs: sharedBackList()})
	imgs := Images(pairs)
	if len(imgs) != 11 {
		t.Errorf("Expected 10 fronts + 1 shared back, got %d", len(imgs))
	}
}
