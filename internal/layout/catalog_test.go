package layout

import (
	"errors"
	"image"
	"strings"
	"testing"
)

func TestDefaultCatalogInvariants(t *testing.T) {
	cat, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	if len(cat.Papers) == 0 {
		t.Fatal("expected papers in the embedded catalog")
	}

	for _, paper := range cat.PaperNames() {
		p := cat.Papers[paper]
		bounds := image.Rect(0, 0, p.Width, p.Height)
		for _, card := range cat.CardNames(paper) {
			l, err := cat.Lookup(paper, card)
			if err != nil {
				t.Fatalf("Lookup(%s, %s) error: %v", paper, card, err)
			}
			if l.Capacity() != len(l.XAnchors)*len(l.YAnchors) {
				t.Errorf("%s/%s: capacity %d mismatch", paper, card, l.Capacity())
			}
			for i := 0; i < l.Capacity(); i++ {
				for _, side := range []Side{Front, Back} {
					if r := l.SlotRect(i, side); !r.In(bounds) {
						t.Errorf("%s/%s %s slot %d %v outside %v", paper, card, side, i, r, bounds)
					}
				}
			}
		}
	}
}

func TestLookupCapacities(t *testing.T) {
	cat, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}

	tests := []struct {
		paper, card string
		expected    int
	}{
		{"letter", "poker", 9},
		{"LETTER", "Poker", 9},
		{"a4", "poker", 8},
		{"tabloid", "poker", 16},
	}

	for _, tt := range tests {
		t.Run(tt.paper+"/"+tt.card, func(t *testing.T) {
			l, err := cat.Lookup(tt.paper, tt.card)
			if err != nil {
				t.Fatalf("Lookup error: %v", err)
			}
			if l.Capacity() != tt.expected {
				t.Errorf("Expected capacity %d, got %d", tt.expected, l.Capacity())
			}
		})
	}
}

func TestLookupUnsupported(t *testing.T) {
	cat, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	for _, pair := range [][2]string{{"legal", "poker"}, {"letter", "business"}} {
		_, err := cat.Lookup(pair[0], pair[1])
		if !errors.Is(err, ErrUnsupportedCombination) {
			t.Errorf("Lookup(%s, %s): expected ErrUnsupportedCombination, got %v", pair[0], pair[1], err)
		}
	}
}

func TestMirroredBackSlots(t *testing.T) {
	cat, _ := Default()
	l, err := cat.Lookup("letter", "poker")
	if err != nil {
		t.Fatal(err)
	}
	front := l.SlotRect(0, Front)
	back := l.SlotRect(0, Back)
	if front.Min.Y != back.Min.Y {
		t.Errorf("mirroring must keep the row: %v vs %v", front, back)
	}
	if back.Min.X != l.PaperSize.X-front.Max.X {
		t.Errorf("back slot 0 should mirror the front: front %v back %v", front, back)
	}
	if l.SlotRect(1, Back) != l.SlotRect(1, Front) {
		t.Errorf("centre column of a symmetric grid should not move")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "slot outside paper",
			yaml: `
papers:
  tiny:
    width: 100
    height: 100
    cards:
      poker:
        width: 750
        height: 1050
        x_pos: [0]
        y_pos: [0]
`,
		},
		{
			name: "overlapping anchors",
			yaml: `
papers:
  letter:
    width: 2550
    height: 3300
    cards:
      poker:
        width: 750
        height: 1050
        x_pos: [150, 400]
        y_pos: [100]
`,
		},
		{
			name: "slot over registration mark",
			yaml: `
papers:
  letter:
    width: 2550
    height: 3300
    cards:
      poker:
        width: 750
        height: 1050
        x_pos: [0]
        y_pos: [0]
        template: silhouette
`,
		},
		{
			name: "unknown template",
			yaml: `
papers:
  letter:
    width: 2550
    height: 3300
    cards:
      poker:
        width: 750
        height: 1050
        x_pos: [150]
        y_pos: [100]
        template: cricut
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(tt.yaml)); err == nil {
				t.Error("Expected an error, got nil")
			}
		})
	}
}

func TestScaleKeepsSlotSize(t *testing.T) {
	cat, _ := Default()
	l, _ := cat.Lookup("letter", "poker")
	for _, ppi := range []int{150, 300, 600, 301} {
		want := l.SlotSize(ppi)
		for i := 0; i < l.Capacity(); i++ {
			if got := l.ScaledSlotRect(i, Front, ppi).Size(); got != want {
				t.Errorf("ppi %d slot %d: size %v, want %v", ppi, i, got, want)
			}
		}
	}
}

func TestDrawTemplate(t *testing.T) {
	page := image.Pt(2550, 3300)
	img := image.NewNRGBA(image.Rect(0, 0, page.X/2, page.Y/2))
	DrawTemplate(img, TemplateSilhouette, page, 150)

	// inside the top-left square
	if c := img.NRGBAAt(20, 20); c.R != 0 || c.A != 0xff {
		t.Errorf("Expected black registration square, got %v", c)
	}
	// page centre stays white
	if c := img.NRGBAAt(page.X/4, page.Y/4); c.R != 0xff {
		t.Errorf("Expected white page centre, got %v", c)
	}
}

func TestPaperSizeAndListing(t *testing.T) {
	cat, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	size, err := cat.PaperSize("Letter")
	if err != nil {
		t.Fatal(err)
	}
	if size != image.Pt(2550, 3300) {
		t.Errorf("Expected letter 2550x3300, got %v", size)
	}
	if _, err := cat.PaperSize("folio"); !errors.Is(err, ErrUnsupportedCombination) {
		t.Errorf("Expected ErrUnsupportedCombination, got %v", err)
	}

	all := cat.Layouts()
	total := 0
	for _, p := range cat.PaperNames() {
		total += len(cat.CardNames(p))
	}
	if len(all) != total {
		t.Fatalf("Expected %d layouts, got %d", total, len(all))
	}
	for i := 1; i < len(all); i++ {
		a, b := all[i-1], all[i]
		if a.Paper > b.Paper || (a.Paper == b.Paper && a.Card >= b.Card) {
			t.Errorf("layouts out of order at %d: %s/%s then %s/%s", i, a.Paper, a.Card, b.Paper, b.Card)
		}
	}
}
