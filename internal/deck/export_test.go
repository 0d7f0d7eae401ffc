package deck

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	imagepkg "github.com/youruser/deckprint/internal/image"
	"github.com/youruser/deckprint/internal/offset"
)

func sample() Summary {
	return Summary{
		Paper:    "letter",
		Card:     "poker",
		Sheets:   2,
		Pages:    4,
		Placed:   10,
		Fillers:  6,
		Skipped:  2,
		Failures: []imagepkg.Failure{{Path: "f/bad.png", Reason: "decode"}},
		Outputs:  []string{"out/deck.pdf"},
		Offset:   offset.Settings{X: 3, Y: -1},
	}
}

func TestExportSummaryText(t *testing.T) {
	text := ExportSummaryText(sample())
	for _, want := range []string{"# letter / poker", "2 sheet(s), 4 page(s)", "10 card(s) placed", "back offset 3,-1", "failed: f/bad.png", "wrote out/deck.pdf"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in:\n%s", want, text)
		}
	}
	if strings.Contains(ExportSummaryText(Summary{}), "offset") {
		t.Error("zero offset should not be reported")
	}
}

func TestSaveSummaryYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.yaml")
	if err := SaveSummaryYAML(sample(), path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got["pages"] != 4 || got["paper"] != "letter" {
		t.Errorf("unexpected summary %v", got)
	}
	off, ok := got["offset"].(map[string]any)
	if !ok || off["x_offset"] != 3 {
		t.Errorf("Expected the offset keys of the offset file, got %v", got["offset"])
	}
}
