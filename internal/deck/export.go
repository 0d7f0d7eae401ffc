package deck

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/youruser/deckprint/internal/util"
)

func ExportSummaryText(s Summary) string {
	lines := []string{
		fmt.Sprintf("# %s / %s", s.Paper, s.Card),
		fmt.Sprintf("%d sheet(s), %d page(s)", s.Sheets, s.Pages),
		fmt.Sprintf("%d card(s) placed, %d filler slot(s), %d skipped slot(s)", s.Placed, s.Fillers, s.Skipped),
	}
	if !s.Offset.IsZero() {
		lines = append(lines, fmt.Sprintf("back offset %d,%d", s.Offset.X, s.Offset.Y))
	}
	for _, f := range s.Failures {
		lines = append(lines, "failed: "+f.Path+": "+f.Reason)
	}
	for _, o := range s.Outputs {
		lines = append(lines, "wrote "+o)
	}
	return strings.Join(lines, "\n")
}

// SaveSummaryYAML writes s to path.
func SaveSummaryYAML(s Summary, path string) error {
	return util.WriteFileAtomic(path, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	})
}
