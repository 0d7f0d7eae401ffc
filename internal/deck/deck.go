// Package deck describes the result of one layout run.
package deck

import (
	imagepkg "github.com/youruser/deckprint/internal/image"
	"github.com/youruser/deckprint/internal/offset"
)

// Summary reports what a run produced.
type Summary struct {
	Paper    string             `json:"paper" yaml:"paper"`
	Card     string             `json:"card" yaml:"card"`
	Sheets   int                `json:"sheets" yaml:"sheets"`
	Pages    int                `json:"pages" yaml:"pages"`
	Placed   int                `json:"placed" yaml:"placed"`
	Fillers  int                `json:"fillers" yaml:"fillers"`
	Skipped  int                `json:"skipped" yaml:"skipped"`
	Failures []imagepkg.Failure `json:"failures,omitempty" yaml:"failures,omitempty"`
	Outputs  []string           `json:"outputs" yaml:"outputs"`
	Offset   offset.Settings    `json:"offset" yaml:"offset"`
}

// OK reports whether every referenced image made it onto a page.
func (s Summary) OK() bool { return len(s.Failures) == 0 }
