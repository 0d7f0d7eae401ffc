package render

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/youruser/deckprint/internal/layout"
	"github.com/youruser/deckprint/internal/util"
)

// Format is the output artifact type.
type Format string

const (
	FormatPDF Format = "pdf"
	FormatPNG Format = "png"
	FormatJPG Format = "jpg"
)

// ParseFormat accepts pdf, png, jpg and jpeg.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "pdf", "":
		return FormatPDF, nil
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPG, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Sink receives pages in print order. Nothing is visible at the output
// location until Close succeeds; Abort throws away what was written.
type Sink interface {
	WritePage(n int, side layout.Side, page image.Image) error
	Close() error
	Abort()
	// Outputs lists the committed files.
	Outputs() []string
}

// NewSink opens a PDF document at output, or a page image directory.
func NewSink(format Format, output string, paper image.Point, quality int) (Sink, error) {
	if format == FormatPDF {
		return NewPDFSink(output, paper, quality), nil
	}
	return NewImageSink(output, format, quality)
}

// ImageSink writes one image file per page into a directory.
type ImageSink struct {
	dir     string
	tmp     string
	format  Format
	quality int
	names   []string
	done    bool
}

// NewImageSink stages pages in a hidden directory under dir.
func NewImageSink(dir string, format Format, quality int) (*ImageSink, error) {
	if err := util.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	tmp, err := os.MkdirTemp(dir, ".deckprint-partial-*")
	if err != nil {
		return nil, fmt.Errorf("create staging dir in %s: %w", dir, err)
	}
	return &ImageSink{dir: dir, tmp: tmp, format: format, quality: quality}, nil
}

// PageName is the file name of page n.
func PageName(n int, side layout.Side, format Format) string {
	return fmt.Sprintf("page_%03d_%s.%s", n, side, format)
}

func (s *ImageSink) WritePage(n int, side layout.Side, page image.Image) error {
	name := PageName(n, side, s.format)
	path := filepath.Join(s.tmp, name)
	if err := imaging.Save(page, path, imaging.JPEGQuality(s.quality)); err != nil {
		return fmt.Errorf("write page %d to %s: %w", n, filepath.Join(s.dir, name), err)
	}
	s.names = append(s.names, name)
	return nil
}

// Close moves the staged pages into the directory, then removes page files
// of this format left by an earlier run. If a move fails the pages already
// moved go back to staging, so the directory never holds a partial run.
func (s *ImageSink) Close() error {
	var moved []string
	for _, name := range s.names {
		dst := filepath.Join(s.dir, name)
		if err := os.Rename(filepath.Join(s.tmp, name), dst); err != nil {
			s.rollback(moved)
			return fmt.Errorf("commit %s (staged in %s): %w", dst, s.tmp, err)
		}
		moved = append(moved, name)
	}
	if err := s.removeStale(); err != nil {
		return err
	}
	s.done = true
	return os.RemoveAll(s.tmp)
}

func (s *ImageSink) rollback(moved []string) {
	for _, name := range moved {
		if err := os.Rename(filepath.Join(s.dir, name), filepath.Join(s.tmp, name)); err != nil {
			slog.Warn("Could not roll back committed page", "path", filepath.Join(s.dir, name), "err", err)
		}
	}
}

// removeStale deletes page_NNN_<side>.<format> files this run did not write.
func (s *ImageSink) removeStale() error {
	keep := make(map[string]bool, len(s.names))
	for _, name := range s.names {
		keep[name] = true
	}
	for _, side := range []layout.Side{layout.Front, layout.Back} {
		matches, err := filepath.Glob(filepath.Join(s.dir, fmt.Sprintf("page_*_%s.%s", side, s.format)))
		if err != nil {
			return err
		}
		for _, m := range matches {
			if keep[filepath.Base(m)] {
				continue
			}
			if err := os.Remove(m); err != nil {
				return fmt.Errorf("remove stale page %s: %w", m, err)
			}
		}
	}
	return nil
}

func (s *ImageSink) Abort() {
	if err := os.RemoveAll(s.tmp); err != nil {
		slog.Warn("Could not remove partial output", "dir", s.tmp, "err", err)
	}
}

func (s *ImageSink) Outputs() []string {
	if !s.done {
		return nil
	}
	out := make([]string, len(s.names))
	for i, name := range s.names {
		out[i] = filepath.Join(s.dir, name)
	}
	return out
}
