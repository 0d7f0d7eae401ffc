package render

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"codeberg.org/go-pdf/fpdf"
	"github.com/disintegration/imaging"

	"github.com/youruser/deckprint/internal/layout"
	"github.com/youruser/deckprint/internal/util"
)

// PointsPerInch is the PDF user space unit.
const PointsPerInch = 72

// PaperPoints converts a reference paper size to PDF points.
func PaperPoints(paper image.Point) fpdf.SizeType {
	return fpdf.SizeType{
		Wd: float64(paper.X) * PointsPerInch / layout.ReferencePPI,
		Ht: float64(paper.Y) * PointsPerInch / layout.ReferencePPI,
	}
}

// PDFSink collects pages as full-bleed JPEG images in one document.
type PDFSink struct {
	path    string
	size    fpdf.SizeType
	quality int
	pdf     *fpdf.Fpdf
	done    bool
}

// NewPDFSink starts a document whose pages match the paper size.
func NewPDFSink(path string, paper image.Point, quality int) *PDFSink {
	size := PaperPoints(paper)
	pdf := NewDocument(size)
	return &PDFSink{path: path, size: size, quality: quality, pdf: pdf}
}

// NewDocument returns an empty point-unit document with no margins.
func NewDocument(size fpdf.SizeType) *fpdf.Fpdf {
	pdf := fpdf.NewCustom(&fpdf.InitType{UnitStr: "pt", Size: size})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("deckprint", true)
	pdf.SetCatalogSort(true)
	return pdf
}

func (s *PDFSink) WritePage(n int, side layout.Side, page image.Image) error {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, page, imaging.JPEG, imaging.JPEGQuality(s.quality)); err != nil {
		return fmt.Errorf("encode page %d (%s): %w", n, side, err)
	}
	name := fmt.Sprintf("page%d", n)
	opts := fpdf.ImageOptions{ImageType: "JPG"}
	s.pdf.AddPageFormat("P", s.size)
	s.pdf.RegisterImageOptionsReader(name, opts, &buf)
	s.pdf.ImageOptions(name, 0, 0, s.size.Wd, s.size.Ht, false, opts, 0, "")
	if err := s.pdf.Error(); err != nil {
		return fmt.Errorf("add page %d (%s) to %s: %w", n, side, s.path, err)
	}
	return nil
}

func (s *PDFSink) Close() error {
	if err := util.WriteFileAtomic(s.path, func(w io.Writer) error {
		return s.pdf.Output(w)
	}); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	s.done = true
	return nil
}

// Abort drops the in-memory document; nothing was written yet.
func (s *PDFSink) Abort() {
	s.pdf = nil
}

func (s *PDFSink) Outputs() []string {
	if !s.done {
		return nil
	}
	return []string{s.path}
}
