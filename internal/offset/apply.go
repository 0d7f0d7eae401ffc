package offset

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	imagepkg "github.com/youruser/deckprint/internal/image"
	"github.com/youruser/deckprint/internal/layout"
	"github.com/youruser/deckprint/internal/util"
)

// IsBackPage reports whether 1-based page n is a back page. Pages
// alternate front, back, front, back.
func IsBackPage(n int) bool {
	return n%2 == 0
}

func points(v int) float64 {
	return float64(v) * 72 / layout.ReferencePPI
}

// ApplyPDF rewrites the document at in to out with every back page
// translated by s. Front pages are copied in place. A zero offset copies
// the file unchanged. in and out may be the same path.
func ApplyPDF(in, out string, s Settings) error {
	if s.IsZero() {
		if in == out {
			return nil
		}
		return util.CopyFile(in, out)
	}

	dims, err := api.PageDimsFile(in)
	if err != nil {
		return fmt.Errorf("read pages of %s: %w", in, err)
	}
	if len(dims) == 0 {
		return fmt.Errorf("%s has no pages", in)
	}
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: dims[0].Width, Ht: dims[0].Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("deckprint", true)

	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(data))
	for i, d := range dims {
		n := i + 1
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: d.Width, Ht: d.Height})
		tpl := importer.ImportPageFromStream(pdf, &rs, n, "/MediaBox")
		x, y := 0.0, 0.0
		if IsBackPage(n) {
			x, y = points(s.X), points(s.Y)
		}
		importer.UseImportedTemplate(pdf, tpl, x, y, d.Width, d.Height)
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("page %d of %s: %w", n, in, err)
		}
	}

	return util.WriteFileAtomic(out, func(w io.Writer) error {
		return pdf.Output(w)
	})
}

// ApplyImage shifts page n by s when it is a back page, at ppi.
func ApplyImage(page image.Image, n int, s Settings, ppi int) image.Image {
	if s.IsZero() || !IsBackPage(n) {
		return page
	}
	return imagepkg.Shift(page, layout.ScaleLen(s.X, ppi), layout.ScaleLen(s.Y, ppi))
}
