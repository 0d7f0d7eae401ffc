package offset

import (
	"fmt"
	"image"
	"io"
	"strconv"

	"codeberg.org/go-pdf/fpdf"

	"github.com/youruser/deckprint/internal/layout"
	"github.com/youruser/deckprint/internal/util"
)

// Calibration ruler geometry, in reference pixels.
const (
	calStep   = 6
	calTicks  = 10
	calMajor  = 5
	calCross  = 120
	calTickPx = 18
)

// CalibrationSheet writes a two page PDF for measuring the offset. The front
// has a crosshair at the page centre, the back has rulers through the same
// point. Printed duplex and held to a light, the ruler value under the
// crosshair on each axis is the offset to save.
func CalibrationSheet(paper image.Point, path string) error {
	w, h := points(paper.X), points(paper.Y)
	cx, cy := w/2, h/2

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("deckprint", true)
	pdf.SetTitle("Offset calibration", true)
	pdf.SetFont("Helvetica", "", 9)

	// front
	pdf.AddPage()
	pdf.SetLineWidth(0.5)
	arm := points(calCross)
	pdf.Line(cx-arm, cy, cx+arm, cy)
	pdf.Line(cx, cy-arm, cx, cy+arm)
	pdf.Circle(cx, cy, points(calStep), "D")
	pdf.Text(cx-arm, cy+arm+24, "Front: print duplex, hold to a light, read the back ruler under the cross.")

	// back
	pdf.AddPage()
	pdf.SetLineWidth(0.3)
	span := points(calStep * calTicks)
	pdf.Line(cx-span, cy, cx+span, cy)
	pdf.Line(cx, cy-span, cx, cy+span)
	for k := -calTicks; k <= calTicks; k++ {
		v := k * calStep
		d := points(v)
		tick := points(calTickPx) / 2
		if k%calMajor == 0 {
			tick *= 2
			label := strconv.Itoa(v)
			pdf.Text(cx+d-pdf.GetStringWidth(label)/2, cy-tick-3, label)
			pdf.Text(cx+tick+3, cy+d+3, label)
		}
		pdf.Line(cx+d, cy-tick, cx+d, cy+tick)
		pdf.Line(cx-tick, cy+d, cx+tick, cy+d)
	}
	pdf.Text(cx-span, cy+span+24, fmt.Sprintf("Back: x along the horizontal ruler, y along the vertical, in pixels at %d PPI.", layout.ReferencePPI))

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("calibration sheet: %w", err)
	}
	return util.WriteFileAtomic(path, func(wr io.Writer) error {
		return pdf.Output(wr)
	})
}
