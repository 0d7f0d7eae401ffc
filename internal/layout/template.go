package layout

import (
	"image"
	"image/color"
	"image/draw"
)

const (
	TemplateSilhouette = "silhouette"
	TemplateNone       = "none"
)

// Mark geometry in reference pixels. The square sits top-left, the
// L-brackets on the other three corners.
const (
	markInset  = 24  // 2 mm
	markThick  = 12  // 1 mm
	markArm    = 236 // 20 mm
	markSquare = 59  // 5 mm
)

var templates = map[string]func(page image.Point) []image.Rectangle{
	TemplateSilhouette: silhouetteMarks,
	TemplateNone:       func(image.Point) []image.Rectangle { return nil },
}

// HasTemplate reports whether id names a known registration template.
func HasTemplate(id string) bool {
	_, ok := templates[id]
	return ok
}

// Marks returns the registration mark rectangles of a template on a page
// of the given reference size, scaled to ppi.
func Marks(id string, page image.Point, ppi int) []image.Rectangle {
	fn, ok := templates[id]
	if !ok {
		return nil
	}
	ref := fn(page)
	out := make([]image.Rectangle, len(ref))
	for i, r := range ref {
		out[i] = Scale(r, ppi)
	}
	return out
}

func silhouetteMarks(page image.Point) []image.Rectangle {
	w, h := page.X, page.Y
	l, t := markInset, markInset
	r, b := w-markInset, h-markInset
	return []image.Rectangle{
		image.Rect(l, t, l+markSquare, t+markSquare),
		// top-right
		image.Rect(r-markArm, t, r, t+markThick),
		image.Rect(r-markThick, t, r, t+markArm),
		// bottom-left
		image.Rect(l, b-markThick, l+markArm, b),
		image.Rect(l, b-markArm, l+markThick, b),
		// bottom-right
		image.Rect(r-markArm, b-markThick, r, b),
		image.Rect(r-markThick, b-markArm, r, b),
	}
}

// DrawTemplate paints a white page with the template's marks at ppi.
func DrawTemplate(dst draw.Image, id string, page image.Point, ppi int) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	black := image.NewUniform(color.Black)
	for _, m := range Marks(id, page, ppi) {
		draw.Draw(dst, m, black, image.Point{}, draw.Src)
	}
}
