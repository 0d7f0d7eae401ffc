package imagepkg

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// Placement is one prepared image and the slot rectangle it fills.
type Placement struct {
	Rect  image.Rectangle
	Image image.Image
}

// ComposePage draws placements over a page background. Images must
// already match their slot size; nothing is rescaled here.
func ComposePage(size image.Point, background func(draw.Image), placements []Placement) (*image.NRGBA, error) {
	canvas := imaging.New(size.X, size.Y, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	if background != nil {
		background(canvas)
	}

	for _, pl := range placements {
		if pl.Image == nil {
			continue
		}
		if got := pl.Image.Bounds().Size(); got != pl.Rect.Size() {
			return nil, fmt.Errorf("image %v does not fit slot %v", got, pl.Rect)
		}
		if !pl.Rect.In(canvas.Bounds()) {
			return nil, fmt.Errorf("slot %v outside page %v", pl.Rect, canvas.Bounds())
		}
		canvas = imaging.Paste(canvas, pl.Image, pl.Rect.Min)
	}
	return canvas, nil
}

// Shift moves img by (dx, dy) pixels on a white canvas of the same size.
// Content pushed past the edge is lost.
func Shift(img image.Image, dx, dy int) *image.NRGBA {
	b := img.Bounds()
	out := imaging.New(b.Dx(), b.Dy(), color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	if dx == 0 && dy == 0 {
		return imaging.Clone(img)
	}
	return imaging.Paste(out, img, image.Pt(dx, dy))
}
