package imagepkg

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// Unit of a Length.
type Unit string

const (
	Millimeter Unit = "mm"
	Inch       Unit = "in"
	Pixel      Unit = "px"
)

// Length is an absolute margin such as "3mm", "0.1in" or "12px".
type Length struct {
	Value float64
	Unit  Unit
}

func (l Length) String() string {
	if l.Value == 0 {
		return "0"
	}
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + string(l.Unit)
}

// IsZero reports whether the length removes nothing.
func (l Length) IsZero() bool { return l.Value == 0 }

// ParseLength parses a length; a bare number is millimeters.
func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return Length{}, nil
	}
	unit := Millimeter
	for _, u := range []Unit{Millimeter, Inch, Pixel} {
		if strings.HasSuffix(s, string(u)) {
			unit = u
			s = strings.TrimSpace(strings.TrimSuffix(s, string(u)))
			break
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Length{}, fmt.Errorf("invalid length %q: %w", s, err)
	}
	if v < 0 {
		return Length{}, fmt.Errorf("length must not be negative: %v", v)
	}
	return Length{Value: v, Unit: unit}, nil
}

// Pixels converts the length to pixels at ppi.
func (l Length) Pixels(ppi float64) int {
	switch l.Unit {
	case Pixel:
		return int(l.Value + 0.5)
	case Inch:
		return int(l.Value*ppi + 0.5)
	default:
		return int(l.Value/25.4*ppi + 0.5)
	}
}

// UnmarshalText lets Length be read straight from YAML and flags.
func (l *Length) UnmarshalText(b []byte) error {
	v, err := ParseLength(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// MarshalText writes the canonical form.
func (l Length) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// CropMargin removes margin pixels from all four edges.
func CropMargin(img image.Image, margin int) (image.Image, error) {
	if margin <= 0 {
		return img, nil
	}
	b := img.Bounds()
	if 2*margin >= b.Dx() || 2*margin >= b.Dy() {
		return nil, fmt.Errorf("crop of %dpx leaves nothing of a %dx%d image", margin, b.Dx(), b.Dy())
	}
	return imaging.Crop(img, b.Inset(margin)), nil
}

// ExtendCorners pulls the image inward by radius pixels and replicates the
// new edge outward again, so rounded or ragged corners become solid colour
// out to the cut line. The size is unchanged. Radius 0 returns img as is.
func ExtendCorners(img image.Image, radius int) (image.Image, error) {
	if radius <= 0 {
		return img, nil
	}
	b := img.Bounds()
	if 2*radius >= b.Dx() || 2*radius >= b.Dy() {
		return nil, fmt.Errorf("corner extension of %dpx too large for a %dx%d image", radius, b.Dx(), b.Dy())
	}
	src := imaging.Clone(img)
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		sy := clamp(y, radius, h-1-radius)
		for x := 0; x < w; x++ {
			sx := clamp(x, radius, w-1-radius)
			dst.SetNRGBA(x, y, src.NRGBAAt(sx, sy))
		}
	}
	return dst, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
