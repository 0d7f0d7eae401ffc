package cards

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var ErrDuplicateKey = errors.New("duplicate pairing key")

var supportedExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// IsImageFile reports whether name looks like a decodable card image.
// Hidden files are ignored.
func IsImageFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return supportedExts[strings.ToLower(filepath.Ext(base))]
}

// Index maps pairing keys to their image. Two files sharing a stem
// (a.png and a.jpg) make the pairing ambiguous and are rejected.
func Index(images []SourceImage) (map[string]SourceImage, error) {
	out := make(map[string]SourceImage, len(images))
	for _, img := range images {
		if prev, ok := out[img.Key]; ok {
			return nil, fmt.Errorf("%w %q: %s and %s", ErrDuplicateKey, img.Key, prev.Path, img.Path)
		}
		out[img.Key] = img
	}
	return out, nil
}

// Unpaired returns the double-sided backs whose key matches no front.
func Unpaired(fronts, backs []SourceImage) []SourceImage {
	keys := make(map[string]bool, len(fronts))
	for _, f := range fronts {
		keys[f.Key] = true
	}
	var out []SourceImage
	for _, b := range backs {
		if !keys[b.Key] {
			out = append(out, b)
		}
	}
	return out
}
