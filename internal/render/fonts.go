package render

import (
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// loadFont parses a custom TTF/OTF, falling back to the embedded Go font
// when path is empty or unreadable.
func loadFont(path string) (*opentype.Font, error) {
	data := goregular.TTF
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("Could not load label font, using default", "path", path, "err", err)
		} else {
			data = b
		}
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return f, nil
}

// face returns a face whose em size is px pixels.
func face(f *opentype.Font, px float64) (font.Face, error) {
	fc, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    px,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	return fc, nil
}
