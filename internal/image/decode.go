package imagepkg

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var ErrDecode = errors.New("cannot decode image")

// DecodeFile opens and decodes an image from disk, honouring EXIF orientation.
func DecodeFile(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrDecode, path, err)
	}
	return img, nil
}
