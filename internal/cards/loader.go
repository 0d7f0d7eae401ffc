package cards

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// LoadDir lists the images in dir, sorted by filename, tagged with role.
// A missing directory is not an error: the role simply has no images.
func LoadDir(dir string, role Role) ([]SourceImage, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var out []SourceImage
	for _, e := range entries {
		if e.IsDir() || !IsImageFile(e.Name()) {
			continue
		}
		img := NewSourceImage(filepath.Join(dir, e.Name()), role)
		readSize(&img)
		out = append(out, img)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// LoadFiles builds handles for an explicit, already ordered path list.
func LoadFiles(paths []string, role Role) []SourceImage {
	out := make([]SourceImage, 0, len(paths))
	for _, p := range paths {
		img := NewSourceImage(p, role)
		readSize(&img)
		out = append(out, img)
	}
	return out
}

// readSize fills in raw pixel dimensions. Failures are left for the preparer
// to report, since that is where decoding actually happens.
func readSize(img *SourceImage) {
	f, err := os.Open(img.Path)
	if err != nil {
		return
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		slog.Debug("Could not read image header", "path", img.Path, "err", err)
		return
	}
	img.Width, img.Height = cfg.Width, cfg.Height
}

// Inputs is the resolved image set for one run.
type Inputs struct {
	Fronts      []SourceImage
	Backs       []SourceImage
	DoubleSided []SourceImage
	Filler      *SourceImage
}

// LoadInputs scans the three role directories.
func LoadInputs(frontDir, backDir, doubleSidedDir, filler string) (Inputs, error) {
	var in Inputs
	var err error
	if in.Fronts, err = LoadDir(frontDir, RoleFront); err != nil {
		return in, err
	}
	if in.Backs, err = LoadDir(backDir, RoleBack); err != nil {
		return in, err
	}
	if in.DoubleSided, err = LoadDir(doubleSidedDir, RoleDoubleSided); err != nil {
		return in, err
	}
	if filler != "" {
		f := LoadFiles([]string{filler}, RoleFront)[0]
		in.Filler = &f
	}
	for _, b := range Unpaired(in.Fronts, in.DoubleSided) {
		slog.Warn("Double-sided back has no matching front", "path", b.Path, "key", b.Key)
	}
	return in, nil
}
