package cards

import (
	"path/filepath"
	"strings"
)

// Role is the face a source image is used for.
type Role string

const (
	RoleFront       Role = "front"
	RoleBack        Role = "back"
	RoleDoubleSided Role = "double_sided"
)

// SourceImage is a read-only handle to an image file on disk.
type SourceImage struct {
	Path   string `json:"path" yaml:"path"`
	Role   Role   `json:"role" yaml:"role"`
	Key    string `json:"key" yaml:"key"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

// PairingKey is the filename stem; the extension never takes part in pairing.
func PairingKey(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// NewSourceImage builds a handle without touching the disk.
func NewSourceImage(path string, role Role) SourceImage {
	return SourceImage{Path: path, Role: role, Key: PairingKey(path)}
}
