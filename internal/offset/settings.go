// Package offset stores the printer's front/back registration offset and
// applies it to the back pages of rendered output.
package offset

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/youruser/deckprint/internal/util"
)

// EnvPath overrides the default settings location.
const EnvPath = "DECKPRINT_OFFSET_FILE"

// Settings is a shift in reference pixels (300 PPI). Positive X moves back
// pages right, positive Y moves them down.
type Settings struct {
	X     int  `yaml:"x_offset" json:"x_offset"`
	Y     int  `yaml:"y_offset" json:"y_offset"`
	Saved bool `yaml:"saved" json:"saved"`
}

// IsZero reports whether applying s changes nothing.
func (s Settings) IsZero() bool { return s.X == 0 && s.Y == 0 }

// Store persists Settings in a small YAML file.
type Store struct {
	Path string
}

// DefaultPath is $DECKPRINT_OFFSET_FILE, or offset.yaml in the user config dir.
func DefaultPath() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "deckprint", "offset.yaml")
}

// NewStore returns a store at path, or at DefaultPath when path is empty.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{Path: path}
}

// Load returns the saved settings. A missing file is not an error: it
// yields Settings{Saved: false}.
func (s *Store) Load() (Settings, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Settings{}, nil
		}
		return Settings{}, fmt.Errorf("read offset file %s: %w", s.Path, err)
	}
	var st Settings
	if err := yaml.Unmarshal(data, &st); err != nil {
		return Settings{}, fmt.Errorf("parse offset file %s: %w", s.Path, err)
	}
	return st, nil
}

// Save overwrites the settings file atomically.
func (s *Store) Save(x, y int) (Settings, error) {
	st := Settings{X: x, Y: y, Saved: true}
	err := util.WriteFileAtomic(s.Path, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(st); err != nil {
			return err
		}
		return enc.Close()
	})
	if err != nil {
		return Settings{}, fmt.Errorf("save offset to %s: %w", s.Path, err)
	}
	slog.Info("Saved offset", "x", x, "y", y, "path", s.Path)
	return st, nil
}

// Resolve picks the offset for a render: an explicit value wins and is not
// saved; otherwise the persisted value is used when requested, and zero
// when nothing was ever saved.
func Resolve(explicit *Settings, usePersisted bool, store *Store) (Settings, error) {
	if explicit != nil {
		return *explicit, nil
	}
	if !usePersisted {
		return Settings{}, nil
	}
	st, err := store.Load()
	if err != nil {
		return Settings{}, err
	}
	if !st.Saved {
		slog.Info("No saved offset, using zero", "path", store.Path)
		return Settings{}, nil
	}
	return st, nil
}
