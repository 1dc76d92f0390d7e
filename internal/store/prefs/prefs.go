// Package prefs persists client display preferences.
//
// Single JSON file in the config dir, human-readable. Writes go through a
// temp file and rename so a watcher never sees a half-written file.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const fileName = "prefs.json"

// Prefs is everything the client remembers between runs.
type Prefs struct {
	DarkMode bool `json:"dark_mode"`
}

// Store reads and writes prefs.json under Dir.
type Store struct {
	Dir string
}

// Path is the preferences file location.
func (s Store) Path() string { return filepath.Join(s.Dir, fileName) }

// Load returns the stored preferences; a missing file yields the zero value.
func (s Store) Load() (Prefs, error) {
	b, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Prefs{}, nil
		}
		return Prefs{}, fmt.Errorf("read file: %w", err)
	}
	var p Prefs
	if err := json.Unmarshal(b, &p); err != nil {
		return Prefs{}, fmt.Errorf("json unmarshal: %w", err)
	}
	return p, nil
}

// Save writes p atomically.
func (s Store) Save(p Prefs) error {
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	tmp, err := os.CreateTemp(s.Dir, fileName+".*")
	if err != nil {
		return fmt.Errorf("temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// SetDarkMode loads, updates and saves the dark-mode flag.
func (s Store) SetDarkMode(on bool) error {
	p, err := s.Load()
	if err != nil {
		// A corrupt file is replaced rather than blocking the toggle.
		p = Prefs{}
	}
	p.DarkMode = on
	return s.Save(p)
}
