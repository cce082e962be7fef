package profile_loader

import (
	"bytes"
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-atmosphere/engine/atmosphere"
)

// ReadFile decodes the document at path, choosing the format from its extension.
//
// Parameters:
//   - path: the profile file
//
// Returns:
//   - Document: the decoded document; a blank name falls back to the file's base name
//   - error: a read, format or decode error
func ReadFile(path string) (Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Document{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	doc, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	doc.Name = cmp.Or(strings.TrimSpace(doc.Name), strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	return doc, nil
}

// Load reads a profile file into a new Profile.
//
// Parameters:
//   - path: the profile file
//
// Returns:
//   - atmosphere.Profile: the loaded profile
//   - error: a read, format or decode error
func Load(path string) (atmosphere.Profile, error) {
	doc, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	settings := doc.Settings
	return atmosphere.NewProfile(atmosphere.WithName(doc.Name), atmosphere.WithSettings(&settings)), nil
}

// Reload reads a profile file and replaces the settings of an existing profile, notifying its
// subscribers. The profile is left untouched when the file cannot be read.
//
// Parameters:
//   - path: the profile file
//   - profile: the profile to update
//
// Returns:
//   - error: a read, format or decode error
func Reload(path string, profile atmosphere.Profile) error {
	doc, err := ReadFile(path)
	if err != nil {
		return err
	}
	settings := doc.Settings
	profile.SetSettings(&settings)
	return nil
}

// Save writes the profile's current settings to path, choosing the format from its extension.
// The file is written to a sibling temp file first and renamed into place.
//
// Parameters:
//   - path: the destination file
//   - profile: the profile to persist
//
// Returns:
//   - error: a format, encode or write error
func Save(path string, profile atmosphere.Profile) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	snap := profile.Snapshot()
	if snap == nil {
		return fmt.Errorf("profile %q has no settings", profile.Name())
	}

	var buf bytes.Buffer
	if err := Encode(&buf, format, Document{Name: profile.Name(), Settings: *snap}); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".profile-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
