// Package profile_loader persists atmosphere profiles as YAML or TOML documents and
// reloads them into a live Profile when the file changes on disk.
package profile_loader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-atmosphere/engine/atmosphere"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var ErrUnsupportedFormat = errors.New("unsupported profile format")

// Format is a profile document encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return "unknown"
	}
}

// FormatFromPath picks the encoding from a file extension (.yaml, .yml or .toml, any case).
//
// Parameters:
//   - path: the profile file path
//
// Returns:
//   - Format: the detected format
//   - error: ErrUnsupportedFormat for any other extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Document is the on-disk shape of a profile.
type Document struct {
	Name     string              `yaml:"name" toml:"name"`
	Settings atmosphere.Settings `yaml:"settings" toml:"settings"`
}

// Decode reads a document. Missing settings fields keep the DefaultSettings values, and
// the result is validated so its internal scale factors are derived.
//
// Parameters:
//   - r: the document source
//   - format: the encoding of r
//
// Returns:
//   - Document: the decoded, validated document
//   - error: a decode error or ErrUnsupportedFormat
func Decode(r io.Reader, format Format) (Document, error) {
	doc := Document{Settings: *atmosphere.DefaultSettings()}

	var err error
	switch format {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&doc)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case FormatTOML:
		err = toml.NewDecoder(r).Decode(&doc)
	default:
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return Document{}, fmt.Errorf("decode %s profile: %w", format, err)
	}

	doc.Settings.Validate()
	return doc, nil
}

// Encode writes a document.
//
// Parameters:
//   - w: the destination
//   - format: the encoding to write
//   - doc: the document
//
// Returns:
//   - error: an encode error or ErrUnsupportedFormat
func Encode(w io.Writer, format Format, doc Document) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml profile: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("encode toml profile: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}
