// Package codec converts catalog fragments to and from their file formats.
package codec

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"mosdacbot/internal/domain"
)

// ErrUnsupportedFormat is returned for a format name no codec handles
var ErrUnsupportedFormat = errors.New("unsupported format")

// Importer interface for importing catalog data from various formats
type Importer interface {
	Parse(r io.Reader) (*domain.CatalogFragment, error)
	Format() string
}

// Exporter interface for exporting catalog data to various formats
type Exporter interface {
	Export(fragment *domain.CatalogFragment, w io.Writer) error
	Format() string
}

// Codec is both an Importer and an Exporter
type Codec interface {
	Importer
	Exporter
}

// ForFormat returns the codec registered for a format name
func ForFormat(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
	}
}

// FormatFromPath infers a format name from a file extension
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	case ".db", ".sqlite", ".sqlite3":
		return "sqlite"
	default:
		return ""
	}
}
