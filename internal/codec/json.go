package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"mosdacbot/internal/domain"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse imports catalog data from JSON
func (c *JSONCodec) Parse(r io.Reader) (*domain.CatalogFragment, error) {
	fragment := domain.NewCatalogFragment()
	decoder := json.NewDecoder(r)
	decoder.UseNumber()
	if err := decoder.Decode(fragment); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	normalizeNumbers(fragment)
	return fragment, nil
}

// Export exports catalog data to JSON
func (c *JSONCodec) Export(fragment *domain.CatalogFragment, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(fragment); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// normalizeNumbers turns json.Number metadata values into int64 or float64
func normalizeNumbers(f *domain.CatalogFragment) {
	for _, n := range f.Nodes {
		for k, v := range n.Metadata {
			num, ok := v.(json.Number)
			if !ok {
				continue
			}
			if i, err := num.Int64(); err == nil {
				n.Metadata[k] = i
			} else if fl, err := num.Float64(); err == nil {
				n.Metadata[k] = fl
			}
		}
	}
}
