package codec

import (
	"fmt"
	"io"
	"time"

	"mosdacbot/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles catalog YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// yamlFragment represents the YAML structure for catalog data
type yamlFragment struct {
	Nodes []yamlNode `yaml:"nodes"`
	Edges []yamlEdge `yaml:"edges"`
}

type yamlNode struct {
	ID         string           `yaml:"id"`
	Type       string           `yaml:"type"`
	Label      string           `yaml:"label"`
	Metadata   map[string]any   `yaml:"metadata,omitempty"`
	Properties map[string]any   `yaml:"properties,omitempty"`
	Position   *domain.Position `yaml:"position,omitempty"`
}

// Edges are written with from/to. source/target is accepted on import
// because graph visualization exports use it.
type yamlEdge struct {
	From   string `yaml:"from,omitempty"`
	To     string `yaml:"to,omitempty"`
	Source string `yaml:"source,omitempty"`
	Target string `yaml:"target,omitempty"`
	Type   string `yaml:"type"`
	Label  string `yaml:"label,omitempty"`
}

// Parse imports catalog data from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*domain.CatalogFragment, error) {
	var yf yamlFragment
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&yf); err != nil {
		if err == io.EOF {
			return domain.NewCatalogFragment(), nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	fragment := domain.NewCatalogFragment()

	for _, yn := range yf.Nodes {
		rec := domain.NodeRecord{
			ID:       yn.ID,
			Type:     domain.NodeType(yn.Type),
			Label:    yn.Label,
			Position: yn.Position,
		}
		if len(yn.Properties) > 0 || len(yn.Metadata) > 0 {
			rec.Metadata = make(map[string]any, len(yn.Properties)+len(yn.Metadata))
			for k, v := range yn.Properties {
				rec.Metadata[k] = scalar(v)
			}
			// metadata wins over the legacy properties key
			for k, v := range yn.Metadata {
				rec.Metadata[k] = scalar(v)
			}
		}
		fragment.AddNode(rec)
	}

	for _, ye := range yf.Edges {
		rec := domain.EdgeRecord{
			From:  ye.From,
			To:    ye.To,
			Type:  domain.EdgeType(ye.Type),
			Label: ye.Label,
		}
		if rec.From == "" {
			rec.From = ye.Source
		}
		if rec.To == "" {
			rec.To = ye.Target
		}
		fragment.AddEdge(rec)
	}

	return fragment, nil
}

// Export exports catalog data to YAML
func (c *YAMLCodec) Export(fragment *domain.CatalogFragment, w io.Writer) error {
	yf := yamlFragment{
		Nodes: make([]yamlNode, 0, len(fragment.Nodes)),
		Edges: make([]yamlEdge, 0, len(fragment.Edges)),
	}

	for _, node := range fragment.Nodes {
		yf.Nodes = append(yf.Nodes, yamlNode{
			ID:       node.ID,
			Type:     string(node.Type),
			Label:    node.Label,
			Metadata: node.Metadata,
			Position: node.Position,
		})
	}

	for _, edge := range fragment.Edges {
		yf.Edges = append(yf.Edges, yamlEdge{
			From:  edge.From,
			To:    edge.To,
			Type:  string(edge.Type),
			Label: edge.Label,
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&yf); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}

// scalar flattens YAML timestamps to strings; other values pass through
func scalar(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.Format(time.RFC3339)
	}
	return v
}
