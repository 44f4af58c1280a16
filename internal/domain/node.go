package domain

import "strings"

// NodeType represents the kind of catalog entity
type NodeType string

const (
	NodeTypeMission  NodeType = "mission"
	NodeTypeProduct  NodeType = "product"
	NodeTypeDocument NodeType = "document"
	NodeTypeLocation NodeType = "location"
	NodeTypeUser     NodeType = "user"
	NodeTypeProcess  NodeType = "process"
)

// NodeTypes lists every valid node type in display order
var NodeTypes = []NodeType{
	NodeTypeMission,
	NodeTypeProduct,
	NodeTypeDocument,
	NodeTypeLocation,
	NodeTypeUser,
	NodeTypeProcess,
}

// Valid reports whether t is one of the known node types
func (t NodeType) Valid() bool {
	for _, known := range NodeTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Position is the presentation-only placement of a node
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node represents a typed entity in the knowledge catalog.
//
// Connections is derived by the graph store from the edge list and is never
// taken from ingestion input.
type Node struct {
	ID          string         `json:"id"`
	Label       string         `json:"label"`
	Type        NodeType       `json:"type"`
	Position    *Position      `json:"position,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Connections []string       `json:"connections"`
}

// NewNode creates a node with initialized metadata
func NewNode(id string, nodeType NodeType, label string) *Node {
	return &Node{
		ID:          id,
		Type:        nodeType,
		Label:       label,
		Metadata:    make(map[string]any),
		Connections: make([]string, 0),
	}
}

// GetMetadata gets a metadata value
func (n *Node) GetMetadata(key string) (any, bool) {
	if n.Metadata == nil {
		return nil, false
	}
	val, ok := n.Metadata[key]
	return val, ok
}

// GetMetadataString gets a metadata value as a string
func (n *Node) GetMetadataString(key string) string {
	val, ok := n.GetMetadata(key)
	if !ok {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

// Aliases returns the curated alternative surface forms of the node label,
// authored as a comma-separated "aliases" metadata entry.
func (n *Node) Aliases() []string {
	raw := n.GetMetadataString("aliases")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if alias := strings.TrimSpace(part); alias != "" {
			out = append(out, alias)
		}
	}
	return out
}

// IsConnectedTo reports whether id is among the derived connections
func (n *Node) IsConnectedTo(id string) bool {
	for _, c := range n.Connections {
		if c == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers cannot mutate a published snapshot
func (n Node) Clone() Node {
	out := n
	if n.Position != nil {
		pos := *n.Position
		out.Position = &pos
	}
	if n.Metadata != nil {
		out.Metadata = make(map[string]any, len(n.Metadata))
		for k, v := range n.Metadata {
			out.Metadata[k] = v
		}
	}
	out.Connections = append(make([]string, 0, len(n.Connections)), n.Connections...)
	return out
}
