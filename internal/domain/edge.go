package domain

import "fmt"

// EdgeType represents the kind of relation between two catalog nodes
type EdgeType string

const (
	EdgeTypeProvides  EdgeType = "provides"
	EdgeTypeContains  EdgeType = "contains"
	EdgeTypeProcesses EdgeType = "processes"
	EdgeTypeAccesses  EdgeType = "accesses"
	EdgeTypeRelated   EdgeType = "related"
)

// EdgeTypes lists every valid edge type
var EdgeTypes = []EdgeType{
	EdgeTypeProvides,
	EdgeTypeContains,
	EdgeTypeProcesses,
	EdgeTypeAccesses,
	EdgeTypeRelated,
}

// Valid reports whether t is one of the known edge types
func (t EdgeType) Valid() bool {
	for _, known := range EdgeTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Edge represents a directed relation between two nodes
type Edge struct {
	From  string   `json:"from"`
	To    string   `json:"to"`
	Label string   `json:"label"`
	Type  EdgeType `json:"type"`
}

// NewEdge creates a new edge
func NewEdge(from, to string, edgeType EdgeType, label string) *Edge {
	return &Edge{
		From:  from,
		To:    to,
		Type:  edgeType,
		Label: label,
	}
}

// Touches reports whether the edge is incident to the node id
func (e Edge) Touches(id string) bool {
	return e.From == id || e.To == id
}

// Other returns the endpoint opposite to id. For self-loops it returns id.
func (e Edge) Other(id string) string {
	if e.From == id {
		return e.To
	}
	return e.From
}

// IsSelfLoop reports whether both endpoints are the same node
func (e Edge) IsSelfLoop() bool {
	return e.From == e.To
}

func (e Edge) String() string {
	return fmt.Sprintf("%s -[%s]-> %s", e.From, e.Type, e.To)
}
