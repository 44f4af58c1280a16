package domain

// NodeRecord is a node as supplied by the content-ingestion collaborator.
// It has no connections field: adjacency is derived from edges.
type NodeRecord struct {
	ID       string         `json:"id" yaml:"id" validate:"required"`
	Label    string         `json:"label" yaml:"label" validate:"required"`
	Type     NodeType       `json:"type" yaml:"type" validate:"required,nodetype"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Position *Position      `json:"position,omitempty" yaml:"position,omitempty"`
}

// EdgeRecord is an edge as supplied by the content-ingestion collaborator
type EdgeRecord struct {
	From  string   `json:"from" yaml:"from" validate:"required"`
	To    string   `json:"to" yaml:"to" validate:"required"`
	Label string   `json:"label" yaml:"label"`
	Type  EdgeType `json:"type" yaml:"type" validate:"required,edgetype"`
}

// CatalogFragment is a single ingestion batch of node and edge records
type CatalogFragment struct {
	Nodes []NodeRecord `json:"nodes" yaml:"nodes"`
	Edges []EdgeRecord `json:"edges" yaml:"edges"`
}

// NewCatalogFragment creates an empty catalog fragment
func NewCatalogFragment() *CatalogFragment {
	return &CatalogFragment{
		Nodes: make([]NodeRecord, 0),
		Edges: make([]EdgeRecord, 0),
	}
}

// AddNode adds a node record to the fragment
func (f *CatalogFragment) AddNode(rec NodeRecord) {
	f.Nodes = append(f.Nodes, rec)
}

// AddEdge adds an edge record to the fragment
func (f *CatalogFragment) AddEdge(rec EdgeRecord) {
	f.Edges = append(f.Edges, rec)
}

// ToEdge converts the record into a domain edge
func (r EdgeRecord) ToEdge() Edge {
	return Edge{From: r.From, To: r.To, Label: r.Label, Type: r.Type}
}
