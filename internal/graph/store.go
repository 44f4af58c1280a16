// Package graph holds the immutable catalog snapshot and the searches over it.
//
// A Store is built once from an ingestion batch by Load. Load validates the
// records, rejects dangling edges and computes every node's connections from
// the edge list. After Load returns, the Store is never mutated, so any number
// of goroutines may read it without locking.
package graph

import (
	"fmt"
	"sort"
	"time"

	"mosdacbot/internal/domain"

	"github.com/go-playground/validator/v10"
)

// MaxRelated caps the number of nodes returned by Related
const MaxRelated = 20

// Store is a validated, read-only catalog snapshot
type Store struct {
	nodes    []domain.Node
	index    map[string]int
	edges    []domain.Edge
	incident map[string][]int
	loadedAt time.Time
}

// Stats summarizes a snapshot
type Stats struct {
	NodeCount int      `json:"node_count"`
	EdgeCount int      `json:"edge_count"`
	NodeTypes []string `json:"node_types"`
	EdgeTypes []string `json:"edge_types"`
}

// RelatedNode is a node reachable from a start node within a bounded depth
type RelatedNode struct {
	Node     domain.Node       `json:"node"`
	Distance int               `json:"distance"`
	Path     []domain.EdgeType `json:"path"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("nodetype", func(fl validator.FieldLevel) bool {
		return domain.NodeType(fl.Field().String()).Valid()
	})
	v.RegisterValidation("edgetype", func(fl validator.FieldLevel) bool {
		return domain.EdgeType(fl.Field().String()).Valid()
	})
	return v
}

// LoadFragment builds a Store from an ingestion batch
func LoadFragment(f *domain.CatalogFragment) (*Store, error) {
	if f == nil {
		return Load(nil, nil)
	}
	return Load(f.Nodes, f.Edges)
}

// Load validates the records and builds a Store. On any error no Store is
// returned, so a corrupt catalog can never be published.
func Load(nodes []domain.NodeRecord, edges []domain.EdgeRecord) (*Store, error) {
	s := &Store{
		nodes:    make([]domain.Node, 0, len(nodes)),
		index:    make(map[string]int, len(nodes)),
		edges:    make([]domain.Edge, 0, len(edges)),
		incident: make(map[string][]int, len(nodes)),
		loadedAt: time.Now(),
	}

	for i, rec := range nodes {
		if err := validateNodeRecord(rec); err != nil {
			return nil, &domain.ValidationError{
				Kind:   domain.InvalidRecord,
				NodeID: rec.ID,
				Err:    fmt.Errorf("node %d: %w", i, err),
			}
		}
		if _, exists := s.index[rec.ID]; exists {
			return nil, &domain.ValidationError{Kind: domain.DuplicateNode, NodeID: rec.ID}
		}

		node := domain.NewNode(rec.ID, rec.Type, rec.Label)
		for k, v := range rec.Metadata {
			node.Metadata[k] = v
		}
		if rec.Position != nil {
			pos := *rec.Position
			node.Position = &pos
		}

		s.index[rec.ID] = len(s.nodes)
		s.nodes = append(s.nodes, *node)
	}

	for i, rec := range edges {
		edge := rec.ToEdge()
		if err := validate.Struct(rec); err != nil {
			return nil, &domain.ValidationError{
				Kind: domain.InvalidRecord,
				Edge: &edge,
				Err:  fmt.Errorf("edge %d: %w", i, err),
			}
		}
		_, fromOK := s.index[edge.From]
		_, toOK := s.index[edge.To]
		if !fromOK || !toOK {
			return nil, &domain.ValidationError{Kind: domain.DanglingEdge, Edge: &edge}
		}
		s.edges = append(s.edges, edge)
	}

	s.deriveConnections()

	return s, nil
}

func validateNodeRecord(rec domain.NodeRecord) error {
	if err := validate.Struct(rec); err != nil {
		return err
	}
	for k, v := range rec.Metadata {
		if !isScalar(v) {
			return fmt.Errorf("metadata %q: value of type %T is not a scalar", k, v)
		}
	}
	return nil
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

// deriveConnections rebuilds incident edge lists and connections from s.edges
func (s *Store) deriveConnections() {
	for i, edge := range s.edges {
		s.incident[edge.From] = append(s.incident[edge.From], i)
		if !edge.IsSelfLoop() {
			s.incident[edge.To] = append(s.incident[edge.To], i)
		}

		s.connect(edge.From, edge.To)
		s.connect(edge.To, edge.From)
	}
}

func (s *Store) connect(id, neighbor string) {
	node := &s.nodes[s.index[id]]
	if !node.IsConnectedTo(neighbor) {
		node.Connections = append(node.Connections, neighbor)
	}
}

// Len returns the number of nodes
func (s *Store) Len() int {
	return len(s.nodes)
}

// LoadedAt returns when the snapshot was built
func (s *Store) LoadedAt() time.Time {
	return s.loadedAt
}

// Node returns a copy of the node with the given id
func (s *Store) Node(id string) (domain.Node, error) {
	i, ok := s.index[id]
	if !ok {
		return domain.Node{}, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	return s.nodes[i].Clone(), nil
}

// Has reports whether the id is in the catalog
func (s *Store) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// EdgesOf returns every edge incident to id in catalog order
func (s *Store) EdgesOf(id string) []domain.Edge {
	idx := s.incident[id]
	out := make([]domain.Edge, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.edges[i])
	}
	return out
}

// Nodes returns copies of every node in catalog order
func (s *Store) Nodes() []domain.Node {
	out := make([]domain.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n.Clone())
	}
	return out
}

// Edges returns every edge in catalog order
func (s *Store) Edges() []domain.Edge {
	return append(make([]domain.Edge, 0, len(s.edges)), s.edges...)
}

// Related walks the undirected adjacency breadth-first from id and returns
// nodes at distance 1..maxDepth, ordered by distance then label, capped at
// MaxRelated.
func (s *Store) Related(id string, maxDepth int) ([]RelatedNode, error) {
	if !s.Has(id) {
		return nil, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	if maxDepth < 1 {
		maxDepth = 1
	}

	type visit struct {
		id   string
		path []domain.EdgeType
	}

	seen := map[string]bool{id: true}
	frontier := []visit{{id: id}}
	out := make([]RelatedNode, 0)

	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []visit
		for _, v := range frontier {
			for _, ei := range s.incident[v.id] {
				edge := s.edges[ei]
				other := edge.Other(v.id)
				if seen[other] {
					continue
				}
				seen[other] = true

				path := append(append([]domain.EdgeType{}, v.path...), edge.Type)
				next = append(next, visit{id: other, path: path})
				out = append(out, RelatedNode{
					Node:     s.nodes[s.index[other]].Clone(),
					Distance: depth,
					Path:     path,
				})
			}
		}
		frontier = next
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Node.Label < out[j].Node.Label
	})
	if len(out) > MaxRelated {
		out = out[:MaxRelated]
	}
	return out, nil
}

// Stats returns counts and the distinct node and edge types in the snapshot
func (s *Store) Stats() Stats {
	nodeTypes := make(map[string]bool)
	for _, n := range s.nodes {
		nodeTypes[string(n.Type)] = true
	}
	edgeTypes := make(map[string]bool)
	for _, e := range s.edges {
		edgeTypes[string(e.Type)] = true
	}
	return Stats{
		NodeCount: len(s.nodes),
		EdgeCount: len(s.edges),
		NodeTypes: sortedKeys(nodeTypes),
		EdgeTypes: sortedKeys(edgeTypes),
	}
}

// Fragment exports the snapshot back into an ingestion batch.
// Derived connections are not part of the output.
func (s *Store) Fragment() *domain.CatalogFragment {
	f := domain.NewCatalogFragment()
	for _, n := range s.nodes {
		c := n.Clone()
		f.AddNode(domain.NodeRecord{
			ID:       c.ID,
			Label:    c.Label,
			Type:     c.Type,
			Metadata: c.Metadata,
			Position: c.Position,
		})
	}
	for _, e := range s.edges {
		f.AddEdge(domain.EdgeRecord{From: e.From, To: e.To, Label: e.Label, Type: e.Type})
	}
	return f
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
