package service

import (
	"fmt"
	"sync/atomic"

	"mosdacbot/internal/domain"
	"mosdacbot/internal/graph"
	"mosdacbot/internal/nlp"
)

// Snapshot bundles a validated store with the index and extractor built from it.
// The three always describe the same catalog.
type Snapshot struct {
	Store     *graph.Store
	Index     *graph.Index
	Extractor *nlp.Extractor
	Version   int64
}

// BuildSnapshot validates a fragment and builds the search structures over it.
// Nothing is published; the caller decides whether to swap it in.
func BuildSnapshot(f *domain.CatalogFragment) (*Snapshot, error) {
	store, err := graph.LoadFragment(f)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return &Snapshot{
		Store:     store,
		Index:     graph.NewIndex(store),
		Extractor: nlp.NewExtractor(store.Nodes()),
	}, nil
}

// Catalog holds the currently published snapshot.
// Readers never block; a publish replaces the whole bundle at once.
type Catalog struct {
	current atomic.Pointer[Snapshot]
	version atomic.Int64
}

// NewCatalog publishes the initial snapshot
func NewCatalog(initial *Snapshot) *Catalog {
	c := &Catalog{}
	c.Publish(initial)
	return c
}

// Current returns the published snapshot
func (c *Catalog) Current() *Snapshot {
	return c.current.Load()
}

// Publish swaps in a snapshot and stamps it with the next version
func (c *Catalog) Publish(s *Snapshot) {
	s.Version = c.version.Add(1)
	c.current.Store(s)
}
