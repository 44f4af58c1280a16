package service

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"time"

	"mosdacbot/internal/codec"
	"mosdacbot/internal/domain"
	"mosdacbot/internal/graph"
	"mosdacbot/internal/nlp"
	"mosdacbot/internal/responder"

	"go.uber.org/zap"
)

// QueryResult is the answer to a free-text help query
type QueryResult struct {
	Intent           string         `json:"intent"`
	Confidence       float64        `json:"confidence"`
	Entities         []string       `json:"entities"`
	ResponseContent  string         `json:"response_content"`
	ResponseMetadata map[string]any `json:"response_metadata"`
}

// NodeDetail is a node together with every edge touching it
type NodeDetail struct {
	Node          domain.Node   `json:"node"`
	IncidentEdges []domain.Edge `json:"incident_edges"`
}

// Health reports which components are loaded
type Health struct {
	Status       string    `json:"status"`
	CatalogNodes int       `json:"catalog_nodes"`
	CatalogEdges int       `json:"catalog_edges"`
	Rules        int       `json:"rules"`
	Sessions     int       `json:"sessions"`
	LoadedAt     time.Time `json:"loaded_at"`
	Version      int64     `json:"catalog_version"`
}

// HelpService answers help-desk queries and catalog browsing requests
// against the currently published catalog.
type HelpService struct {
	// reloadMu makes Reload the single writer of catalog
	reloadMu sync.Mutex

	catalog    *Catalog
	classifier *nlp.Classifier
	composer   *responder.Composer
	sessions   *SessionStore
	eventBus   *EventBus
	metrics    *Metrics
	logger     *zap.Logger
}

// Options configures a HelpService. Zero-value fields get defaults.
type Options struct {
	Classifier *nlp.Classifier
	Composer   *responder.Composer
	EventBus   *EventBus
	Metrics    *Metrics
	Logger     *zap.Logger
}

// NewHelpService publishes initial and returns a service over it
func NewHelpService(initial *Snapshot, opts Options) *HelpService {
	if opts.Classifier == nil {
		opts.Classifier = nlp.DefaultClassifier()
	}
	if opts.Composer == nil {
		opts.Composer = responder.DefaultComposer()
	}
	if opts.EventBus == nil {
		opts.EventBus = NewEventBus()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := &HelpService{
		catalog:    NewCatalog(initial),
		classifier: opts.Classifier,
		composer:   opts.Composer,
		sessions:   NewSessionStore(),
		eventBus:   opts.EventBus,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
	}
	s.metrics.SetCatalogSize(initial.Store.Len(), len(initial.Store.Edges()))
	return s
}

// ClassifyQuery classifies text, extracts the catalog entities it mentions
// and composes the canned response.
func (s *HelpService) ClassifyQuery(text string) (*QueryResult, error) {
	snap := s.catalog.Current()

	result := s.classifier.Classify(text)
	result.Entities = snap.Extractor.Extract(text)

	resp, err := s.composer.Compose(result)
	if err != nil {
		return nil, fmt.Errorf("compose response: %w", err)
	}

	s.metrics.RecordQuery(result.Intent)
	s.logger.Debug("query classified",
		zap.String("intent", result.Intent),
		zap.Float64("confidence", result.Confidence),
		zap.Strings("entities", result.Entities),
	)

	return &QueryResult{
		Intent:           result.Intent,
		Confidence:       result.Confidence,
		Entities:         result.Entities,
		ResponseContent:  resp.Content,
		ResponseMetadata: resp.Metadata,
	}, nil
}

// SearchNodes returns nodes whose label or type contains term.
// A blank term returns the whole catalog.
func (s *HelpService) SearchNodes(term string) []domain.Node {
	return s.catalog.Current().Index.Search(term)
}

// SearchTerms returns nodes matching any key term of a free-text query
func (s *HelpService) SearchTerms(query string) []domain.Node {
	return s.catalog.Current().Index.SearchTerms(query)
}

// GetNodeDetail returns a node and its incident edges
func (s *HelpService) GetNodeDetail(id string) (*NodeDetail, error) {
	store := s.catalog.Current().Store
	node, err := store.Node(id)
	if err != nil {
		return nil, err
	}
	return &NodeDetail{Node: node, IncidentEdges: store.EdgesOf(id)}, nil
}

// Related returns the neighborhood of id up to depth hops
func (s *HelpService) Related(id string, depth int) ([]graph.RelatedNode, error) {
	return s.catalog.Current().Store.Related(id, depth)
}

// Stats summarizes the published catalog
func (s *HelpService) Stats() graph.Stats {
	return s.catalog.Current().Store.Stats()
}

// Export serializes the published catalog in the given format (json or yaml)
func (s *HelpService) Export(format string) ([]byte, error) {
	c, err := codec.ForFormat(format)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := c.Export(s.catalog.Current().Store.Fragment(), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Health reports the loaded components
func (s *HelpService) Health() Health {
	snap := s.catalog.Current()
	return Health{
		Status:       "ok",
		CatalogNodes: snap.Store.Len(),
		CatalogEdges: len(snap.Store.Edges()),
		Rules:        len(s.classifier.Rules()),
		Sessions:     s.sessions.Len(),
		LoadedAt:     snap.Store.LoadedAt(),
		Version:      snap.Version,
	}
}

// Reload validates fragment and, if it loads cleanly, publishes it in place
// of the current catalog. On error the current catalog stays published.
// Concurrent calls are serialized, so the last call to return wins.
func (s *HelpService) Reload(fragment *domain.CatalogFragment) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	snap, err := BuildSnapshot(fragment)
	if err != nil {
		s.metrics.RecordReload(false)
		s.logger.Error("catalog reload rejected, keeping current catalog", zap.Error(err))
		s.eventBus.Publish(Event{
			Type:    EventCatalogReloadError,
			Payload: map[string]string{"error": err.Error()},
		})
		return err
	}

	s.catalog.Publish(snap)
	s.metrics.RecordReload(true)
	s.metrics.SetCatalogSize(snap.Store.Len(), len(snap.Store.Edges()))

	cleared := s.sessions.ClearMissing(snap.Store.Has)
	for _, sid := range cleared {
		s.publishSelection(sid, domain.Selection{})
	}

	s.logger.Info("catalog reloaded",
		zap.Int64("version", snap.Version),
		zap.Int("nodes", snap.Store.Len()),
		zap.Int("edges", len(snap.Store.Edges())),
		zap.Int("selections_cleared", len(cleared)),
	)
	s.eventBus.Publish(Event{
		Type: EventCatalogReloaded,
		Payload: CatalogReloadedPayload{
			Version:   snap.Version,
			NodeCount: snap.Store.Len(),
			EdgeCount: len(snap.Store.Edges()),
		},
	})
	return nil
}

// Snapshot returns the published catalog snapshot
func (s *HelpService) Snapshot() *Snapshot {
	return s.catalog.Current()
}

// NewSession opens a browsing session with nothing selected
func (s *HelpService) NewSession() string {
	id := s.sessions.Create()
	s.metrics.SetActiveSessions(s.sessions.Len())
	return id
}

// CloseSession discards a browsing session
func (s *HelpService) CloseSession(sessionID string) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.metrics.SetActiveSessions(s.sessions.Len())
	return nil
}

// GetSelection returns a session's selection state
func (s *HelpService) GetSelection(sessionID string) (domain.SelectionState, error) {
	sel, err := s.sessions.Get(sessionID)
	if err != nil {
		return domain.SelectionState{}, err
	}
	return sel.State(), nil
}

// SelectNode selects id in the session. An id absent from the catalog fails
// with ErrNotFound and the previous selection is kept.
func (s *HelpService) SelectNode(sessionID, nodeID string) (domain.SelectionState, error) {
	nodeID = strings.TrimSpace(nodeID)

	// The catalog is read under the session lock: a reload publishes before
	// it clears missing selections, so either this check sees the new
	// catalog or the clear sees this selection.
	sel, err := s.sessions.Update(sessionID, func(cur domain.Selection) (domain.Selection, error) {
		if !s.catalog.Current().Store.Has(nodeID) {
			return cur, fmt.Errorf("node %s: %w", nodeID, domain.ErrNotFound)
		}
		return cur.Select(nodeID), nil
	})
	if err != nil {
		return domain.SelectionState{}, err
	}

	s.publishSelection(sessionID, sel)
	return sel.State(), nil
}

// ClearSelection returns the session to the unselected state
func (s *HelpService) ClearSelection(sessionID string) (domain.SelectionState, error) {
	sel, err := s.sessions.Update(sessionID, func(cur domain.Selection) (domain.Selection, error) {
		return cur.Clear(), nil
	})
	if err != nil {
		return domain.SelectionState{}, err
	}

	s.publishSelection(sessionID, sel)
	return sel.State(), nil
}

// SweepSessions closes sessions idle longer than maxIdle
func (s *HelpService) SweepSessions(maxIdle time.Duration) int {
	removed := s.sessions.Sweep(maxIdle)
	if removed > 0 {
		s.metrics.SetActiveSessions(s.sessions.Len())
		s.logger.Debug("idle sessions closed", zap.Int("count", removed))
	}
	return removed
}

func (s *HelpService) publishSelection(sessionID string, sel domain.Selection) {
	state := sel.State()
	s.eventBus.Publish(Event{
		Type: EventSelectionChanged,
		Payload: SelectionChangedPayload{
			SessionID: sessionID,
			Selected:  state.Selected,
			NodeID:    state.NodeID,
		},
	})
}
