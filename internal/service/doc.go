// Package service implements the help-desk query interface.
//
// HelpService sits between the HTTP handlers and the catalog, classifier and
// composer. It owns the published catalog snapshot and the per-session
// selection state.
//
// # Catalog Snapshot
//
// A Snapshot bundles a graph.Store with the Index and Extractor built from it.
// Catalog publishes snapshots through an atomic pointer: readers take the
// current snapshot without locking, and Reload swaps in a new one only after it
// has loaded cleanly. A rejected reload leaves the previous snapshot serving.
//
// # Sessions
//
// SessionStore keeps one domain.Selection per session id (uuid). Selecting a
// node the catalog does not contain fails with domain.ErrNotFound and leaves
// the selection unchanged. After a reload, selections of vanished nodes are
// cleared.
//
// # Event System
//
// Reloads and selection changes are published on the EventBus for the SSE hub.
//
// # Metrics
//
// Metrics registers Prometheus collectors for query intents, reloads, sessions
// and HTTP requests. A nil *Metrics disables recording.
package service
