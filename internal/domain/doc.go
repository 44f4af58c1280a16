// Package domain defines the core types of the MOSDAC help-desk catalog.
//
// This package contains the entities and value objects shared by the graph
// store, the query classifier and the HTTP layer.
//
// # Core Types
//
// Node is a typed catalog entity (mission, product, document, location, user,
// process) with scalar metadata and a derived set of connections.
//
// Edge is a directed, typed relation between two nodes (provides, contains,
// processes, accesses, related).
//
// CatalogFragment is the ingestion batch read at startup and on reload: node and
// edge records as authored by the content team. It never carries adjacency;
// connections are computed by the graph store.
//
// # Classification
//
// Rule, ClassificationResult and Response describe the output of the rule
// based intent classifier and the response composer.
//
// # Selection
//
// Selection is the per-session two-state machine used while browsing the graph.
//
// # Design Principles
//
// - Value types, no infrastructure dependencies
// - Typed errors (ValidationError, ErrNotFound) so callers can branch with errors.Is/As
package domain
