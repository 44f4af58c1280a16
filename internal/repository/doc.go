// Package repository defines the catalog persistence interfaces.
//
// A CatalogSource yields one CatalogFragment, the unit of ingestion. The
// sqlite subpackage implements CatalogStore, which can also replace the stored
// catalog from a fragment.
//
// # SQLite Implementation
//
// The sqlite implementation uses modernc.org/sqlite (pure Go, no cgo) with WAL
// mode for file databases. Nodes and edges keep an explicit ordinal so the
// catalog order survives a round trip. Metadata is stored as a JSON column.
//
// Edge endpoints are not enforced by the schema. Referential checks happen
// when the fragment is loaded into a graph.Store, so every source reports
// dangling edges the same way.
//
// # Testing
//
// The sqlite repository is tested with in-memory databases.
package repository
