package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"mosdacbot/internal/domain"

	_ "modernc.org/sqlite"
)

// Repository stores catalog fragments in SQLite
type Repository struct {
	db *sql.DB
}

// New opens (creating if needed) a SQLite catalog database
func New(dbPath string) (*Repository, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// each connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

// Edge endpoints are not foreign keys; graph.Load reports dangling edges.
func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS nodes (
		id TEXT PRIMARY KEY,
		ord INTEGER NOT NULL,
		type TEXT NOT NULL,
		label TEXT NOT NULL,
		metadata JSON,
		position_x REAL,
		position_y REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS edges (
		ord INTEGER PRIMARY KEY,
		from_id TEXT NOT NULL,
		to_id TEXT NOT NULL,
		type TEXT NOT NULL,
		label TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_ord ON nodes(ord);
	CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(from_id);
	CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(to_id);
	`

	_, err := r.db.Exec(schema)
	return err
}

// LoadFragment reads the whole catalog in its stored order
func (r *Repository) LoadFragment(ctx context.Context) (*domain.CatalogFragment, error) {
	fragment := domain.NewCatalogFragment()
	if err := r.loadNodes(ctx, fragment); err != nil {
		return nil, err
	}
	if err := r.loadEdges(ctx, fragment); err != nil {
		return nil, err
	}
	return fragment, nil
}

func (r *Repository) loadNodes(ctx context.Context, fragment *domain.CatalogFragment) error {
	rows, err := r.db.QueryContext(ctx, `SELECT `+nodeColumns+` FROM nodes ORDER BY ord`)
	if err != nil {
		return fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row nodeRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return fmt.Errorf("failed to scan node: %w", err)
		}
		rec, err := row.toRecord()
		if err != nil {
			return fmt.Errorf("node %s: failed to decode metadata: %w", row.ID, err)
		}
		fragment.AddNode(rec)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating nodes: %w", err)
	}
	return nil
}

func (r *Repository) loadEdges(ctx context.Context, fragment *domain.CatalogFragment) error {
	rows, err := r.db.QueryContext(ctx, `SELECT `+edgeColumns+` FROM edges ORDER BY ord`)
	if err != nil {
		return fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row edgeRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return fmt.Errorf("failed to scan edge: %w", err)
		}
		fragment.AddEdge(row.toRecord())
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating edges: %w", err)
	}
	return nil
}

// SaveFragment replaces the stored catalog with fragment in one transaction
func (r *Repository) SaveFragment(ctx context.Context, fragment *domain.CatalogFragment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM edges`); err != nil {
		return fmt.Errorf("failed to clear edges: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes`); err != nil {
		return fmt.Errorf("failed to clear nodes: %w", err)
	}

	nodeStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO nodes (ord, `+nodeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare node insert: %w", err)
	}
	defer nodeStmt.Close()

	for i, rec := range fragment.Nodes {
		args, err := nodeInsertArgs(i, rec)
		if err != nil {
			return fmt.Errorf("node %s: failed to encode metadata: %w", rec.ID, err)
		}
		if _, err := nodeStmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert node %s: %w", rec.ID, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO edges (ord, `+edgeColumns+`) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare edge insert: %w", err)
	}
	defer edgeStmt.Close()

	for i, rec := range fragment.Edges {
		if _, err := edgeStmt.ExecContext(ctx, edgeInsertArgs(i, rec)...); err != nil {
			return fmt.Errorf("failed to insert edge %s->%s: %w", rec.From, rec.To, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Counts returns the number of stored nodes and edges
func (r *Repository) Counts(ctx context.Context) (nodes, edges int, err error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM nodes), (SELECT COUNT(*) FROM edges)`)
	if err := row.Scan(&nodes, &edges); err != nil {
		return 0, 0, fmt.Errorf("failed to count catalog: %w", err)
	}
	return nodes, edges, nil
}

// Close releases the database handle
func (r *Repository) Close() error {
	return r.db.Close()
}
