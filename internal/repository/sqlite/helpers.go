package sqlite

import (
	"database/sql"
	"encoding/json"
	"strings"

	"mosdacbot/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// marshalToNull marshals a value to nullable JSON string.
// Returns empty NullString for nil or empty maps.
func marshalToNull(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}

	// Handle empty maps - don't store "{}"
	if m, ok := v.(map[string]any); ok && len(m) == 0 {
		return sql.NullString{}, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// ============================================================================
// Schema Evolution Guide
// ============================================================================
//
// To add a new column to nodes table:
// 1. Add field to nodeRow struct (below)
// 2. Update scanArgs() - APPEND to end to match column order
// 3. Update nodeColumns constant - APPEND to end
// 4. Update toRecord() to map new field to domain.NodeRecord
// 5. Update nodeInsertArgs() if column should be writable
// 6. Update relevant tests
//
// CRITICAL: Column order must match between nodeColumns, scanArgs() and
// every SELECT using nodeColumns. Same pattern applies to edges.

// ============================================================================
// Node Row Scanner
// ============================================================================

const nodeColumns = `id, type, label, metadata, position_x, position_y`

// nodeRow holds all columns from a node query for scanning
type nodeRow struct {
	ID           string
	Type         string
	Label        string
	MetadataJSON sql.NullString
	PositionX    sql.NullFloat64
	PositionY    sql.NullFloat64
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match nodeColumns order exactly
func (r *nodeRow) scanArgs() []any {
	return []any{
		&r.ID,           // 1
		&r.Type,         // 2
		&r.Label,        // 3
		&r.MetadataJSON, // 4
		&r.PositionX,    // 5
		&r.PositionY,    // 6
	}
}

// toRecord converts the scanned row to a domain.NodeRecord
func (r *nodeRow) toRecord() (domain.NodeRecord, error) {
	rec := domain.NodeRecord{
		ID:    r.ID,
		Type:  domain.NodeType(r.Type),
		Label: r.Label,
	}

	if r.MetadataJSON.Valid {
		dec := json.NewDecoder(strings.NewReader(r.MetadataJSON.String))
		dec.UseNumber()
		var meta map[string]any
		if err := dec.Decode(&meta); err != nil {
			return rec, err
		}
		rec.Metadata = normalizeNumbers(meta)
	}

	if r.PositionX.Valid && r.PositionY.Valid {
		rec.Position = &domain.Position{X: r.PositionX.Float64, Y: r.PositionY.Float64}
	}

	return rec, nil
}

// nodeInsertArgs returns the values for an INSERT of (ord, nodeColumns...)
func nodeInsertArgs(ord int, rec domain.NodeRecord) ([]any, error) {
	meta, err := marshalToNull(rec.Metadata)
	if err != nil {
		return nil, err
	}

	var x, y sql.NullFloat64
	if rec.Position != nil {
		x = sql.NullFloat64{Float64: rec.Position.X, Valid: true}
		y = sql.NullFloat64{Float64: rec.Position.Y, Valid: true}
	}

	return []any{ord, rec.ID, string(rec.Type), rec.Label, meta, x, y}, nil
}

// ============================================================================
// Edge Row Scanner
// ============================================================================

const edgeColumns = `from_id, to_id, type, label`

// edgeRow holds all columns from an edge query for scanning
type edgeRow struct {
	FromID string
	ToID   string
	Type   string
	Label  sql.NullString
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match edgeColumns order exactly
func (r *edgeRow) scanArgs() []any {
	return []any{&r.FromID, &r.ToID, &r.Type, &r.Label}
}

// toRecord converts the scanned row to a domain.EdgeRecord
func (r *edgeRow) toRecord() domain.EdgeRecord {
	return domain.EdgeRecord{
		From:  r.FromID,
		To:    r.ToID,
		Type:  domain.EdgeType(r.Type),
		Label: nullToString(r.Label),
	}
}

// edgeInsertArgs returns the values for an INSERT of (ord, edgeColumns...)
func edgeInsertArgs(ord int, rec domain.EdgeRecord) []any {
	return []any{ord, rec.From, rec.To, string(rec.Type), stringToNull(rec.Label)}
}

// normalizeNumbers turns json.Number values into int64 or float64
func normalizeNumbers(meta map[string]any) map[string]any {
	for k, v := range meta {
		num, ok := v.(json.Number)
		if !ok {
			continue
		}
		if i, err := num.Int64(); err == nil {
			meta[k] = i
		} else if f, err := num.Float64(); err == nil {
			meta[k] = f
		}
	}
	return meta
}
