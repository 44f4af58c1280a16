package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a node id is not present in the catalog.
// It is a normal query outcome, not a fault.
var ErrNotFound = errors.New("not found")

// ValidationKind classifies a catalog load failure
type ValidationKind string

const (
	// DanglingEdge: an edge endpoint does not resolve to a known node
	DanglingEdge ValidationKind = "dangling_edge"
	// DuplicateNode: two node records share an id
	DuplicateNode ValidationKind = "duplicate_node"
	// InvalidRecord: a record fails field validation
	InvalidRecord ValidationKind = "invalid_record"
)

// ValidationError aborts a catalog load. The catalog must not be published.
type ValidationError struct {
	Kind   ValidationKind
	Edge   *Edge
	NodeID string
	Err    error
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case DanglingEdge:
		return fmt.Sprintf("catalog validation: %s: edge %s references unknown node", e.Kind, e.Edge)
	case DuplicateNode:
		return fmt.Sprintf("catalog validation: %s: node %q defined more than once", e.Kind, e.NodeID)
	default:
		if e.Err != nil {
			return fmt.Sprintf("catalog validation: %s: %v", e.Kind, e.Err)
		}
		return fmt.Sprintf("catalog validation: %s", e.Kind)
	}
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationKind reports whether err is a ValidationError of the given kind
func IsValidationKind(err error, kind ValidationKind) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind == kind
	}
	return false
}
