package domain

// Selection is the graph-browsing selection state of one session.
// The zero value is Unselected.
type Selection struct {
	nodeID string
}

// SelectionState is the serializable view of a Selection
type SelectionState struct {
	Selected bool   `json:"selected"`
	NodeID   string `json:"node_id,omitempty"`
}

// Select moves to Selected(id) from any state
func (s Selection) Select(id string) Selection {
	return Selection{nodeID: id}
}

// Clear moves to Unselected from any state
func (s Selection) Clear() Selection {
	return Selection{}
}

// Selected returns the selected node id, if any
func (s Selection) Selected() (string, bool) {
	return s.nodeID, s.nodeID != ""
}

// State returns the serializable view
func (s Selection) State() SelectionState {
	id, ok := s.Selected()
	return SelectionState{Selected: ok, NodeID: id}
}
