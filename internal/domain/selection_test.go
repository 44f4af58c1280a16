package domain

import "testing"

func TestSelectionTransitions(t *testing.T) {
	var sel Selection

	if _, ok := sel.Selected(); ok {
		t.Fatal("zero value should be unselected")
	}

	sel = sel.Select("insat3d")
	if id, ok := sel.Selected(); !ok || id != "insat3d" {
		t.Fatalf("expected insat3d selected, got %q (ok=%v)", id, ok)
	}

	sel = sel.Select("oceansat2")
	if id, _ := sel.Selected(); id != "oceansat2" {
		t.Fatalf("expected reselect to oceansat2, got %q", id)
	}

	sel = sel.Clear()
	if _, ok := sel.Selected(); ok {
		t.Fatal("expected unselected after Clear")
	}

	sel = sel.Clear()
	if _, ok := sel.Selected(); ok {
		t.Fatal("Clear from unselected should stay unselected")
	}
}

func TestSelectionState(t *testing.T) {
	var sel Selection
	if got := sel.State(); got != (SelectionState{}) {
		t.Errorf("expected empty state, got %+v", got)
	}

	got := sel.Select("n1").State()
	if !got.Selected || got.NodeID != "n1" {
		t.Errorf("unexpected state %+v", got)
	}
}
