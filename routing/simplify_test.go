package routing

import "testing"

func TestSimplifyPath(t *testing.T) {
	path := []Node{
		{ID: 1, X: 0, Y: 0},
		{ID: 2, X: 0.25, Y: 0.001},
		{ID: 3, X: 0.5, Y: 0},
		{ID: 4, X: 0.5, Y: 0.5},
	}

	full := SimplifyPath(path, 0)
	if len(full) != 4 {
		t.Errorf("epsilon 0 kept %d points, want 4", len(full))
	}

	simple := SimplifyPath(path, 0.01)
	if len(simple) != 3 {
		t.Fatalf("simplified to %d points, want 3", len(simple))
	}
	if simple[0] != path[0].Point() || simple[2] != path[3].Point() {
		t.Errorf("endpoints not kept: %v", simple)
	}
}
