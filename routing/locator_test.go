package routing

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestFindClosestSkipsIsolatedNodes(t *testing.T) {
	g := mustGraph(t, gridDataset())

	pos, err := g.FindClosest(0.91, 0.91)
	if err != nil {
		t.Fatalf("FindClosest returned error: %v", err)
	}
	if got := g.Node(pos).ID; got == 8 {
		t.Fatal("FindClosest returned the isolated node")
	}
	if !g.Reachable(pos) {
		t.Errorf("node %d is not reachable", g.Node(pos).ID)
	}
	// node 6 at (1, 0.5) is the nearest connected node
	if got := g.Node(pos).ID; got != 6 {
		t.Errorf("FindClosest(0.91, 0.91) = %d, want 6", got)
	}
}

func TestFindClosestTieBreaksOnLowestID(t *testing.T) {
	ds := &Dataset{
		Nodes: []Node{
			{ID: 9, X: 0.25, Y: 0.5},
			{ID: 3, X: 0.75, Y: 0.5},
			{ID: 5, X: 0.5, Y: 0.9},
		},
		Segments: []Segment{{ID: 1, Nodes: []int64{9, 3, 5}}},
	}
	g := mustGraph(t, ds)

	pos, err := g.FindClosest(0.5, 0.5)
	if err != nil {
		t.Fatalf("FindClosest returned error: %v", err)
	}
	if got := g.Node(pos).ID; got != 3 {
		t.Errorf("FindClosest(0.5, 0.5) = %d, want 3", got)
	}
}

func TestFindClosestNoReachableNode(t *testing.T) {
	ds := &Dataset{
		Nodes:    []Node{{ID: 1, X: 0.1, Y: 0.1}, {ID: 2, X: 0.2, Y: 0.2}},
		Segments: []Segment{{ID: 1, Nodes: []int64{1, 2}, Class: Footway}},
	}
	g := mustGraph(t, ds, WithExclusion(ExcludeClasses(Footway)))

	if _, err := g.FindClosest(0.1, 0.1); !errors.Is(err, ErrNoReachableNode) {
		t.Errorf("error = %v, want %v", err, ErrNoReachableNode)
	}
}

func TestFindClosestMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ds := &Dataset{}
	for i := 0; i < 400; i++ {
		ds.Nodes = append(ds.Nodes, Node{ID: int64(i + 1), X: rng.Float64(), Y: rng.Float64()})
	}
	// chain every third node, leave the rest isolated
	var chain []int64
	for i := 0; i < len(ds.Nodes); i += 3 {
		chain = append(chain, ds.Nodes[i].ID)
	}
	ds.Segments = []Segment{{ID: 1, Nodes: chain, Class: Residential}}
	g := mustGraph(t, ds)

	for q := 0; q < 200; q++ {
		x, y := rng.Float64(), rng.Float64()

		want := -1
		wantDist := math.Inf(1)
		query := Node{X: x, Y: y}
		for i := 0; i < g.Len(); i++ {
			if !g.Reachable(i) {
				continue
			}
			d := Distance(query, g.Node(i))
			if d < wantDist || (d == wantDist && g.Node(i).ID < g.Node(want).ID) {
				want, wantDist = i, d
			}
		}

		got, err := g.FindClosest(x, y)
		if err != nil {
			t.Fatalf("FindClosest returned error: %v", err)
		}
		if got != want {
			t.Fatalf("FindClosest(%f, %f) = %d, want %d", x, y, g.Node(got).ID, g.Node(want).ID)
		}
	}
}

func TestFindClosestRejectsNonFinitePoints(t *testing.T) {
	g := mustGraph(t, gridDataset())

	tests := []struct {
		name string
		x, y float64
	}{
		{"nan x", math.NaN(), 0.5},
		{"nan y", 0.5, math.NaN()},
		{"positive infinity", math.Inf(1), 0.5},
		{"negative infinity", 0.5, math.Inf(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := g.FindClosest(tt.x, tt.y)
			if !errors.Is(err, ErrInvalidPoint) {
				t.Errorf("error = %v, want %v", err, ErrInvalidPoint)
			}
			if pos != -1 {
				t.Errorf("pos = %d, want -1", pos)
			}
		})
	}
}

func TestFindClosestFarAwayPoints(t *testing.T) {
	g := mustGraph(t, gridDataset())

	for _, q := range [][2]float64{{1e200, 0.5}, {-1e200, 0.5}, {0.5, 1e300}, {1e150, 0.5}} {
		pos, err := g.FindClosest(q[0], q[1])
		if err != nil {
			t.Fatalf("FindClosest(%g, %g) returned error: %v", q[0], q[1], err)
		}
		if !g.Reachable(pos) {
			t.Errorf("FindClosest(%g, %g) = %d, which is not reachable", q[0], q[1], g.Node(pos).ID)
		}
		// every distance rounds to the same value, so the lowest id wins
		if got := g.Node(pos).ID; got != 1 {
			t.Errorf("FindClosest(%g, %g) = %d, want 1", q[0], q[1], got)
		}
	}
}
