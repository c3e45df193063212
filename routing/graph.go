package routing

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Graph is the immutable search graph built from a dataset. Nodes are addressed
// by their position in Dataset.Nodes; adjacency is stored as positions too.
// A Graph may be shared by concurrent searches.
type Graph struct {
	nodes     []Node
	byID      map[int64]int
	index     *SegmentIndex
	neighbors [][]int
	locator   *locator
}

type graphOptions struct {
	exclude SegmentFilter
}

// Option configures graph construction
type Option func(*graphOptions)

// WithExclusion marks segments matched by filter as non-traversable.
// By default every road class is traversable.
func WithExclusion(filter SegmentFilter) Option {
	return func(o *graphOptions) {
		o.exclude = filter
	}
}

// NewGraph indexes the dataset segments and derives the adjacency of every node
func NewGraph(ds *Dataset, opts ...Option) (*Graph, error) {
	var o graphOptions
	for _, opt := range opts {
		opt(&o)
	}

	index, err := BuildIndex(ds.Nodes, ds.Segments, o.exclude)
	if err != nil {
		return nil, fmt.Errorf("failed to build segment index: %w", err)
	}

	g := &Graph{
		nodes:     ds.Nodes,
		byID:      make(map[int64]int, len(ds.Nodes)),
		index:     index,
		neighbors: make([][]int, len(ds.Nodes)),
	}
	for i, n := range ds.Nodes {
		g.byID[n.ID] = i
	}
	for i := range g.nodes {
		g.neighbors[i] = g.findNeighbors(i)
	}
	g.locator = newLocator(g)

	return g, nil
}

// findNeighbors collects the nodes directly before and after every occurrence
// of node i in every segment that references it
func (g *Graph) findNeighbors(i int) []int {
	node := g.nodes[i]
	var neighbors []int

	add := func(id int64) {
		j := g.byID[id]
		other := g.nodes[j]
		// zero-length hops would create self loops
		if other.X == node.X && other.Y == node.Y {
			return
		}
		for _, k := range neighbors {
			if k == j {
				return
			}
		}
		neighbors = append(neighbors, j)
	}

	for _, ref := range g.index.Segments(node.ID) {
		ids := g.index.Segment(ref).Nodes
		for p, id := range ids {
			if id != node.ID {
				continue
			}
			if p > 0 {
				add(ids[p-1])
			}
			if p+1 < len(ids) {
				add(ids[p+1])
			}
		}
	}

	return neighbors
}

// Len returns the number of nodes in the graph
func (g *Graph) Len() int { return len(g.nodes) }

// Node returns the node at position i
func (g *Graph) Node(i int) Node { return g.nodes[i] }

// Lookup returns the position of the node with the given id
func (g *Graph) Lookup(id int64) (int, bool) {
	i, ok := g.byID[id]
	return i, ok
}

// Neighbors returns the positions of the nodes adjacent to node i.
// The returned slice must not be modified.
func (g *Graph) Neighbors(i int) []int { return g.neighbors[i] }

// Reachable reports whether node i lies on at least one traversable segment
func (g *Graph) Reachable(i int) bool { return g.index.Reachable(g.nodes[i].ID) }

// Index exposes the segment index the graph was built from
func (g *Graph) Index() *SegmentIndex { return g.index }

func (g *Graph) contains(i int) bool { return i >= 0 && i < len(g.nodes) }

// Lines returns every traversable edge once, as a two-point line string
func (g *Graph) Lines() []orb.LineString {
	lines := make([]orb.LineString, 0)
	for i, adj := range g.neighbors {
		for _, j := range adj {
			if i < j {
				lines = append(lines, orb.LineString{g.nodes[i].Point(), g.nodes[j].Point()})
			}
		}
	}
	return lines
}

// EdgeCount returns the number of undirected edges
func (g *Graph) EdgeCount() int {
	total := 0
	for _, adj := range g.neighbors {
		total += len(adj)
	}
	return total / 2
}
