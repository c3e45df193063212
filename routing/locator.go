package routing

import (
	"fmt"
	"math"

	"github.com/dhconnelly/rtreego"
)

// pointTolerance is the side length of the box stored for each node
const pointTolerance = 1e-9

// nodeEntry wraps a reachable node for R-tree storage
type nodeEntry struct {
	pos  int
	bbox rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *nodeEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// locator answers closest-node queries over reachable nodes only
type locator struct {
	graph     *Graph
	tree      *rtreego.Rtree
	reachable []int // positions held by the tree, in graph order
}

func newLocator(g *Graph) *locator {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	var reachable []int
	for i, n := range g.nodes {
		if !g.index.Reachable(n.ID) {
			continue
		}
		reachable = append(reachable, i)
		tree.Insert(&nodeEntry{
			pos:  i,
			bbox: rtreego.Point{n.X, n.Y}.ToRect(pointTolerance),
		})
	}

	return &locator{graph: g, tree: tree, reachable: reachable}
}

// closest finds the nearest candidate through the tree, then rescans every
// entry inside that radius so the result matches an exact linear scan,
// including the lowest-id tie break
func (l *locator) closest(x, y float64) (int, error) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return -1, fmt.Errorf("%w: (%v, %v)", ErrInvalidPoint, x, y)
	}
	if len(l.reachable) == 0 {
		return -1, ErrNoReachableNode
	}

	query := Node{X: x, Y: y}
	nearest := l.tree.NearestNeighbor(rtreego.Point{x, y})
	if nearest == nil {
		return l.scan(query, l.reachable), nil
	}
	radius := Distance(query, l.graph.nodes[nearest.(*nodeEntry).pos]) + pointTolerance
	if math.IsInf(radius, 0) || math.IsNaN(radius) {
		// far queries overflow the box, every node is a candidate
		return l.scan(query, l.reachable), nil
	}

	box, err := rtreego.NewRect(
		rtreego.Point{x - radius, y - radius},
		[]float64{2 * radius, 2 * radius},
	)
	if err != nil {
		return l.scan(query, l.reachable), nil
	}

	items := l.tree.SearchIntersect(box)
	if len(items) == 0 {
		return l.scan(query, l.reachable), nil
	}
	candidates := make([]int, 0, len(items))
	for _, item := range items {
		candidates = append(candidates, item.(*nodeEntry).pos)
	}
	return l.scan(query, candidates), nil
}

// scan picks the exact closest of the given positions, lowest id on ties
func (l *locator) scan(query Node, positions []int) int {
	best := -1
	bestDist := math.Inf(1)
	for _, pos := range positions {
		d := Distance(query, l.graph.nodes[pos])
		if best == -1 || d < bestDist || (d == bestDist && l.graph.nodes[pos].ID < l.graph.nodes[best].ID) {
			best = pos
			bestDist = d
		}
	}
	return best
}

// FindClosest returns the position of the reachable node nearest to (x, y).
// Nodes on no traversable segment are never returned. Coordinates must be
// finite, otherwise ErrInvalidPoint is returned.
func (g *Graph) FindClosest(x, y float64) (int, error) {
	return g.locator.closest(x, y)
}
