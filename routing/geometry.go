package routing

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Distance is the Euclidean distance between two nodes in normalized space.
// It is both the edge weight and the heuristic, which keeps the heuristic admissible.
func Distance(a, b Node) float64 {
	return planar.Distance(a.Point(), b.Point())
}

// PathLength sums the consecutive distances along a node sequence
func PathLength(path []Node) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += Distance(path[i-1], path[i])
	}
	return total
}

// LineString converts a node sequence into an orb line string
func LineString(path []Node) orb.LineString {
	ls := make(orb.LineString, 0, len(path))
	for _, n := range path {
		ls = append(ls, n.Point())
	}
	return ls
}
