package routing

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// SimplifyPath reduces a path to a display line string using Douglas-Peucker.
// The endpoints are always kept; epsilon <= 0 returns the full geometry.
func SimplifyPath(path []Node, epsilon float64) orb.LineString {
	ls := LineString(path)
	if epsilon <= 0 || len(ls) <= 2 {
		return ls
	}
	return simplify.DouglasPeucker(epsilon).Simplify(ls).(orb.LineString)
}
