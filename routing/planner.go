package routing

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
)

// Route snaps both points to their closest reachable nodes and searches between them
func (g *Graph) Route(ctx context.Context, from, to orb.Point) (Result, error) {
	start, err := g.FindClosest(from.X(), from.Y())
	if err != nil {
		return Result{}, fmt.Errorf("start point: %w", err)
	}
	end, err := g.FindClosest(to.X(), to.Y())
	if err != nil {
		return Result{}, fmt.Errorf("end point: %w", err)
	}
	return g.FindPathContext(ctx, start, end)
}
