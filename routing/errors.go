package routing

import "errors"

var (
	// ErrNoReachableNode is returned by FindClosest when no node belongs to a traversable segment
	ErrNoReachableNode = errors.New("no reachable node in dataset")
	// ErrInvalidEndpoint is returned when a search endpoint does not belong to the graph
	ErrInvalidEndpoint = errors.New("endpoint does not belong to graph")
	// ErrInvalidPoint is returned when a query coordinate is NaN or infinite
	ErrInvalidPoint = errors.New("query point is not finite")

	ErrUnknownNode   = errors.New("segment references unknown node")
	ErrDuplicateNode = errors.New("duplicate node id")
	ErrEmptySegment  = errors.New("segment has no nodes")
)
