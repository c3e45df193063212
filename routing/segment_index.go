package routing

import "fmt"

// SegmentRef is the position of a segment in Dataset.Segments
type SegmentRef int

// SegmentFilter reports whether a segment should be left out of routing
type SegmentFilter func(Segment) bool

// ExcludeClasses builds a filter that drops segments of the given road classes
func ExcludeClasses(classes ...RoadClass) SegmentFilter {
	excluded := make(map[RoadClass]bool, len(classes))
	for _, c := range classes {
		excluded[c] = true
	}
	return func(s Segment) bool {
		return excluded[s.Class]
	}
}

// SegmentIndex maps node ids to the traversable segments referencing them
type SegmentIndex struct {
	byNode   map[int64][]SegmentRef
	segments []Segment
}

// BuildIndex validates every segment against the node set and records, for each
// node id, the segments that reference it. A node referenced several times by
// the same segment gets that segment once. Segments matched by exclude are
// validated but not indexed.
func BuildIndex(nodes []Node, segments []Segment, exclude SegmentFilter) (*SegmentIndex, error) {
	known := make(map[int64]struct{}, len(nodes))
	for _, n := range nodes {
		if _, dup := known[n.ID]; dup {
			return nil, fmt.Errorf("node %d: %w", n.ID, ErrDuplicateNode)
		}
		known[n.ID] = struct{}{}
	}

	idx := &SegmentIndex{
		byNode:   make(map[int64][]SegmentRef),
		segments: segments,
	}

	for i, seg := range segments {
		if len(seg.Nodes) == 0 {
			return nil, fmt.Errorf("segment %d: %w", seg.ID, ErrEmptySegment)
		}
		for _, id := range seg.Nodes {
			if _, ok := known[id]; !ok {
				return nil, fmt.Errorf("segment %d references node %d: %w", seg.ID, id, ErrUnknownNode)
			}
		}
		if exclude != nil && exclude(seg) {
			continue
		}

		ref := SegmentRef(i)
		for _, id := range seg.Nodes {
			refs := idx.byNode[id]
			// repeated references from one segment are always appended back to back
			if n := len(refs); n > 0 && refs[n-1] == ref {
				continue
			}
			idx.byNode[id] = append(refs, ref)
		}
	}

	return idx, nil
}

// Segments returns the segments that reference the node, possibly none
func (idx *SegmentIndex) Segments(nodeID int64) []SegmentRef {
	return idx.byNode[nodeID]
}

// Segment resolves a reference returned by Segments
func (idx *SegmentIndex) Segment(ref SegmentRef) Segment {
	return idx.segments[ref]
}

// Reachable reports whether at least one traversable segment references the node
func (idx *SegmentIndex) Reachable(nodeID int64) bool {
	return len(idx.byNode[nodeID]) > 0
}

// Len returns the number of nodes with at least one segment
func (idx *SegmentIndex) Len() int {
	return len(idx.byNode)
}
