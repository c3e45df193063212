package routing

import (
	"container/heap"
	"context"
	"fmt"
)

// searchNode is the per-search state of one graph node
type searchNode struct {
	pos     int     // position of the node in the graph
	id      int64   // node id, last tie break
	G       float64 // Cost from start to this node, valid once reached
	H       float64 // Heuristic cost from this node to end
	F       float64 // Total cost (G + H)
	reached bool    // G has been assigned
	visited bool    // expanded, never reopened
	parent  int     // position of the predecessor, -1 for none
	Index   int     // Index in the heap, -1 when not in the frontier
}

// priorityQueue implements heap.Interface for the A* frontier.
// Ties on F are broken by smaller G, then by lower node id.
type priorityQueue []*searchNode

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	a, b := pq[i], pq[j]
	if a.F != b.F {
		return a.F < b.F
	}
	if a.G != b.G {
		return a.G < b.G
	}
	return a.id < b.id
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *priorityQueue) Push(x interface{}) {
	n := len(*pq)
	node := x.(*searchNode)
	node.Index = n
	*pq = append(*pq, node)
}

func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.Index = -1
	*pq = old[0 : n-1]
	return node
}

// Result is the outcome of a search. An empty Path means no path exists.
type Result struct {
	Path     []Node
	Distance float64 // normalized path length
	Explored int     // number of expanded nodes
}

// Found reports whether the search reached the end node
func (r Result) Found() bool { return len(r.Path) > 0 }

// Meters converts the path length to metres with the dataset metric scale
func (r Result) Meters(scale float64) float64 { return r.Distance * scale }

// FindPath runs A* from start to end (graph positions). Disconnected endpoints
// yield an empty path and a nil error.
func (g *Graph) FindPath(start, end int) (Result, error) {
	return g.FindPathContext(context.Background(), start, end)
}

// FindPathContext is FindPath with a caller deadline checked between frontier
// pops. On cancellation it returns an empty path along with the context error.
func (g *Graph) FindPathContext(ctx context.Context, start, end int) (Result, error) {
	if !g.contains(start) {
		return Result{}, fmt.Errorf("start %d: %w", start, ErrInvalidEndpoint)
	}
	if !g.contains(end) {
		return Result{}, fmt.Errorf("end %d: %w", end, ErrInvalidEndpoint)
	}
	if start == end {
		return Result{Path: []Node{g.nodes[start]}, Explored: 1}, nil
	}

	// fresh state per search keeps the graph itself read-only
	endNode := g.nodes[end]
	states := make([]searchNode, len(g.nodes))
	for i, n := range g.nodes {
		states[i] = searchNode{
			pos:    i,
			id:     n.ID,
			H:      Distance(n, endNode),
			parent: -1,
			Index:  -1,
		}
	}

	openSet := &priorityQueue{}
	heap.Init(openSet)

	startNode := &states[start]
	startNode.G = 0
	startNode.F = startNode.H
	startNode.reached = true
	heap.Push(openSet, startNode)

	nodesExplored := 0

	for openSet.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return Result{Explored: nodesExplored}, err
		}

		current := heap.Pop(openSet).(*searchNode)
		current.visited = true
		nodesExplored++

		// Check if we reached the goal
		if current.pos == end {
			path := reconstructPath(g, states, end)
			return Result{
				Path:     path,
				Distance: current.G,
				Explored: nodesExplored,
			}, nil
		}

		// Explore neighbors
		for _, next := range g.neighbors[current.pos] {
			neighbor := &states[next]
			if neighbor.visited {
				continue
			}

			tentativeG := current.G + Distance(g.nodes[current.pos], g.nodes[next])
			if neighbor.reached && tentativeG >= neighbor.G {
				continue
			}

			neighbor.G = tentativeG
			neighbor.F = neighbor.G + neighbor.H
			neighbor.parent = current.pos
			neighbor.reached = true
			if neighbor.Index >= 0 {
				// Found a better path to a node already in the frontier
				heap.Fix(openSet, neighbor.Index)
			} else {
				heap.Push(openSet, neighbor)
			}
		}
	}

	// No path found
	return Result{Explored: nodesExplored}, nil
}

// reconstructPath follows parent links back from end and reverses them
func reconstructPath(g *Graph, states []searchNode, end int) []Node {
	var reversed []Node
	for pos := end; pos != -1; pos = states[pos].parent {
		reversed = append(reversed, g.nodes[pos])
	}

	path := make([]Node, len(reversed))
	for i, n := range reversed {
		path[len(reversed)-1-i] = n
	}
	return path
}
