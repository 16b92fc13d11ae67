package search

import "grid-planner/grid"

// node is one cell in the A* search
type node struct {
	coord  grid.Coord
	g      float64 // cost from start to this node
	h      float64 // heuristic cost from this node to the goal
	f      float64 // total cost (g + h)
	parent *node
	seq    uint64 // insertion order, last tie-break
	closed bool
	index  int // index in the heap
}

// priorityQueue implements heap.Interface ordered by (f, h, seq)
type priorityQueue []*node

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	a, b := pq[i], pq[j]
	if a.f != b.f {
		return a.f < b.f
	}
	if a.h != b.h {
		return a.h < b.h
	}
	return a.seq < b.seq
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	n := x.(*node)
	n.index = len(*pq)
	*pq = append(*pq, n)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	last := len(old) - 1
	n := old[last]
	old[last] = nil
	n.index = -1
	*pq = old[:last]
	return n
}
