package ai

import "container/heap"

// Cell is an integer grid coordinate.
type Cell struct {
	X, Y int
}

// Grid answers whether a cell can be walked on. Out-of-bounds cells must
// report false.
type Grid interface {
	Passable(c Cell) bool
}

var neighbours = [4]Cell{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}

type pathNode struct {
	cell   Cell
	g, f   int
	parent *pathNode
}

type openSet []*pathNode

func (o openSet) Len() int            { return len(o) }
func (o openSet) Less(i, j int) bool  { return o[i].f < o[j].f }
func (o openSet) Swap(i, j int)       { o[i], o[j] = o[j], o[i] }
func (o *openSet) Push(x interface{}) { *o = append(*o, x.(*pathNode)) }
func (o *openSet) Pop() interface{} {
	old := *o
	n := old[len(old)-1]
	*o = old[:len(old)-1]
	return n
}

func manhattan(a, b Cell) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// AStar finds the shortest 4-connected path from `from` to `to`.
// Returns the path excluding the start and including the end, an empty slice
// when from == to, and nil when no path exists or the goal is not passable.
func AStar(g Grid, from, to Cell) []Cell {
	if g == nil {
		return nil
	}
	if from == to {
		return []Cell{}
	}
	if !g.Passable(to) {
		return nil
	}

	closed := make(map[Cell]bool)
	gScore := map[Cell]int{from: 0}
	open := &openSet{{cell: from, f: manhattan(from, to)}}

	for open.Len() > 0 {
		cur := heap.Pop(open).(*pathNode)
		if closed[cur.cell] {
			continue
		}
		closed[cur.cell] = true

		if cur.cell == to {
			var path []Cell
			for n := cur; n.parent != nil; n = n.parent {
				path = append(path, n.cell)
			}
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path
		}

		for _, d := range neighbours {
			next := Cell{cur.cell.X + d.X, cur.cell.Y + d.Y}
			if closed[next] || !g.Passable(next) {
				continue
			}
			ng := cur.g + 1
			if prev, ok := gScore[next]; ok && ng >= prev {
				continue
			}
			gScore[next] = ng
			heap.Push(open, &pathNode{cell: next, g: ng, f: ng + manhattan(next, to), parent: cur})
		}
	}
	return nil
}
