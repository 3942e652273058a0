package engine

import (
	"github.com/zyedidia/generic/mapset"
	"github.com/zyedidia/generic/queue"
)

// BFS is breadth-first search. It returns a path with the fewest moves.
// A dequeued state counts as expanded only if it enqueued at least one new state.
type BFS struct{}

func (BFS) Name() string { return "bfs" }

func (BFS) Solve(params Params) Result {
	p, invalid, ok := prepare(params)
	if !ok {
		return invalid
	}

	var st searchStats
	visited := mapset.New[State]()
	frontier := queue.New[*node]()

	root := p.root()
	visited.Put(root.state)
	frontier.Enqueue(root)

	for !frontier.Empty() {
		n := frontier.Dequeue()
		st.reached(n)

		cur := p.collect(n.state)
		if p.isGoal(cur) {
			return p.solution(n, st, successMessage("Solution with fewest moves found"))
		}
		if !p.expandable(n) {
			continue
		}

		added := false
		for _, succ := range p.successors(cur) {
			if visited.Has(succ.state) {
				continue
			}
			visited.Put(succ.state)
			frontier.Enqueue(n.child(succ.state, succ.cost))
			added = true
		}
		if added {
			st.expanded++
		}
	}

	return p.failure(st)
}
