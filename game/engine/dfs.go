package engine

import "github.com/zyedidia/generic/stack"

// DFS is depth-first search. Children are pushed in reverse operator order so
// they are popped in the declared order. Every pop counts as an expansion,
// except entries superseded by a shallower copy under a depth limit.
type DFS struct{}

func (DFS) Name() string { return "dfs" }

func (DFS) Solve(params Params) Result {
	p, invalid, ok := prepare(params)
	if !ok {
		return invalid
	}

	var st searchStats
	visited := p.newDiscovery()
	frontier := stack.New[*node]()

	root := p.root()
	visited.discover(root.state, 0)
	frontier.Push(root)

	for frontier.Size() > 0 {
		n := frontier.Pop()
		if visited.stale(n) {
			continue
		}
		st.expanded++
		st.reached(n)

		cur := p.collect(n.state)
		if p.isGoal(cur) {
			return p.solution(n, st, successMessage("Solution found"))
		}
		if !p.expandable(n) {
			continue
		}

		succs := p.successors(cur)
		for i := len(succs) - 1; i >= 0; i-- {
			if !visited.discover(succs[i].state, n.depth+1) {
				continue
			}
			frontier.Push(n.child(succs[i].state, succs[i].cost))
		}
	}

	return p.failure(st)
}
