package engine

// UniformCost orders the frontier by accumulated cost, ties by insertion order.
// A state is marked visited the first time it is generated and only reopened
// when a depth limit is set and it is reached again at a smaller depth.
type UniformCost struct{}

func (UniformCost) Name() string { return "uniform_cost" }

func (UniformCost) Solve(params Params) Result {
	p, invalid, ok := prepare(params)
	if !ok {
		return invalid
	}

	var st searchStats
	visited := p.newDiscovery()
	frontier := newPriorityFrontier()

	root := p.root()
	visited.discover(root.state, 0)
	frontier.push(0, root)

	for frontier.len() > 0 {
		n, _ := frontier.pop()
		if visited.stale(n) {
			continue
		}
		st.expanded++
		st.reached(n)

		cur := p.collect(n.state)
		if p.isGoal(cur) {
			return p.solution(n, st, successMessage("Lowest cost solution found"))
		}
		if !p.expandable(n) {
			continue
		}

		for _, succ := range p.successors(cur) {
			if !visited.discover(succ.state, n.depth+1) {
				continue
			}
			child := n.child(succ.state, succ.cost)
			frontier.push(child.g, child)
		}
	}

	return p.failure(st)
}
