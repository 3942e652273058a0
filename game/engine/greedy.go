package engine

// Greedy is greedy best-first search ordered purely by the heuristic of each
// candidate. Cost is tracked for reporting only. States are deduplicated the same
// way as in UniformCost.
type Greedy struct{}

func (Greedy) Name() string { return "greedy" }

func (Greedy) Solve(params Params) Result {
	p, invalid, ok := prepare(params)
	if !ok {
		return invalid
	}

	var st searchStats
	visited := p.newDiscovery()
	frontier := newPriorityFrontier()

	root := p.root()
	visited.discover(root.state, 0)
	frontier.push(p.heuristic(root.state), root)

	for frontier.len() > 0 {
		n, _ := frontier.pop()
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

		for _, succ := range p.successors(cur) {
			if !visited.discover(succ.state, n.depth+1) {
				continue
			}
			frontier.push(p.heuristic(succ.state), n.child(succ.state, succ.cost))
		}
	}

	return p.failure(st)
}
