package engine

// AStar orders the frontier by f = g + h with an admissible heuristic and
// returns a minimum cost solution. A state is pushed again whenever a cheaper
// path to it is found; outdated frontier entries are skipped without counting.
// Under a depth limit the best cost is kept per state and depth, so a costlier
// arrival that leaves more moves in hand is not discarded.
type AStar struct{}

// layer keys the best-cost table. depth stays zero when there is no limit.
type layer struct {
	state State
	depth int
}

func (p *problem) layerOf(s State, depth int) layer {
	if p.maxDepth == 0 {
		return layer{state: s}
	}
	return layer{state: s, depth: depth}
}

func (AStar) Name() string { return "astar" }

func (AStar) Solve(params Params) Result {
	p, invalid, ok := prepare(params)
	if !ok {
		return invalid
	}

	var st searchStats
	best := make(map[layer]float64)
	frontier := newPriorityFrontier()

	root := p.root()
	best[p.layerOf(root.state, 0)] = 0
	frontier.push(p.heuristic(root.state), root)

	for frontier.len() > 0 {
		n, _ := frontier.pop()
		if n.g > best[p.layerOf(n.state, n.depth)] {
			continue
		}
		st.expanded++
		st.reached(n)

		cur := p.collect(n.state)
		if p.isGoal(cur) {
			return p.solution(n, st, successMessage("Optimal solution found"))
		}
		if !p.expandable(n) {
			continue
		}

		for _, succ := range p.successors(cur) {
			g := n.g + succ.cost
			key := p.layerOf(succ.state, n.depth+1)
			if old, seen := best[key]; seen && g >= old {
				continue
			}
			best[key] = g
			frontier.push(g+p.heuristic(succ.state), n.child(succ.state, succ.cost))
		}
	}

	return p.failure(st)
}
