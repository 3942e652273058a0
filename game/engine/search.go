package engine

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

const noSolutionMessage = "No solution found to collect the 3 samples"

// problem is the validated, read-only description of one run
type problem struct {
	grid     Grid
	start    Position
	samples  []Position
	index    map[Position]int
	order    []Direction
	maxDepth int
}

// successor is a state reachable in one move and the cost of that move
type successor struct {
	state State
	cost  float64
}

// searchStats accumulates the counters reported in a Result
type searchStats struct {
	expanded int
	maxDepth int
}

func (st *searchStats) reached(n *node) {
	if n.depth > st.maxDepth {
		st.maxDepth = n.depth
	}
}

// discovery decides which generated states go on the frontier. Without a depth
// limit a state is accepted once. Under a limit a state is accepted again when it
// is reached at a smaller depth.
type discovery struct {
	limited bool
	seen    mapset.Set[State]
	depth   map[State]int
}

func (p *problem) newDiscovery() *discovery {
	if p.maxDepth > 0 {
		return &discovery{limited: true, depth: make(map[State]int)}
	}
	return &discovery{seen: mapset.New[State]()}
}

// discover reports whether s, reached at depth, should be pushed
func (d *discovery) discover(s State, depth int) bool {
	if !d.limited {
		if d.seen.Has(s) {
			return false
		}
		d.seen.Put(s)
		return true
	}
	if old, ok := d.depth[s]; ok && old <= depth {
		return false
	}
	d.depth[s] = depth
	return true
}

// stale reports whether n was superseded by a shallower copy of its state
func (d *discovery) stale(n *node) bool {
	return d.limited && d.depth[n.state] < n.depth
}

// prepare validates params and builds the problem. On failure the returned
// Result is the one to hand back to the caller.
func prepare(params Params) (*problem, Result, bool) {
	if err := ValidateParams(params); err != nil {
		return nil, Result{Path: []Position{}, Message: err.Error()}, false
	}

	samples := FindSamples(params.Map)
	index := make(map[Position]int, len(samples))
	for i, s := range samples {
		index[s] = i
	}

	return &problem{
		grid:     Grid(params.Map),
		start:    params.Start,
		samples:  samples,
		index:    index,
		order:    ParseOperatorOrder(params.OperatorOrder),
		maxDepth: params.MaxDepth,
	}, Result{}, true
}

func (p *problem) root() *node {
	return &node{state: State{Pos: p.start}}
}

// collect picks up the sample under s, if any
func (p *problem) collect(s State) State {
	if i, ok := p.index[s.Pos]; ok && !s.Collected.Has(i) {
		s.Collected = s.Collected.With(i)
	}
	return s
}

func (p *problem) isGoal(s State) bool {
	return s.Collected == AllSamples
}

// expandable reports whether n may generate children under the depth limit
func (p *problem) expandable(n *node) bool {
	return p.maxDepth == 0 || n.depth < p.maxDepth
}

// successors lists the states reachable from s in operator order
func (p *problem) successors(s State) []successor {
	next := Neighbors(p.grid, s.Pos, p.order)
	out := make([]successor, 0, len(next))
	for _, pos := range next {
		st, cost := Step(p.grid, s, pos)
		out = append(out, successor{state: st, cost: cost})
	}
	return out
}

func (p *problem) heuristic(s State) float64 {
	return Heuristic(p.samples, s)
}

func (p *problem) solution(goal *node, st searchStats, message string) Result {
	return Result{
		Path:          goal.path(),
		NodesExpanded: st.expanded,
		Cost:          goal.g,
		MaxDepth:      st.maxDepth,
		Message:       message,
	}
}

func (p *problem) failure(st searchStats) Result {
	message := noSolutionMessage
	if p.maxDepth > 0 {
		message = fmt.Sprintf("%s within depth %d", noSolutionMessage, p.maxDepth)
	}
	return Result{
		Path:          []Position{},
		NodesExpanded: st.expanded,
		MaxDepth:      st.maxDepth,
		Message:       message,
	}
}
