package engine

import "math/bits"

// SampleSet is a bitset over the indices of the mission's samples
type SampleSet uint8

// Has reports whether sample i is in the set
func (s SampleSet) Has(i int) bool {
	return s&(1<<uint(i)) != 0
}

// With returns the set with sample i added
func (s SampleSet) With(i int) SampleSet {
	return s | 1<<uint(i)
}

// Count returns the number of samples in the set
func (s SampleSet) Count() int {
	return bits.OnesCount8(uint8(s))
}

// AllSamples is the set holding every sample
const AllSamples SampleSet = 1<<SampleCount - 1

// State is the augmented search state. It is comparable and used directly as a
// deduplication key.
type State struct {
	Pos       Position
	Collected SampleSet
	Fuel      int
	Refueled  bool
}

// Step moves from s into next and returns the resulting state and the move cost.
// The cost is computed with the fuel held before the move.
func Step(grid Grid, s State, next Position) (State, float64) {
	dest := grid.At(next)
	cost := MoveCost(dest, s.Fuel)

	out := State{Pos: next, Collected: s.Collected, Fuel: s.Fuel, Refueled: s.Refueled}
	switch {
	case dest == Station && !s.Refueled:
		out.Fuel = ShipFuel
		out.Refueled = true
	case s.Fuel > 0:
		out.Fuel = s.Fuel - 1
	}
	return out, cost
}

// node links a state to the node it was reached from
type node struct {
	state  State
	parent *node
	g      float64
	depth  int
}

func (n *node) child(s State, cost float64) *node {
	return &node{state: s, parent: n, g: n.g + cost, depth: n.depth + 1}
}

// path rebuilds the positions from the root to n
func (n *node) path() []Position {
	out := make([]Position, n.depth+1)
	for cur := n; cur != nil; cur = cur.parent {
		out[cur.depth] = cur.state.Pos
	}
	return out
}
