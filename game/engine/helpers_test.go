package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// blankGrid returns a 10x10 grid of free cells
func blankGrid() [][]int {
	grid := make([][]int, GridSize)
	for i := range grid {
		grid[i] = make([]int, GridSize)
	}
	return grid
}

// gridWith returns a blank grid with the given cells set
func gridWith(cells map[Position]CellCode) [][]int {
	grid := blankGrid()
	for p, code := range cells {
		grid[p.Row][p.Col] = int(code)
	}
	return grid
}

// missionGrid is a mixed-terrain map with a refuel station and three samples
func missionGrid() [][]int {
	return [][]int{
		{0, 0, 0, 1, 0, 0, 0, 0, 0, 0},
		{0, 1, 0, 1, 0, 3, 3, 0, 6, 0},
		{0, 2, 0, 0, 0, 3, 4, 0, 1, 0},
		{0, 1, 1, 1, 0, 0, 4, 0, 1, 0},
		{0, 0, 0, 5, 0, 0, 0, 0, 1, 0},
		{1, 1, 0, 1, 1, 1, 3, 1, 1, 0},
		{0, 6, 0, 0, 0, 4, 4, 0, 0, 0},
		{0, 1, 1, 1, 0, 1, 0, 1, 1, 0},
		{0, 3, 3, 0, 0, 1, 0, 0, 6, 0},
		{0, 0, 0, 0, 4, 1, 0, 0, 0, 0},
	}
}

var missionStart = Position{Row: 2, Col: 1}

func allStrategies() []Strategy {
	return []Strategy{BFS{}, DFS{}, UniformCost{}, Greedy{}, AStar{}}
}

// replayPath walks path from the start, checking every move is legal, and
// returns the cost of the walk and the samples collected along it.
func replayPath(t *testing.T, grid [][]int, path []Position) (float64, int) {
	t.Helper()
	require.NotEmpty(t, path)

	samples := FindSamples(grid)
	index := make(map[Position]int)
	for i, s := range samples {
		index[s] = i
	}

	g := Grid(grid)
	s := State{Pos: path[0]}
	if i, ok := index[s.Pos]; ok {
		s.Collected = s.Collected.With(i)
	}

	total := 0.0
	for _, next := range path[1:] {
		require.Equal(t, 1, ManhattanDistance(s.Pos, next), "non-adjacent move %v -> %v", s.Pos, next)
		require.True(t, CanMoveTo(g, next), "illegal move into %v", next)

		var cost float64
		s, cost = Step(g, s, next)
		total += cost
		if i, ok := index[s.Pos]; ok {
			s.Collected = s.Collected.With(i)
		}
	}
	return total, s.Collected.Count()
}
