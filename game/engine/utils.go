package engine

// CountCells counts the cells of the grid holding code
func CountCells(grid [][]int, code CellCode) int {
	count := 0
	for _, row := range grid {
		for _, cell := range row {
			if CellCode(cell) == code {
				count++
			}
		}
	}
	return count
}

// FindCells returns the positions holding code in row-major order
func FindCells(grid [][]int, code CellCode) []Position {
	var out []Position
	for r, row := range grid {
		for c, cell := range row {
			if CellCode(cell) == code {
				out = append(out, Position{Row: r, Col: c})
			}
		}
	}
	return out
}

// FindSamples returns the sample positions in row-major order
func FindSamples(grid [][]int) []Position {
	return FindCells(grid, Sample)
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dr := from.Row - to.Row
	if dr < 0 {
		dr = -dr
	}
	dc := from.Col - to.Col
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}

// Heuristic estimates the remaining cost from s: the Manhattan distance to the
// nearest sample not yet in s.Collected, times the cheapest possible move cost.
// It is 0 once every sample is collected.
func Heuristic(samples []Position, s State) float64 {
	best := -1
	for i, sample := range samples {
		if s.Collected.Has(i) {
			continue
		}
		if d := ManhattanDistance(s.Pos, sample); best == -1 || d < best {
			best = d
		}
	}
	if best < 0 {
		return 0
	}
	return float64(best) * FuelMoveCost
}
