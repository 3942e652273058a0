package engine

// Role returns the semantic role of a cell code
func (c CellCode) Role() string {
	switch c {
	case Free:
		return "free"
	case Obstacle:
		return "obstacle"
	case Start:
		return "start"
	case Rocky:
		return "rocky"
	case Volcanic:
		return "volcanic"
	case Station:
		return "station"
	case Sample:
		return "sample"
	default:
		return "unknown"
	}
}

// Passable reports whether the astronaut can enter the cell
func (c CellCode) Passable() bool {
	return c != Obstacle
}

// BaseCost is the cost of entering the cell on foot.
// Unknown codes are treated as free terrain.
func (c CellCode) BaseCost() float64 {
	switch c {
	case Rocky:
		return 3
	case Volcanic:
		return 5
	default:
		return 1
	}
}

// MoveCost returns the cost of entering a cell with the given fuel before the move.
// Fuel overrides terrain: any move made with fuel remaining costs FuelMoveCost.
func MoveCost(dest CellCode, fuelBefore int) float64 {
	if fuelBefore > 0 {
		return FuelMoveCost
	}
	return dest.BaseCost()
}
