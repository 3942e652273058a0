package engine

import (
	"encoding/json"
	"fmt"
)

// CellCode is the integer code stored in each grid cell
type CellCode int

const (
	Free     CellCode = 0
	Obstacle CellCode = 1
	Start    CellCode = 2
	Rocky    CellCode = 3
	Volcanic CellCode = 4
	Station  CellCode = 5
	Sample   CellCode = 6

	// Grid and mission constants
	GridSize      = 10
	SampleCount   = 3
	ShipFuel      = 20
	FuelMoveCost  = 0.5
	MaxFuelStates = ShipFuel + 2
	MaxStates     = GridSize * GridSize * (1 << SampleCount) * MaxFuelStates
)

// Position is a 0-indexed (row, column) grid coordinate.
// It is encoded on the wire as a two element array [row, col].
type Position struct {
	Row int
	Col int
}

// MarshalJSON encodes the position as [row, col]
func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.Row, p.Col})
}

// UnmarshalJSON accepts [row, col]
func (p *Position) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("position must be [row, col]: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("position must have 2 elements, got %d", len(pair))
	}
	p.Row, p.Col = pair[0], pair[1]
	return nil
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Move returns the position shifted by the direction delta
func (p Position) Move(d Direction) Position {
	return Position{Row: p.Row + d.DRow, Col: p.Col + d.DCol}
}

// InBounds reports whether p lies inside a GridSize x GridSize grid
func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < GridSize && p.Col >= 0 && p.Col < GridSize
}

// Grid is a read-only view over a validated 10x10 map
type Grid [][]int

// At returns the cell code at p
func (g Grid) At(p Position) CellCode {
	return CellCode(g[p.Row][p.Col])
}

// Params are the inputs of a single strategy run
type Params struct {
	Map           [][]int  `json:"map"`
	Start         Position `json:"start"`
	OperatorOrder []string `json:"operator_order,omitempty"`
	// MaxDepth limits the number of moves of any explored path; 0 means unlimited.
	MaxDepth int `json:"max_depth,omitempty"`
}

// Result is the outcome of a strategy run. It is the stable wire contract of the planner.
type Result struct {
	Path          []Position `json:"path"`
	NodesExpanded int        `json:"nodes_expanded"`
	Cost          float64    `json:"cost"`
	MaxDepth      int        `json:"max_depth"`
	Message       string     `json:"message"`
}

// Found reports whether the result carries a solution path
func (r Result) Found() bool {
	return len(r.Path) > 0
}

// Moves returns the number of moves of the solution path
func (r Result) Moves() int {
	if len(r.Path) == 0 {
		return 0
	}
	return len(r.Path) - 1
}
