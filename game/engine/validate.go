package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is wrapped by every validation failure
var ErrInvalidInput = errors.New("invalid input")

// ValidateGrid checks the grid is GridSize x GridSize and holds exactly SampleCount samples
func ValidateGrid(grid [][]int) error {
	if len(grid) != GridSize {
		return fmt.Errorf("%w: map must have %d rows, got %d", ErrInvalidInput, GridSize, len(grid))
	}
	for i, row := range grid {
		if len(row) != GridSize {
			return fmt.Errorf("%w: row %d must have %d columns, got %d", ErrInvalidInput, i, GridSize, len(row))
		}
	}
	if n := CountCells(grid, Sample); n != SampleCount {
		return fmt.Errorf("%w: expected %d samples, found %d", ErrInvalidInput, SampleCount, n)
	}
	return nil
}

// ValidateParams checks the grid and that the start lies inside it
func ValidateParams(params Params) error {
	if err := ValidateGrid(params.Map); err != nil {
		return err
	}
	if !params.Start.InBounds() {
		return fmt.Errorf("%w: start %v is outside the %dx%d grid", ErrInvalidInput, params.Start, GridSize, GridSize)
	}
	if params.MaxDepth < 0 {
		return fmt.Errorf("%w: max depth must not be negative, got %d", ErrInvalidInput, params.MaxDepth)
	}
	return nil
}
