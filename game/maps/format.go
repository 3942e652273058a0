package maps

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/wricardo/mcp-training/smartastronaut/game/engine"
)

var ErrInvalidMap = errors.New("invalid map")

// ParseMap parses the text map format. Blank lines and surrounding whitespace are ignored.
func ParseMap(text string) ([][]int, error) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	if len(lines) != engine.GridSize {
		return nil, fmt.Errorf("%w: map must have exactly %d rows, found %d", ErrInvalidMap, engine.GridSize, len(lines))
	}

	grid := make([][]int, 0, engine.GridSize)
	for i, line := range lines {
		fields := strings.Fields(line)
		row := make([]int, 0, len(fields))
		for _, field := range fields {
			v, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d contains a non-numeric value %q", ErrInvalidMap, i+1, field)
			}
			row = append(row, v)
		}
		if len(row) != engine.GridSize {
			return nil, fmt.Errorf("%w: row %d must have exactly %d cells, found %d", ErrInvalidMap, i+1, engine.GridSize, len(row))
		}
		grid = append(grid, row)
	}

	if err := ValidateCodes(grid); err != nil {
		return nil, err
	}
	return grid, nil
}

// ValidateCodes checks the grid shape and that every cell holds a known code
func ValidateCodes(grid [][]int) error {
	if len(grid) != engine.GridSize {
		return fmt.Errorf("%w: map must have exactly %d rows, found %d", ErrInvalidMap, engine.GridSize, len(grid))
	}
	for i, row := range grid {
		if len(row) != engine.GridSize {
			return fmt.Errorf("%w: row %d must have exactly %d cells, found %d", ErrInvalidMap, i+1, engine.GridSize, len(row))
		}
		for j, v := range row {
			if v < int(engine.Free) || v > int(engine.Sample) {
				return fmt.Errorf("%w: cell (%d,%d) has unknown code %d", ErrInvalidMap, i, j, v)
			}
		}
	}
	return nil
}

// Format renders a grid in the text map format
func Format(grid [][]int) string {
	var b strings.Builder
	for _, row := range grid {
		for j, v := range row {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strconv.Itoa(v))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Clone returns a deep copy of the grid
func Clone(grid [][]int) [][]int {
	if grid == nil {
		return nil
	}
	out := make([][]int, len(grid))
	for i, row := range grid {
		out[i] = append([]int(nil), row...)
	}
	return out
}
