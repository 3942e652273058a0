package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateParams(t *testing.T) {
	valid := gridWith(map[Position]CellCode{{0, 1}: Sample, {0, 2}: Sample, {0, 3}: Sample})

	tests := []struct {
		name    string
		params  Params
		wantErr string
	}{
		{"valid", Params{Map: valid, Start: Position{0, 0}}, ""},
		{"too few rows", Params{Map: valid[:9], Start: Position{0, 0}}, "map must have 10 rows, got 9"},
		{"short row", Params{Map: append(append([][]int{}, valid[:9]...), make([]int, 8)), Start: Position{0, 0}}, "row 9 must have 10 columns, got 8"},
		{"two samples", Params{Map: gridWith(map[Position]CellCode{{0, 1}: Sample, {0, 2}: Sample})}, "expected 3 samples, found 2"},
		{"four samples", Params{Map: gridWith(map[Position]CellCode{{0, 1}: Sample, {0, 2}: Sample, {0, 3}: Sample, {0, 4}: Sample})}, "expected 3 samples, found 4"},
		{"start out of bounds", Params{Map: valid, Start: Position{10, 0}}, "start (10,0) is outside the 10x10 grid"},
		{"negative depth", Params{Map: valid, MaxDepth: -1}, "max depth must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParams(tt.params)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSolve_InvalidInputIsIdempotent(t *testing.T) {
	params := Params{Map: gridWith(map[Position]CellCode{{0, 1}: Sample, {0, 2}: Sample})}

	for _, s := range allStrategies() {
		t.Run(s.Name(), func(t *testing.T) {
			first := s.Solve(params)
			second := s.Solve(params)

			assert.Equal(t, first, second)
			assert.NotNil(t, first.Path)
			assert.Empty(t, first.Path)
			assert.Zero(t, first.NodesExpanded)
			assert.Zero(t, first.Cost)
			assert.Zero(t, first.MaxDepth)
			assert.Equal(t, "invalid input: expected 3 samples, found 2", first.Message)
		})
	}
}
