package maps

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/mcp-training/smartastronaut/game/engine"
)

const missionText = `
0 0 0 1 0 0 0 0 0 0
0 1 0 1 0 3 3 0 6 0
0 2 0 0 0 3 4 0 1 0
0 1 1 1 0 0 4 0 1 0
0 0 0 5 0 0 0 0 1 0

1 1 0 1 1 1 3 1 1 0
0 6 0 0 0 4 4 0 0 0
0 1 1 1 0 1 0 1 1 0
0 3 3 0 0 1 0 0 6 0
  0 0 0 0 4 1 0 0 0 0
`

func TestParseMap(t *testing.T) {
	grid, err := ParseMap(missionText)
	require.NoError(t, err)
	require.Len(t, grid, engine.GridSize)
	assert.Equal(t, []int{0, 2, 0, 0, 0, 3, 4, 0, 1, 0}, grid[2])
	assert.Equal(t, []int{0, 0, 0, 0, 4, 1, 0, 0, 0, 0}, grid[9])
}

func TestParseMap_Errors(t *testing.T) {
	lines := strings.Split(strings.TrimSpace(missionText), "\n")

	tests := []struct {
		name    string
		text    string
		wantErr string
	}{
		{"empty", "", "map must have exactly 10 rows, found 0"},
		{"nine rows", strings.Join(lines[:9], "\n"), "map must have exactly 10 rows, found 9"},
		{"short row", strings.Replace(missionText, "0 6 0 0 0 4 4 0 0 0", "0 6 0 0 0 4 4 0 0", 1), "row 7 must have exactly 10 cells, found 9"},
		{"non numeric", strings.Replace(missionText, "0 2 0", "0 X 0", 1), `row 3 contains a non-numeric value "X"`},
		{"unknown code", strings.Replace(missionText, "0 2 0", "0 7 0", 1), "cell (2,1) has unknown code 7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMap(tt.text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidMap))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	grid, err := ParseMap(missionText)
	require.NoError(t, err)

	again, err := ParseMap(Format(grid))
	require.NoError(t, err)
	assert.Equal(t, grid, again)
	assert.True(t, strings.HasPrefix(Format(grid), "0 0 0 1 0 0 0 0 0 0\n0 1 0"))
}

func TestClone(t *testing.T) {
	grid := BuiltinMap()
	cp := Clone(grid)
	cp[0][0] = 9
	assert.Equal(t, 2, grid[0][0])
	assert.Nil(t, Clone(nil))
}

func TestAnalyze(t *testing.T) {
	grid, err := ParseMap(missionText)
	require.NoError(t, err)

	meta := Analyze(grid)
	assert.True(t, meta.Valid)
	assert.True(t, meta.Ready)
	assert.Equal(t, &engine.Position{Row: 2, Col: 1}, meta.Start)
	assert.Equal(t, &engine.Position{Row: 4, Col: 3}, meta.Station)
	assert.Nil(t, meta.Goal)
	assert.Equal(t, 3, meta.Samples)
	assert.Equal(t, []engine.Position{{Row: 1, Col: 8}, {Row: 6, Col: 1}, {Row: 8, Col: 8}}, meta.SamplePositions)
	assert.Equal(t, 1, meta.Stations)
	assert.Equal(t, 6, meta.Rocky)
	assert.Equal(t, 5, meta.Volcanic)
	assert.Equal(t, 24, meta.Obstacles)
}

func TestAnalyze_NotReady(t *testing.T) {
	grid := BuiltinMap()
	grid[0][0] = 0
	meta := Analyze(grid)
	assert.True(t, meta.Valid)
	assert.Nil(t, meta.Start)
	assert.False(t, meta.Ready)

	grid = BuiltinMap()
	grid[2][8] = 0
	assert.False(t, Analyze(grid).Ready)
}
