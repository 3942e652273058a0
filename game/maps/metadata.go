package maps

import "github.com/wricardo/mcp-training/smartastronaut/game/engine"

// Metadata summarizes a loaded map
type Metadata struct {
	Valid           bool              `json:"valid"`
	Start           *engine.Position  `json:"astronaut_position"`
	Station         *engine.Position  `json:"spacecraft_position"`
	Goal            *engine.Position  `json:"goal"`
	Samples         int               `json:"scientific_samples"`
	SamplePositions []engine.Position `json:"sample_positions"`
	Obstacles       int               `json:"obstacles"`
	Rocky           int               `json:"rocky_terrain"`
	Volcanic        int               `json:"volcanic_terrain"`
	Stations        int               `json:"spacecraft"`
	Ready           bool              `json:"ready"`
}

// Analyze counts the terrain of the grid and locates the start and station cells.
// The first start and station cell in row-major order are reported.
func Analyze(grid [][]int) Metadata {
	meta := Metadata{
		Valid:           ValidateCodes(grid) == nil,
		SamplePositions: []engine.Position{},
	}

	for i, row := range grid {
		for j, v := range row {
			pos := engine.Position{Row: i, Col: j}
			switch engine.CellCode(v) {
			case engine.Obstacle:
				meta.Obstacles++
			case engine.Start:
				if meta.Start == nil {
					meta.Start = &pos
				}
			case engine.Rocky:
				meta.Rocky++
			case engine.Volcanic:
				meta.Volcanic++
			case engine.Station:
				meta.Stations++
				if meta.Station == nil {
					meta.Station = &pos
				}
			case engine.Sample:
				meta.Samples++
				meta.SamplePositions = append(meta.SamplePositions, pos)
			}
		}
	}

	meta.Ready = meta.Valid && meta.Start != nil && meta.Samples == engine.SampleCount
	return meta
}
