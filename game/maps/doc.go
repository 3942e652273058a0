// Package maps provides map loading and management for the Smart Astronaut planner.
//
// The maps package handles:
//   - Parsing the plain text map format into a 10x10 grid
//   - Validating dimensions and cell codes
//   - Analyzing a grid into metadata (start, refuel station, terrain counts)
//   - Discovering, caching and saving named maps in a directory
//
// Map Format:
//
// A map is ten non-empty lines of ten whitespace separated integers:
//
//	0 = free, 1 = obstacle, 2 = astronaut start, 3 = rocky terrain,
//	4 = volcanic terrain, 5 = refuel station, 6 = scientific sample
//
// Usage:
//
//	manager, err := maps.NewManager("maps")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	grid, err := manager.LoadMap("mission")
//	meta := maps.Analyze(grid)
//	fmt.Println(meta.Start, meta.Samples)
//
// The sample count is reported in the metadata but not enforced by the parser;
// the search engine rejects maps that do not hold exactly three samples.
package maps
