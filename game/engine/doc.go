// Package engine provides the search core of the Smart Astronaut mission planner.
//
// The engine package finds a route on a 10x10 grid that starts at a given
// cell and visits all three scientific sample cells. It implements:
//   - A terrain model mapping cell codes to traversal costs
//   - A neighbor generator honoring a configurable operator order
//   - An augmented search state (position, collected samples, fuel)
//   - An admissible heuristic for informed strategies
//   - Five strategies: BFS, DFS, uniform cost, greedy best-first and A*
//
// Core Types:
//
// Params carries the grid, the start position and the operator order for a
// single run. Every Strategy consumes Params and returns a Result with the
// path, the number of expanded nodes, the path cost, the maximum depth
// reached and a human readable message. Strategies are looked up by name
// through the registry.
//
// Usage:
//
//	strategy, err := engine.Lookup("astar")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result := strategy.Solve(engine.Params{
//		Map:   grid,
//		Start: engine.Position{Row: 2, Col: 1},
//	})
//	fmt.Println(result.Cost, result.Message)
//
// Cost Rules:
//
// Entering a free, start, sample or refuel cell costs 1, rocky terrain costs 3
// and volcanic terrain costs 5. The first time the astronaut reaches the refuel
// station the ship is boarded with 20 units of fuel; while fuel remains every
// move costs 0.5 and consumes one unit. The station can be used only once.
//
// Invalid input never panics: it is reported through Result.Message with an
// empty path and zeroed statistics.
package engine
