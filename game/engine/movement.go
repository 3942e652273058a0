package engine

import "strings"

// Direction is a named orthogonal move
type Direction struct {
	Name string
	DRow int
	DCol int
}

var (
	Up    = Direction{Name: "arriba", DRow: -1, DCol: 0}
	Down  = Direction{Name: "abajo", DRow: 1, DCol: 0}
	Left  = Direction{Name: "izquierda", DRow: 0, DCol: -1}
	Right = Direction{Name: "derecha", DRow: 0, DCol: 1}
)

// DefaultOrder is up, down, left, right
var DefaultOrder = []Direction{Up, Down, Left, Right}

var directionsByName = map[string]Direction{
	"arriba":    Up,
	"abajo":     Down,
	"izquierda": Left,
	"derecha":   Right,
	"up":        Up,
	"down":      Down,
	"left":      Left,
	"right":     Right,
}

// ParseDirection resolves an operator name, case-insensitively
func ParseDirection(name string) (Direction, bool) {
	d, ok := directionsByName[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}

// ParseOperatorOrder converts operator names into an ordered list of directions.
// A nil order yields DefaultOrder. Unrecognized names are dropped, as are repeats
// of a direction already listed, so a non-nil order may yield no directions at all.
func ParseOperatorOrder(names []string) []Direction {
	if names == nil {
		return DefaultOrder
	}

	order := make([]Direction, 0, len(DefaultOrder))
	seen := make(map[Direction]bool, len(DefaultOrder))
	for _, name := range names {
		d, ok := ParseDirection(name)
		if !ok || seen[d] {
			continue
		}
		seen[d] = true
		order = append(order, d)
	}
	return order
}

// CanMoveTo checks if the position is inside the grid and not an obstacle
func CanMoveTo(grid Grid, pos Position) bool {
	return pos.InBounds() && grid.At(pos).Passable()
}

// Neighbors returns the reachable adjacent positions of pos in the given order
func Neighbors(grid Grid, pos Position, order []Direction) []Position {
	result := make([]Position, 0, len(order))
	for _, d := range order {
		next := pos.Move(d)
		if CanMoveTo(grid, next) {
			result = append(result, next)
		}
	}
	return result
}

// PathDirections names the move taken between each pair of consecutive path cells.
// Steps that are not a single orthogonal move are reported as "?".
func PathDirections(path []Position) []string {
	if len(path) < 2 {
		return []string{}
	}
	names := make([]string, 0, len(path)-1)
	for i := 1; i < len(path); i++ {
		name := "?"
		for _, d := range DefaultOrder {
			if path[i-1].Move(d) == path[i] {
				name = d.Name
				break
			}
		}
		names = append(names, name)
	}
	return names
}
