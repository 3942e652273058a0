package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStrategy is returned when a strategy name is not registered
var ErrUnknownStrategy = errors.New("unknown strategy")

// Strategy is a search algorithm that can be dispatched by name
type Strategy interface {
	Name() string
	Solve(params Params) Result
}

// Info describes a registered strategy
type Info struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
}

type registration struct {
	strategy Strategy
	info     Info
}

var registry = []registration{
	{BFS{}, Info{
		Name:        "bfs",
		DisplayName: "Breadth-First Search",
		Description: "Uninformed search expanding level by level. Finds the route with the fewest moves.",
	}},
	{DFS{}, Info{
		Name:        "dfs",
		DisplayName: "Depth-First Search",
		Description: "Uninformed search following one branch as deep as possible. Neither move nor cost optimal.",
	}},
	{UniformCost{}, Info{
		Name:        "uniform_cost",
		DisplayName: "Uniform Cost Search",
		Description: "Uninformed search expanding the cheapest accumulated cost first.",
	}},
	{Greedy{}, Info{
		Name:        "greedy",
		DisplayName: "Greedy Best-First Search",
		Description: "Informed search ordered by distance to the nearest uncollected sample.",
	}},
	{AStar{}, Info{
		Name:        "astar",
		DisplayName: "A* Search",
		Description: "Informed search ordered by cost plus an admissible heuristic. Finds the cheapest route.",
	}},
}

// Lookup returns the strategy registered under name, ignoring case
func Lookup(name string) (Strategy, error) {
	r, err := find(name)
	if err != nil {
		return nil, err
	}
	return r.strategy, nil
}

// Describe returns the descriptor of the strategy registered under name
func Describe(name string) (Info, error) {
	r, err := find(name)
	if err != nil {
		return Info{}, err
	}
	info := r.info
	info.Available = true
	return info, nil
}

func find(name string) (registration, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, r := range registry {
		if r.info.Name == key {
			return r, nil
		}
	}
	return registration{}, fmt.Errorf("%w: %s", ErrUnknownStrategy, name)
}

// Strategies lists every registered strategy in registration order
func Strategies() []Info {
	out := make([]Info, 0, len(registry))
	for _, r := range registry {
		info := r.info
		info.Available = true
		out = append(out, info)
	}
	return out
}

// Solve runs the strategy registered under name
func Solve(name string, params Params) (Result, error) {
	s, err := Lookup(name)
	if err != nil {
		return Result{}, err
	}
	return s.Solve(params), nil
}

func successMessage(prefix string) string {
	return fmt.Sprintf("%s - %d samples collected", prefix, SampleCount)
}
