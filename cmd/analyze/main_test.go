package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/smartastronaut/game/engine"
	"github.com/wricardo/mcp-training/smartastronaut/game/maps"
)

// writeMap stores grid as a text map in dir and returns its path
func writeMap(t *testing.T, dir, name string, grid [][]int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(maps.Format(grid)), 0644); err != nil {
		t.Fatalf("Failed to write map: %v", err)
	}
	return path
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(context.Background(), append([]string{"analyze"}, args...))
	return out.String(), err
}

func TestInfo(t *testing.T) {
	path := writeMap(t, t.TempDir(), "canyon.txt", maps.BuiltinMap())

	out, err := runApp(t, "info", path)
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}

	for _, want := range []string{
		"Astronaut: (0,0)",
		"Spacecraft: (2,2)",
		"Samples: 3",
		"Ready for a mission",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestInfo_LibraryMap(t *testing.T) {
	dir := t.TempDir()
	writeMap(t, dir, "ridge.txt", maps.BuiltinMap())

	out, err := runApp(t, "--maps-dir", dir, "info", "ridge")
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	if !strings.Contains(out, "Map: ridge") {
		t.Errorf("Unexpected output:\n%s", out)
	}

	if _, err := runApp(t, "--maps-dir", dir, "info", "missing"); !errors.Is(err, maps.ErrMapNotFound) {
		t.Errorf("Expected ErrMapNotFound, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := writeMap(t, dir, "good.txt", maps.BuiltinMap())

	noSamples := maps.BuiltinMap()
	noSamples[2][8] = 0
	notReady := writeMap(t, dir, "two.txt", noSamples)

	broken := filepath.Join(dir, "broken.txt")
	os.WriteFile(broken, []byte("0 1 2\n"), 0644)

	out, err := runApp(t, "validate", good)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(out, "✓ "+good) {
		t.Errorf("Unexpected output:\n%s", out)
	}

	out, err = runApp(t, "validate", good, notReady, broken)
	if !errors.Is(err, errInvalidMaps) {
		t.Fatalf("Expected errInvalidMaps, got %v", err)
	}
	if !strings.Contains(err.Error(), "2 of 3") {
		t.Errorf("Expected failure count in error, got %v", err)
	}
	if strings.Count(out, "✗") != 2 {
		t.Errorf("Expected two failures in output:\n%s", out)
	}
}

func TestRun(t *testing.T) {
	path := writeMap(t, t.TempDir(), "canyon.txt", maps.BuiltinMap())

	out, err := runApp(t, "run", "--algorithm", "astar", path)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	for _, want := range []string{"Algorithm: astar", "Optimal solution found - 3 samples collected", "Cost: 15"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}

	out, err = runApp(t, "run", "-a", "bfs", path)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out, "Moves: 25") {
		t.Errorf("Expected 25 moves for bfs:\n%s", out)
	}

	out, err = runApp(t, "run", "--start", "10,0", path)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out, "invalid input") {
		t.Errorf("Expected invalid input message:\n%s", out)
	}

	if _, err := runApp(t, "run", "--algorithm", "dijkstra", path); !errors.Is(err, engine.ErrUnknownStrategy) {
		t.Errorf("Expected ErrUnknownStrategy, got %v", err)
	}
}

func TestCompare(t *testing.T) {
	path := writeMap(t, t.TempDir(), "canyon.txt", maps.BuiltinMap())

	out, err := runApp(t, "compare", path)
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 8 {
		t.Fatalf("Expected header plus 5 rows, got:\n%s", out)
	}
	if !strings.HasPrefix(lines[2], "ALGORITHM") {
		t.Errorf("Expected table header, got %q", lines[2])
	}
	for i, name := range []string{"bfs", "dfs", "uniform_cost", "greedy", "astar"} {
		fields := strings.Fields(lines[3+i])
		if fields[0] != name || fields[1] != "true" {
			t.Errorf("Row %d: unexpected %v", i, fields)
		}
	}
	if fields := strings.Fields(lines[7]); fields[3] != "15" {
		t.Errorf("Expected astar cost 15, got %v", fields)
	}
}

func TestCompare_Parallel(t *testing.T) {
	params := engine.Params{Map: maps.BuiltinMap(), Start: engine.Position{}}

	rows, err := compare(context.Background(), params)
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	for _, row := range rows {
		expected, _ := engine.Solve(row.Info.Name, params)
		if !reflect.DeepEqual(row.Result, expected) {
			t.Errorf("%s: concurrent result differs from a direct solve", row.Info.Name)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := compare(ctx, params); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestSplitOrder(t *testing.T) {
	tests := []struct {
		input    []string
		expected []string
	}{
		{nil, nil},
		{[]string{"derecha,abajo"}, []string{"derecha", "abajo"}},
		{[]string{"up", " left , right "}, []string{"up", "left", "right"}},
	}

	for _, tt := range tests {
		if got := splitOrder(tt.input); !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("splitOrder(%v) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestParsePosition(t *testing.T) {
	if p, err := parsePosition(" 2, 1"); err != nil || p != (engine.Position{Row: 2, Col: 1}) {
		t.Errorf("parsePosition = %v, %v", p, err)
	}
	for _, bad := range []string{"2", "a,1", "1,b", "1,2,3"} {
		if _, err := parsePosition(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}
