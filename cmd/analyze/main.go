// Command analyze inspects mission maps and runs the search strategies on them
// from the command line. A map argument is either a path to a .txt map file or
// the name of a map in the library directory (-maps-dir, MAPS_DIR).
//
//	analyze info mission
//	analyze validate maps/*.txt
//	analyze run --algorithm astar --order derecha,abajo mission
//	analyze compare --start 2,1 maps/mission.txt
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/smartastronaut/game/engine"
	"github.com/wricardo/mcp-training/smartastronaut/game/maps"
	"golang.org/x/sync/errgroup"
)

var errInvalidMaps = errors.New("one or more maps are invalid")

func main() {
	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
}

// newApp builds the command tree writing its reports to out
func newApp(out io.Writer) *cli.Command {
	mapsDir := &cli.StringFlag{
		Name:    "maps-dir",
		Usage:   "directory of the map library",
		Value:   "maps",
		Sources: cli.EnvVars("MAPS_DIR"),
	}
	searchFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "start",
			Usage: "start position as row,col (defaults to the astronaut cell)",
		},
		&cli.StringSliceFlag{
			Name:  "order",
			Usage: "operator order, e.g. arriba,abajo,izquierda,derecha",
		},
		&cli.IntFlag{
			Name:  "max-depth",
			Usage: "maximum number of moves explored (0 = unlimited)",
		},
	}

	return &cli.Command{
		Name:  "analyze",
		Usage: "inspect mission maps and compare search strategies",
		Flags: []cli.Flag{mapsDir},
		Commands: []*cli.Command{
			{
				Name:      "info",
				Usage:     "print the metadata of a map",
				ArgsUsage: "<map>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name, grid, err := loadGrid(cmd.String("maps-dir"), cmd.Args().First())
					if err != nil {
						return err
					}
					printInfo(out, name, grid)
					return nil
				},
			},
			{
				Name:      "validate",
				Usage:     "check that maps parse and are ready for a mission",
				ArgsUsage: "<map>...",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() == 0 {
						return fmt.Errorf("at least one map is required")
					}
					return validateMaps(out, cmd.String("maps-dir"), cmd.Args().Slice())
				},
			},
			{
				Name:      "run",
				Usage:     "run one strategy and print its route",
				ArgsUsage: "<map>",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "algorithm",
						Aliases: []string{"a"},
						Usage:   "bfs, dfs, uniform_cost, greedy or astar",
						Value:   "astar",
					},
				}, searchFlags...),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					_, params, err := searchParams(cmd)
					if err != nil {
						return err
					}
					strategy, err := engine.Lookup(cmd.String("algorithm"))
					if err != nil {
						return err
					}
					printRun(out, strategy.Name(), strategy.Solve(params))
					return nil
				},
			},
			{
				Name:      "compare",
				Usage:     "run every strategy on a map and tabulate the results",
				ArgsUsage: "<map>",
				Flags:     searchFlags,
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name, params, err := searchParams(cmd)
					if err != nil {
						return err
					}
					rows, err := compare(ctx, params)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Map %s from %v\n\n", name, params.Start)
					printComparison(out, rows)
					return nil
				},
			},
		},
	}
}

// loadGrid reads a map file, or a library map when arg is not an existing file
func loadGrid(mapsDir, arg string) (string, [][]int, error) {
	if arg == "" {
		return "", nil, fmt.Errorf("a map file or library map name is required")
	}

	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		data, err := os.ReadFile(arg)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read %s: %w", arg, err)
		}
		grid, err := maps.ParseMap(string(data))
		if err != nil {
			return "", nil, fmt.Errorf("%s: %w", arg, err)
		}
		return arg, grid, nil
	}

	manager, err := maps.NewManager(mapsDir)
	if err != nil {
		return "", nil, err
	}
	grid, err := manager.LoadMap(arg)
	if err != nil {
		return "", nil, err
	}
	return arg, grid, nil
}

// searchParams assembles engine parameters from the map argument and search flags
func searchParams(cmd *cli.Command) (string, engine.Params, error) {
	name, grid, err := loadGrid(cmd.String("maps-dir"), cmd.Args().First())
	if err != nil {
		return "", engine.Params{}, err
	}

	params := engine.Params{
		Map:           grid,
		OperatorOrder: splitOrder(cmd.StringSlice("order")),
		MaxDepth:      int(cmd.Int("max-depth")),
	}

	if raw := cmd.String("start"); raw != "" {
		start, err := parsePosition(raw)
		if err != nil {
			return "", engine.Params{}, err
		}
		params.Start = start
	} else if start := maps.Analyze(grid).Start; start != nil {
		params.Start = *start
	} else {
		return "", engine.Params{}, fmt.Errorf("%s has no astronaut cell; pass --start row,col", name)
	}

	return name, params, nil
}

// splitOrder accepts both repeated flags and comma-separated values
func splitOrder(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	var order []string
	for _, v := range values {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				order = append(order, name)
			}
		}
	}
	return order
}

func parsePosition(raw string) (engine.Position, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return engine.Position{}, fmt.Errorf("start must be row,col: %q", raw)
	}
	row, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return engine.Position{}, fmt.Errorf("invalid start row %q", parts[0])
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return engine.Position{}, fmt.Errorf("invalid start column %q", parts[1])
	}
	return engine.Position{Row: row, Col: col}, nil
}

func printInfo(out io.Writer, name string, grid [][]int) {
	meta := maps.Analyze(grid)

	fmt.Fprintf(out, "Map: %s\n", name)
	if meta.Start != nil {
		fmt.Fprintf(out, "Astronaut: %v\n", *meta.Start)
	} else {
		fmt.Fprintf(out, "Astronaut: missing\n")
	}
	if meta.Station != nil {
		fmt.Fprintf(out, "Spacecraft: %v\n", *meta.Station)
	}
	fmt.Fprintf(out, "Samples: %d %v\n", meta.Samples, meta.SamplePositions)
	fmt.Fprintf(out, "Obstacles: %d\n", meta.Obstacles)
	fmt.Fprintf(out, "Rocky terrain: %d\n", meta.Rocky)
	fmt.Fprintf(out, "Volcanic terrain: %d\n", meta.Volcanic)

	if meta.Ready {
		fmt.Fprintf(out, "✅ Ready for a mission\n")
	} else {
		fmt.Fprintf(out, "⚠️  Not ready: needs an astronaut cell and exactly %d samples\n", engine.SampleCount)
	}
}

func validateMaps(out io.Writer, mapsDir string, args []string) error {
	failed := 0
	for _, arg := range args {
		_, grid, err := loadGrid(mapsDir, arg)
		switch {
		case err != nil:
			fmt.Fprintf(out, "✗ %s: %v\n", arg, err)
			failed++
		case !maps.Analyze(grid).Ready:
			fmt.Fprintf(out, "✗ %s: needs an astronaut cell and exactly %d samples\n", arg, engine.SampleCount)
			failed++
		default:
			fmt.Fprintf(out, "✓ %s\n", arg)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w (%d of %d)", errInvalidMaps, failed, len(args))
	}
	return nil
}

func printRun(out io.Writer, name string, result engine.Result) {
	fmt.Fprintf(out, "Algorithm: %s\n%s\n", name, result.Message)
	if result.Found() {
		parts := make([]string, 0, len(result.Path))
		for _, p := range result.Path {
			parts = append(parts, p.String())
		}
		fmt.Fprintf(out, "Moves: %d\nCost: %g\n", result.Moves(), result.Cost)
		fmt.Fprintf(out, "Path: %s\n", strings.Join(parts, " -> "))
		fmt.Fprintf(out, "Operators: %s\n", strings.Join(engine.PathDirections(result.Path), ", "))
	}
	fmt.Fprintf(out, "Nodes expanded: %d\nMax depth: %d\n", result.NodesExpanded, result.MaxDepth)
}

// comparison is one row of the compare table
type comparison struct {
	Info    engine.Info
	Result  engine.Result
	Elapsed time.Duration
}

// compare runs every registered strategy concurrently. Rows keep registration order.
func compare(ctx context.Context, params engine.Params) ([]comparison, error) {
	infos := engine.Strategies()
	rows := make([]comparison, len(infos))

	g, ctx := errgroup.WithContext(ctx)
	for i, info := range infos {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			strategy, err := engine.Lookup(info.Name)
			if err != nil {
				return err
			}
			started := time.Now()
			result := strategy.Solve(params)
			rows[i] = comparison{Info: info, Result: result, Elapsed: time.Since(started)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func printComparison(out io.Writer, rows []comparison) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ALGORITHM\tFOUND\tMOVES\tCOST\tNODES\tMAX DEPTH\tTIME")
	for _, row := range rows {
		moves, cost := "-", "-"
		if row.Result.Found() {
			moves = strconv.Itoa(row.Result.Moves())
			cost = strconv.FormatFloat(row.Result.Cost, 'g', -1, 64)
		}
		fmt.Fprintf(w, "%s\t%t\t%s\t%s\t%d\t%d\t%s\n",
			row.Info.Name, row.Result.Found(), moves, cost,
			row.Result.NodesExpanded, row.Result.MaxDepth, row.Elapsed.Round(time.Microsecond))
	}
	w.Flush()
}
