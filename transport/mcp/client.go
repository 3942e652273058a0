package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/smartastronaut/game/engine"
	"github.com/wricardo/mcp-training/smartastronaut/game/maps"
	"github.com/wricardo/mcp-training/smartastronaut/game/service"
)

// Client is a thin MCP server whose tools proxy to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API at baseURL
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Smart Astronaut Mission Planner",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Smart Astronaut Mission Planner - MCP Interface

This is a thin client that proxies all requests to the REST API server.

MISSION:
An astronaut (2) on a 10x10 map must collect all 3 scientific samples (6).
Obstacles (1) block movement. Rocky terrain (3) costs 3 and volcanic terrain (4)
costs 5; other cells cost 1. Boarding the spacecraft (5) once gives 20 fuel, and
every move made with fuel costs 0.5 regardless of terrain.

AVAILABLE TOOLS:
- list_algorithms: The five search strategies (bfs, dfs, uniform_cost, greedy, astar)
- run_algorithm: Run a strategy on an inline text map
- list_maps: Maps stored in the library
- create_session: Create a session, optionally on a library map
- upload_map: Load a text map into a session
- get_map: Show the session map with its metadata
- describe_cell: Inspect one cell of the session map
- set_goal: Record a goal cell on the session map
- run_on_session: Run a strategy on the session map and record it
- run_history: Past runs of a session

Operators are named arriba/abajo/izquierda/derecha (or up/down/left/right).
Positions are 0-based [row, col].`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	sessionID := map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
	algorithm := map[string]interface{}{
		"type":        "string",
		"enum":        []string{"bfs", "dfs", "uniform_cost", "greedy", "astar"},
		"description": "Search strategy to run",
	}
	operatorOrder := map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "string"},
		"description": "Order in which moves are tried, e.g. [\"arriba\",\"abajo\",\"izquierda\",\"derecha\"] (optional)",
	}
	maxDepth := map[string]interface{}{
		"type":        "integer",
		"description": "Maximum number of moves explored; 0 or omitted means unlimited",
	}
	start := map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "integer"},
		"description": "Start position [row, col] (optional, defaults to the astronaut cell)",
	}
	mapText := map[string]interface{}{
		"type":        "string",
		"description": "Map as 10 lines of 10 space-separated cell codes (0-6)",
	}

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_algorithms",
		Description: "List the available search strategies",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListAlgorithms)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_algorithm",
		Description: "Run a search strategy on an inline map without creating a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"algorithm":      algorithm,
				"map":            mapText,
				"start":          start,
				"operator_order": operatorOrder,
				"max_depth":      maxDepth,
			},
			Required: []string{"algorithm", "map"},
		},
	}, c.handleRunAlgorithm)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_maps",
		Description: "List the maps stored in the map library",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListMaps)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new mission session with an optional library map",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"map": map[string]interface{}{
					"type":        "string",
					"description": "Name of the library map to load (optional, defaults to the default map)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "upload_map",
		Description: "Replace the map of a session with a text map",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionID,
				"map":        mapText,
			},
			Required: []string{"session_id", "map"},
		},
	}, c.handleUploadMap)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_map",
		Description: "Show the session map, its metadata and a legend",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionID,
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetMap)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get the code and role of one cell of the session map",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionID,
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the cell (0-based)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the cell (0-based)",
				},
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleDescribeCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_goal",
		Description: "Record a goal cell on the session map",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionID,
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the goal (0-based)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the goal (0-based)",
				},
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleSetGoal)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_on_session",
		Description: "Run a search strategy on the session map and record the run",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id":     sessionID,
				"algorithm":      algorithm,
				"start":          start,
				"operator_order": operatorOrder,
				"max_depth":      maxDepth,
			},
			Required: []string{"session_id", "algorithm"},
		},
	}, c.handleRunOnSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_history",
		Description: "Get the recorded runs of a session, most recent first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionID,
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRunHistory)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, result)
}

// uploadCall posts text as the multipart "file" field
func (c *Client) uploadCall(ctx context.Context, path, filename, text string, result interface{}) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(part, text); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// Argument helpers. JSON numbers arrive as float64.

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return args
	}
	return map[string]interface{}{}
}

func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

func stringSliceArg(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func positionArg(args map[string]interface{}, key string) (*engine.Position, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	pair, ok := raw.([]interface{})
	if !ok || len(pair) != 2 {
		return nil, fmt.Errorf("%s must be [row, col]", key)
	}
	row, rowOK := intArg(map[string]interface{}{"v": pair[0]}, "v")
	col, colOK := intArg(map[string]interface{}{"v": pair[1]}, "v")
	if !rowOK || !colOK {
		return nil, fmt.Errorf("%s must hold two integers", key)
	}
	return &engine.Position{Row: row, Col: col}, nil
}

// Tool handlers

func (c *Client) handleListAlgorithms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Algorithms []engine.Info `json:"algorithms"`
		Count      int           `json:"count"`
	}
	if err := c.apiCall(ctx, "GET", "/api/algorithms", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available Algorithms (%d):\n\n", response.Count)
	for _, info := range response.Algorithms {
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n", info.Name, info.DisplayName, info.Description)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleRunAlgorithm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	algorithm, _ := args["algorithm"].(string)
	text, _ := args["map"].(string)

	grid, err := maps.ParseMap(text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	start, err := positionArg(args, "start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if start == nil {
		start = maps.Analyze(grid).Start
	}
	if start == nil {
		return mcp.NewToolResultError("map has no astronaut cell (2); pass start as [row, col]"), nil
	}

	params := engine.Params{
		Map:           grid,
		Start:         *start,
		OperatorOrder: stringSliceArg(args, "operator_order"),
	}
	params.MaxDepth, _ = intArg(args, "max_depth")

	var exec service.Execution
	err = c.apiCall(ctx, "POST", "/api/run", service.RunRequest{Algorithm: algorithm, Params: params}, &exec)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatExecution(&exec)), nil
}

func (c *Client) handleListMaps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Maps  []maps.MapInfo `json:"maps"`
		Count int            `json:"count"`
	}
	if err := c.apiCall(ctx, "GET", "/api/maps", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available Maps (%d):\n\n", response.Count)
	for _, info := range response.Maps {
		ready := "ready"
		if !info.Metadata.Ready {
			ready = "not ready"
		}
		fmt.Fprintf(&b, "• %s (%s)\n  Samples: %d, Obstacles: %d, Rocky: %d, Volcanic: %d\n",
			info.MapID, ready, info.Metadata.Samples, info.Metadata.Obstacles, info.Metadata.Rocky, info.Metadata.Volcanic)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	mapName, _ := args["map"].(string)

	body := map[string]string{}
	if mapName != "" {
		body["map"] = mapName
	}

	var sess service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &sess); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\n%s", sess.ID, formatSessionInfo(&sess))), nil
}

func (c *Client) handleUploadMap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	text, _ := args["map"].(string)

	var response struct {
		Message string              `json:"message"`
		Session service.SessionInfo `json:"session"`
	}
	path := fmt.Sprintf("/api/sessions/%s/map/upload", url.PathEscape(sessionID))
	if err := c.uploadCall(ctx, path, "upload.txt", text, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n%s", response.Message, formatSessionInfo(&response.Session))), nil
}

func (c *Client) handleGetMap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	var view service.MapView
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s/map", url.PathEscape(sessionID)), nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMapView(&view)), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	row, rowOK := intArg(args, "row")
	col, colOK := intArg(args, "col")
	if !rowOK || !colOK {
		return mcp.NewToolResultError("row and col are required integers"), nil
	}

	var cell service.CellInfo
	path := fmt.Sprintf("/api/sessions/%s/map/cell/%d/%d", url.PathEscape(sessionID), row, col)
	if err := c.apiCall(ctx, "GET", path, nil, &cell); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	code := engine.CellCode(cell.Value)
	result := fmt.Sprintf("Cell [%d, %d]\nCode: %d\nRole: %s\nPassable: %t\nCost on foot: %g\n",
		cell.Row, cell.Col, cell.Value, cell.Role, code.Passable(), code.BaseCost())
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSetGoal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	row, rowOK := intArg(args, "row")
	col, colOK := intArg(args, "col")
	if !rowOK || !colOK {
		return mcp.NewToolResultError("row and col are required integers"), nil
	}

	var meta maps.Metadata
	body := map[string]int{"row": row, "col": col}
	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/map/goal", url.PathEscape(sessionID)), body, &meta); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Goal set to [%d, %d]\n\n%s", row, col, formatMetadata(&meta))), nil
}

func (c *Client) handleRunOnSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	algorithm, _ := args["algorithm"].(string)

	start, err := positionArg(args, "start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := service.SessionRunRequest{
		Algorithm:     algorithm,
		Start:         start,
		OperatorOrder: stringSliceArg(args, "operator_order"),
	}
	req.MaxDepth, _ = intArg(args, "max_depth")

	var record service.RunRecord
	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/run", url.PathEscape(sessionID)), req, &record); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRunRecord(&record)), nil
}

func (c *Client) handleRunHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	query := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		query.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		query.Set("limit", fmt.Sprint(limit))
	}
	path := fmt.Sprintf("/api/sessions/%s/runs", url.PathEscape(sessionID))
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

// Formatting

var cellSymbols = map[engine.CellCode]string{
	engine.Free:     ".",
	engine.Obstacle: "#",
	engine.Start:    "A",
	engine.Rocky:    "r",
	engine.Volcanic: "v",
	engine.Station:  "S",
	engine.Sample:   "*",
}

func formatSessionInfo(sess *service.SessionInfo) string {
	mapName := sess.MapName
	if !sess.Loaded {
		mapName = "(none)"
	}
	return fmt.Sprintf("Session: %s\nMap: %s\nReady: %t\nRuns: %d\n", sess.ID, mapName, sess.Metadata.Ready, sess.RunCount)
}

func formatMetadata(meta *maps.Metadata) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Valid: %t, Ready: %t\n", meta.Valid, meta.Ready)
	if meta.Start != nil {
		fmt.Fprintf(&b, "Astronaut: %v\n", *meta.Start)
	}
	if meta.Station != nil {
		fmt.Fprintf(&b, "Spacecraft: %v\n", *meta.Station)
	}
	if meta.Goal != nil {
		fmt.Fprintf(&b, "Goal: %v\n", *meta.Goal)
	}
	fmt.Fprintf(&b, "Samples: %d %v\n", meta.Samples, meta.SamplePositions)
	fmt.Fprintf(&b, "Obstacles: %d, Rocky: %d, Volcanic: %d\n", meta.Obstacles, meta.Rocky, meta.Volcanic)
	return b.String()
}

func formatMapView(view *service.MapView) string {
	if !view.Loaded {
		return "No map loaded. Use upload_map first."
	}

	var b strings.Builder
	b.WriteString("    0 1 2 3 4 5 6 7 8 9\n")
	for r, row := range view.Grid {
		fmt.Fprintf(&b, "%2d  ", r)
		for c, v := range row {
			if c > 0 {
				b.WriteByte(' ')
			}
			symbol, ok := cellSymbols[engine.CellCode(v)]
			if !ok {
				symbol = "?"
			}
			b.WriteString(symbol)
		}
		b.WriteByte('\n')
	}
	b.WriteString("\nLegend: A astronaut, * sample, S spacecraft, # obstacle, r rocky (3), v volcanic (5), . free (1)\n\n")
	b.WriteString(formatMetadata(&view.Metadata))
	return b.String()
}

func formatResult(result *engine.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", result.Message)
	if result.Found() {
		fmt.Fprintf(&b, "Moves: %d\nCost: %g\n", result.Moves(), result.Cost)
		fmt.Fprintf(&b, "Path: %s\n", formatPath(result.Path))
		fmt.Fprintf(&b, "Operators: %s\n", strings.Join(engine.PathDirections(result.Path), ", "))
	}
	fmt.Fprintf(&b, "Nodes expanded: %d\nMax depth: %d\n", result.NodesExpanded, result.MaxDepth)
	return b.String()
}

func formatPath(path []engine.Position) string {
	parts := make([]string, 0, len(path))
	for _, p := range path {
		parts = append(parts, p.String())
	}
	return strings.Join(parts, " -> ")
}

func formatExecution(exec *service.Execution) string {
	header := fmt.Sprintf("Algorithm: %s\nStatus: %s\nExecution time: %.4fs\n", exec.Algorithm, exec.Status, exec.ExecutionTime)
	if exec.Error != "" {
		header += fmt.Sprintf("Error: %s\n", exec.Error)
	}
	if exec.Result == nil {
		return header
	}
	return header + "\n" + formatResult(exec.Result)
}

func formatRunRecord(record *service.RunRecord) string {
	header := fmt.Sprintf("Run %s\nAlgorithm: %s\nMap: %s\nStart: %v\nStatus: %s\nExecution time: %.4fs\n",
		record.ID, record.Algorithm, record.MapName, record.Start, record.Status, record.ExecutionTime)
	return header + "\n" + formatResult(&record.Result)
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run History (Page %d/%d, Total: %d runs):\n\n", history.Page, history.TotalPages, history.TotalRuns)
	for _, run := range history.Runs {
		fmt.Fprintf(&b, "- %s %s from %v: ", run.CreatedAt.Format("15:04:05"), run.Algorithm, run.Start)
		if run.Result.Found() {
			fmt.Fprintf(&b, "%d moves, cost %g, %d nodes\n", run.Result.Moves(), run.Result.Cost, run.Result.NodesExpanded)
		} else {
			fmt.Fprintf(&b, "%s\n", run.Result.Message)
		}
	}
	if len(history.Runs) == 0 {
		b.WriteString("No runs recorded yet.\n")
	}
	return b.String()
}
