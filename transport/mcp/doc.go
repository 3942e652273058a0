// Package mcp exposes the mission planner as Model Context Protocol tools.
//
// The Client is a thin proxy: every tool call is translated into a request
// against the REST API and the JSON answer is rendered as text for the agent.
//
// Tools:
//   - list_algorithms: the registered search strategies
//   - run_algorithm: run a strategy on an inline text map
//   - list_maps: maps stored in the library
//   - create_session: new session, optionally on a library map
//   - upload_map: replace the session map with a text map
//   - get_map: render the session map with a legend and metadata
//   - describe_cell: code, role and cost of one cell
//   - set_goal: record a goal cell
//   - run_on_session: run a strategy on the session map and record it
//   - run_history: paginated runs of a session
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: POST /mcp, handled with GetMCPServer().HandleMessage
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
