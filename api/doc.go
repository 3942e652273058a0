// Package api exposes the mission planner over HTTP.
//
// Endpoints:
//
// Algorithms:
//   - GET /api/algorithms - List strategies with display names
//   - GET /api/algorithm/{name} - Describe one strategy
//   - POST /api/run - Run a strategy on an inline map
//
// Map Library:
//   - GET /api/maps - List maps with their metadata
//   - PUT /api/maps/{name} - Store a text map under name
//
// Sessions:
//   - POST /api/sessions - Create a session, optionally on a named map
//   - GET /api/sessions - List sessions (sort, order, limit)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Session Map:
//   - POST /api/sessions/{id}/map/upload - Multipart upload of a .txt map
//   - GET /api/sessions/{id}/map - Full grid and metadata
//   - POST /api/sessions/{id}/map/reset - Unload the map
//   - GET /api/sessions/{id}/map/cell/{row}/{col} - One cell and its role
//   - GET /api/sessions/{id}/map/metadata - Analyzed map metadata
//   - POST /api/sessions/{id}/map/goal - Record a goal cell
//
// Session Runs:
//   - POST /api/sessions/{id}/run - Run a strategy on the session map
//   - GET /api/sessions/{id}/runs - Paginated run history
//
// Positions on the wire are [row, col] pairs. A run request looks like:
//
//	{
//	  "algorithm": "astar",
//	  "params": {
//	    "map": [[0, 1, ...], ...],
//	    "start": [2, 1],
//	    "operator_order": ["up", "right", "down", "left"],
//	    "max_depth": 0
//	  }
//	}
//
// Errors are returned as JSON with an HTTP status derived from the
// service error: 404 for unknown sessions, maps and algorithms, 409 when a
// session has no map, 400 for malformed maps or positions.
//
//	{"error": "session not found: a1b2"}
package api
