// Package service provides the application layer of the Smart Astronaut planner.
//
// The service package implements:
//   - Stateless strategy execution wrapped in an execution envelope
//   - Mission sessions holding a working map, a goal and a run history
//   - Map upload, inspection and reset per session
//   - Paginated run history
//   - Access to the named map library
//
// Core Interfaces:
//
// MissionService is the main service interface used by the HTTP, WebSocket
// and MCP transports. SessionManager stores sessions and MapManager loads
// named maps; both are implemented by the session and maps packages.
//
// Usage:
//
//	mapMgr, _ := maps.NewManager("maps")
//	sessionMgr := session.NewManager()
//	svc := service.NewMissionService(sessionMgr, mapMgr)
//
//	// Stateless run
//	exec, err := svc.Run(ctx, service.RunRequest{Algorithm: "astar", Params: params})
//
//	// Session run on the session map, recorded in its history
//	info, _ := svc.CreateSession(ctx, "mission")
//	record, err := svc.RunOnSession(ctx, info.ID, service.SessionRunRequest{Algorithm: "bfs"})
//
// Errors:
//
// Failures wrap the package sentinels (ErrSessionNotFound, ErrUnknownAlgorithm,
// ErrNoMapLoaded, ErrNoStart, ErrOutOfBounds) or maps.ErrInvalidMap and
// maps.ErrMapNotFound, so transports can classify them with errors.Is.
package service
