// Package websocket pushes live mission events to browser and tool watchers.
//
// A central Hub owns every connection. Watchers subscribe to one session by
// connecting to /ws?session=<id>; the hub never reads commands from them,
// it only fans out events that the REST layer raises:
//
//   - run_completed: data is the run record that was just appended
//   - map_updated: data is the analyzed metadata of the new session map
//
// Messages are JSON objects, one per frame:
//
//	{"session_id": "a1b2", "event": "run_completed", "at": "2026-03-01T12:00:00Z", "data": {...}}
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	hub.ServeWS(w, r, sessionID)
//	hub.RunCompleted(sessionID, record)
//
// A watcher whose backlog fills up is disconnected so it cannot stall the hub.
package websocket
