// Package session provides mission session storage for the Smart Astronaut planner.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Short random session IDs
//   - JSON file persistence of the session map, goal and run history
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager implements service.SessionManager. FilePersistence implements
// SessionPersistence and stores each session as <id>.json in a directory.
//
// Session Identifiers:
//
// Generated IDs are 4 lowercase hex characters drawn from crypto/rand.
// Lookups are case-insensitive.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions")
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence)
//	manager.LoadPersistedSessions()
//
//	sess, err := manager.Create("", "mission", grid)
package session
