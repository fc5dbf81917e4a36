// Package session provides in-memory session management for the game server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session expiry
//
// Core Types:
//
// Manager is the session store. Each session wraps its own GameEngine with
// the config it was created from and its creation and last-access times.
//
// Session Identifiers:
//
// Generated IDs are the first eight hex characters of a random UUID. Callers
// may also pick their own ID. Lookups are case-insensitive.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//	sessions := manager.List()
//
// Cleanup:
//
// Sessions are never written to disk. CleanupExpiredSessions drops the ones
// that have not been touched for a given duration; the server runs it on a
// ticker.
package session
