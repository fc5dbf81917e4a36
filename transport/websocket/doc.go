// Package websocket pushes game state to browsers watching a session.
//
// The package uses a hub-and-spoke model where a central Hub manages all
// connections. Each client has a read pump and a write pump goroutine; the
// hub's event loop owns registration and fan-out.
//
// Message Protocol:
//
// Outgoing messages are JSON:
//
//	{"session_id": "1f3a9c2e", "event": "state_update", "game_state": {...}}
//
// Custom events such as "session_deleted" carry a data field instead of a
// game state. Watchers are read-only: incoming frames are discarded.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
//	hub.BroadcastToSession(sessionID, state)
//
// Broadcasting never blocks the caller. When the queue is saturated the update
// is dropped, and a client whose own buffer is full is disconnected.
package websocket
