// Package terminal plays a local game in the terminal using tcell.
//
// Keys:
//
//	arrows, hjkl, wasd   slide tiles
//	r                    start a new board
//	q, Esc, Ctrl-C       quit
//
// The board's merges run on an engine.QueueScheduler that the event loop
// advances every frame, so a merging pair is shown highlighted for the
// config's merge delay before it collapses into one tile. Keys pressed
// during that window are dropped, matching the engine's move-ignored rule.
//
// Watcher is the read-only counterpart for a session on a running server:
// it loads the state over REST and redraws on every WebSocket update.
//
// Usage:
//
//	if err := terminal.Play(ctx, engine.DefaultConfig()); err != nil {
//		log.Fatal(err)
//	}
package terminal
