// Package mcp exposes the game to AI agents over the Model Context Protocol.
//
// Client is a thin proxy: every tool call becomes a request against the REST
// API, and the JSON response is rendered as plain text an agent can read.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state: the board as a grid of values, with possible moves
//   - move, bulk_move: slide tiles; both take an optional intent argument
//   - reset_game, move_history, list_configs
//   - game_instructions: the merge rules
//   - describe_cell: the tile at (x,y) and which neighbours it could merge with
//
// Board rendering:
//
//	Board: 4x4 | Sum: 12 | Max tile: 4 | Moves: 3
//
//	4 . . .
//	2 . . .
//	. . . .
//	. . 2 .
//
//	Possible moves: down,left,right
//
// Transport:
//
// GetMCPServer returns the underlying mcp-go server. The CLI serves it over
// stdio (server.ServeStdio) or mounts it at POST /mcp next to the REST API.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
