// Package api provides the HTTP REST API for 2048 sessions.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions               create a session {"config_id": "small"}
//   - GET    /api/sessions               list sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/unified       several sessions at once (?sessionIds=a,b or ?configName=small)
//   - GET    /api/sessions/{id}          session info with game state
//   - DELETE /api/sessions/{id}          delete a session
//
// Game:
//   - GET  /api/sessions/{id}/state      current board
//   - POST /api/sessions/{id}/move       {"direction": "up", "reset": false}
//   - POST /api/sessions/{id}/bulk-move  {"moves": ["up", "left"], "reset": false}
//   - POST /api/sessions/{id}/reset      new board from the session's config
//   - GET  /api/sessions/{id}/history    paginated history (?page=1&limit=20&order=desc)
//
// Configuration:
//   - GET  /api/configs                  available board configs
//   - GET  /api/configs/{name}           one config
//   - POST /api/configs                  save a config; config_id defaults to the name
//
// Other:
//   - GET /api/health
//   - GET /ws?session={id}               WebSocket watcher
//
// Every successful move, bulk move and reset is pushed to the session's
// WebSocket watchers.
//
// Errors are JSON objects of the form {"error": "..."}. Unknown sessions and
// configs map to 404, bad directions and invalid configs to 400, and board
// invariant failures to 500.
package api
