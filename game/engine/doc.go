// Package engine provides the core game logic for the sliding-tile puzzle.
//
// The engine package implements:
//   - The Board: tiles, their grid positions and the four directional moves
//   - Merge rules: equal tiles combine once per move into a tile of double value
//   - Spawning: a value-2 tile at a random empty cell after every changing move
//   - Deferred merge application through a Scheduler
//   - Configuration loading and validation
//
// Core Types:
//
// Board owns the tiles and enforces the bounds and occupancy invariants.
// PlanMove computes a move without mutating anything. GameEngine wraps a
// Board with its GameConfig, move history and player-facing messages.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultConfig(), engine.WithSeed(42))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameEngine.Move(engine.Left)
//	state := gameEngine.GetState()
//
// Move Timing:
//
// A move updates positions immediately and hands merge application to the
// Scheduler. ImmediateScheduler completes the move before Move returns.
// QueueScheduler keeps the completion until a driving loop calls Advance,
// which lets a renderer animate slides; moves requested in between are
// ignored.
package engine
