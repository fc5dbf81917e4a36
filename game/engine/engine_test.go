package engine

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func createTestEngine(t *testing.T) *GameEngine {
	t.Helper()
	e, err := NewEngine(DefaultConfig(), WithSeed(1))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return e
}

func TestNewEngine_InitialState(t *testing.T) {
	e := createTestEngine(t)
	state := e.GetState()

	if state.BoardSize != 4 {
		t.Errorf("Expected board size 4, got %d", state.BoardSize)
	}
	if len(state.Tiles) != 2 {
		t.Fatalf("Expected 2 tiles, got %d", len(state.Tiles))
	}
	if state.Grid[1][0] != 2 || state.Grid[2][0] != 2 {
		t.Errorf("Expected seeds at (0,1) and (0,2), got grid %v", state.Grid)
	}
	if state.MoveInProgress || state.HasChanged {
		t.Error("Expected a fresh board to be idle and unchanged")
	}
	if state.Message != DefaultConfig().Messages.Welcome {
		t.Errorf("Expected welcome message, got %q", state.Message)
	}
	if state.TileSum != 4 || state.MaxTile != 2 {
		t.Errorf("Expected sum 4 and max 2, got %d and %d", state.TileSum, state.MaxTile)
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := DefaultConfig()
	config.BoardSize = 2
	if _, err := NewEngine(config); err == nil {
		t.Error("Expected error for board size below minimum")
	}
	if _, err := NewEngine(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestGameEngine_MoveMessagesAndHistory(t *testing.T) {
	e := createTestEngine(t)

	// Seeds are stacked in column 0; moving up merges them
	result, err := e.Move(Up)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if !result.Changed || len(result.Merges) != 1 {
		t.Errorf("Expected one merge, got %+v", result)
	}
	if e.GetState().Message != "Moved up" {
		t.Errorf("Expected 'Moved up', got %q", e.GetState().Message)
	}

	// The merged 4 sits at (0,0), so moving left or up may not change anything
	var unchanged Direction
	for _, d := range []Direction{Left, Up} {
		if !e.CanMove(d) {
			unchanged = d
			break
		}
	}
	if unchanged != "" {
		if _, err := e.Move(unchanged); err != nil {
			t.Fatalf("Move failed: %v", err)
		}
		if e.GetState().Message != DefaultConfig().Messages.NoChange {
			t.Errorf("Expected no-change message, got %q", e.GetState().Message)
		}
	}

	history := e.GetMoveHistory()
	if len(history) == 0 || history[0].Action != Up || history[0].Merges != 1 {
		t.Errorf("Unexpected history: %+v", history)
	}
	last := e.GetLastMove()
	if last == nil || last.MoveNumber != len(history) {
		t.Errorf("Expected last move number %d, got %+v", len(history), last)
	}
}

func TestGameEngine_IgnoredMoveMessage(t *testing.T) {
	now := time.Unix(0, 0)
	queue := NewQueueScheduler(func() time.Time { return now })
	e, err := NewEngine(DefaultConfig(), WithSeed(1), WithScheduler(queue))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	if _, err := e.Move(Up); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if !e.IsMoveInProgress() {
		t.Fatal("Expected merge to be pending")
	}

	result, err := e.Move(Down)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if !result.Ignored {
		t.Error("Expected move to be ignored")
	}
	if e.GetState().Message != DefaultConfig().Messages.MoveIgnored {
		t.Errorf("Expected move-ignored message, got %q", e.GetState().Message)
	}
	if last := e.GetLastMove(); last == nil || !last.Ignored {
		t.Error("Expected ignored move to be recorded")
	}

	queue.Flush()
	if e.IsMoveInProgress() {
		t.Error("Expected move to complete after flush")
	}
	if len(e.GetTiles()) != 2 {
		t.Errorf("Expected merged tile plus spawn, got %d tiles", len(e.GetTiles()))
	}
}

func TestGameEngine_ResetKeepsCumulativeHistory(t *testing.T) {
	e := createTestEngine(t)

	if _, err := e.BulkMove([]Direction{Up, Right, Down}); err != nil {
		t.Fatalf("BulkMove failed: %v", err)
	}

	state, err := e.Reset()
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if len(state.Tiles) != 2 {
		t.Errorf("Expected 2 seed tiles after reset, got %d", len(state.Tiles))
	}
	if state.TotalMoves != 3 || len(state.MoveHistory) != 3 {
		t.Errorf("Expected cumulative history of 3, got %d/%d", state.TotalMoves, len(state.MoveHistory))
	}
	if state.CurrentMovesCount != 0 {
		t.Errorf("Expected current moves cleared, got %d", state.CurrentMovesCount)
	}
	if state.Message != DefaultConfig().Messages.Welcome {
		t.Errorf("Expected welcome message after reset, got %q", state.Message)
	}
}

func TestGameEngine_BulkMoveStopsOnError(t *testing.T) {
	e := createTestEngine(t)

	results, err := e.BulkMove([]Direction{Up, Direction("nowhere"), Down})
	if !errors.Is(err, ErrInvalidDirection) {
		t.Errorf("Expected ErrInvalidDirection, got %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Expected 1 result before the error, got %d", len(results))
	}
}

func TestGameEngine_NoMovesLeftMessage(t *testing.T) {
	config := DefaultConfig()
	config.BoardSize = 3
	e, err := NewEngine(config, WithSeed(5))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	// Play until locked or a generous bound is reached
	for i := 0; i < 2000 && len(e.GetPossibleMoves()) > 0; i++ {
		moves := e.GetPossibleMoves()
		if _, err := e.Move(moves[i%len(moves)]); err != nil {
			t.Fatalf("Move failed: %v", err)
		}
	}

	if len(e.GetPossibleMoves()) != 0 {
		t.Skip("board never locked within the move bound")
	}
	if e.GetState().Message != config.Messages.NoMovesLeft {
		t.Errorf("Expected no-moves-left message, got %q", e.GetState().Message)
	}
}

func TestGameEngine_DeferredMoveFillsHistory(t *testing.T) {
	queue := NewQueueScheduler(nil)
	e, err := NewEngine(DefaultConfig(), WithSeed(1), WithScheduler(queue))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	result, err := e.Move(Up)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if result.Completed {
		t.Fatal("Expected the move to wait for the scheduler")
	}
	if last := e.GetLastMove(); last == nil || last.Spawned != nil {
		t.Fatalf("Expected no spawn before completion, got %+v", last)
	}

	queue.Flush()
	if result.Spawned == nil {
		t.Fatal("Expected a spawn once the move completed")
	}
	last := e.GetLastMove()
	if last.Spawned == nil {
		t.Fatal("Expected history entry to record the spawn")
	}
	if last.Spawned.Position != result.Spawned.Position || last.Spawned.Value != result.Spawned.Value {
		t.Errorf("Expected spawned %+v, got %+v", result.Spawned, last.Spawned)
	}
	state := e.GetState()
	if current := state.CurrentMoves[len(state.CurrentMoves)-1]; current.Spawned == nil {
		t.Error("Expected current moves to record the spawn")
	}
}

func TestGameEngine_DeferredNoMovesLeftMessage(t *testing.T) {
	config := DefaultConfig()
	config.BoardSize = 3
	queue := NewQueueScheduler(nil)
	e, err := NewEngine(config, WithSeed(5), WithScheduler(queue))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	for i := 0; i < 2000 && len(e.GetPossibleMoves()) > 0; i++ {
		moves := e.GetPossibleMoves()
		if _, err := e.Move(moves[i%len(moves)]); err != nil {
			t.Fatalf("Move failed: %v", err)
		}
		queue.Flush()
	}

	if len(e.GetPossibleMoves()) != 0 {
		t.Skip("board never locked within the move bound")
	}
	if e.GetState().Message != config.Messages.NoMovesLeft {
		t.Errorf("Expected no-moves-left message, got %q", e.GetState().Message)
	}
}

func TestGameEngine_SetConfig(t *testing.T) {
	e := createTestEngine(t)

	large := DefaultConfig()
	large.Name = "Large"
	large.BoardSize = 6
	if err := e.SetConfig(large); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	if e.GetState().BoardSize != 6 || e.GetConfig().Name != "Large" {
		t.Errorf("Expected 6x6 Large board, got %d %q", e.GetState().BoardSize, e.GetConfig().Name)
	}

	bad := DefaultConfig()
	bad.Messages.Moved = "no placeholder"
	if err := e.SetConfig(bad); err == nil || !strings.Contains(err.Error(), "%s") {
		t.Errorf("Expected moved-format error, got %v", err)
	}
	if e.GetConfig().Name != "Large" {
		t.Error("Expected previous config to be kept after a failed SetConfig")
	}
}

func TestGameEngine_ConfigSeedIsDeterministic(t *testing.T) {
	config := DefaultConfig()
	config.Seed = 77

	a, _ := NewEngine(config)
	b, _ := NewEngine(config)
	for _, d := range []Direction{Up, Right, Down, Left, Up} {
		a.Move(d)
		b.Move(d)
	}

	ga, gb := a.GetState().Grid, b.GetState().Grid
	for y := range ga {
		for x := range ga[y] {
			if ga[y][x] != gb[y][x] {
				t.Fatalf("Seeded engines diverged at (%d,%d): %v vs %v", x, y, ga, gb)
			}
		}
	}
}
