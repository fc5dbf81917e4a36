package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/wricardo/slide2048/game/engine"
	"github.com/wricardo/slide2048/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}

	if _, exists := m.sessions[id]; exists {
		return nil, service.ErrSessionAlreadyExists
	}

	eng, err := engine.NewEngine(config, engine.WithSeed(1))
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, service.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	if session, exists := m.sessions[id]; exists {
		return session, nil
	}
	return m.Create(id, config)
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return service.ErrSessionNotFound
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
	saved   map[string]*engine.GameConfig
}

func NewMockConfigManager() *MockConfigManager {
	defaultConfig := engine.DefaultConfig()
	defaultConfig.Name = "test"
	defaultConfig.Description = "Test configuration"

	small := engine.DefaultConfig()
	small.Name = "Small"
	small.Description = "3x3"
	small.BoardSize = 3

	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"test":  defaultConfig,
			"small": small,
		},
		saved: map[string]*engine.GameConfig{},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, service.ErrConfigNotFound
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for id, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename:    id + ".json",
			ConfigID:    id,
			Name:        config.Name,
			Description: config.Description,
			BoardSize:   config.BoardSize,
		})
	}
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["test"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", service.ErrInvalidConfig, err)
	}
	m.saved[name] = config
	m.configs[name] = config
	return nil
}

func newTestService() (service.GameService, *MockSessionManager) {
	sessions := NewMockSessionManager()
	return service.NewGameService(sessions, NewMockConfigManager()), sessions
}

func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	tests := []struct {
		name         string
		configName   string
		wantErr      bool
		expectedSize int
		expectedID   string
	}{
		{"create with default config", "", false, 4, "test"},
		{"create with named config", "small", false, 3, "small"},
		{"create with invalid config", "nonexistent", true, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := svc.CreateSession(ctx, tt.configName)
			if tt.wantErr {
				if !errors.Is(err, service.ErrConfigNotFound) {
					t.Errorf("Expected ErrConfigNotFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateSession() error = %v", err)
			}
			if info.ID == "" {
				t.Error("Expected session ID to be set")
			}
			if info.ConfigName != tt.expectedID {
				t.Errorf("Expected config id '%s', got '%s'", tt.expectedID, info.ConfigName)
			}
			if info.GameState.BoardSize != tt.expectedSize {
				t.Errorf("Expected board size %d, got %d", tt.expectedSize, info.GameState.BoardSize)
			}
			if len(info.GameState.Tiles) != 2 {
				t.Errorf("Expected 2 seed tiles, got %d", len(info.GameState.Tiles))
			}
		})
	}
}

func TestGameService_GetAndDeleteSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	created, err := svc.CreateSession(ctx, "")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	got, err := svc.GetSession(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("Expected session %s, got %s", created.ID, got.ID)
	}

	if _, err := svc.GetSession(ctx, "missing"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}

	if err := svc.DeleteSession(ctx, created.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if err := svc.DeleteSession(ctx, created.ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}

	sessions, _ := svc.ListSessions(ctx)
	if len(sessions) != 0 {
		t.Errorf("Expected no sessions, got %d", len(sessions))
	}
}

func TestGameService_Move(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	info, _ := svc.CreateSession(ctx, "")

	// Seeds sit at (0,1) and (0,2): moving up merges them
	result, err := svc.Move(ctx, info.ID, "UP", false)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if !result.Success {
		t.Error("Expected move to change the board")
	}
	if result.GameState.Grid[0][0] != 4 {
		t.Errorf("Expected merged 4 at (0,0), got grid %v", result.GameState.Grid)
	}
	if result.Step == nil || result.Step.Merges != 1 || result.Step.Spawned == nil {
		t.Errorf("Unexpected step: %+v", result.Step)
	}

	types := map[string]int{}
	for _, ev := range result.Events {
		types[ev.Type]++
	}
	if types[service.EventMove] != 1 || types[service.EventMerge] != 1 || types[service.EventSpawn] != 1 {
		t.Errorf("Expected move, merge and spawn events, got %v", types)
	}
}

func TestGameService_MoveNoChange(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	info, _ := svc.CreateSession(ctx, "")

	// Seeds are already against the left wall
	result, err := svc.Move(ctx, info.ID, "left", false)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if result.Success {
		t.Error("Expected left to leave the board unchanged")
	}
	if len(result.GameState.Tiles) != 2 {
		t.Errorf("Expected no spawn, got %d tiles", len(result.GameState.Tiles))
	}
	if len(result.Events) != 1 || result.Events[0].Type != service.EventNoChange {
		t.Errorf("Expected a single no_change event, got %+v", result.Events)
	}
}

func TestGameService_MoveErrors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	info, _ := svc.CreateSession(ctx, "")

	if _, err := svc.Move(ctx, info.ID, "diagonal", false); !errors.Is(err, engine.ErrInvalidDirection) {
		t.Errorf("Expected ErrInvalidDirection, got %v", err)
	}
	if _, err := svc.Move(ctx, "nope", "up", false); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestGameService_MoveWithReset(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	info, _ := svc.CreateSession(ctx, "")

	svc.Move(ctx, info.ID, "up", false)
	svc.Move(ctx, info.ID, "right", false)

	result, err := svc.Move(ctx, info.ID, "left", true)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if result.Events[0].Type != service.EventReset {
		t.Errorf("Expected reset event first, got %s", result.Events[0].Type)
	}
	if result.Success {
		t.Error("Expected left after reset to change nothing")
	}
	if result.GameState.TotalMoves != 3 {
		t.Errorf("Expected cumulative total of 3 moves, got %d", result.GameState.TotalMoves)
	}
	if result.GameState.CurrentMovesCount != 1 {
		t.Errorf("Expected 1 move since reset, got %d", result.GameState.CurrentMovesCount)
	}
}

func TestGameService_BulkMove(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	info, _ := svc.CreateSession(ctx, "")

	result, err := svc.BulkMove(ctx, info.ID, []string{"up", "left", "right"}, false)
	if err != nil {
		t.Fatalf("BulkMove failed: %v", err)
	}
	if !result.Success {
		t.Errorf("Expected bulk move to succeed, stopped: %s", result.StoppedReason)
	}
	if result.MovesExecuted != 3 || len(result.Steps) != 3 {
		t.Errorf("Expected 3 executed steps, got %d/%d", result.MovesExecuted, len(result.Steps))
	}
	if result.MergeCount < 1 {
		t.Errorf("Expected at least one merge, got %d", result.MergeCount)
	}
	if result.StartTileSum != 4 {
		t.Errorf("Expected starting sum 4, got %d", result.StartTileSum)
	}
	if result.EndTileSum != result.GameState.TileSum {
		t.Errorf("End sum %d does not match state %d", result.EndTileSum, result.GameState.TileSum)
	}
	if result.Steps[1].Idx != 2 || result.Steps[1].Dir != engine.Left {
		t.Errorf("Unexpected second step: %+v", result.Steps[1])
	}
}

func TestGameService_BulkMoveStopsOnInvalidDirection(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	info, _ := svc.CreateSession(ctx, "")

	result, err := svc.BulkMove(ctx, info.ID, []string{"up", "sideways", "down"}, false)
	if err != nil {
		t.Fatalf("BulkMove failed: %v", err)
	}
	if result.Success {
		t.Error("Expected bulk move to report failure")
	}
	if result.StopReasonCode != "invalid_direction" || result.StoppedOnMove != 2 {
		t.Errorf("Expected stop at move 2 for invalid_direction, got %s at %d", result.StopReasonCode, result.StoppedOnMove)
	}
	if result.MovesExecuted != 1 {
		t.Errorf("Expected 1 executed move, got %d", result.MovesExecuted)
	}
}

func TestGameService_BulkMoveTruncates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	info, _ := svc.CreateSession(ctx, "")

	moves := make([]string, engine.MaxBulkMoves+10)
	for i := range moves {
		moves[i] = []string{"up", "right", "down", "left"}[i%4]
	}

	result, err := svc.BulkMove(ctx, info.ID, moves, false)
	if err != nil {
		t.Fatalf("BulkMove failed: %v", err)
	}
	if !result.Truncated || result.Limit != engine.MaxBulkMoves {
		t.Errorf("Expected truncation at %d, got truncated=%v limit=%d", engine.MaxBulkMoves, result.Truncated, result.Limit)
	}
	if result.RequestedMoves != engine.MaxBulkMoves+10 {
		t.Errorf("Expected requested moves %d, got %d", engine.MaxBulkMoves+10, result.RequestedMoves)
	}
	if result.MovesExecuted > engine.MaxBulkMoves {
		t.Errorf("Executed %d moves, more than the limit", result.MovesExecuted)
	}
}

func TestGameService_Reset(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	info, _ := svc.CreateSession(ctx, "")

	svc.Move(ctx, info.ID, "up", false)

	state, err := svc.Reset(ctx, info.ID)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if len(state.Tiles) != 2 || state.Grid[1][0] != 2 || state.Grid[2][0] != 2 {
		t.Errorf("Expected fresh seed tiles, got grid %v", state.Grid)
	}

	if _, err := svc.Reset(ctx, "missing"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestGameService_GetMoveHistory(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	info, _ := svc.CreateSession(ctx, "")

	dirs := []string{"up", "right", "down", "left", "up"}
	for _, d := range dirs {
		if _, err := svc.Move(ctx, info.ID, d, false); err != nil {
			t.Fatalf("Move %s failed: %v", d, err)
		}
	}

	t.Run("default desc", func(t *testing.T) {
		history, err := svc.GetMoveHistory(ctx, info.ID, service.HistoryOptions{})
		if err != nil {
			t.Fatalf("GetMoveHistory failed: %v", err)
		}
		if history.TotalMoves != 5 || len(history.Moves) != 5 {
			t.Errorf("Expected 5 moves, got %d/%d", history.TotalMoves, len(history.Moves))
		}
		if history.Moves[0].MoveNumber != 5 {
			t.Errorf("Expected newest move first, got move %d", history.Moves[0].MoveNumber)
		}
	})

	t.Run("asc paged", func(t *testing.T) {
		history, err := svc.GetMoveHistory(ctx, info.ID, service.HistoryOptions{Page: 2, Limit: 2, Order: "asc"})
		if err != nil {
			t.Fatalf("GetMoveHistory failed: %v", err)
		}
		if len(history.Moves) != 2 || history.Moves[0].MoveNumber != 3 {
			t.Errorf("Expected moves 3-4, got %+v", history.Moves)
		}
		if history.TotalPages != 3 || !history.HasNext || !history.HasPrevious {
			t.Errorf("Unexpected paging: %+v", history)
		}
	})

	t.Run("page past the end", func(t *testing.T) {
		history, _ := svc.GetMoveHistory(ctx, info.ID, service.HistoryOptions{Page: 9, Limit: 2})
		if len(history.Moves) != 0 {
			t.Errorf("Expected empty page, got %d moves", len(history.Moves))
		}
	})
}

func TestGameService_Configs(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	configs, err := svc.ListConfigs(ctx)
	if err != nil {
		t.Fatalf("ListConfigs failed: %v", err)
	}
	if len(configs) != 2 {
		t.Errorf("Expected 2 configs, got %d", len(configs))
	}

	custom := engine.DefaultConfig()
	custom.Name = "Custom"
	custom.BoardSize = 5
	if err := svc.SaveConfig(ctx, "custom", custom); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := svc.LoadConfig(ctx, "custom")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.BoardSize != 5 {
		t.Errorf("Expected board size 5, got %d", loaded.BoardSize)
	}

	info, err := svc.CreateSession(ctx, "custom")
	if err != nil {
		t.Fatalf("CreateSession with saved config failed: %v", err)
	}
	if info.GameState.BoardSize != 5 {
		t.Errorf("Expected 5x5 session, got %d", info.GameState.BoardSize)
	}
}
