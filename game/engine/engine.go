package engine

import (
	"fmt"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	Reset() (*GameState, error)
	IsMoveInProgress() bool

	// Movement operations
	Move(direction Direction) (*MoveResult, error)
	CanMove(direction Direction) bool
	GetPossibleMoves() []Direction

	// Tiles
	GetTiles() []Tile
	SpawnTile(value int) (*Tile, error)

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface on top of a Board
type GameEngine struct {
	board   *Board
	config  *GameConfig
	options []BoardOption
	message string

	moveHistory  []MoveHistoryEntry
	totalMoves   int
	currentMoves []MoveHistoryEntry

	// pending is the last move whose merges have not been applied yet
	pending       *MoveResult
	pendingNumber int
}

// NewEngine creates a new game engine with the provided configuration.
// Board options (random source, scheduler) are kept and reused on reset.
func NewEngine(config *GameConfig, opts ...BoardOption) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{
		config:      config,
		options:     opts,
		moveHistory: []MoveHistoryEntry{},
	}
	if err := e.newBoard(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithDefaults creates a new game engine with the classic configuration
func NewEngineWithDefaults(opts ...BoardOption) *GameEngine {
	e, err := NewEngine(DefaultConfig(), opts...)
	if err != nil {
		// DefaultConfig is always valid
		panic(fmt.Sprintf("engine: default config rejected: %v", err))
	}
	return e
}

// newBoard builds and seeds a board from the current config
func (e *GameEngine) newBoard() error {
	opts := []BoardOption{WithMergeDelay(e.config.MergeDelay())}
	if e.config.Seed != 0 {
		opts = append(opts, WithSeed(e.config.Seed))
	}
	opts = append(opts, e.options...)

	board, err := NewBoard(e.config.BoardSize, opts...)
	if err != nil {
		return fmt.Errorf("failed to create board: %w", err)
	}
	if err := board.Seed(); err != nil {
		return fmt.Errorf("failed to seed board: %w", err)
	}

	board.onComplete = e.moveCompleted
	e.board = board
	e.pending = nil
	e.message = e.config.Messages.Welcome
	e.currentMoves = []MoveHistoryEntry{}
	return nil
}

// Board exposes the underlying board
func (e *GameEngine) Board() *Board {
	return e.board
}

// GetState returns a snapshot of the current game
func (e *GameEngine) GetState() *GameState {
	return &GameState{
		BoardSize:         e.board.Size(),
		Tiles:             e.board.Tiles(),
		Grid:              e.board.Grid(),
		MoveInProgress:    e.board.MoveInProgress(),
		HasChanged:        e.board.HasChanged(),
		Message:           e.message,
		ConfigName:        e.config.Name,
		MoveHistory:       append([]MoveHistoryEntry{}, e.moveHistory...),
		TotalMoves:        e.totalMoves,
		CurrentMoves:      append([]MoveHistoryEntry{}, e.currentMoves...),
		CurrentMovesCount: len(e.currentMoves),
		PossibleMoves:     e.board.PossibleMoves(),
		TileSum:           e.board.TileSum(),
		MaxTile:           e.board.MaxTile(),
	}
}

// Reset starts a fresh board with the two seed tiles
func (e *GameEngine) Reset() (*GameState, error) {
	// Cumulative history survives resets; newBoard clears the current segment
	if err := e.newBoard(); err != nil {
		return nil, err
	}
	return e.GetState(), nil
}

// IsMoveInProgress reports whether merges from the last move are still pending
func (e *GameEngine) IsMoveInProgress() bool {
	return e.board.MoveInProgress()
}

// Move slides the board in the given direction and records the attempt
func (e *GameEngine) Move(direction Direction) (*MoveResult, error) {
	if e == nil || e.board == nil {
		return nil, ErrNilBoard
	}

	result, err := e.board.Move(direction)
	if err != nil {
		return nil, err
	}

	switch {
	case result.Ignored:
		e.message = e.config.Messages.MoveIgnored
	case !result.Changed:
		e.message = e.config.Messages.NoChange
	default:
		e.message = fmt.Sprintf(e.config.Messages.Moved, direction)
	}
	if result.Completed {
		e.checkNoMovesLeft()
	}

	e.addMoveToHistory(result)
	if !result.Completed && !result.Ignored {
		e.pending = result
		e.pendingNumber = e.totalMoves
	}
	return result, nil
}

func (e *GameEngine) checkNoMovesLeft() {
	if len(e.board.PossibleMoves()) == 0 && e.config.Messages.NoMovesLeft != "" {
		e.message = e.config.Messages.NoMovesLeft
	}
}

// moveCompleted fills in the history entry of a deferred move once its
// merges are applied. Immediate completions run before the entry exists and
// are handled by Move itself.
func (e *GameEngine) moveCompleted(result *MoveResult) {
	if e.pending != result {
		return
	}
	fill := func(entries []MoveHistoryEntry) {
		for i := len(entries) - 1; i >= 0; i-- {
			if entries[i].MoveNumber == e.pendingNumber {
				entries[i].Spawned = result.Spawned
				return
			}
		}
	}
	fill(e.moveHistory)
	fill(e.currentMoves)
	e.pending = nil
	e.checkNoMovesLeft()
}

// BulkMove executes multiple moves in sequence, stopping at the first error
func (e *GameEngine) BulkMove(directions []Direction) ([]*MoveResult, error) {
	results := make([]*MoveResult, 0, len(directions))
	for _, d := range directions {
		result, err := e.Move(d)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// CanMove reports whether moving in direction would change the board
func (e *GameEngine) CanMove(direction Direction) bool {
	return e.board.CanMove(direction)
}

// GetPossibleMoves returns all directions that would change the board
func (e *GameEngine) GetPossibleMoves() []Direction {
	return e.board.PossibleMoves()
}

// GetTiles returns the tiles in creation order
func (e *GameEngine) GetTiles() []Tile {
	return e.board.Tiles()
}

// SpawnTile spawns a tile at a random empty cell
func (e *GameEngine) SpawnTile(value int) (*Tile, error) {
	return e.board.SpawnTile(value)
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new game configuration and resets the board
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	prev := e.config
	e.config = config
	if err := e.newBoard(); err != nil {
		e.config = prev
		return err
	}
	return nil
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.moveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.moveHistory) == 0 {
		return nil
	}
	return &e.moveHistory[len(e.moveHistory)-1]
}

// addMoveToHistory appends a move to both the cumulative and current histories
func (e *GameEngine) addMoveToHistory(result *MoveResult) {
	entry := MoveHistoryEntry{
		Action:     result.Direction,
		Changed:    result.Changed,
		Ignored:    result.Ignored,
		Merges:     len(result.Merges),
		Spawned:    result.Spawned,
		Timestamp:  time.Now().Unix(),
		MoveNumber: e.totalMoves + 1,
	}
	e.moveHistory = append(e.moveHistory, entry)
	e.totalMoves++
	e.currentMoves = append(e.currentMoves, entry)
}
