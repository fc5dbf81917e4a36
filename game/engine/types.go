package engine

import (
	"fmt"
	"strings"
)

// Direction is one of the four directions a move slides tiles toward
type Direction string

const (
	Left  Direction = "left"
	Right Direction = "right"
	Up    Direction = "up"
	Down  Direction = "down"

	// Validation constants
	MinBoardSize        = 3
	MaxBoardSize        = 16
	DefaultBoardSize    = 4
	DefaultSpawnValue   = 2
	DefaultMergeDelayMs = 100
	MaxMergeDelayMs     = 2000
	MaxBulkMoves        = 50
	WebSocketBufferSize = 256
)

// Directions lists every direction in a fixed order
var Directions = []Direction{Up, Down, Left, Right}

// ParseDirection converts user input into a Direction (case-insensitive)
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
	return d, nil
}

// Valid reports whether d is one of the four known directions
func (d Direction) Valid() bool {
	switch d {
	case Left, Right, Up, Down:
		return true
	}
	return false
}

// horizontal reports whether d moves tiles along rows
func (d Direction) horizontal() bool {
	return d == Left || d == Right
}

// towardEnd reports whether tiles travel toward the highest index of the line
func (d Direction) towardEnd() bool {
	return d == Right || d == Down
}

// Position represents x,y coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Tile is a single numbered piece on the board
type Tile struct {
	ID       int      `json:"id"`
	Value    int      `json:"value"`
	Position Position `json:"position"`

	// MergeWith names the tile this one is merging into. It is only set while
	// a move's merge application is pending.
	MergeWith int `json:"merge_with,omitempty"`
}

// TileMove describes where one tile goes during a move
type TileMove struct {
	ID        int      `json:"id"`
	Value     int      `json:"value"`
	From      Position `json:"from"`
	To        Position `json:"to"`
	MergeWith int      `json:"merge_with,omitempty"`
}

// Moved reports whether the tile changes position
func (m TileMove) Moved() bool {
	return m.From != m.To
}

// MergeEvent records two equal tiles combining into one
type MergeEvent struct {
	SourceID      int      `json:"source_id"`
	DestinationID int      `json:"destination_id"`
	Position      Position `json:"position"`
	Value         int      `json:"value"` // value after merging
}

// MoveResult is the outcome of a single move request
type MoveResult struct {
	Direction Direction    `json:"direction"`
	Changed   bool         `json:"changed"`
	Ignored   bool         `json:"ignored,omitempty"` // a move was already in progress
	Moves     []TileMove   `json:"moves,omitempty"`
	Merges    []MergeEvent `json:"merges,omitempty"`
	Spawned   *Tile        `json:"spawned,omitempty"`
	Completed bool         `json:"completed"` // merges applied and spawn done
}

// GameConfig represents a board configuration loaded from JSON
type GameConfig struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	BoardSize    int    `json:"board_size"`
	MergeDelayMs int    `json:"merge_delay_ms"`
	Seed         int64  `json:"seed,omitempty"` // 0 seeds from the clock
	Messages     struct {
		Welcome     string `json:"welcome"`
		Moved       string `json:"moved"`
		NoChange    string `json:"no_change"`
		MoveIgnored string `json:"move_ignored"`
		NoMovesLeft string `json:"no_moves_left"`
	} `json:"messages"`
}

// GameState is a snapshot of a game suitable for rendering and transport
type GameState struct {
	BoardSize      int     `json:"board_size"`
	Tiles          []Tile  `json:"tiles"`
	Grid           [][]int `json:"grid"`
	MoveInProgress bool    `json:"move_in_progress"`
	HasChanged     bool    `json:"has_changed"`
	Message        string  `json:"message"`
	ConfigName     string  `json:"config_name"`

	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`

	// CurrentMoves tracks only the moves since the last reset. It mirrors MoveHistory entries
	// but gets cleared on reset while MoveHistory remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`

	// Computed helper views (not required for core game logic)
	PossibleMoves []Direction `json:"possible_moves"`
	TileSum       int         `json:"tile_sum"`
	MaxTile       int         `json:"max_tile"`
}

// MoveHistoryEntry represents a single move in the game history
type MoveHistoryEntry struct {
	Action     Direction `json:"action"`
	Changed    bool      `json:"changed"`
	Ignored    bool      `json:"ignored,omitempty"`
	Merges     int       `json:"merges"`
	Spawned    *Tile     `json:"spawned,omitempty"`
	Timestamp  int64     `json:"timestamp"`
	MoveNumber int       `json:"move_number"`
}
