package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

var (
	ErrInvariantViolation = errors.New("board invariant violation")
	ErrNilBoard           = errors.New("board is not initialized")
	ErrInvalidDirection   = errors.New("invalid direction")
	ErrInvalidValue       = errors.New("tile value must be a power of two of at least 2")
	ErrPositionOccupied   = errors.New("position already occupied")
)

// RandomSource picks spawn cells. *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	IntN(n int) int
}

// Board owns the tiles of one game and is the only thing allowed to mutate them.
// A Board is not safe for concurrent use.
type Board struct {
	size  int
	tiles map[int]*Tile
	order []int // tile ids in creation order
	next  int

	moveInProgress bool
	hasChanged     bool

	rng       RandomSource
	scheduler Scheduler
	delay     time.Duration

	// onComplete runs after a move's merges are applied
	onComplete func(*MoveResult)
}

// BoardOption customises a Board
type BoardOption func(*Board)

// WithRandom injects the random source used for spawning
func WithRandom(r RandomSource) BoardOption {
	return func(b *Board) { b.rng = r }
}

// WithSeed seeds a deterministic random source
func WithSeed(seed int64) BoardOption {
	return func(b *Board) { b.rng = rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1)) }
}

// WithScheduler sets how merge application is deferred
func WithScheduler(s Scheduler) BoardOption {
	return func(b *Board) { b.scheduler = s }
}

// WithMergeDelay sets the delay handed to the scheduler for merge application
func WithMergeDelay(d time.Duration) BoardOption {
	return func(b *Board) { b.delay = d }
}

// NewBoard creates an empty size x size board
func NewBoard(size int, opts ...BoardOption) (*Board, error) {
	if size < 1 {
		return nil, fmt.Errorf("board size must be positive, got %d", size)
	}

	b := &Board{
		size:      size,
		tiles:     make(map[int]*Tile),
		next:      1,
		scheduler: ImmediateScheduler{},
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.rng == nil {
		seed := uint64(time.Now().UnixNano())
		b.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	if b.scheduler == nil {
		b.scheduler = ImmediateScheduler{}
	}
	return b, nil
}

// Size returns the number of rows (and columns)
func (b *Board) Size() int {
	return b.size
}

// MoveInProgress reports whether a move is waiting for its merges to be applied
func (b *Board) MoveInProgress() bool {
	return b.moveInProgress
}

// HasChanged reports whether the last move altered the board
func (b *Board) HasChanged() bool {
	return b.hasChanged
}

// Seed places the two starting tiles at (0,1) and (0,2)
func (b *Board) Seed() error {
	for _, pos := range []Position{{X: 0, Y: 1}, {X: 0, Y: 2}} {
		if _, err := b.PlaceTile(DefaultSpawnValue, pos); err != nil {
			return fmt.Errorf("seed tile at %s: %w", pos, err)
		}
	}
	return nil
}

// Tiles returns a copy of every tile in creation order
func (b *Board) Tiles() []Tile {
	out := make([]Tile, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, *b.tiles[id])
	}
	return out
}

// Tile returns the tile with the given id
func (b *Board) Tile(id int) (Tile, bool) {
	t, ok := b.tiles[id]
	if !ok {
		return Tile{}, false
	}
	return *t, true
}

// PlaceTile creates a tile at a specific position
func (b *Board) PlaceTile(value int, pos Position) (*Tile, error) {
	if b == nil {
		return nil, ErrNilBoard
	}
	if !IsPowerOfTwo(value) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidValue, value)
	}
	if !inBounds(pos, b.size) {
		return nil, fmt.Errorf("%w: %s outside %dx%d board", ErrInvariantViolation, pos, b.size, b.size)
	}
	if b.occupied()[positionToIndex(pos, b.size)] != 0 {
		return nil, fmt.Errorf("%w: %s", ErrPositionOccupied, pos)
	}
	return b.createTile(value, pos), nil
}

// SpawnTile creates a tile at a uniformly random empty cell. A value of 0
// means the default of 2. A full board is not an error: nothing is spawned
// and a nil tile is returned.
func (b *Board) SpawnTile(value int) (*Tile, error) {
	if b == nil {
		return nil, ErrNilBoard
	}
	if value == 0 {
		value = DefaultSpawnValue
	}
	if !IsPowerOfTwo(value) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidValue, value)
	}

	empty := b.EmptyPositions()
	if len(empty) == 0 {
		return nil, nil
	}
	pos := empty[b.rng.IntN(len(empty))]
	return b.createTile(value, pos), nil
}

// EmptyPositions scans every cell and returns the unoccupied ones in index order
func (b *Board) EmptyPositions() []Position {
	occupied := b.occupied()
	var empty []Position
	for idx, id := range occupied {
		if id == 0 {
			empty = append(empty, indexToPosition(idx, b.size))
		}
	}
	return empty
}

// Grid returns tile values laid out as grid[y][x], 0 for empty cells
func (b *Board) Grid() [][]int {
	grid := make([][]int, b.size)
	for y := range grid {
		grid[y] = make([]int, b.size)
	}
	for _, id := range b.order {
		t := b.tiles[id]
		if t.MergeWith != 0 {
			continue
		}
		grid[t.Position.Y][t.Position.X] = t.Value
	}
	return grid
}

// Move slides every tile toward direction, merging equal neighbours.
//
// While a move's merge application is pending, further moves are ignored
// rather than queued. Once the scheduler runs the completion, merge sources
// are removed, destinations double, and one tile spawns if anything changed.
func (b *Board) Move(direction Direction) (*MoveResult, error) {
	if b == nil {
		return nil, ErrNilBoard
	}
	if !direction.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDirection, direction)
	}
	if b.moveInProgress {
		return &MoveResult{Direction: direction, Ignored: true}, nil
	}

	plan, err := PlanMove(b.Tiles(), b.size, direction)
	if err != nil {
		return nil, err
	}

	b.moveInProgress = true
	b.hasChanged = plan.Changed()

	for _, m := range plan.Moves {
		t := b.tiles[m.ID]
		if m.Moved() {
			t.Position = m.To
		}
		t.MergeWith = m.MergeWith
	}

	result := &MoveResult{
		Direction: direction,
		Changed:   b.hasChanged,
		Moves:     plan.Moved(),
		Merges:    plan.Merges,
	}

	merges := plan.Merges
	b.scheduler.Schedule(b.delay, func() {
		b.completeMove(merges, result)
	})

	return result, nil
}

// completeMove applies pending merges, ends the move and spawns a tile when
// the move changed the board
func (b *Board) completeMove(merges []MergeEvent, result *MoveResult) {
	for _, ev := range merges {
		b.removeTile(ev.SourceID)
		if dst, ok := b.tiles[ev.DestinationID]; ok {
			dst.Value = ev.Value
		}
	}
	for _, t := range b.tiles {
		t.MergeWith = 0
	}

	b.moveInProgress = false
	if b.hasChanged {
		// the default value is always valid; a full board yields nil
		spawned, _ := b.SpawnTile(DefaultSpawnValue)
		result.Spawned = spawned
	}
	result.Completed = true
	if b.onComplete != nil {
		b.onComplete(result)
	}
}

// CanMove reports whether moving in direction would change the board
func (b *Board) CanMove(direction Direction) bool {
	if b == nil || b.moveInProgress {
		return false
	}
	plan, err := PlanMove(b.Tiles(), b.size, direction)
	if err != nil {
		return false
	}
	return plan.Changed()
}

// PossibleMoves returns the directions that would change the board
func (b *Board) PossibleMoves() []Direction {
	possible := []Direction{}
	for _, d := range Directions {
		if b.CanMove(d) {
			possible = append(possible, d)
		}
	}
	return possible
}

// Validate checks the board invariants. Positions must be unique only when no
// move is in progress, since a merge source shares its destination's cell until
// the merge is applied.
func (b *Board) Validate() error {
	if b == nil {
		return ErrNilBoard
	}
	if len(b.order) != len(b.tiles) {
		return fmt.Errorf("%w: %d ids ordered but %d tiles stored", ErrInvariantViolation, len(b.order), len(b.tiles))
	}

	seen := make(map[Position]int, len(b.tiles))
	for _, id := range b.order {
		t, ok := b.tiles[id]
		if !ok || t.ID != id {
			return fmt.Errorf("%w: tile %d missing from store", ErrInvariantViolation, id)
		}
		if !inBounds(t.Position, b.size) {
			return fmt.Errorf("%w: tile %d at %s outside %dx%d board", ErrInvariantViolation, id, t.Position, b.size, b.size)
		}
		if !IsPowerOfTwo(t.Value) {
			return fmt.Errorf("%w: tile %d has value %d", ErrInvariantViolation, id, t.Value)
		}
		if b.moveInProgress {
			continue
		}
		if other, dup := seen[t.Position]; dup {
			return fmt.Errorf("%w: tiles %d and %d share %s", ErrInvariantViolation, other, id, t.Position)
		}
		seen[t.Position] = id
	}
	return nil
}

// TileSum returns the sum of all visible tile values
func (b *Board) TileSum() int {
	sum := 0
	for _, row := range b.Grid() {
		for _, v := range row {
			sum += v
		}
	}
	return sum
}

// MaxTile returns the largest visible tile value, 0 on an empty board
func (b *Board) MaxTile() int {
	largest := 0
	for _, row := range b.Grid() {
		for _, v := range row {
			if v > largest {
				largest = v
			}
		}
	}
	return largest
}

func (b *Board) createTile(value int, pos Position) *Tile {
	t := &Tile{ID: b.next, Value: value, Position: pos}
	b.next++
	b.tiles[t.ID] = t
	b.order = append(b.order, t.ID)
	return &Tile{ID: t.ID, Value: t.Value, Position: t.Position}
}

func (b *Board) removeTile(id int) {
	if _, ok := b.tiles[id]; !ok {
		return
	}
	delete(b.tiles, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// occupied maps each linear cell index to the id of the tile resting there.
// Merge sources are skipped since they are about to disappear.
func (b *Board) occupied() []int {
	cells := make([]int, b.size*b.size)
	for _, id := range b.order {
		t := b.tiles[id]
		if t.MergeWith != 0 {
			continue
		}
		cells[positionToIndex(t.Position, b.size)] = id
	}
	return cells
}
