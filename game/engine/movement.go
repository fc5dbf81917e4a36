package engine

import "fmt"

// MovePlan is the computed outcome of a move before it is applied to a board
type MovePlan struct {
	Direction Direction
	Moves     []TileMove // one entry per tile, in line order
	Merges    []MergeEvent
}

// Changed reports whether the plan moves or merges anything
func (p *MovePlan) Changed() bool {
	if len(p.Merges) > 0 {
		return true
	}
	for _, m := range p.Moves {
		if m.Moved() {
			return true
		}
	}
	return false
}

// Moved returns only the entries whose position changes
func (p *MovePlan) Moved() []TileMove {
	var moved []TileMove
	for _, m := range p.Moves {
		if m.Moved() {
			moved = append(moved, m)
		}
	}
	return moved
}

// Apply returns the tiles as they look once the plan's merges have been
// applied. The input slice is not modified and its order is preserved.
func (p *MovePlan) Apply(tiles []Tile) []Tile {
	targets := make(map[int]TileMove, len(p.Moves))
	for _, m := range p.Moves {
		targets[m.ID] = m
	}
	merged := make(map[int]int, len(p.Merges))
	for _, ev := range p.Merges {
		merged[ev.DestinationID] = ev.Value
	}

	out := make([]Tile, 0, len(tiles))
	for _, t := range tiles {
		m, ok := targets[t.ID]
		if ok && m.MergeWith != 0 {
			continue
		}
		if ok {
			t.Position = m.To
		}
		if v, ok := merged[t.ID]; ok {
			t.Value = v
		}
		t.MergeWith = 0
		out = append(out, t)
	}
	return out
}

// PlanMove computes which tiles slide and which merge when the board is moved
// in dir. It does not mutate anything, so it can be used to preview a move.
//
// Each row (left/right) or column (up/down) is walked from the edge the tiles
// travel toward. A tile equal to the previously placed tile merges into it and
// clears the previous pointer, so three equal tiles merge only once.
func PlanMove(tiles []Tile, size int, dir Direction) (*MovePlan, error) {
	if !dir.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDirection, dir)
	}
	if size < 1 {
		return nil, fmt.Errorf("%w: board size %d", ErrInvariantViolation, size)
	}

	cells := make([]*Tile, size*size)
	for i := range tiles {
		t := &tiles[i]
		if !inBounds(t.Position, size) {
			return nil, fmt.Errorf("%w: tile %d at %s outside %dx%d board",
				ErrInvariantViolation, t.ID, t.Position, size, size)
		}
		idx := positionToIndex(t.Position, size)
		if cells[idx] != nil {
			return nil, fmt.Errorf("%w: tiles %d and %d share %s",
				ErrInvariantViolation, cells[idx].ID, t.ID, t.Position)
		}
		cells[idx] = t
	}

	plan := &MovePlan{Direction: dir}
	maxIndex := size - 1

	for line := 0; line < size; line++ {
		ordered := lineTiles(cells, size, line, dir)

		var previous *TileMove
		mergeCount := 0

		for i, current := range ordered {
			if previous != nil && previous.Value == current.Value {
				plan.Moves = append(plan.Moves, TileMove{
					ID:        current.ID,
					Value:     current.Value,
					From:      current.Position,
					To:        previous.To,
					MergeWith: previous.ID,
				})
				plan.Merges = append(plan.Merges, MergeEvent{
					SourceID:      current.ID,
					DestinationID: previous.ID,
					Position:      previous.To,
					Value:         previous.Value * 2,
				})
				previous = nil
				mergeCount++
				continue
			}

			target := i - mergeCount
			if dir.towardEnd() {
				target = maxIndex - i + mergeCount
			}

			to := Position{X: target, Y: line}
			if !dir.horizontal() {
				to = Position{X: line, Y: target}
			}
			if !inBounds(to, size) {
				return nil, fmt.Errorf("%w: tile %d planned at %s moving %s",
					ErrInvariantViolation, current.ID, to, dir)
			}

			placed := TileMove{
				ID:    current.ID,
				Value: current.Value,
				From:  current.Position,
				To:    to,
			}
			plan.Moves = append(plan.Moves, placed)
			previous = &placed
		}
	}

	return plan, nil
}

// lineTiles returns the occupied cells of one row or column ordered from the
// leading edge (the side tiles travel toward) to the trailing edge
func lineTiles(cells []*Tile, size, line int, dir Direction) []*Tile {
	out := make([]*Tile, 0, size)
	for i := 0; i < size; i++ {
		k := i
		if dir.towardEnd() {
			k = size - 1 - i
		}

		var pos Position
		if dir.horizontal() {
			pos = Position{X: k, Y: line}
		} else {
			pos = Position{X: line, Y: k}
		}

		if t := cells[positionToIndex(pos, size)]; t != nil {
			out = append(out, t)
		}
	}
	return out
}
