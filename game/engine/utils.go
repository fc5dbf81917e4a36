package engine

// positionToIndex maps (x,y) to the linear cell index y*size + x
func positionToIndex(p Position, size int) int {
	return p.Y*size + p.X
}

// indexToPosition is the inverse of positionToIndex
func indexToPosition(index, size int) Position {
	return Position{X: index % size, Y: index / size}
}

func inBounds(p Position, size int) bool {
	return p.X >= 0 && p.X < size && p.Y >= 0 && p.Y < size
}

// IsPowerOfTwo reports whether v is 2, 4, 8, ...
func IsPowerOfTwo(v int) bool {
	return v >= 2 && v&(v-1) == 0
}

// MirrorHorizontal reflects tiles across the vertical axis (x -> size-1-x)
func MirrorHorizontal(tiles []Tile, size int) []Tile {
	out := make([]Tile, len(tiles))
	for i, t := range tiles {
		t.Position.X = size - 1 - t.Position.X
		out[i] = t
	}
	return out
}

// MirrorVertical reflects tiles across the horizontal axis (y -> size-1-y)
func MirrorVertical(tiles []Tile, size int) []Tile {
	out := make([]Tile, len(tiles))
	for i, t := range tiles {
		t.Position.Y = size - 1 - t.Position.Y
		out[i] = t
	}
	return out
}

// GridFromTiles lays tile values out as grid[y][x]
func GridFromTiles(tiles []Tile, size int) [][]int {
	grid := make([][]int, size)
	for y := range grid {
		grid[y] = make([]int, size)
	}
	for _, t := range tiles {
		if inBounds(t.Position, size) {
			grid[t.Position.Y][t.Position.X] = t.Value
		}
	}
	return grid
}

// Opposite returns the direction pointing the other way
func Opposite(d Direction) Direction {
	switch d {
	case Left:
		return Right
	case Right:
		return Left
	case Up:
		return Down
	case Down:
		return Up
	}
	return d
}
