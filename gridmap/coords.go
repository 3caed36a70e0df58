package gridmap

// CellSize is the side of one grid cell in level units.
const CellSize = 100.0

// GridToLevel converts a continuous grid location (row, col) to a level
// position. The level origin is the bottom-left corner, so rows are flipped.
func GridToLevel(g Grid, row, col float64) (x, y float64) {
	return CellSize * col, CellSize * (float64(g.rows) - row)
}

// LevelToGrid is the inverse of GridToLevel.
func LevelToGrid(g Grid, x, y float64) (row, col float64) {
	return float64(g.rows) - y/CellSize, x / CellSize
}

// CellCenter returns the level position of the middle of c.
func CellCenter(g Grid, c Cell) (x, y float64) {
	return GridToLevel(g, float64(c.Row)+0.5, float64(c.Col)+0.5)
}

// CellAt returns the cell holding the level position (x, y) and whether it
// lies inside the grid.
func CellAt(g Grid, x, y float64) (Cell, bool) {
	row, col := LevelToGrid(g, x, y)
	if row < 0 || col < 0 {
		return Cell{}, false
	}
	c := Cell{Row: int(row), Col: int(col)}
	return c, g.InBounds(c)
}
