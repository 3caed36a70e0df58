// Package gridmap turns boolean occupancy grids into the text layers consumed
// by the level generator: the entity layer (walls, spawn and goal) and the
// variation layer (per room decoration codes).
package gridmap

import (
	"fmt"
	"strings"
)

// Cell is a (row, column) coordinate in a grid.
type Cell struct {
	Row int
	Col int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d, %d)", c.Row, c.Col)
}

// neighbours in the fixed order up, right, down, left
func (c Cell) neighbours() [4]Cell {
	return [4]Cell{
		{c.Row - 1, c.Col},
		{c.Row, c.Col + 1},
		{c.Row + 1, c.Col},
		{c.Row, c.Col - 1},
	}
}

// Grid is a validated occupancy grid where true marks a wall.
// A Grid always has a sealed border of walls so that every free cell has
// four in-bounds neighbours.
type Grid struct {
	rows  int
	cols  int
	walls [][]bool
}

// NewGrid validates cells and returns a Grid holding a copy of them.
func NewGrid(cells [][]bool) (Grid, error) {
	if err := Validate(cells); err != nil {
		return Grid{}, err
	}
	walls := make([][]bool, len(cells))
	for i, row := range cells {
		walls[i] = make([]bool, len(row))
		copy(walls[i], row)
	}
	return Grid{
		rows:  len(cells),
		cols:  len(cells[0]),
		walls: walls,
	}, nil
}

// EmptyRoom returns a rows x cols grid with a wall border and a free interior.
func EmptyRoom(rows, cols int) (Grid, error) {
	cells := make([][]bool, rows)
	for i := range cells {
		cells[i] = make([]bool, cols)
		for j := range cells[i] {
			cells[i][j] = i == 0 || j == 0 || i == rows-1 || j == cols-1
		}
	}
	return NewGrid(cells)
}

// ParseGrid reads a grid from text, one line per row. '*', '#' and '1' are
// walls, ' ', '.' and '0' are free. Trailing blank lines are ignored.
func ParseGrid(text string) (Grid, error) {
	lines := strings.Split(strings.TrimRight(text, "\r\n"), "\n")
	cells := make([][]bool, 0, len(lines))
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		row := make([]bool, 0, len(line))
		for j, ch := range line {
			switch ch {
			case '*', '#', '1':
				row = append(row, true)
			case ' ', '.', '0':
				row = append(row, false)
			default:
				return Grid{}, fmt.Errorf("%w: unexpected character %q at line %d column %d", ErrInvalidGrid, ch, i+1, j+1)
			}
		}
		cells = append(cells, row)
	}
	return NewGrid(cells)
}

func (g Grid) Rows() int {
	return g.rows
}

func (g Grid) Cols() int {
	return g.cols
}

// Wall reports whether the cell at (row, col) is a wall.
func (g Grid) Wall(row, col int) bool {
	return g.walls[row][col]
}

// Cells returns a copy of the underlying wall matrix.
func (g Grid) Cells() [][]bool {
	out := make([][]bool, g.rows)
	for i, row := range g.walls {
		out[i] = make([]bool, g.cols)
		copy(out[i], row)
	}
	return out
}

// FreeCells lists the free cells in row-major order.
func (g Grid) FreeCells() []Cell {
	free := make([]Cell, 0)
	for i := 0; i < g.rows; i++ {
		for j := 0; j < g.cols; j++ {
			if !g.walls[i][j] {
				free = append(free, Cell{i, j})
			}
		}
	}
	return free
}

// InBounds reports whether c lies inside the grid.
func (g Grid) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < g.rows && c.Col >= 0 && c.Col < g.cols
}

func (g Grid) String() string {
	return render(g, func(c Cell) byte {
		if g.walls[c.Row][c.Col] {
			return WallChar
		}
		return BlankChar
	})
}

// render lays out one character per cell, rows joined by newlines
func render(g Grid, char func(Cell) byte) string {
	var b strings.Builder
	b.Grow(g.rows * (g.cols + 1))
	for i := 0; i < g.rows; i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j := 0; j < g.cols; j++ {
			b.WriteByte(char(Cell{i, j}))
		}
	}
	return b.String()
}
