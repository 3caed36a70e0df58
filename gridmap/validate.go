package gridmap

import "fmt"

// Validate checks that cells is rectangular, at least 3x3 and sealed by walls
// on every border cell.
func Validate(cells [][]bool) error {
	rows := len(cells)
	if rows < 3 {
		return fmt.Errorf("%w: need at least 3 rows, got %d", ErrInvalidGrid, rows)
	}
	cols := len(cells[0])
	if cols < 3 {
		return fmt.Errorf("%w: need at least 3 columns, got %d", ErrInvalidGrid, cols)
	}
	for i, row := range cells {
		if len(row) != cols {
			return fmt.Errorf("%w: row %d has %d columns, expected %d", ErrInvalidGrid, i, len(row), cols)
		}
	}
	for j := 0; j < cols; j++ {
		if !cells[0][j] || !cells[rows-1][j] {
			return fmt.Errorf("%w: free border cell in column %d", ErrInvalidGrid, j)
		}
	}
	for i := 0; i < rows; i++ {
		if !cells[i][0] || !cells[i][cols-1] {
			return fmt.Errorf("%w: free border cell in row %d", ErrInvalidGrid, i)
		}
	}
	return nil
}
