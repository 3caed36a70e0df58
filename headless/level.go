// Package headless is a small kinematic stand-in for the native simulator.
// It runs the gridmap level scripts without rendering, which is enough to
// exercise environments, policies and the map precompiler.
package headless

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmklee/rl-in-dmlab/gridmap"
)

var errNoSpawn = errors.New("entity layer has no spawn point")

// level is a parsed entity layer
type level struct {
	name       string
	rows       int
	cols       int
	walls      [][]bool
	spawn      gridmap.Cell
	goal       gridmap.Cell
	hasGoal    bool
	entity     string
	variations string
}

func parseLevel(name, entity, variations string) (*level, error) {
	lines := strings.Split(strings.TrimRight(entity, "\n"), "\n")
	l := &level{
		name:       name,
		rows:       len(lines),
		entity:     entity,
		variations: variations,
	}
	for _, line := range lines {
		l.cols = max(l.cols, len(line))
	}
	hasSpawn := false
	l.walls = make([][]bool, l.rows)
	for i, line := range lines {
		l.walls[i] = make([]bool, l.cols)
		for j := 0; j < l.cols; j++ {
			if j >= len(line) {
				// short lines are padded with walls
				l.walls[i][j] = true
				continue
			}
			switch line[j] {
			case gridmap.WallChar:
				l.walls[i][j] = true
			case gridmap.SpawnChar:
				if !hasSpawn {
					l.spawn = gridmap.Cell{Row: i, Col: j}
					hasSpawn = true
				}
			case gridmap.GoalChar:
				if !l.hasGoal {
					l.goal = gridmap.Cell{Row: i, Col: j}
					l.hasGoal = true
				}
			}
		}
	}
	if !hasSpawn {
		return nil, fmt.Errorf("level %q: %w", name, errNoSpawn)
	}
	return l, nil
}

// wall reports whether the cell is a wall, everything outside the layer is
func (l *level) wall(c gridmap.Cell) bool {
	if c.Row < 0 || c.Row >= l.rows || c.Col < 0 || c.Col >= l.cols {
		return true
	}
	return l.walls[c.Row][c.Col]
}

// cellAt maps a level position to the cell containing it
func (l *level) cellAt(x, y float64) gridmap.Cell {
	row := float64(l.rows) - y/gridmap.CellSize
	col := x / gridmap.CellSize
	c := gridmap.Cell{Row: int(row), Col: int(col)}
	if row < 0 {
		c.Row = -1
	}
	if col < 0 {
		c.Col = -1
	}
	return c
}

// center of a cell in level units
func (l *level) center(c gridmap.Cell) (float64, float64) {
	return gridmap.CellSize * (float64(c.Col) + 0.5), gridmap.CellSize * (float64(l.rows-c.Row) - 0.5)
}

// bsp is the compiled form written into map archives
func (l *level) bsp() []byte {
	return []byte(l.entity + "\n\n" + l.variations + "\n")
}
