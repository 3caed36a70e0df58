package gridmap

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"
	"github.com/zyedidia/generic/stack"
)

// RoomLabels are the variation codes handed out to rooms, in order.
const RoomLabels = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Room is a maximal 4-connected set of free, non-doorway cells.
type Room struct {
	Label byte
	// Cells in the order the flood fill reached them
	Cells []Cell
}

// Labeling assigns a label to every cell of every kept room.
type Labeling struct {
	rows   int
	cols   int
	Rooms  []Room
	labels map[Cell]byte
}

// Label returns the label of the room holding c, if any.
func (l *Labeling) Label(c Cell) (byte, bool) {
	label, ok := l.labels[c]
	return label, ok
}

// Members returns the set of cells labeled with label.
func (l *Labeling) Members(label byte) mapset.Set[Cell] {
	members := mapset.New[Cell]()
	for _, r := range l.Rooms {
		if r.Label != label {
			continue
		}
		for _, c := range r.Cells {
			members.Put(c)
		}
	}
	return members
}

// IsDoorway reports whether the free cell c is pinched by walls on both sides
// of one axis. c must not lie on the grid border.
func IsDoorway(g Grid, c Cell) bool {
	return (g.walls[c.Row-1][c.Col] && g.walls[c.Row+1][c.Col]) ||
		(g.walls[c.Row][c.Col-1] && g.walls[c.Row][c.Col+1])
}

// SegmentRooms partitions the free cells of g into rooms separated by
// doorways. Doorway cells, and rooms with fewer than two cells, get no label.
// Labels are handed out in row-major order of each room's first cell.
func SegmentRooms(g Grid) (*Labeling, error) {
	seen := g.Cells()
	labeling := &Labeling{
		rows:   g.rows,
		cols:   g.cols,
		Rooms:  make([]Room, 0),
		labels: make(map[Cell]byte),
	}

	for i := 0; i < g.rows; i++ {
		for j := 0; j < g.cols; j++ {
			if seen[i][j] {
				continue
			}
			cells := floodRoom(g, Cell{i, j}, seen)
			if len(cells) < 2 {
				continue
			}
			if len(labeling.Rooms) == len(RoomLabels) {
				return nil, fmt.Errorf("%w: more than %d rooms, room starting at %s has no label left", ErrTooManyRooms, len(RoomLabels), Cell{i, j})
			}
			label := RoomLabels[len(labeling.Rooms)]
			for _, c := range cells {
				labeling.labels[c] = label
			}
			labeling.Rooms = append(labeling.Rooms, Room{Label: label, Cells: cells})
		}
	}
	return labeling, nil
}

// floodRoom collects the room reachable from start without crossing walls or
// doorways. Every reached cell is marked in seen as soon as it is pushed, so
// each cell is handled at most once across the whole segmentation.
func floodRoom(g Grid, start Cell, seen [][]bool) []Cell {
	room := make([]Cell, 0)
	work := stack.New[Cell]()
	seen[start.Row][start.Col] = true
	work.Push(start)

	for work.Size() > 0 {
		cur := work.Pop()
		if IsDoorway(g, cur) {
			continue
		}
		room = append(room, cur)
		next := cur.neighbours()
		// pushed in reverse so that "up" is expanded first
		for k := len(next) - 1; k >= 0; k-- {
			n := next[k]
			if seen[n.Row][n.Col] {
				continue
			}
			seen[n.Row][n.Col] = true
			work.Push(n)
		}
	}
	return room
}
