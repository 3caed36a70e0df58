package gridmap

import (
	"log"
	"strings"
)

// Characters of the entity layer.
const (
	WallChar  = '*'
	BlankChar = ' '
	SpawnChar = 'P'
	GoalChar  = 'A'
)

// TextMap renders g as an entity layer: '*' for walls and ' ' for free cells,
// with the first free cell (row-major) turned into the spawn point 'P' and the
// next one into the goal 'A'. The spawn point only seeds level construction,
// the player is respawned wherever Reset asks.
func TextMap(g Grid) string {
	if free := len(g.FreeCells()); free < 2 {
		log.Printf("gridmap: grid has %d free cells, the level needs 2 to hold both spawn and goal", free)
	}
	layer := render(g, func(c Cell) byte {
		if g.walls[c.Row][c.Col] {
			return WallChar
		}
		return BlankChar
	})
	layer = strings.Replace(layer, string(BlankChar), string(SpawnChar), 1)
	layer = strings.Replace(layer, string(BlankChar), string(GoalChar), 1)
	return layer
}

// EnsureMarkers adds a spawn and a goal marker to an entity layer that lacks
// them, using the first blanks in reading order.
func EnsureMarkers(layer string) string {
	if !strings.ContainsRune(layer, SpawnChar) {
		log.Printf("gridmap: added spawn location, make sure the map has exactly one")
		layer = strings.Replace(layer, string(BlankChar), string(SpawnChar), 1)
	}
	if !strings.ContainsRune(layer, GoalChar) {
		log.Printf("gridmap: added goal location, make sure the map has exactly one")
		layer = strings.Replace(layer, string(BlankChar), string(GoalChar), 1)
	}
	return layer
}
