package gridmap

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// NoVariationChar marks cells whose look the variation layer leaves alone in
// the random style.
const NoVariationChar = '*'

// VariationStyle selects how the variation layer is built.
type VariationStyle string

const (
	VariationNone   VariationStyle = "none"
	VariationRandom VariationStyle = "random"
	VariationRoom   VariationStyle = "room"
)

// ParseVariationStyle maps a style name to a VariationStyle.
func ParseVariationStyle(s string) (VariationStyle, error) {
	switch style := VariationStyle(s); style {
	case VariationNone, VariationRandom, VariationRoom:
		return style, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariationStyle, s)
}

// VariationMap renders a labeling with the same layout as TextMap: cells of
// a room carry the room label, every other cell is blank.
func VariationMap(l *Labeling) string {
	g := Grid{rows: l.rows, cols: l.cols}
	return render(g, func(c Cell) byte {
		if label, ok := l.labels[c]; ok {
			return label
		}
		return BlankChar
	})
}

// RandomVariationMap gives every free cell an independent uniformly drawn
// label. Walls get NoVariationChar.
func RandomVariationMap(g Grid, rng *rand.Rand) string {
	return render(g, func(c Cell) byte {
		if g.walls[c.Row][c.Col] {
			return NoVariationChar
		}
		return RoomLabels[rng.Intn(len(RoomLabels))]
	})
}

// BuildVariationLayer produces the variation layer of g for the given style.
// VariationNone yields an empty layer.
func BuildVariationLayer(g Grid, style VariationStyle, rng *rand.Rand) (string, error) {
	switch style {
	case VariationNone:
		return "", nil
	case VariationRandom:
		return RandomVariationMap(g, rng), nil
	case VariationRoom:
		labeling, err := SegmentRooms(g)
		if err != nil {
			return "", err
		}
		return VariationMap(labeling), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariationStyle, string(style))
}
