package types

import "fmt"

// Pose of the player in level units, heading in radians.
type Pose struct {
	X     float64
	Y     float64
	Theta float64
}

func (p Pose) String() string {
	return fmt.Sprintf("(%.1f, %.1f, %.3f)", p.X, p.Y, p.Theta)
}

// Position in the level plane.
type Position struct {
	X float64
	Y float64
}

// OffMap is the default goal position, outside any generated level.
var OffMap = Position{0, 0}
