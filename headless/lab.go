package headless

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/dmklee/rl-in-dmlab/gridmap"
	"github.com/dmklee/rl-in-dmlab/types"
)

const (
	// degrees turned per frame per unit of the look action
	lookDegreesPerUnit = 0.5
	// level units moved per frame at full forward
	moveSpeed = 10.0
	// GoalReward is paid the first time per episode the player enters the goal cell
	GoalReward = 10.0
	// eye height reported in the z component of positions
	eyeHeight = 40.0
)

var errClosed = errors.New("lab is closed")

var knownObservations = map[string]bool{
	types.ObsPlayerView:      true,
	types.ObsPosition:        true,
	types.ObsRotation:        true,
	types.ObsCustomView:      true,
	types.ObsGoalPosition:    true,
	types.ObsTopDownView:     true,
	types.ObsCleanPlayerView: true,
	types.ObsMazeLayout:      true,
}

func knownObservation(name string) bool {
	return knownObservations[name]
}

// Lab runs one level. It implements types.Lab.
type Lab struct {
	level        *level
	observations []string
	width        int
	height       int
	props        map[string]string

	x, y, yaw   float64 // yaw in degrees
	goalX       float64
	goalY       float64
	goalReached bool
	frames      int
	closed      bool
}

var _ types.Lab = &Lab{}

func newLab(lvl *level, observations []string, width, height int) *Lab {
	return &Lab{
		level:        lvl,
		observations: append([]string(nil), observations...),
		width:        width,
		height:       height,
		props:        make(map[string]string),
	}
}

// WriteProperty stores a level property. Spawn and goal properties take
// effect on the next Reset.
func (l *Lab) WriteProperty(key, value string) error {
	if l.closed {
		return errClosed
	}
	if _, err := strconv.ParseFloat(value, 64); err != nil {
		return fmt.Errorf("property %s: %w", key, err)
	}
	l.props[key] = value
	return nil
}

func (l *Lab) prop(key string) (float64, bool) {
	v, ok := l.props[key]
	if !ok {
		return 0, false
	}
	f, _ := strconv.ParseFloat(v, 64)
	return f, true
}

// Reset places the player at the spawn pose property, or at the spawn point
// of the entity layer when none was written.
func (l *Lab) Reset() error {
	if l.closed {
		return errClosed
	}
	l.x, l.y = l.level.center(l.level.spawn)
	l.yaw = 0
	if x, ok := l.prop(types.PropSpawnX); ok {
		l.x = x
	}
	if y, ok := l.prop(types.PropSpawnY); ok {
		l.y = y
	}
	if theta, ok := l.prop(types.PropSpawnTheta); ok {
		l.yaw = normalizeDegrees(theta * 180 / math.Pi)
	}

	l.goalX, l.goalY = math.Inf(-1), math.Inf(-1)
	if l.level.hasGoal {
		l.goalX, l.goalY = l.level.center(l.level.goal)
	}
	if x, ok := l.prop(types.PropGoalX); ok {
		l.goalX = x
	}
	if y, ok := l.prop(types.PropGoalY); ok {
		l.goalY = y
	}
	l.goalReached = false
	l.frames = 0
	return nil
}

// Step applies the action for numSteps frames.
func (l *Lab) Step(action types.ActionVector, numSteps int) (float64, error) {
	if l.closed {
		return 0, errClosed
	}
	if numSteps < 1 {
		return 0, fmt.Errorf("num_steps must be positive, got %d", numSteps)
	}
	reward := 0.0
	for i := 0; i < numSteps; i++ {
		reward += l.frame(action)
	}
	return reward, nil
}

func (l *Lab) frame(action types.ActionVector) float64 {
	l.frames++
	l.yaw = normalizeDegrees(l.yaw + lookDegreesPerUnit*float64(action[0]))

	dist := moveSpeed * float64(sign(action[3]))
	if dist != 0 {
		rad := l.yaw * math.Pi / 180
		nx := l.x + dist*math.Cos(rad)
		ny := l.y + dist*math.Sin(rad)
		// slide along walls: try each axis on its own
		if !l.level.wall(l.level.cellAt(nx, l.y)) {
			l.x = nx
		}
		if !l.level.wall(l.level.cellAt(l.x, ny)) {
			l.y = ny
		}
	}

	if l.goalReached {
		return 0
	}
	if l.level.cellAt(l.x, l.y) == l.level.cellAt(l.goalX, l.goalY) && !l.level.wall(l.level.cellAt(l.goalX, l.goalY)) {
		l.goalReached = true
		return GoalReward
	}
	return 0
}

// Observations returns the requested observations for the current frame.
// Camera views are blank except the top down view, which shows walls and
// the player cell.
func (l *Lab) Observations() (types.Observations, error) {
	if l.closed {
		return nil, errClosed
	}
	obs := make(types.Observations, len(l.observations))
	for _, name := range l.observations {
		switch name {
		case types.ObsPosition:
			obs[name] = types.Vector(l.x, l.y, eyeHeight)
		case types.ObsRotation:
			obs[name] = types.Vector(0, l.yaw, 0)
		case types.ObsGoalPosition:
			obs[name] = types.Vector(l.goalX, l.goalY, eyeHeight)
		case types.ObsMazeLayout:
			layout := make([]float64, len(l.level.entity))
			for i := 0; i < len(l.level.entity); i++ {
				layout[i] = float64(l.level.entity[i])
			}
			obs[name] = types.Vector(layout...)
		case types.ObsTopDownView:
			obs[name] = l.topDown()
		default:
			obs[name] = types.NewTensor(l.height, l.width, 3)
		}
	}
	return obs, nil
}

// topDown scales the level onto the image, walls white, player red
func (l *Lab) topDown() *types.Tensor {
	img := types.NewTensor(l.height, l.width, 3)
	player := l.level.cellAt(l.x, l.y)
	for i := 0; i < l.height; i++ {
		for j := 0; j < l.width; j++ {
			c := gridmap.Cell{Row: i * l.level.rows / l.height, Col: j * l.level.cols / l.width}
			px := (i*l.width + j) * 3
			switch {
			case c == player:
				img.Data[px] = 255
			case l.level.wall(c):
				img.Data[px], img.Data[px+1], img.Data[px+2] = 255, 255, 255
			}
		}
	}
	return img
}

// Frames counts the frames stepped since the last Reset.
func (l *Lab) Frames() int {
	return l.frames
}

// Close is idempotent.
func (l *Lab) Close() error {
	l.closed = true
	return nil
}

func normalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

func sign(v int32) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
