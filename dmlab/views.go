package dmlab

import (
	"fmt"

	"github.com/dmklee/rl-in-dmlab/types"
)

func (e *Environment) observation(name string) (*types.Tensor, error) {
	if e.lab == nil {
		return nil, ErrNotLoaded
	}
	obs, err := e.observations()
	if err != nil {
		return nil, err
	}
	t, ok := obs[name]
	if !ok {
		return nil, fmt.Errorf("observation %s not available, add it to the config observations", name)
	}
	return t, nil
}

func (e *Environment) planar(name string) (types.Position, error) {
	t, err := e.observation(name)
	if err != nil {
		return types.Position{}, err
	}
	if t.Len() < 2 {
		return types.Position{}, fmt.Errorf("observation %s has %d values, expected at least 2", name, t.Len())
	}
	return types.Position{X: t.Data[0], Y: t.Data[1]}, nil
}

// PlayerPosition is the (x, y) position of the player in level units.
func (e *Environment) PlayerPosition() (types.Position, error) {
	return e.planar(types.ObsPosition)
}

// PlayerRotation is the yaw of the player in degrees.
func (e *Environment) PlayerRotation() (float64, error) {
	t, err := e.observation(types.ObsRotation)
	if err != nil {
		return 0, err
	}
	if t.Len() < 2 {
		return 0, fmt.Errorf("observation %s has %d values, expected at least 2", types.ObsRotation, t.Len())
	}
	return t.Data[1], nil
}

// GoalPosition is the (x, y) position of the goal in level units.
func (e *Environment) GoalPosition() (types.Position, error) {
	return e.planar(types.ObsGoalPosition)
}

// CustomView renders the level from position (x, y, z) with orientation
// (roll, pitch, yaw).
func (e *Environment) CustomView(position, orientation [3]float64) (*types.Tensor, error) {
	if e.lab == nil {
		return nil, ErrNotLoaded
	}
	props := [][2]string{
		{types.PropViewX, formatFloat(position[0])},
		{types.PropViewY, formatFloat(position[1])},
		{types.PropViewZ, formatFloat(position[2])},
		{types.PropViewRoll, formatFloat(orientation[0])},
		{types.PropViewPitch, formatFloat(orientation[1])},
		{types.PropViewYaw, formatFloat(orientation[2])},
	}
	if err := e.writeProperties(props); err != nil {
		return nil, err
	}
	return e.observation(types.ObsCustomView)
}

// PlayerView is the first person image, with or without the inventory
// distractors drawn on top.
func (e *Environment) PlayerView(withDistractors bool) (*types.Tensor, error) {
	if withDistractors {
		return e.observation(types.ObsPlayerView)
	}
	return e.observation(types.ObsCleanPlayerView)
}

// TopDownView renders the level from height units above the player.
func (e *Environment) TopDownView(height float64) (*types.Tensor, error) {
	if e.lab == nil {
		return nil, ErrNotLoaded
	}
	if err := e.writeProperties([][2]string{{types.PropTopDownHeight, formatFloat(height)}}); err != nil {
		return nil, err
	}
	return e.observation(types.ObsTopDownView)
}
