package rl

import (
	"github.com/dmklee/rl-in-dmlab/dmlab"
	"github.com/dmklee/rl-in-dmlab/types"
)

// Environment an agent drives through episodes
type Environment interface {
	// Reset places the player at start and the goal at goal
	Reset(start types.Pose, goal types.Position) (types.Observations, error)
	// Step applies the action for the configured frame skip
	Step(types.Action) (*dmlab.StepResult, error)
	// RandomPose samples a pose on a free cell of the loaded grid
	RandomPose() (types.Pose, error)
}

var _ Environment = &dmlab.Environment{}

// GoalSampler picks the goal position of an episode
type GoalSampler func(episode int) (types.Position, error)

// NoGoal keeps the goal off the map
func NoGoal(_ int) (types.Position, error) {
	return types.OffMap, nil
}

// RandomGoal places the goal on a random free cell for every episode
func RandomGoal(env Environment) GoalSampler {
	return func(_ int) (types.Position, error) {
		pose, err := env.RandomPose()
		if err != nil {
			return types.Position{}, err
		}
		return types.Position{X: pose.X, Y: pose.Y}, nil
	}
}
