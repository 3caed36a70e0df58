package rl

import "github.com/dmklee/rl-in-dmlab/types"

// Step is a single transition of an episode. Position and Yaw are read
// from the observations after the action was applied.
type Step struct {
	Action   types.Action   `json:"action"`
	Reward   float64        `json:"reward"`
	Position types.Position `json:"position"`
	Yaw      float64        `json:"yaw"`
}

type Trace struct {
	Start types.Pose     `json:"start"`
	Goal  types.Position `json:"goal"`
	Steps []Step         `json:"steps"`
}

func NewTrace(start types.Pose, goal types.Position) *Trace {
	return &Trace{
		Start: start,
		Goal:  goal,
		Steps: make([]Step, 0),
	}
}

func (t *Trace) Append(step Step) {
	t.Steps = append(t.Steps, step)
}

func (t *Trace) Len() int {
	return len(t.Steps)
}

func (t *Trace) Get(i int) (Step, bool) {
	if i < 0 || i >= len(t.Steps) {
		return Step{}, false
	}
	return t.Steps[i], true
}

// TotalReward collected over the episode
func (t *Trace) TotalReward() float64 {
	total := 0.0
	for _, s := range t.Steps {
		total += s.Reward
	}
	return total
}
