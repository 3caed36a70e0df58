package rl

import (
	"context"
	"fmt"

	"github.com/dmklee/rl-in-dmlab/types"
)

type AgentConfig struct {
	Episodes    int
	Horizon     int
	Policy      Policy
	Environment Environment
	// Goal of each episode, defaults to NoGoal
	Goal GoalSampler
}

// Agent configured with the corresponding policy and environment
type Agent struct {
	config *AgentConfig
	// collects the traces of the run
	// Only populated if the Run function is invoked
	traces      []*Trace
	policy      Policy
	environment Environment
	goal        GoalSampler
}

func NewAgent(config *AgentConfig) *Agent {
	goal := config.Goal
	if goal == nil {
		goal = NoGoal
	}
	return &Agent{
		config:      config,
		traces:      make([]*Trace, 0, max(config.Episodes, 0)),
		policy:      config.Policy,
		environment: config.Environment,
		goal:        goal,
	}
}

// Run the agent for the specified number of episodes and horizon
func (a *Agent) Run(ctx context.Context) error {
	for i := 0; i < a.config.Episodes; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		trace, err := a.runEpisode(i)
		if err != nil {
			return fmt.Errorf("error running episode %d: %w", i, err)
		}
		a.traces = append(a.traces, trace)
	}
	return nil
}

func (a *Agent) Traces() []*Trace {
	return a.traces
}

// run a single episode from a random start pose and return the resulting trace
func (a *Agent) runEpisode(episode int) (*Trace, error) {
	start, err := a.environment.RandomPose()
	if err != nil {
		return nil, err
	}
	goal, err := a.goal(episode)
	if err != nil {
		return nil, err
	}
	obs, err := a.environment.Reset(start, goal)
	if err != nil {
		return nil, err
	}
	trace := NewTrace(start, goal)

	for i := 0; i < a.config.Horizon; i++ {
		action, ok := a.policy.NextAction(i, obs, types.AllActions)
		if !ok {
			break
		}
		res, err := a.environment.Step(action)
		if err != nil {
			return trace, err
		}
		a.policy.Update(i, obs, action, res.Reward, res.Observations)

		step := Step{Action: action, Reward: res.Reward}
		if pos, ok := res.Observations[types.ObsPosition]; ok && pos.Len() >= 2 {
			step.Position = types.Position{X: pos.Data[0], Y: pos.Data[1]}
		}
		if rot, ok := res.Observations[types.ObsRotation]; ok && rot.Len() >= 2 {
			step.Yaw = rot.Data[1]
		}
		trace.Append(step)
		obs = res.Observations
	}
	return trace, nil
}
