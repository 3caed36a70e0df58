package rl

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/dmklee/rl-in-dmlab/util"
)

// Experiment pairs a policy with the environment it runs in
type Experiment struct {
	Name        string
	policy      Policy
	environment Environment
	goal        GoalSampler
}

func NewExperiment(name string, policy Policy, environment Environment) *Experiment {
	return &Experiment{
		Name:        name,
		policy:      policy,
		environment: environment,
	}
}

// WithGoal sets the goal sampler used by every episode of the experiment
func (e *Experiment) WithGoal(goal GoalSampler) *Experiment {
	e.goal = goal
	return e
}

// Run the experiment for the configured episodes, returning one trace per episode
func (e *Experiment) Run(ctx context.Context, config *ComparisonConfig, run int) ([]*Trace, error) {
	fmt.Printf("Running Experiment: %s, run %d\n", e.Name, run)
	e.policy.Reset()
	agent := NewAgent(&AgentConfig{
		Episodes:    config.Episodes,
		Horizon:     config.Horizon,
		Policy:      e.policy,
		Environment: e.environment,
		Goal:        e.goal,
	})
	if err := agent.Run(ctx); err != nil {
		return nil, fmt.Errorf("error running experiment %s: %w", e.Name, err)
	}
	traces := agent.Traces()
	if config.RecordTraces {
		if err := e.recordTraces(config.SavePath, run, traces); err != nil {
			return nil, err
		}
	}
	return traces, nil
}

func (e *Experiment) recordTraces(savePath string, run int, traces []*Trace) error {
	tracesFolder := path.Join(savePath, "traces")
	if err := os.MkdirAll(tracesFolder, os.ModePerm); err != nil {
		return err
	}
	lines := make([]string, len(traces))
	for i, trace := range traces {
		bs, err := json.Marshal(trace)
		if err != nil {
			return err
		}
		lines[i] = string(bs)
	}
	return util.AppendToFile(path.Join(tracesFolder, e.Name+"_"+strconv.Itoa(run)+".jsonl"), lines...)
}

type DataSet interface{}

// Analyzer reduces the traces of one experiment run to a dataset
type Analyzer func(run int, name string, traces []*Trace) DataSet

// Comparator receives the datasets of all experiments for a run
type Comparator func(run int, names []string, datasets []DataSet) error

type ComparisonConfig struct {
	Runs         int
	Episodes     int
	Horizon      int
	SavePath     string
	RecordTraces bool
}

// Validate checks that the comparison runs at least one episode of at least
// one step
func (c *ComparisonConfig) Validate() error {
	if c.Runs < 1 {
		return fmt.Errorf("runs must be positive, got %d", c.Runs)
	}
	if c.Episodes < 1 {
		return fmt.Errorf("episodes must be positive, got %d", c.Episodes)
	}
	if c.Horizon < 1 {
		return fmt.Errorf("horizon must be positive, got %d", c.Horizon)
	}
	return nil
}

type analysis struct {
	analyzer   Analyzer
	comparator Comparator
}

// Comparison runs a set of experiments side by side and compares them
type Comparison struct {
	config      *ComparisonConfig
	Experiments []*Experiment
	analyses    map[string]analysis
}

func NewComparison(config *ComparisonConfig) *Comparison {
	return &Comparison{
		config:      config,
		Experiments: make([]*Experiment, 0),
		analyses:    make(map[string]analysis),
	}
}

func (c *Comparison) AddExperiment(e *Experiment) {
	c.Experiments = append(c.Experiments, e)
}

func (c *Comparison) AddAnalysis(name string, analyzer Analyzer, comparator Comparator) {
	c.analyses[name] = analysis{analyzer: analyzer, comparator: comparator}
}

func (c *Comparison) Run(ctx context.Context) error {
	if err := c.config.Validate(); err != nil {
		return err
	}
	if c.config.SavePath != "" {
		if err := os.MkdirAll(c.config.SavePath, os.ModePerm); err != nil {
			return err
		}
	}
	for run := 0; run < c.config.Runs; run++ {
		datasets := make(map[string][]DataSet, len(c.analyses))
		names := make([]string, len(c.Experiments))
		for i, e := range c.Experiments {
			traces, err := e.Run(ctx, c.config, run)
			if err != nil {
				return err
			}
			names[i] = e.Name
			for aName, a := range c.analyses {
				datasets[aName] = append(datasets[aName], a.analyzer(run, e.Name, traces))
			}
		}
		for aName, a := range c.analyses {
			if err := a.comparator(run, names, datasets[aName]); err != nil {
				return fmt.Errorf("error comparing %s: %w", aName, err)
			}
		}
	}
	return nil
}
