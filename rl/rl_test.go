package rl

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmklee/rl-in-dmlab/dmlab"
	"github.com/dmklee/rl-in-dmlab/gridmap"
	"github.com/dmklee/rl-in-dmlab/headless"
	"github.com/dmklee/rl-in-dmlab/types"
)

const twoRooms = `*********
*   *   *
*       *
*   *   *
*********`

func loadedEnvironment(t *testing.T) (*dmlab.Environment, gridmap.Grid) {
	t.Helper()
	g, err := gridmap.ParseGrid(twoRooms)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	env := dmlab.NewEnvironment(nil, headless.NewEngine("").Factory())
	env.Seed(7)
	if err := env.LoadMapFromGrid(g, dmlab.DefaultLoadOptions()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { env.Close() })
	return env, g
}

func TestAgentRunsEpisodes(t *testing.T) {
	env, g := loadedEnvironment(t)
	agent := NewAgent(&AgentConfig{
		Episodes:    3,
		Horizon:     20,
		Policy:      NewRandomPolicy(1),
		Environment: env,
	})
	if err := agent.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	traces := agent.Traces()
	if len(traces) != 3 {
		t.Fatalf("expected 3 traces, got %d", len(traces))
	}
	for i, trace := range traces {
		if trace.Len() != 20 {
			t.Errorf("trace %d: expected 20 steps, got %d", i, trace.Len())
		}
		if trace.Goal != types.OffMap {
			t.Errorf("trace %d: expected the goal off the map, got %v", i, trace.Goal)
		}
		if trace.TotalReward() != 0 {
			t.Errorf("trace %d: unexpected reward %v", i, trace.TotalReward())
		}
		for _, step := range trace.Steps {
			cell, ok := gridmap.CellAt(g, step.Position.X, step.Position.Y)
			if !ok || g.Wall(cell.Row, cell.Col) {
				t.Errorf("trace %d: player at %v is not on a free cell", i, step.Position)
			}
		}
	}
	if _, ok := traces[0].Get(20); ok {
		t.Errorf("expected no step past the horizon")
	}
}

func TestAgentStopsOnCancel(t *testing.T) {
	env, _ := loadedEnvironment(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	agent := NewAgent(&AgentConfig{Episodes: 2, Horizon: 5, Policy: NewRandomPolicy(1), Environment: env})
	if err := agent.Run(ctx); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(agent.Traces()) != 0 {
		t.Errorf("expected no traces")
	}
}

func TestRandomGoalOnFreeCell(t *testing.T) {
	env, g := loadedEnvironment(t)
	agent := NewAgent(&AgentConfig{
		Episodes:    2,
		Horizon:     1,
		Policy:      NewRandomPolicy(3),
		Environment: env,
		Goal:        RandomGoal(env),
	})
	if err := agent.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, trace := range agent.Traces() {
		cell, ok := gridmap.CellAt(g, trace.Goal.X, trace.Goal.Y)
		if !ok || g.Wall(cell.Row, cell.Col) {
			t.Errorf("goal %v is not on a free cell", trace.Goal)
		}
	}
}

func TestRandomPolicyReset(t *testing.T) {
	p := NewRandomPolicy(42)
	first := make([]types.Action, 10)
	for i := range first {
		first[i], _ = p.NextAction(i, nil, types.AllActions)
	}
	p.Reset()
	for i := range first {
		a, ok := p.NextAction(i, nil, types.AllActions)
		if !ok || a != first[i] {
			t.Fatalf("step %d: expected %s after reset, got %s", i, first[i], a)
		}
	}
	if _, ok := p.NextAction(0, nil, nil); ok {
		t.Errorf("expected no action without choices")
	}
}

func TestWeightedPolicy(t *testing.T) {
	p, err := NewWeightedPolicy(map[types.Action]float64{types.Forward: 1}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 20; i++ {
		a, ok := p.NextAction(i, nil, types.AllActions)
		if !ok || a != types.Forward {
			t.Fatalf("expected forward, got %s", a)
		}
	}
	if _, ok := p.NextAction(0, nil, []types.Action{types.LookLeft}); ok {
		t.Errorf("expected no action when every choice has zero weight")
	}
	if _, err := NewWeightedPolicy(map[types.Action]float64{}, 1); err == nil {
		t.Errorf("expected error for empty weights")
	}
	if _, err := NewWeightedPolicy(map[types.Action]float64{types.Forward: -1, types.Backward: 2}, 1); err == nil {
		t.Errorf("expected error for negative weight")
	}
}

func TestCoverageAnalyzer(t *testing.T) {
	g, err := gridmap.ParseGrid(twoRooms)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	at := func(row, col int) types.Position {
		x, y := gridmap.CellCenter(g, gridmap.Cell{Row: row, Col: col})
		return types.Position{X: x, Y: y}
	}
	startX, startY := gridmap.CellCenter(g, gridmap.Cell{Row: 1, Col: 1})
	trace := NewTrace(types.Pose{X: startX, Y: startY}, types.OffMap)
	trace.Append(Step{Action: types.Forward, Position: at(1, 2)})
	trace.Append(Step{Action: types.Forward, Position: at(1, 2)})
	trace.Append(Step{Action: types.Forward, Position: at(3, 7)})

	ds := CoverageAnalyzer(g)(0, "test", []*Trace{trace}).(*CoverageDataSet)
	if ds.Total() != 4 {
		t.Errorf("expected 4 visits, got %d", ds.Total())
	}
	if ds.Visits[1][2] != 2 {
		t.Errorf("expected 2 visits at (1,2), got %d", ds.Visits[1][2])
	}
	free := len(g.FreeCells())
	if got, want := ds.Coverage(), 3/float64(free); got != want {
		t.Errorf("expected coverage %v, got %v", want, got)
	}
	c, r := ds.Dims()
	if c != 9 || r != 5 {
		t.Errorf("unexpected dims %d x %d", c, r)
	}
	// plot rows count from the bottom
	if ds.Z(7, 1) != 1 {
		t.Errorf("expected the visit at (3,7) to be drawn on plot row 1")
	}

	merged := MergeCoverageDataSets([]DataSet{ds, ds})
	if merged.Total() != 8 || merged.Coverage() != ds.Coverage() {
		t.Errorf("unexpected merge result %d, %v", merged.Total(), merged.Coverage())
	}
}

func TestComparisonWritesResults(t *testing.T) {
	env, g := loadedEnvironment(t)
	weighted, err := NewWeightedPolicy(ForwardBiasedWeights(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	save := t.TempDir()
	c := NewComparison(&ComparisonConfig{
		Runs:         1,
		Episodes:     2,
		Horizon:      10,
		SavePath:     save,
		RecordTraces: true,
	})
	c.AddExperiment(NewExperiment("random", NewRandomPolicy(1), env))
	c.AddExperiment(NewExperiment("weighted", weighted, env))
	c.AddAnalysis("coverage", CoverageAnalyzer(g), CoveragePlotComparator(save))
	c.AddAnalysis("reward", RewardAnalyzer, RewardPlotComparator(save))
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range []string{
		"0_random_coverage.png",
		"0_random_coverage.json",
		"0_weighted_coverage.png",
		"0_reward.png",
	} {
		if _, err := os.Stat(filepath.Join(save, name)); err != nil {
			t.Errorf("expected %s to be written: %v", name, err)
		}
	}

	f, err := os.Open(filepath.Join(save, "traces", "random_0.jsonl"))
	if err != nil {
		t.Fatalf("expected recorded traces: %v", err)
	}
	defer f.Close()
	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
		// actions are recorded by name
		if !strings.Contains(scanner.Text(), `"action":"`) {
			t.Errorf("expected named actions in %s", scanner.Text())
		}
		var trace Trace
		if err := json.Unmarshal(scanner.Bytes(), &trace); err != nil || trace.Len() != 10 {
			t.Errorf("could not read back trace (%v)", err)
		}
	}
	if lines != 2 {
		t.Errorf("expected 2 recorded traces, got %d", lines)
	}
}

func TestComparisonConfigValidate(t *testing.T) {
	valid := ComparisonConfig{Runs: 1, Episodes: 1, Horizon: 1}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, config := range []ComparisonConfig{
		{Runs: 0, Episodes: 1, Horizon: 1},
		{Runs: 1, Episodes: -1, Horizon: 1},
		{Runs: 1, Episodes: 1, Horizon: 0},
	} {
		if err := config.Validate(); err == nil {
			t.Errorf("expected an error for %+v", config)
		}
	}

	env, _ := loadedEnvironment(t)
	c := NewComparison(&ComparisonConfig{Runs: 1, Episodes: -1, Horizon: 5})
	c.AddExperiment(NewExperiment("random", NewRandomPolicy(1), env))
	if err := c.Run(context.Background()); err == nil {
		t.Errorf("expected the comparison to refuse negative episodes")
	}
	if agent := NewAgent(&AgentConfig{Episodes: -1}); len(agent.Traces()) != 0 {
		t.Errorf("expected no traces")
	}
}

func TestMergedCoveragePlotComparator(t *testing.T) {
	g, err := gridmap.ParseGrid(twoRooms)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	x, y := gridmap.CellCenter(g, gridmap.Cell{Row: 2, Col: 2})
	trace := NewTrace(types.Pose{X: x, Y: y}, types.OffMap)
	ds := CoverageAnalyzer(g)(0, "walker", []*Trace{trace})

	save := t.TempDir()
	compare := MergedCoveragePlotComparator(save, 3)
	for run := 0; run < 3; run++ {
		if err := compare(run, []string{"walker"}, []DataSet{ds}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err := os.Stat(filepath.Join(save, "merged_walker_coverage.png"))
		if written := err == nil; written != (run == 2) {
			t.Errorf("run %d: merged plot written = %v", run, written)
		}
	}
	bs, err := os.ReadFile(filepath.Join(save, "merged_walker_coverage.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var merged CoverageDataSet
	if err := json.Unmarshal(bs, &merged); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merged.Visits[2][2] != 3 || merged.Total() != 3 {
		t.Errorf("expected 3 visits of (2,2) over the runs, got %d", merged.Visits[2][2])
	}
}
