package commands

import (
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/dmklee/rl-in-dmlab/dmlab"
	"github.com/dmklee/rl-in-dmlab/gridmap"
	"github.com/dmklee/rl-in-dmlab/headless"
	"github.com/dmklee/rl-in-dmlab/rl"
	"github.com/dmklee/rl-in-dmlab/types"
	"github.com/spf13/cobra"
)

type walkOptions struct {
	policies   []string
	weights    map[string]string
	style      string
	randomGoal bool
	seed       uint64
	record     bool
}

// parseWeights reads action weights keyed by action name, such as
// Forward=0.5. No weights gives rl.ForwardBiasedWeights.
func parseWeights(raw map[string]string) (map[types.Action]float64, error) {
	if len(raw) == 0 {
		return rl.ForwardBiasedWeights(), nil
	}
	weights := make(map[types.Action]float64, len(raw))
	for name, value := range raw {
		action, err := types.ParseAction(name)
		if err != nil {
			return nil, err
		}
		w, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("error parsing weight of %s: %w", name, err)
		}
		weights[action] = w
	}
	return weights, nil
}

// Walk runs each policy on its own headless environment over grid g and
// saves coverage heat maps and reward plots into the save folder
func Walk(g gridmap.Grid, config *dmlab.Config, opts walkOptions) error {
	comparisonConfig := &rl.ComparisonConfig{
		Runs:         runs,
		Episodes:     episodes,
		Horizon:      horizon,
		SavePath:     saveFile,
		RecordTraces: opts.record,
	}
	if err := comparisonConfig.Validate(); err != nil {
		return err
	}
	style, err := gridmap.ParseVariationStyle(opts.style)
	if err != nil {
		return err
	}
	loadOpts := dmlab.DefaultLoadOptions()
	loadOpts.VariationStyle = style

	c := rl.NewComparison(comparisonConfig)
	engine := headless.NewEngine("")
	defer engine.Close()
	var levelGrid gridmap.Grid
	for _, name := range opts.policies {
		var policy rl.Policy
		switch name {
		case "random":
			policy = rl.NewRandomPolicy(opts.seed)
		case "weighted":
			weights, err := parseWeights(opts.weights)
			if err != nil {
				return err
			}
			weighted, err := rl.NewWeightedPolicy(weights, opts.seed)
			if err != nil {
				return err
			}
			policy = weighted
		default:
			return fmt.Errorf("unknown policy %q, expected random or weighted", name)
		}

		env := dmlab.NewEnvironment(config, engine.Factory())
		defer env.Close()
		if opts.seed != 0 {
			env.Seed(opts.seed)
		}
		if err := env.LoadMapFromGrid(g, loadOpts); err != nil {
			return err
		}
		levelGrid, _ = env.Grid()
		e := rl.NewExperiment(name, policy, env)
		if opts.randomGoal {
			e.WithGoal(rl.RandomGoal(env))
		}
		c.AddExperiment(e)
	}
	if len(c.Experiments) == 0 {
		return fmt.Errorf("no policies to walk")
	}

	// coverage is counted on the grid the levels were built from
	coverageDir := path.Join(saveFile, "coverage")
	c.AddAnalysis("coverage", rl.CoverageAnalyzer(levelGrid), rl.CoveragePlotComparator(coverageDir))
	if runs > 1 {
		c.AddAnalysis("merged-coverage", rl.CoverageAnalyzer(levelGrid), rl.MergedCoveragePlotComparator(coverageDir, runs))
	}
	c.AddAnalysis("reward", rl.RewardAnalyzer, rl.RewardPlotComparator(path.Join(saveFile, "reward")))

	ctx, stop := interruptContext()
	defer stop()
	return c.Run(ctx)
}

func WalkCommand() *cobra.Command {
	opts := walkOptions{}
	var cpuprofile string
	var memprofile string

	cmd := &cobra.Command{
		Use:   "walk <grid-file>",
		Short: "Walk policies through a grid level and plot where they go",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readGrid(args[0])
			if err != nil {
				return err
			}
			config, err := environmentConfig()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(saveFile, os.ModePerm); err != nil {
				return err
			}
			stopProfiling, err := startProfiling(cpuprofile, memprofile)
			if err != nil {
				return err
			}
			defer stopProfiling()
			return Walk(g, config, opts)
		},
	}
	cmd.Flags().StringSliceVar(&opts.policies, "policies", []string{"random", "weighted"}, "Policies to compare: random, weighted")
	cmd.Flags().StringToStringVar(&opts.weights, "weights", nil, "Action weights of the weighted policy, e.g. Forward=0.5,LookLeft=0.25")
	cmd.Flags().StringVar(&opts.style, "style", string(gridmap.VariationRoom), "Variation style: none, random or room")
	cmd.Flags().BoolVar(&opts.randomGoal, "random-goal", false, "Place the goal on a random free cell every episode")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Seed for start poses and policies, 0 seeds from the clock")
	cmd.Flags().BoolVar(&opts.record, "record", false, "Record the traces as jsonl in the save folder")
	cmd.Flags().StringVar(&cpuprofile, "cpuprofile", "", "Write a CPU profile to this file in the save folder")
	cmd.Flags().StringVar(&memprofile, "memprofile", "", "Write a memory profile to this file in the save folder")
	return cmd
}
