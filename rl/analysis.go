package rl

import (
	"fmt"
	"os"
	"path"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// RewardPlotComparator plots the reward of each episode per experiment
func RewardPlotComparator(plotPath string) Comparator {
	return func(run int, names []string, ds []DataSet) error {
		if err := os.MkdirAll(plotPath, os.ModePerm); err != nil {
			return err
		}
		p := plot.New()
		p.Title.Text = "Episode reward"
		p.X.Label.Text = "Episode"
		p.Y.Label.Text = "Reward"
		for i, name := range names {
			rewards := ds[i].([]float64)
			points := make(plotter.XYs, len(rewards))
			for j, r := range rewards {
				points[j].X = float64(j)
				points[j].Y = r
			}
			line, err := plotter.NewLine(points)
			if err != nil {
				return err
			}
			line.Color = plotutil.Color(i)
			p.Add(line)
			p.Legend.Add(name, line)
		}
		return p.Save(8*vg.Inch, 8*vg.Inch, path.Join(plotPath, fmt.Sprintf("%d_reward.png", run)))
	}
}

// RewardAnalyzer collects the total reward of every episode
func RewardAnalyzer(_ int, _ string, traces []*Trace) DataSet {
	rewards := make([]float64, len(traces))
	for i, t := range traces {
		rewards[i] = t.TotalReward()
	}
	return rewards
}
