package rl

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/dmklee/rl-in-dmlab/gridmap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// CoverageDataSet counts visits per grid cell. Row 0 is the top row of the
// grid, the heat map draws it at the top.
type CoverageDataSet struct {
	Visits [][]int `json:"visits"`
	Rows   int     `json:"rows"`
	Cols   int     `json:"cols"`
	// free cells in the grid
	Free int `json:"free"`
}

var _ plotter.GridXYZ = &CoverageDataSet{}

func NewCoverageDataSet(g gridmap.Grid) *CoverageDataSet {
	visits := make([][]int, g.Rows())
	for i := range visits {
		visits[i] = make([]int, g.Cols())
	}
	return &CoverageDataSet{
		Visits: visits,
		Rows:   g.Rows(),
		Cols:   g.Cols(),
		Free:   len(g.FreeCells()),
	}
}

func (c *CoverageDataSet) Visit(cell gridmap.Cell) {
	if cell.Row < 0 || cell.Row >= c.Rows || cell.Col < 0 || cell.Col >= c.Cols {
		return
	}
	c.Visits[cell.Row][cell.Col] += 1
}

func (c *CoverageDataSet) Dims() (int, int) {
	return c.Cols, c.Rows
}

func (c *CoverageDataSet) Z(col, row int) float64 {
	return float64(c.Visits[c.Rows-1-row][col])
}

func (c *CoverageDataSet) X(col int) float64 {
	return float64(col)
}

func (c *CoverageDataSet) Y(row int) float64 {
	return float64(row)
}

func (c *CoverageDataSet) Total() int {
	total := 0
	for _, row := range c.Visits {
		for _, count := range row {
			total += count
		}
	}
	return total
}

// Coverage is the fraction of free cells visited at least once
func (c *CoverageDataSet) Coverage() float64 {
	if c.Free == 0 {
		return 0
	}
	visited := 0
	for _, row := range c.Visits {
		for _, count := range row {
			if count > 0 {
				visited += 1
			}
		}
	}
	return float64(visited) / float64(c.Free)
}

// CoverageAnalyzer counts the start cell and the cell after every step of
// each trace
func CoverageAnalyzer(g gridmap.Grid) Analyzer {
	return func(_ int, _ string, traces []*Trace) DataSet {
		dataSet := NewCoverageDataSet(g)
		for _, trace := range traces {
			if cell, ok := gridmap.CellAt(g, trace.Start.X, trace.Start.Y); ok {
				dataSet.Visit(cell)
			}
			for _, step := range trace.Steps {
				if cell, ok := gridmap.CellAt(g, step.Position.X, step.Position.Y); ok {
					dataSet.Visit(cell)
				}
			}
		}
		return dataSet
	}
}

// MergeCoverageDataSets sums the visit counts of data sets over the same grid
func MergeCoverageDataSets(dataSets []DataSet) *CoverageDataSet {
	merged := &CoverageDataSet{}
	for _, d := range dataSets {
		c := d.(*CoverageDataSet)
		if merged.Visits == nil {
			merged.Rows, merged.Cols, merged.Free = c.Rows, c.Cols, c.Free
			merged.Visits = make([][]int, c.Rows)
			for i := range merged.Visits {
				merged.Visits[i] = make([]int, c.Cols)
			}
		}
		for i, row := range c.Visits {
			for j, count := range row {
				merged.Visits[i][j] += count
			}
		}
	}
	return merged
}

// saveCoverage writes <prefix>_<name>_coverage.json and .png into plotPath
func saveCoverage(plotPath, prefix, name string, dataSet *CoverageDataSet) error {
	if err := os.MkdirAll(plotPath, os.ModePerm); err != nil {
		return err
	}
	base := path.Join(plotPath, fmt.Sprintf("%s_%s_coverage", prefix, name))
	bs, err := json.Marshal(dataSet)
	if err != nil {
		return err
	}
	if err := os.WriteFile(base+".json", bs, 0644); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = name
	h := plotter.NewHeatMap(dataSet, palette.Heat(12, 1))
	if h.Max == h.Min {
		h.Max = h.Min + 1
	}
	p.Add(h)
	return p.Save(4*vg.Inch, 4*vg.Inch, base+".png")
}

// CoveragePlotComparator saves a heat map and the raw counts of each
// experiment into plotPath
func CoveragePlotComparator(plotPath string) Comparator {
	return func(run int, names []string, ds []DataSet) error {
		for i, name := range names {
			dataSet := ds[i].(*CoverageDataSet)
			fmt.Printf("Run %d, %s: visited %.1f%% of free cells\n", run, name, dataSet.Coverage()*100)
			if err := saveCoverage(plotPath, strconv.Itoa(run), name, dataSet); err != nil {
				return err
			}
		}
		return nil
	}
}

// MergedCoveragePlotComparator collects the coverage of every run and, after
// the last of runs, saves the summed coverage of each experiment as
// merged_<name>_coverage.
func MergedCoveragePlotComparator(plotPath string, runs int) Comparator {
	collected := make(map[string][]DataSet)
	return func(run int, names []string, ds []DataSet) error {
		for i, name := range names {
			collected[name] = append(collected[name], ds[i])
		}
		if run != runs-1 {
			return nil
		}
		for _, name := range names {
			merged := MergeCoverageDataSets(collected[name])
			fmt.Printf("All %d runs, %s: visited %.1f%% of free cells\n", runs, name, merged.Coverage()*100)
			if err := saveCoverage(plotPath, "merged", name, merged); err != nil {
				return err
			}
		}
		return nil
	}
}
