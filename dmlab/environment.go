// Package dmlab exposes a simulator level built from an occupancy grid as a
// reset/step environment with four discrete actions.
package dmlab

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/dmklee/rl-in-dmlab/gridmap"
	"github.com/dmklee/rl-in-dmlab/types"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrNotLoaded is returned when the environment is used before a map is loaded.
	ErrNotLoaded = errors.New("no map has been loaded yet")
	// ErrNoGrid is returned by grid based operations on a map loaded from text.
	ErrNoGrid = errors.New("loaded map has no occupancy grid")
)

// settleFrames of no-op run after every (re)spawn, custom respawning errors
// out without them
const settleFrames = 10

// StepResult is what a single Step returns. Episodes never end on their own,
// so Done is always false and Info always empty.
type StepResult struct {
	Observations types.Observations
	Reward       float64
	Done         bool
	Info         map[string]interface{}
}

// Environment drives one simulator instance. Maps are loaded with one of the
// Load methods, after which Reset and Step can be used.
type Environment struct {
	config  *Config
	factory types.LabFactory

	lab     types.Lab
	grid    gridmap.Grid
	hasGrid bool

	src rand.Source
	rng *rand.Rand
}

// NewEnvironment creates an environment that builds its simulator with factory.
// A nil config uses DefaultConfig.
func NewEnvironment(config *Config, factory types.LabFactory) *Environment {
	if config == nil {
		config = DefaultConfig()
	}
	src := rand.NewSource(uint64(time.Now().UnixNano()))
	return &Environment{
		config:  config,
		factory: factory,
		src:     src,
		rng:     rand.New(src),
	}
}

// Seed fixes the random source used for poses and random variation layers.
func (e *Environment) Seed(seed uint64) {
	e.src = rand.NewSource(seed)
	e.rng = rand.New(e.src)
}

// Loaded reports whether a map is loaded.
func (e *Environment) Loaded() bool {
	return e.lab != nil
}

// Grid returns the occupancy grid of the loaded map, when it has one.
func (e *Environment) Grid() (gridmap.Grid, bool) {
	return e.grid, e.hasGrid
}

func (e *Environment) baseConfig() map[string]string {
	return map[string]string{
		types.ConfigFPS:    strconv.Itoa(e.config.FPS),
		types.ConfigWidth:  strconv.Itoa(e.config.Width),
		types.ConfigHeight: strconv.Itoa(e.config.Height),
	}
}

// LoadMapFromGrid builds a level from grid and loads it. The grid border must
// be all walls, which gridmap.NewGrid already guarantees.
func (e *Environment) LoadMapFromGrid(grid gridmap.Grid, opts LoadOptions) error {
	style, err := gridmap.ParseVariationStyle(string(opts.VariationStyle))
	if err != nil {
		return err
	}
	variations, err := gridmap.BuildVariationLayer(grid, style, e.rng)
	if err != nil {
		return err
	}

	configs := e.baseConfig()
	configs[types.ConfigEntityLayer] = gridmap.TextMap(grid)
	configs[types.ConfigVariationsLayer] = variations
	configs[types.ConfigRandomSeed] = strconv.Itoa(opts.RandomSeed)
	configs[types.ConfigDecalFrequency] = formatFloat(opts.DecalFrequency)
	configs[types.ConfigMapName] = opts.MapName

	if err := e.load(configs); err != nil {
		return err
	}
	e.grid = grid
	e.hasGrid = true
	return nil
}

// LoadMapFromText loads a level from prebuilt entity and variation layers.
// The resulting map has no occupancy grid.
func (e *Environment) LoadMapFromText(mapName, entityLayer, variationsLayer string, decalFrequency float64, randomSeed int) error {
	configs := e.baseConfig()
	configs[types.ConfigEntityLayer] = entityLayer
	configs[types.ConfigVariationsLayer] = variationsLayer
	configs[types.ConfigDecalFrequency] = formatFloat(decalFrequency)
	configs[types.ConfigRandomSeed] = strconv.Itoa(randomSeed)
	configs[types.ConfigMapName] = mapName

	if err := e.load(configs); err != nil {
		return err
	}
	e.hasGrid = false
	return nil
}

// LoadCompiledMap loads a level compiled earlier under mapName. grid must be
// the grid the level was compiled from, it backs RandomPose.
func (e *Environment) LoadCompiledMap(grid gridmap.Grid, mapName string) error {
	configs := e.baseConfig()
	configs[types.ConfigMapName] = mapName

	if err := e.load(configs); err != nil {
		return err
	}
	e.grid = grid
	e.hasGrid = true
	return nil
}

// load replaces the current level. The previous grid is forgotten even when
// the new level fails to load.
func (e *Environment) load(configs map[string]string) error {
	e.grid = gridmap.Grid{}
	e.hasGrid = false
	if e.lab != nil {
		if err := e.lab.Close(); err != nil {
			return fmt.Errorf("error closing previous level: %w", err)
		}
		e.lab = nil
	}
	lab, err := e.factory(e.config.LevelScript, e.config.Observations, configs)
	if err != nil {
		return fmt.Errorf("error creating level %q: %w", configs[types.ConfigMapName], err)
	}
	if err := lab.Reset(); err != nil {
		lab.Close()
		return fmt.Errorf("error resetting level: %w", err)
	}
	if _, err := lab.Step(types.NoopVector, settleFrames); err != nil {
		lab.Close()
		return fmt.Errorf("error settling level: %w", err)
	}
	e.lab = lab
	return nil
}

// Reset respawns the player at start and moves the goal to goal, then
// returns the first observations. types.OffMap hides the goal.
func (e *Environment) Reset(start types.Pose, goal types.Position) (types.Observations, error) {
	if e.lab == nil {
		return nil, ErrNotLoaded
	}
	props := [][2]string{
		{types.PropSpawnX, formatFloat(start.X)},
		{types.PropSpawnY, formatFloat(start.Y)},
		{types.PropSpawnTheta, formatFloat(start.Theta)},
		{types.PropGoalX, formatFloat(goal.X)},
		{types.PropGoalY, formatFloat(goal.Y)},
	}
	if err := e.writeProperties(props); err != nil {
		return nil, err
	}
	if err := e.lab.Reset(); err != nil {
		return nil, fmt.Errorf("error resetting level: %w", err)
	}
	if _, err := e.lab.Step(types.NoopVector, settleFrames); err != nil {
		return nil, fmt.Errorf("error settling level: %w", err)
	}
	return e.observations()
}

// Step repeats action for the configured number of frames.
func (e *Environment) Step(action types.Action) (*StepResult, error) {
	if e.lab == nil {
		return nil, ErrNotLoaded
	}
	vector, err := action.Vector()
	if err != nil {
		return nil, err
	}
	labReward, err := e.lab.Step(vector, e.config.FrameSkip)
	if err != nil {
		return nil, fmt.Errorf("error stepping level: %w", err)
	}
	obs, err := e.observations()
	if err != nil {
		return nil, err
	}
	return &StepResult{
		Observations: obs,
		Reward:       e.rewardFor(labReward),
		Done:         false,
		Info:         map[string]interface{}{},
	}, nil
}

// StepIndex is Step for a discrete action index.
func (e *Environment) StepIndex(i int) (*StepResult, error) {
	action, err := types.ActionFromIndex(i)
	if err != nil {
		return nil, err
	}
	return e.Step(action)
}

// rewardFor shapes the reward collected by the level (goal tokens) into the
// environment reward. Currently the identity.
func (e *Environment) rewardFor(labReward float64) float64 {
	return labReward
}

// RandomPose picks the centre of a uniformly drawn free cell with a heading
// uniform in [0, 2π).
func (e *Environment) RandomPose() (types.Pose, error) {
	if e.lab == nil {
		return types.Pose{}, ErrNotLoaded
	}
	if !e.hasGrid {
		return types.Pose{}, ErrNoGrid
	}
	free := e.grid.FreeCells()
	if len(free) == 0 {
		return types.Pose{}, fmt.Errorf("%w: no free cell to spawn in", gridmap.ErrInvalidGrid)
	}
	cell := free[e.rng.Intn(len(free))]
	x, y := gridmap.CellCenter(e.grid, cell)
	heading := distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: e.src}
	return types.Pose{X: x, Y: y, Theta: heading.Rand()}, nil
}

// Close releases the simulator. The environment can be loaded again after.
func (e *Environment) Close() error {
	if e.lab == nil {
		return nil
	}
	err := e.lab.Close()
	e.lab = nil
	e.hasGrid = false
	return err
}

func (e *Environment) observations() (types.Observations, error) {
	obs, err := e.lab.Observations()
	if err != nil {
		return nil, fmt.Errorf("error reading observations: %w", err)
	}
	return obs, nil
}

func (e *Environment) writeProperties(props [][2]string) error {
	for _, p := range props {
		if err := e.lab.WriteProperty(p[0], p[1]); err != nil {
			return fmt.Errorf("error writing property %s: %w", p[0], err)
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
