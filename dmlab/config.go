package dmlab

import (
	"fmt"
	"os"

	"github.com/dmklee/rl-in-dmlab/gridmap"
	"github.com/dmklee/rl-in-dmlab/types"
	"gopkg.in/yaml.v3"
)

// Config describes how the simulator is driven. All fields have defaults,
// see DefaultConfig.
type Config struct {
	// LevelScript run by the simulator
	LevelScript string `yaml:"level_script"`
	// FrameSkip is the number of frames each discrete action is repeated for
	FrameSkip int `yaml:"frame_skip"`
	// observation image size
	Height int `yaml:"height"`
	Width  int `yaml:"width"`
	FPS    int `yaml:"fps"`
	// Observations requested from the simulator
	Observations []string `yaml:"observations"`
}

// DefaultConfig mirrors the gridmap level script defaults.
func DefaultConfig() *Config {
	return &Config{
		LevelScript: "gridmap",
		FrameSkip:   5,
		Height:      60,
		Width:       80,
		FPS:         30,
		Observations: []string{
			types.ObsPlayerView,      // player view with inventory visible
			types.ObsPosition,        // player position (x,y,z)
			types.ObsRotation,        // player rotation (pitch,yaw,roll)
			types.ObsCustomView,      // view of level from arbitrary pose
			types.ObsGoalPosition,    // goal position (x,y,z)
			types.ObsTopDownView,     // top down view of level above player
			types.ObsCleanPlayerView, // player view without inventory distractors
			types.ObsMazeLayout,      // entity layer
		},
	}
}

// LoadConfig reads a yaml file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}
	if err := yaml.Unmarshal(bs, config); err != nil {
		return nil, fmt.Errorf("error parsing config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects values the simulator cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.LevelScript == "":
		return fmt.Errorf("config: empty level script")
	case c.FrameSkip < 1:
		return fmt.Errorf("config: frame skip must be positive, got %d", c.FrameSkip)
	case c.Height < 1 || c.Width < 1:
		return fmt.Errorf("config: invalid observation size %dx%d", c.Height, c.Width)
	case c.FPS < 1:
		return fmt.Errorf("config: fps must be positive, got %d", c.FPS)
	}
	return nil
}

// LoadOptions configure the level generated from a grid.
type LoadOptions struct {
	VariationStyle gridmap.VariationStyle
	DecalFrequency float64
	RandomSeed     int
	MapName        string
}

// DefaultLoadOptions gives every room its own look.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		VariationStyle: gridmap.VariationRoom,
		DecalFrequency: 0.1,
		RandomSeed:     1,
		MapName:        "example",
	}
}
