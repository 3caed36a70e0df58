package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/dmklee/rl-in-dmlab/dmlab"
	"github.com/dmklee/rl-in-dmlab/gridmap"
	"github.com/spf13/cobra"
)

var (
	configPath string
	episodes   int
	horizon    int
	saveFile   string
	runs       int
)

func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "rl-in-dmlab",
		Short:         "Grid maps for DeepMind Lab style 3D navigation levels",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCommand.PersistentFlags().StringVar(&configPath, "config", "", "Environment config file (yaml)")
	rootCommand.PersistentFlags().IntVarP(&episodes, "episodes", "e", 100, "Number of episodes to run")
	rootCommand.PersistentFlags().IntVar(&horizon, "horizon", 200, "Horizon of each episode")
	rootCommand.PersistentFlags().StringVarP(&saveFile, "save", "s", "results", "Save the result data in the specified folder")
	rootCommand.PersistentFlags().IntVar(&runs, "runs", 1, "Number of experiment runs")
	// adding the subcommands here
	rootCommand.AddCommand(TextMapCommand())
	rootCommand.AddCommand(RoomsCommand())
	rootCommand.AddCommand(CompileCommand())
	rootCommand.AddCommand(WalkCommand())
	rootCommand.AddCommand(CheckCommand())
	return rootCommand
}

// environmentConfig reads --config on top of the defaults
func environmentConfig() (*dmlab.Config, error) {
	if configPath == "" {
		return dmlab.DefaultConfig(), nil
	}
	return dmlab.LoadConfig(configPath)
}

// readGrid parses a grid file where '*' marks walls
func readGrid(path string) (gridmap.Grid, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return gridmap.Grid{}, fmt.Errorf("error reading grid file: %w", err)
	}
	return gridmap.ParseGrid(string(bs))
}

// interruptContext is cancelled on the first interrupt or when stop is called
func interruptContext() (context.Context, func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt) // channel for interrupts from os

	doneCh := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-sigCh:
		case <-doneCh:
		}
		cancel()
	}()
	return ctx, func() {
		signal.Stop(sigCh)
		close(doneCh)
	}
}
