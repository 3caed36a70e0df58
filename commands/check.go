package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dmklee/rl-in-dmlab/gridmap"
	"github.com/dmklee/rl-in-dmlab/headless"
	"github.com/dmklee/rl-in-dmlab/types"
	"github.com/spf13/cobra"
)

// levelScripts lists the *.lua scripts in dir, without extension
func levelScripts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading level scripts: %w", err)
	}
	scripts := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		scripts = append(scripts, strings.TrimSuffix(entry.Name(), ".lua"))
	}
	sort.Strings(scripts)
	return scripts, nil
}

// checkLevelScripts constructs a lab for every script on a small empty room
// and returns the scripts that failed with their errors
func checkLevelScripts(factory types.LabFactory, scripts []string, observations []string) map[string]error {
	room, _ := gridmap.EmptyRoom(5, 5)
	failed := make(map[string]error)
	for _, script := range scripts {
		lab, err := factory(script, observations, map[string]string{
			types.ConfigWidth:       strconv.Itoa(80),
			types.ConfigHeight:      strconv.Itoa(60),
			types.ConfigMapName:     "check_" + script,
			types.ConfigEntityLayer: gridmap.TextMap(room),
		})
		if err == nil {
			err = lab.Reset()
			lab.Close()
		}
		if err != nil {
			failed[script] = err
		}
	}
	return failed
}

func CheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <level-scripts-dir>",
		Short: "Try constructing every level script in a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := environmentConfig()
			if err != nil {
				return err
			}
			scripts, err := levelScripts(args[0])
			if err != nil {
				return err
			}
			engine := headless.NewEngine("")
			defer engine.Close()

			failed := checkLevelScripts(engine.Factory(), scripts, config.Observations)
			for _, script := range scripts {
				if err, ok := failed[script]; ok {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", script, err)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", script)
				}
			}
			if len(failed) > 0 {
				return fmt.Errorf("%d of %d level scripts failed", len(failed), len(scripts))
			}
			return nil
		},
	}
}
