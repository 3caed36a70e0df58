package commands

import (
	"fmt"

	"github.com/dmklee/rl-in-dmlab/gridmap"
	"github.com/dmklee/rl-in-dmlab/util"
	"github.com/spf13/cobra"
)

// roomSummary lists every room with its size and first cell, followed by
// the doorway cells
func roomSummary(g gridmap.Grid) ([]string, error) {
	labels, err := gridmap.SegmentRooms(g)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(labels.Rooms)+2)
	lines = append(lines, fmt.Sprintf("%d rooms in a %dx%d grid", len(labels.Rooms), g.Rows(), g.Cols()))
	for _, room := range labels.Rooms {
		lines = append(lines, fmt.Sprintf("%c: %d cells from %s", room.Label, len(room.Cells), room.Cells[0]))
	}
	doorways := make([]string, 0)
	for _, c := range g.FreeCells() {
		if gridmap.IsDoorway(g, c) {
			doorways = append(doorways, c.String())
		}
	}
	lines = append(lines, fmt.Sprintf("doorways: %v", doorways))
	return lines, nil
}

func RoomsCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "rooms <grid-file>",
		Short: "Summarise the rooms of a grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readGrid(args[0])
			if err != nil {
				return err
			}
			lines, err := roomSummary(g)
			if err != nil {
				return err
			}
			for _, line := range lines {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			if output != "" {
				return util.WriteToFile(output, lines...)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Also write the summary to this file")
	return cmd
}
