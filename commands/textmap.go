package commands

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dmklee/rl-in-dmlab/gridmap"
	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"
	"golang.org/x/term"
)

var (
	colorWall   = color.Style{color.FgGray}
	colorMarker = color.Style{color.FgWhite, color.OpBold}
	roomColors  = []color.Style{
		{color.FgRed},
		{color.FgGreen},
		{color.FgYellow},
		{color.FgBlue},
		{color.FgMagenta},
		{color.FgCyan},
		{color.FgLightRed},
		{color.FgLightGreen},
		{color.FgLightYellow},
		{color.FgLightBlue},
		{color.FgLightMagenta},
		{color.FgLightCyan},
	}
)

// renderLayer writes a text layer laid out like g. With labels, every cell
// of a room is coloured by its room.
func renderLayer(w io.Writer, g gridmap.Grid, layer string, labels *gridmap.Labeling) {
	if labels == nil {
		fmt.Fprintln(w, layer)
		return
	}
	for i, line := range strings.Split(layer, "\n") {
		var b strings.Builder
		for j := 0; j < len(line); j++ {
			ch := string(line[j])
			cell := gridmap.Cell{Row: i, Col: j}
			switch {
			case !g.InBounds(cell):
				b.WriteString(ch)
			case g.Wall(i, j):
				b.WriteString(colorWall.Sprint(ch))
			case line[j] == gridmap.SpawnChar || line[j] == gridmap.GoalChar:
				b.WriteString(colorMarker.Sprint(ch))
			default:
				if label, ok := labels.Label(cell); ok {
					b.WriteString(roomColors[int(label-'A')%len(roomColors)].Sprint(ch))
				} else {
					b.WriteString(ch)
				}
			}
		}
		fmt.Fprintln(w, b.String())
	}
}

func TextMapCommand() *cobra.Command {
	var style string
	var noColor bool
	var seed uint64

	cmd := &cobra.Command{
		Use:   "textmap <grid-file>",
		Short: "Print the entity and variation layers of a grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readGrid(args[0])
			if err != nil {
				return err
			}
			variationStyle, err := gridmap.ParseVariationStyle(style)
			if err != nil {
				return err
			}
			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}
			variations, err := gridmap.BuildVariationLayer(g, variationStyle, rand.New(rand.NewSource(seed)))
			if err != nil {
				return err
			}

			var labels *gridmap.Labeling
			if !noColor && term.IsTerminal(int(os.Stdout.Fd())) {
				if labels, err = gridmap.SegmentRooms(g); err != nil {
					log.Printf("not colouring rooms: %s", err)
					labels = nil
				}
			}

			out := cmd.OutOrStdout()
			renderLayer(out, g, gridmap.TextMap(g), labels)
			if variations != "" {
				fmt.Fprintln(out)
				renderLayer(out, g, variations, labels)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&style, "style", string(gridmap.VariationRoom), "Variation style: none, random or room")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Do not colour rooms")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for the random variation style, 0 seeds from the clock")
	return cmd
}
