package gridmap

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/exp/rand"
)

func TestParseVariationStyle(t *testing.T) {
	for _, name := range []string{"none", "random", "room"} {
		style, err := ParseVariationStyle(name)
		if err != nil || string(style) != name {
			t.Errorf("expected style %q, got %q (%v)", name, style, err)
		}
	}
	if _, err := ParseVariationStyle("stripes"); !errors.Is(err, ErrUnknownVariationStyle) {
		t.Errorf("expected ErrUnknownVariationStyle, got %v", err)
	}
}

func TestRandomVariationMap(t *testing.T) {
	g := mustParse(t, "******\n*  * *\n*    *\n******")
	layer := RandomVariationMap(g, rand.New(rand.NewSource(1)))
	lines := strings.Split(layer, "\n")
	if len(lines) != g.Rows() {
		t.Fatalf("expected %d lines, got %d", g.Rows(), len(lines))
	}
	for i, line := range lines {
		if len(line) != g.Cols() {
			t.Fatalf("line %d: expected length %d, got %d", i, g.Cols(), len(line))
		}
		for j := 0; j < len(line); j++ {
			ch := line[j]
			if g.Wall(i, j) && ch != NoVariationChar {
				t.Errorf("wall (%d, %d) got %q", i, j, ch)
			}
			if !g.Wall(i, j) && !strings.ContainsRune(RoomLabels, rune(ch)) {
				t.Errorf("free cell (%d, %d) got %q", i, j, ch)
			}
		}
	}
}

func TestBuildVariationLayer(t *testing.T) {
	g := mustParse(t, "*********\n*   *   *\n*       *\n*   *   *\n*********")
	rng := rand.New(rand.NewSource(1))

	none, err := BuildVariationLayer(g, VariationNone, rng)
	if err != nil || none != "" {
		t.Errorf("expected empty layer, got %q (%v)", none, err)
	}
	room, err := BuildVariationLayer(g, VariationRoom, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(room, "A") != 9 || strings.Count(room, "B") != 9 {
		t.Errorf("unexpected room layer %q", room)
	}
	if _, err := BuildVariationLayer(g, VariationStyle("checker"), rng); !errors.Is(err, ErrUnknownVariationStyle) {
		t.Errorf("expected ErrUnknownVariationStyle, got %v", err)
	}
}

// TestLayersShareLayout verifies that entity and variation layers always line
// up row for row.
func TestLayersShareLayout(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for n := 0; n < 30; n++ {
		g := randomGrid(t, rng, 3+rng.Intn(10), 3+rng.Intn(10))
		entity := strings.Split(TextMap(g), "\n")
		for _, style := range []VariationStyle{VariationRandom, VariationRoom} {
			layer, err := BuildVariationLayer(g, style, rng)
			if errors.Is(err, ErrTooManyRooms) {
				continue
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			variation := strings.Split(layer, "\n")
			if len(variation) != len(entity) {
				t.Fatalf("%s: %d variation lines for %d entity lines", style, len(variation), len(entity))
			}
			for i := range entity {
				if len(variation[i]) != len(entity[i]) {
					t.Errorf("%s: line %d has length %d, expected %d", style, i, len(variation[i]), len(entity[i]))
				}
			}
		}
	}
}
