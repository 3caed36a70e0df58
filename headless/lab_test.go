package headless

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmklee/rl-in-dmlab/types"
	"github.com/klauspost/compress/zip"
)

const room5 = "*****\n*P  *\n*  A*\n*   *\n*****"

func newTestLab(t *testing.T, e *Engine) *Lab {
	t.Helper()
	lab, err := e.NewLab("gridmap", []string{types.ObsPosition, types.ObsRotation, types.ObsGoalPosition, types.ObsTopDownView}, map[string]string{
		types.ConfigWidth:       "8",
		types.ConfigHeight:      "6",
		types.ConfigEntityLayer: room5,
		types.ConfigMapName:     "room5",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return lab
}

func position(t *testing.T, lab *Lab) (float64, float64, float64) {
	t.Helper()
	obs, err := lab.Observations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return obs[types.ObsPosition].Data[0], obs[types.ObsPosition].Data[1], obs[types.ObsRotation].Data[1]
}

func TestResetUsesSpawnPoint(t *testing.T) {
	lab := newTestLab(t, NewEngine(""))
	if err := lab.Reset(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	x, y, yaw := position(t, lab)
	if x != 150 || y != 350 || yaw != 0 {
		t.Errorf("expected spawn at (150, 350, 0), got (%v, %v, %v)", x, y, yaw)
	}
}

func TestMovementStopsAtWalls(t *testing.T) {
	lab := newTestLab(t, NewEngine(""))
	lab.WriteProperty(types.PropSpawnX, "250")
	lab.WriteProperty(types.PropSpawnY, "150")
	lab.WriteProperty(types.PropSpawnTheta, "0")
	lab.Reset()

	forward, _ := types.Forward.Vector()
	for i := 0; i < 4; i++ {
		if _, err := lab.Step(forward, 5); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	x, y, _ := position(t, lab)
	if x != 390 || y != 150 {
		t.Errorf("expected to stop short of the wall at (390, 150), got (%v, %v)", x, y)
	}
	if lab.Frames() != 20 {
		t.Errorf("expected 20 frames, got %d", lab.Frames())
	}
}

func TestLookTurnsPlayer(t *testing.T) {
	lab := newTestLab(t, NewEngine(""))
	lab.Reset()
	left, _ := types.LookLeft.Vector()
	lab.Step(left, 5)
	_, _, yaw := position(t, lab)
	if yaw != -50 {
		t.Errorf("expected yaw -50, got %v", yaw)
	}
	lab.WriteProperty(types.PropSpawnTheta, "3.141592653589793")
	lab.Reset()
	_, _, yaw = position(t, lab)
	if math.Abs(yaw-180) > 1e-9 {
		t.Errorf("expected yaw 180 after respawn, got %v", yaw)
	}
}

// TestGoalRewardPaidOnce verifies that entering the goal cell pays the goal
// reward once per episode.
func TestGoalRewardPaidOnce(t *testing.T) {
	lab := newTestLab(t, NewEngine(""))
	lab.WriteProperty(types.PropSpawnX, "250")
	lab.WriteProperty(types.PropSpawnY, "250")
	lab.WriteProperty(types.PropSpawnTheta, "0")
	lab.Reset()

	forward, _ := types.Forward.Vector()
	reward, _ := lab.Step(forward, 5)
	if reward != GoalReward {
		t.Errorf("expected reward %v entering the goal, got %v", GoalReward, reward)
	}
	reward, _ = lab.Step(forward, 5)
	if reward != 0 {
		t.Errorf("expected no reward inside the goal, got %v", reward)
	}

	// goal moved off the map
	lab.WriteProperty(types.PropGoalX, "0")
	lab.WriteProperty(types.PropGoalY, "0")
	lab.Reset()
	if reward, _ := lab.Step(forward, 10); reward != 0 {
		t.Errorf("expected no reward with the goal off the map, got %v", reward)
	}
}

func TestTopDownViewShowsWalls(t *testing.T) {
	lab := newTestLab(t, NewEngine(""))
	lab.Reset()
	obs, _ := lab.Observations()
	img := obs[types.ObsTopDownView]
	if len(img.Shape) != 3 || img.Shape[0] != 6 || img.Shape[1] != 8 || img.Shape[2] != 3 {
		t.Fatalf("unexpected shape %v", img.Shape)
	}
	if img.Data[0] != 255 || img.Data[1] != 255 {
		t.Errorf("expected top-left pixel to be wall")
	}
}

func TestUnknownLevelScript(t *testing.T) {
	_, err := NewEngine("").NewLab("nope", nil, map[string]string{types.ConfigEntityLayer: room5})
	if err == nil || !strings.Contains(err.Error(), "nope.lua") {
		t.Errorf("expected missing level script error, got %v", err)
	}
}

func TestClosedLab(t *testing.T) {
	lab := newTestLab(t, NewEngine(""))
	lab.Close()
	if err := lab.Reset(); err == nil {
		t.Errorf("expected error resetting a closed lab")
	}
}

func TestCompiledMapIsReusedByName(t *testing.T) {
	e := NewEngine("")
	newTestLab(t, e)
	lab, err := e.NewLab("gridmap", []string{types.ObsMazeLayout}, map[string]string{types.ConfigMapName: "room5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obs, _ := lab.Observations()
	if obs[types.ObsMazeLayout].Len() != len(room5) {
		t.Errorf("expected the layout of room5")
	}
	if _, err := e.NewLab("gridmap", nil, map[string]string{types.ConfigMapName: "other"}); err == nil {
		t.Errorf("expected error for a map never compiled")
	}
}

func TestEngineWritesMapArchive(t *testing.T) {
	root := t.TempDir()
	e := NewEngine(root)
	newTestLab(t, e)

	dir := e.TempDir()
	if !strings.HasPrefix(filepath.Base(dir), TempDirPrefix) {
		t.Fatalf("unexpected temp folder %q", dir)
	}
	r, err := zip.OpenReader(filepath.Join(dir, "baselab", "room5.pk3"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r.Close()
	if len(r.File) != 1 || r.File[0].Name != "maps/room5.bsp" {
		t.Errorf("unexpected archive contents")
	}

	if err := e.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("temp folder not removed")
	}
}
