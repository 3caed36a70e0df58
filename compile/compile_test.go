package compile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmklee/rl-in-dmlab/dmlab"
	"github.com/dmklee/rl-in-dmlab/headless"
	"github.com/dmklee/rl-in-dmlab/mapstore"
)

func newCompiler(t *testing.T) (*Compiler, *headless.Engine) {
	t.Helper()
	root := t.TempDir()
	tmp := filepath.Join(root, "tmp")
	os.MkdirAll(tmp, os.ModePerm)
	engine := headless.NewEngine(tmp)
	t.Cleanup(func() { engine.Close() })

	store := mapstore.NewDirStore(filepath.Join(root, "to_be_compiled"))
	return &Compiler{
		Store:   store,
		Env:     dmlab.NewEnvironment(nil, engine.Factory()),
		TmpRoot: tmp,
		OutDir:  filepath.Join(root, "bsp_files"),
	}, engine
}

func TestCompileAll(t *testing.T) {
	c, _ := newCompiler(t)
	ctx := context.Background()
	defs := []*mapstore.Definition{
		{Name: "hall", EntityLayer: "*****\n*P A*\n*****", DecalFrequency: 0.1, RandomSeed: 1},
		// no markers, the compiler adds them
		{Name: "square", EntityLayer: "****\n*  *\n*  *\n****", VariationsLayer: "    \n AA \n AA \n    ", DecalFrequency: 0.2, RandomSeed: 4},
	}
	for _, def := range defs {
		if err := c.Store.Save(ctx, def); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	paths, err := c.Run(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 level files, got %v", paths)
	}
	for i, name := range []string{"hall", "square"} {
		if filepath.Base(paths[i]) != name+".bsp" {
			t.Errorf("expected %s.bsp, got %s", name, paths[i])
		}
	}
	bs, err := os.ReadFile(paths[1])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(bs), "****\n*PA*\n*  *\n****") {
		t.Errorf("expected spawn and goal markers in the compiled level, got %q", string(bs))
	}
	if c.Env.Loaded() {
		t.Errorf("environment left loaded after compiling")
	}
}

func TestRunRefusesStaleTempDirs(t *testing.T) {
	c, _ := newCompiler(t)
	os.MkdirAll(filepath.Join(c.TmpRoot, TempDirPrefix+"old"), os.ModePerm)
	if _, err := c.Run(context.Background()); !errors.Is(err, ErrStaleTempDirs) {
		t.Errorf("expected ErrStaleTempDirs, got %v", err)
	}
}

func TestCompileMissingMap(t *testing.T) {
	c, _ := newCompiler(t)
	os.MkdirAll(filepath.Join(filepath.Dir(c.TmpRoot), "to_be_compiled"), os.ModePerm)
	if _, err := c.Compile(context.Background(), "ghost"); !errors.Is(err, mapstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestExtractLevelMissing(t *testing.T) {
	dir := t.TempDir()
	if _, err := ExtractLevel(dir, "nothing", filepath.Join(dir, "out")); err == nil {
		t.Errorf("expected error for a missing level file")
	}
}
