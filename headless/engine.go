package headless

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/dmklee/rl-in-dmlab/types"
	"github.com/klauspost/compress/zip"
)

// TempDirPrefix names the per engine work folder, the same way the native
// engine names its folder.
const TempDirPrefix = "dmlab_temp_folder_"

// LevelScripts the engine knows how to run.
var LevelScripts = []string{"gridmap", "gridmap_spawnpoints"}

// Engine owns the levels compiled by its labs. Levels built from text are
// remembered by map name so they can be loaded again by name only.
type Engine struct {
	lock   *sync.Mutex
	levels map[string]*level

	// root under which the temp folder is created, empty disables archives
	workRoot string
	tempDir  string
}

// NewEngine creates an engine. When workRoot is not empty, every compiled
// level is also written as <name>.pk3 archive holding maps/<name>.bsp inside
// <workRoot>/dmlab_temp_folder_*/baselab.
func NewEngine(workRoot string) *Engine {
	return &Engine{
		lock:     new(sync.Mutex),
		levels:   make(map[string]*level),
		workRoot: workRoot,
	}
}

// Factory returns a LabFactory creating labs on this engine.
func (e *Engine) Factory() types.LabFactory {
	return func(levelScript string, observations []string, config map[string]string) (types.Lab, error) {
		return e.NewLab(levelScript, observations, config)
	}
}

// NewLab constructs a lab for the level described by config.
func (e *Engine) NewLab(levelScript string, observations []string, config map[string]string) (*Lab, error) {
	if !knownScript(levelScript) {
		return nil, fmt.Errorf("level script '%s.lua' not found", levelScript)
	}
	for _, name := range observations {
		if !knownObservation(name) {
			return nil, fmt.Errorf("unknown observation %s", name)
		}
	}
	width, err := intConfig(config, types.ConfigWidth, 320)
	if err != nil {
		return nil, err
	}
	height, err := intConfig(config, types.ConfigHeight, 240)
	if err != nil {
		return nil, err
	}

	lvl, err := e.level(config)
	if err != nil {
		return nil, err
	}
	return newLab(lvl, observations, width, height), nil
}

func (e *Engine) level(config map[string]string) (*level, error) {
	name := config[types.ConfigMapName]
	entity, ok := config[types.ConfigEntityLayer]

	e.lock.Lock()
	defer e.lock.Unlock()

	if !ok || entity == "" {
		lvl, found := e.levels[name]
		if !found {
			return nil, fmt.Errorf("map %q has not been compiled", name)
		}
		return lvl, nil
	}
	lvl, err := parseLevel(name, entity, config[types.ConfigVariationsLayer])
	if err != nil {
		return nil, err
	}
	e.levels[name] = lvl
	if e.workRoot != "" {
		if err := e.writeArchive(lvl); err != nil {
			return nil, err
		}
	}
	return lvl, nil
}

// writeArchive stores the compiled level, caller holds the lock
func (e *Engine) writeArchive(lvl *level) error {
	if e.tempDir == "" {
		dir, err := os.MkdirTemp(e.workRoot, TempDirPrefix)
		if err != nil {
			return fmt.Errorf("error creating temp folder: %w", err)
		}
		if err := os.MkdirAll(filepath.Join(dir, "baselab"), os.ModePerm); err != nil {
			return err
		}
		e.tempDir = dir
	}
	name := lvl.name
	if name == "" {
		name = "example"
	}
	f, err := os.Create(filepath.Join(e.tempDir, "baselab", name+".pk3"))
	if err != nil {
		return fmt.Errorf("error creating map archive: %w", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	bsp, err := w.Create("maps/" + name + ".bsp")
	if err != nil {
		return err
	}
	if _, err := bsp.Write(lvl.bsp()); err != nil {
		return err
	}
	return w.Close()
}

// TempDir is the engine work folder, empty until a level has been archived.
func (e *Engine) TempDir() string {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.tempDir
}

// Close removes the engine work folder.
func (e *Engine) Close() error {
	e.lock.Lock()
	defer e.lock.Unlock()
	if e.tempDir == "" {
		return nil
	}
	err := os.RemoveAll(e.tempDir)
	e.tempDir = ""
	return err
}

func knownScript(name string) bool {
	for _, s := range LevelScripts {
		if s == name {
			return true
		}
	}
	return false
}

func intConfig(config map[string]string, key string, def int) (int, error) {
	v, ok := config[key]
	if !ok {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config %s: %w", key, err)
	}
	if i < 1 {
		return 0, fmt.Errorf("config %s must be positive, got %d", key, i)
	}
	return i, nil
}
