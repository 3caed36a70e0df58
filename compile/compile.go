// Package compile precompiles stored map definitions into level files, so
// later runs can load them by name without building them again.
package compile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmklee/rl-in-dmlab/dmlab"
	"github.com/dmklee/rl-in-dmlab/gridmap"
	"github.com/dmklee/rl-in-dmlab/mapstore"
	"github.com/klauspost/compress/zip"
)

// TempDirPrefix is how the simulator names its work folders.
const TempDirPrefix = "dmlab_temp_folder_"

// ErrStaleTempDirs is returned when work folders of an earlier run are still
// around, extraction could pick up their levels.
var ErrStaleTempDirs = errors.New("existing temp folders detected, delete these and try again")

// Compiler loads every stored map in the simulator and collects the compiled
// level it leaves in its work folder.
type Compiler struct {
	Store mapstore.Store
	Env   *dmlab.Environment
	// TmpRoot is the folder the simulator creates its work folder in
	TmpRoot string
	// OutDir receives <name>.bsp files
	OutDir string
}

// CountTempDirs counts the simulator work folders under TmpRoot.
func (c *Compiler) CountTempDirs() (int, error) {
	entries, err := os.ReadDir(c.TmpRoot)
	if err != nil {
		return 0, fmt.Errorf("error reading %s: %w", c.TmpRoot, err)
	}
	count := 0
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), TempDirPrefix) {
			count += 1
		}
	}
	return count, nil
}

// levelDir is the baselab folder of the first work folder found
func (c *Compiler) levelDir() (string, error) {
	entries, err := os.ReadDir(c.TmpRoot)
	if err != nil {
		return "", fmt.Errorf("error reading %s: %w", c.TmpRoot, err)
	}
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), TempDirPrefix) {
			return filepath.Join(c.TmpRoot, entry.Name(), "baselab"), nil
		}
	}
	return "", fmt.Errorf("no %s* folder in %s", TempDirPrefix, c.TmpRoot)
}

// Run compiles every stored map and returns the paths of the level files.
// It refuses to start while work folders from an earlier run exist.
func (c *Compiler) Run(ctx context.Context) ([]string, error) {
	count, err := c.CountTempDirs()
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: %d in %s", ErrStaleTempDirs, count, c.TmpRoot)
	}
	names, err := c.Store.Names(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}
		path, err := c.Compile(ctx, name)
		if err != nil {
			return out, err
		}
		out = append(out, path)
	}
	return out, nil
}

// Compile builds a single map and moves its level file into OutDir.
func (c *Compiler) Compile(ctx context.Context, name string) (string, error) {
	def, err := c.Store.Load(ctx, name)
	if err != nil {
		return "", err
	}
	log.Printf("compiling map %s", name)
	entity := gridmap.EnsureMarkers(def.EntityLayer)
	if err := c.Env.LoadMapFromText(def.Name, entity, def.VariationsLayer, def.DecalFrequency, def.RandomSeed); err != nil {
		return "", fmt.Errorf("error compiling map %s: %w", name, err)
	}
	defer c.Env.Close()

	dir, err := c.levelDir()
	if err != nil {
		return "", err
	}
	return ExtractLevel(dir, name, c.OutDir)
}

// ExtractLevel unpacks every archive in dir and moves maps/<name>.bsp into
// outDir.
func ExtractLevel(dir, name, outDir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("error reading %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".pk3" {
			continue
		}
		if err := unzip(filepath.Join(dir, entry.Name()), dir); err != nil {
			return "", err
		}
	}

	src := filepath.Join(dir, "maps", name+".bsp")
	if _, err := os.Stat(src); err != nil {
		return "", fmt.Errorf("level file for %s not found: %w", name, err)
	}
	if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
		return "", err
	}
	dst := filepath.Join(outDir, name+".bsp")
	if err := move(src, dst); err != nil {
		return "", fmt.Errorf("error moving level file: %w", err)
	}
	return dst, nil
}

func unzip(archive, dest string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", archive, err)
	}
	defer r.Close()

	root := filepath.Clean(dest) + string(os.PathSeparator)
	for _, f := range r.File {
		target := filepath.Join(dest, f.Name)
		if !strings.HasPrefix(target, root) {
			return fmt.Errorf("archive %s: entry %s escapes the destination", archive, f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, os.ModePerm); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), os.ModePerm); err != nil {
			return err
		}
		if err := extractFile(f, target); err != nil {
			return fmt.Errorf("archive %s: %w", archive, err)
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, rc)
	return err
}

// move renames src to dst, copying when they live on different devices
func move(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
