package mapstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/ini.v1"
)

const definitionExt = ".txt"

// DirStore keeps one key=value file per map, <dir>/<name>.txt. Layer values
// are double quoted with newlines written as \n.
type DirStore struct {
	dir string
}

var _ Store = &DirStore{}

func NewDirStore(dir string) *DirStore {
	return &DirStore{dir: dir}
}

func (s *DirStore) path(name string) string {
	return filepath.Join(s.dir, name+definitionExt)
}

// Names lists the maps in the directory, sorted.
func (s *DirStore) Names(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("error reading map directory: %w", err)
	}
	names := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != definitionExt {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), definitionExt))
	}
	sort.Strings(names)
	return names, nil
}

func (s *DirStore) Load(_ context.Context, name string) (*Definition, error) {
	path := s.path(name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	cfg, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, path)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}
	fields := cfg.Section(ini.DefaultSection).KeysHash()
	for _, key := range []string{fieldEntityLayer, fieldVariationsLayer, fieldTexture} {
		if v, ok := fields[key]; ok {
			fields[key] = unescape(v)
		}
	}
	return fromFields(name, fields)
}

func (s *DirStore) Save(_ context.Context, def *Definition) error {
	cfg := ini.Empty(ini.LoadOptions{IgnoreInlineComment: true})
	sec := cfg.Section(ini.DefaultSection)
	fields := def.fields()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := fields[k]
		switch k {
		case fieldEntityLayer, fieldVariationsLayer, fieldTexture:
			v = `"` + escape(v) + `"`
		}
		if _, err := sec.NewKey(k, v); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(s.dir, os.ModePerm); err != nil {
		return err
	}
	return cfg.SaveTo(s.path(def.Name))
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\n", `\n`)
}

func unescape(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
