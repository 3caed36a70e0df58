// Package mapstore keeps the definitions of maps waiting to be precompiled.
package mapstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// ErrNotFound is returned when a map definition does not exist.
var ErrNotFound = errors.New("map definition not found")

// Defaults applied to definitions that leave the values out.
const (
	DefaultDecalFrequency = 0.1
	DefaultRandomSeed     = 1
)

// Field names, shared by every store.
const (
	fieldEntityLayer     = "mapEntityLayer"
	fieldVariationsLayer = "mapVariationsLayer"
	fieldDecalFrequency  = "decalFrequency"
	fieldRandomSeed      = "randomSeed"
	fieldTexture         = "texture"
)

// Definition holds the text layers and generation parameters of one map.
type Definition struct {
	Name            string
	EntityLayer     string
	VariationsLayer string
	DecalFrequency  float64
	RandomSeed      int
	Texture         string
}

// Store lists, reads and writes map definitions.
type Store interface {
	Names(ctx context.Context) ([]string, error)
	Load(ctx context.Context, name string) (*Definition, error)
	Save(ctx context.Context, def *Definition) error
}

func (d *Definition) fields() map[string]string {
	fields := map[string]string{
		fieldEntityLayer:     d.EntityLayer,
		fieldVariationsLayer: d.VariationsLayer,
		fieldDecalFrequency:  strconv.FormatFloat(d.DecalFrequency, 'g', -1, 64),
		fieldRandomSeed:      strconv.Itoa(d.RandomSeed),
	}
	if d.Texture != "" {
		fields[fieldTexture] = d.Texture
	}
	return fields
}

func fromFields(name string, fields map[string]string) (*Definition, error) {
	def := &Definition{
		Name:           name,
		DecalFrequency: DefaultDecalFrequency,
		RandomSeed:     DefaultRandomSeed,
	}
	for key, value := range fields {
		switch key {
		case fieldEntityLayer:
			def.EntityLayer = value
		case fieldVariationsLayer:
			def.VariationsLayer = value
		case fieldTexture:
			def.Texture = value
		case fieldDecalFrequency:
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("map %s: %s: %w", name, key, err)
			}
			def.DecalFrequency = f
		case fieldRandomSeed:
			// seeds are written as floats by some tools
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("map %s: %s: %w", name, key, err)
			}
			def.RandomSeed = int(f)
		}
	}
	if def.EntityLayer == "" {
		return nil, fmt.Errorf("map %s: missing %s", name, fieldEntityLayer)
	}
	return def, nil
}
