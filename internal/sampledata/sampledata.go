// Package sampledata loads sample props used to preview and statically
// render components.
//
// A preview file maps component names to props:
//
//	Button:
//	  text: Click me
//	  variant: danger
//	Card:
//	  title: Hello
package sampledata

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"

	"gopkg.in/yaml.v3"
)

// Set holds sample props keyed by component name
type Set map[string]map[string]any

// Props returns a copy of the props for name, never nil
func (s Set) Props(name string) map[string]any {
	out := map[string]any{}
	maps.Copy(out, s[name])
	return out
}

// Load reads a preview file. An empty path or a missing file yields an
// empty set.
func Load(path string) (Set, error) {
	if path == "" {
		return Set{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Set{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preview data: %w", err)
	}

	set := Set{}
	if err := decode(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for name, props := range set {
		if props == nil {
			set[name] = map[string]any{}
		}
	}
	return set, nil
}

// LoadProps reads a single YAML mapping of props
func LoadProps(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read props file: %w", err)
	}
	props := map[string]any{}
	if err := decode(data, &props); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return props, nil
}

// Merge returns base overlaid with over. Nested maps are merged
// recursively; any other value in over replaces the one in base.
func Merge(base, over map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(over))
	maps.Copy(out, base)
	for k, v := range over {
		if vm, ok := v.(map[string]any); ok {
			if bm, ok := out[k].(map[string]any); ok {
				out[k] = Merge(bm, vm)
				continue
			}
		}
		out[k] = v
	}
	return out
}

func decode(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
