package sampledata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "preview.yaml", `
Button:
  text: Click me
  disabled: true
List:
  items: [a, b]
Empty:
`)
	set, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Set{
		"Button": {"text": "Click me", "disabled": true},
		"List":   {"items": []any{"a", "b"}},
		"Empty":  {},
	}
	if diff := cmp.Diff(want, set); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}

	props := set.Props("Button")
	props["text"] = "changed"
	if set["Button"]["text"] != "Click me" {
		t.Error("Props() did not copy")
	}
	if got := set.Props("Unknown"); got == nil || len(got) != 0 {
		t.Errorf("Props(Unknown) = %v, want empty map", got)
	}
}

func TestLoad_Missing(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "nope.yaml")} {
		set, err := Load(path)
		if err != nil || len(set) != 0 {
			t.Errorf("Load(%q) = %v, %v; want empty set", path, set, err)
		}
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := writeFile(t, "bad.yaml", "Button: [unclosed\n")
	if _, err := Load(path); err == nil {
		t.Error("Load() expected error")
	}

	path = writeFile(t, "list.yaml", "- a\n- b\n")
	if _, err := Load(path); err == nil {
		t.Error("Load() of a sequence expected error")
	}
}

func TestLoadProps(t *testing.T) {
	path := writeFile(t, "props.yaml", "title: Home\ncount: 3\n")
	props, err := LoadProps(path)
	if err != nil {
		t.Fatalf("LoadProps() error = %v", err)
	}
	if diff := cmp.Diff(map[string]any{"title": "Home", "count": 3}, props); diff != "" {
		t.Errorf("LoadProps() mismatch (-want +got):\n%s", diff)
	}

	if _, err := LoadProps(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadProps() of a missing file expected error")
	}
}

func TestMerge(t *testing.T) {
	base := map[string]any{
		"title": "base",
		"meta":  map[string]any{"a": 1, "b": 2},
		"tags":  []any{"x"},
	}
	over := map[string]any{
		"title": "over",
		"meta":  map[string]any{"b": 3},
		"tags":  []any{"y"},
	}

	got := Merge(base, over)
	want := map[string]any{
		"title": "over",
		"meta":  map[string]any{"a": 1, "b": 3},
		"tags":  []any{"y"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
	if base["title"] != "base" {
		t.Error("Merge() modified base")
	}
}
