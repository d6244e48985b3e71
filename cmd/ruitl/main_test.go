package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/recera/ruitl/internal/build"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(&app{})
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "ruitl "+version) {
		t.Errorf("version output = %q", out)
	}
}

func TestScaffoldCompileStatic(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "-C", dir, "scaffold", "site", "-t", "minimal", "--no-interactive")
	if err != nil {
		t.Fatalf("scaffold: %v\n%s", err, out)
	}
	if !strings.Contains(out, "ruitl dev") {
		t.Errorf("scaffold output lacks next steps:\n%s", out)
	}
	project := filepath.Join(dir, "site")

	out, err = run(t, "-C", project, "compile", "--no-cache")
	if err != nil {
		t.Fatalf("compile: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(project, "components", "hello"+build.Ext+".go")); err != nil {
		t.Errorf("generated file missing: %v", err)
	}

	out, err = run(t, "-C", project, "static", "--out", filepath.Join(project, "public"))
	if err != nil {
		t.Fatalf("static: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(project, "public", "index.html")); err != nil {
		t.Errorf("index.html missing: %v", err)
	}
}

func TestScaffold_RequiresName(t *testing.T) {
	if _, err := run(t, "-C", t.TempDir(), "scaffold", "--no-interactive"); err == nil {
		t.Error("scaffold without name succeeded")
	}
}

func TestCompile_NoTemplates(t *testing.T) {
	if _, err := run(t, "-C", t.TempDir(), "compile", "--no-cache"); err == nil {
		t.Error("compile of empty project succeeded")
	}
}
