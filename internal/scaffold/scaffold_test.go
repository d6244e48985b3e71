package scaffold

import (
	"context"
	"errors"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/recera/ruitl/internal/build"
	"github.com/recera/ruitl/internal/config"
	"github.com/recera/ruitl/internal/sampledata"
	"github.com/recera/ruitl/pkg/template"
)

func TestValidName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"my-app", true},
		{"my_app2", true},
		{"", false},
		{"my app", false},
		{"../escape", false},
		{strings.Repeat("a", 51), false},
	}
	for _, tt := range tests {
		if got := ValidName(tt.name); got != tt.want {
			t.Errorf("ValidName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestOptions_Validate(t *testing.T) {
	opts := Options{Name: "bad name", Template: "fancy", Port: 70000}
	err := opts.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"invalid project name", "unknown template", "out of range"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestCreate(t *testing.T) {
	for _, tmpl := range TemplateNames() {
		t.Run(tmpl, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "site")
			files, err := Create(Options{Name: "site", Directory: dir, Template: tmpl, Port: 4000})
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			for _, f := range files {
				if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
					t.Errorf("listed file %s missing: %v", f, err)
				}
			}

			cfg, err := config.Load(dir)
			if err != nil {
				t.Fatalf("config.Load() error = %v", err)
			}
			if cfg.Project.Name != "site" || cfg.Dev.Port != 4000 || cfg.Dev.PreviewData != "preview.yaml" {
				t.Errorf("config = %+v", cfg)
			}
			cfg.Resolve(dir)

			gomod, _ := os.ReadFile(filepath.Join(dir, "go.mod"))
			if !strings.Contains(string(gomod), "module example.com/site") {
				t.Errorf("go.mod = %q", gomod)
			}

			if _, err := parser.ParseFile(token.NewFileSet(), "main.go", mustRead(t, filepath.Join(dir, "main.go")), 0); err != nil {
				t.Errorf("main.go does not parse: %v", err)
			}

			// the templates compile and every sample renders
			res, err := build.New(build.Options{
				TemplateDir: cfg.Build.TemplateDir,
				OutDir:      cfg.Build.OutDir,
				Package:     cfg.Build.Package,
			}).Build(context.Background())
			if err != nil || res.Err() != nil {
				t.Fatalf("Build() error = %v, %v", err, res.Err())
			}

			files2, _ := build.Discover(cfg.Build.TemplateDir)
			parsed := make([]*template.File, 0, len(files2))
			for _, f := range files2 {
				pf, err := template.Parse(f, mustRead(t, f))
				if err != nil {
					t.Fatal(err)
				}
				parsed = append(parsed, pf)
			}
			pv, err := template.NewPreviewer(parsed...)
			if err != nil {
				t.Fatal(err)
			}
			samples, err := sampledata.Load(cfg.Dev.PreviewData)
			if err != nil {
				t.Fatal(err)
			}
			for _, name := range pv.Components() {
				if _, err := pv.RenderString(name, samples.Props(name), nil); err != nil {
					t.Errorf("preview %s: %v", name, err)
				}
			}
			for _, page := range cfg.Static.Pages {
				if _, err := pv.RenderString(page.Component, page.Props, nil); err != nil {
					t.Errorf("page %s: %v", page.Path, err)
				}
			}
		})
	}
}

func TestCreate_Basic(t *testing.T) {
	dir := t.TempDir()
	files, err := Create(Options{Name: "demo", Directory: dir})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		".gitignore",
		"README.md",
		"go.mod",
		"main.go",
		"preview.yaml",
		"ruitl.toml",
		"templates/Button.ruitl",
		"templates/Card.ruitl",
		"templates/Home.ruitl",
	}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Errorf("Create() files mismatch (-want +got):\n%s", diff)
	}

	main := mustRead(t, filepath.Join(dir, "main.go"))
	for _, s := range []string{`"example.com/demo/components"`, "components.DefaultHomeProps()", `ctx.Query().Get("title")`, `addr := ":3000"`} {
		if !strings.Contains(main, s) {
			t.Errorf("main.go missing %q", s)
		}
	}
}

func TestCreate_NotEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Create(Options{Name: "demo", Directory: dir})
	if !errors.Is(err, ErrNotEmpty) {
		t.Fatalf("Create() error = %v, want ErrNotEmpty", err)
	}

	if _, err := Create(Options{Name: "demo", Directory: dir, Force: true}); err != nil {
		t.Fatalf("Create(Force) error = %v", err)
	}
	if got := mustRead(t, filepath.Join(dir, "keep.txt")); got != "x" {
		t.Error("existing file was modified")
	}
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
