// Package scaffold creates new ruitl projects.
package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/recera/ruitl/internal/config"
)

// ModulePath is the import path of the ruitl runtime packages
const ModulePath = "github.com/recera/ruitl"

// Project templates
const (
	TemplateBasic   = "basic"
	TemplateMinimal = "minimal"
)

// Templates lists the available project templates with a description
var Templates = map[string]string{
	TemplateBasic:   "Button, Card and a Home page wired to a server",
	TemplateMinimal: "A single Hello component",
}

// ErrNotEmpty is returned when the target directory already has files
var ErrNotEmpty = errors.New("directory is not empty")

var projectName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,50}$`)

// Options describe the project to create
type Options struct {
	Name      string
	Module    string
	Directory string
	Template  string
	Package   string
	Port      int

	// Force writes into a non-empty directory
	Force bool
}

// Normalize fills defaults
func (o *Options) Normalize() {
	if o.Directory == "" {
		o.Directory = o.Name
	}
	if o.Module == "" {
		o.Module = "example.com/" + o.Name
	}
	if o.Template == "" {
		o.Template = TemplateBasic
	}
	if o.Package == "" {
		o.Package = config.DefaultConfig().Build.Package
	}
	if o.Port == 0 {
		o.Port = config.DefaultConfig().Dev.Port
	}
}

// Validate checks the options
func (o Options) Validate() error {
	var errs []error
	if !ValidName(o.Name) {
		errs = append(errs, fmt.Errorf("invalid project name %q: use letters, numbers, hyphens and underscores", o.Name))
	}
	if _, ok := Templates[o.Template]; !ok {
		errs = append(errs, fmt.Errorf("unknown template %q (available: %v)", o.Template, TemplateNames()))
	}
	if o.Port < 1 || o.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", o.Port))
	}
	return errors.Join(errs...)
}

// ValidName reports whether name can be used as a project name
func ValidName(name string) bool { return projectName.MatchString(name) }

// TemplateNames returns the template names in sorted order
func TemplateNames() []string {
	names := make([]string, 0, len(Templates))
	for name := range Templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create writes a new project and returns the created files relative to
// the project directory
func Create(opts Options) ([]string, error) {
	opts.Normalize()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if entries, err := os.ReadDir(opts.Directory); err == nil && len(entries) > 0 && !opts.Force {
		return nil, fmt.Errorf("%s: %w", opts.Directory, ErrNotEmpty)
	}
	if err := os.MkdirAll(opts.Directory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create project directory: %w", err)
	}

	cfg := projectConfig(opts)
	if err := config.Save(cfg, opts.Directory); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", config.FileName, err)
	}
	created := []string{config.FileName}

	files := commonFiles(opts, cfg)
	switch opts.Template {
	case TemplateMinimal:
		files = append(files, minimalFiles(opts, cfg)...)
	default:
		files = append(files, basicFiles(opts, cfg)...)
	}

	for _, f := range files {
		if err := WriteFile(filepath.Join(opts.Directory, f.path), f.content); err != nil {
			return created, err
		}
		created = append(created, f.path)
	}
	sort.Strings(created)
	return created, nil
}

func projectConfig(opts Options) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Project.Name = opts.Name
	cfg.Build.Package = opts.Package
	cfg.Build.OutDir = opts.Package
	// machine specific, left to the default
	cfg.Build.Parallel = 0
	cfg.Dev.Port = opts.Port
	cfg.Dev.PreviewData = "preview.yaml"

	home := "Hello"
	props := map[string]any{"name": opts.Name}
	if opts.Template == TemplateBasic {
		home = "Home"
		props = map[string]any{
			"title":    opts.Name,
			"features": []any{"Type-safe props", "Compiled to Go", "Live previews"},
		}
	}
	cfg.Static.Pages = []config.PageConfig{{Path: "/", Component: home, Title: opts.Name, Props: props}}
	return cfg
}

// WriteFile writes content, creating parent directories
func WriteFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
