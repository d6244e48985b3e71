// Package config loads and saves the ruitl.toml project file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"github.com/BurntSushi/toml"
)

// FileName is the project configuration file looked up in the project root
const FileName = "ruitl.toml"

// Config represents ruitl.toml
type Config struct {
	Project ProjectConfig `toml:"project"`
	Build   BuildConfig   `toml:"build"`
	Dev     DevConfig     `toml:"dev"`
	Static  StaticConfig  `toml:"static"`
}

// ProjectConfig describes the project itself
type ProjectConfig struct {
	Name        string   `toml:"name"`
	Version     string   `toml:"version,omitempty"`
	Description string   `toml:"description,omitempty"`
	Authors     []string `toml:"authors,omitempty"`
}

// BuildConfig controls template compilation
type BuildConfig struct {
	// TemplateDir is searched recursively for .ruitl files
	TemplateDir string `toml:"template_dir"`

	// OutDir receives the generated Go files, mirroring TemplateDir
	OutDir string `toml:"out_dir"`

	// Package is the Go package name of generated files
	Package string `toml:"package"`

	// Parallel is the number of files compiled at once
	Parallel int `toml:"parallel,omitempty"`

	// CacheDir holds the compile cache. Empty disables caching.
	CacheDir string `toml:"cache_dir,omitempty"`
}

// DevConfig contains development server configuration
type DevConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`

	// Open the browser on start
	Open bool `toml:"open,omitempty"`

	// PreviewData is a YAML file of sample props keyed by component name
	PreviewData string `toml:"preview_data,omitempty"`
}

// StaticConfig configures static site generation
type StaticConfig struct {
	OutDir string `toml:"out_dir"`

	// BaseURL prefixes canonical links. sitemap.xml and robots.txt are
	// only written when it is set.
	BaseURL string `toml:"base_url,omitempty"`

	// AssetsDir is copied to <out_dir>/assets
	AssetsDir string `toml:"assets_dir,omitempty"`

	// NotFound names a component rendered to 404.html
	NotFound string `toml:"not_found,omitempty"`

	Pages []PageConfig `toml:"pages,omitempty"`
}

// PageConfig maps a URL path to a component and its props
type PageConfig struct {
	Path      string         `toml:"path"`
	Component string         `toml:"component"`
	Props     map[string]any `toml:"props,omitempty"`

	Title       string `toml:"title,omitempty"`
	Description string `toml:"description,omitempty"`

	// PropsFile is a YAML file merged under Props
	PropsFile string `toml:"props_file,omitempty"`
}

var packageName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Load loads configuration from ruitl.toml in projectPath. A missing file
// yields the default configuration.
func Load(projectPath string) (*Config, error) {
	configPath := filepath.Join(projectPath, FileName)

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	var cfg Config
	if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return &cfg, nil
}

// Save writes cfg to ruitl.toml in projectPath
func Save(cfg *Config, projectPath string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(projectPath, FileName), buf.Bytes(), 0644)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			Name:    "ruitl-app",
			Version: "0.1.0",
		},
		Build: BuildConfig{
			TemplateDir: "templates",
			OutDir:      "generated",
			Package:     "components",
			Parallel:    runtime.NumCPU(),
			CacheDir:    ".ruitl/cache",
		},
		Dev: DevConfig{
			Host: "localhost",
			Port: 3000,
		},
		Static: StaticConfig{
			OutDir: "dist",
		},
	}
}

// applyDefaults applies default values to missing configuration
func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Project.Name == "" {
		cfg.Project.Name = defaults.Project.Name
	}

	if cfg.Build.TemplateDir == "" {
		cfg.Build.TemplateDir = defaults.Build.TemplateDir
	}
	if cfg.Build.OutDir == "" {
		cfg.Build.OutDir = defaults.Build.OutDir
	}
	if cfg.Build.Package == "" {
		cfg.Build.Package = defaults.Build.Package
	}
	if cfg.Build.Parallel <= 0 {
		cfg.Build.Parallel = defaults.Build.Parallel
	}

	if cfg.Dev.Host == "" {
		cfg.Dev.Host = defaults.Dev.Host
	}
	if cfg.Dev.Port == 0 {
		cfg.Dev.Port = defaults.Dev.Port
	}

	if cfg.Static.OutDir == "" {
		cfg.Static.OutDir = defaults.Static.OutDir
	}
	for i := range cfg.Static.Pages {
		if cfg.Static.Pages[i].Path == "" {
			cfg.Static.Pages[i].Path = "/"
		}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []error
	if !packageName.MatchString(c.Build.Package) {
		errs = append(errs, fmt.Errorf("build.package %q is not a valid Go package name", c.Build.Package))
	}
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		errs = append(errs, fmt.Errorf("dev.port %d out of range", c.Dev.Port))
	}
	if c.Static.BaseURL != "" {
		if u, err := url.Parse(c.Static.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("static.base_url %q must be an absolute URL", c.Static.BaseURL))
		}
	}
	seen := map[string]bool{}
	for i, p := range c.Static.Pages {
		if p.Component == "" {
			errs = append(errs, fmt.Errorf("static.pages[%d]: component is required", i))
		}
		if p.Path == "" || p.Path[0] != '/' {
			errs = append(errs, fmt.Errorf("static.pages[%d]: path %q must start with /", i, p.Path))
		}
		if seen[p.Path] {
			errs = append(errs, fmt.Errorf("static.pages[%d]: duplicate path %q", i, p.Path))
		}
		seen[p.Path] = true
	}
	return errors.Join(errs...)
}

// Resolve makes the directories of cfg absolute relative to root
func (c *Config) Resolve(root string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(root, p)
	}
	c.Build.TemplateDir = abs(c.Build.TemplateDir)
	c.Build.OutDir = abs(c.Build.OutDir)
	c.Build.CacheDir = abs(c.Build.CacheDir)
	c.Dev.PreviewData = abs(c.Dev.PreviewData)
	c.Static.OutDir = abs(c.Static.OutDir)
	c.Static.AssetsDir = abs(c.Static.AssetsDir)
	for i := range c.Static.Pages {
		c.Static.Pages[i].PropsFile = abs(c.Static.Pages[i].PropsFile)
	}
}

// Addr returns the dev server listen address
func (d DevConfig) Addr() string {
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}
