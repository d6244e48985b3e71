// Package build compiles a tree of .ruitl templates into Go sources.
package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/recera/ruitl/internal/cache"
	"github.com/recera/ruitl/pkg/template"
)

// Version participates in cache keys; bump it when generated code changes
const Version = "ruitl-gen/1"

// Ext is the template file extension
const Ext = ".ruitl"

// ErrNoTemplates is returned when the template directory holds no .ruitl files
var ErrNoTemplates = errors.New("no .ruitl files found")

// Options configure a Builder
type Options struct {
	TemplateDir string
	OutDir      string
	Package     string

	// Parallel bounds concurrent compilation; <= 0 means unbounded
	Parallel int

	// Cache is optional
	Cache *cache.Cache

	Logger *slog.Logger
}

// Builder compiles templates
type Builder struct {
	opts   Options
	logger *slog.Logger
}

// FileResult describes the outcome for one source file
type FileResult struct {
	Source     string
	Output     string
	Components []string
	Cached     bool
	Written    bool
	Err        error
}

// Stats summarize a build
type Stats struct {
	Discovered int
	Compiled   int
	Cached     int
	Failed     int
	Written    int
	Duration   time.Duration
}

// Result is returned by Build
type Result struct {
	Files []FileResult
	Stats Stats
}

// Err joins the per-file errors of r
func (r *Result) Err() error {
	var errs []error
	for _, f := range r.Files {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errors.Join(errs...)
}

// New creates a builder
func New(opts Options) *Builder {
	if opts.Package == "" {
		opts.Package = template.DefaultPackage
	}
	if opts.OutDir == "" {
		opts.OutDir = opts.TemplateDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Builder{opts: opts, logger: logger}
}

// Discover returns the .ruitl files under dir in lexical order. Hidden
// directories are skipped.
func Discover(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == Ext {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// OutputPath maps a source file to its generated file: the directory
// structure below templateDir is mirrored under outDir and the file is
// named after the lower-cased stem, e.g. Views/Button.ruitl becomes
// <outDir>/Views/button.ruitl.go.
func OutputPath(templateDir, outDir, src string) (string, error) {
	rel, err := filepath.Rel(templateDir, src)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside %s", src, templateDir)
	}
	stem := strings.TrimSuffix(filepath.Base(rel), Ext)
	return filepath.Join(outDir, filepath.Dir(rel), strings.ToLower(stem)+Ext+".go"), nil
}

type unit struct {
	source string
	rel    string
	output string
	text   string
	file   *template.File
}

// Build compiles every template under TemplateDir. Per-file failures are
// reported in the result and joined into the returned error, which is
// only non-nil when nothing compiled.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	files, err := Discover(b.opts.TemplateDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return &Result{}, fmt.Errorf("%w in %s", ErrNoTemplates, b.opts.TemplateDir)
	}
	return b.BuildFiles(ctx, files)
}

// BuildFiles compiles files. Siblings for cross-file invocations are
// collected from files in the same output directory, so callers
// rebuilding one file should pass all files of its package.
func (b *Builder) BuildFiles(ctx context.Context, files []string) (*Result, error) {
	start := time.Now()
	res := &Result{Files: make([]FileResult, len(files))}
	units := make([]*unit, len(files))

	// phase 1: read and parse
	g, gctx := errgroup.WithContext(ctx)
	if b.opts.Parallel > 0 {
		g.SetLimit(b.opts.Parallel)
	}
	for i, src := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			u, err := b.load(src)
			res.Files[i] = FileResult{Source: src, Err: err}
			if u != nil {
				res.Files[i].Output = u.output
			}
			units[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	siblings := b.siblings(units)

	// phase 2: generate
	g, gctx = errgroup.WithContext(ctx)
	if b.opts.Parallel > 0 {
		g.SetLimit(b.opts.Parallel)
	}
	for i, u := range units {
		if u == nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b.compile(u, siblings[filepath.Dir(u.output)], &res.Files[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := b.writeIndexes(units, res); err != nil {
		return nil, err
	}

	for _, f := range res.Files {
		res.Stats.Discovered++
		switch {
		case f.Err != nil:
			res.Stats.Failed++
			b.logger.Error("compile failed", "file", f.Source, "error", f.Err)
		case f.Cached:
			res.Stats.Cached++
		default:
			res.Stats.Compiled++
		}
		if f.Written {
			res.Stats.Written++
		}
	}
	res.Stats.Duration = time.Since(start)

	b.logger.Info("build finished",
		"files", res.Stats.Discovered,
		"compiled", res.Stats.Compiled,
		"cached", res.Stats.Cached,
		"failed", res.Stats.Failed,
		"duration", res.Stats.Duration)

	if b.opts.Cache != nil {
		if err := b.opts.Cache.Flush(); err != nil {
			b.logger.Warn("failed to save compile cache", "error", err)
		}
	}

	if res.Stats.Failed > 0 && res.Stats.Failed == res.Stats.Discovered {
		return res, res.Err()
	}
	return res, nil
}

func (b *Builder) load(src string) (*unit, error) {
	out, err := OutputPath(b.opts.TemplateDir, b.opts.OutDir, src)
	if err != nil {
		return nil, err
	}
	rel, _ := filepath.Rel(b.opts.TemplateDir, src)

	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	text := string(data)

	file, err := template.Parse(filepath.ToSlash(rel), text)
	if err != nil {
		return nil, err
	}
	return &unit{source: src, rel: filepath.ToSlash(rel), output: out, text: text, file: file}, nil
}

type siblingDef struct {
	def    template.ComponentDef
	source string
}

type siblingSet struct {
	defs    []siblingDef
	sources []string
}

// siblings groups component definitions by output directory
func (b *Builder) siblings(units []*unit) map[string]*siblingSet {
	sets := map[string]*siblingSet{}
	for _, u := range units {
		if u == nil {
			continue
		}
		dir := filepath.Dir(u.output)
		set := sets[dir]
		if set == nil {
			set = &siblingSet{}
			sets[dir] = set
		}
		for _, def := range u.file.Components {
			set.defs = append(set.defs, siblingDef{def: def, source: u.source})
		}
		set.sources = append(set.sources, u.source)
	}
	return sets
}

func (b *Builder) compile(u *unit, set *siblingSet, fr *FileResult) {
	fr.Components = template.ComponentNames(u.file)
	own := map[string]bool{}
	for _, name := range fr.Components {
		own[name] = true
	}

	var sibs []template.ComponentDef
	for _, sd := range set.defs {
		if sd.source == u.source {
			continue
		}
		if own[sd.def.Name] {
			fr.Err = &template.GenerationError{
				Filename:  u.rel,
				Component: sd.def.Name,
				Msg:       fmt.Sprintf("component %s is also defined in %s", sd.def.Name, sd.source),
			}
			return
		}
		sibs = append(sibs, sd.def)
	}

	key := cache.Key(Version, b.opts.Package, u.rel, u.text, signature(sibs))
	if b.opts.Cache != nil {
		if src, ok := b.opts.Cache.Get(key); ok {
			fr.Cached = true
			fr.Err = b.write(u.output, src, fr)
			return
		}
	}

	src, err := template.Generate(u.file, template.Options{
		Filename: u.rel,
		Package:  b.opts.Package,
		Siblings: sibs,
	})
	if err != nil {
		fr.Err = err
		return
	}
	if b.opts.Cache != nil {
		if err := b.opts.Cache.Put(key, src, set.sources...); err != nil {
			b.logger.Warn("failed to cache generated code", "file", u.source, "error", err)
		}
	}
	fr.Err = b.write(u.output, src, fr)
}

// write stores src unless the file already has that content
func (b *Builder) write(path string, src []byte, fr *FileResult) error {
	if old, err := os.ReadFile(path); err == nil && string(old) == string(src) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, src, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fr.Written = true
	b.logger.Debug("wrote generated file", "file", path)
	return nil
}

// signature renders the parts of sibling definitions that affect code
// generation
func signature(defs []template.ComponentDef) string {
	var sb strings.Builder
	for _, d := range defs {
		fmt.Fprintf(&sb, "%s<%s>{", d.Name, strings.Join(d.Generics, ","))
		for _, p := range d.Props {
			fmt.Fprintf(&sb, "%s:%s:%t:%s;", p.Name, p.Type, p.Optional, p.Default)
		}
		sb.WriteString("}")
	}
	return sb.String()
}

// Clean removes generated files for sources that no longer exist
func (b *Builder) Clean(sources []string) ([]string, error) {
	keep := map[string]bool{}
	for _, src := range sources {
		out, err := OutputPath(b.opts.TemplateDir, b.opts.OutDir, src)
		if err != nil {
			return nil, err
		}
		keep[out] = true
	}

	var removed []string
	err := filepath.WalkDir(b.opts.OutDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, Ext+".go") || keep[path] {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		removed = append(removed, path)
		return nil
	})
	return removed, err
}
