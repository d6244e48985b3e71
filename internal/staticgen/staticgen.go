// Package staticgen renders configured pages into a static site.
package staticgen

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/recera/ruitl/internal/config"
	"github.com/recera/ruitl/internal/sampledata"
	"github.com/recera/ruitl/pkg/component"
	"github.com/recera/ruitl/pkg/html"
	"github.com/recera/ruitl/pkg/template"
)

// Renderer renders a named component with props
type Renderer interface {
	Render(name string, props map[string]any, ctx *component.Context) (html.Node, error)
}

// Options configure a Generator
type Options struct {
	Static   config.StaticConfig
	Parallel int
	Logger   *slog.Logger
}

// Generator writes a static site
type Generator struct {
	opts     Options
	renderer Renderer
	logger   *slog.Logger
}

// PageResult is the outcome for one page
type PageResult struct {
	Path   string
	Output string
	Size   int64
	Err    error
}

// Result summarizes a generation run
type Result struct {
	Pages    []PageResult
	Assets   int
	Duration time.Duration
}

// Err joins the errors of failed pages
func (r *Result) Err() error {
	var errs []error
	for _, p := range r.Pages {
		if p.Err != nil {
			errs = append(errs, p.Err)
		}
	}
	return errors.Join(errs...)
}

// Routes lists the paths of pages that were written
func (r *Result) Routes() []string {
	var out []string
	for _, p := range r.Pages {
		if p.Err == nil {
			out = append(out, p.Path)
		}
	}
	return out
}

// New creates a generator rendering through r, usually a
// *template.Previewer
func New(r Renderer, opts Options) *Generator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Generator{opts: opts, renderer: r, logger: logger}
}

var _ Renderer = (*template.Previewer)(nil)

// OutputPath maps a route to the file it is written to: "/" and paths
// without an extension become <dir>/index.html, paths with an extension
// are written as is.
func OutputPath(outDir, route string) string {
	clean := strings.TrimPrefix(path.Clean("/"+route), "/")
	switch {
	case clean == "":
		return filepath.Join(outDir, "index.html")
	case path.Ext(clean) != "":
		return filepath.Join(outDir, filepath.FromSlash(clean))
	default:
		return filepath.Join(outDir, filepath.FromSlash(clean), "index.html")
	}
}

// Generate renders every page. Failing pages are recorded in the result;
// the returned error is reserved for failures that stop the run.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	start := time.Now()
	st := g.opts.Static
	if st.OutDir == "" {
		return nil, errors.New("static output directory is not set")
	}
	if err := os.MkdirAll(st.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	res := &Result{Pages: make([]PageResult, len(st.Pages))}
	eg, ectx := errgroup.WithContext(ctx)
	if g.opts.Parallel > 0 {
		eg.SetLimit(g.opts.Parallel)
	}
	for i, page := range st.Pages {
		eg.Go(func() error {
			if err := ectx.Err(); err != nil {
				return err
			}
			res.Pages[i] = g.page(page)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for _, p := range res.Pages {
		if p.Err != nil {
			g.logger.Error("page failed", "path", p.Path, "error", p.Err)
		} else {
			g.logger.Info("page written", "path", p.Path, "file", p.Output, "bytes", p.Size)
		}
	}

	if st.NotFound != "" {
		nf := g.page(config.PageConfig{Path: "/404.html", Component: st.NotFound, Title: "Page Not Found"})
		if nf.Err != nil {
			return nil, fmt.Errorf("failed to render 404 page: %w", nf.Err)
		}
	}

	n, err := copyAssets(st.AssetsDir, filepath.Join(st.OutDir, "assets"))
	if err != nil {
		return nil, err
	}
	res.Assets = n

	if st.BaseURL != "" {
		if err := WriteSitemap(filepath.Join(st.OutDir, "sitemap.xml"), st.BaseURL, res.Routes()); err != nil {
			return nil, err
		}
		if err := WriteRobots(filepath.Join(st.OutDir, "robots.txt"), st.BaseURL); err != nil {
			return nil, err
		}
	}

	res.Duration = time.Since(start)
	g.logger.Info("static site generated",
		"pages", len(res.Routes()),
		"failed", len(res.Pages)-len(res.Routes()),
		"assets", res.Assets,
		"duration", res.Duration)
	return res, nil
}

func (g *Generator) page(p config.PageConfig) PageResult {
	out := OutputPath(g.opts.Static.OutDir, p.Path)
	res := PageResult{Path: p.Path, Output: out}

	props := map[string]any{}
	if p.PropsFile != "" {
		fileProps, err := sampledata.LoadProps(p.PropsFile)
		if err != nil {
			res.Err = fmt.Errorf("%s: %w", p.Path, err)
			return res
		}
		props = fileProps
	}
	props = sampledata.Merge(props, p.Props)

	ctx := component.NewContext().
		WithPath(p.Path).
		WithData("base_url", g.opts.Static.BaseURL).
		WithData("canonical", canonical(g.opts.Static.BaseURL, p.Path))

	node, err := g.renderer.Render(p.Component, props, ctx)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", p.Path, err)
		return res
	}

	var sb strings.Builder
	if err := html.RenderTo(&sb, document(node, p, g.opts.Static.BaseURL)); err != nil {
		res.Err = fmt.Errorf("%s: %w", p.Path, err)
		return res
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		res.Err = fmt.Errorf("%s: failed to create directory: %w", p.Path, err)
		return res
	}
	if err := os.WriteFile(out, []byte(sb.String()), 0644); err != nil {
		res.Err = fmt.Errorf("%s: failed to write page: %w", p.Path, err)
		return res
	}
	res.Size = int64(sb.Len())
	return res
}

// document returns node as a full page. Output that already is an <html>
// document only gets a doctype; anything else is wrapped in a minimal
// shell.
func document(node html.Node, p config.PageConfig, baseURL string) html.Node {
	doctype := html.Raw("<!DOCTYPE html>")
	switch root := rootElement(node); {
	case root == "html":
		return html.Fragment(doctype, node)
	case root == "!doctype":
		return node
	}

	title := p.Title
	if title == "" {
		title = p.Component
	}
	head := html.Elem("head").Children(
		html.SelfClosing("meta").Attr("charset", "utf-8"),
		html.SelfClosing("meta").Attr("name", "viewport").Attr("content", "width=device-width, initial-scale=1"),
		html.Elem("title").Children(html.Text(title)),
	)
	if p.Description != "" {
		head = head.Children(html.SelfClosing("meta").Attr("name", "description").Attr("content", p.Description))
	}
	if baseURL != "" {
		head = head.Children(html.SelfClosing("link").Attr("rel", "canonical").Attr("href", canonical(baseURL, p.Path)))
	}

	return html.Fragment(doctype, html.Elem("html").Attr("lang", "en").Children(
		head,
		html.Elem("body").Children(node),
	))
}

// rootElement names the first non-empty node of n: a tag, "!doctype" for
// a leading doctype, or "" for text.
func rootElement(n html.Node) string {
	switch n.Kind {
	case html.KindElement:
		return strings.ToLower(n.Tag)
	case html.KindRaw:
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(n.Text)), "<!doctype") {
			return "!doctype"
		}
	case html.KindFragment:
		for _, kid := range n.Kids {
			if !kid.IsEmpty() {
				return rootElement(kid)
			}
		}
	}
	return ""
}

func canonical(baseURL, route string) string {
	if baseURL == "" {
		return route
	}
	return strings.TrimSuffix(baseURL, "/") + route
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// WriteSitemap writes a sitemap listing routes under baseURL
func WriteSitemap(file, baseURL string, routes []string) error {
	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, r := range routes {
		set.URLs = append(set.URLs, sitemapURL{Loc: canonical(baseURL, r), ChangeFreq: "weekly", Priority: "0.8"})
	}

	data, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sitemap: %w", err)
	}
	data = append([]byte(xml.Header), data...)
	data = append(data, '\n')
	if err := os.WriteFile(file, data, 0644); err != nil {
		return fmt.Errorf("failed to write sitemap: %w", err)
	}
	return nil
}

// WriteRobots writes a robots.txt allowing everything and pointing at the
// sitemap
func WriteRobots(file, baseURL string) error {
	content := fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %s/sitemap.xml\n", strings.TrimSuffix(baseURL, "/"))
	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write robots.txt: %w", err)
	}
	return nil
}

func copyAssets(src, dst string) (int, error) {
	if src == "" {
		return 0, nil
	}
	if info, err := os.Stat(src); err != nil || !info.IsDir() {
		return 0, nil
	}

	n := 0
	err := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		return n, fmt.Errorf("failed to copy assets: %w", err)
	}
	return n, nil
}
