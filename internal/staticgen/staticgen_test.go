package staticgen

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/recera/ruitl/internal/config"
	"github.com/recera/ruitl/pkg/html"
	"github.com/recera/ruitl/pkg/template"
)

const siteSource = `
component Home {
    props { title: String, items: Vec<String> }
}
ruitl Home() {
    <section>
        <h1>{title}</h1>
        <ul>for item in items { <li>{item}</li> }</ul>
    </section>
}

component Doc {
    props { heading: String }
}
ruitl Doc() {
    <html><head><title>{heading}</title></head><body><p>{ctx.Path}</p></body></html>
}

component Missing {
    props { }
}
ruitl Missing() {
    <p>gone</p>
}
`

func previewer(t *testing.T) *template.Previewer {
	t.Helper()
	f, err := template.Parse("site.ruitl", siteSource)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	pv, err := template.NewPreviewer(f)
	if err != nil {
		t.Fatalf("NewPreviewer() error = %v", err)
	}
	return pv
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		route string
		want  string
	}{
		{"/", "out/index.html"},
		{"", "out/index.html"},
		{"/about", "out/about/index.html"},
		{"/about/", "out/about/index.html"},
		{"/blog/post-1", "out/blog/post-1/index.html"},
		{"/feed.xml", "out/feed.xml"},
		{"/../escape", "out/escape/index.html"},
	}
	for _, tt := range tests {
		if got := OutputPath("out", tt.route); got != filepath.FromSlash(tt.want) {
			t.Errorf("OutputPath(%q) = %q, want %q", tt.route, got, tt.want)
		}
	}
}

func TestGenerate(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "dist")

	propsFile := filepath.Join(root, "home.yaml")
	if err := os.WriteFile(propsFile, []byte("title: From file\nitems: [a, b]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	assets := filepath.Join(root, "assets")
	if err := os.MkdirAll(filepath.Join(assets, "css"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(assets, "css", "site.css"), []byte("body{}"), 0644); err != nil {
		t.Fatal(err)
	}

	g := New(previewer(t), Options{Static: config.StaticConfig{
		OutDir:    out,
		BaseURL:   "https://example.com/",
		AssetsDir: assets,
		NotFound:  "Missing",
		Pages: []config.PageConfig{
			{Path: "/", Component: "Home", PropsFile: propsFile, Props: map[string]any{"title": "Welcome"}, Description: "Start & more"},
			{Path: "/docs", Component: "Doc", Props: map[string]any{"heading": "Docs"}},
			{Path: "/broken", Component: "Home"},
		},
	}})

	res, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.Err() == nil || !strings.Contains(res.Err().Error(), "/broken") {
		t.Errorf("Err() = %v, want failure for /broken", res.Err())
	}
	if got := res.Routes(); len(got) != 2 || got[0] != "/" || got[1] != "/docs" {
		t.Errorf("Routes() = %v", got)
	}
	if res.Assets != 1 {
		t.Errorf("Assets = %d, want 1", res.Assets)
	}

	home := readFile(t, filepath.Join(out, "index.html"))
	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Home</title>",
		`<meta name="description" content="Start &amp; more" />`,
		`<link rel="canonical" href="https://example.com/" />`,
		"<h1>Welcome</h1>",
		"<li>a</li><li>b</li>",
	} {
		if !strings.Contains(home, want) {
			t.Errorf("index.html missing %q:\n%s", want, home)
		}
	}

	docs := readFile(t, filepath.Join(out, "docs", "index.html"))
	want := "<!DOCTYPE html><html><head><title>Docs</title></head><body><p>/docs</p></body></html>"
	if docs != want {
		t.Errorf("docs/index.html = %q, want %q", docs, want)
	}

	if _, err := os.Stat(filepath.Join(out, "broken", "index.html")); !os.IsNotExist(err) {
		t.Error("failed page was written")
	}
	if got := readFile(t, filepath.Join(out, "404.html")); !strings.Contains(got, "<p>gone</p>") {
		t.Errorf("404.html = %q", got)
	}
	if got := readFile(t, filepath.Join(out, "assets", "css", "site.css")); got != "body{}" {
		t.Errorf("copied asset = %q", got)
	}

	sitemap := readFile(t, filepath.Join(out, "sitemap.xml"))
	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`,
		"<loc>https://example.com/</loc>",
		"<loc>https://example.com/docs</loc>",
	} {
		if !strings.Contains(sitemap, want) {
			t.Errorf("sitemap.xml missing %q:\n%s", want, sitemap)
		}
	}
	if strings.Contains(sitemap, "/broken") {
		t.Error("sitemap lists a failed page")
	}

	robots := readFile(t, filepath.Join(out, "robots.txt"))
	if !strings.Contains(robots, "Sitemap: https://example.com/sitemap.xml") {
		t.Errorf("robots.txt = %q", robots)
	}
}

func TestGenerate_NoBaseURL(t *testing.T) {
	out := t.TempDir()
	g := New(previewer(t), Options{Static: config.StaticConfig{
		OutDir: out,
		Pages:  []config.PageConfig{{Path: "/", Component: "Missing", Title: "Gone"}},
	}})
	if _, err := g.Generate(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"sitemap.xml", "robots.txt"} {
		if _, err := os.Stat(filepath.Join(out, name)); !os.IsNotExist(err) {
			t.Errorf("%s written without base_url", name)
		}
	}
	if got := readFile(t, filepath.Join(out, "index.html")); !strings.Contains(got, "<title>Gone</title>") || strings.Contains(got, "canonical") {
		t.Errorf("index.html = %q", got)
	}
}

func TestGenerate_NotFoundFails(t *testing.T) {
	g := New(previewer(t), Options{Static: config.StaticConfig{OutDir: t.TempDir(), NotFound: "Nope"}})
	if _, err := g.Generate(context.Background()); err == nil {
		t.Error("Generate() expected error for unknown 404 component")
	}
}

func TestDocument(t *testing.T) {
	page := config.PageConfig{Path: "/", Component: "X"}
	tests := []struct {
		name string
		node html.Node
		want string
	}{
		{
			"full document",
			html.Elem("html").Children(html.Elem("body")),
			"<!DOCTYPE html><html><body></body></html>",
		},
		{
			"existing doctype",
			html.Fragment(html.Empty(), html.Raw("<!DOCTYPE html>"), html.Elem("html")),
			"<!DOCTYPE html><html></html>",
		},
		{
			"fragment",
			html.Text("hi"),
			`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8" /><meta name="viewport" content="width=device-width, initial-scale=1" /><title>X</title></head><body>hi</body></html>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := html.Render(document(tt.node, page, "")); got != tt.want {
				t.Errorf("document() = %q, want %q", got, tt.want)
			}
		})
	}
}
