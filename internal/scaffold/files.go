package scaffold

import (
	"fmt"

	"github.com/recera/ruitl/internal/config"
)

type projectFile struct {
	path    string
	content string
}

func commonFiles(opts Options, cfg *config.Config) []projectFile {
	return []projectFile{
		{"go.mod", fmt.Sprintf("module %s\n\ngo 1.23\n\nrequire %s v0.1.0\n", opts.Module, ModulePath)},
		{".gitignore", fmt.Sprintf("/%s/\n/.ruitl/\n", cfg.Static.OutDir)},
		{"README.md", readme(opts, cfg)},
	}
}

func readme(opts Options, cfg *config.Config) string {
	return fmt.Sprintf(`# %s

A ruitl project.

Templates live in %s/ and compile into the %s package:

    ruitl compile

Preview components with live reload at http://localhost:%d:

    ruitl dev

Render the pages listed in %s to %s/:

    ruitl static

Run the server:

    go run .
`, opts.Name, cfg.Build.TemplateDir, cfg.Build.Package, opts.Port, config.FileName, cfg.Static.OutDir)
}

func minimalFiles(opts Options, cfg *config.Config) []projectFile {
	return []projectFile{
		{cfg.Build.TemplateDir + "/Hello.ruitl", `component Hello {
    props {
        name: String = "World",
    }
}

ruitl Hello(name: String) {
    <div class="hello">
        <h1>Hello, {name}!</h1>
    </div>
}
`},
		{"preview.yaml", fmt.Sprintf("Hello:\n  name: %s\n", opts.Name)},
		{"main.go", mainGo(opts, cfg, "Hello", "Name")},
	}
}

func basicFiles(opts Options, cfg *config.Config) []projectFile {
	dir := cfg.Build.TemplateDir
	return []projectFile{
		{dir + "/Button.ruitl", `component Button {
    props {
        text: String,
        variant: String = "primary",
        disabled: bool = false,
    }
}

ruitl Button(text: String) {
    <button class={"btn btn-" + variant} disabled?={disabled}>{text}</button>
}
`},
		{dir + "/Card.ruitl", `component Card {
    props {
        title: String,
        body: String?,
        footer: String?,
    }
}

ruitl Card(title: String) {
    <div class="card">
        <h2 class="card-title">{title}</h2>
        if body != nil {
            <p class="card-body">{body}</p>
        }
        if footer != nil {
            <div class="card-footer">{footer}</div>
        }
    </div>
}
`},
		{dir + "/Home.ruitl", `component Home {
    props {
        title: String = "ruitl",
        features: Vec<String>,
    }
}

ruitl Home(title: String) {
    <!DOCTYPE html>
    <html lang="en">
        <head>
            <meta charset="utf-8" />
            <title>{title}</title>
        </head>
        <body>
            <h1>{title}</h1>
            <ul>
                for feature in features {
                    <li>@Card(title: feature)</li>
                }
            </ul>
            @Button(text: "Get started")
        </body>
    </html>
}
`},
		{"preview.yaml", `Button:
  text: Click me
Card:
  title: Preview card
  body: Cards render optional props only when set.
Home:
  title: ` + opts.Name + `
  features:
    - Type-safe props
    - Compiled to Go
`},
		{"main.go", mainGo(opts, cfg, "Home", "Title")},
	}
}

func mainGo(opts Options, cfg *config.Config, page, field string) string {
	pkg := cfg.Build.Package
	return fmt.Sprintf(`package main

//go:generate ruitl compile

import (
	"log/slog"
	"net/http"
	"os"

	"%[1]s/pkg/component"
	"%[1]s/pkg/html"
	"%[1]s/pkg/server"

	"%[2]s/%[3]s"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	router := server.NewRouter()
	router.SetLogger(logger)
	router.AddRoute("/", func(ctx server.Ctx) (html.Node, error) {
		props := %[3]s.Default%[4]sProps()
		if v := ctx.Query().Get("%[6]s"); v != "" {
			props.%[5]s = v
		}
		return component.Render[%[3]s.%[4]sProps](%[3]s.%[4]s{}, props, ctx.Component())
	})

	addr := ":%[7]d"
	logger.Info("listening", "addr", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
`, ModulePath, opts.Module, pkg, page, field, lowerFirst(field), opts.Port)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]|0x20) + s[1:]
}
