package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"

	"github.com/recera/ruitl/cmd/ruitl/internal/ui"
	"github.com/recera/ruitl/internal/cache"
	"github.com/recera/ruitl/internal/config"
)

// app holds state shared by the commands
type app struct {
	root    string
	verbose bool
	noColor bool

	out    io.Writer
	con    *console
	logger *slog.Logger
}

func (a *app) setup(out, errOut io.Writer) {
	a.out = out
	a.con = newConsole(errOut, !a.noColor && isTerminal(errOut))

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))
}

func (a *app) console() *console {
	if a.con == nil {
		a.setup(os.Stdout, os.Stderr)
	}
	return a.con
}

// loadConfig reads ruitl.toml and makes its paths absolute
func (a *app) loadConfig() (*config.Config, error) {
	root, err := filepath.Abs(a.root)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(root, config.FileName)); err != nil {
		a.logger.Debug("no project file, using defaults", "dir", root)
	}
	cfg.Resolve(root)
	return cfg, nil
}

// openCache opens the compile cache configured in cfg, if any
func (a *app) openCache(cfg *config.Config, disabled bool) *cache.Cache {
	if disabled || cfg.Build.CacheDir == "" {
		return nil
	}
	cc := cache.DefaultConfig(cfg.Build.CacheDir)
	cc.Logger = a.logger
	c, err := cache.New(cc)
	if err != nil {
		a.console().Warn("compile cache disabled: %v", err)
		return nil
	}
	return c
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && ui.IsTerminal(f)
}

// console prints styled status lines
type console struct {
	w     io.Writer
	color bool
}

func newConsole(w io.Writer, color bool) *console {
	return &console{w: w, color: color}
}

func (c *console) print(style lipgloss.Style, prefix, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if c.color {
		prefix = style.Render(prefix)
	}
	fmt.Fprintf(c.w, "%s %s\n", prefix, msg)
}

func (c *console) Info(format string, args ...any) {
	c.print(ui.InfoStyle, "•", format, args...)
}

func (c *console) Success(format string, args ...any) {
	c.print(ui.SuccessStyle, "✓", format, args...)
}

func (c *console) Warn(format string, args ...any) {
	c.print(ui.WarnStyle, "!", format, args...)
}

func (c *console) Error(format string, args ...any) {
	c.print(ui.ErrorStyle, "✗", format, args...)
}

func (c *console) Detail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if c.color {
		msg = ui.MutedStyle.Render(msg)
	}
	fmt.Fprintf(c.w, "  %s\n", msg)
}
