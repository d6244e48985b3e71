package devserver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/recera/ruitl/internal/build"
)

// debounceDelay coalesces bursts of editor writes into one rebuild
const debounceDelay = 100 * time.Millisecond

// Watch starts watching the template tree and the preview data file
func (s *Server) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	err = filepath.WalkDir(s.opts.TemplateDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != s.opts.TemplateDir && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", s.opts.TemplateDir, err)
	}

	if s.opts.PreviewData != "" {
		// editors replace files, so watch the parent directory
		dir := filepath.Dir(s.opts.PreviewData)
		if err := watcher.Add(dir); err != nil {
			s.logger.Warn("cannot watch preview data", "path", s.opts.PreviewData, "error", err)
		}
	}

	s.watcher = watcher
	return nil
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}

// relevant reports whether an event should trigger a rebuild
func (s *Server) relevant(event fsnotify.Event) bool {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return false
	}
	if filepath.Ext(event.Name) == build.Ext {
		return true
	}
	return s.opts.PreviewData != "" && filepath.Clean(event.Name) == filepath.Clean(s.opts.PreviewData)
}

func (s *Server) watchFiles(ctx context.Context) {
	debounce := time.NewTimer(0)
	<-debounce.C
	pending := map[string]fsnotify.Op{}

	for {
		select {
		case <-ctx.Done():
			debounce.Stop()
			return

		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !skipDir(info.Name()) {
					s.watchNewDir(event.Name)
					pending[event.Name] |= event.Op
					debounce.Reset(debounceDelay)
					continue
				}
			}
			if !s.relevant(event) {
				continue
			}
			s.logger.Debug("file changed", "file", event.Name, "op", event.Op.String())
			pending[event.Name] |= event.Op
			debounce.Reset(debounceDelay)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watcher error", "error", err)

		case <-debounce.C:
			if len(pending) == 0 {
				continue
			}
			s.handleChanges(ctx, pending)
			pending = map[string]fsnotify.Op{}
		}
	}
}

// watchNewDir adds a directory created after startup, including the
// directories below it
func (s *Server) watchNewDir(dir string) {
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != dir && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := s.watcher.Add(path); err != nil {
			s.logger.Warn("cannot watch directory", "dir", path, "error", err)
		}
		return nil
	})
}

func (s *Server) handleChanges(ctx context.Context, changes map[string]fsnotify.Op) {
	removed := false
	for path, op := range changes {
		if s.opts.Cache != nil && filepath.Ext(path) == build.Ext {
			s.opts.Cache.InvalidateByDependency(path)
		}
		if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
			removed = true
		}
	}
	s.logger.Info("rebuilding", "changes", len(changes))

	if err := s.Reload(ctx); err != nil {
		return
	}

	if removed && s.opts.Generate {
		files, err := build.Discover(s.opts.TemplateDir)
		if err != nil {
			return
		}
		cleaned, err := s.builder.Clean(files)
		if err != nil {
			s.logger.Warn("failed to remove stale generated files", "error", err)
		}
		for _, f := range cleaned {
			s.logger.Info("removed stale generated file", "file", f)
		}
	}
}
