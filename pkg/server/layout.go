package server

import (
	"strings"
	"sync"

	"github.com/recera/ruitl/pkg/html"
)

// Layout wraps page content
type Layout interface {
	Wrap(child html.Node) html.Node
}

// LayoutFunc adapts a function to Layout
type LayoutFunc func(child html.Node) html.Node

// Wrap implements Layout
func (f LayoutFunc) Wrap(child html.Node) html.Node { return f(child) }

// LayoutRegistry maps path patterns to layouts
type LayoutRegistry struct {
	mu      sync.RWMutex
	layouts map[string]Layout
}

// NewLayoutRegistry creates an empty registry
func NewLayoutRegistry() *LayoutRegistry {
	return &LayoutRegistry{layouts: map[string]Layout{}}
}

// Register registers a layout for a pattern: an exact path, a prefix
// ending in "*" or "/", or "/" as the root fallback
func (r *LayoutRegistry) Register(pattern string, layout Layout) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layouts[pattern] = layout
}

// RegisterFunc registers a layout function
func (r *LayoutRegistry) RegisterFunc(pattern string, fn func(child html.Node) html.Node) {
	r.Register(pattern, LayoutFunc(fn))
}

// Get returns the layout for path. Exact patterns win, then the longest
// matching prefix, then the root layout.
func (r *LayoutRegistry) Get(path string) Layout {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if l, ok := r.layouts[path]; ok {
		return l
	}

	var best Layout
	bestLen := -1
	for pattern, l := range r.layouts {
		prefix, ok := prefixOf(pattern)
		if ok && strings.HasPrefix(path, prefix) && len(prefix) > bestLen {
			best, bestLen = l, len(prefix)
		}
	}
	if best != nil {
		return best
	}
	return r.layouts["/"]
}

// Apply wraps content with the layout for path, if any
func (r *LayoutRegistry) Apply(path string, content html.Node) html.Node {
	if l := r.Get(path); l != nil {
		return l.Wrap(content)
	}
	return content
}

func prefixOf(pattern string) (string, bool) {
	switch {
	case strings.HasSuffix(pattern, "*"):
		return strings.TrimSuffix(pattern, "*"), true
	case len(pattern) > 1 && strings.HasSuffix(pattern, "/"):
		return pattern, true
	}
	return "", false
}
