package component

import (
	"fmt"
	"slices"
	"sync"

	"github.com/recera/ruitl/pkg/html"
)

// Page renders a complete node tree from request data alone
type Page func(ctx *Context) (html.Node, error)

// Bind fixes the props of c, producing a Page
func Bind[P Props](c Component[P], props P) Page {
	return func(ctx *Context) (html.Node, error) {
		return Render(c, props, ctx)
	}
}

// Registry maps names to pages. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	pages map[string]Page
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{pages: make(map[string]Page)}
}

// Register adds or replaces a page
func (r *Registry) Register(name string, p Page) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages[name] = p
}

// Lookup returns the named page
func (r *Registry) Lookup(name string) (Page, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pages[name]
	return p, ok
}

// Names returns the registered names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.pages))
	for name := range r.pages {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Render renders the named page
func (r *Registry) Render(name string, ctx *Context) (html.Node, error) {
	p, ok := r.Lookup(name)
	if !ok {
		return html.Empty(), fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if ctx == nil {
		ctx = NewContext()
	}
	return p(ctx)
}
