package server

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/recera/ruitl/pkg/html"
)

// HandlerFunc renders a page
type HandlerFunc func(ctx Ctx) (html.Node, error)

// Middleware has before/after hooks around a handler
type Middleware interface {
	Before(ctx Ctx) error // return Stop() to abort chain
	After(ctx Ctx) error  // always called if Before succeeded
}

// RouteNode is a node in the radix tree
type RouteNode struct {
	segment    string
	param      bool
	catchAll   bool
	paramName  string
	paramType  string // "string", "int", "uuid"
	handler    HandlerFunc
	children   []*RouteNode
	middleware []Middleware
}

// Router manages routes and middleware
type Router struct {
	root       *RouteNode
	notFound   HandlerFunc
	errorPage  HandlerFunc
	middleware []Middleware
	layouts    *LayoutRegistry
	logger     *slog.Logger
	mu         sync.RWMutex
}

// NewRouter creates a new router instance
func NewRouter() *Router {
	return &Router{
		root:    &RouteNode{},
		layouts: NewLayoutRegistry(),
		logger:  slog.Default(),
	}
}

// SetLogger sets the logger handed to request contexts
func (r *Router) SetLogger(l *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = l
}

// Layouts returns the layout registry applied to page output
func (r *Router) Layouts() *LayoutRegistry { return r.layouts }

// AddRoute registers a page handler for a path. Segments may be static,
// [name], [name:int], [name:uuid] or a trailing [...rest].
func (r *Router) AddRoute(path string, handler HandlerFunc, middleware ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()

	node := r.root
	for _, segment := range splitPath(path) {
		node = findOrCreateChild(node, segment)
	}
	node.handler = handler
	node.middleware = middleware
}

// Use adds global middleware
func (r *Router) Use(middleware ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, middleware...)
}

// SetNotFound sets the 404 handler
func (r *Router) SetNotFound(handler HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notFound = handler
}

// SetErrorPage sets the 500 handler
func (r *Router) SetErrorPage(handler HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errorPage = handler
}

// Match finds the handler for path. A nil handler means no route matched
// and no not-found handler is set.
func (r *Router) Match(path string) (HandlerFunc, map[string]string, []Middleware, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	params := map[string]string{}
	node, ok := matchNode(r.root, splitPath(path), params)
	if !ok || node.handler == nil {
		return r.notFound, map[string]string{}, r.middleware, false
	}

	all := append([]Middleware{}, r.middleware...)
	all = append(all, node.middleware...)
	return node.handler, params, all, true
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.RLock()
	logger := r.logger
	r.mu.RUnlock()

	ctx := NewContext(w, req, logger.With("request_id", uuid.NewString()))

	handler, params, middleware, found := r.Match(req.URL.Path)
	if handler == nil {
		ctx.Text(http.StatusNotFound, "Not Found")
		return
	}
	if !found {
		ctx.Status(http.StatusNotFound)
	}
	ctx = WithParams(ctx, params)

	defer func() {
		if err := recover(); err != nil {
			ctx.Logger().Error("panic in handler", "error", err)
			r.handleError(ctx, fmt.Errorf("internal server error: %v", err))
		}
	}()

	final := handler
	for i := len(middleware) - 1; i >= 0; i-- {
		mw := middleware[i]
		next := final
		final = func(c Ctx) (html.Node, error) {
			if err := mw.Before(c); err != nil {
				return html.Empty(), err
			}
			result, err := next(c)
			if afterErr := mw.After(c); afterErr != nil {
				c.Logger().Error("error in After middleware", "error", afterErr)
			}
			return result, err
		}
	}

	node, err := final(ctx)
	switch {
	case errors.Is(err, ErrStop):
		return
	case err != nil:
		r.handleError(ctx, err)
		return
	case ctx.Written():
		return
	}

	r.writePage(ctx, node)
}

func (r *Router) writePage(ctx Ctx, node html.Node) {
	node = r.layouts.Apply(ctx.Path(), node)

	var buf bytes.Buffer
	if err := html.RenderTo(&buf, node); err != nil {
		r.handleError(ctx, fmt.Errorf("failed to render page: %w", err))
		return
	}
	if err := ctx.(*ctxImpl).writeHTML(buf.Bytes()); err != nil {
		ctx.Logger().Warn("failed to write response", "error", err)
	}
}

func findOrCreateChild(parent *RouteNode, segment string) *RouteNode {
	if strings.HasPrefix(segment, "[") && strings.HasSuffix(segment, "]") {
		def := segment[1 : len(segment)-1]

		if rest, ok := strings.CutPrefix(def, "..."); ok {
			for _, child := range parent.children {
				if child.catchAll && child.paramName == rest {
					return child
				}
			}
			node := &RouteNode{segment: segment, catchAll: true, paramName: rest, paramType: "string"}
			parent.children = append(parent.children, node)
			return node
		}

		name, typ := parseParamDef(def)
		for _, child := range parent.children {
			if child.param && child.paramName == name && child.paramType == typ {
				return child
			}
		}
		node := &RouteNode{segment: segment, param: true, paramName: name, paramType: typ}
		parent.children = append(parent.children, node)
		return node
	}

	for _, child := range parent.children {
		if !child.param && !child.catchAll && child.segment == segment {
			return child
		}
	}
	node := &RouteNode{segment: segment}
	parent.children = append(parent.children, node)
	return node
}

// matchNode prefers static segments, then params, then catch-all
func matchNode(node *RouteNode, segments []string, params map[string]string) (*RouteNode, bool) {
	if len(segments) == 0 {
		if node.handler != nil {
			return node, true
		}
		// an empty catch-all matches the bare prefix
		for _, child := range node.children {
			if child.catchAll && child.handler != nil {
				params[child.paramName] = ""
				return child, true
			}
		}
		return node, true
	}

	segment, remaining := segments[0], segments[1:]

	for _, child := range node.children {
		if !child.param && !child.catchAll && child.segment == segment {
			if result, ok := matchNode(child, remaining, params); ok && result.handler != nil {
				return result, true
			}
		}
	}

	for _, child := range node.children {
		if child.param && validateParam(segment, child.paramType) {
			params[child.paramName] = segment
			if result, ok := matchNode(child, remaining, params); ok && result.handler != nil {
				return result, true
			}
			delete(params, child.paramName)
		}
	}

	for _, child := range node.children {
		if child.catchAll {
			params[child.paramName] = strings.Join(segments, "/")
			return child, true
		}
	}
	return nil, false
}

func (r *Router) handleError(ctx Ctx, err error) {
	ctx.Logger().Error("handler error", "error", err)
	if ctx.Written() {
		return
	}
	ctx.Status(http.StatusInternalServerError)

	r.mu.RLock()
	errorPage := r.errorPage
	r.mu.RUnlock()

	if errorPage != nil {
		ctx.Component().WithData("error", err.Error())
		if node, perr := errorPage(ctx); perr == nil {
			var buf bytes.Buffer
			if html.RenderTo(&buf, node) == nil {
				ctx.(*ctxImpl).writeHTML(buf.Bytes())
				return
			}
		}
	}
	ctx.Text(http.StatusInternalServerError, "Internal Server Error")
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func parseParamDef(def string) (name, paramType string) {
	name, paramType, ok := strings.Cut(def, ":")
	if !ok {
		paramType = "string"
	}
	return name, paramType
}

func validateParam(value, paramType string) bool {
	switch paramType {
	case "int", "int64":
		if value == "" {
			return false
		}
		for _, r := range value {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	case "uuid":
		return uuid.Validate(value) == nil
	default:
		return value != ""
	}
}

// Routes lists the registered route patterns in tree order
func (r *Router) Routes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	var walk func(n *RouteNode, prefix string)
	walk = func(n *RouteNode, prefix string) {
		path := prefix
		if n.segment != "" {
			path = prefix + "/" + n.segment
		}
		if n.handler != nil {
			if path == "" {
				out = append(out, "/")
			} else {
				out = append(out, path)
			}
		}
		for _, child := range n.children {
			walk(child, path)
		}
	}
	walk(r.root, "")
	return out
}
