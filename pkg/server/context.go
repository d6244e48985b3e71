package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/recera/ruitl/pkg/component"
)

var (
	// ErrStop is a sentinel error used by middleware to stop the chain
	ErrStop = errors.New("ruitl: stop middleware chain")
)

// Stop returns the sentinel error to halt middleware chain execution
func Stop() error {
	return ErrStop
}

// Ctx is passed through routing, middleware and page handlers
type Ctx interface {
	// === Request ===
	Request() *http.Request
	Path() string
	Method() string
	Query() url.Values
	Param(key string) string // route param, "" if missing

	// === Response ===
	Status(code int)
	StatusCode() int
	Header() http.Header
	SetHeader(key, val string)
	Redirect(url string, code int)
	JSON(code int, v any) error
	Text(code int, msg string) error
	Written() bool

	// Component returns the render context handed to components
	Component() *component.Context

	Logger() *slog.Logger
}

type ctxImpl struct {
	req        *http.Request
	w          http.ResponseWriter
	params     map[string]string
	statusCode int
	written    bool
	logger     *slog.Logger
	comp       *component.Context
	mu         sync.RWMutex
}

// NewContext creates a new context for handling a request
func NewContext(w http.ResponseWriter, r *http.Request, logger *slog.Logger) Ctx {
	if logger == nil {
		logger = slog.Default()
	}
	return &ctxImpl{
		req:        r,
		w:          w,
		params:     map[string]string{},
		statusCode: http.StatusOK,
		logger:     logger.With("path", r.URL.Path, "method", r.Method),
		comp:       component.FromRequest(r),
	}
}

// WithParams sets the route parameters of ctx. Params are also exposed to
// components as context data under "param.<name>".
func WithParams(ctx Ctx, params map[string]string) Ctx {
	if impl, ok := ctx.(*ctxImpl); ok {
		impl.mu.Lock()
		impl.params = params
		for k, v := range params {
			impl.comp.WithData("param."+k, v)
		}
		impl.mu.Unlock()
	}
	return ctx
}

func (c *ctxImpl) Request() *http.Request { return c.req }

func (c *ctxImpl) Path() string { return c.req.URL.Path }

func (c *ctxImpl) Method() string { return c.req.Method }

func (c *ctxImpl) Query() url.Values { return c.req.URL.Query() }

func (c *ctxImpl) Param(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.params[key]
}

func (c *ctxImpl) Status(code int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.written {
		c.logger.Warn("attempted to set status after headers written", "code", code)
		return
	}
	c.statusCode = code
}

func (c *ctxImpl) StatusCode() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.statusCode
}

func (c *ctxImpl) Header() http.Header { return c.w.Header() }

func (c *ctxImpl) SetHeader(key, val string) { c.w.Header().Set(key, val) }

func (c *ctxImpl) Written() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.written
}

func (c *ctxImpl) Redirect(url string, code int) {
	c.markWritten(code)
	http.Redirect(c.w, c.req, url, code)
}

func (c *ctxImpl) JSON(code int, v any) error {
	c.markWritten(code)
	c.w.Header().Set("Content-Type", "application/json")
	c.w.WriteHeader(code)
	return json.NewEncoder(c.w).Encode(v)
}

func (c *ctxImpl) Text(code int, msg string) error {
	c.markWritten(code)
	c.w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.w.WriteHeader(code)
	_, err := c.w.Write([]byte(msg))
	return err
}

// writeHTML sends a rendered page with the current status
func (c *ctxImpl) writeHTML(body []byte) error {
	code := c.StatusCode()
	c.markWritten(code)
	c.w.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.w.WriteHeader(code)
	_, err := c.w.Write(body)
	return err
}

func (c *ctxImpl) markWritten(code int) {
	c.mu.Lock()
	c.statusCode = code
	c.written = true
	c.mu.Unlock()
}

func (c *ctxImpl) Component() *component.Context { return c.comp }

func (c *ctxImpl) Logger() *slog.Logger { return c.logger }
