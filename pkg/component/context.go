package component

import (
	"maps"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// Context carries request data into a render call.
// Builder methods mutate and return the receiver.
type Context struct {
	Path    string
	Query   map[string]string
	Headers map[string]string
	Env     map[string]string
	Data    map[string]any
}

// NewContext creates an empty context for path "/"
func NewContext() *Context {
	return &Context{
		Path:    "/",
		Query:   map[string]string{},
		Headers: map[string]string{},
		Env:     map[string]string{},
		Data:    map[string]any{},
	}
}

// FromRequest builds a context from an HTTP request. Only the first value of
// repeated query parameters and headers is kept. Header names are lowercased.
func FromRequest(r *http.Request) *Context {
	ctx := NewContext().WithPath(r.URL.Path)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			ctx.Query[k] = v[0]
		}
	}
	for k, v := range r.Header {
		if len(v) > 0 {
			ctx.Headers[strings.ToLower(k)] = v[0]
		}
	}
	return ctx
}

// WithPath sets the request path
func (c *Context) WithPath(path string) *Context {
	c.Path = path
	return c
}

// WithQuery sets one query parameter
func (c *Context) WithQuery(key, value string) *Context {
	c.Query[key] = value
	return c
}

// WithHeader sets one header. Names are case-insensitive.
func (c *Context) WithHeader(key, value string) *Context {
	c.Headers[strings.ToLower(key)] = value
	return c
}

// WithEnv sets one environment entry
func (c *Context) WithEnv(key, value string) *Context {
	c.Env[key] = value
	return c
}

// WithOSEnv copies the named process environment variables that are set
func (c *Context) WithOSEnv(keys ...string) *Context {
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok {
			c.Env[k] = v
		}
	}
	return c
}

// WithData attaches an arbitrary value
func (c *Context) WithData(key string, value any) *Context {
	c.Data[key] = value
	return c
}

// QueryParam returns a query parameter or ""
func (c *Context) QueryParam(key string) string { return c.Query[key] }

// Header returns a header value or ""
func (c *Context) Header(key string) string { return c.Headers[strings.ToLower(key)] }

// Value returns attached data
func (c *Context) Value(key string) (any, bool) {
	v, ok := c.Data[key]
	return v, ok
}

// Clone returns a deep copy of the maps so nested renders can diverge
func (c *Context) Clone() *Context {
	return &Context{
		Path:    c.Path,
		Query:   maps.Clone(c.Query),
		Headers: maps.Clone(c.Headers),
		Env:     maps.Clone(c.Env),
		Data:    maps.Clone(c.Data),
	}
}

// URL rebuilds path and query
func (c *Context) URL() string {
	if len(c.Query) == 0 {
		return c.Path
	}
	q := url.Values{}
	for k, v := range c.Query {
		q.Set(k, v)
	}
	return c.Path + "?" + q.Encode()
}
