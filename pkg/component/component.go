// Package component holds the runtime contract between generated
// templates and the code that renders them.
package component

import (
	"fmt"

	"github.com/recera/ruitl/pkg/html"
)

// Props is implemented by every generated props struct
type Props interface {
	Validate() error
}

// Component renders props of type P into a node tree
type Component[P Props] interface {
	Render(props P, ctx *Context) (html.Node, error)
}

// Func adapts a plain function to the Component interface
type Func[P Props] func(props P, ctx *Context) (html.Node, error)

// Render calls f
func (f Func[P]) Render(props P, ctx *Context) (html.Node, error) { return f(props, ctx) }

// EmptyProps is the props type for components that take no input
type EmptyProps struct{}

// Validate always succeeds
func (EmptyProps) Validate() error { return nil }

// Render validates props and then renders c. A nil ctx is replaced by an
// empty context.
func Render[P Props](c Component[P], props P, ctx *Context) (html.Node, error) {
	if err := props.Validate(); err != nil {
		return html.Empty(), fmt.Errorf("%w: %w", ErrInvalidProps, err)
	}
	if ctx == nil {
		ctx = NewContext()
	}
	return c.Render(props, ctx)
}

// RenderString renders c and serializes the result
func RenderString[P Props](c Component[P], props P, ctx *Context) (string, error) {
	node, err := Render(c, props, ctx)
	if err != nil {
		return "", err
	}
	return html.Render(node), nil
}
