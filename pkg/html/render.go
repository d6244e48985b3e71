package html

import (
	stdhtml "html"
	"io"
	"strings"
)

// voidElements can never contain children and always self-terminate
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement reports whether tag belongs to the HTML void element set
func IsVoidElement(tag string) bool {
	return voidElements[strings.ToLower(tag)]
}

// Escape escapes &, <, >, ' and " for use in text and attribute values
func Escape(s string) string {
	return stdhtml.EscapeString(s)
}

// renderer writes nodes depth-first and remembers the first write error
type renderer struct {
	w   io.Writer
	err error
}

func (r *renderer) write(s string) {
	if r.err != nil {
		return
	}
	_, r.err = io.WriteString(r.w, s)
}

func (r *renderer) node(n *Node) {
	if r.err != nil {
		return
	}

	switch n.Kind {
	case KindText:
		r.write(Escape(n.Text))

	case KindRaw:
		r.write(n.Text)

	case KindElement:
		r.element(n)

	case KindFragment:
		for i := range n.Kids {
			r.node(&n.Kids[i])
		}
	}
}

func (r *renderer) element(n *Node) {
	r.write("<")
	r.write(n.Tag)

	for _, a := range n.Attrs {
		r.write(" ")
		r.write(a.Name)
		switch a.Value.Kind {
		case ValueBoolean:
		case ValueList:
			r.write(`="`)
			r.write(Escape(strings.Join(a.Value.Items, " ")))
			r.write(`"`)
		default:
			r.write(`="`)
			r.write(Escape(a.Value.Str))
			r.write(`"`)
		}
	}

	if n.IsVoid() {
		r.write(" />")
		return
	}
	r.write(">")

	for i := range n.Kids {
		r.node(&n.Kids[i])
	}

	r.write("</")
	r.write(n.Tag)
	r.write(">")
}

// RenderTo serializes n into w. The only possible error comes from w.
func RenderTo(w io.Writer, n Node) error {
	r := &renderer{w: w}
	r.node(&n)
	return r.err
}

// Render serializes n to a string
func Render(n Node) string {
	var buf strings.Builder
	// strings.Builder never returns a write error
	_ = RenderTo(&buf, n)
	return buf.String()
}

// String implements fmt.Stringer
func (n Node) String() string { return Render(n) }
