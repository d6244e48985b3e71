package html

import "slices"

// Kind represents the type of a Node
type Kind uint8

const (
	// KindEmpty renders nothing
	KindEmpty Kind = iota
	// KindText is escaped text content
	KindText
	// KindRaw is emitted byte-for-byte without escaping
	KindRaw
	// KindElement is an HTML element with attributes and children
	KindElement
	// KindFragment is an ordered list of nodes without a wrapper
	KindFragment
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindText:
		return "text"
	case KindRaw:
		return "raw"
	case KindElement:
		return "element"
	case KindFragment:
		return "fragment"
	}
	return "unknown"
}

// ValueKind represents the type of an attribute value
type ValueKind uint8

const (
	// ValueString prints name="escaped value"
	ValueString ValueKind = iota
	// ValueBoolean prints the bare attribute name
	ValueBoolean
	// ValueList joins its entries with a single space
	ValueList
)

// AttrValue is the value attached to an attribute name
type AttrValue struct {
	Kind  ValueKind
	Str   string
	Items []string
}

// Value creates a string attribute value
func Value(s string) AttrValue { return AttrValue{Kind: ValueString, Str: s} }

// Boolean creates a bare attribute value
func Boolean() AttrValue { return AttrValue{Kind: ValueBoolean} }

// List creates a space separated attribute value
func List(items ...string) AttrValue { return AttrValue{Kind: ValueList, Items: items} }

// Attr is a single name/value pair on an element
type Attr struct {
	Name  string
	Value AttrValue
}

// Node is an immutable HTML tree node. Builder methods return modified copies.
type Node struct {
	// Kind determines which of the remaining fields are meaningful
	Kind Kind

	// Text holds the content of KindText and KindRaw nodes
	Text string

	// Tag is the element tag name, only for KindElement
	Tag string

	// Attrs keeps first-insertion order; setting an existing name replaces its value
	Attrs []Attr

	// Kids holds element children or fragment entries
	Kids []Node

	// SelfClosing forces "<tag />" output even for non-void tags
	SelfClosing bool
}

// Text creates an escaped text node
func Text(s string) Node { return Node{Kind: KindText, Text: s} }

// Raw creates a node whose content is written unescaped.
// Callers are responsible for the safety of the content.
func Raw(s string) Node { return Node{Kind: KindRaw, Text: s} }

// Empty creates a node that renders nothing
func Empty() Node { return Node{Kind: KindEmpty} }

// Fragment groups nodes without a wrapper element
func Fragment(kids ...Node) Node {
	if kids == nil {
		kids = []Node{}
	}
	return Node{Kind: KindFragment, Kids: kids}
}

// Elem creates an element node
func Elem(tag string) Node { return Node{Kind: KindElement, Tag: tag} }

// SelfClosing creates an element that always renders as "<tag />"
func SelfClosing(tag string) Node {
	return Node{Kind: KindElement, Tag: tag, SelfClosing: true}
}

// Set returns a copy of n with the attribute set. Last write wins.
func (n Node) Set(name string, v AttrValue) Node {
	attrs := slices.Clone(n.Attrs)
	for i := range attrs {
		if attrs[i].Name == name {
			attrs[i].Value = v
			n.Attrs = attrs
			return n
		}
	}
	n.Attrs = append(attrs, Attr{Name: name, Value: v})
	return n
}

// Attr sets a string attribute
func (n Node) Attr(name, value string) Node { return n.Set(name, Value(value)) }

// BoolAttr sets a bare attribute
func (n Node) BoolAttr(name string) Node { return n.Set(name, Boolean()) }

// ListAttr sets a space separated attribute
func (n Node) ListAttr(name string, items ...string) Node {
	return n.Set(name, List(items...))
}

// Class is shorthand for ListAttr("class", ...)
func (n Node) Class(names ...string) Node { return n.ListAttr("class", names...) }

// AttrIf sets a bare attribute only when cond is true
func (n Node) AttrIf(name string, cond bool) Node {
	if !cond {
		return n
	}
	return n.BoolAttr(name)
}

// Children appends kids to an element or fragment
func (n Node) Children(kids ...Node) Node {
	merged := make([]Node, 0, len(n.Kids)+len(kids))
	merged = append(merged, n.Kids...)
	n.Kids = append(merged, kids...)
	return n
}

// Get returns the value of the named attribute
func (n Node) Get(name string) (AttrValue, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return AttrValue{}, false
}

// IsVoid reports whether the element renders without children or closing tag
func (n Node) IsVoid() bool {
	return n.Kind == KindElement && (n.SelfClosing || IsVoidElement(n.Tag))
}

// IsEmpty reports whether the node produces no output.
// Elements are never empty, whatever their children.
func (n Node) IsEmpty() bool {
	switch n.Kind {
	case KindEmpty:
		return true
	case KindText, KindRaw:
		return n.Text == ""
	case KindFragment:
		for _, kid := range n.Kids {
			if !kid.IsEmpty() {
				return false
			}
		}
		return true
	}
	return false
}

// TextContent concatenates the unescaped text of n and its descendants
func (n Node) TextContent() string {
	switch n.Kind {
	case KindText, KindRaw:
		return n.Text
	case KindElement, KindFragment:
		if n.IsVoid() {
			return ""
		}
		var out []byte
		for _, kid := range n.Kids {
			out = append(out, kid.TextContent()...)
		}
		return string(out)
	}
	return ""
}
