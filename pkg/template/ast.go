// Package template parses .ruitl source files and generates Go code from them.
package template

import "strings"

// Pos is a 1-based source position
type Pos struct {
	Line   int
	Column int
}

// File is the parsed content of one .ruitl file
type File struct {
	Filename   string
	Imports    []ImportDef
	Components []ComponentDef
	Templates  []TemplateDef
}

// ImportDef is `import [alias] "path" { Item, ... }`
type ImportDef struct {
	Alias string
	Path  string
	Items []string
	Pos   Pos
}

// Name returns the identifier the import is referred to by in Go code
func (d ImportDef) Name() string {
	if d.Alias != "" {
		return d.Alias
	}
	name := d.Path
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	// example.com/lib/v2 is imported as lib
	if len(name) > 1 && name[0] == 'v' && strings.Trim(name[1:], "0123456789") == "" {
		trimmed := strings.TrimSuffix(d.Path, "/"+name)
		if i := strings.LastIndexByte(trimmed, '/'); i >= 0 {
			name = trimmed[i+1:]
		} else {
			name = trimmed
		}
	}
	// gopkg.in/yaml.v3 is imported as yaml
	if i := strings.LastIndex(name, ".v"); i > 0 && strings.Trim(name[i+2:], "0123456789") == "" && i+2 < len(name) {
		name = name[:i]
	}
	name = strings.TrimPrefix(name, "go-")
	return strings.ReplaceAll(strings.ReplaceAll(name, "-", "_"), ".", "_")
}

// ComponentDef declares the props schema of a component
type ComponentDef struct {
	Name     string
	Props    []PropDef
	Generics []string
	Pos      Pos
}

// PropDef is one `name: Type [= default | ?]` line
type PropDef struct {
	Name     string
	Type     string
	Optional bool
	// Default is the raw default expression, empty when absent
	Default  string
	Pos      Pos
}

// HasDefault reports whether the prop declares `= expr`
func (p PropDef) HasDefault() bool { return p.Default != "" }

// TemplateDef pairs a markup body with the component of the same name
type TemplateDef struct {
	Name   string
	Params []ParamDef
	Body   Node
	Pos    Pos
}

// ParamDef is one template parameter
type ParamDef struct {
	Name string
	Type string
}

// Component finds a component definition by name
func (f *File) Component(name string) (*ComponentDef, bool) {
	for i := range f.Components {
		if f.Components[i].Name == name {
			return &f.Components[i], true
		}
	}
	return nil, false
}

// Template finds a template definition by name
func (f *File) Template(name string) (*TemplateDef, bool) {
	for i := range f.Templates {
		if f.Templates[i].Name == name {
			return &f.Templates[i], true
		}
	}
	return nil, false
}

// Node is a template body node
type Node interface {
	Position() Pos
	node()
}

// ElementNode is an HTML element
type ElementNode struct {
	Tag         string
	Attributes  []Attribute
	Children    []Node
	SelfClosing bool
	Pos         Pos
}

// TextNode is literal text
type TextNode struct {
	Text string
	Pos  Pos
}

// RawNode is passed through without escaping, such as a DOCTYPE
type RawNode struct {
	Text string
	Pos  Pos
}

// ExprNode is `{expr}` in a body
type ExprNode struct {
	Expr string
	Pos  Pos
}

// IfNode is `if cond { } else { }`. Else is nil when absent.
type IfNode struct {
	Cond string
	Then Node
	Else Node
	Pos  Pos
}

// ForNode is `for [i,] v in iterable { }`
type ForNode struct {
	Index    string
	Var      string
	Iterable string
	Body     Node
	Pos      Pos
}

// MatchNode is `match expr { pattern => { } ... }`
type MatchNode struct {
	Expr string
	Arms []MatchArm
	Pos  Pos
}

// MatchArm is one `pattern => { body }`
type MatchArm struct {
	Pattern string
	Body    Node
}

// ComponentNode is `@Name[TypeArgs](prop: expr, ...)`
type ComponentNode struct {
	Name     string
	// TypeArgs holds the raw text between brackets for generic components
	TypeArgs string
	Props    []PropValue
	Pos      Pos
}

// PropValue is one `prop: expr` inside a component invocation
type PropValue struct {
	Name string
	Expr string
}

// FragmentNode groups several nodes
type FragmentNode struct {
	Children []Node
	Pos      Pos
}

func (n *ElementNode) Position() Pos   { return n.Pos }
func (n *TextNode) Position() Pos      { return n.Pos }
func (n *RawNode) Position() Pos       { return n.Pos }
func (n *ExprNode) Position() Pos      { return n.Pos }
func (n *IfNode) Position() Pos        { return n.Pos }
func (n *ForNode) Position() Pos       { return n.Pos }
func (n *MatchNode) Position() Pos     { return n.Pos }
func (n *ComponentNode) Position() Pos { return n.Pos }
func (n *FragmentNode) Position() Pos  { return n.Pos }

func (*ElementNode) node()   {}
func (*TextNode) node()      {}
func (*RawNode) node()       {}
func (*ExprNode) node()      {}
func (*IfNode) node()        {}
func (*ForNode) node()       {}
func (*MatchNode) node()     {}
func (*ComponentNode) node() {}
func (*FragmentNode) node()  {}

// AttrKind distinguishes how an attribute value is produced
type AttrKind uint8

const (
	// AttrStatic is a literal value, `name="v"` or bare `name`
	AttrStatic AttrKind = iota
	// AttrExpression is `name={expr}`
	AttrExpression
	// AttrConditional is `name?={cond}`, present only when cond is true
	AttrConditional
)

// Attribute is one element attribute
type Attribute struct {
	Name  string
	Kind  AttrKind
	Value string
	// Bare marks an attribute written without `=`
	Bare  bool
}

// Walk calls fn for n and every descendant in pre-order. Returning false
// skips the children of that node.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch n := n.(type) {
	case *ElementNode:
		for _, c := range n.Children {
			Walk(c, fn)
		}
	case *FragmentNode:
		for _, c := range n.Children {
			Walk(c, fn)
		}
	case *IfNode:
		Walk(n.Then, fn)
		Walk(n.Else, fn)
	case *ForNode:
		Walk(n.Body, fn)
	case *MatchNode:
		for _, arm := range n.Arms {
			Walk(arm.Body, fn)
		}
	}
}
