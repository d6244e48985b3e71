package template

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/printer"
	"go/token"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// DefaultPackage is the package name used when Options.Package is empty
	DefaultPackage = "components"

	htmlImport      = "github.com/recera/ruitl/pkg/html"
	componentImport = "github.com/recera/ruitl/pkg/component"
)

// Options control code generation
type Options struct {
	// Filename is used in diagnostics and in the generated header
	Filename string

	// Package is the Go package name of the generated file
	Package string

	// Siblings are components declared in other files of the same output
	// package. They may be invoked without an import.
	Siblings []ComponentDef
}

// Generator lowers one parsed file to Go source. A Generator is used for a
// single Generate call.
type Generator struct {
	file  *File
	opts  Options
	scope *scope

	// callable holds every component an @Name invocation may refer to
	callable map[string]callee
}

type callee struct {
	def *ComponentDef
	// pkg is empty for components in the output package
	pkg string
}

type propInfo struct {
	def    PropDef
	field  string
	goType string
}

// NewGenerator creates a generator for file
func NewGenerator(file *File, opts Options) *Generator {
	if opts.Package == "" {
		opts.Package = DefaultPackage
	}
	if opts.Filename == "" {
		opts.Filename = file.Filename
	}
	return &Generator{
		file:     file,
		opts:     opts,
		scope:    newScope(file.Imports),
		callable: map[string]callee{},
	}
}

// Generate lowers file to gofmt-formatted Go source
func Generate(file *File, opts Options) ([]byte, error) {
	return NewGenerator(file, opts).Generate()
}

// Generate produces the source. No partial output is returned on error.
func (g *Generator) Generate() ([]byte, error) {
	if err := g.checkPairs(); err != nil {
		return nil, err
	}
	if err := g.checkImports(); err != nil {
		return nil, err
	}

	for i := range g.opts.Siblings {
		def := &g.opts.Siblings[i]
		g.callable[def.Name] = callee{def: def}
	}
	for i := range g.file.Components {
		def := &g.file.Components[i]
		g.callable[def.Name] = callee{def: def}
	}
	for _, imp := range g.file.Imports {
		for _, item := range imp.Items {
			if _, ok := g.callable[item]; !ok {
				g.callable[item] = callee{pkg: imp.Name()}
			}
		}
	}

	var body bytes.Buffer
	for i := range g.file.Components {
		def := &g.file.Components[i]
		tmpl, _ := g.file.Template(def.Name)
		cg := &componentGen{g: g, def: def, tmpl: tmpl, props: map[string]*propInfo{}, locals: map[string]int{}}
		if err := cg.generate(&body); err != nil {
			return nil, err
		}
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "// Code generated by ruitl from %s. DO NOT EDIT.\n\n", filepath.Base(g.sourceName()))
	fmt.Fprintf(&out, "package %s\n\n", g.opts.Package)
	out.WriteString("import (\n")
	fmt.Fprintf(&out, "\t%q\n\t%q\n", componentImport, htmlImport)
	for _, imp := range g.file.Imports {
		name := imp.Name()
		switch {
		case !g.scope.used[name]:
			fmt.Fprintf(&out, "\t_ %q\n", imp.Path)
		case imp.Alias != "" || name != path.Base(imp.Path):
			fmt.Fprintf(&out, "\t%s %q\n", name, imp.Path)
		default:
			fmt.Fprintf(&out, "\t%q\n", imp.Path)
		}
	}
	out.WriteString(")\n")
	out.Write(body.Bytes())

	src, err := format.Source(out.Bytes())
	if err != nil {
		return nil, g.errorf("", Pos{}, "generated code is not valid Go: %v", err)
	}
	return src, nil
}

func (g *Generator) sourceName() string {
	if g.opts.Filename == "" {
		return "input.ruitl"
	}
	return g.opts.Filename
}

func (g *Generator) checkPairs() error {
	seen := map[string]bool{}
	for _, c := range g.file.Components {
		if seen[c.Name] {
			return g.errorf(c.Name, c.Pos, "duplicate component definition")
		}
		seen[c.Name] = true
		if _, ok := g.file.Template(c.Name); !ok {
			return g.errorf(c.Name, c.Pos, "component %q has no corresponding template definition", c.Name)
		}
	}

	seen = map[string]bool{}
	for _, t := range g.file.Templates {
		if seen[t.Name] {
			return g.errorf(t.Name, t.Pos, "duplicate template definition")
		}
		seen[t.Name] = true
		if _, ok := g.file.Component(t.Name); !ok {
			return g.errorf(t.Name, t.Pos, "template %q has no corresponding component definition", t.Name)
		}
	}
	return nil
}

func (g *Generator) checkImports() error {
	seen := map[string]string{}
	for _, imp := range g.file.Imports {
		name := imp.Name()
		if !token.IsIdentifier(name) {
			return g.errorf("", imp.Pos, "import %q needs an alias: %s is not a Go identifier", imp.Path, name)
		}
		if name == "html" || name == "component" {
			return g.errorf("", imp.Pos, "import name %s conflicts with the ruitl runtime; add an alias", name)
		}
		if prev, ok := seen[name]; ok && prev != imp.Path {
			return g.errorf("", imp.Pos, "import name %s is used by both %q and %q", name, prev, imp.Path)
		}
		seen[name] = imp.Path
	}
	return nil
}

func (g *Generator) errorf(component string, pos Pos, format string, args ...any) error {
	return &GenerationError{
		Filename:  g.opts.Filename,
		Component: component,
		Pos:       pos,
		Msg:       fmt.Sprintf(format, args...),
	}
}

// componentGen emits the declarations of one component
type componentGen struct {
	g     *Generator
	def   *ComponentDef
	tmpl  *TemplateDef
	props map[string]*propInfo
	order []*propInfo

	// locals counts loop variables in scope that shadow props or imports
	locals map[string]int

	typeParams []string
	typeNames  []string

	// invokes is set when the body calls another component
	invokes bool
}

func (c *componentGen) errorf(pos Pos, format string, args ...any) error {
	return c.g.errorf(c.def.Name, pos, format, args...)
}

func (c *componentGen) generate(w *bytes.Buffer) error {
	name := c.def.Name
	if !ast.IsExported(name) {
		return c.errorf(c.def.Pos, "component name must start with an upper case letter")
	}

	c.g.scope.typeParams = map[string]bool{}
	for _, tp := range c.def.Generics {
		tname, constraint, _ := strings.Cut(tp, " ")
		constraint = strings.TrimSpace(constraint)
		if constraint == "" {
			constraint = "any"
		} else {
			resolved, err := c.g.scope.resolveType(constraint)
			if err != nil {
				return c.errorf(c.def.Pos, "unresolvable constraint for %s: %v", tname, err)
			}
			constraint = resolved
		}
		c.g.scope.typeParams[tname] = true
		c.typeParams = append(c.typeParams, tname+" "+constraint)
		c.typeNames = append(c.typeNames, tname)
	}

	fields := map[string]string{}
	for _, pd := range c.def.Props {
		if _, dup := c.props[pd.Name]; dup {
			return c.errorf(pd.Pos, "duplicate prop %q", pd.Name)
		}
		if err := checkLocalName(pd.Name); err != nil {
			return c.errorf(pd.Pos, "invalid prop name: %v", err)
		}
		if _, clash := c.g.scope.packages[pd.Name]; clash {
			return c.errorf(pd.Pos, "prop %q shadows an imported package", pd.Name)
		}

		goType, err := c.g.scope.resolveType(pd.Type)
		if err != nil {
			return c.errorf(pd.Pos, "unresolvable type %q for prop %s: %v", pd.Type, pd.Name, err)
		}
		if pd.Optional {
			goType = "*" + goType
		}

		field := exportName(pd.Name)
		if other, clash := fields[field]; clash {
			return c.errorf(pd.Pos, "props %q and %q both map to field %s", other, pd.Name, field)
		}
		fields[field] = pd.Name

		info := &propInfo{def: pd, field: field, goType: goType}
		c.props[pd.Name] = info
		c.order = append(c.order, info)
	}

	for _, param := range c.tmpl.Params {
		if _, err := c.g.scope.resolveType(param.Type); err != nil {
			return c.errorf(c.tmpl.Pos, "unresolvable type %q for parameter %s: %v", param.Type, param.Name, err)
		}
	}

	decl := c.propsType()
	inst := decl
	tparams := ""
	if len(c.typeNames) > 0 {
		tparams = "[" + strings.Join(c.typeParams, ", ") + "]"
		inst = decl + "[" + strings.Join(c.typeNames, ", ") + "]"
	}

	// props struct
	fmt.Fprintf(w, "\n// %s holds the props of the %s component.\n", decl, name)
	fmt.Fprintf(w, "type %s%s struct {\n", decl, tparams)
	for _, p := range c.order {
		fmt.Fprintf(w, "\t%s %s\n", p.field, p.goType)
	}
	w.WriteString("}\n\n")

	// validation hook
	if len(c.typeNames) > 0 {
		// one hook per instantiation, matched by its func type
		fmt.Fprintf(w, "// validate%s holds the hooks registered with Set%sValidator.\n", decl, decl)
		fmt.Fprintf(w, "var validate%s []any\n\n", decl)
		fmt.Fprintf(w, "// Set%sValidator registers fn as the validation hook for %s.\n", decl, inst)
		fmt.Fprintf(w, "func Set%sValidator%s(fn func(%s) error) {\n", decl, tparams, inst)
		fmt.Fprintf(w, "\tvalidate%s = append(validate%s, fn)\n}\n\n", decl, decl)
		fmt.Fprintf(w, "// Validate checks the props before rendering.\n")
		fmt.Fprintf(w, "func (p %s) Validate() error {\n", inst)
		fmt.Fprintf(w, "\tfor _, h := range validate%s {\n", decl)
		fmt.Fprintf(w, "\t\tif fn, ok := h.(func(%s) error); ok {\n", inst)
		w.WriteString("\t\t\tif err := fn(p); err != nil {\n\t\t\t\treturn err\n\t\t\t}\n\t\t}\n\t}\n\treturn nil\n}\n\n")
	} else {
		fmt.Fprintf(w, "// validate%s is called by Validate when set.\n", decl)
		fmt.Fprintf(w, "var validate%s func(%s) error\n\n", decl, decl)
		fmt.Fprintf(w, "// Validate checks the props before rendering.\n")
		fmt.Fprintf(w, "func (p %s) Validate() error {\n", inst)
		fmt.Fprintf(w, "\tif validate%s != nil {\n\t\treturn validate%s(p)\n\t}\n\treturn nil\n}\n\n", decl, decl)
	}

	// defaults
	fmt.Fprintf(w, "// Default%s returns props with the declared defaults applied.\n", decl)
	fmt.Fprintf(w, "func Default%s%s() %s {\n\treturn %s{\n", decl, tparams, inst, inst)
	for _, p := range c.order {
		if !p.def.HasDefault() {
			continue
		}
		val, _, err := c.expr(p.def.Default, p.def.Pos)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\t\t%s: %s,\n", p.field, val)
	}
	w.WriteString("\t}\n}\n\n")

	// render
	body, err := c.node(c.tmpl.Body)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "// %s renders the %s template.\n", name, name)
	fmt.Fprintf(w, "type %s%s struct{}\n\n", name, tparams)
	recv := name
	if len(c.typeNames) > 0 {
		recv = name + "[" + strings.Join(c.typeNames, ", ") + "]"
	}
	fmt.Fprintf(w, "// Render builds the node tree for props.\n")
	fmt.Fprintf(w, "func (%s) Render(props %s, ctx *component.Context) (html.Node, error) {\n", recv, inst)
	for _, p := range c.order {
		fmt.Fprintf(w, "\t%s := props.%s\n\t_ = %s\n", p.def.Name, p.field, p.def.Name)
	}
	if c.invokes {
		w.WriteString("\tvar renderErr error\n")
	}
	fmt.Fprintf(w, "\tnode := %s\n", body)
	if c.invokes {
		w.WriteString("\tif renderErr != nil {\n\t\treturn html.Empty(), renderErr\n\t}\n")
	}
	w.WriteString("\treturn node, nil\n}\n")
	return nil
}

func (c *componentGen) propsType() string { return c.def.Name + "Props" }

// node returns a Go expression of type html.Node for n
func (c *componentGen) node(n Node) (string, error) {
	switch n := n.(type) {
	case nil:
		return "html.Empty()", nil

	case *TextNode:
		return "html.Text(" + strconv.Quote(n.Text) + ")", nil

	case *RawNode:
		return "html.Raw(" + strconv.Quote(n.Text) + ")", nil

	case *ExprNode:
		e, p, err := c.expr(n.Expr, n.Pos)
		if err != nil {
			return "", err
		}
		if p != nil && p.def.Optional {
			e = "html.Deref(" + e + ")"
		}
		return "html.Embed(" + e + ")", nil

	case *ElementNode:
		return c.element(n)

	case *FragmentNode:
		kids, err := c.nodes(n.Children)
		if err != nil {
			return "", err
		}
		if len(kids) == 0 {
			return "html.Fragment()", nil
		}
		return "html.Fragment(\n" + strings.Join(kids, ",\n") + ",\n)", nil

	case *IfNode:
		return c.ifNode(n)

	case *ForNode:
		return c.forNode(n)

	case *MatchNode:
		return c.matchNode(n)

	case *ComponentNode:
		return c.invocation(n)
	}
	return "", c.errorf(n.Position(), "unsupported node %T", n)
}

func (c *componentGen) nodes(ns []Node) ([]string, error) {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		s, err := c.node(n)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (c *componentGen) element(n *ElementNode) (string, error) {
	var sb strings.Builder
	if n.SelfClosing {
		fmt.Fprintf(&sb, "html.SelfClosing(%q)", n.Tag)
	} else {
		fmt.Fprintf(&sb, "html.Elem(%q)", n.Tag)
	}

	for _, a := range n.Attributes {
		switch a.Kind {
		case AttrStatic:
			if a.Bare {
				fmt.Fprintf(&sb, ".BoolAttr(%q)", a.Name)
			} else {
				fmt.Fprintf(&sb, ".Attr(%q, %s)", a.Name, strconv.Quote(a.Value))
			}

		case AttrExpression:
			e, p, err := c.expr(a.Value, n.Pos)
			if err != nil {
				return "", err
			}
			if p != nil && p.def.Optional {
				e = "html.Deref(" + e + ")"
			}
			fmt.Fprintf(&sb, ".Attr(%q, html.Display(%s))", a.Name, e)

		case AttrConditional:
			e, p, err := c.expr(a.Value, n.Pos)
			if err != nil {
				return "", err
			}
			if p != nil && p.def.Optional {
				e = "html.Deref(" + e + ")"
			}
			fmt.Fprintf(&sb, ".AttrIf(%q, %s)", a.Name, e)
		}
	}

	if n.SelfClosing || len(n.Children) == 0 {
		return sb.String(), nil
	}

	kids, err := c.nodes(n.Children)
	if err != nil {
		return "", err
	}
	sb.WriteString(".Children(\n")
	sb.WriteString(strings.Join(kids, ",\n"))
	sb.WriteString(",\n)")
	return sb.String(), nil
}

func (c *componentGen) ifNode(n *IfNode) (string, error) {
	cond, _, err := c.expr(n.Cond, n.Pos)
	if err != nil {
		return "", err
	}
	then, err := c.node(n.Then)
	if err != nil {
		return "", err
	}
	els := "html.Empty()"
	if n.Else != nil {
		if els, err = c.node(n.Else); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("func() html.Node {\nif %s {\nreturn %s\n}\nreturn %s\n}()", cond, then, els), nil
}

func (c *componentGen) forNode(n *ForNode) (string, error) {
	iter, _, err := c.expr(n.Iterable, n.Pos)
	if err != nil {
		return "", err
	}

	for _, v := range []string{n.Index, n.Var} {
		if v == "" || v == "_" {
			continue
		}
		if err := checkLocalName(v); err != nil {
			return "", c.errorf(n.Pos, "invalid loop variable: %v", err)
		}
	}

	c.pushLocal(n.Index, n.Var)
	body, err := c.node(n.Body)
	c.popLocal(n.Index, n.Var)
	if err != nil {
		return "", err
	}

	index := n.Index
	if index == "" {
		index = "_"
	}
	var header string
	switch {
	case index == "_" && n.Var == "_":
		header = "for range " + iter
	default:
		header = fmt.Sprintf("for %s, %s := range %s", index, n.Var, iter)
	}

	var sb strings.Builder
	sb.WriteString("func() html.Node {\nruitlNodes := []html.Node{}\n")
	sb.WriteString(header + " {\n")
	for _, v := range []string{index, n.Var} {
		if v != "_" {
			sb.WriteString("_ = " + v + "\n")
		}
	}
	sb.WriteString("ruitlNodes = append(ruitlNodes, " + body + ")\n}\n")
	sb.WriteString("return html.Fragment(ruitlNodes...)\n}()")
	return sb.String(), nil
}

func (c *componentGen) matchNode(n *MatchNode) (string, error) {
	subject, _, err := c.expr(n.Expr, n.Pos)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("func() html.Node {\nswitch " + subject + " {\n")

	hasDefault := false
	for _, arm := range n.Arms {
		body, err := c.node(arm.Body)
		if err != nil {
			return "", err
		}

		alts := splitPattern(arm.Pattern)
		if len(alts) == 1 && alts[0] == "_" {
			if hasDefault {
				return "", c.errorf(n.Pos, "duplicate wildcard arm in match")
			}
			hasDefault = true
			sb.WriteString("default:\nreturn " + body + "\n")
			continue
		}

		cases := make([]string, 0, len(alts))
		for _, alt := range alts {
			if alt == "_" {
				return "", c.errorf(n.Pos, "wildcard '_' cannot be combined with other patterns")
			}
			e, _, err := c.expr(alt, n.Pos)
			if err != nil {
				return "", err
			}
			cases = append(cases, e)
		}
		sb.WriteString("case " + strings.Join(cases, ", ") + ":\nreturn " + body + "\n")
	}

	// Without a wildcard arm the closure lacks a final return, so an
	// incomplete match fails the Go build instead of rendering nothing.
	sb.WriteString("}\n}()")
	return sb.String(), nil
}

// splitPattern splits a match pattern on top-level '|' alternatives
func splitPattern(pattern string) []string {
	var parts []string
	depth := 0
	start := 0
	var quote byte
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		if quote != 0 {
			switch {
			case ch == '\\' && quote != '`':
				i++
			case ch == quote:
				quote = 0
			}
			continue
		}
		switch ch {
		case '"', '\'', '`':
			quote = ch
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '|':
			if depth != 0 {
				continue
			}
			if i+1 < len(pattern) && pattern[i+1] == '|' {
				i++
				continue
			}
			parts = append(parts, strings.TrimSpace(pattern[start:i]))
			start = i + 1
		}
	}
	return append(parts, strings.TrimSpace(pattern[start:]))
}

func (c *componentGen) invocation(n *ComponentNode) (string, error) {
	target, ok := c.g.callable[n.Name]
	if !ok {
		return "", c.errorf(n.Pos, "undefined component %s", n.Name)
	}

	qual := ""
	if target.pkg != "" {
		qual = target.pkg + "."
		c.g.scope.used[target.pkg] = true
	}

	typeArgs := ""
	if n.TypeArgs != "" {
		var args []string
		for _, a := range splitTopLevel(n.TypeArgs, ',') {
			t, err := c.g.scope.resolveType(a)
			if err != nil {
				return "", c.errorf(n.Pos, "invalid type argument for %s: %v", n.Name, err)
			}
			args = append(args, t)
		}
		typeArgs = "[" + strings.Join(args, ", ") + "]"
	}
	if target.def != nil {
		switch {
		case len(target.def.Generics) > 0 && n.TypeArgs == "":
			return "", c.errorf(n.Pos, "generic component %s needs type arguments: @%s[...](...)", n.Name, n.Name)
		case len(target.def.Generics) == 0 && n.TypeArgs != "":
			return "", c.errorf(n.Pos, "component %s is not generic", n.Name)
		}
	}

	propsType := qual + n.Name + "Props" + typeArgs
	var sb strings.Builder
	sb.WriteString("func() html.Node {\n")
	fmt.Fprintf(&sb, "ruitlProps := %sDefault%sProps%s()\n", qual, n.Name, typeArgs)

	given := map[string]bool{}
	for _, pv := range n.Props {
		if given[pv.Name] {
			return "", c.errorf(n.Pos, "prop %q passed twice to %s", pv.Name, n.Name)
		}
		given[pv.Name] = true

		val, ref, err := c.expr(pv.Expr, n.Pos)
		if err != nil {
			return "", err
		}

		field := exportName(pv.Name)
		if target.def != nil {
			decl, ok := findProp(target.def, pv.Name)
			if !ok {
				return "", c.errorf(n.Pos, "component %s has no prop %q", n.Name, pv.Name)
			}
			if decl.Optional {
				switch {
				case val == "nil":
				case ref != nil && ref.def.Optional:
				default:
					val = "html.Ptr(" + val + ")"
				}
			}
		}
		fmt.Fprintf(&sb, "ruitlProps.%s = %s\n", field, val)
	}

	if target.def != nil {
		for _, pd := range target.def.Props {
			if !given[pd.Name] && !pd.Optional && !pd.HasDefault() {
				return "", c.errorf(n.Pos, "missing prop %q for component %s", pd.Name, n.Name)
			}
		}
	}

	c.invokes = true
	fmt.Fprintf(&sb, "ruitlNode, err := component.Render[%s](%s%s%s{}, ruitlProps, ctx)\n", propsType, qual, n.Name, typeArgs)
	sb.WriteString("if err != nil {\nif renderErr == nil {\nrenderErr = err\n}\nreturn html.Empty()\n}\n")
	sb.WriteString("return ruitlNode\n}()")
	return sb.String(), nil
}

func findProp(def *ComponentDef, name string) (PropDef, bool) {
	for _, p := range def.Props {
		if p.Name == name {
			return p, true
		}
	}
	return PropDef{}, false
}

// expr parses an embedded Go expression and rewrites prop field access and
// import items. When the expression is exactly a reference to a prop, that
// prop is returned too.
func (c *componentGen) expr(src string, pos Pos) (string, *propInfo, error) {
	fset := token.NewFileSet()
	e, err := parser.ParseExprFrom(fset, "", src, 0)
	if err != nil {
		return "", nil, c.errorf(pos, "invalid expression %q: %v", src, err)
	}

	ref := c.directRef(e)

	var visit func(ast.Node) bool
	visit = func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.SelectorExpr:
			if id, ok := n.X.(*ast.Ident); ok && !c.isLocal(id.Name) {
				if id.Name == "props" {
					if p, ok := c.props[n.Sel.Name]; ok {
						n.Sel.Name = p.field
					}
					return false
				}
				if _, ok := c.g.scope.packages[id.Name]; ok && c.props[id.Name] == nil {
					c.g.scope.used[id.Name] = true
					return false
				}
			}
			ast.Inspect(n.X, visit)
			return false

		case *ast.KeyValueExpr:
			if _, ok := n.Key.(*ast.Ident); !ok {
				ast.Inspect(n.Key, visit)
			}
			ast.Inspect(n.Value, visit)
			return false

		case *ast.Ident:
			if pkg := c.g.scope.items[n.Name]; pkg != "" && !c.isLocal(n.Name) && c.props[n.Name] == nil {
				c.g.scope.used[pkg] = true
				n.Name = pkg + "." + n.Name
			}
			return false
		}
		return true
	}
	ast.Inspect(e, visit)

	var buf bytes.Buffer
	if err := printer.Fprint(&buf, fset, e); err != nil {
		return "", nil, c.errorf(pos, "invalid expression %q: %v", src, err)
	}
	return buf.String(), ref, nil
}

// directRef reports the prop e refers to when e is `name` or `props.name`
func (c *componentGen) directRef(e ast.Expr) *propInfo {
	for {
		p, ok := e.(*ast.ParenExpr)
		if !ok {
			break
		}
		e = p.X
	}
	switch e := e.(type) {
	case *ast.Ident:
		if !c.isLocal(e.Name) {
			return c.props[e.Name]
		}
	case *ast.SelectorExpr:
		if id, ok := e.X.(*ast.Ident); ok && id.Name == "props" && !c.isLocal("props") {
			if p, ok := c.props[e.Sel.Name]; ok {
				return p
			}
			for _, p := range c.order {
				if p.field == e.Sel.Name {
					return p
				}
			}
		}
	}
	return nil
}

func (c *componentGen) isLocal(name string) bool { return c.locals[name] > 0 }

func (c *componentGen) pushLocal(names ...string) {
	for _, n := range names {
		if n != "" && n != "_" {
			c.locals[n]++
		}
	}
}

func (c *componentGen) popLocal(names ...string) {
	for _, n := range names {
		if n != "" && n != "_" {
			c.locals[n]--
		}
	}
}
