package template

import (
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/recera/ruitl/pkg/component"
	"github.com/recera/ruitl/pkg/html"
)

// maxPreviewDepth bounds nested component invocations
const maxPreviewDepth = 64

// Previewer renders parsed templates directly, without generating and
// building Go code. Embedded expressions are evaluated with expr-lang, which
// shares Go's syntax for the common cases (field access, comparisons, calls,
// boolean logic). It is safe for concurrent use.
type Previewer struct {
	components map[string]previewComponent

	mu       sync.Mutex
	programs map[string]*vm.Program
}

type previewComponent struct {
	def  *ComponentDef
	tmpl *TemplateDef
}

// NewPreviewer indexes the components of files. Every component needs a
// template and names must be unique across files.
func NewPreviewer(files ...*File) (*Previewer, error) {
	pv := &Previewer{
		components: map[string]previewComponent{},
		programs:   map[string]*vm.Program{},
	}

	for _, f := range files {
		for i := range f.Components {
			def := &f.Components[i]
			if _, dup := pv.components[def.Name]; dup {
				return nil, &GenerationError{Filename: f.Filename, Component: def.Name, Pos: def.Pos, Msg: "duplicate component definition"}
			}
			tmpl, ok := f.Template(def.Name)
			if !ok {
				return nil, &GenerationError{Filename: f.Filename, Component: def.Name, Pos: def.Pos, Msg: fmt.Sprintf("component %q has no corresponding template definition", def.Name)}
			}
			pv.components[def.Name] = previewComponent{def: def, tmpl: tmpl}
		}
		for _, t := range f.Templates {
			if _, ok := f.Component(t.Name); !ok {
				return nil, &GenerationError{Filename: f.Filename, Component: t.Name, Pos: t.Pos, Msg: fmt.Sprintf("template %q has no corresponding component definition", t.Name)}
			}
		}
	}
	return pv, nil
}

// Components returns the known component names in sorted order
func (pv *Previewer) Components() []string {
	names := make([]string, 0, len(pv.components))
	for name := range pv.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Props returns the declared props of a component
func (pv *Previewer) Props(name string) ([]PropDef, bool) {
	c, ok := pv.components[name]
	if !ok {
		return nil, false
	}
	return c.def.Props, true
}

// Render renders the named component. Props are looked up by declared name
// or by exported field name. Missing props fall back to their default;
// optional props fall back to nil.
func (pv *Previewer) Render(name string, props map[string]any, ctx *component.Context) (html.Node, error) {
	if ctx == nil {
		ctx = component.NewContext()
	}
	return pv.render(name, props, ctx, 0)
}

// RenderString renders the named component and serializes the result
func (pv *Previewer) RenderString(name string, props map[string]any, ctx *component.Context) (string, error) {
	n, err := pv.Render(name, props, ctx)
	if err != nil {
		return "", err
	}
	return html.Render(n), nil
}

func (pv *Previewer) render(name string, given map[string]any, ctx *component.Context, depth int) (html.Node, error) {
	if depth > maxPreviewDepth {
		return html.Empty(), fmt.Errorf("%w: component nesting deeper than %d", ErrPreview, maxPreviewDepth)
	}
	c, ok := pv.components[name]
	if !ok {
		return html.Empty(), fmt.Errorf("%w: undefined component %s", ErrPreview, name)
	}

	byField := map[string]string{}
	for _, p := range c.def.Props {
		byField[exportName(p.Name)] = p.Name
	}

	values := map[string]any{}
	for k, v := range given {
		switch {
		case hasProp(c.def, k):
			values[k] = v
		case byField[k] != "":
			values[byField[k]] = v
		default:
			return html.Empty(), fmt.Errorf("%w: component %s has no prop %q", ErrPreview, name, k)
		}
	}

	env := map[string]any{"ctx": ctx}
	propsMap := map[string]any{}
	for _, p := range c.def.Props {
		v, ok := values[p.Name]
		switch {
		case ok:
		case p.HasDefault():
			dv, err := pv.eval(p.Default, nil)
			if err != nil {
				return html.Empty(), fmt.Errorf("%s: default for %s: %w", name, p.Name, err)
			}
			v = dv
		case p.Optional:
			v = nil
		default:
			return html.Empty(), fmt.Errorf("%w: missing prop %q for component %s", ErrPreview, p.Name, name)
		}
		env[p.Name] = v
		propsMap[p.Name] = v
		propsMap[exportName(p.Name)] = v
	}
	env["props"] = propsMap

	r := &previewRender{pv: pv, ctx: ctx, depth: depth, component: name}
	return r.node(c.tmpl.Body, env)
}

func hasProp(def *ComponentDef, name string) bool {
	_, ok := findProp(def, name)
	return ok
}

// program compiles src once and caches the result
func (pv *Previewer) program(src string) (*vm.Program, error) {
	pv.mu.Lock()
	defer pv.mu.Unlock()

	if p, ok := pv.programs[src]; ok {
		return p, nil
	}
	p, err := expr.Compile(src, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("%w: compile %q: %w", ErrPreview, src, err)
	}
	pv.programs[src] = p
	return p, nil
}

func (pv *Previewer) eval(src string, env map[string]any) (any, error) {
	p, err := pv.program(src)
	if err != nil {
		return nil, err
	}
	if env == nil {
		env = map[string]any{}
	}
	v, err := vm.Run(p, env)
	if err != nil {
		return nil, fmt.Errorf("%w: evaluate %q: %w", ErrPreview, src, err)
	}
	return v, nil
}

// previewRender walks one template body
type previewRender struct {
	pv        *Previewer
	ctx       *component.Context
	depth     int
	component string
}

func (r *previewRender) errorf(pos Pos, format string, args ...any) error {
	return fmt.Errorf("%w: %s %d:%d: %s", ErrPreview, r.component, pos.Line, pos.Column, fmt.Sprintf(format, args...))
}

func (r *previewRender) node(n Node, env map[string]any) (html.Node, error) {
	switch n := n.(type) {
	case nil:
		return html.Empty(), nil

	case *TextNode:
		return html.Text(n.Text), nil

	case *RawNode:
		return html.Raw(n.Text), nil

	case *ExprNode:
		v, err := r.pv.eval(n.Expr, env)
		if err != nil {
			return html.Empty(), err
		}
		return html.Embed(deref(v)), nil

	case *ElementNode:
		return r.element(n, env)

	case *FragmentNode:
		kids, err := r.nodes(n.Children, env)
		if err != nil {
			return html.Empty(), err
		}
		return html.Fragment(kids...), nil

	case *IfNode:
		ok, err := r.cond(n.Cond, n.Pos, env)
		if err != nil {
			return html.Empty(), err
		}
		if ok {
			return r.node(n.Then, env)
		}
		if n.Else == nil {
			return html.Empty(), nil
		}
		return r.node(n.Else, env)

	case *ForNode:
		return r.forNode(n, env)

	case *MatchNode:
		return r.matchNode(n, env)

	case *ComponentNode:
		props := make(map[string]any, len(n.Props))
		for _, prop := range n.Props {
			v, err := r.pv.eval(prop.Expr, env)
			if err != nil {
				return html.Empty(), err
			}
			props[prop.Name] = v
		}
		return r.pv.render(n.Name, props, r.ctx, r.depth+1)
	}
	return html.Empty(), r.errorf(n.Position(), "unsupported node %T", n)
}

func (r *previewRender) nodes(ns []Node, env map[string]any) ([]html.Node, error) {
	out := make([]html.Node, 0, len(ns))
	for _, n := range ns {
		h, err := r.node(n, env)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

func (r *previewRender) element(n *ElementNode, env map[string]any) (html.Node, error) {
	el := html.Elem(n.Tag)
	if n.SelfClosing {
		el = html.SelfClosing(n.Tag)
	}

	for _, a := range n.Attributes {
		switch a.Kind {
		case AttrStatic:
			if a.Bare {
				el = el.BoolAttr(a.Name)
			} else {
				el = el.Attr(a.Name, a.Value)
			}
		case AttrExpression:
			v, err := r.pv.eval(a.Value, env)
			if err != nil {
				return html.Empty(), err
			}
			el = el.Attr(a.Name, html.Display(deref(v)))
		case AttrConditional:
			ok, err := r.cond(a.Value, n.Pos, env)
			if err != nil {
				return html.Empty(), err
			}
			el = el.AttrIf(a.Name, ok)
		}
	}

	if n.SelfClosing {
		return el, nil
	}
	kids, err := r.nodes(n.Children, env)
	if err != nil {
		return html.Empty(), err
	}
	return el.Children(kids...), nil
}

func (r *previewRender) cond(src string, pos Pos, env map[string]any) (bool, error) {
	v, err := r.pv.eval(src, env)
	if err != nil {
		return false, err
	}
	b, ok := deref(v).(bool)
	if !ok {
		return false, r.errorf(pos, "condition %q is %T, not bool", src, v)
	}
	return b, nil
}

func (r *previewRender) forNode(n *ForNode, env map[string]any) (html.Node, error) {
	v, err := r.pv.eval(n.Iterable, env)
	if err != nil {
		return html.Empty(), err
	}

	kids := []html.Node{}
	err = iterate(deref(v), func(key, item any) error {
		scope := maps.Clone(env)
		if n.Index != "" && n.Index != "_" {
			scope[n.Index] = key
		}
		if n.Var != "_" {
			scope[n.Var] = item
		}
		h, err := r.node(n.Body, scope)
		if err != nil {
			return err
		}
		kids = append(kids, h)
		return nil
	})
	if err != nil {
		return html.Empty(), err
	}
	return html.Fragment(kids...), nil
}

// iterate follows Go range semantics: slices and arrays yield index and
// element, maps yield key and value in sorted key order, strings yield
// byte offset and rune, integers count up from zero
func iterate(v any, fn func(key, item any) error) error {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := fn(i, rv.Index(i).Interface()); err != nil {
				return err
			}
		}
	case reflect.Map:
		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return compareKeys(a.Interface(), b.Interface())
		})
		for _, k := range keys {
			if err := fn(k.Interface(), rv.MapIndex(k).Interface()); err != nil {
				return err
			}
		}
	case reflect.String:
		for i, c := range rv.String() {
			if err := fn(i, string(c)); err != nil {
				return err
			}
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		for i := int64(0); i < rv.Int(); i++ {
			if err := fn(int(i), int(i)); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: cannot range over %T", ErrPreview, v)
	}
	return nil
}

func compareKeys(a, b any) int {
	if x, ok := toFloat(a); ok {
		if y, ok := toFloat(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

func (r *previewRender) matchNode(n *MatchNode, env map[string]any) (html.Node, error) {
	subject, err := r.pv.eval(n.Expr, env)
	if err != nil {
		return html.Empty(), err
	}
	subject = deref(subject)

	var fallback Node
	for _, arm := range n.Arms {
		alts := splitPattern(arm.Pattern)
		if len(alts) == 1 && alts[0] == "_" {
			if fallback == nil {
				fallback = arm.Body
			}
			continue
		}
		for _, alt := range alts {
			pat, err := r.pv.eval(alt, env)
			if err != nil {
				return html.Empty(), err
			}
			if valuesEqual(subject, deref(pat)) {
				return r.node(arm.Body, env)
			}
		}
	}
	if fallback != nil {
		return r.node(fallback, env)
	}
	return html.Empty(), r.errorf(n.Pos, "no match arm for %v", subject)
}

// valuesEqual compares numbers by value regardless of their Go type, so a
// YAML integer matches an int literal
func valuesEqual(a, b any) bool {
	if x, ok := toFloat(a); ok {
		if y, ok := toFloat(b); ok {
			return x == y
		}
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f, !math.IsNaN(f)
	}
	return 0, false
}

// deref follows pointers so optional values passed from Go display as
// their target
func deref(v any) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}
