package template

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Parser is a recursive descent parser for .ruitl files
type Parser struct {
	input    string
	pos      int
	line     int
	col      int
	filename string

	// open holds the elements whose closing tag has not been seen yet
	open []openTag
}

type openTag struct {
	tag string
	pos Pos
}

// NewParser creates a parser for one file
func NewParser(filename, input string) *Parser {
	return &Parser{
		input:    input,
		pos:      0,
		line:     1,
		col:      1,
		filename: filename,
	}
}

// Parse parses source into a File. The first error aborts parsing and no
// partial File is returned.
func Parse(filename, source string) (*File, error) {
	return NewParser(filename, source).Parse()
}

// Parse parses the whole input
func (p *Parser) Parse() (*File, error) {
	file := &File{Filename: p.filename}

	for {
		if err := p.skipTrivia(); err != nil {
			return nil, err
		}
		if p.eof() {
			break
		}

		switch {
		case p.atKeyword("import"):
			imp, err := p.parseImport()
			if err != nil {
				return nil, err
			}
			file.Imports = append(file.Imports, imp)

		case p.atKeyword("component"):
			def, err := p.parseComponent()
			if err != nil {
				return nil, err
			}
			file.Components = append(file.Components, def)

		case p.atKeyword("ruitl"):
			def, err := p.parseTemplate()
			if err != nil {
				return nil, err
			}
			file.Templates = append(file.Templates, def)

		default:
			return nil, p.errorf("expected 'import', 'component' or 'ruitl', found %q", p.word())
		}
	}

	return file, nil
}

func (p *Parser) parseImport() (ImportDef, error) {
	def := ImportDef{Pos: p.position()}
	p.consume("import")
	p.skipWhitespace()

	if p.isIdentStart() {
		def.Alias = p.parseIdentifier()
		p.skipWhitespace()
	}

	path, err := p.parseStringLiteral()
	if err != nil {
		return def, err
	}
	if path == "" {
		return def, p.errorf("import path must not be empty")
	}
	def.Path = path

	if err := p.skipTrivia(); err != nil {
		return def, err
	}
	if !p.consume("{") {
		return def, nil
	}

	for {
		if err := p.skipTrivia(); err != nil {
			return def, err
		}
		if p.consume("}") {
			return def, nil
		}
		if p.eof() {
			return def, p.errorf("expected '}' to close import list")
		}
		item, err := p.expectIdentifier("import item")
		if err != nil {
			return def, err
		}
		def.Items = append(def.Items, item)

		if err := p.skipTrivia(); err != nil {
			return def, err
		}
		if !p.consume(",") && !p.peek("}") {
			return def, p.errorf("expected ',' or '}' in import list")
		}
	}
}

func (p *Parser) parseComponent() (ComponentDef, error) {
	def := ComponentDef{Pos: p.position()}
	p.consume("component")
	p.skipWhitespace()

	name, err := p.expectIdentifier("component name")
	if err != nil {
		return def, err
	}
	def.Name = name

	p.skipWhitespace()
	if p.consume("<") {
		generics, err := p.parseGenerics()
		if err != nil {
			return def, err
		}
		def.Generics = generics
	}

	if err := p.skipTrivia(); err != nil {
		return def, err
	}
	if !p.consume("{") {
		return def, p.errorf("expected '{' after component name")
	}

	for {
		if err := p.skipTrivia(); err != nil {
			return def, err
		}
		switch {
		case p.consume("}"):
			return def, nil

		case p.atKeyword("props"):
			if def.Props != nil {
				return def, p.errorf("duplicate props block in component %s", def.Name)
			}
			props, err := p.parseProps()
			if err != nil {
				return def, err
			}
			def.Props = props

		case p.eof():
			return def, p.errorf("expected '}' to close component %s", def.Name)

		default:
			return def, p.errorf("expected 'props' or '}' in component %s, found %q", def.Name, p.word())
		}
	}
}

// parseGenerics reads `T, U comparable>` after the opening '<'
func (p *Parser) parseGenerics() ([]string, error) {
	var generics []string
	for {
		p.skipWhitespace()
		if p.consume(">") {
			if len(generics) == 0 {
				return nil, p.errorf("empty type parameter list")
			}
			return generics, nil
		}
		name, err := p.expectIdentifier("type parameter")
		if err != nil {
			return nil, err
		}
		p.skipWhitespace()

		param := name
		if !p.peek(",") && !p.peek(">") {
			constraint, err := p.parseType()
			if err != nil {
				return nil, err
			}
			param += " " + constraint
		}
		generics = append(generics, param)

		p.skipWhitespace()
		if !p.consume(",") && !p.peek(">") {
			return nil, p.errorf("expected ',' or '>' in type parameter list")
		}
	}
}

func (p *Parser) parseProps() ([]PropDef, error) {
	p.consume("props")
	if err := p.skipTrivia(); err != nil {
		return nil, err
	}
	if !p.consume("{") {
		return nil, p.errorf("expected '{' after props")
	}

	props := []PropDef{}
	for {
		if err := p.skipTrivia(); err != nil {
			return nil, err
		}
		if p.consume("}") {
			return props, nil
		}
		if p.eof() {
			return nil, p.errorf("expected '}' to close props block")
		}

		prop, err := p.parsePropDef()
		if err != nil {
			return nil, err
		}
		props = append(props, prop)
	}
}

func (p *Parser) parsePropDef() (PropDef, error) {
	prop := PropDef{Pos: p.position()}

	name, err := p.expectIdentifier("prop name")
	if err != nil {
		return prop, err
	}
	prop.Name = name

	p.skipWhitespace()
	if !p.consume(":") {
		return prop, p.errorf("expected ':' after prop name %q", name)
	}

	p.skipWhitespace()
	typ, err := p.parseType()
	if err != nil {
		return prop, err
	}
	prop.Type = typ

	p.skipInlineWhitespace()
	switch {
	case p.consume("="):
		p.skipInlineWhitespace()
		def, err := p.scanExpr(",\n}")
		if err != nil {
			return prop, err
		}
		if def == "" {
			return prop, p.errorf("expected default value after '='")
		}
		prop.Default = def
	case p.consume("?"):
		prop.Optional = true
	}

	p.skipInlineWhitespace()
	p.consume(",")
	return prop, nil
}

func (p *Parser) parseTemplate() (TemplateDef, error) {
	def := TemplateDef{Pos: p.position()}
	p.consume("ruitl")
	p.skipWhitespace()

	name, err := p.expectIdentifier("template name")
	if err != nil {
		return def, err
	}
	def.Name = name

	p.skipWhitespace()
	if !p.consume("(") {
		return def, p.errorf("expected '(' after template name")
	}

	for {
		p.skipWhitespace()
		if p.consume(")") {
			break
		}
		if p.eof() {
			return def, p.errorf("expected ')' to close parameter list")
		}

		pname, err := p.expectIdentifier("parameter name")
		if err != nil {
			return def, err
		}
		p.skipWhitespace()
		if !p.consume(":") {
			return def, p.errorf("expected ':' after parameter name %q", pname)
		}
		p.skipWhitespace()
		ptype, err := p.parseType()
		if err != nil {
			return def, err
		}
		def.Params = append(def.Params, ParamDef{Name: pname, Type: ptype})

		p.skipWhitespace()
		if !p.consume(",") && !p.peek(")") {
			return def, p.errorf("expected ',' or ')' in parameter list")
		}
	}

	p.skipWhitespace()
	if !p.consume("{") {
		return def, p.errorf("expected '{' to start template body")
	}

	body, err := p.parseBlock()
	if err != nil {
		return def, err
	}
	if !p.consume("}") {
		return def, p.errorf("expected '}' to close template %s", def.Name)
	}
	def.Body = body
	return def, nil
}

// parseType reads a type up to a depth-zero terminator
func (p *Parser) parseType() (string, error) {
	start := p.pos
	depth := 0

scan:
	for !p.eof() {
		switch c := p.input[p.pos]; c {
		case '[', '<', '(', '{':
			depth++
		case ']', '>', ')', '}':
			if depth == 0 {
				break scan
			}
			depth--
		case ',', '=', '?', '\n':
			if depth == 0 {
				break scan
			}
		case '/':
			if depth == 0 && (p.peek("//") || p.peek("/*")) {
				break scan
			}
		}
		p.advance()
	}

	typ := strings.TrimSpace(p.input[start:p.pos])
	if typ == "" {
		return "", p.errorf("expected type")
	}
	if depth != 0 {
		return "", p.errorf("unbalanced brackets in type %q", typ)
	}
	return typ, nil
}

// parseBlock parses nodes up to the '}' that closes the current block,
// leaving it unconsumed. One node collapses to itself; several become a
// fragment.
func (p *Parser) parseBlock() (Node, error) {
	pos := p.position()
	nodes, err := p.parseNodes("")
	if err != nil {
		return nil, err
	}
	if len(nodes) == 1 {
		return nodes[0], nil
	}
	return &FragmentNode{Children: nodes, Pos: pos}, nil
}

// parseNodes parses a child list. With tag == "" the list ends before '}',
// otherwise it ends after the matching closing tag.
func (p *Parser) parseNodes(tag string) ([]Node, error) {
	nodes := []Node{}

	for {
		p.skipLayout(len(nodes) == 0)

		if p.eof() {
			if tag != "" {
				top := p.open[len(p.open)-1]
				return nil, p.errorf("unclosed <%s> opened at %d:%d", tag, top.pos.Line, top.pos.Column)
			}
			return nil, p.errorf("unexpected end of input, expected '}'")
		}

		if p.peek("</") {
			if tag == "" {
				return nil, p.unexpectedClosingTag()
			}
			if err := p.parseClosingTag(); err != nil {
				return nil, err
			}
			return nodes, nil
		}

		if p.peek("}") {
			if tag == "" {
				return nodes, nil
			}
			return nil, p.errorf("unexpected '}' inside <%s>", tag)
		}

		node, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		if node != nil {
			nodes = append(nodes, node)
		}
	}
}

// skipLayout drops whitespace that only formats the source: runs containing
// a newline, and runs at the start or end of a child list
func (p *Parser) skipLayout(atStart bool) {
	end := p.pos
	for end < len(p.input) && isSpace(p.input[end]) {
		end++
	}
	if end == p.pos {
		return
	}

	ws := p.input[p.pos:end]
	rest := p.input[end:]
	if atStart || strings.ContainsRune(ws, '\n') || rest == "" ||
		rest[0] == '}' || strings.HasPrefix(rest, "</") {
		p.advanceTo(end)
	}
}

func (p *Parser) parseNode() (Node, error) {
	switch {
	case p.peek("<!--"):
		return nil, p.skipHTMLComment()
	case p.peekFold("<!DOCTYPE"):
		return p.parseDoctype()
	case p.peek("<"):
		return p.parseElement()
	case p.peek("{"):
		return p.parseExprNode()
	case p.atInvocation():
		return p.parseInvocation()
	case p.atKeyword("if"):
		return p.parseIf()
	case p.atKeyword("for"):
		return p.parseFor()
	case p.atKeyword("match"):
		return p.parseMatch()
	case p.atKeyword("else"):
		return nil, p.errorf("'else' without matching 'if'")
	}
	return p.parseText()
}

func (p *Parser) parseDoctype() (Node, error) {
	pos := p.position()
	start := p.pos
	for !p.eof() && p.input[p.pos] != '>' {
		p.advance()
	}
	if !p.consume(">") {
		return nil, p.errorf("expected '>' to close DOCTYPE")
	}
	return &RawNode{Text: p.input[start:p.pos], Pos: pos}, nil
}

func (p *Parser) skipHTMLComment() error {
	pos := p.position()
	end := strings.Index(p.input[p.pos+4:], "-->")
	if end < 0 {
		return p.errorAt(pos, "unterminated HTML comment")
	}
	p.advanceTo(p.pos + 4 + end + 3)
	return nil
}

func (p *Parser) parseElement() (Node, error) {
	el := &ElementNode{Pos: p.position()}
	p.consume("<")

	tag := p.parseTagName()
	if tag == "" {
		return nil, p.errorf("expected tag name after '<'")
	}
	el.Tag = tag

	for {
		p.skipWhitespace()

		if p.consume("/>") {
			el.SelfClosing = true
			return el, nil
		}
		if p.consume(">") {
			break
		}
		if p.peek("/") {
			return nil, p.errorf("expected '>' after '/' in <%s>", tag)
		}
		if p.eof() {
			return nil, p.errorf("unexpected end of input in <%s>", tag)
		}

		attr, err := p.parseAttribute()
		if err != nil {
			return nil, err
		}
		el.Attributes = append(el.Attributes, attr)
	}

	p.open = append(p.open, openTag{tag: tag, pos: el.Pos})
	children, err := p.parseNodes(tag)
	if err != nil {
		return nil, err
	}
	p.open = p.open[:len(p.open)-1]
	el.Children = children
	return el, nil
}

// parseClosingTag consumes `</tag>` for the innermost open element
func (p *Parser) parseClosingTag() error {
	pos := p.position()
	top := p.open[len(p.open)-1]

	p.consume("</")
	name := p.parseTagName()
	p.skipWhitespace()
	if !p.consume(">") {
		return p.errorf("expected '>' to close </%s>", name)
	}

	if name != top.tag {
		for i := len(p.open) - 2; i >= 0; i-- {
			if p.open[i].tag == name {
				return p.errorAt(pos, fmt.Sprintf("closing tag </%s> does not match <%s> opened at %d:%d", name, top.tag, top.pos.Line, top.pos.Column))
			}
		}
		return p.errorAt(pos, fmt.Sprintf("expected closing tag </%s>, found </%s>", top.tag, name))
	}
	return nil
}

func (p *Parser) unexpectedClosingTag() error {
	pos := p.position()
	p.consume("</")
	name := p.parseTagName()
	if len(p.open) > 0 {
		top := p.open[len(p.open)-1]
		return p.errorAt(pos, fmt.Sprintf("closing tag </%s> crosses a block boundary; <%s> opened at %d:%d is still open outside it", name, top.tag, top.pos.Line, top.pos.Column))
	}
	return p.errorAt(pos, fmt.Sprintf("unexpected closing tag </%s>", name))
}

func (p *Parser) parseAttribute() (Attribute, error) {
	name := p.parseAttributeName()
	if name == "" {
		return Attribute{}, p.errorf("expected attribute name, found %q", p.word())
	}
	attr := Attribute{Name: name, Kind: AttrStatic}

	conditional := p.consume("?")

	p.skipWhitespace()
	if !p.consume("=") {
		// name and name? are both bare boolean attributes
		attr.Bare = true
		return attr, nil
	}
	p.skipWhitespace()

	switch {
	case p.consume("{"):
		expr, err := p.scanExpr("}")
		if err != nil {
			return attr, err
		}
		if !p.consume("}") {
			return attr, p.errorf("expected '}' to close attribute expression")
		}
		if expr == "" {
			return attr, p.errorf("empty expression in attribute %s", name)
		}
		attr.Value = expr
		attr.Kind = AttrExpression
		if conditional {
			attr.Kind = AttrConditional
		}

	case conditional:
		return attr, p.errorf("conditional attribute %s? needs a {condition}", name)

	default:
		s, err := p.parseStringLiteral()
		if err != nil {
			return attr, err
		}
		attr.Value = s
	}

	return attr, nil
}

func (p *Parser) parseExprNode() (Node, error) {
	pos := p.position()
	p.consume("{")
	expr, err := p.scanExpr("}")
	if err != nil {
		return nil, err
	}
	if !p.consume("}") {
		return nil, p.errorf("expected '}' to close expression")
	}
	if expr == "" {
		return nil, p.errorAt(pos, "empty expression")
	}
	return &ExprNode{Expr: expr, Pos: pos}, nil
}

func (p *Parser) parseInvocation() (Node, error) {
	n := &ComponentNode{Pos: p.position()}
	p.consume("@")
	n.Name = p.parseIdentifier()

	if p.consume("[") {
		args, err := p.scanExpr("]")
		if err != nil {
			return nil, err
		}
		if !p.consume("]") || args == "" {
			return nil, p.errorf("expected type arguments in @%s[...]", n.Name)
		}
		n.TypeArgs = args
	}

	p.skipWhitespace()
	if !p.consume("(") {
		return nil, p.errorf("expected '(' after component name %s", n.Name)
	}

	for {
		p.skipWhitespace()
		if p.consume(")") {
			return n, nil
		}
		if p.eof() {
			return nil, p.errorf("expected ')' to close component invocation")
		}

		name, err := p.expectIdentifier("prop name")
		if err != nil {
			return nil, err
		}
		p.skipWhitespace()
		if !p.consume(":") {
			return nil, p.errorf("expected ':' after prop name %q", name)
		}
		p.skipWhitespace()

		expr, err := p.scanExpr(",)")
		if err != nil {
			return nil, err
		}
		if expr == "" {
			return nil, p.errorf("expected value for prop %q", name)
		}
		n.Props = append(n.Props, PropValue{Name: name, Expr: expr})

		if !p.consume(",") && !p.peek(")") {
			return nil, p.errorf("expected ',' or ')' in component props")
		}
	}
}

func (p *Parser) parseIf() (Node, error) {
	n := &IfNode{Pos: p.position()}
	p.consume("if")
	p.skipWhitespace()

	cond, err := p.scanExpr("{")
	if err != nil {
		return nil, err
	}
	if cond == "" {
		return nil, p.errorf("expected condition after 'if'")
	}
	n.Cond = cond

	then, err := p.parseBraced("if")
	if err != nil {
		return nil, err
	}
	n.Then = then

	// look past layout for an else without losing the position if absent
	save := *p
	p.skipWhitespace()
	if !p.atKeyword("else") {
		*p = save
		return n, nil
	}
	p.consume("else")
	p.skipWhitespace()

	if p.atKeyword("if") {
		elseIf, err := p.parseIf()
		if err != nil {
			return nil, err
		}
		n.Else = elseIf
		return n, nil
	}

	els, err := p.parseBraced("else")
	if err != nil {
		return nil, err
	}
	n.Else = els
	return n, nil
}

func (p *Parser) parseFor() (Node, error) {
	n := &ForNode{Pos: p.position()}
	p.consume("for")
	p.skipWhitespace()

	v, err := p.expectIdentifier("loop variable")
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	if p.consume(",") {
		p.skipWhitespace()
		n.Index = v
		if v, err = p.expectIdentifier("loop variable"); err != nil {
			return nil, err
		}
		p.skipWhitespace()
	}
	n.Var = v

	if !p.atKeyword("in") {
		return nil, p.errorf("expected 'in' after loop variable")
	}
	p.consume("in")
	p.skipWhitespace()

	iter, err := p.scanExpr("{")
	if err != nil {
		return nil, err
	}
	if iter == "" {
		return nil, p.errorf("expected expression after 'in'")
	}
	n.Iterable = iter

	body, err := p.parseBraced("for")
	if err != nil {
		return nil, err
	}
	n.Body = body
	return n, nil
}

func (p *Parser) parseMatch() (Node, error) {
	n := &MatchNode{Pos: p.position()}
	p.consume("match")
	p.skipWhitespace()

	expr, err := p.scanExpr("{")
	if err != nil {
		return nil, err
	}
	if expr == "" {
		return nil, p.errorf("expected expression after 'match'")
	}
	n.Expr = expr

	if !p.consume("{") {
		return nil, p.errorf("expected '{' after match expression")
	}

	for {
		if err := p.skipTrivia(); err != nil {
			return nil, err
		}
		if p.consume("}") {
			return n, nil
		}
		if p.eof() {
			return nil, p.errorf("expected '}' to close match block")
		}

		pattern, err := p.scanExprFunc(func() bool {
			return p.peek("=>") || p.peek("{") || p.peek("}")
		})
		if err != nil {
			return nil, err
		}
		if !p.consume("=>") {
			return nil, p.errorf("expected '=>' after match pattern")
		}
		if pattern == "" {
			return nil, p.errorf("expected pattern before '=>'")
		}

		body, err := p.parseBraced("match arm")
		if err != nil {
			return nil, err
		}
		n.Arms = append(n.Arms, MatchArm{Pattern: pattern, Body: body})

		p.skipWhitespace()
		p.consume(",")
	}
}

// parseBraced parses `{ body }`
func (p *Parser) parseBraced(what string) (Node, error) {
	p.skipWhitespace()
	if !p.consume("{") {
		return nil, p.errorf("expected '{' to open %s block", what)
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if !p.consume("}") {
		return nil, p.errorf("expected '}' to close %s block", what)
	}
	return body, nil
}

// parseText reads literal text up to the next delimiter. A control keyword
// ends the run only when nothing but whitespace precedes it on its line.
func (p *Parser) parseText() (Node, error) {
	pos := p.position()
	start := p.pos
	lineStart := true

	for !p.eof() {
		c := p.input[p.pos]
		if c == '<' || c == '{' || c == '}' {
			break
		}
		if c == '@' && p.atInvocation() {
			break
		}
		if lineStart && p.pos > start && (p.atKeyword("if") || p.atKeyword("for") || p.atKeyword("match") || p.atKeyword("else")) {
			break
		}

		switch {
		case c == '\n':
			lineStart = true
		case !isSpace(c):
			lineStart = false
		}
		p.advance()
	}

	if p.pos == start {
		return nil, p.errorf("unexpected %q", p.input[p.pos])
	}

	// trailing whitespace is layout when it spans a line or ends the list
	text := p.input[start:p.pos]
	trimmed := strings.TrimRight(text, " \t\r\n")
	rest := p.input[p.pos:]
	if strings.ContainsRune(text[len(trimmed):], '\n') || rest == "" ||
		rest[0] == '}' || strings.HasPrefix(rest, "</") {
		text = trimmed
	}
	if text == "" {
		return nil, nil
	}
	return &TextNode{Text: text, Pos: pos}, nil
}

// scanExpr reads a Go expression up to the first terminator byte seen
// outside brackets and string literals
func (p *Parser) scanExpr(terminators string) (string, error) {
	return p.scanExprFunc(func() bool {
		return strings.IndexByte(terminators, p.input[p.pos]) >= 0
	})
}

func (p *Parser) scanExprFunc(stop func() bool) (string, error) {
	start := p.pos
	var stack []byte

	for !p.eof() {
		if len(stack) == 0 && stop() {
			break
		}

		switch c := p.input[p.pos]; c {
		case '(', '[', '{':
			stack = append(stack, c)

		case ')', ']', '}':
			if len(stack) == 0 {
				return "", p.errorf("unbalanced %q in expression", c)
			}
			if open := stack[len(stack)-1]; closerOf(open) != c {
				return "", p.errorf("expected %q, found %q in expression", closerOf(open), c)
			}
			stack = stack[:len(stack)-1]

		case '"', '\'', '`':
			if err := p.skipQuoted(c); err != nil {
				return "", err
			}
			continue

		case '/':
			// a trailing line comment ends the expression
			if len(stack) == 0 && p.peek("//") {
				return strings.TrimSpace(p.input[start:p.pos]), nil
			}
		}
		p.advance()
	}

	if len(stack) > 0 {
		return "", p.errorf("unclosed %q in expression", stack[len(stack)-1])
	}
	return strings.TrimSpace(p.input[start:p.pos]), nil
}

func (p *Parser) skipQuoted(quote byte) error {
	pos := p.position()
	p.advance()
	for !p.eof() {
		c := p.input[p.pos]
		switch {
		case c == quote:
			p.advance()
			return nil
		case c == '\\' && quote != '`':
			p.advance()
		case c == '\n' && quote != '`':
			return p.errorAt(pos, "unterminated literal in expression")
		}
		p.advance()
	}
	return p.errorAt(pos, "unterminated literal in expression")
}

func closerOf(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	}
	return '}'
}

// parseStringLiteral reads a single or double quoted string
func (p *Parser) parseStringLiteral() (string, error) {
	if p.eof() || (p.input[p.pos] != '"' && p.input[p.pos] != '\'') {
		return "", p.errorf("expected quoted string")
	}
	quote := p.input[p.pos]
	p.advance()

	var sb strings.Builder
	for !p.eof() {
		c := p.input[p.pos]
		if c == quote {
			p.advance()
			return sb.String(), nil
		}
		if c == '\\' {
			p.advance()
			if p.eof() {
				break
			}
			switch e := p.input[p.pos]; e {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteByte(e)
			}
			p.advance()
			continue
		}
		start := p.pos
		p.advance()
		sb.WriteString(p.input[start:p.pos])
	}
	return "", p.errorf("unterminated string literal")
}

// skipTrivia skips whitespace, // line comments and /* block comments */
func (p *Parser) skipTrivia() error {
	for {
		p.skipWhitespace()
		switch {
		case p.peek("//"):
			for !p.eof() && p.input[p.pos] != '\n' {
				p.advance()
			}
		case p.peek("/*"):
			pos := p.position()
			end := strings.Index(p.input[p.pos+2:], "*/")
			if end < 0 {
				return p.errorAt(pos, "unterminated block comment")
			}
			p.advanceTo(p.pos + 2 + end + 2)
		default:
			return nil
		}
	}
}

func (p *Parser) parseIdentifier() string {
	start := p.pos
	if !p.isIdentStart() {
		return ""
	}
	for !p.eof() {
		r, _ := utf8.DecodeRuneInString(p.input[p.pos:])
		if !isIdentRune(r) {
			break
		}
		p.advance()
	}
	return p.input[start:p.pos]
}

func (p *Parser) expectIdentifier(what string) (string, error) {
	id := p.parseIdentifier()
	if id == "" {
		return "", p.errorf("expected %s, found %q", what, p.word())
	}
	return id, nil
}

// parseTagName accepts letters, digits, '-', ':' and '.' after a leading letter
func (p *Parser) parseTagName() string {
	start := p.pos
	if p.eof() || !isLetter(p.input[p.pos]) {
		return ""
	}
	for !p.eof() {
		c := p.input[p.pos]
		if !isLetter(c) && !isDigit(c) && c != '-' && c != ':' && c != '.' {
			break
		}
		p.advance()
	}
	return p.input[start:p.pos]
}

// parseAttributeName accepts letters, digits, '-', ':', '_', '.' and a leading '@'
func (p *Parser) parseAttributeName() string {
	start := p.pos
	for !p.eof() {
		c := p.input[p.pos]
		if !isLetter(c) && !isDigit(c) && c != '-' && c != ':' && c != '_' && c != '.' && (c != '@' || p.pos != start) {
			break
		}
		p.advance()
	}
	return p.input[start:p.pos]
}

// atKeyword reports whether kw starts at the current position as a whole word
func (p *Parser) atKeyword(kw string) bool {
	if !p.peek(kw) {
		return false
	}
	if p.pos > 0 {
		r, _ := utf8.DecodeLastRuneInString(p.input[:p.pos])
		if isIdentRune(r) {
			return false
		}
	}
	if end := p.pos + len(kw); end < len(p.input) {
		r, _ := utf8.DecodeRuneInString(p.input[end:])
		if isIdentRune(r) {
			return false
		}
	}
	return true
}

// atInvocation reports whether '@' starts a component call rather than
// literal text such as an email address
func (p *Parser) atInvocation() bool {
	if !p.peek("@") || p.pos+1 >= len(p.input) || !isLetter(p.input[p.pos+1]) {
		return false
	}
	if p.pos > 0 {
		r, _ := utf8.DecodeLastRuneInString(p.input[:p.pos])
		if isIdentRune(r) || r == '.' {
			return false
		}
	}
	return true
}

func (p *Parser) isIdentStart() bool {
	if p.eof() {
		return false
	}
	r, _ := utf8.DecodeRuneInString(p.input[p.pos:])
	return r == '_' || unicode.IsLetter(r)
}

// word returns the upcoming token for error messages
func (p *Parser) word() string {
	if p.eof() {
		return "EOF"
	}
	end := p.pos
	for end < len(p.input) && !isSpace(p.input[end]) && end-p.pos < 20 {
		end++
	}
	if end == p.pos {
		end++
	}
	return p.input[p.pos:end]
}

func (p *Parser) eof() bool { return p.pos >= len(p.input) }

func (p *Parser) peek(s string) bool {
	return strings.HasPrefix(p.input[p.pos:], s)
}

func (p *Parser) peekFold(s string) bool {
	return len(p.input)-p.pos >= len(s) && strings.EqualFold(p.input[p.pos:p.pos+len(s)], s)
}

func (p *Parser) consume(s string) bool {
	if !p.peek(s) {
		return false
	}
	p.advanceTo(p.pos + len(s))
	return true
}

func (p *Parser) advance() {
	if p.pos >= len(p.input) {
		return
	}
	r, size := utf8.DecodeRuneInString(p.input[p.pos:])
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
	p.pos += size
}

func (p *Parser) advanceTo(end int) {
	for p.pos < end && p.pos < len(p.input) {
		p.advance()
	}
}

func (p *Parser) skipWhitespace() {
	for !p.eof() && isSpace(p.input[p.pos]) {
		p.advance()
	}
}

func (p *Parser) skipInlineWhitespace() {
	for !p.eof() && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t' || p.input[p.pos] == '\r') {
		p.advance()
	}
}

func (p *Parser) position() Pos { return Pos{Line: p.line, Column: p.col} }

func (p *Parser) errorf(format string, args ...any) error {
	return p.errorAt(p.position(), fmt.Sprintf(format, args...))
}

func (p *Parser) errorAt(pos Pos, msg string) error {
	return &ParseError{Filename: p.filename, Line: pos.Line, Column: pos.Column, Msg: msg}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isLetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
