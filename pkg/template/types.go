package template

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"strings"
	"unicode"
)

// vocabulary maps scalar type names accepted in prop declarations to Go
var vocabulary = map[string]string{
	"String": "string",
	"str":    "string",
	"i8":     "int8",
	"i16":    "int16",
	"i32":    "int32",
	"i64":    "int64",
	"isize":  "int",
	"u8":     "uint8",
	"u16":    "uint16",
	"u32":    "uint32",
	"u64":    "uint64",
	"usize":  "uint",
	"f32":    "float32",
	"f64":    "float64",
	"char":   "rune",
}

// predeclared holds the Go type names that need no import
var predeclared = map[string]bool{
	"any": true, "bool": true, "byte": true, "comparable": true,
	"complex64": true, "complex128": true, "error": true,
	"float32": true, "float64": true, "int": true, "int8": true,
	"int16": true, "int32": true, "int64": true, "rune": true,
	"string": true, "uint": true, "uint8": true, "uint16": true,
	"uint32": true, "uint64": true, "uintptr": true,
}

// scope knows which names a type or expression may refer to
type scope struct {
	// packages maps Go package names to import paths
	packages map[string]string
	// items maps unqualified import items to their package name
	items map[string]string
	// typeParams holds the generic parameter names of the current component
	typeParams map[string]bool
	// used records the packages referenced by generated code
	used map[string]bool
}

func newScope(imports []ImportDef) *scope {
	s := &scope{
		packages:   map[string]string{},
		items:      map[string]string{},
		typeParams: map[string]bool{},
		used:       map[string]bool{},
	}
	for _, imp := range imports {
		name := imp.Name()
		s.packages[name] = imp.Path
		for _, item := range imp.Items {
			s.items[item] = name
		}
	}
	return s
}

// translateType rewrites the declaration vocabulary into Go type syntax.
// Go syntax passes through unchanged.
func translateType(src string) (string, error) {
	s := strings.TrimSpace(src)
	s = strings.TrimPrefix(s, "&mut ")
	s = strings.TrimPrefix(s, "&")
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty type")
	}

	switch {
	case strings.HasPrefix(s, "*"):
		inner, err := translateType(s[1:])
		return "*" + inner, err

	case strings.HasPrefix(s, "[]"):
		inner, err := translateType(s[2:])
		return "[]" + inner, err

	case strings.HasPrefix(s, "map["):
		end := matchingBracket(s, 3)
		if end < 0 {
			return "", fmt.Errorf("unbalanced brackets in %q", s)
		}
		key, err := translateType(s[4:end])
		if err != nil {
			return "", err
		}
		val, err := translateType(s[end+1:])
		if err != nil {
			return "", err
		}
		return "map[" + key + "]" + val, nil

	case strings.HasPrefix(s, "["):
		end := matchingBracket(s, 0)
		if end < 0 {
			return "", fmt.Errorf("unbalanced brackets in %q", s)
		}
		inside := s[1:end]
		if end == len(s)-1 {
			// [T; N] is a fixed array, [T] a slice
			if elem, n, ok := strings.Cut(inside, ";"); ok {
				e, err := translateType(elem)
				return "[" + strings.TrimSpace(n) + "]" + e, err
			}
			e, err := translateType(inside)
			return "[]" + e, err
		}
		elem, err := translateType(s[end+1:])
		return "[" + inside + "]" + elem, err
	}

	if i := strings.IndexByte(s, '<'); i > 0 {
		if !strings.HasSuffix(s, ">") {
			return "", fmt.Errorf("malformed generic type %q", s)
		}
		name := strings.TrimSpace(s[:i])
		var args []string
		for _, a := range splitTopLevel(s[i+1:len(s)-1], ',') {
			t, err := translateType(a)
			if err != nil {
				return "", err
			}
			args = append(args, t)
		}
		return translateGeneric(name, args)
	}

	if goName, ok := vocabulary[s]; ok {
		return goName, nil
	}
	return s, nil
}

func translateGeneric(name string, args []string) (string, error) {
	want := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("%s expects %d type arguments, got %d", name, n, len(args))
		}
		return nil
	}

	switch name {
	case "Vec", "VecDeque", "LinkedList":
		if err := want(1); err != nil {
			return "", err
		}
		return "[]" + args[0], nil
	case "Option":
		if err := want(1); err != nil {
			return "", err
		}
		return "*" + args[0], nil
	case "Box", "Rc", "Arc", "RefCell", "Cell", "Cow":
		if err := want(1); err != nil {
			return "", err
		}
		return args[0], nil
	case "HashMap", "BTreeMap", "IndexMap":
		if err := want(2); err != nil {
			return "", err
		}
		return "map[" + args[0] + "]" + args[1], nil
	case "HashSet", "BTreeSet":
		if err := want(1); err != nil {
			return "", err
		}
		return "map[" + args[0] + "]struct{}", nil
	}

	if len(args) == 0 {
		return "", fmt.Errorf("empty type argument list for %s", name)
	}
	// user generic types use Go's instantiation syntax
	return name + "[" + strings.Join(args, ", ") + "]", nil
}

// resolveType translates src and checks that every name it mentions is
// known. Unqualified import items are qualified with their package.
func (s *scope) resolveType(src string) (string, error) {
	goType, err := translateType(src)
	if err != nil {
		return "", err
	}

	fset := token.NewFileSet()
	expr, err := parser.ParseExprFrom(fset, "", goType, 0)
	if err != nil {
		return "", fmt.Errorf("invalid type %q", src)
	}

	var resolveErr error
	var visit func(n ast.Node) bool
	visit = func(n ast.Node) bool {
		if resolveErr != nil {
			return false
		}
		switch n := n.(type) {
		case nil:
			return false

		case *ast.SelectorExpr:
			pkg, ok := n.X.(*ast.Ident)
			if !ok {
				resolveErr = fmt.Errorf("invalid type %q", src)
				return false
			}
			if _, ok := s.packages[pkg.Name]; !ok {
				resolveErr = fmt.Errorf("package %s is not imported", pkg.Name)
				return false
			}
			s.used[pkg.Name] = true
			return false

		case *ast.Field:
			ast.Inspect(n.Type, visit)
			return false

		case *ast.BasicLit:
			return false

		case *ast.Ident:
			if err := s.resolveTypeName(n); err != nil {
				resolveErr = err
			}
			return false

		case *ast.ArrayType, *ast.StarExpr, *ast.MapType, *ast.ChanType,
			*ast.FuncType, *ast.FieldList, *ast.StructType, *ast.InterfaceType,
			*ast.IndexExpr, *ast.IndexListExpr, *ast.Ellipsis, *ast.ParenExpr:
			return true
		}
		resolveErr = fmt.Errorf("invalid type %q", src)
		return false
	}
	ast.Inspect(expr, visit)
	if resolveErr != nil {
		return "", resolveErr
	}

	var buf bytes.Buffer
	if err := printer.Fprint(&buf, fset, expr); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// resolveTypeName accepts predeclared types, type parameters, import items
// and exported names declared elsewhere in the output package
func (s *scope) resolveTypeName(id *ast.Ident) error {
	switch {
	case predeclared[id.Name], s.typeParams[id.Name]:
		return nil
	case s.items[id.Name] != "":
		pkg := s.items[id.Name]
		s.used[pkg] = true
		id.Name = pkg + "." + id.Name
		return nil
	case ast.IsExported(id.Name):
		return nil
	}
	return fmt.Errorf("unknown type %s", id.Name)
}

// exportName turns a declared prop name into an exported Go identifier:
// snake_case and camelCase both become CamelCase, with common initialisms
// kept upper case.
func exportName(name string) string {
	var words []string
	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '-' }) {
		words = append(words, splitCamel(part)...)
	}

	var sb strings.Builder
	for _, w := range words {
		if up := strings.ToUpper(w); initialisms[up] {
			sb.WriteString(up)
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		sb.WriteString(string(r))
	}
	if sb.Len() == 0 {
		return "X"
	}
	return sb.String()
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	runes := []rune(s)
	for i := 1; i < len(runes); i++ {
		if unicode.IsUpper(runes[i]) && !unicode.IsUpper(runes[i-1]) {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	return append(words, string(runes[start:]))
}

var initialisms = map[string]bool{
	"API": true, "CSS": true, "HTML": true, "HTTP": true, "HTTPS": true,
	"ID": true, "JSON": true, "SQL": true, "URL": true, "URI": true,
	"UUID": true, "XML": true,
}

// reservedNames may not be used as prop names because generated code
// declares them or relies on their predeclared meaning
var reservedNames = map[string]bool{
	"props": true, "ctx": true, "node": true, "renderErr": true,
	"html": true, "component": true,
	"nil": true, "true": true, "false": true, "iota": true,
	"len": true, "cap": true, "append": true, "make": true, "new": true,
	"panic": true, "string": true, "int": true, "bool": true,
	"error": true, "any": true,
}

func checkLocalName(name string) error {
	if token.IsKeyword(name) {
		return fmt.Errorf("%q is a Go keyword", name)
	}
	if reservedNames[name] {
		return fmt.Errorf("%q is reserved in generated code", name)
	}
	if strings.HasPrefix(name, "ruitl") {
		return fmt.Errorf("names starting with ruitl are reserved")
	}
	return nil
}

// matchingBracket returns the index of the ']' closing the '[' at open
func matchingBracket(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits s on sep where sep is outside brackets and literals
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch {
			case c == '\\' && quote != '`':
				i++
			case c == quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}
