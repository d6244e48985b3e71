package html

import (
	"fmt"
	"strconv"
)

// Display converts a value produced by a template expression into the text
// shown to the user. nil renders as the empty string.
func Display(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case *string:
		if x == nil {
			return ""
		}
		return *x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case Node:
		return x.TextContent()
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	}
	return fmt.Sprint(v)
}

// Deref returns the value behind p, or the zero value when p is nil.
// Generated code uses it to display optional props.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Ptr returns a pointer to a copy of v. Generated code uses it to pass
// values to optional props.
func Ptr[T any](v T) *T { return &v }

// Embed turns the value of a template expression into a node. Nodes are
// spliced in as they are, node slices become fragments and everything else
// is displayed as escaped text.
func Embed(v any) Node {
	switch x := v.(type) {
	case Node:
		return x
	case []Node:
		return Fragment(x...)
	}
	return Text(Display(v))
}
