package html

import (
	"errors"
	"testing"
)

func TestRender_TextNodes(t *testing.T) {
	tests := []struct {
		name     string
		node     Node
		expected string
	}{
		{
			name:     "simple text",
			node:     Text("Hello World"),
			expected: "Hello World",
		},
		{
			name:     "script tag is escaped",
			node:     Text("<script>"),
			expected: "&lt;script&gt;",
		},
		{
			name:     "text with HTML entities",
			node:     Text("<script>alert('xss')</script>"),
			expected: "&lt;script&gt;alert(&#39;xss&#39;)&lt;/script&gt;",
		},
		{
			name:     "text with quotes",
			node:     Text(`"Hello" & 'World'`),
			expected: "&#34;Hello&#34; &amp; &#39;World&#39;",
		},
		{
			name:     "raw passes through",
			node:     Raw("<b>x</b>"),
			expected: "<b>x</b>",
		},
		{
			name:     "empty renders nothing",
			node:     Empty(),
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := Render(tt.node); result != tt.expected {
				t.Errorf("Render() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestRender_Elements(t *testing.T) {
	tests := []struct {
		name     string
		node     Node
		expected string
	}{
		{
			name:     "empty div",
			node:     Elem("div"),
			expected: "<div></div>",
		},
		{
			name:     "nested",
			node:     Elem("div").Children(Elem("h1").Children(Text("Hello, World!"))),
			expected: "<div><h1>Hello, World!</h1></div>",
		},
		{
			name:     "string attribute is escaped",
			node:     Elem("a").Attr("title", `Tom & "Jerry"`),
			expected: `<a title="Tom &amp; &#34;Jerry&#34;"></a>`,
		},
		{
			name:     "boolean attribute",
			node:     Elem("input").BoolAttr("disabled"),
			expected: `<input disabled />`,
		},
		{
			name:     "list attribute",
			node:     Elem("span").Class("btn", "btn-<primary>"),
			expected: `<span class="btn btn-&lt;primary&gt;"></span>`,
		},
		{
			name:     "last write wins and keeps position",
			node:     Elem("p").Attr("id", "a").Attr("class", "c").Attr("id", "b"),
			expected: `<p id="b" class="c"></p>`,
		},
		{
			name:     "img with children is still void",
			node:     Elem("img").Attr("src", "x.png").Children(Text("ignored")),
			expected: `<img src="x.png" />`,
		},
		{
			name:     "uppercase void tag",
			node:     Elem("BR"),
			expected: `<BR />`,
		},
		{
			name:     "explicit self closing",
			node:     SelfClosing("my-widget").Children(Text("ignored")),
			expected: `<my-widget />`,
		},
		{
			name:     "fragment has no wrapper",
			node:     Fragment(Text("a"), Elem("br"), Raw("<i>b</i>")),
			expected: `a<br /><i>b</i>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := Render(tt.node); result != tt.expected {
				t.Errorf("Render() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestRender_ConditionalAttribute(t *testing.T) {
	for _, cond := range []bool{true, false} {
		got := Render(Elem("button").AttrIf("disabled", cond))
		want := "<button></button>"
		if cond {
			want = "<button disabled></button>"
		}
		if got != want {
			t.Errorf("AttrIf(%v) rendered %q, want %q", cond, got, want)
		}
	}
}

func TestNode_BuildersDoNotAlias(t *testing.T) {
	base := Elem("div").Attr("id", "a")
	left := base.Attr("id", "left")
	right := base.Attr("id", "right")

	if v, _ := base.Get("id"); v.Str != "a" {
		t.Errorf("base mutated: %q", v.Str)
	}
	if v, _ := left.Get("id"); v.Str != "left" {
		t.Errorf("left = %q", v.Str)
	}
	if v, _ := right.Get("id"); v.Str != "right" {
		t.Errorf("right = %q", v.Str)
	}
}

func TestNode_IsEmpty(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want bool
	}{
		{"empty", Empty(), true},
		{"empty text", Text(""), true},
		{"text", Text("x"), false},
		{"empty raw", Raw(""), true},
		{"fragment without kids", Fragment(), true},
		{"fragment of empties", Fragment(Empty(), Text("")), true},
		{"fragment with text", Fragment(Empty(), Text("x")), false},
		{"element without kids", Elem("div"), false},
		{"void element", Elem("br"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNode_TextContent(t *testing.T) {
	n := Elem("div").Children(Text("Hello, "), Elem("b").Children(Text("World")), Elem("img").Children(Text("x")))
	if got := n.TextContent(); got != "Hello, World" {
		t.Errorf("TextContent() = %q", got)
	}
}

type failWriter struct{}

var errWrite = errors.New("write failed")

func (failWriter) Write([]byte) (int, error) { return 0, errWrite }

func TestRenderTo_PropagatesWriterError(t *testing.T) {
	err := RenderTo(failWriter{}, Elem("div").Children(Text("x")))
	if !errors.Is(err, errWrite) {
		t.Errorf("RenderTo() error = %v, want %v", err, errWrite)
	}
}

func TestDisplay(t *testing.T) {
	s := "opt"
	var nilStr *string
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "x", "x"},
		{"string pointer", &s, "opt"},
		{"nil string pointer", nilStr, ""},
		{"int", 42, "42"},
		{"int32", int32(7), "7"},
		{"float", 1.5, "1.5"},
		{"bool", true, "true"},
		{"error", errWrite, "write failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Display(tt.in); got != tt.want {
				t.Errorf("Display(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDeref(t *testing.T) {
	n := 3
	if got := Deref(&n); got != 3 {
		t.Errorf("Deref(&3) = %d", got)
	}
	if got := Deref[string](nil); got != "" {
		t.Errorf("Deref(nil) = %q", got)
	}
}
