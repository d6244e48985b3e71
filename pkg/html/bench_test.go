package html

import (
	"fmt"
	"io"
	"testing"
)

// generate1kNodeTree builds a list page with 1000 element nodes
func generate1kNodeTree() Node {
	items := make([]Node, 0, 250)
	for i := 0; i < 250; i++ {
		items = append(items, Elem("li").Class("item", fmt.Sprintf("item-%d", i)).Children(
			Elem("span").Attr("data-id", fmt.Sprint(i)).Children(Text(fmt.Sprintf("Item <%d>", i))),
			Elem("a").Attr("href", fmt.Sprintf("/items/%d?x=1&y=2", i)).Children(Text("open")),
			SelfClosing("img").Attr("src", "/i.png").AttrIf("hidden", i%2 == 0),
		))
	}
	return Elem("ul").Children(items...)
}

func BenchmarkRender1kNodes(b *testing.B) {
	root := generate1kNodeTree()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Render(root)
	}
}

func BenchmarkRenderTo1kNodes(b *testing.B) {
	root := generate1kNodeTree()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := RenderTo(io.Discard, root); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBuild1kNodes(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = generate1kNodeTree()
	}
}

func BenchmarkEscape(b *testing.B) {
	s := `<a href="x">Tom & "Jerry"</a>`
	for i := 0; i < b.N; i++ {
		_ = Escape(s)
	}
}
