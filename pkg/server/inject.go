package server

import (
	"bytes"
	"strings"

	"github.com/recera/ruitl/pkg/html"
)

// InjectScript appends a <script> holding js to the <body> of doc. When the
// tree has no body the script is appended after doc.
func InjectScript(doc html.Node, js string) html.Node {
	script := html.Elem("script").Children(html.Raw(js))
	if out, ok := appendToBody(doc, script); ok {
		return out
	}
	return html.Fragment(doc, script)
}

func appendToBody(n html.Node, script html.Node) (html.Node, bool) {
	switch n.Kind {
	case html.KindElement:
		if strings.EqualFold(n.Tag, "body") {
			return n.Children(script), true
		}
	case html.KindFragment:
	default:
		return n, false
	}

	for i, kid := range n.Kids {
		if out, ok := appendToBody(kid, script); ok {
			kids := append([]html.Node(nil), n.Kids...)
			kids[i] = out
			n.Kids = kids
			return n, true
		}
	}
	return n, false
}

// InjectScriptHTML inserts a script tag before the last </body> of a
// rendered page, or appends it when there is none
func InjectScriptHTML(page []byte, js string) []byte {
	tag := []byte("<script>" + js + "</script>")
	idx := bytes.LastIndex(bytes.ToLower(page), []byte("</body>"))
	if idx < 0 {
		return append(append([]byte(nil), page...), tag...)
	}
	out := make([]byte, 0, len(page)+len(tag))
	out = append(out, page[:idx]...)
	out = append(out, tag...)
	return append(out, page[idx:]...)
}
