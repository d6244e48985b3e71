package build

import (
	"bytes"
	"fmt"
	"go/format"
	"path/filepath"
	"sort"

	"github.com/recera/ruitl/pkg/template"
)

// IndexFile is written next to the generated files of each package
const IndexFile = "ruitl_components.go"

// writeIndexes writes one index per output directory listing the
// components that compiled
func (b *Builder) writeIndexes(units []*unit, res *Result) error {
	byDir := map[string][]template.ComponentDef{}
	for i, u := range units {
		if u == nil || res.Files[i].Err != nil {
			continue
		}
		dir := filepath.Dir(u.output)
		byDir[dir] = append(byDir[dir], u.file.Components...)
	}

	dirs := make([]string, 0, len(byDir))
	for dir := range byDir {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		src, err := Index(b.opts.Package, byDir[dir])
		if err != nil {
			return err
		}
		var fr FileResult
		if err := b.write(filepath.Join(dir, IndexFile), src, &fr); err != nil {
			return err
		}
	}
	return nil
}

// Index renders the index source for defs
func Index(pkg string, defs []template.ComponentDef) ([]byte, error) {
	sorted := append([]template.ComponentDef(nil), defs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var buf bytes.Buffer
	buf.WriteString("// Code generated by ruitl. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", pkg)
	buf.WriteString("import \"github.com/recera/ruitl/pkg/component\"\n\n")

	buf.WriteString("// ComponentNames lists the components generated in this package.\n")
	buf.WriteString("var ComponentNames = []string{\n")
	for _, d := range sorted {
		fmt.Fprintf(&buf, "\t%q,\n", d.Name)
	}
	buf.WriteString("}\n\n")

	buf.WriteString("// Register adds every non-generic component to r, bound to its default props.\n")
	buf.WriteString("func Register(r *component.Registry) {\n")
	for _, d := range sorted {
		if len(d.Generics) > 0 {
			continue
		}
		fmt.Fprintf(&buf, "\tr.Register(%q, component.Bind[%sProps](%s{}, Default%sProps()))\n", d.Name, d.Name, d.Name, d.Name)
	}
	buf.WriteString("}\n")

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format index: %w", err)
	}
	return src, nil
}
