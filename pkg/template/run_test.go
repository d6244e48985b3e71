package template

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const runSource = `
component Hello {
    props {
        name: String,
    }
}

ruitl Hello(name: String) {
    <div><h1>Hello, {name}!</h1></div>
}

component Toggle {
    props {
        on: bool,
    }
}

ruitl Toggle(on: bool) {
    <button disabled?={on}>x</button>
}

component Items {
    props {
        items: Vec<String>,
    }
}

ruitl Items(items: Vec<String>) {
    <ul>
        for item in items {
            <li>{item}</li>
        }
    </ul>
}

component Maybe {
    props {
        show: bool,
        note: String?,
    }
}

ruitl Maybe(show: bool) {
    if show {
        <p>{note}</p>
    }
}

component List<T> {
    props {
        items: Vec<T>,
    }
}

ruitl List() {
    <ol>for it in items { <li>{it}</li> }</ol>
}
`

const runMain = `package main

import (
	"fmt"

	"github.com/recera/ruitl/pkg/component"
	"github.com/recera/ruitl/pkg/html"
)

func emit(n html.Node, err error) {
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(html.Render(n))
}

func main() {
	ctx := component.NewContext()

	emit(component.Render[HelloProps](Hello{}, HelloProps{Name: "World"}, ctx))
	emit(component.Render[HelloProps](Hello{}, HelloProps{Name: "<b>"}, ctx))

	emit(Toggle{}.Render(ToggleProps{On: true}, ctx))
	emit(Toggle{}.Render(ToggleProps{On: false}, ctx))

	for _, n := range []int{0, 1, 3} {
		items := make([]string, n)
		for i := range items {
			items[i] = fmt.Sprint("i", i)
		}
		node, err := Items{}.Render(ItemsProps{Items: items}, ctx)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		loop := node.Kids[0]
		fmt.Println(loop.Kind, len(loop.Kids), html.Render(node))
	}

	node, err := Maybe{}.Render(MaybeProps{Show: false}, ctx)
	fmt.Println(node.IsEmpty(), err)
	note := "hi"
	emit(Maybe{}.Render(MaybeProps{Show: true, Note: &note}, ctx))
	emit(Maybe{}.Render(MaybeProps{Show: true}, ctx))

	SetListPropsValidator(func(p ListProps[int]) error {
		if len(p.Items) == 0 {
			return fmt.Errorf("no items")
		}
		return nil
	})
	emit(component.Render[ListProps[int]](List[int]{}, ListProps[int]{}, ctx))
	emit(component.Render[ListProps[int]](List[int]{}, ListProps[int]{Items: []int{7}}, ctx))
	emit(component.Render[ListProps[string]](List[string]{}, ListProps[string]{}, ctx))
}
`

// TestCompile_Run builds the generated code together with a small program
// and checks what it renders.
func TestCompile_Run(t *testing.T) {
	if testing.Short() {
		t.Skip("builds a Go program")
	}
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go command not available")
	}

	out, err := Compile(runSource, Options{Filename: "run.ruitl", Package: "main"})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	// the program has to live inside this module to import its packages
	if err := os.MkdirAll("testdata", 0755); err != nil {
		t.Fatal(err)
	}
	dir, err := os.MkdirTemp("testdata", "run")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.RemoveAll(dir)
		os.Remove("testdata")
	})
	if err := os.WriteFile(filepath.Join(dir, "run.ruitl.go"), out, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte(runMain), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := exec.Command(goBin, "run", "./"+filepath.ToSlash(dir))
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("go run: %v\n%s\ngenerated:\n%s", err, output, out)
	}

	want := []string{
		"<div><h1>Hello, World!</h1></div>",
		"<div><h1>Hello, &lt;b&gt;!</h1></div>",
		"<button disabled>x</button>",
		"<button>x</button>",
		"fragment 0 <ul></ul>",
		"fragment 1 <ul><li>i0</li></ul>",
		"fragment 3 <ul><li>i0</li><li>i1</li><li>i2</li></ul>",
		"true <nil>",
		"<p>hi</p>",
		"<p></p>",
		"error: invalid props: no items",
		"<ol><li>7</li></ol>",
		"<ol></ol>",
	}
	got := strings.Split(strings.TrimSpace(string(output)), "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("program output mismatch (-want +got):\n%s", diff)
	}
}
