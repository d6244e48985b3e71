package ui

import (
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/recera/ruitl/internal/scaffold"
)

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func keys(s string) tea.Msg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter     = tea.KeyMsg{Type: tea.KeyEnter}
	down      = tea.KeyMsg{Type: tea.KeyDown}
	esc       = tea.KeyMsg{Type: tea.KeyEsc}
	ctrlC     = tea.KeyMsg{Type: tea.KeyCtrlC}
	backspace = tea.KeyMsg{Type: tea.KeyBackspace}
)

func TestModel_Flow(t *testing.T) {
	m := NewModel(scaffold.Options{})
	m = send(m, keys("shop"), enter)
	if m.step != StepModule {
		t.Fatalf("step = %v, want StepModule", m.step)
	}
	if got := m.inputs[StepModule].Value(); got != "example.com/shop" {
		t.Errorf("module default = %q", got)
	}

	m = send(m, enter, down, enter)
	m = send(m, enter, enter)

	got, ok := m.Result()
	if !ok {
		t.Fatal("Result() not complete")
	}
	want := scaffold.Options{
		Name:      "shop",
		Module:    "example.com/shop",
		Directory: "shop",
		Template:  scaffold.TemplateNames()[1],
		Package:   "components",
		Port:      3000,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Result() mismatch (-want +got):\n%s", diff)
	}
}

func TestModel_Validation(t *testing.T) {
	m := NewModel(scaffold.Options{})
	m = send(m, keys("bad name"), enter)
	if m.step != StepName || m.errMsg == "" {
		t.Fatalf("invalid name accepted: step = %v", m.step)
	}
	if !strings.Contains(m.View(), m.errMsg) {
		t.Error("View() does not show the error")
	}

	m = NewModel(scaffold.Options{Name: "app"})
	m = send(m, enter, enter, enter)
	if m.step != StepPort {
		t.Fatalf("step = %v, want StepPort", m.step)
	}
	m = send(m, backspace, backspace, backspace, backspace, keys("x"), enter)
	if m.step != StepPort || m.errMsg == "" {
		t.Error("invalid port accepted")
	}

	m = send(m, esc)
	if m.step != StepTemplate {
		t.Errorf("esc: step = %v, want StepTemplate", m.step)
	}
}

func TestModel_Quit(t *testing.T) {
	m := send(NewModel(scaffold.Options{Name: "app"}), ctrlC)
	if _, ok := m.Result(); ok {
		t.Error("Result() ok after quit")
	}
	if m.View() != "" {
		t.Error("View() not empty after quit")
	}
}

func TestPrompter_Scaffold(t *testing.T) {
	in := strings.NewReader("bad name\nblog\n\n2\n8080\ny\n")
	got, err := NewPrompter(in, io.Discard).Scaffold(scaffold.Options{})
	if err != nil {
		t.Fatalf("Scaffold() error = %v", err)
	}
	want := scaffold.Options{
		Name:      "blog",
		Module:    "example.com/blog",
		Directory: "blog",
		Template:  scaffold.TemplateNames()[1],
		Package:   "components",
		Port:      8080,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Scaffold() mismatch (-want +got):\n%s", diff)
	}
}

func TestPrompter_Cancel(t *testing.T) {
	in := strings.NewReader("app\n\n\n\nn\n")
	if _, err := NewPrompter(in, io.Discard).Scaffold(scaffold.Options{}); !errors.Is(err, ErrCanceled) {
		t.Errorf("Scaffold() error = %v, want ErrCanceled", err)
	}
}

func TestPrompter_Select(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"\n", 1},
		{"1\n", 0},
		{"Gamma\n", 2},
		{"9\n", 1},
	}
	for _, tt := range tests {
		p := NewPrompter(strings.NewReader(tt.input), io.Discard)
		if got := p.Select("pick", []string{"alpha", "beta", "gamma"}, 1); got != tt.want {
			t.Errorf("Select(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
