// Package ui implements the interactive project creation wizard.
package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/recera/ruitl/internal/scaffold"
)

// Step is a screen of the wizard
type Step int

const (
	StepName Step = iota
	StepModule
	StepTemplate
	StepPort
	StepSummary
	StepDone
)

// KeyMap defines the wizard keys
type KeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Back  key.Binding
	Quit  key.Binding
}

var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// Model is the wizard state
type Model struct {
	step      Step
	opts      scaffold.Options
	inputs    map[Step]*textinput.Model
	templates []string
	selected  int
	errMsg    string
	quitting  bool
}

// NewModel creates a wizard prefilled from opts
func NewModel(opts scaffold.Options) Model {
	opts.Normalize()

	name := textinput.New()
	name.Placeholder = "my-ruitl-app"
	name.CharLimit = 50
	name.Width = 40
	name.SetValue(opts.Name)
	name.Focus()

	module := textinput.New()
	module.Placeholder = "github.com/you/my-ruitl-app"
	module.CharLimit = 200
	module.Width = 50
	if opts.Name != "" {
		module.SetValue(opts.Module)
	}

	port := textinput.New()
	port.Placeholder = "3000"
	port.CharLimit = 5
	port.Width = 10
	port.SetValue(strconv.Itoa(opts.Port))

	templates := scaffold.TemplateNames()
	selected := 0
	for i, t := range templates {
		if t == opts.Template {
			selected = i
		}
	}

	return Model{
		step:      StepName,
		opts:      opts,
		inputs:    map[Step]*textinput.Model{StepName: &name, StepModule: &module, StepPort: &port},
		templates: templates,
		selected:  selected,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.updateInput(msg)
	}

	if key.Matches(keyMsg, DefaultKeyMap.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	switch {
	case key.Matches(keyMsg, DefaultKeyMap.Enter):
		return m.next()
	case key.Matches(keyMsg, DefaultKeyMap.Back):
		if m.step > StepName {
			m.errMsg = ""
			m.focus(m.step - 1)
		}
		return m, nil
	}

	switch m.step {
	case StepTemplate:
		switch {
		case key.Matches(keyMsg, DefaultKeyMap.Up):
			if m.selected > 0 {
				m.selected--
			}
		case key.Matches(keyMsg, DefaultKeyMap.Down):
			if m.selected < len(m.templates)-1 {
				m.selected++
			}
		}
		return m, nil
	case StepSummary:
		return m, nil
	}
	return m.updateInput(msg)
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	in, ok := m.inputs[m.step]
	if !ok {
		return m, nil
	}
	updated, cmd := in.Update(msg)
	*in = updated
	return m, cmd
}

// next validates the current step and advances
func (m Model) next() (tea.Model, tea.Cmd) {
	m.errMsg = ""
	switch m.step {
	case StepName:
		name := strings.TrimSpace(m.inputs[StepName].Value())
		if !scaffold.ValidName(name) {
			m.errMsg = "Use 1-50 letters, numbers, hyphens or underscores."
			return m, nil
		}
		if name != m.opts.Name {
			m.opts.Name = name
			m.opts.Directory = name
			m.inputs[StepModule].SetValue("example.com/" + name)
		}
	case StepModule:
		module := strings.TrimSpace(m.inputs[StepModule].Value())
		if module == "" || strings.ContainsAny(module, " \t") {
			m.errMsg = "Enter a module path such as github.com/you/app."
			return m, nil
		}
		m.opts.Module = module
	case StepTemplate:
		m.opts.Template = m.templates[m.selected]
	case StepPort:
		port, err := strconv.Atoi(strings.TrimSpace(m.inputs[StepPort].Value()))
		if err != nil || port < 1 || port > 65535 {
			m.errMsg = "Enter a port between 1 and 65535."
			return m, nil
		}
		m.opts.Port = port
	case StepSummary:
		m.step = StepDone
		return m, tea.Quit
	}
	m.focus(m.step + 1)
	return m, nil
}

func (m *Model) focus(step Step) {
	for s, in := range m.inputs {
		if s == step {
			in.Focus()
		} else {
			in.Blur()
		}
	}
	m.step = step
}

// Result returns the chosen options and whether the wizard completed
func (m Model) Result() (scaffold.Options, bool) {
	return m.opts, m.step == StepDone && !m.quitting
}

// View implements tea.Model
func (m Model) View() string {
	if m.quitting || m.step == StepDone {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Create a ruitl project"))
	b.WriteString("\n")

	switch m.step {
	case StepName:
		b.WriteString(labelStyle.Render("Project name") + "\n")
		b.WriteString(m.inputs[StepName].View())
	case StepModule:
		b.WriteString(labelStyle.Render("Go module path") + "\n")
		b.WriteString(m.inputs[StepModule].View())
	case StepTemplate:
		b.WriteString(labelStyle.Render("Template") + "\n")
		for i, t := range m.templates {
			line := fmt.Sprintf("  %s  %s", t, mutedStyle.Render(scaffold.Templates[t]))
			if i == m.selected {
				line = selectedStyle.Render("> "+t) + "  " + mutedStyle.Render(scaffold.Templates[t])
			}
			b.WriteString(line + "\n")
		}
	case StepPort:
		b.WriteString(labelStyle.Render("Dev server port") + "\n")
		b.WriteString(m.inputs[StepPort].View())
	case StepSummary:
		summary := fmt.Sprintf("Name:      %s\nModule:    %s\nDirectory: %s\nTemplate:  %s\nPort:      %d",
			m.opts.Name, m.opts.Module, m.opts.Directory, m.opts.Template, m.opts.Port)
		b.WriteString(boxStyle.Render(summary))
		b.WriteString("\n" + mutedStyle.Render("enter: create  esc: back"))
	}

	if m.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render(m.errMsg))
	}
	b.WriteString("\n\n" + mutedStyle.Render("enter: next  esc: back  ctrl+c: quit") + "\n")
	return b.String()
}
