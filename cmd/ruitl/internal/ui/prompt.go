package ui

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/recera/ruitl/internal/scaffold"
)

// Prompter asks questions line by line
type Prompter struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewPrompter creates a prompter reading answers from r
func NewPrompter(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{reader: bufio.NewReader(r), out: w}
}

// Text prompts for text input
func (p *Prompter) Text(prompt, defaultValue string) string {
	if defaultValue != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", prompt, defaultValue)
	} else {
		fmt.Fprintf(p.out, "%s: ", prompt)
	}

	input, _ := p.reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultValue
	}
	return input
}

// Confirm prompts for yes/no confirmation
func (p *Prompter) Confirm(prompt string, defaultYes bool) bool {
	choices := "y/N"
	if defaultYes {
		choices = "Y/n"
	}
	fmt.Fprintf(p.out, "%s [%s]: ", prompt, choices)

	input, _ := p.reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return defaultYes
	}
	return input == "y" || input == "yes"
}

// Select prompts for one of options by number or name
func (p *Prompter) Select(prompt string, options []string, defaultIndex int) int {
	fmt.Fprintln(p.out, prompt)
	for i, option := range options {
		if i == defaultIndex {
			fmt.Fprintf(p.out, "  > %d) %s (default)\n", i+1, option)
		} else {
			fmt.Fprintf(p.out, "    %d) %s\n", i+1, option)
		}
	}
	fmt.Fprintf(p.out, "Enter choice [%d]: ", defaultIndex+1)

	input, _ := p.reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultIndex
	}
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(options) {
		return n - 1
	}
	for i, option := range options {
		if strings.EqualFold(option, input) {
			return i
		}
	}

	fmt.Fprintln(p.out, "Invalid choice, using default.")
	return defaultIndex
}

// Scaffold asks for the project options, re-asking invalid answers up to
// three times
func (p *Prompter) Scaffold(opts scaffold.Options) (scaffold.Options, error) {
	opts.Normalize()

	name, err := p.ask("Project name", opts.Name, func(s string) error {
		if !scaffold.ValidName(s) {
			return fmt.Errorf("invalid project name %q", s)
		}
		return nil
	})
	if err != nil {
		return opts, err
	}
	if name != opts.Name {
		opts.Name = name
		opts.Directory = name
		opts.Module = "example.com/" + name
	}

	opts.Module = p.Text("Go module path", opts.Module)

	templates := scaffold.TemplateNames()
	def := 0
	for i, t := range templates {
		if t == opts.Template {
			def = i
		}
	}
	opts.Template = templates[p.Select("Select a template:", templates, def)]

	port, err := p.ask("Dev server port", strconv.Itoa(opts.Port), func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 65535 {
			return fmt.Errorf("invalid port %q", s)
		}
		return nil
	})
	if err != nil {
		return opts, err
	}
	opts.Port, _ = strconv.Atoi(port)

	if !p.Confirm(fmt.Sprintf("Create %s in %s?", opts.Name, opts.Directory), true) {
		return opts, ErrCanceled
	}
	return opts, nil
}

func (p *Prompter) ask(prompt, def string, valid func(string) error) (string, error) {
	var err error
	for range 3 {
		v := p.Text(prompt, def)
		if err = valid(v); err == nil {
			return v, nil
		}
		fmt.Fprintln(p.out, err)
	}
	return "", err
}
