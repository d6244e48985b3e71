package template

import (
	"errors"
	"fmt"
)

var (
	// ErrParse matches every *ParseError with errors.Is
	ErrParse = errors.New("parse error")

	// ErrGenerate matches every *GenerationError with errors.Is
	ErrGenerate = errors.New("generation error")

	// ErrPreview wraps failures while interpreting a template for preview
	ErrPreview = errors.New("preview error")
)

// ParseError reports malformed source. Parsing stops at the first one.
type ParseError struct {
	Filename string
	Line     int
	Column   int
	Msg      string
}

func (e *ParseError) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.Filename, e.Line, e.Column, e.Msg)
}

// Is reports whether target is ErrParse
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// GenerationError reports a file that parsed but cannot be lowered to Go
type GenerationError struct {
	Filename  string
	Component string
	Pos       Pos
	Msg       string
}

func (e *GenerationError) Error() string {
	var loc string
	switch {
	case e.Filename != "" && e.Pos.Line > 0:
		loc = fmt.Sprintf("%s:%d:%d: ", e.Filename, e.Pos.Line, e.Pos.Column)
	case e.Filename != "":
		loc = e.Filename + ": "
	case e.Pos.Line > 0:
		loc = fmt.Sprintf("%d:%d: ", e.Pos.Line, e.Pos.Column)
	}
	if e.Component != "" {
		return fmt.Sprintf("%s%s: %s", loc, e.Component, e.Msg)
	}
	return loc + e.Msg
}

// Is reports whether target is ErrGenerate
func (e *GenerationError) Is(target error) bool { return target == ErrGenerate }
