package errors

import (
	"fmt"
	"strings"

	"ysr/internal/parser"
)

// ErrorLevel represents the severity of a diagnostic
type ErrorLevel string

const (
	Error   ErrorLevel = "error"
	Warning ErrorLevel = "warning"
	Note    ErrorLevel = "note"
	Help    ErrorLevel = "help"
)

// Diagnostic is a structured problem report tied to a file position
type Diagnostic struct {
	Level       ErrorLevel
	Code        string          // Error code like E0001
	Message     string          // Primary message
	File        string          // Name of the source the position refers to
	Position    parser.Position // Location in source
	Length      int             // Length of the problematic region
	Suggestions []Suggestion
	Notes       []string
	HelpText    string
}

// Suggestion represents a suggested fix
type Suggestion struct {
	Message     string
	Replacement string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s[%s]: %s", d.File, d.Position.Line, d.Position.Column, d.Level, d.Code, d.Message)
}

// DiagnosticBuilder provides a fluent interface for creating diagnostics
type DiagnosticBuilder struct {
	d Diagnostic
}

// NewError creates a new error builder
func NewError(code, message string, file string, pos parser.Position) *DiagnosticBuilder {
	return &DiagnosticBuilder{d: Diagnostic{
		Level:    Error,
		Code:     code,
		Message:  message,
		File:     file,
		Position: pos,
		Length:   1,
	}}
}

// NewWarning creates a new warning builder
func NewWarning(code, message string, file string, pos parser.Position) *DiagnosticBuilder {
	b := NewError(code, message, file, pos)
	b.d.Level = Warning
	return b
}

func (b *DiagnosticBuilder) WithLength(length int) *DiagnosticBuilder {
	b.d.Length = length
	return b
}

func (b *DiagnosticBuilder) WithSuggestion(message string) *DiagnosticBuilder {
	b.d.Suggestions = append(b.d.Suggestions, Suggestion{Message: message})
	return b
}

func (b *DiagnosticBuilder) WithReplacement(message, replacement string) *DiagnosticBuilder {
	b.d.Suggestions = append(b.d.Suggestions, Suggestion{Message: message, Replacement: replacement})
	return b
}

func (b *DiagnosticBuilder) WithNote(note string) *DiagnosticBuilder {
	b.d.Notes = append(b.d.Notes, note)
	return b
}

func (b *DiagnosticBuilder) WithHelp(help string) *DiagnosticBuilder {
	b.d.HelpText = help
	return b
}

// Build returns the completed diagnostic
func (b *DiagnosticBuilder) Build() Diagnostic {
	return b.d
}

// Common constructors

// UndefinedVariable creates an error for an unresolved $(NAME) reference
func UndefinedVariable(name, file string, pos parser.Position, similarNames []string) Diagnostic {
	builder := NewError(ErrorUndefinedVariable, fmt.Sprintf("undefined variable '%s'", name), file, pos).
		WithLength(len(name) + 3)

	switch len(similarNames) {
	case 0:
		builder = builder.WithSuggestion("make sure the variable is assigned before it is referenced").
			WithNote("simple assignments (:=) expand references at definition time")
	case 1:
		builder = builder.WithSuggestion(fmt.Sprintf("did you mean '%s'?", similarNames[0]))
	default:
		builder = builder.WithSuggestion(fmt.Sprintf("did you mean one of: '%s'?", strings.Join(similarNames, "', '")))
	}
	return builder.Build()
}

// UnknownFunction creates a warning for an unrecognised function call form
func UnknownFunction(name, file string, pos parser.Position, similarNames []string) Diagnostic {
	builder := NewWarning(WarningUnknownFunction, fmt.Sprintf("unknown function '%s'", name), file, pos).
		WithLength(len(name))
	if len(similarNames) > 0 {
		builder = builder.WithSuggestion(fmt.Sprintf("did you mean '%s'?", similarNames[0]))
	}
	return builder.Build()
}

// UnrecognizedLine creates the error reported by line-level error recovery
func UnrecognizedLine(got, file string, pos parser.Position) Diagnostic {
	return NewError(ErrorUnrecognizedLine, fmt.Sprintf("unrecognized line starting with '%s'", got), file, pos).
		WithLength(len(got)).
		WithHelp("expected an include directive, a variable assignment or a rule").
		Build()
}

// IncludeNotFound creates the error for a missing required include
func IncludeNotFound(name, file string, pos parser.Position, searched []string) Diagnostic {
	builder := NewError(ErrorIncludeNotFound, fmt.Sprintf("include file '%s' not found", name), file, pos).
		WithLength(len(name)).
		WithSuggestion("use '-include' to ignore missing files")
	if len(searched) > 1 {
		builder = builder.WithNote("searched: " + strings.Join(searched, ", "))
	}
	return builder.Build()
}

// DuplicateModule creates the warning reported when a module flag repeats
func DuplicateModule(name, file string, pos parser.Position) Diagnostic {
	return NewWarning(WarningDuplicateModule, fmt.Sprintf("module '%s' already added", name), file, pos).
		WithLength(len(name)).
		Build()
}
