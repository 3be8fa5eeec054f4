package errors

import (
	"bufio"
	"fmt"
	"os"
)

// Category represents the type of error.
type Category string

const (
	CategoryRuntime   Category = "runtime"
	CategoryScheduler Category = "scheduler"
	CategoryConfig    Category = "config"
	CategoryScenario  Category = "scenario"
	CategoryCLI       Category = "cli"
)

// Location represents a position in a source file such as a scenario.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// ReactiveError is a structured diagnostic with a code, category and
// optional source location.
type ReactiveError struct {
	// Code is a unique error identifier (e.g., "R001").
	Code string

	// Category is the error type (runtime, scheduler, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the source location where the error occurred.
	Location *Location

	// Context contains surrounding source lines.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *ReactiveError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *ReactiveError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a source location to the error and captures the
// surrounding lines when the file is readable.
func (e *ReactiveError) WithLocation(file string, line, column int) *ReactiveError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *ReactiveError) WithSuggestion(s string) *ReactiveError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *ReactiveError) WithDetail(d string) *ReactiveError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted detail to the error.
func (e *ReactiveError) WithDetailf(format string, args ...any) *ReactiveError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *ReactiveError) Wrap(err error) *ReactiveError {
	e.Wrapped = err
	return e
}

// readContextLines reads lines around the specified line number from a file.
func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates a ReactiveError from a registered error code.
func New(code string) *ReactiveError {
	template, ok := registry[code]
	if !ok {
		return &ReactiveError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &ReactiveError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new ReactiveError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *ReactiveError {
	return &ReactiveError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a ReactiveError.
func FromError(err error, code string) *ReactiveError {
	if err == nil {
		return nil
	}
	if re, ok := err.(*ReactiveError); ok {
		return re
	}
	return New(code).Wrap(err)
}
