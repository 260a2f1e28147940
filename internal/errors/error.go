package errors

import (
	"bufio"
	"fmt"
	"os"
)

// Category represents the type of error.
type Category string

const (
	CategoryLint    Category = "lint"
	CategoryPublish Category = "publish"
	CategoryConfig  Category = "config"
	CategoryCLI     Category = "cli"
)

// Location represents a position in a file, usually a commit message.
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

// UseError is a structured error with location, suggestions, and documentation.
type UseError struct {
	// Code is a unique error identifier (e.g., "L005").
	Code string

	// Category is the error type (lint, publish, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is where the error occurred.
	Location *Location

	// Context contains the lines surrounding the location.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example is input showing the correct form.
	Example string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *UseError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *UseError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a file location to the error and captures the
// surrounding lines.
func (e *UseError) WithLocation(file string, line, column int) *UseError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *UseError) WithSuggestion(s string) *UseError {
	e.Suggestion = s
	return e
}

// WithExample adds a corrected example to the error.
func (e *UseError) WithExample(ex string) *UseError {
	e.Example = ex
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *UseError) WithDetail(d string) *UseError {
	e.Detail = d
	return e
}

// WithContext adds custom context lines to the error.
func (e *UseError) WithContext(lines []string) *UseError {
	e.Context = lines
	return e
}

// Wrap wraps another error.
func (e *UseError) Wrap(err error) *UseError {
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

// New creates a UseError from a registered error code.
func New(code string) *UseError {
	template, ok := registry[code]
	if !ok {
		return &UseError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &UseError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new UseError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *UseError {
	return &UseError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a UseError.
func FromError(err error, code string) *UseError {
	if err == nil {
		return nil
	}
	if ue, ok := err.(*UseError); ok {
		return ue
	}
	return New(code).Wrap(err)
}
