// Package commitlint validates commit messages against the Conventional
// Commits form:
//
//	type(scope)!: subject
//
//	body
//
// The scope is optional, '!' marks a breaking change, and the body must be
// separated from the header by one blank line. Linting is pure string work;
// reading message files and rendering problems is the caller's job.
package commitlint

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultTypes is the default set of allowed commit types.
var DefaultTypes = []string{
	"feat", "fix", "docs", "style", "refactor",
	"perf", "test", "build", "ci", "chore", "revert",
}

// DefaultMaxHeaderLength is the default header line length limit.
const DefaultMaxHeaderLength = 72

// Config controls which messages pass.
type Config struct {
	// Types is the set of allowed commit types.
	Types []string

	// MaxHeaderLength is the maximum header line length. Zero disables
	// the check.
	MaxHeaderLength int

	// RequireScope requires every commit to carry a scope.
	RequireScope bool

	// Scopes is the set of allowed scopes. Empty allows any scope.
	Scopes []string
}

// DefaultConfig returns the standard Conventional Commits configuration.
func DefaultConfig() Config {
	return Config{
		Types:           append([]string(nil), DefaultTypes...),
		MaxHeaderLength: DefaultMaxHeaderLength,
	}
}

// Severity classifies how a problem affects the lint outcome.
type Severity string

const (
	// SeverityError fails the message.
	SeverityError Severity = "error"

	// SeverityWarning is reported but does not fail the message.
	SeverityWarning Severity = "warning"
)

// Problem is a single violation found in a commit message.
type Problem struct {
	// Code is the registered error code, e.g. "L002".
	Code string

	// Severity is the weight of the violation.
	Severity Severity

	// Line is the 1-based line in the message.
	Line int

	// Column is the 1-based column, or 0 when the problem has no single
	// position.
	Column int

	// Message describes the violation.
	Message string
}

// Report is the result of linting one commit message.
type Report struct {
	// Header is the first line of the message.
	Header string

	// Type, Scope, and Subject are the parsed header parts. They are
	// empty when the header did not parse.
	Type    string
	Scope   string
	Subject string

	// Breaking is true when the header carries '!' or the body declares
	// BREAKING CHANGE.
	Breaking bool

	// Skipped is true when the message is exempt from linting (merge,
	// revert, fixup, and squash commits).
	Skipped bool

	// Problems holds every violation found, in document order.
	Problems []Problem
}

// OK reports whether the message passed. Warnings do not fail a message.
func (r *Report) OK() bool {
	return len(r.Errors()) == 0
}

// Errors returns the problems that fail the message.
func (r *Report) Errors() []Problem {
	return r.filter(SeverityError)
}

// Warnings returns the problems that are reported but do not fail the
// message.
func (r *Report) Warnings() []Problem {
	return r.filter(SeverityWarning)
}

func (r *Report) filter(severity Severity) []Problem {
	var out []Problem
	for _, p := range r.Problems {
		if p.Severity == severity {
			out = append(out, p)
		}
	}
	return out
}

func (r *Report) add(code string, severity Severity, line, column int, message string) {
	r.Problems = append(r.Problems, Problem{
		Code:     code,
		Severity: severity,
		Line:     line,
		Column:   column,
		Message:  message,
	})
}

// Linter validates commit messages.
type Linter struct {
	config Config
	types  map[string]struct{}
	scopes map[string]struct{}
}

// New creates a Linter. Zero-value Config fields fall back to defaults,
// except RequireScope and Scopes which are taken as given.
func New(config Config) *Linter {
	if len(config.Types) == 0 {
		config.Types = append([]string(nil), DefaultTypes...)
	}
	if config.MaxHeaderLength == 0 {
		config.MaxHeaderLength = DefaultMaxHeaderLength
	}

	l := &Linter{
		config: config,
		types:  make(map[string]struct{}, len(config.Types)),
		scopes: make(map[string]struct{}, len(config.Scopes)),
	}
	for _, t := range config.Types {
		l.types[t] = struct{}{}
	}
	for _, s := range config.Scopes {
		l.scopes[s] = struct{}{}
	}
	return l
}

// headerPattern matches the part before the colon: type, optional
// parenthesized scope, optional breaking marker.
var headerPattern = regexp.MustCompile(`^([a-zA-Z]+)(?:\(([^()]*)\))?(!)?$`)

// exemptPrefixes are header forms produced by git itself; linting them
// would make rebases and merges fail.
var exemptPrefixes = []string{
	"Merge ",
	"Revert ",
	"fixup! ",
	"squash! ",
	"Automatic merge ",
}

// scissors marks the start of the verbose diff git appends with
// commit --verbose. Everything below it is discarded.
const scissors = "# ------------------------ >8 ------------------------"

// Lint validates a commit message and reports every violation found.
func (l *Linter) Lint(message string) *Report {
	report := &Report{}
	lines := cleanMessage(message)

	if len(lines) == 0 {
		report.add("L001", SeverityError, 1, 1, "commit message is empty")
		return report
	}

	header := lines[0]
	report.Header = header

	for _, prefix := range exemptPrefixes {
		if strings.HasPrefix(header, prefix) {
			report.Skipped = true
			return report
		}
	}

	l.lintHeader(report, header)
	l.lintBody(report, lines)

	return report
}

func (l *Linter) lintHeader(report *Report, header string) {
	if l.config.MaxHeaderLength > 0 && utf8.RuneCountInString(header) > l.config.MaxHeaderLength {
		report.add("L005", SeverityError, 1, l.config.MaxHeaderLength+1,
			fmt.Sprintf("header is %d characters, limit is %d", utf8.RuneCountInString(header), l.config.MaxHeaderLength))
	}

	prefix, subject, found := strings.Cut(header, ": ")
	if !found {
		// A bare "type:" or "type(scope):" header has an empty subject;
		// trailing whitespace was already stripped away.
		if strings.HasSuffix(header, ":") {
			if m := headerPattern.FindStringSubmatch(strings.TrimSuffix(header, ":")); m != nil {
				report.Type = m[1]
				report.Scope = m[2]
				report.Breaking = m[3] == "!"
				report.add("L006", SeverityError, 1, len(header)+1, "subject must not be empty")
				return
			}
		}

		// A colon without the following space is the most common slip;
		// point at it.
		if idx := strings.Index(header, ":"); idx >= 0 {
			report.add("L002", SeverityError, 1, idx+1, "expected a space after the colon")
		} else {
			report.add("L002", SeverityError, 1, 1, "header must be of the form type(scope): subject")
		}
		return
	}

	m := headerPattern.FindStringSubmatch(prefix)
	if m == nil {
		report.add("L002", SeverityError, 1, 1, fmt.Sprintf("cannot parse %q as type(scope)", prefix))
		return
	}

	typ, scope, breaking := m[1], m[2], m[3] == "!"
	report.Type = typ
	report.Scope = scope
	report.Breaking = breaking
	report.Subject = subject

	hasParens := strings.Contains(prefix, "(")
	if hasParens && scope == "" {
		report.add("L002", SeverityError, 1, len(typ)+1, "scope parentheses must not be empty")
	}

	if _, ok := l.types[typ]; !ok {
		report.add("L003", SeverityError, 1, 1,
			fmt.Sprintf("type %q is not allowed; use one of: %s", typ, strings.Join(l.config.Types, ", ")))
	}

	if l.config.RequireScope && scope == "" {
		report.add("L004", SeverityError, 1, len(typ)+1, "a scope is required")
	}

	if scope != "" && len(l.scopes) > 0 {
		if _, ok := l.scopes[scope]; !ok {
			report.add("L010", SeverityError, 1, len(typ)+2,
				fmt.Sprintf("scope %q is not allowed; use one of: %s", scope, strings.Join(l.config.Scopes, ", ")))
		}
	}

	subjectCol := len(prefix) + 3

	if strings.TrimSpace(subject) == "" {
		report.add("L006", SeverityError, 1, subjectCol, "subject must not be empty")
		return
	}

	first, _ := utf8.DecodeRuneInString(subject)
	if unicode.IsUpper(first) {
		report.add("L007", SeverityError, 1, subjectCol, "subject must start lowercase")
	}

	if strings.HasSuffix(subject, ".") {
		report.add("L008", SeverityError, 1, len(header), "subject must not end with a period")
	}
}

func (l *Linter) lintBody(report *Report, lines []string) {
	if len(lines) < 2 {
		return
	}

	if lines[1] != "" {
		report.add("L009", SeverityWarning, 2, 1, "body must be separated from the header by a blank line")
	}

	for _, line := range lines[1:] {
		if strings.HasPrefix(line, "BREAKING CHANGE:") || strings.HasPrefix(line, "BREAKING-CHANGE:") {
			report.Breaking = true
		}
	}
}

// cleanMessage splits a raw commit message into lines, dropping comment
// lines, anything below the scissors marker, and trailing blank lines.
func cleanMessage(message string) []string {
	raw := strings.Split(strings.ReplaceAll(message, "\r\n", "\n"), "\n")

	var lines []string
	for _, line := range raw {
		if line == scissors {
			break
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, strings.TrimRight(line, " \t"))
	}

	// Trim leading and trailing blank lines.
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}
