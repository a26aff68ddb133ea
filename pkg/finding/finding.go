// Package finding defines the vocabulary every check reports into: a
// Severity, a Finding and the Report that aggregates them.
package finding

import (
	"errors"
	"fmt"
	"strings"
)

// Severity ranks a finding. Only Error affects whether a run succeeds.
type Severity string

const (
	Error   Severity = "error"
	Warning Severity = "warning"
	Info    Severity = "info"
)

// ParseSeverity accepts the lower-case names used on the command line.
func ParseSeverity(s string) (Severity, error) {
	switch sev := Severity(strings.ToLower(strings.TrimSpace(s))); sev {
	case Error, Warning, Info:
		return sev, nil
	default:
		return "", fmt.Errorf("unknown severity %q (expected error, warning or info)", s)
	}
}

func (s Severity) rank() int {
	switch s {
	case Error:
		return 3
	case Warning:
		return 2
	case Info:
		return 1
	}
	return 0
}

// AtLeast reports whether s is as severe as min or more.
func (s Severity) AtLeast(min Severity) bool {
	return s.rank() >= min.rank()
}

// Range is an inclusive, 1-based span of lines or columns.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NewRange validates that 1 <= start <= end.
func NewRange(start, end int) (*Range, error) {
	if start < 1 {
		return nil, errors.New("range start must be >= 1")
	}
	if end < start {
		return nil, fmt.Errorf("range end %d is before start %d", end, start)
	}
	return &Range{Start: start, End: end}, nil
}

// Finding is a single reported issue. Findings are values: the With*
// helpers return modified copies.
type Finding struct {
	ID             string   `json:"id"`
	Severity       Severity `json:"severity"`
	Title          string   `json:"title"`
	Message        string   `json:"message"`
	File           string   `json:"file"`
	PropertiesPath string   `json:"properties_path,omitempty"`
	Line           *Range   `json:"line,omitempty"`
	Column         *Range   `json:"column,omitempty"`
}

// New builds a finding without location details.
func New(id string, severity Severity, title, message, file string) Finding {
	return Finding{ID: id, Severity: severity, Title: title, Message: message, File: file}
}

// NewError is New with Error severity.
func NewError(id, title, message, file string) Finding {
	return New(id, Error, title, message, file)
}

// NewWarning is New with Warning severity.
func NewWarning(id, title, message, file string) Finding {
	return New(id, Warning, title, message, file)
}

// NewInfo is New with Info severity.
func NewInfo(id, title, message, file string) Finding {
	return New(id, Info, title, message, file)
}

// WithPath sets the dotted property path, e.g. "services.web.image".
func (f Finding) WithPath(path string) Finding {
	f.PropertiesPath = path
	return f
}

// WithLocation sets line and column spans. Nil leaves the field unset.
func (f Finding) WithLocation(line, column *Range) Finding {
	if line != nil {
		l := *line
		f.Line = &l
	}
	if column != nil {
		c := *column
		f.Column = &c
	}
	return f
}

// String renders "file:line: severity[id] title".
func (f Finding) String() string {
	var b strings.Builder
	b.WriteString(f.File)
	if f.Line != nil {
		fmt.Fprintf(&b, ":%d", f.Line.Start)
	}
	fmt.Fprintf(&b, ": %s[%s] %s", f.Severity, f.ID, f.Title)
	return b.String()
}
