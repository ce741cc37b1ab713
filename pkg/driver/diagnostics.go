package driver

import (
	"fmt"
	"strings"
)

// DiagnosticSeverity captures diagnostic levels.
type DiagnosticSeverity string

const (
	SeverityError   DiagnosticSeverity = "error"
	SeverityWarning DiagnosticSeverity = "warning"
)

// DiagnosticLocation references a position in a program or fixture file.
type DiagnosticLocation struct {
	Path   string
	Line   int
	Column int
}

// IsZero reports whether the location carries no position at all.
func (l DiagnosticLocation) IsZero() bool {
	return l == DiagnosticLocation{}
}

// FormatDiagnosticLocation renders loc as path:line:column, omitting the
// parts that are unknown.
func FormatDiagnosticLocation(loc DiagnosticLocation) string {
	path := strings.TrimSpace(loc.Path)
	line := loc.Line
	column := loc.Column
	switch {
	case path != "" && line > 0 && column > 0:
		return fmt.Sprintf("%s:%d:%d", path, line, column)
	case path != "" && line > 0:
		return fmt.Sprintf("%s:%d", path, line)
	case path != "":
		return path
	case line > 0 && column > 0:
		return fmt.Sprintf("line %d, column %d", line, column)
	case line > 0:
		return fmt.Sprintf("line %d", line)
	default:
		return ""
	}
}
